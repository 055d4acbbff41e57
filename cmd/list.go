package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lnk/internal/core/domain"
	"lnk/pkg/ui"
)

var listExpired bool

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List the current user's links",
	Aliases: []string{"ls"},
	Long: `List every link owned by the current user, sorted by code.

Examples:
  lnk list
  lnk list --user alice
  lnk list --expired`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listExpired, "expired", false, "Show only expired links")
}

func runList(cmd *cobra.Command, args []string) error {
	links, err := linkService.List(getContext(), "")
	if err != nil {
		fmt.Println(ui.Error("Failed to list links"))
		return err
	}

	now := time.Now()
	if listExpired {
		filtered := links[:0]
		for _, l := range links {
			if l.Link.ExpiredAt(now) {
				filtered = append(filtered, l)
			}
		}
		links = filtered
	}

	if len(links) == 0 {
		fmt.Println(ui.Warning("No links found"))
		return nil
	}

	table := ui.NewTable([]ui.Column{
		{Header: "CODE", Width: 10},
		{Header: "TYPE", Width: 8},
		{Header: "TARGET", Width: 30},
		{Header: "EXPIRES", Width: 10},
	})

	for _, l := range links {
		expires := "-"
		if l.Link.ExpiresAt != "" {
			expires = l.Link.ExpiresAt
			if l.Link.ExpiredAt(now) {
				expires = expires + " (expired)"
			}
		}
		target := l.Link.Target()
		if l.Link.Kind != domain.KindRedirect {
			target = l.Link.DisplayName()
		}
		table.AddRow([]string{l.Code, string(l.Link.Kind), target, expires})
	}

	fmt.Println(ui.Title(fmt.Sprintf("Links (%d)", len(links))))
	fmt.Println()
	fmt.Print(table.Render())

	return nil
}
