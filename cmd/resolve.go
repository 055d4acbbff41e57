package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"lnk/internal/core/domain"
	"lnk/pkg/ui"
)

var resolveCopy bool

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve <code>",
	Short: "Look up a short code",
	Long: `Resolve a short code to its target, searching every user's links.

An expired link is removed during resolution and reported as not found.

Examples:
  lnk resolve launch
  lnk resolve launch --copy`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().BoolVarP(&resolveCopy, "copy", "c", false, "Copy the target to the clipboard")
}

func runResolve(cmd *cobra.Command, args []string) error {
	code := args[0]

	resp, err := linkService.Resolve(getContext(), code)
	if err != nil {
		if domain.IsNotFound(err) {
			fmt.Println(ui.Warning("No link found for code: " + code))
			return nil
		}
		fmt.Println(ui.Error("Failed to resolve link"))
		return err
	}

	target := resp.Link.Target()
	if resp.Link.Kind != domain.KindRedirect {
		target = appVault.AssetPath(resp.Owner, resp.Link.Path)
	}

	fmt.Println(ui.KeyValue("Code", resp.Code))
	fmt.Println(ui.KeyValue("Owner", resp.Owner))
	fmt.Println(ui.KeyValue("Type", string(resp.Link.Kind)))
	fmt.Println(ui.KeyValue("Target", target))
	if resp.Link.ExpiresAt != "" {
		fmt.Println(ui.KeyValue("Expires", resp.Link.ExpiresAt))
	}

	if resolveCopy {
		if err := clipboard.WriteAll(target); err != nil {
			fmt.Println(ui.Warning("Failed to copy to clipboard: " + err.Error()))
		} else {
			fmt.Println()
			fmt.Println(ui.Success("Target copied to clipboard"))
		}
	}

	return nil
}
