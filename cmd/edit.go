package cmd

import (
	"fmt"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
	"github.com/spf13/cobra"

	"lnk/internal/core/services"
	"lnk/pkg/ui"
)

var (
	editType        string
	editURL         string
	editFile        string
	editText        string
	editExpires     string
	editClearExpiry bool
)

// editCmd represents the edit command
var editCmd = &cobra.Command{
	Use:   "edit [code]",
	Short: "Edit an existing link",
	Long: `Edit a link in place: retarget it, replace its stored file, change its
type, or adjust its expiration. Fields you don't pass stay as they are.

Without a code argument an interactive picker opens.

Examples:
  lnk edit launch --url https://example.com/new
  lnk edit q3-report --file updated.pdf
  lnk edit hello --expires 2027-01-01
  lnk edit hello --clear-expiry`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().StringVarP(&editType, "type", "t", "", "Change the link type")
	editCmd.Flags().StringVar(&editURL, "url", "", "New redirect target")
	editCmd.Flags().StringVarP(&editFile, "file", "f", "", "Replace the stored file")
	editCmd.Flags().StringVar(&editText, "text", "", "Replace the inline content")
	editCmd.Flags().StringVarP(&editExpires, "expires", "e", "", "New expiration date")
	editCmd.Flags().BoolVar(&editClearExpiry, "clear-expiry", false, "Remove the expiration")
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	var code string
	if len(args) == 1 {
		code = args[0]
	} else {
		picked, err := pickLink("Edit")
		if err != nil {
			return err
		}
		if picked == "" {
			return nil
		}
		code = picked
	}

	req := services.EditLinkRequest{
		Code:        code,
		URL:         editURL,
		SourceFile:  editFile,
		Text:        editText,
		ExpiresAt:   editExpires,
		ClearExpiry: editClearExpiry,
	}
	if editType != "" {
		req.Kind = kindFromFlag(editType)
	}

	resp, err := linkService.Edit(ctx, req)
	if err != nil {
		fmt.Println(ui.Error("Failed to edit link"))
		return err
	}

	fmt.Println(ui.Success("Link updated"))
	fmt.Println()
	fmt.Println(ui.KeyValue("Code", resp.Code))
	fmt.Println(ui.KeyValue("Type", string(resp.Link.Kind)))
	fmt.Println(ui.KeyValue("Target", resp.Link.Target()))
	if resp.Link.ExpiresAt != "" {
		fmt.Println(ui.KeyValue("Expires", resp.Link.ExpiresAt))
	}

	return nil
}

// pickLink opens a fuzzy picker over the current user's links and returns the
// chosen code, or "" if the user cancelled.
func pickLink(action string) (string, error) {
	links, err := linkService.List(getContext(), "")
	if err != nil {
		fmt.Println(ui.Error("Failed to list links"))
		return "", err
	}
	if len(links) == 0 {
		fmt.Println(ui.Warning("No links found"))
		return "", nil
	}

	idx, err := fuzzyfinder.Find(
		links,
		func(i int) string {
			return links[i].Code
		},
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			l := links[i]
			preview := fmt.Sprintf("%s\n\nCode: %s\nType: %s\nTarget: %s",
				action, l.Code, l.Link.Kind, l.Link.Target())
			if l.Link.ExpiresAt != "" {
				preview += fmt.Sprintf("\nExpires: %s", l.Link.ExpiresAt)
			}
			return preview
		}),
	)
	if err != nil {
		// User cancelled (Ctrl+C or ESC)
		fmt.Println(ui.Info("Operation cancelled."))
		return "", nil
	}
	return links[idx].Code, nil
}
