package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"lnk/pkg/ui"
)

var deleteYes bool

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:     "delete [code]",
	Short:   "Delete a link and its stored file",
	Aliases: []string{"rm"},
	Long: `Delete a link. A file, markdown, or html link also has its stored asset
removed from the user's assets directory.

Without a code argument an interactive picker opens.

Examples:
  lnk delete launch
  lnk delete --yes q3-report`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip the confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	var code string
	if len(args) == 1 {
		code = args[0]
	} else {
		picked, err := pickLink("Delete")
		if err != nil {
			return err
		}
		if picked == "" {
			return nil
		}
		code = picked
	}

	if !deleteYes && !confirm(fmt.Sprintf("Delete link '%s'?", code)) {
		fmt.Println("Cancelled.")
		return nil
	}

	resp, err := linkService.Delete(getContext(), "", code)
	if err != nil {
		fmt.Println(ui.Error("Failed to delete link"))
		return err
	}

	fmt.Println(ui.Success("Link deleted."))
	if resp.AssetRemoved {
		fmt.Println(ui.Muted("Stored file removed."))
	}

	return nil
}
