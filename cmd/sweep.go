package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lnk/pkg/ui"
)

var sweepAll bool

// sweepCmd represents the sweep command
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Remove expired links",
	Long: `Remove every expired link belonging to the current user, including any
stored files backing them.

With --all, every registered user is swept.

Examples:
  lnk sweep
  lnk sweep --all`,
	RunE: runSweep,
}

func init() {
	sweepCmd.Flags().BoolVarP(&sweepAll, "all", "a", false, "Sweep every registered user")
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	if sweepAll {
		result, err := sweepService.SweepAll(ctx)
		if err != nil {
			fmt.Println(ui.Error("Sweep failed"))
			return err
		}
		if result.Total == 0 {
			fmt.Println(ui.Info("Nothing expired."))
			return nil
		}
		for _, tenant := range result.Tenants {
			fmt.Println(ui.KeyValue(tenant.Tenant, strings.Join(tenant.Removed, ", ")))
		}
		fmt.Println()
		fmt.Println(ui.Success(fmt.Sprintf("Removed %d expired links", result.Total)))
		return nil
	}

	result, err := sweepService.Sweep(ctx, "")
	if err != nil {
		fmt.Println(ui.Error("Sweep failed"))
		return err
	}
	if len(result.Removed) == 0 {
		fmt.Println(ui.Info("Nothing expired."))
		return nil
	}

	fmt.Println(ui.Success(fmt.Sprintf("Removed %d expired links", len(result.Removed))))
	for _, code := range result.Removed {
		fmt.Println(ui.Muted("  " + code))
	}

	return nil
}
