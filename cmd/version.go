package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"lnk/pkg/ui"
)

// Version information - these can be set during build with ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Display version information",
	Aliases: []string{"v"},
	Long:    `Display the current version of lnk along with build information. (alias: v)`,
	Run:     runVersion,
}

func runVersion(cmd *cobra.Command, args []string) {
	fmt.Println(ui.StyleTitle.Render("LNK") + " - Short Link Manager")
	fmt.Println()
	fmt.Println(ui.KeyValue("Version", Version))
	fmt.Println(ui.KeyValue("Commit", GitCommit))
	fmt.Println(ui.KeyValue("Build Date", BuildDate))
}
