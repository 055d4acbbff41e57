package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lnk/internal/core/domain"
	"lnk/pkg/config"
	"lnk/pkg/ui"
)

var configMarkdown bool

// configCmd groups configuration subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change settings",
	Long: `Show effective settings for the current user, or change the per-user theme.

The admin account has no personal settings file; changing its theme edits
the system default instead.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective settings",
	RunE:  runConfigShow,
}

var configThemesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available themes",
	RunE:  runConfigThemes,
}

var configSetThemeCmd = &cobra.Command{
	Use:   "set-theme <name>",
	Short: "Set the theme for the current user",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigSetTheme,
}

func init() {
	configSetThemeCmd.Flags().BoolVarP(&configMarkdown, "markdown", "m", false, "Set the markdown rendering theme instead")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configThemesCmd)
	configCmd.AddCommand(configSetThemeCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	user := linkStore.ResolveTenant("")

	overrides, err := overrideStore.Load(user)
	if err != nil {
		fmt.Println(ui.Error("Failed to load settings for " + user))
		return err
	}

	fmt.Println(ui.Title("Settings: " + user))
	fmt.Println()
	fmt.Println(ui.KeyValue("Theme", config.EffectiveTheme(appSettings, overrides)))
	fmt.Println(ui.KeyValue("Markdown theme", config.EffectiveMarkdownTheme(appSettings, overrides)))
	fmt.Println(ui.KeyValue("Max file size", fmt.Sprintf("%d MB", appSettings.App.MaxFileSizeMB)))
	fmt.Println(ui.KeyValue("Session lifetime", fmt.Sprintf("%d days", appSettings.Session.LifetimeDays)))
	return nil
}

func runConfigThemes(cmd *cobra.Command, args []string) error {
	user := linkStore.ResolveTenant("")
	overrides, _ := overrideStore.Load(user)
	active := config.EffectiveTheme(appSettings, overrides)

	fmt.Println(ui.Title("Themes"))
	fmt.Println()
	for _, key := range appThemes.Keys() {
		marker := "  "
		if key == active {
			marker = ui.StyleSuccess.Render("> ")
		}
		fmt.Println(marker + key)
	}
	return nil
}

func runConfigSetTheme(cmd *cobra.Command, args []string) error {
	name := strings.ToLower(args[0])
	if !appThemes.Has(name) {
		fmt.Println(ui.Error("Unknown theme: " + name))
		fmt.Println(ui.Info("Run 'lnk config themes' to list available themes"))
		return fmt.Errorf("unknown theme %q", name)
	}

	user := linkStore.ResolveTenant("")

	// The admin account owns the system defaults directly.
	if user == domain.RootAccount {
		if configMarkdown {
			appSettings.App.MarkdownTheme = name
		} else {
			appSettings.App.Theme = name
		}
		if err := appSettings.Save(appVault.SettingsFile()); err != nil {
			fmt.Println(ui.Error("Failed to save settings"))
			return err
		}
		fmt.Println(ui.Success("System theme set to " + name))
		return nil
	}

	overrides, err := overrideStore.Load(user)
	if err != nil {
		fmt.Println(ui.Error("Failed to load settings for " + user))
		return err
	}
	if configMarkdown {
		overrides.App.MarkdownTheme = name
	} else {
		overrides.App.Theme = name
	}
	if err := overrideStore.Save(user, overrides); err != nil {
		fmt.Println(ui.Error("Failed to save settings"))
		return err
	}

	fmt.Println(ui.Success(fmt.Sprintf("Theme for %s set to %s", user, name)))
	return nil
}
