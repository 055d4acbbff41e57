package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"lnk/internal/adapters/repository"
	"lnk/internal/core/domain"
	"lnk/pkg/config"
	"lnk/pkg/ui"
	"lnk/pkg/vault"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the lnk vault",
	Long: `Initialize the lnk vault directory structure.

This creates the managed vault (default ~/.local/share/lnk/, override with
LNK_ROOT) with the following structure:
  - config/    : System settings and theme catalog
  - accounts/  : The account registry and each user's links and assets

The admin account is registered automatically. Its password comes from the
LNK_ADMIN_PASSWORD environment variable and is never written to disk.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	v, err := vault.New("")
	if err != nil {
		fmt.Println(ui.Error("Failed to determine vault location"))
		return err
	}

	if v.Exists() {
		fmt.Println(ui.Warning("Vault already initialized"))
		fmt.Println(ui.Muted("Location: " + v.RootPath))
		return nil
	}

	fmt.Println(ui.Info("Initializing lnk vault..."))
	fmt.Println()

	if err := v.Initialize(); err != nil {
		fmt.Println(ui.Error("Failed to initialize vault"))
		return err
	}

	// Establish config files with defaults.
	if _, err := config.LoadSettings(v.SettingsFile()); err != nil {
		return err
	}
	if _, err := config.LoadThemes(v.ThemesFile()); err != nil {
		return err
	}

	// Establish the registry and the admin storage area.
	accounts := repository.NewAccountStore(v, logger)
	if _, err := accounts.Load(getContext()); err != nil {
		return err
	}
	assets := repository.NewAssetArea(v, logger)
	if err := assets.Provision(domain.RootAccount, false); err != nil {
		return err
	}
	links := repository.NewLinkStore(v, logger)
	if _, err := links.Load(getContext(), domain.RootAccount); err != nil {
		return err
	}

	fmt.Println(ui.Success("Vault initialized"))
	fmt.Println()
	fmt.Println(ui.KeyValue("Location", v.RootPath))
	fmt.Println(ui.KeyValue("Admin user", domain.RootAccount))
	fmt.Println()
	fmt.Println(ui.Muted("Set LNK_ADMIN_PASSWORD to change the admin password (default: admin)."))

	return nil
}
