package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"lnk/internal/adapters/identity"
	"lnk/internal/adapters/repository"
	"lnk/internal/core/services"
	"lnk/pkg/config"
	"lnk/pkg/ui"
	"lnk/pkg/vault"
)

var (
	// Global vault instance
	appVault *vault.Vault

	// System settings and theme catalog
	appSettings *config.Settings
	appThemes   *config.ThemeCatalog

	// Stores
	linkStore     *repository.LinkStore
	accountStore  *repository.AccountStore
	assetArea     *repository.AssetArea
	overrideStore *repository.OverrideStore

	// Services
	linkService    *services.LinkService
	sweepService   *services.SweepService
	accountService *services.AccountService
	statsService   *services.StatsService

	logger *slog.Logger

	// Flags
	flagUser    string
	flagVerbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lnk",
	Short: "LNK - A multi-user short link manager",
	Long: ui.StyleTitle.Render("LNK") + " - Short Link Manager\n\n" +
		"Manage short links, hosted files, and rendered documents for multiple\n" +
		"users from one flat-file vault. Records live in plain YAML you can read,\n" +
		"diff, and back up.",
	PersistentPreRunE: initializeApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "", "Act as this user (default: LNK_USER or admin)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// initializeApp wires the stores and services against the vault.
func initializeApp(cmd *cobra.Command, args []string) error {
	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// Skip vault checks for init
	if cmd.Name() == "init" {
		return nil
	}

	v, err := vault.New("")
	if err != nil {
		return fmt.Errorf("failed to locate vault: %w", err)
	}
	appVault = v

	if !appVault.Exists() {
		fmt.Println(ui.Error("Vault not initialized"))
		fmt.Println(ui.Info("Run 'lnk init' to initialize the vault"))
		os.Exit(1)
	}

	appSettings, err = config.LoadSettings(appVault.SettingsFile())
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	appThemes, err = config.LoadThemes(appVault.ThemesFile())
	if err != nil {
		return fmt.Errorf("failed to load themes: %w", err)
	}

	linkStore = repository.NewLinkStore(appVault, logger)
	accountStore = repository.NewAccountStore(appVault, logger)
	assetArea = repository.NewAssetArea(appVault, logger)
	overrideStore = repository.NewOverrideStore(appVault, logger)

	// A user switch must also drop the departing user's cached settings.
	linkStore.OnTenantSwitch(overrideStore.Invalidate)

	hasher := identity.NewBcryptHasher()
	codes := identity.NewTokenSource()
	clock := identity.SystemClock{}

	linkService = services.NewLinkService(linkStore, accountStore, assetArea, codes, clock, logger)
	sweepService = services.NewSweepService(linkStore, accountStore, assetArea, clock, logger)
	accountService = services.NewAccountService(accountStore, linkStore, assetArea, hasher, clock, logger)
	statsService = services.NewStatsService(linkStore, accountStore, assetArea, clock, logger)

	user := flagUser
	if user == "" {
		user = os.Getenv("LNK_USER")
	}
	if user != "" {
		linkStore.SetTenant(user)
	}

	return nil
}

// getContext returns a context for operations
func getContext() context.Context {
	return context.Background()
}
