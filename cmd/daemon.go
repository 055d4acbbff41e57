package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"lnk/pkg/ui"
)

var (
	daemonQuiet    bool
	daemonInterval time.Duration
)

// daemonCmd represents the daemon command
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run background daemon for automatic expiry sweeps",
	Long: `Run a background daemon that sweeps expired links across all users.

The daemon sweeps on a fixed interval and additionally reacts to changes in
any links.yaml, so a hand-edited expiry is picked up within a moment of the
file being saved.

Use --quiet to suppress sweep notifications.`,
	RunE: runDaemon,
}

func init() {
	daemonCmd.Flags().BoolVarP(&daemonQuiet, "quiet", "q", false, "Suppress sweep notifications")
	daemonCmd.Flags().DurationVarP(&daemonInterval, "interval", "i", 15*time.Minute, "Periodic sweep interval")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the accounts tree: the registry, plus each user's directory.
	if err := watcher.Add(appVault.AccountsPath); err != nil {
		return fmt.Errorf("failed to watch accounts directory: %w", err)
	}
	entries, err := os.ReadDir(appVault.AccountsPath)
	if err == nil {
		for _, entry := range entries {
			if entry.IsDir() {
				if err := watcher.Add(filepath.Join(appVault.AccountsPath, entry.Name())); err != nil {
					logger.Warn("failed to watch user directory", "user", entry.Name(), "error", err)
				}
			}
		}
	}

	if !daemonQuiet {
		fmt.Println(ui.Info("Starting lnk daemon..."))
		fmt.Println(ui.Muted("Watching: " + appVault.AccountsPath))
		fmt.Println(ui.Muted("Sweep interval: " + daemonInterval.String()))
		fmt.Println(ui.Muted("Press Ctrl+C to stop"))
		fmt.Println()
	}

	// Debounce timer so a burst of writes triggers one sweep.
	var debounceTimer *time.Timer
	debounceDuration := 500 * time.Millisecond

	doSweep := func() {
		result, err := sweepService.SweepAll(ctx)
		if err != nil {
			if !daemonQuiet {
				fmt.Println(ui.Error("Sweep failed: " + err.Error()))
			}
			logger.Error("sweep failed", "error", err)
			return
		}
		if result.Total > 0 && !daemonQuiet {
			fmt.Println(ui.Success(fmt.Sprintf("Swept %d expired links", result.Total)))
		}
	}

	ticker := time.NewTicker(daemonInterval)
	defer ticker.Stop()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	doSweep()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			base := filepath.Base(event.Name)

			// A new user directory needs watching too.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
					}
					continue
				}
			}

			// Only record files matter for expiry.
			if base != "links.yaml" {
				continue
			}
			if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~") {
				continue
			}

			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename) {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDuration, doSweep)
			}

		case <-ticker.C:
			doSweep()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "error", err)

		case <-sigs:
			if !daemonQuiet {
				fmt.Println()
				fmt.Println(ui.Muted("Daemon stopped"))
			}
			return nil

		case <-ctx.Done():
			return nil
		}
	}
}
