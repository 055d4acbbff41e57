package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"lnk/internal/core/domain"
	"lnk/internal/core/services"
	"lnk/pkg/ui"
)

var (
	userCreateAdmin   bool
	userCreateDisplay string
	userDeleteYes     bool
)

// userCmd groups account management subcommands.
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
	Long: `Manage the accounts that own links.

Account management requires acting as an admin (pass --user or set LNK_USER).
The admin account itself authenticates against LNK_ADMIN_PASSWORD and can
never be deleted.`,
}

var userCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Register a new account",
	Long: `Register a new account and provision its storage area.

Examples:
  lnk user create alice
  lnk user create bob --admin --display "Bob the Builder"`,
	Args: cobra.ExactArgs(1),
	RunE: runUserCreate,
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete an account and everything it owns",
	Long: `Delete an account, its links, and its entire storage area.

A preview of what will be destroyed is shown before the prompt.`,
	Args: cobra.ExactArgs(1),
	RunE: runUserDelete,
}

var userListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List registered accounts",
	Aliases: []string{"ls"},
	RunE:    runUserList,
}

var userPreviewCmd = &cobra.Command{
	Use:   "preview <username>",
	Short: "Show what deleting an account would destroy",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserPreview,
}

var userPasswdCmd = &cobra.Command{
	Use:   "passwd <username>",
	Short: "Change an account's password",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserPasswd,
}

var userVerifyCmd = &cobra.Command{
	Use:   "verify <username>",
	Short: "Check an account's password",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserVerify,
}

func init() {
	userCreateCmd.Flags().BoolVar(&userCreateAdmin, "admin", false, "Grant account management rights")
	userCreateCmd.Flags().StringVar(&userCreateDisplay, "display", "", "Display name (defaults to the username)")
	userDeleteCmd.Flags().BoolVarP(&userDeleteYes, "yes", "y", false, "Skip the confirmation prompt")

	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userDeleteCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userPreviewCmd)
	userCmd.AddCommand(userPasswdCmd)
	userCmd.AddCommand(userVerifyCmd)
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	username := args[0]

	secret, err := promptSecret("Password for " + username)
	if err != nil {
		return err
	}

	req := services.CreateAccountRequest{
		Username:    username,
		Secret:      secret,
		DisplayName: userCreateDisplay,
		IsAdmin:     userCreateAdmin,
	}
	if err := accountService.Create(getContext(), req); err != nil {
		fmt.Println(ui.Error("Failed to create account"))
		return err
	}

	fmt.Println(ui.Success("Account created: " + username))
	if userCreateAdmin {
		fmt.Println(ui.Muted("This account can manage other accounts."))
	}
	return nil
}

func runUserDelete(cmd *cobra.Command, args []string) error {
	ctx := getContext()
	username := args[0]
	actor := linkStore.ResolveTenant("")

	stats, err := accountService.Preview(ctx, username)
	if err != nil {
		fmt.Println(ui.Error("Failed to inspect account"))
		return err
	}

	fmt.Println(ui.Warning("You are about to delete:"))
	fmt.Printf("  %s\n", ui.Bold(username))
	fmt.Println(ui.KeyValue("  Links", fmt.Sprintf("%d", stats.Records)))
	fmt.Println(ui.KeyValue("  Files", fmt.Sprintf("%d (%s)", stats.Files, formatBytes(stats.TotalBytes))))
	fmt.Println()

	if !userDeleteYes && !confirm("Delete account and all of its data?") {
		fmt.Println("Cancelled.")
		return nil
	}

	destroyed, err := accountService.Delete(ctx, services.DeleteAccountRequest{Actor: actor, Username: username})
	if err != nil {
		fmt.Println(ui.Error("Failed to delete account"))
		return err
	}

	fmt.Println(ui.Success(fmt.Sprintf("Account deleted (%d links, %d files removed).",
		destroyed.Records, destroyed.Files)))
	return nil
}

func runUserList(cmd *cobra.Command, args []string) error {
	accounts, err := accountService.List(getContext())
	if err != nil {
		fmt.Println(ui.Error("Failed to list accounts"))
		return err
	}

	table := ui.NewTable([]ui.Column{
		{Header: "USERNAME", Width: 12},
		{Header: "DISPLAY NAME", Width: 16},
		{Header: "ADMIN", Width: 5},
		{Header: "CREATED", Width: 10},
	})
	for _, a := range accounts {
		admin := ""
		if a.Username == domain.RootAccount || a.Account.IsAdmin {
			admin = "yes"
		}
		table.AddRow([]string{a.Username, a.Account.DisplayName, admin, a.Account.CreatedAt})
	}

	fmt.Println(ui.Title(fmt.Sprintf("Accounts (%d)", len(accounts))))
	fmt.Println()
	fmt.Print(table.Render())
	return nil
}

func runUserPreview(cmd *cobra.Command, args []string) error {
	stats, err := accountService.Preview(getContext(), args[0])
	if err != nil {
		fmt.Println(ui.Error("Failed to inspect account"))
		return err
	}

	fmt.Println(ui.Title("Deletion preview: " + stats.Username))
	fmt.Println()
	fmt.Println(ui.KeyValue("Links", fmt.Sprintf("%d", stats.Records)))
	fmt.Println(ui.KeyValue("Files", fmt.Sprintf("%d", stats.Files)))
	fmt.Println(ui.KeyValue("Storage", formatBytes(stats.TotalBytes)))
	return nil
}

func runUserPasswd(cmd *cobra.Command, args []string) error {
	username := args[0]

	secret, err := promptSecret("New password for " + username)
	if err != nil {
		return err
	}
	again, err := promptSecret("Repeat password")
	if err != nil {
		return err
	}
	if secret != again {
		fmt.Println(ui.Error("Passwords do not match"))
		return fmt.Errorf("password mismatch")
	}

	if err := accountService.ChangePassword(getContext(), username, secret); err != nil {
		fmt.Println(ui.Error("Failed to change password"))
		return err
	}

	fmt.Println(ui.Success("Password changed for " + username))
	return nil
}

func runUserVerify(cmd *cobra.Command, args []string) error {
	username := args[0]

	secret, err := promptSecret("Password for " + username)
	if err != nil {
		return err
	}

	if err := accountService.Authenticate(getContext(), username, secret); err != nil {
		fmt.Println(ui.Error("Verification failed: " + err.Error()))
		return nil
	}

	fmt.Println(ui.Success("Password verified"))
	return nil
}
