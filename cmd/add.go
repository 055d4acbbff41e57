package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lnk/internal/core/domain"
	"lnk/internal/core/services"
	"lnk/pkg/ui"
)

var (
	addCode    string
	addType    string
	addText    string
	addExpires string
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add [target]",
	Short: "Create a short link",
	Long: `Create a short link pointing at a URL, a hosted file, or an inline document.

The target argument is a URL for redirects or a local file path for the other
types. Inline markdown and html can be passed with --text instead.

If no code is given, a random 8-character code is generated. Codes share one
namespace across all users.

Examples:
  lnk add https://example.com/some/long/path
  lnk add https://example.com --code launch --expires 2026-12-31
  lnk add report.pdf --type file --code q3-report
  lnk add --type markdown --text "# Hello" --code hello`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addCode, "code", "c", "", "Short code (generated when empty)")
	addCmd.Flags().StringVarP(&addType, "type", "t", "redirect", "Link type: redirect, file, markdown, html")
	addCmd.Flags().StringVar(&addText, "text", "", "Inline content for markdown/html links")
	addCmd.Flags().StringVarP(&addExpires, "expires", "e", "", "Expiration date (e.g. 2026-12-31 or RFC 3339)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	kind := domain.Kind(addType)
	if !kind.Valid() {
		fmt.Println(ui.Error("Unknown link type: " + addType))
		return domain.ErrInvalidKind
	}

	req := services.CreateLinkRequest{
		Code:      addCode,
		Kind:      kind,
		Text:      addText,
		ExpiresAt: addExpires,
	}

	if len(args) == 1 {
		if kind == domain.KindRedirect {
			req.URL = args[0]
		} else {
			req.SourceFile = args[0]
		}
	}

	// Enforce the configured upload cap before copying anything.
	if req.SourceFile != "" {
		info, err := os.Stat(req.SourceFile)
		if err != nil {
			fmt.Println(ui.Error("Cannot read file: " + req.SourceFile))
			return err
		}
		if info.Size() > appSettings.MaxFileSizeBytes() {
			fmt.Println(ui.Error(fmt.Sprintf("File exceeds the %d MB upload limit", appSettings.App.MaxFileSizeMB)))
			return fmt.Errorf("file too large: %d bytes", info.Size())
		}
	}

	resp, err := linkService.Create(getContext(), req)
	if err != nil {
		fmt.Println(ui.Error("Failed to create link"))
		return err
	}

	fmt.Println(ui.Success("Link created"))
	fmt.Println()
	fmt.Println(ui.KeyValue("Code", resp.Code))
	fmt.Println(ui.KeyValue("User", resp.Tenant))
	fmt.Println(ui.KeyValue("Type", string(resp.Link.Kind)))
	fmt.Println(ui.KeyValue("Target", resp.Link.Target()))
	if resp.Link.ExpiresAt != "" {
		fmt.Println(ui.KeyValue("Expires", resp.Link.ExpiresAt))
	}

	return nil
}
