package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"lnk/internal/core/domain"
	"lnk/pkg/ui"
)

// kindFromFlag maps a --type flag value onto a link kind. The value is
// validated downstream; unknown strings pass through so the service can
// reject them with a proper error.
func kindFromFlag(value string) domain.Kind {
	return domain.Kind(strings.ToLower(strings.TrimSpace(value)))
}

// confirm asks a yes/no question on stdin and returns true only for "y".
func confirm(prompt string) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print(ui.StyleWarning.Render(prompt + " (y/n): "))
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.ToLower(strings.TrimSpace(response)) == "y"
}

// promptSecret reads a password without echoing it. Falls back to plain
// line input when stdin is not a terminal.
func promptSecret(prompt string) (string, error) {
	fmt.Print(ui.StyleInfo.Render(prompt + ": "))

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(secret), nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// formatBytes renders a byte count for humans.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
