package commands

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"feedbackapp/internal/config"
	contextutils "feedbackapp/internal/utils"

	"golang.org/x/term"
)

// PasswordReader prompts on w and reads a secret without echoing it.
type PasswordReader func(w io.Writer, prompt string) (string, error)

// TerminalPasswordReader reads from the controlling terminal.
func TerminalPasswordReader(w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(w) // New line after password input
	if err != nil {
		return "", contextutils.WrapErrorf(contextutils.ErrInternalError, "failed to read password: %v", err)
	}
	return string(passwordBytes), nil
}

// promptNewPassword asks for a password twice and checks that both entries match.
func promptNewPassword(read PasswordReader, w io.Writer) (string, error) {
	password, err := read(w, "Enter password: ")
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", contextutils.ErrorWithContextf("password cannot be empty")
	}
	confirm, err := read(w, "Confirm password: ")
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", contextutils.ErrorWithContextf("passwords do not match")
	}
	return password, nil
}

// maskDatabaseURL masks the credentials in a database URL for display
func maskDatabaseURL(url string) string {
	if i := strings.LastIndex(url, "@"); i >= 0 {
		scheme := "postgres://"
		if j := strings.Index(url, "://"); j >= 0 && j < i {
			scheme = url[:j+3]
		}
		return scheme + "***:***@" + url[i+1:]
	}
	return url
}

// getDatabaseInfo returns database connection information
func getDatabaseInfo(ctx context.Context, db *sql.DB) string {
	if db == nil {
		return "Not connected"
	}

	var dbName string
	if err := db.QueryRowContext(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		return "Connected (unknown database)"
	}

	var host sql.NullString
	if err := db.QueryRowContext(ctx, "SELECT inet_server_addr()::text").Scan(&host); err != nil || !host.Valid {
		return fmt.Sprintf("Connected to %s", dbName)
	}

	return fmt.Sprintf("Connected to %s on %s", dbName, host.String)
}

func configFile() string {
	return os.Getenv(config.ConfigFileEnv)
}
