// Package main provides the feedbackctl command line client.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"feedbackapp/cmd/feedbackctl/commands"
	"feedbackapp/internal/client"
	"feedbackapp/internal/config"
	"feedbackapp/internal/observability"

	"golang.org/x/term"
)

var _ commands.API = (*client.Client)(nil)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// The client only exports telemetry when explicitly configured for it.
	_, _, logger, err := observability.SetupObservabilityWithLevel(&cfg.OpenTelemetry, commands.ServiceName, "error")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	sessionPath := cfg.Client.SessionFile
	if sessionPath == "" {
		if sessionPath, err = client.DefaultSessionPath(); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}
	session, err := client.LoadSession(sessionPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	api := client.New(cfg.Client, session, logger)
	rootCmd := commands.NewRootCommand(api, terminalPrompter())
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func terminalPrompter() commands.Prompter {
	stdin := bufio.NewReader(os.Stdin)
	return commands.Prompter{
		Line: func(prompt string) (string, error) {
			fmt.Fprint(os.Stderr, prompt)
			line, err := stdin.ReadString('\n')
			if err != nil && line == "" {
				return "", err
			}
			return strings.TrimSpace(line), nil
		},
		Password: func(prompt string) (string, error) {
			fmt.Fprint(os.Stderr, prompt)
			passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Fprintln(os.Stderr) // New line after password input
			if err != nil {
				return "", err
			}
			return string(passwordBytes), nil
		},
	}
}
