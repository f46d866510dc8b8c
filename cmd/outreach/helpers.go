package main

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/joss/openoutreach/internal/audit"
	"github.com/joss/openoutreach/internal/config"
	"github.com/joss/openoutreach/internal/outreach"
	"github.com/joss/openoutreach/internal/statestore"
)

// buildStateStore wires the local state directory plus the optional
// GCS mirror from the environment.
func buildStateStore(ctx context.Context) (*statestore.Store, error) {
	env := config.Get()
	if err := config.EnsureDir(env.StateDir); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	var remote statestore.Remote
	if env.StateBucket != "" {
		gcs, err := statestore.NewGCSRemote(ctx, env.StateBucket, env.StatePrefix)
		if err != nil {
			return nil, fmt.Errorf("connect state bucket: %w", err)
		}
		remote = gcs
	}
	return statestore.New(env.StateDir, remote), nil
}

// buildService assembles the orchestrator with state and attempt
// stores. The caller owns closing the returned audit store.
func buildService(ctx context.Context) (*outreach.Service, *audit.Store, error) {
	store, err := buildStateStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	auditStore, err := audit.NewStore(config.Get().DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open attempt history: %w", err)
	}
	return outreach.NewService(store, auditStore), auditStore, nil
}

// resolvePassword takes the flag value or prompts on the terminal so
// the password never lands in shell history.
func resolvePassword(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv("OUTREACH_PASSWORD"); v != "" {
		return v, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("password is required")
	}
	return string(raw), nil
}

// printLogs renders a request trail.
func printLogs(logs []string) {
	if !pretty || len(logs) == 0 {
		return
	}
	fmt.Println(color.CyanString("Trail:"))
	for _, entry := range logs {
		fmt.Printf("  %s\n", entry)
	}
}

// printOutcome renders a success/failure line.
func printOutcome(success bool, detail string) {
	mark := color.GreenString("✓")
	if !success {
		mark = color.RedString("✗")
	}
	fmt.Printf("%s %s\n", mark, detail)
}

func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
