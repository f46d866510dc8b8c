package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List persisted session-state keys",
		Run: func(cmd *cobra.Command, args []string) {
			store, err := buildStateStore(context.Background())
			if err != nil {
				exitOnError(err)
			}

			keys, err := store.List()
			if err != nil {
				exitOnError(err)
			}
			if len(keys) == 0 {
				fmt.Println("No persisted sessions")
				return
			}

			if pretty {
				fmt.Println(color.CyanString("Persisted Sessions"))
			}
			for _, key := range keys {
				fmt.Printf("  %s\n", key)
			}
		},
	}
	return cmd
}
