package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/joss/openoutreach/internal/audit"
	"github.com/joss/openoutreach/internal/config"
)

func historyCmd() *cobra.Command {
	var limit int
	var profile string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent outreach attempts",
		Run: func(cmd *cobra.Command, args []string) {
			store, err := audit.NewStore(config.Get().DBPath)
			if err != nil {
				exitOnError(err)
			}
			defer store.Close()

			ctx := context.Background()
			var attempts []audit.Attempt
			if profile != "" {
				attempts, err = store.ByProfile(ctx, profile, limit)
			} else {
				attempts, err = store.Recent(ctx, limit)
			}
			if err != nil {
				exitOnError(err)
			}

			if len(attempts) == 0 {
				fmt.Println("No attempts recorded")
				return
			}

			if pretty {
				fmt.Println(color.CyanString("Recent Attempts"))
				fmt.Println(strings.Repeat("─", 60))
			}
			for _, a := range attempts {
				mark := color.GreenString("✓")
				if a.Status != "success" {
					mark = color.RedString("✗")
				}
				detail := a.Kind
				if a.Action != "" {
					detail += "/" + a.Action
				}
				fmt.Printf("%s %s  %-28s %s (%dms)\n",
					mark, a.StartedAt.Format("2006-01-02 15:04"), detail, a.ProfileURL, a.DurationMs)
				if a.Error != "" {
					fmt.Printf("    %s\n", color.RedString(a.Error))
				}
			}
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum attempts to show")
	cmd.Flags().StringVar(&profile, "profile", "", "Filter by profile URL")
	return cmd
}
