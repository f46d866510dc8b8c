package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/joss/openoutreach/internal/outreach"
)

// credentialFlags are shared by every one-shot command.
type credentialFlags struct {
	profile    string
	username   string
	password   string
	sessionKey string
	headed     bool
}

func (c *credentialFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.profile, "profile", "", "Profile URL (required)")
	cmd.Flags().StringVar(&c.username, "username", "", "Account username (required)")
	cmd.Flags().StringVar(&c.password, "password", "", "Account password (prompted when omitted)")
	cmd.Flags().StringVar(&c.sessionKey, "session-key", "", "Session state key (generated when omitted)")
	cmd.Flags().BoolVar(&c.headed, "headed", false, "Run the browser with a visible window")
	cmd.MarkFlagRequired("profile")
	cmd.MarkFlagRequired("username")
}

func (c *credentialFlags) headless() *bool {
	if !c.headed {
		return nil
	}
	v := false
	return &v
}

func reachOutCmd() *cobra.Command {
	var creds credentialFlags
	var message, fullName string

	cmd := &cobra.Command{
		Use:   "reach-out",
		Short: "Message a profile, falling back to a connection request",
		Run: func(cmd *cobra.Command, args []string) {
			password, err := resolvePassword(creds.password)
			if err != nil {
				exitOnError(err)
			}

			svc, auditStore, err := buildService(cmd.Context())
			if err != nil {
				exitOnError(err)
			}
			defer auditStore.Close()

			res := svc.ReachOut(cmd.Context(), outreach.ReachOutRequest{
				ProfileURL: creds.profile,
				Message:    message,
				FullName:   fullName,
				Username:   creds.username,
				Password:   password,
				SessionKey: creds.sessionKey,
				Headless:   creds.headless(),
			})

			printLogs(res.Logs)
			printOutcome(res.Success, fmt.Sprintf("action: %s", res.Action))
			if res.Error != "" {
				fmt.Println(color.RedString("error: %s", res.Error))
			}
		},
	}

	creds.register(cmd)
	cmd.Flags().StringVar(&message, "message", "", "Message text (required)")
	cmd.Flags().StringVar(&fullName, "full-name", "", "Prospect full name")
	cmd.MarkFlagRequired("message")
	return cmd
}

func replyCmd() *cobra.Command {
	var creds credentialFlags
	var message string

	cmd := &cobra.Command{
		Use:   "reply",
		Short: "Post a message into an existing thread",
		Run: func(cmd *cobra.Command, args []string) {
			password, err := resolvePassword(creds.password)
			if err != nil {
				exitOnError(err)
			}

			svc, auditStore, err := buildService(cmd.Context())
			if err != nil {
				exitOnError(err)
			}
			defer auditStore.Close()

			res := svc.Reply(cmd.Context(), outreach.ReplyRequest{
				ProfileURL: creds.profile,
				Message:    message,
				Username:   creds.username,
				Password:   password,
				SessionKey: creds.sessionKey,
				Headless:   creds.headless(),
			})

			printLogs(res.Logs)
			printOutcome(res.Success, "reply")
			if res.Error != "" {
				fmt.Println(color.RedString("error: %s", res.Error))
			}
		},
	}

	creds.register(cmd)
	cmd.Flags().StringVar(&message, "message", "", "Message text (required)")
	cmd.MarkFlagRequired("message")
	return cmd
}

func conversationCmd() *cobra.Command {
	var creds credentialFlags
	var skipCheck bool

	cmd := &cobra.Command{
		Use:   "conversation",
		Short: "Scrape the message thread with a profile",
		Run: func(cmd *cobra.Command, args []string) {
			password, err := resolvePassword(creds.password)
			if err != nil {
				exitOnError(err)
			}

			svc, auditStore, err := buildService(cmd.Context())
			if err != nil {
				exitOnError(err)
			}
			defer auditStore.Close()

			res := svc.Conversation(cmd.Context(), outreach.ConversationRequest{
				ProfileURL:          creds.profile,
				Username:            creds.username,
				Password:            password,
				SessionKey:          creds.sessionKey,
				SkipConnectionCheck: skipCheck,
				Headless:            creds.headless(),
			})

			printLogs(res.Logs)
			printOutcome(res.Success, fmt.Sprintf("status: %s (connection: %s)", res.Status, res.ConnectionStatus))
			for _, msg := range res.Messages {
				label := color.YellowString("%s", msg.Sender)
				if msg.Sender == outreach.SenderUser {
					label = color.CyanString("%s", msg.Sender)
				}
				if msg.Timestamp != "" {
					fmt.Printf("  [%s] %s: %s\n", msg.Timestamp, label, msg.Content)
				} else {
					fmt.Printf("  %s: %s\n", label, msg.Content)
				}
			}
			if res.Error != "" {
				fmt.Println(color.RedString("error: %s", res.Error))
			}
		},
	}

	creds.register(cmd)
	cmd.Flags().BoolVar(&skipCheck, "skip-connection-check", false, "Assume the profile is connected")
	return cmd
}

func connectionCmd() *cobra.Command {
	var creds credentialFlags

	cmd := &cobra.Command{
		Use:   "connection",
		Short: "Check the connection status of a profile",
		Run: func(cmd *cobra.Command, args []string) {
			password, err := resolvePassword(creds.password)
			if err != nil {
				exitOnError(err)
			}

			svc, auditStore, err := buildService(cmd.Context())
			if err != nil {
				exitOnError(err)
			}
			defer auditStore.Close()

			res := svc.CheckConnection(cmd.Context(), outreach.CheckConnectionRequest{
				ProfileURL: creds.profile,
				Username:   creds.username,
				Password:   password,
				SessionKey: creds.sessionKey,
				Headless:   creds.headless(),
			})

			printLogs(res.Logs)
			printOutcome(res.Success, fmt.Sprintf("connection: %s", res.ConnectionStatus))
			if res.Error != "" {
				fmt.Println(color.RedString("error: %s", res.Error))
			}
		},
	}

	creds.register(cmd)
	return cmd
}
