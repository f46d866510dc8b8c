// Package outreach implements the profile-level flows (connect,
// message, conversation) and the orchestrator that composes them into
// the four request-facing operations.
package outreach

// Action is the channel that ultimately carried a reach-out.
type Action string

const (
	ActionMessage Action = "message"
	ActionConnect Action = "connect"
	ActionFailed  Action = "failed"
)

// ConnectionStatus is derived from the live page, never stored.
type ConnectionStatus string

const (
	StatusConnected    ConnectionStatus = "connected"
	StatusPending      ConnectionStatus = "pending"
	StatusNotConnected ConnectionStatus = "not_connected"
)

// ConversationStatus classifies the outcome of a thread fetch.
type ConversationStatus string

const (
	ConversationSuccess      ConversationStatus = "success"
	ConversationUpsell       ConversationStatus = "upsell_blocked"
	ConversationNoHistory    ConversationStatus = "no_history"
	ConversationNotConnected ConversationStatus = "not_connected"
	ConversationError        ConversationStatus = "error"
)

// Message sender classification.
const (
	SenderUser      = "user"
	SenderCandidate = "candidate"
)

// Message is one scraped thread item. Produced transiently; nothing in
// this package persists it.
type Message struct {
	Sender    string `json:"sender"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Conversation is the result of scraping a message thread.
type Conversation struct {
	Status           ConversationStatus `json:"status"`
	Messages         []Message          `json:"messages"`
	ConnectionStatus ConnectionStatus   `json:"connection_status"`
	Err              error              `json:"-"`
}
