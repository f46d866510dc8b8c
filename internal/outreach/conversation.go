package outreach

import (
	"errors"
	"strings"

	"github.com/joss/openoutreach/internal/browser"
)

// CheckConnectionStatus derives the connection state from the live top
// card. It never errors: without positive evidence the answer is
// not_connected.
func (f *Flows) CheckConnectionStatus(profileURL string) ConnectionStatus {
	if err := f.gotoProfile(profileURL); err != nil {
		return StatusNotConnected
	}
	return f.connectionStatusOnPage()
}

func (f *Flows) connectionStatusOnPage() ConnectionStatus {
	if _, ok := f.res.First(f.d, topCard); !ok {
		f.trail.Add("Top card not found, assuming not connected")
		return StatusNotConnected
	}

	if f.conceptTextContains(pendingBadge, "pending") {
		f.trail.Add("Pending invitation detected")
		return StatusPending
	}
	if f.conceptTextContains(firstDegreeBadge, "1st") {
		f.trail.Add("1st-degree badge detected")
		return StatusConnected
	}
	if _, ok := f.res.First(f.d, connectButton); ok {
		f.trail.Add("Connect control present, not connected")
		return StatusNotConnected
	}

	f.trail.Add("No connection evidence on top card, assuming not connected")
	return StatusNotConnected
}

// conceptTextContains reports whether any matching element of c
// carries the given text.
func (f *Flows) conceptTextContains(c browser.Concept, want string) bool {
	for _, sel := range c.Selectors {
		if f.d.Count(sel) == 0 {
			continue
		}
		text, err := f.d.Text(sel)
		if err == nil && containsFold(text, want) {
			return true
		}
	}
	return false
}

// FetchConversation scrapes the message thread with a profile. Unless
// skipCheck is set (caller just sent a message and knows the state),
// the connection status gates the fetch: no thread is scraped for a
// profile that is not a 1st-degree connection.
func (f *Flows) FetchConversation(profileURL string, skipCheck bool) Conversation {
	conv := Conversation{Messages: []Message{}}

	if skipCheck {
		conv.ConnectionStatus = StatusConnected
		if err := f.gotoProfile(profileURL); err != nil {
			conv.Status = ConversationError
			conv.Err = err
			return conv
		}
	} else {
		conv.ConnectionStatus = f.CheckConnectionStatus(profileURL)
		if conv.ConnectionStatus != StatusConnected {
			f.trail.Add("Not connected, no thread to fetch")
			conv.Status = ConversationNoHistory
			return conv
		}
	}

	defer f.closeComposer()

	switch f.openComposer() {
	case composerUpsell:
		conv.Status = ConversationUpsell
		conv.Err = errors.New("message history is behind a premium upsell")
		return conv
	case composerFailed:
		conv.Status = ConversationError
		conv.Err = errors.New("could not open message composer")
		return conv
	}

	if _, ok := f.res.First(f.d, threadContainer); !ok {
		f.trail.Add("No thread container, conversation has no history")
		conv.Status = ConversationNoHistory
		return conv
	}

	items := f.d.Elements(threadItemSelector)
	if len(items) == 0 {
		f.trail.Add("Thread container empty")
		conv.Status = ConversationNoHistory
		return conv
	}

	for _, item := range items {
		conv.Messages = append(conv.Messages, scrapeMessage(item))
	}
	f.trail.Add("Scraped %d thread messages", len(conv.Messages))
	conv.Status = ConversationSuccess
	return conv
}

// scrapeMessage extracts one thread item. Sender classification: the
// other-party DOM marker wins; otherwise a "you"-heading heuristic
// claims the message for the user; with no evidence of self-authorship
// the sender defaults to candidate. The message is never dropped.
func scrapeMessage(item browser.Element) Message {
	content := ""
	for _, sel := range threadItemTextSelectors {
		if text, ok := item.TextOf(sel); ok {
			content = strings.TrimSpace(text)
			break
		}
	}
	if content == "" {
		content = strings.TrimSpace(item.Text())
	}

	sender := SenderCandidate
	if !item.Has(otherPartyMarker) {
		if heading, ok := item.TextOf(senderHeadingSelector); ok && containsFold(heading, "you") {
			sender = SenderUser
		}
	}

	timestamp := ""
	if ts, ok := item.TextOf(itemTimestampSelector); ok {
		timestamp = strings.TrimSpace(ts)
	}

	return Message{Sender: sender, Content: content, Timestamp: timestamp}
}

// SendReply posts a message into an existing thread. Reply has binary
// semantics: it either landed or it did not.
func (f *Flows) SendReply(profileURL, message string) bool {
	if err := f.gotoProfile(profileURL); err != nil {
		return false
	}

	defer f.closeComposer()

	if f.openComposer() != composerOpen {
		f.trail.Add("Reply composer unavailable")
		return false
	}
	return f.fillAndSend(message)
}
