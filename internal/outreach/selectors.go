package outreach

import "github.com/joss/openoutreach/internal/browser"

// Selector tables for the profile and messaging UI. Each concept
// carries ordered structural fallbacks; the markup is A/B-tested and
// unversioned, so no single selector is trusted. The resolver logs
// which variant matched so drift is visible in the request trail.
var (
	topCard = browser.Concept{
		Name: "profile top card",
		Selectors: []string{
			"section.pv-top-card",
			".ph5.pb5",
			`main section[data-member-id]`,
			"main > section:first-of-type",
		},
	}

	connectButton = browser.Concept{
		Name: "connect button",
		Selectors: []string{
			`button[aria-label*="Invite"][aria-label*="connect"]`,
			`button[aria-label^="Connect"]`,
			`.pv-top-card button[data-control-name="connect"]`,
		},
	}

	moreActionsButton = browser.Concept{
		Name: "more actions button",
		Selectors: []string{
			`button[aria-label="More actions"]`,
			".pv-top-card button.artdeco-dropdown__trigger",
			`.pvs-profile-actions button[aria-label*="More"]`,
		},
	}

	dropdownItems = browser.Concept{
		Name: "open dropdown items",
		Selectors: []string{
			".artdeco-dropdown__content--is-open .artdeco-dropdown__item",
			".artdeco-dropdown__content--is-open li",
			`div[role="menu"] div[role="button"]`,
		},
	}

	sendInviteButton = browser.Concept{
		Name: "send invitation button",
		Selectors: []string{
			`button[aria-label="Send without a note"]`,
			`button[aria-label="Send invitation"]`,
			`button[aria-label^="Send"]`,
			".artdeco-modal__actionbar button.artdeco-button--primary",
		},
	}

	messageButton = browser.Concept{
		Name: "message button",
		Selectors: []string{
			`.pv-top-card a[aria-label*="Message"]`,
			`.pv-top-card button[aria-label*="Message"]`,
			`main button[aria-label^="Message"]`,
		},
	}

	composerInput = browser.Concept{
		Name: "message composer input",
		Selectors: []string{
			".msg-form__contenteditable",
			`div[role="textbox"][aria-label*="message"]`,
			`.msg-form div[contenteditable="true"]`,
		},
	}

	composerSendButton = browser.Concept{
		Name: "composer send button",
		Selectors: []string{
			"button.msg-form__send-button",
			`.msg-form button[type="submit"]`,
			`button[data-control-name="send"]`,
		},
	}

	composerCloseButton = browser.Concept{
		Name: "composer close button",
		Selectors: []string{
			`.msg-overlay-conversation-bubble button[aria-label*="Close your conversation"]`,
			".msg-overlay-bubble-header__controls button:last-of-type",
			`.msg-overlay-conversation-bubble header button[aria-label*="Close"]`,
		},
	}

	upsellModal = browser.Concept{
		Name: "premium upsell modal",
		Selectors: []string{
			".artdeco-modal--premium-upsell",
			`div[aria-labelledby*="upsell"]`,
			".premium-upsell-link",
		},
	}

	upsellDismissButton = browser.Concept{
		Name: "upsell dismiss button",
		Selectors: []string{
			`.artdeco-modal--premium-upsell button[aria-label="Dismiss"]`,
			`div[aria-labelledby*="upsell"] button[aria-label="Dismiss"]`,
			".artdeco-modal__dismiss",
		},
	}

	pendingBadge = browser.Concept{
		Name: "pending badge",
		Selectors: []string{
			`.pv-top-card button[aria-label*="Pending"]`,
			`main span.artdeco-button__text`,
		},
	}

	firstDegreeBadge = browser.Concept{
		Name: "first degree badge",
		Selectors: []string{
			".pv-top-card .dist-value",
			`span.distance-badge .visually-hidden`,
		},
	}

	threadContainer = browser.Concept{
		Name: "message thread container",
		Selectors: []string{
			".msg-s-message-list-content",
			"ul.msg-s-message-list",
			".msg-overlay-conversation-bubble .msg-s-message-list",
		},
	}
)

// Thread item selectors, used element-scoped during scraping.
const (
	threadItemSelector = "li.msg-s-message-list__event, .msg-s-event-listitem"

	// otherPartyMarker flags an item authored by the other side.
	otherPartyMarker = ".msg-s-event-listitem--other"

	// senderHeadingSelector holds the group author name heading.
	senderHeadingSelector = ".msg-s-message-group__name, .msg-s-message-group__profile-link"

	// itemTimestampSelector is the best-effort timestamp node.
	itemTimestampSelector = "time.msg-s-message-group__timestamp, time"
)

// threadItemTextSelectors are tried in order for an item's body text.
var threadItemTextSelectors = []string{
	".msg-s-event-listitem__body",
	"p.msg-s-event__content",
	".msg-s-event-listitem__message-bubble",
}
