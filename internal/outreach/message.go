package outreach

// composerOutcome is a terminal state of the open-composer sub-machine.
type composerOutcome int

const (
	composerFailed composerOutcome = iota
	composerOpen
	composerUpsell
)

// openComposer opens the message popup via the direct button or the
// overflow menu, then waits for exactly one of the two valid terminal
// states: the input became visible, or a premium upsell modal appeared
// (which is dismissed before reporting). Anything else is a failure.
func (f *Flows) openComposer() composerOutcome {
	opened := false

	if sel, ok := f.res.First(f.d, messageButton); ok {
		// The button renders disabled while profile data loads.
		if f.pollUntil(func() bool { return f.d.Enabled(sel) }) {
			if err := f.d.Click(sel); err != nil {
				f.trail.Add("Message button click failed: %v", err)
			} else {
				f.trail.Add("Clicked direct message button")
				opened = true
			}
		} else {
			f.trail.Add("Message button never became enabled")
		}
	}

	if !opened {
		opened = f.messageViaOverflow()
	}
	if !opened {
		f.trail.Add("No path to the message composer")
		return composerFailed
	}

	outcome := composerFailed
	f.pollUntil(func() bool {
		if f.anyVisible(composerInput) {
			outcome = composerOpen
			return true
		}
		if f.anyPresent(upsellModal) {
			outcome = composerUpsell
			return true
		}
		return false
	})

	switch outcome {
	case composerOpen:
		f.trail.Add("Composer input visible")
	case composerUpsell:
		f.trail.Add("Premium upsell modal appeared")
		f.dismissUpsell()
	default:
		f.trail.Add("Composer neither opened nor upsold within budget")
	}
	return outcome
}

// messageViaOverflow tries the "...to message" item in the overflow menu.
func (f *Flows) messageViaOverflow() bool {
	moreSel, ok := f.res.First(f.d, moreActionsButton)
	if !ok {
		f.trail.Add("No overflow menu available for message")
		return false
	}
	if err := f.d.Click(moreSel); err != nil {
		f.trail.Add("Overflow menu click failed: %v", err)
		return false
	}

	itemsSel, ok := f.res.First(f.d, dropdownItems)
	if !ok {
		f.trail.Add("Overflow menu opened but rendered no items")
		return false
	}
	item, ok := f.res.MenuItem(f.d, itemsSel, "message")
	if !ok {
		return false
	}
	if err := item.Click(); err != nil {
		f.trail.Add("Overflow message item click failed: %v", err)
		return false
	}
	f.trail.Add("Opened composer via overflow menu")
	return true
}

// dismissUpsell closes the paywall modal so no dangling UI state leaks
// into the next flow. Best effort.
func (f *Flows) dismissUpsell() {
	sel, ok := f.res.First(f.d, upsellDismissButton)
	if !ok {
		return
	}
	if err := f.d.Click(sel); err != nil {
		f.trail.Add("Upsell dismiss failed: %v", err)
		return
	}
	f.trail.Add("Upsell modal dismissed")
}

// fillAndSend types the message and submits it. Some input variants
// reject programmatic fill; those get the insert-text paste fallback.
func (f *Flows) fillAndSend(message string) bool {
	inputSel, ok := f.res.FirstVisible(f.d, composerInput)
	if !ok {
		f.trail.Add("Composer input vanished before fill")
		return false
	}

	if err := f.d.Fill(inputSel, message); err != nil {
		f.trail.Add("Programmatic fill rejected, pasting instead: %v", err)
		if err := f.d.Paste(inputSel, message); err != nil {
			f.trail.Add("Paste fallback failed: %v", err)
			return false
		}
	}

	sendSel, ok := f.res.First(f.d, composerSendButton)
	if !ok {
		f.trail.Add("Composer send button not found")
		return false
	}
	if err := f.d.Click(sendSel); err != nil {
		f.trail.Add("Composer send click failed: %v", err)
		return false
	}
	f.trail.Add("Message submitted")
	return true
}

// closeComposer closes the message popup. Best effort, called on every
// exit path so the next flow starts from a clean page.
func (f *Flows) closeComposer() {
	sel, ok := f.res.First(f.d, composerCloseButton)
	if !ok {
		return
	}
	if err := f.d.Click(sel); err != nil {
		f.trail.Add("Composer close failed: %v", err)
		return
	}
	f.trail.Add("Composer closed")
}

// SendMessageToProfile is the reach-out core: try the popup message
// path, and if it fails for any reason fall back to a connection
// request after re-navigating to the profile. The business goal is
// reaching the prospect; the channel is secondary.
func (f *Flows) SendMessageToProfile(profileURL, message string) Action {
	navOK := true
	if err := f.gotoProfile(profileURL); err != nil {
		navOK = false
	}

	if navOK {
		switch f.openComposer() {
		case composerOpen:
			if f.fillAndSend(message) {
				return ActionMessage
			}
		case composerUpsell:
			f.trail.Add("Messaging blocked by paywall")
		}
	}

	f.trail.Add("Connect fallback: message path unavailable")
	if err := f.gotoProfile(profileURL); err != nil {
		return ActionFailed
	}
	if f.AttemptConnect() {
		return ActionConnect
	}
	return ActionFailed
}
