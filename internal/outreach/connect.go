package outreach

// AttemptConnect tries to send a connection request via the direct
// top-card button, falling back to the overflow menu. Every missing
// control is a soft failure: an absent button usually means already
// connected, a UI variant, or rate limiting, none of which are bugs.
func (f *Flows) AttemptConnect() bool {
	if _, ok := f.res.First(f.d, topCard); !ok {
		f.trail.Add("Top card not found, cannot connect")
		return false
	}

	clicked := false
	if sel, ok := f.res.First(f.d, connectButton); ok {
		if err := f.d.Click(sel); err != nil {
			f.trail.Add("Direct connect click failed: %v", err)
		} else {
			f.trail.Add("Clicked direct connect button")
			clicked = true
		}
	}

	if !clicked && !f.connectViaOverflow() {
		return false
	}

	sendSel, ok := f.res.First(f.d, sendInviteButton)
	if !ok {
		f.trail.Add("Invitation confirmation control not found")
		return false
	}
	if err := f.d.Click(sendSel); err != nil {
		f.trail.Add("Invitation confirmation click failed: %v", err)
		return false
	}

	f.trail.Add("Connection request sent")
	return true
}

// connectViaOverflow opens the More-actions menu and clicks the
// connect item inside the now-open dropdown.
func (f *Flows) connectViaOverflow() bool {
	moreSel, ok := f.res.First(f.d, moreActionsButton)
	if !ok {
		f.trail.Add("No overflow menu available for connect")
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
	item, ok := f.res.MenuItem(f.d, itemsSel, "connect")
	if !ok {
		return false
	}
	if err := item.Click(); err != nil {
		f.trail.Add("Overflow connect item click failed: %v", err)
		return false
	}
	f.trail.Add("Clicked connect via overflow menu")
	return true
}
