package player

// submitPassphrase compares the entry against the configured passphrase.
//
// This is a plaintext comparison against a value any client can read. It is cosmetic, not access control.
func (w *Widget) submitPassphrase() error {
	if w.limiter != nil && !w.limiter.Allow() {
		return w.notify(ErrThrottled)
	}

	if w.state.Access.Entry != w.passphrase {
		w.state.Access.Correct = false
		return w.notify(ErrWrongPassphrase)
	}

	w.state.Access.Correct = true
	w.state.Access.Entry = ""
	w.state.Access.PanelVisible = true
	return nil
}

// lock disables the file picker for the rest of the session.
func (w *Widget) lock() error {
	if !w.state.Access.PanelVisible {
		return ErrAdminRequired
	}
	w.state.Locked = true
	return nil
}
