package user

import (
	"context"

	"go.uber.org/zap"
)

// PasswordSummary is the read-only text of the password section.
func (e *ProfileEditor) PasswordSummary() string {
	if e.session.CurrentUser().HasPassword() {
		return msgPasswordIsSet
	}
	return msgPasswordNotSet
}

// EnterPasswordEdit opens the password form.
func (e *ProfileEditor) EnterPasswordEdit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.passwordEditing = true
	e.dismissLocked()
}

// CancelPasswordEdit closes the password form and forgets what was typed.
func (e *ProfileEditor) CancelPasswordEdit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.passwordEditing = false
	e.draft.clearPasswords()
	e.dismissLocked()
}

// CanSubmitPassword reports whether the password save button is enabled.
func (e *ProfileEditor) CanSubmitPassword() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft.NewPassword == e.draft.ConfirmPassword && e.status.State != StatusLoading
}

// SubmitPassword sends the new password. A mismatched confirmation fails
// with ErrPasswordMismatch before any remote call. The current password is
// sent only when the account already has one.
func (e *ProfileEditor) SubmitPassword(ctx context.Context) error {
	hadPassword := e.session.CurrentUser().HasPassword()

	e.mu.Lock()
	if !e.passwordEditing {
		e.mu.Unlock()
		return ErrNotEditing
	}
	if e.status.State == StatusLoading {
		e.mu.Unlock()
		return ErrBusy
	}
	if e.draft.NewPassword != e.draft.ConfirmPassword {
		e.status = OperationStatus{State: StatusFailed, Message: msgPasswordMismatch}
		e.mu.Unlock()
		return ErrPasswordMismatch
	}
	body := PasswordUpdate{NewPassword: e.draft.NewPassword}
	if hadPassword {
		current := e.draft.CurrentPassword
		body.CurrentPassword = &current
	}
	e.status = OperationStatus{State: StatusLoading}
	e.mu.Unlock()

	if err := e.client.Put(ctx, pathPassword, body, nil); err != nil {
		e.log.Warn("password update failed", zap.Bool("first", !hadPassword), zap.Error(err))
		e.finish(OperationStatus{State: StatusFailed, Message: remoteMessage(err, msgPasswordFailed)}, nil)
		return err
	}

	// The API never echoes passwords; flag the account locally so the next
	// change asks for the current one.
	e.session.UpdateCurrentUser(func(u *User) {
		if !u.HasPassword() {
			mask := passwordMask
			u.Password = &mask
		}
	})
	e.finish(OperationStatus{State: StatusSucceeded, Message: msgPasswordSaved}, func() {
		e.passwordEditing = false
		e.draft.clearPasswords()
	})
	return nil
}
