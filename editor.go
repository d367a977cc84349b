package user

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Remote paths, relative to the Client's base URL.
const (
	pathProfileUpdate = "users/profile/update"
	pathPassword      = "users/profile/password"
	pathPicture       = "users/profile"
)

const (
	msgProfileSaved     = "Profile updated successfully"
	msgProfileFailed    = "Failed to update profile"
	msgPasswordSaved    = "Password updated successfully"
	msgPasswordFailed   = "Failed to update password"
	msgPasswordMismatch = "New password and confirmation do not match"
	msgUploadFailed     = "Failed to upload profile picture"
	msgPasswordIsSet    = "Your account is protected with a password."
	msgPasswordNotSet   = "You have not set a password yet. Set one to also sign in with your email."
)

// Draft field names accepted by UpdateField.
const (
	FieldName            = "name"
	FieldEmail           = "email"
	FieldPhone           = "phone"
	FieldAddress         = "address"
	FieldIsTasker        = "isTasker"
	FieldIsActive        = "isActive"
	FieldCurrentPassword = "currentPassword"
	FieldNewPassword     = "newPassword"
	FieldConfirmPassword = "confirmPassword"
)

// OperationState is the phase of a personal info or password save.
type OperationState uint8

const (
	StatusIdle OperationState = iota
	StatusLoading
	StatusSucceeded
	StatusFailed
)

func (s OperationState) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	}
	return "idle"
}

// OperationStatus is the outcome of the latest personal-info or password
// save. Message is set for StatusSucceeded and StatusFailed.
type OperationStatus struct {
	State   OperationState
	Message string
}

// Draft is the unsaved copy of the editable user fields plus the three
// password inputs.
type Draft struct {
	Name            string
	Email           string
	Phone           string
	Address         string
	IsTasker        bool
	IsActive        bool
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

func draftFrom(u User) Draft {
	return Draft{
		Name:     u.Name,
		Email:    u.Email,
		Phone:    u.Phone,
		Address:  u.Address,
		IsTasker: u.IsTasker,
		IsActive: u.IsActive,
	}
}

func (d Draft) profileUpdate() ProfileUpdate {
	return ProfileUpdate{
		Name:     d.Name,
		Email:    d.Email,
		Phone:    d.Phone,
		Address:  d.Address,
		IsTasker: d.IsTasker,
		IsActive: d.IsActive,
	}
}

func (d *Draft) clearPasswords() {
	d.CurrentPassword, d.NewPassword, d.ConfirmPassword = "", "", ""
}

// ProfileEditor is the view-model of the profile page. Personal info and
// password saves share one OperationStatus; the picture upload tracks its
// own state. Methods are safe to call from several goroutines, and the
// Submit/Confirm methods block until the remote call returns.
type ProfileEditor struct {
	session SessionProvider
	client  Client
	log     *zap.Logger

	mu                  sync.Mutex
	draft               Draft
	personalInfoEditing bool
	passwordEditing     bool
	status              OperationStatus

	pendingImage string
	uploading    bool
	uploadError  string
}

// NewProfileEditor returns an editor for the session's user. A nil log
// discards output.
func NewProfileEditor(session SessionProvider, client Client, log *zap.Logger) *ProfileEditor {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileEditor{
		session: session,
		client:  client,
		log:     log.Named("profile"),
		draft:   draftFrom(session.CurrentUser()),
	}
}

// User returns the session's current record.
func (e *ProfileEditor) User() User { return e.session.CurrentUser() }

// Draft returns a copy of the unsaved form values.
func (e *ProfileEditor) Draft() Draft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

// Status returns the outcome of the latest personal info or password save.
func (e *ProfileEditor) Status() OperationStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// PersonalInfoEditing reports whether the personal info form is open.
func (e *ProfileEditor) PersonalInfoEditing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.personalInfoEditing
}

// PasswordEditing reports whether the password form is open.
func (e *ProfileEditor) PasswordEditing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.passwordEditing
}

// DismissStatus clears a finished status banner. A running save is kept.
func (e *ProfileEditor) DismissStatus() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dismissLocked()
}

func (e *ProfileEditor) dismissLocked() {
	if e.status.State != StatusLoading {
		e.status = OperationStatus{}
	}
}

// EnterEditMode reloads the draft from the current user and opens the
// personal info form.
func (e *ProfileEditor) EnterEditMode() {
	u := e.session.CurrentUser()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft = draftFrom(u)
	e.personalInfoEditing = true
	e.dismissLocked()
}

// CancelEditMode throws away the draft and closes the personal info form.
func (e *ProfileEditor) CancelEditMode() {
	u := e.session.CurrentUser()
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft = draftFrom(u)
	e.personalInfoEditing = false
	e.dismissLocked()
}

// UpdateField sets one draft field. isTasker and isActive take a bool,
// every other field a string.
func (e *ProfileEditor) UpdateField(name string, value any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch name {
	case FieldIsTasker, FieldIsActive:
		b, ok := value.(bool)
		if !ok {
			return ErrFieldType
		}
		if name == FieldIsTasker {
			e.draft.IsTasker = b
		} else {
			e.draft.IsActive = b
		}
		return nil
	}

	p, known := e.stringField(name)
	if !known {
		return ErrUnknownField
	}
	s, ok := value.(string)
	if !ok {
		return ErrFieldType
	}
	*p = s
	return nil
}

func (e *ProfileEditor) stringField(name string) (*string, bool) {
	switch name {
	case FieldName:
		return &e.draft.Name, true
	case FieldEmail:
		return &e.draft.Email, true
	case FieldPhone:
		return &e.draft.Phone, true
	case FieldAddress:
		return &e.draft.Address, true
	case FieldCurrentPassword:
		return &e.draft.CurrentPassword, true
	case FieldNewPassword:
		return &e.draft.NewPassword, true
	case FieldConfirmPassword:
		return &e.draft.ConfirmPassword, true
	}
	return nil, false
}

// SubmitPersonalInfo saves the personal info draft. On success the server's
// record replaces the session user and the form closes; on failure the form
// stays open with the server's message in Status.
func (e *ProfileEditor) SubmitPersonalInfo(ctx context.Context) error {
	e.mu.Lock()
	if !e.personalInfoEditing {
		e.mu.Unlock()
		return ErrNotEditing
	}
	if e.status.State == StatusLoading {
		e.mu.Unlock()
		return ErrBusy
	}
	body := e.draft.profileUpdate()
	e.status = OperationStatus{State: StatusLoading}
	e.mu.Unlock()

	var out userEnvelope
	err := e.client.Put(ctx, pathProfileUpdate, body, &out)
	if err == nil && out.User == nil {
		err = ErrMalformedResponse
	}
	if err != nil {
		e.log.Warn("personal info update failed", zap.Error(err))
		e.finish(OperationStatus{State: StatusFailed, Message: remoteMessage(err, msgProfileFailed)}, nil)
		return err
	}

	e.session.SetCurrentUser(*out.User)
	e.finish(OperationStatus{State: StatusSucceeded, Message: msgProfileSaved}, func() {
		e.personalInfoEditing = false
	})
	return nil
}

// finish records the outcome of a save; then runs under the lock.
// Completion only ever closes a form, so a late answer cannot reopen one.
func (e *ProfileEditor) finish(st OperationStatus, then func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status = st
	if then != nil {
		then()
	}
}
