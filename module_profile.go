package user

import (
	"strings"

	"github.com/tinywasm/form"
)

// profileModule backs the profile page: the contact form, the password
// sub-form and the picture upload share one handler.
type profileModule struct {
	form         *form.Form
	emailForm    *form.Form
	phoneForm    *form.Form
	passwordForm *form.Form
}

func (m *profileModule) HandlerName() string { return "profile" }
func (m *profileModule) ModuleTitle() string { return "Profile" }

func (m *profileModule) ValidateData(action byte, data ...any) error {
	if len(data) == 0 {
		return nil
	}

	switch d := data[0].(type) {
	case *ProfileData:
		return m.form.ValidateData(action, data...)
	case *ProfileUpdate:
		return m.validateUpdate(action, d)
	case *PasswordData:
		return m.passwordForm.ValidateData(action, data...)
	}
	return nil
}

// validateUpdate checks a personal info save: the name only has to be
// non-empty and the phone is checked only when given.
func (m *profileModule) validateUpdate(action byte, d *ProfileUpdate) error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrNameRequired
	}
	if err := m.emailForm.ValidateData(action, &EmailData{Email: d.Email}); err != nil {
		return err
	}
	if d.Phone == "" {
		return nil
	}
	return m.phoneForm.ValidateData(action, &PhoneData{Phone: d.Phone})
}
