package user

import "github.com/tinywasm/form"

// loginModule and registerModule issue the session cookie the profile API
// authenticates with.
type loginModule struct {
	form *form.Form
}

func (m *loginModule) HandlerName() string { return "login" }
func (m *loginModule) ModuleTitle() string { return "Login" }

func (m *loginModule) ValidateData(action byte, data ...any) error {
	return m.form.ValidateData(action, data...)
}

type registerModule struct {
	form *form.Form
}

func (m *registerModule) HandlerName() string { return "register" }
func (m *registerModule) ModuleTitle() string { return "Register" }

func (m *registerModule) ValidateData(action byte, data ...any) error {
	return m.form.ValidateData(action, data...)
}
