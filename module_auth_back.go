//go:build !wasm

package user

import "net/http"

func (m *loginModule) RenderHTML() string {
	m.form.SetSSR(true)
	out := m.form.RenderHTML()
	for _, p := range registeredProviders() {
		out += `<a href="/oauth/` + p.Name() + `">Login with ` + p.Name() + `</a>`
	}
	return out
}

// Create signs in with email and password and returns the User.
func (m *loginModule) Create(data ...any) (any, error) {
	if len(data) == 0 {
		return nil, ErrInvalidCredentials
	}
	d, ok := data[0].(*LoginData)
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return Login(d.Email, d.Password)
}

func (m *loginModule) SetCookie(userID string, w http.ResponseWriter, r *http.Request) error {
	return setSessionCookie(userID, w, r)
}

func (m *registerModule) RenderHTML() string {
	m.form.SetSSR(true)
	return m.form.RenderHTML()
}

// Create opens a password account and returns the stored User.
func (m *registerModule) Create(data ...any) (any, error) {
	if len(data) == 0 {
		return nil, ErrInvalidData
	}
	d, ok := data[0].(*RegisterData)
	if !ok {
		return nil, ErrInvalidData
	}
	if len(d.Password) < minPasswordLen {
		return nil, ErrWeakPassword
	}
	u, err := CreateUser(User{Name: d.Name, Email: d.Email, Phone: d.Phone})
	if err != nil {
		return nil, err
	}
	if err := SetPassword(u.ID, d.Password); err != nil {
		return nil, err
	}
	return GetUser(u.ID)
}

func (m *registerModule) SetCookie(userID string, w http.ResponseWriter, r *http.Request) error {
	return setSessionCookie(userID, w, r)
}
