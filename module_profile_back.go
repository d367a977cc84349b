//go:build !wasm

package user

import (
	"encoding/base64"
	"net/url"
	"strings"
)

func (m *profileModule) RenderHTML() string {
	m.form.SetSSR(true)
	m.passwordForm.SetSSR(true)
	return m.form.RenderHTML() + "<hr>" + m.passwordForm.RenderHTML()
}

// Update validates and applies one profile section for user id.
func (m *profileModule) Update(id string, data ...any) error {
	if len(data) == 0 {
		return nil
	}
	if err := m.ValidateData('u', data...); err != nil {
		return err
	}
	_, err := m.apply(id, data[0])
	return err
}

// apply dispatches on the section body and returns the stored record.
// Form validation is the caller's job.
func (m *profileModule) apply(id string, data any) (User, error) {
	switch d := data.(type) {
	case *ProfileUpdate:
		return UpdateProfile(id, *d)
	case *PasswordUpdate:
		if err := ChangePassword(id, d.CurrentPassword, d.NewPassword); err != nil {
			return User{}, err
		}
		return GetUser(id)
	case *PictureUpdate:
		if err := validatePicture(d.ProfilePicture, store.config.MaxPictureBytes); err != nil {
			return User{}, err
		}
		return SetProfilePicture(id, d.ProfilePicture)
	}
	return User{}, ErrInvalidData
}

// validatePicture accepts "" (remove), an http(s) URL, or a base64 image
// data: URL whose payload fits in maxBytes.
func validatePicture(picture string, maxBytes int) error {
	if picture == "" {
		return nil
	}
	if strings.HasPrefix(picture, "data:") {
		meta, payload, ok := strings.Cut(strings.TrimPrefix(picture, "data:"), ",")
		if !ok || !strings.HasPrefix(meta, "image/") || !strings.HasSuffix(meta, ";base64") {
			return ErrInvalidPicture
		}
		if base64.StdEncoding.DecodedLen(len(payload)) > maxBytes+2 {
			return ErrInvalidPicture
		}
		if _, err := base64.StdEncoding.DecodeString(payload); err != nil {
			return ErrInvalidPicture
		}
		return nil
	}
	u, err := url.Parse(picture)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidPicture
	}
	return nil
}
