//go:build !wasm

package user

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var PasswordHashCost = bcrypt.DefaultCost

const minPasswordLen = 8

func Login(email, password string) (User, error) {
	u, err := GetUserByEmail(email)
	if err != nil {
		return User{}, ErrInvalidCredentials
	}
	if err := VerifyPassword(u.ID, password); err != nil {
		return User{}, err
	}
	return u, nil
}

func SetPassword(userID, password string) error {
	if len(password) < minPasswordLen {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	if err != nil {
		return err
	}
	return upsertIdentity(userID, providerLocal, string(hash), "")
}

func VerifyPassword(userID, password string) error {
	identity, err := identityOf(userID, providerLocal)
	if err != nil {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(identity.ProviderID), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// HasLocalPassword reports whether userID can sign in with a password.
func HasLocalPassword(userID string) (bool, error) {
	_, err := identityOf(userID, providerLocal)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// ChangePassword sets a new password. When the account already has one,
// current must be present and match it; a first password needs no current.
func ChangePassword(userID string, current *string, newPassword string) error {
	has, err := HasLocalPassword(userID)
	if err != nil {
		return err
	}
	if has {
		if current == nil || *current == "" {
			return ErrCurrentPassword
		}
		if err := VerifyPassword(userID, *current); err != nil {
			return err
		}
	}
	return SetPassword(userID, newPassword)
}
