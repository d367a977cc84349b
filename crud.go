//go:build !wasm

package user

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/tinywasm/unixid"
)

// userColumns is shared by every users query so scanUser stays in step.
const userColumns = `id, COALESCE(email, ''), name, COALESCE(phone, ''), COALESCE(address, ''),
	is_tasker, is_active, COALESCE(profile_picture, ''), created_at,
	EXISTS(SELECT 1 FROM user_identities i WHERE i.user_id = users.id AND i.provider = 'local')`

// nullableStr converts "" to nil so SQLite stores NULL instead of an empty string.
func nullableStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func scanUser(row Scanner) (User, error) {
	var u User
	var hasPassword bool
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.Phone, &u.Address,
		&u.IsTasker, &u.IsActive, &u.ProfilePicture, &u.CreatedAt,
		&hasPassword,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	if hasPassword {
		mask := passwordMask
		u.Password = &mask
	}
	return u, nil
}

// CreateUser inserts a new active account. Only the identity, contact,
// tasker and picture fields of u are read.
func CreateUser(u User) (User, error) {
	if strings.TrimSpace(u.Name) == "" {
		return User{}, ErrNameRequired
	}
	id, err := unixid.NewUnixID()
	if err != nil {
		return User{}, err
	}

	u.ID = id.GetNewID()
	u.IsActive = true
	u.Password = nil
	u.CreatedAt = time.Now().Unix()

	if err := store.exec.Exec(
		`INSERT INTO users (id, email, name, phone, address, is_tasker, is_active, profile_picture, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, nullableStr(u.Email), u.Name, u.Phone, u.Address, u.IsTasker, u.IsActive, nullableStr(u.ProfilePicture), u.CreatedAt,
	); err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return u, nil
}

func GetUser(id string) (User, error) {
	return scanUser(store.exec.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

func GetUserByEmail(email string) (User, error) {
	return scanUser(store.exec.QueryRow("SELECT "+userColumns+" FROM users WHERE email = ?", email))
}

// UpdateProfile replaces the editable fields and returns the stored record.
func UpdateProfile(id string, p ProfileUpdate) (User, error) {
	if strings.TrimSpace(p.Name) == "" {
		return User{}, ErrNameRequired
	}
	if _, err := GetUser(id); err != nil {
		return User{}, err
	}
	if err := store.exec.Exec(
		`UPDATE users SET name = ?, email = ?, phone = ?, address = ?, is_tasker = ?, is_active = ? WHERE id = ?`,
		strings.TrimSpace(p.Name), nullableStr(strings.TrimSpace(p.Email)), p.Phone, p.Address, p.IsTasker, p.IsActive, id,
	); err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}
	return GetUser(id)
}

// SetProfilePicture stores picture (a URL or data: URL) and returns the record.
func SetProfilePicture(id, picture string) (User, error) {
	if _, err := GetUser(id); err != nil {
		return User{}, err
	}
	if err := store.exec.Exec("UPDATE users SET profile_picture = ? WHERE id = ?", nullableStr(picture), id); err != nil {
		return User{}, err
	}
	return GetUser(id)
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "constraint: unique") ||
		strings.Contains(err.Error(), "duplicate key")
}
