//go:build !wasm

package user

import (
	"database/sql"
	"errors"
	"time"

	"github.com/tinywasm/unixid"
)

const (
	providerLocal = "local"
	identityCols  = "id, user_id, provider, provider_id, COALESCE(email, ''), created_at"
)

func scanIdentity(row Scanner) (Identity, error) {
	var i Identity
	if err := row.Scan(&i.ID, &i.UserID, &i.Provider, &i.ProviderID, &i.Email, &i.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Identity{}, ErrNotFound
		}
		return Identity{}, err
	}
	return i, nil
}

// LinkIdentity attaches a login method to a user. For the local provider
// providerID holds the bcrypt hash.
func LinkIdentity(userID, provider, providerID, email string) error {
	u, err := unixid.NewUnixID()
	if err != nil {
		return err
	}
	return store.exec.Exec(
		`INSERT INTO user_identities (id, user_id, provider, provider_id, email, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.GetNewID(), userID, provider, providerID, nullableStr(email), time.Now().Unix(),
	)
}

func GetIdentityByProvider(provider, providerID string) (Identity, error) {
	return scanIdentity(store.exec.QueryRow(
		"SELECT "+identityCols+" FROM user_identities WHERE provider = ? AND provider_id = ?",
		provider, providerID,
	))
}

func identityOf(userID, provider string) (Identity, error) {
	return scanIdentity(store.exec.QueryRow(
		"SELECT "+identityCols+" FROM user_identities WHERE user_id = ? AND provider = ?",
		userID, provider,
	))
}

func GetUserIdentities(userID string) ([]Identity, error) {
	rows, err := store.exec.Query("SELECT "+identityCols+" FROM user_identities WHERE user_id = ?", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var identities []Identity
	for rows.Next() {
		i, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		identities = append(identities, i)
	}
	return identities, rows.Err()
}

func upsertIdentity(userID, provider, providerID, email string) error {
	_, err := identityOf(userID, provider)
	switch {
	case err == nil:
		return store.exec.Exec("UPDATE user_identities SET provider_id = ?, email = ? WHERE user_id = ? AND provider = ?",
			providerID, nullableStr(email), userID, provider)
	case errors.Is(err, ErrNotFound):
		return LinkIdentity(userID, provider, providerID, email)
	default:
		return err
	}
}

// UnlinkIdentity removes a login method. The last remaining one cannot be
// removed, so removing the local identity of an OAuth user turns the account
// back into one without a password.
func UnlinkIdentity(userID, provider string) error {
	identities, err := GetUserIdentities(userID)
	if err != nil {
		return err
	}

	found := false
	for _, id := range identities {
		if id.Provider == provider {
			found = true
			break
		}
	}
	if !found {
		return ErrNotFound
	}
	if len(identities) <= 1 {
		return ErrCannotUnlink
	}
	return store.exec.Exec("DELETE FROM user_identities WHERE user_id = ? AND provider = ?", userID, provider)
}
