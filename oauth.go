//go:build !wasm

package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/tinywasm/unixid"
	"go.uber.org/zap"
)

const oauthStateTTL = 600 // 10 minutes

// BeginOAuth stores a single-use state and returns the provider's consent URL.
func BeginOAuth(providerName string) (string, error) {
	p := getProvider(providerName)
	if p == nil {
		return "", ErrProviderNotFound
	}

	u, err := unixid.NewUnixID()
	if err != nil {
		return "", err
	}
	state := u.GetNewID()

	now := time.Now().Unix()
	if err := store.exec.Exec(
		"INSERT INTO user_oauth_states (state, provider, expires_at, created_at) VALUES (?, ?, ?, ?)",
		state, providerName, now+oauthStateTTL, now,
	); err != nil {
		return "", err
	}

	return p.AuthCodeURL(state), nil
}

// CompleteOAuth finishes the callback and returns the signed-in user and
// whether the account was created by this call. Accounts created here have
// no local password until the user sets one from the profile page.
func CompleteOAuth(ctx context.Context, providerName, state, code string) (User, bool, error) {
	if err := consumeState(state, providerName); err != nil {
		return User{}, false, ErrInvalidOAuthState
	}

	p := getProvider(providerName)
	if p == nil {
		return User{}, false, ErrProviderNotFound
	}

	token, err := p.ExchangeCode(ctx, code)
	if err != nil {
		return User{}, false, err
	}

	info, err := p.GetUserInfo(ctx, token)
	if err != nil {
		return User{}, false, err
	}

	identity, err := GetIdentityByProvider(providerName, info.ID)
	if err == nil {
		u, err := GetUser(identity.UserID)
		return u, false, err
	}

	u, err := GetUserByEmail(info.Email)
	if err == nil {
		if err := LinkIdentity(u.ID, providerName, info.ID, info.Email); err != nil {
			store.log.Warn("link oauth identity", zap.String("provider", providerName), zap.Error(err))
		}
		return u, false, nil
	}

	u, err = CreateUser(User{Email: info.Email, Name: info.Name, ProfilePicture: info.Picture})
	if err != nil {
		return User{}, false, err
	}
	if err := LinkIdentity(u.ID, providerName, info.ID, info.Email); err != nil {
		return User{}, false, err
	}
	return u, true, nil
}

func consumeState(state, provider string) error {
	var expiresAt int64
	var dbProvider string
	err := store.exec.QueryRow("SELECT expires_at, provider FROM user_oauth_states WHERE state = ?", state).Scan(&expiresAt, &dbProvider)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidOAuthState
		}
		return err
	}

	if dbProvider != provider {
		return ErrInvalidOAuthState
	}

	// single use, deleted even when expired
	if err := store.exec.Exec("DELETE FROM user_oauth_states WHERE state = ?", state); err != nil {
		return err
	}

	if expiresAt < time.Now().Unix() {
		return ErrInvalidOAuthState
	}
	return nil
}

func PurgeExpiredOAuthStates() error {
	return store.exec.Exec("DELETE FROM user_oauth_states WHERE expires_at < ?", time.Now().Unix())
}
