//go:build !wasm

package user

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// APIHandler serves the account API: the three profile endpoints the
// ProfileEditor calls, a read of the current user, and the sign-in routes
// that issue the session cookie. Init must have been called.
func APIHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/profile", withUser(handleGetProfile))
	mux.HandleFunc("PUT /users/profile", withUser(handleProfileSection(func() any { return &PictureUpdate{} })))
	mux.HandleFunc("PUT /users/profile/update", withUser(handleProfileSection(func() any { return &ProfileUpdate{} })))
	mux.HandleFunc("PUT /users/profile/password", withUser(handlePassword))
	mux.HandleFunc("POST /users/login", handleLogin)
	mux.HandleFunc("POST /users/register", handleRegister)
	mux.HandleFunc("POST /users/logout", handleLogout)
	mux.HandleFunc("GET /oauth/{provider}", handleOAuthBegin)
	mux.HandleFunc("GET /oauth/{provider}/callback", handleOAuthCallback)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		store.log.Error("write JSON response", zap.Error(err))
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageBody{Message: message})
}

// writeErr maps a store error to a status; anything unrecognised is logged
// and hidden behind a generic 500.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrEmailTaken):
		status = http.StatusConflict
	case errors.Is(err, ErrNameRequired), errors.Is(err, ErrWeakPassword),
		errors.Is(err, ErrInvalidPicture), errors.Is(err, ErrCurrentPassword),
		errors.Is(err, ErrInvalidData):
		status = http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrSessionExpired):
		status = http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		store.log.Error("profile api", zap.String("path", r.URL.Path), zap.Error(err))
		writeMessage(w, status, "An unexpected error occurred. Please try again.")
		return
	}
	writeMessage(w, status, err.Error())
}

func readJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return ErrInvalidData
	}
	return nil
}

type userHandler func(w http.ResponseWriter, r *http.Request, u User)

// withUser resolves the session cookie and rejects anonymous requests.
func withUser(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(SessionCookieName())
		if err != nil || c.Value == "" {
			writeMessage(w, http.StatusUnauthorized, "Please sign in to continue.")
			return
		}
		u, err := SessionUser(c.Value)
		if err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrSessionExpired) {
				writeMessage(w, http.StatusUnauthorized, "Please sign in to continue.")
				return
			}
			writeErr(w, r, err)
			return
		}
		next(w, r, u)
	}
}

func handleGetProfile(w http.ResponseWriter, r *http.Request, u User) {
	writeJSON(w, http.StatusOK, userEnvelope{User: &u})
}

// handleProfileSection decodes a section body made by newBody, validates it
// and answers with the updated record.
func handleProfileSection(newBody func() any) userHandler {
	return func(w http.ResponseWriter, r *http.Request, u User) {
		body := newBody()
		if err := readJSON(r, body); err != nil {
			writeErr(w, r, err)
			return
		}
		if err := ProfileModule.ValidateData('u', body); err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		updated, err := ProfileModule.apply(u.ID, body)
		if err != nil {
			writeErr(w, r, err)
			return
		}
		store.log.Info("profile updated", zap.String("user", u.ID), zap.String("path", r.URL.Path))
		writeJSON(w, http.StatusOK, userEnvelope{User: &updated})
	}
}

func handlePassword(w http.ResponseWriter, r *http.Request, u User) {
	var body PasswordUpdate
	if err := readJSON(r, &body); err != nil {
		writeErr(w, r, err)
		return
	}
	if _, err := ProfileModule.apply(u.ID, &body); err != nil {
		writeErr(w, r, err)
		return
	}
	store.log.Info("password updated", zap.String("user", u.ID), zap.Bool("first", !u.HasPassword()))
	writeMessage(w, http.StatusOK, "Password updated")
}

func handleLogin(w http.ResponseWriter, r *http.Request) {
	var body LoginData
	if err := readJSON(r, &body); err != nil {
		writeErr(w, r, err)
		return
	}
	if err := LoginModule.ValidateData('c', &body); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := LoginModule.Create(&body)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	signedIn(w, r, out.(User), LoginModule.SetCookie)
}

func handleRegister(w http.ResponseWriter, r *http.Request) {
	var body RegisterData
	if err := readJSON(r, &body); err != nil {
		writeErr(w, r, err)
		return
	}
	if err := RegisterModule.ValidateData('c', &body); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := RegisterModule.Create(&body)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	signedIn(w, r, out.(User), RegisterModule.SetCookie)
}

func signedIn(w http.ResponseWriter, r *http.Request, u User, setCookie func(string, http.ResponseWriter, *http.Request) error) {
	if err := setCookie(u.ID, w, r); err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userEnvelope{User: &u})
}

func handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(SessionCookieName()); err == nil && c.Value != "" {
		if err := DeleteSession(c.Value); err != nil {
			store.log.Warn("delete session", zap.Error(err))
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func handleOAuthBegin(w http.ResponseWriter, r *http.Request) {
	target, err := BeginOAuth(r.PathValue("provider"))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	provider := r.PathValue("provider")
	q := r.URL.Query()
	u, created, err := CompleteOAuth(r.Context(), provider, q.Get("state"), q.Get("code"))
	if err != nil {
		if errors.Is(err, ErrInvalidOAuthState) || errors.Is(err, ErrProviderNotFound) {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		writeErr(w, r, err)
		return
	}
	if err := setSessionCookie(u.ID, w, r); err != nil {
		writeErr(w, r, err)
		return
	}
	store.log.Info("oauth sign-in", zap.String("provider", provider), zap.String("user", u.ID), zap.Bool("created", created))
	http.Redirect(w, r, "/", http.StatusFound)
}

func setSessionCookie(userID string, w http.ResponseWriter, r *http.Request) error {
	sess, err := CreateSession(userID, extractClientIP(r, store.config.TrustProxy), r.UserAgent())
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName(),
		Value:    sess.ID,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   store.config.SessionTTL,
		Path:     "/",
	})
	return nil
}

func extractClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return strings.TrimSpace(xri)
		}
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
