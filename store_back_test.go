//go:build !wasm

package user_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	user "github.com/anhnnhe176642/giupviecvat-sub001"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	_ "modernc.org/sqlite"
)

type TestExecutor struct {
	*sql.DB
}

func (e *TestExecutor) Exec(query string, args ...any) error {
	_, err := e.DB.Exec(query, args...)
	return err
}

func (e *TestExecutor) Query(query string, args ...any) (user.Rows, error) {
	return e.DB.Query(query, args...)
}

func (e *TestExecutor) QueryRow(query string, args ...any) user.Scanner {
	return e.DB.QueryRow(query, args...)
}

func newTestDB(t *testing.T) *TestExecutor {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		db.Close()
	})
	return &TestExecutor{db}
}

func initStore(t *testing.T, cfg user.Config) {
	t.Helper()
	user.PasswordHashCost = bcrypt.MinCost
	if err := user.Init(newTestDB(t), cfg); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
}

func mustCreate(t *testing.T, u user.User) user.User {
	t.Helper()
	created, err := user.CreateUser(u)
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return created
}

func TestInit(t *testing.T) {
	initStore(t, user.Config{SessionCookieName: "test_session", SessionTTL: 3600})
	if user.SessionCookieName() != "test_session" {
		t.Errorf("expected session cookie name 'test_session', got '%s'", user.SessionCookieName())
	}
}

func TestCRUD(t *testing.T) {
	initStore(t, user.Config{})

	u := mustCreate(t, user.User{Name: "Test User", Email: "test@example.com", Phone: "123456789"})
	if !u.IsActive || u.IsTasker {
		t.Errorf("new users should be active non-taskers: %+v", u)
	}
	if u.HasPassword() {
		t.Error("new user should have no password")
	}

	u2, err := user.GetUser(u.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if u2.Email != "test@example.com" || u2.Password != nil {
		t.Errorf("unexpected user: %+v", u2)
	}

	updated, err := user.UpdateProfile(u.ID, user.ProfileUpdate{
		Name: "Updated Name", Email: "new@example.com", Phone: "987654321",
		Address: "12 Main St", IsTasker: true, IsActive: false,
	})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if updated.Name != "Updated Name" || updated.Address != "12 Main St" || !updated.IsTasker || updated.IsActive {
		t.Errorf("update not stored: %+v", updated)
	}
	if _, err := user.GetUserByEmail("new@example.com"); err != nil {
		t.Errorf("GetUserByEmail after update: %v", err)
	}

	if _, err := user.UpdateProfile(u.ID, user.ProfileUpdate{Name: "  ", Email: "new@example.com"}); !errors.Is(err, user.ErrNameRequired) {
		t.Errorf("expected ErrNameRequired, got %v", err)
	}

	other := mustCreate(t, user.User{Name: "Other", Email: "other@example.com"})
	if _, err := user.UpdateProfile(other.ID, user.ProfileUpdate{Name: "Other", Email: "new@example.com"}); !errors.Is(err, user.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
	if _, err := user.CreateUser(user.User{Name: "Dup", Email: "other@example.com"}); !errors.Is(err, user.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken on create, got %v", err)
	}

	pic, err := user.SetProfilePicture(u.ID, "https://cdn.example.com/a.png")
	if err != nil {
		t.Fatalf("SetProfilePicture failed: %v", err)
	}
	if pic.ProfilePicture != "https://cdn.example.com/a.png" {
		t.Errorf("picture not stored: %q", pic.ProfilePicture)
	}

	if _, err := user.GetUser("missing"); !errors.Is(err, user.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPasswords(t *testing.T) {
	initStore(t, user.Config{})
	u := mustCreate(t, user.User{Name: "Auth User", Email: "auth@example.com"})

	if err := user.SetPassword(u.ID, "short"); !errors.Is(err, user.ErrWeakPassword) {
		t.Errorf("expected ErrWeakPassword, got %v", err)
	}

	// first password needs no current one
	if err := user.ChangePassword(u.ID, nil, "password123"); err != nil {
		t.Fatalf("ChangePassword (first) failed: %v", err)
	}
	has, err := user.HasLocalPassword(u.ID)
	if err != nil || !has {
		t.Fatalf("HasLocalPassword = %v, %v", has, err)
	}
	u2, _ := user.GetUser(u.ID)
	if !u2.HasPassword() || *u2.Password == "password123" {
		t.Errorf("password should be reported masked, got %v", u2.Password)
	}

	if _, err := user.Login("auth@example.com", "password123"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := user.Login("auth@example.com", "wrongpass"); !errors.Is(err, user.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}

	if err := user.ChangePassword(u.ID, nil, "password456"); !errors.Is(err, user.ErrCurrentPassword) {
		t.Errorf("expected ErrCurrentPassword, got %v", err)
	}
	wrong := "nope-nope"
	if err := user.ChangePassword(u.ID, &wrong, "password456"); !errors.Is(err, user.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	current := "password123"
	if err := user.ChangePassword(u.ID, &current, "password456"); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}
	if err := user.VerifyPassword(u.ID, "password456"); err != nil {
		t.Errorf("VerifyPassword after change: %v", err)
	}
}

func TestSessions(t *testing.T) {
	initStore(t, user.Config{})
	u := mustCreate(t, user.User{Name: "Sess User", Email: "sess@example.com"})

	sess, err := user.CreateSession(u.ID, "127.0.0.1", "TestAgent")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	su, err := user.SessionUser(sess.ID)
	if err != nil {
		t.Fatalf("SessionUser failed: %v", err)
	}
	if su.ID != u.ID {
		t.Errorf("session user mismatch")
	}

	if err := user.DeleteSession(sess.ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := user.GetSession(sess.ID); !errors.Is(err, user.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	initStore(t, user.Config{SessionTTL: -1})
	u := mustCreate(t, user.User{Name: "Old Session", Email: "old@example.com"})

	sess, err := user.CreateSession(u.ID, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := user.GetSession(sess.ID); !errors.Is(err, user.ErrSessionExpired) {
		t.Errorf("expected ErrSessionExpired, got %v", err)
	}
	if err := user.PurgeExpiredSessions(); err != nil {
		t.Fatalf("PurgeExpiredSessions failed: %v", err)
	}
	if _, err := user.GetSession(sess.ID); !errors.Is(err, user.ErrNotFound) {
		t.Errorf("expected ErrNotFound after purge, got %v", err)
	}
}

type MockProvider struct {
	NameVal         string
	ExchangeCodeVal *oauth2.Token
	UserInfoVal     user.OAuthUserInfo
}

func (m *MockProvider) Name() string                    { return m.NameVal }
func (m *MockProvider) AuthCodeURL(state string) string { return "http://mock/" + state }
func (m *MockProvider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	return m.ExchangeCodeVal, nil
}
func (m *MockProvider) GetUserInfo(ctx context.Context, token *oauth2.Token) (user.OAuthUserInfo, error) {
	return m.UserInfoVal, nil
}

func beginMock(t *testing.T) string {
	t.Helper()
	url, err := user.BeginOAuth("mock")
	if err != nil {
		t.Fatalf("BeginOAuth failed: %v", err)
	}
	state := strings.TrimPrefix(url, "http://mock/")
	if state == url || state == "" {
		t.Fatalf("invalid url: %s", url)
	}
	return state
}

func TestOAuth(t *testing.T) {
	mockP := &MockProvider{
		NameVal:         "mock",
		ExchangeCodeVal: &oauth2.Token{AccessToken: "mocktoken"},
		UserInfoVal: user.OAuthUserInfo{
			ID: "mockid", Email: "mock@example.com", Name: "Mock User",
			Picture: "https://pics.example.com/mock.jpg",
		},
	}
	initStore(t, user.Config{OAuthProviders: []user.OAuthProvider{mockP}})

	u, isNew, err := user.CompleteOAuth(context.Background(), "mock", beginMock(t), "mockcode")
	if err != nil {
		t.Fatalf("CompleteOAuth failed: %v", err)
	}
	if !isNew {
		t.Errorf("expected isNew=true")
	}
	if u.ProfilePicture != "https://pics.example.com/mock.jpg" {
		t.Errorf("picture not seeded: %q", u.ProfilePicture)
	}
	if u.HasPassword() {
		t.Error("oauth accounts start without a password")
	}

	u2, isNew2, err := user.CompleteOAuth(context.Background(), "mock", beginMock(t), "mockcode")
	if err != nil {
		t.Fatalf("CompleteOAuth 2 failed: %v", err)
	}
	if isNew2 || u2.ID != u.ID {
		t.Errorf("expected the same existing user")
	}

	state := beginMock(t)
	if _, _, err := user.CompleteOAuth(context.Background(), "mock", state, "c"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := user.CompleteOAuth(context.Background(), "mock", state, "c"); !errors.Is(err, user.ErrInvalidOAuthState) {
		t.Errorf("state reuse: expected ErrInvalidOAuthState, got %v", err)
	}
	if _, err := user.BeginOAuth("nobody"); !errors.Is(err, user.ErrProviderNotFound) {
		t.Errorf("expected ErrProviderNotFound, got %v", err)
	}

	if err := user.UnlinkIdentity(u.ID, "mock"); !errors.Is(err, user.ErrCannotUnlink) {
		t.Errorf("expected ErrCannotUnlink, got %v", err)
	}
	if err := user.SetPassword(u.ID, "password123"); err != nil {
		t.Fatal(err)
	}
	ids, err := user.GetUserIdentities(u.ID)
	if err != nil || len(ids) != 2 {
		t.Fatalf("GetUserIdentities = %v, %v", ids, err)
	}
	if err := user.UnlinkIdentity(u.ID, "mock"); err != nil {
		t.Errorf("UnlinkIdentity failed: %v", err)
	}
	if err := user.PurgeExpiredOAuthStates(); err != nil {
		t.Errorf("PurgeExpiredOAuthStates failed: %v", err)
	}
}

func TestModules(t *testing.T) {
	if user.LoginModule.HandlerName() != "login" {
		t.Errorf("expected handler name login, got %s", user.LoginModule.HandlerName())
	}
	data := user.LoginData{Email: "test@example.com", Password: "password123"}
	if err := user.LoginModule.ValidateData(0, &data); err != nil {
		t.Errorf("LoginModule.ValidateData failed: %v", err)
	}
	if user.RegisterModule.HandlerName() != "register" {
		t.Errorf("expected handler name register, got %s", user.RegisterModule.HandlerName())
	}
	if user.ProfileModule.HandlerName() != "profile" {
		t.Errorf("expected handler name profile, got %s", user.ProfileModule.HandlerName())
	}

	if out := user.LoginModule.RenderHTML(); !strings.Contains(out, "<form") {
		t.Errorf("LoginModule.RenderHTML() should contain <form")
	}
	if out := user.RegisterModule.RenderHTML(); !strings.Contains(out, "<form") {
		t.Errorf("RegisterModule.RenderHTML() should contain <form")
	}
	if out := user.ProfileModule.RenderHTML(); !strings.Contains(out, "<form") {
		t.Errorf("ProfileModule.RenderHTML() should contain <form")
	}
}

func TestProfileModuleUpdate(t *testing.T) {
	initStore(t, user.Config{})
	u := mustCreate(t, user.User{Name: "Module User", Email: "module@example.com"})

	if err := user.ProfileModule.Update(u.ID, &user.PictureUpdate{ProfilePicture: "ftp://example.com/a.png"}); !errors.Is(err, user.ErrInvalidPicture) {
		t.Errorf("expected ErrInvalidPicture, got %v", err)
	}
	if err := user.ProfileModule.Update(u.ID, &user.PictureUpdate{ProfilePicture: "data:text/plain;base64,aGk="}); !errors.Is(err, user.ErrInvalidPicture) {
		t.Errorf("expected ErrInvalidPicture for non-image data URL, got %v", err)
	}
	if err := user.ProfileModule.Update(u.ID, &user.PictureUpdate{ProfilePicture: "data:image/png;base64,iVBORw0KGgo="}); err != nil {
		t.Errorf("image data URL rejected: %v", err)
	}
	if err := user.ProfileModule.Update(u.ID, &user.PasswordUpdate{NewPassword: "password123"}); err != nil {
		t.Errorf("first password via module: %v", err)
	}
	if err := user.ProfileModule.Update(u.ID, "unexpected"); !errors.Is(err, user.ErrInvalidData) {
		t.Errorf("expected ErrInvalidData, got %v", err)
	}
}

func TestProfileModuleValidateUpdate(t *testing.T) {
	tests := []struct {
		name    string
		update  user.ProfileUpdate
		wantErr error
	}{
		{"optional fields empty", user.ProfileUpdate{Name: "A", Email: "a@example.com"}, nil},
		{"punctuated name", user.ProfileUpdate{Name: "Jean-Luc O'Brien", Email: "jl@example.com"}, nil},
		{"phone given", user.ProfileUpdate{Name: "A", Email: "a@example.com", Phone: "123456789"}, nil},
		{"blank name", user.ProfileUpdate{Name: "   ", Email: "a@example.com"}, user.ErrNameRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := user.ProfileModule.ValidateData('u', &tt.update)
			if tt.wantErr == nil && err != nil {
				t.Errorf("ValidateData: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if err := user.ProfileModule.ValidateData('u', &user.ProfileUpdate{Name: "A", Email: "a@example.com", Phone: "12"}); err == nil {
		t.Error("a too short phone should be rejected")
	}
}
