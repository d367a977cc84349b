package user

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"
)

// oauthApp holds the client registration shared by the concrete providers.
type oauthApp struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	config       *oauth2.Config
}

func (a *oauthApp) ensureConfig(endpoint oauth2.Endpoint, scopes ...string) *oauth2.Config {
	if a.config == nil {
		a.config = &oauth2.Config{
			ClientID:     a.ClientID,
			ClientSecret: a.ClientSecret,
			RedirectURL:  a.RedirectURL,
			Scopes:       scopes,
			Endpoint:     endpoint,
		}
	}
	return a.config
}

// fetchUserInfo GETs url with the token and decodes the JSON body into dst.
func fetchUserInfo(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token, url string, dst any) error {
	resp, err := cfg.Client(ctx, token).Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ErrInvalidCredentials
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}

// GoogleProvider signs users in with a Google account. The account picture
// becomes the initial profile picture.
type GoogleProvider oauthApp

func (p *GoogleProvider) Name() string { return "google" }

func (p *GoogleProvider) oauth() *oauth2.Config {
	return (*oauthApp)(p).ensureConfig(google.Endpoint,
		"https://www.googleapis.com/auth/userinfo.email",
		"https://www.googleapis.com/auth/userinfo.profile",
	)
}

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.oauth().AuthCodeURL(state)
}

func (p *GoogleProvider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.oauth().Exchange(ctx, code)
}

func (p *GoogleProvider) GetUserInfo(ctx context.Context, token *oauth2.Token) (OAuthUserInfo, error) {
	var data struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := fetchUserInfo(ctx, p.oauth(), token, "https://www.googleapis.com/oauth2/v2/userinfo", &data); err != nil {
		return OAuthUserInfo{}, err
	}
	return OAuthUserInfo{ID: data.ID, Email: data.Email, Name: data.Name, Picture: data.Picture}, nil
}

// MicrosoftProvider signs users in with a Microsoft (Entra ID) account.
type MicrosoftProvider oauthApp

func (p *MicrosoftProvider) Name() string { return "microsoft" }

func (p *MicrosoftProvider) oauth() *oauth2.Config {
	return (*oauthApp)(p).ensureConfig(microsoft.AzureADEndpoint("common"), "User.Read")
}

func (p *MicrosoftProvider) AuthCodeURL(state string) string {
	return p.oauth().AuthCodeURL(state)
}

func (p *MicrosoftProvider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.oauth().Exchange(ctx, code)
}

func (p *MicrosoftProvider) GetUserInfo(ctx context.Context, token *oauth2.Token) (OAuthUserInfo, error) {
	var data struct {
		ID                string `json:"id"`
		Email             string `json:"mail"`
		UserPrincipalName string `json:"userPrincipalName"`
		Name              string `json:"displayName"`
	}
	if err := fetchUserInfo(ctx, p.oauth(), token, "https://graph.microsoft.com/v1.0/me", &data); err != nil {
		return OAuthUserInfo{}, err
	}
	email := data.Email
	if email == "" {
		email = data.UserPrincipalName
	}
	return OAuthUserInfo{ID: data.ID, Email: email, Name: data.Name}, nil
}
