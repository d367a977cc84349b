package user

import (
	"context"

	"github.com/tinywasm/fmt"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

var (
	ErrInvalidCredentials = fmt.Err("access", "denied")                // EN: Access Denied                    / ES: Acceso Denegado
	ErrEmailTaken         = fmt.Err("email", "registered")             // EN: Email Registered                 / ES: Correo electrónico Registrado
	ErrWeakPassword       = fmt.Err("password", "weak")                // EN: Password Weak                    / ES: Contraseña Débil
	ErrPasswordMismatch   = fmt.Err("password", "mismatch")            // EN: Password Mismatch                / ES: Contraseña No coincide
	ErrCurrentPassword    = fmt.Err("password", "current", "required") // EN: Password Current Required   / ES: Contraseña Actual Requerida
	ErrNameRequired       = fmt.Err("name", "required")                // EN: Name Required                    / ES: Nombre Requerido
	ErrInvalidPicture     = fmt.Err("image", "invalid")                // EN: Image Invalid                    / ES: Imagen Inválida
	ErrSessionExpired     = fmt.Err("token", "expired")                // EN: Token Expired                    / ES: Token Expirado
	ErrNotFound           = fmt.Err("user", "not", "found")            // EN: User Not Found                   / ES: Usuario No Encontrado
	ErrProviderNotFound   = fmt.Err("provider", "not", "found")        // EN: Provider Not Found               / ES: Proveedor No Encontrado
	ErrInvalidOAuthState  = fmt.Err("state", "invalid")                // EN: State Invalid                    / ES: Estado Inválido
	ErrCannotUnlink       = fmt.Err("identity", "cannot", "unlink")    // EN: Identity Cannot Unlink           / ES: Identidad No puede Desvincular
	ErrNotEditing         = fmt.Err("edit", "mode", "inactive")        // EN: Edit Mode Inactive               / ES: Modo Edición Inactivo
	ErrBusy               = fmt.Err("operation", "in", "progress")     // EN: Operation In Progress            / ES: Operación En Progreso
	ErrUnknownField       = fmt.Err("field", "unknown")                // EN: Field Unknown                    / ES: Campo Desconocido
	ErrFieldType          = fmt.Err("field", "type", "invalid")        // EN: Field Type Invalid               / ES: Campo Tipo Inválido
	ErrNotImage           = fmt.Err("file", "not", "image")            // EN: File Not Image                   / ES: Archivo No Imagen
	ErrMalformedResponse  = fmt.Err("response", "invalid")             // EN: Response Invalid                 / ES: Respuesta Inválida
	ErrInvalidData        = fmt.Err("data", "invalid")                 // EN: Data Invalid                     / ES: Datos Inválidos
)

// passwordMask is what the API reports in place of a stored password.
const passwordMask = "********"

// User is the record shared by the API and the profile editor.
// Password is nil when the account has no local password yet.
type User struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	Address        string  `json:"address"`
	IsTasker       bool    `json:"isTasker"`
	IsActive       bool    `json:"isActive"`
	ProfilePicture string  `json:"profilePicture,omitempty"`
	Password       *string `json:"password"`
	CreatedAt      int64   `json:"createdAt"`
}

// HasPassword reports whether the account already has a local password.
func (u User) HasPassword() bool {
	return u.Password != nil && *u.Password != ""
}

type Session struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	ExpiresAt int64  `json:"expires_at"`
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

type Identity struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Provider   string `json:"provider"`
	ProviderID string `json:"provider_id"`
	Email      string `json:"email,omitempty"`
	CreatedAt  int64  `json:"created_at"`
}

type OAuthUserInfo struct {
	ID      string
	Email   string
	Name    string
	Picture string
}

type OAuthProvider interface {
	Name() string
	AuthCodeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)
	GetUserInfo(ctx context.Context, token *oauth2.Token) (OAuthUserInfo, error)
}

type Config struct {
	SessionCookieName string          // default: "session"
	SessionTTL        int             // default: 86400 (24h)
	TrustProxy        bool            // default: false
	MaxPictureBytes   int             // default: 2 MiB, applies to data: URLs
	OAuthProviders    []OAuthProvider
	Logger            *zap.Logger     // default: zap.NewNop()
}

var sessionCookieName = "session"

func SessionCookieName() string {
	return sessionCookieName
}
