//go:build !wasm

package user

import (
	"sync"

	"go.uber.org/zap"
)

const defaultMaxPictureBytes = 2 << 20

type Store struct {
	exec   Executor
	cache  *sessionCache
	config Config
	log    *zap.Logger
}

var store *Store

// Init prepares the user store: schema, session cache and OAuth providers.
// It must run before APIHandler serves any request.
func Init(exec Executor, cfg Config) error {
	if cfg.SessionCookieName == "" {
		cfg.SessionCookieName = "session"
	}
	sessionCookieName = cfg.SessionCookieName

	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 86400
	}
	if cfg.MaxPictureBytes == 0 {
		cfg.MaxPictureBytes = defaultMaxPictureBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if err := runMigrations(exec); err != nil {
		return err
	}
	store = &Store{
		exec:   exec,
		cache:  newSessionCache(),
		config: cfg,
		log:    cfg.Logger.Named("user"),
	}
	for _, p := range cfg.OAuthProviders {
		registerProvider(p)
	}
	return store.cache.warmUp(exec)
}

// Global providers registry
var (
	providersMu sync.RWMutex
	providers   = make(map[string]OAuthProvider)
)

func registerProvider(p OAuthProvider) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[p.Name()] = p
}

func getProvider(name string) OAuthProvider {
	providersMu.RLock()
	defer providersMu.RUnlock()
	return providers[name]
}

func registeredProviders() []OAuthProvider {
	providersMu.RLock()
	defer providersMu.RUnlock()
	var list []OAuthProvider
	for _, p := range providers {
		list = append(list, p)
	}
	return list
}
