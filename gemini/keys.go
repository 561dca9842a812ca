package gemini

import "sync"

// KeyStore resolves the API key for outbound calls. Two sources coexist: a
// default key supplied at startup (environment/config) and a user-submitted
// key. A submitted key takes precedence and is never cleared; there is no
// revoke flow.
type KeyStore struct {
	mu         sync.RWMutex
	defaultKey string
	userKey    string
}

// NewKeyStore creates a key store seeded with the startup default key
func NewKeyStore(defaultKey string) *KeyStore {
	return &KeyStore{defaultKey: defaultKey}
}

// Set stores a user-submitted key. No validation happens here; validity is
// discovered lazily on the next live call.
func (k *KeyStore) Set(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.userKey = key
}

// Resolve returns the key to use: user-submitted first, startup default second
func (k *KeyStore) Resolve() string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.userKey != "" {
		return k.userKey
	}
	return k.defaultKey
}

// HasKey reports whether any key is resolvable
func (k *KeyStore) HasKey() bool {
	return k.Resolve() != ""
}
