package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/fileshare/internal/common"
	"github.com/dmitrijs2005/fileshare/internal/filex"
	"github.com/dmitrijs2005/fileshare/internal/server/models"
	"github.com/google/uuid"
)

const maxTokenAttempts = 8

// ShareRegistry maps share tokens to absolute paths for the lifetime of the
// process. There is no expiry and no revocation.
type ShareRegistry struct {
	mu     sync.RWMutex
	shares map[string]models.ShareEntry

	newToken func() string
	now      func() time.Time
	exists   func(path string) bool
}

func NewShareRegistry() *ShareRegistry {
	return &ShareRegistry{
		shares:   make(map[string]models.ShareEntry),
		newToken: uuid.NewString,
		now:      time.Now,
		exists:   filex.Exists,
	}
}

// Issue stores a new token for path. The path must exist.
func (r *ShareRegistry) Issue(path string) (string, error) {
	if !r.exists(path) {
		return "", common.ErrorNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for range maxTokenAttempts {
		token := r.newToken()
		if _, taken := r.shares[token]; taken {
			continue
		}
		r.shares[token] = models.ShareEntry{Token: token, Path: path, CreatedAt: r.now()}
		return token, nil
	}
	return "", fmt.Errorf("%w: could not generate a unique share token", common.ErrorInternal)
}

// Resolve returns the path behind token. Unknown tokens and targets that no
// longer exist yield common.ErrorNotFound.
func (r *ShareRegistry) Resolve(token string) (string, error) {
	r.mu.RLock()
	e, ok := r.shares[token]
	r.mu.RUnlock()

	if !ok || !r.exists(e.Path) {
		return "", common.ErrorNotFound
	}
	return e.Path, nil
}

func (r *ShareRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.shares)
}
