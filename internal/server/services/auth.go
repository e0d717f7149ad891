// Package services contains the fileshare business logic: credential checks
// and registration, directory listing, share tokens and view classification.
// HTTP concerns live in httpserver.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/fileshare/internal/common"
	"github.com/dmitrijs2005/fileshare/internal/cryptox"
	"github.com/dmitrijs2005/fileshare/internal/server/models"
	"github.com/dmitrijs2005/fileshare/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

// AuthService verifies credentials and appends new users to the store.
type AuthService struct {
	repo users.Repository
	cost int

	// mu serializes load-check-append-save so concurrent registrations do not
	// overwrite each other.
	mu sync.Mutex
}

// NewAuthService constructs an AuthService hashing at cost. Values below
// bcrypt.MinCost fall back to common.BcryptCost.
func NewAuthService(repo users.Repository, cost int) *AuthService {
	if cost < bcrypt.MinCost {
		cost = common.BcryptCost
	}
	return &AuthService{repo: repo, cost: cost}
}

// VerifyCredentials reports whether password matches the stored hash for
// username. Unknown users and wrong passwords both yield false. Only store
// failures are returned as errors.
func (s *AuthService) VerifyCredentials(ctx context.Context, username, password string) (bool, error) {
	records, err := s.repo.Load(ctx)
	if err != nil {
		return false, err
	}

	u, ok := findUser(records, username)
	if !ok {
		return false, nil
	}

	match, err := cryptox.CheckPassword(u.PasswordHash, []byte(password))
	if err != nil {
		return false, nil
	}
	return match, nil
}

// Register appends a user with a freshly hashed password.
//
// It returns common.ErrorValidation for empty or over-long input and
// common.ErrorAlreadyExists if username is taken; in both cases the store is
// left untouched.
func (s *AuthService) Register(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", common.ErrorValidation)
	}

	pw := []byte(password)
	hash, err := cryptox.HashPasswordWithCost(pw, s.cost)
	common.WipeByteArray(pw)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return fmt.Errorf("%w: %w", common.ErrorValidation, err)
		}
		return fmt.Errorf("%w: hash password: %w", common.ErrorInternal, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	if _, ok := findUser(records, username); ok {
		return common.ErrorAlreadyExists
	}

	records = append(records, models.UserRecord{Username: username, PasswordHash: hash})
	return s.repo.Save(ctx, records)
}

func findUser(records []models.UserRecord, username string) (models.UserRecord, bool) {
	for _, u := range records {
		if u.Username == username {
			return u, true
		}
	}
	return models.UserRecord{}, false
}
