package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/fileshare/internal/common"
	"github.com/dmitrijs2005/fileshare/internal/server/models"
	"github.com/dmitrijs2005/fileshare/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- helpers ---

type memUsersRepo struct {
	mu      sync.Mutex
	records []models.UserRecord
	loadErr error
	saveErr error
	saves   int
}

func (m *memUsersRepo) Load(context.Context) ([]models.UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]models.UserRecord{}, m.records...), nil
}

func (m *memUsersRepo) Save(_ context.Context, records []models.UserRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records = append([]models.UserRecord{}, records...)
	m.saves++
	return nil
}

func newTestAuthService(repo users.Repository) *AuthService {
	return NewAuthService(repo, bcrypt.MinCost)
}

// --- tests ---

func TestNewAuthService_Cost(t *testing.T) {
	assert.Equal(t, common.BcryptCost, NewAuthService(&memUsersRepo{}, 0).cost)
	assert.Equal(t, bcrypt.MinCost, NewAuthService(&memUsersRepo{}, bcrypt.MinCost).cost)
}

func TestAuthService_RegisterThenVerify(t *testing.T) {
	ctx := context.Background()
	s := newTestAuthService(&memUsersRepo{})

	pairs := map[string]string{"alice": "wonderland", "bob": "builder", "Alice": "other"}
	for u, p := range pairs {
		require.NoError(t, s.Register(ctx, u, p))
	}

	for u, p := range pairs {
		ok, err := s.VerifyCredentials(ctx, u, p)
		require.NoError(t, err)
		assert.True(t, ok, "exact pair for %s", u)

		ok, err = s.VerifyCredentials(ctx, u, p+"x")
		require.NoError(t, err)
		assert.False(t, ok, "wrong password for %s", u)
	}

	ok, err := s.VerifyCredentials(ctx, "ALICE", "wonderland")
	require.NoError(t, err)
	assert.False(t, ok, "usernames are case-sensitive")

	ok, err = s.VerifyCredentials(ctx, "nobody", "wonderland")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthService_RegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := &memUsersRepo{}
	s := newTestAuthService(repo)

	require.NoError(t, s.Register(ctx, "alice", "one"))
	before := append([]models.UserRecord{}, repo.records...)

	err := s.Register(ctx, "alice", "two")
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
	assert.Equal(t, before, repo.records)
	assert.Equal(t, 1, repo.saves)

	ok, err := s.VerifyCredentials(ctx, "alice", "one")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	ctx := context.Background()
	repo := &memUsersRepo{}
	s := newTestAuthService(repo)

	assert.ErrorIs(t, s.Register(ctx, "", "pw"), common.ErrorValidation)
	assert.ErrorIs(t, s.Register(ctx, "  ", "pw"), common.ErrorValidation)
	assert.ErrorIs(t, s.Register(ctx, "alice", ""), common.ErrorValidation)
	assert.ErrorIs(t, s.Register(ctx, "alice", strings.Repeat("p", 73)), common.ErrorValidation)
	assert.Empty(t, repo.records)
}

func TestAuthService_StoreErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	s := newTestAuthService(&memUsersRepo{loadErr: boom})
	_, err := s.VerifyCredentials(ctx, "alice", "pw")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, s.Register(ctx, "alice", "pw"), boom)

	s = newTestAuthService(&memUsersRepo{saveErr: boom})
	assert.ErrorIs(t, s.Register(ctx, "alice", "pw"), boom)
}

func TestAuthService_MalformedHashIsMismatch(t *testing.T) {
	repo := &memUsersRepo{records: []models.UserRecord{{Username: "alice", PasswordHash: "not-a-hash"}}}
	s := newTestAuthService(repo)

	ok, err := s.VerifyCredentials(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuthService_ConcurrentRegisterKeepsAll(t *testing.T) {
	ctx := context.Background()
	repo := &memUsersRepo{}
	s := newTestAuthService(repo)

	names := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	var wg sync.WaitGroup
	for _, n := range names {
		wg.Add(1)
		go func(n string) {
			defer wg.Done()
			assert.NoError(t, s.Register(ctx, n, "pw-"+n))
		}(n)
	}
	wg.Wait()

	assert.Len(t, repo.records, len(names))
}

func TestAuthService_WithFileRepository(t *testing.T) {
	ctx := context.Background()
	repo := users.NewFileRepository(filepath.Join(t.TempDir(), "users.json"))
	s := newTestAuthService(repo)

	require.NoError(t, s.Register(ctx, "alice", "secret"))
	assert.ErrorIs(t, s.Register(ctx, "alice", "other"), common.ErrorAlreadyExists)

	records, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "alice", records[0].Username)
	assert.NotEqual(t, "secret", records[0].PasswordHash)

	ok, err := s.VerifyCredentials(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAuthService_RegisterSurvivesConcurrentVerifyOnFreshFile(t *testing.T) {
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		repo := users.NewFileRepository(filepath.Join(t.TempDir(), "users.json"))
		s := newTestAuthService(repo)

		var wg sync.WaitGroup
		for j := 0; j < 4; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := s.VerifyCredentials(ctx, "bob", "pw")
				assert.NoError(t, err)
				assert.False(t, ok)
			}()
		}
		require.NoError(t, s.Register(ctx, "alice", "secret"))
		wg.Wait()

		ok, err := s.VerifyCredentials(ctx, "alice", "secret")
		require.NoError(t, err)
		require.True(t, ok, "registration lost in iteration %d", i)
	}
}
