package services

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yuwenwww/membervault/internal/common"
	"github.com/yuwenwww/membervault/internal/dbx"
	"github.com/yuwenwww/membervault/internal/server/models"
	keysrepo "github.com/yuwenwww/membervault/internal/server/repositories/keys"
	membersrepo "github.com/yuwenwww/membervault/internal/server/repositories/members"
	"github.com/yuwenwww/membervault/internal/server/repositories/repomanager"
)

// --- fakes ---

// fakeKeysRepo enforces label uniqueness like the database constraint does.
type fakeKeysRepo struct {
	mu      sync.Mutex
	byLabel map[string]*models.KeyMaterial

	getErr       error
	saveErr      error
	missFirstGet bool

	saves int
	usage map[string]int64
}

func newFakeKeysRepo() *fakeKeysRepo {
	return &fakeKeysRepo{byLabel: map[string]*models.KeyMaterial{}, usage: map[string]int64{}}
}

func (f *fakeKeysRepo) GetByLabel(ctx context.Context, label string) (*models.KeyMaterial, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.missFirstGet {
		f.missFirstGet = false
		return nil, common.ErrorNotFound
	}
	km, ok := f.byLabel[label]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return km, nil
}

func (f *fakeKeysRepo) Save(ctx context.Context, km *models.KeyMaterial) (*models.KeyMaterial, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	if _, ok := f.byLabel[km.KeyLabel]; ok {
		return nil, common.ErrorKeyAlreadyExists
	}
	km.ID = "k-" + km.KeyLabel
	f.byLabel[km.KeyLabel] = km
	f.saves++
	return km, nil
}

func (f *fakeKeysRepo) IncrementUsage(ctx context.Context, label string, n int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.usage[label] += n
	return nil
}

type fakeMembersRepo struct {
	mu         sync.Mutex
	byUsername map[string]*models.Member
	byID       map[string]*models.Member

	createErr error
	creates   int
}

func newFakeMembersRepo() *fakeMembersRepo {
	return &fakeMembersRepo{byUsername: map[string]*models.Member{}, byID: map[string]*models.Member{}}
}

func (f *fakeMembersRepo) Create(ctx context.Context, m *models.Member) (*models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byUsername[m.Username]; ok {
		return nil, common.ErrorDuplicateUsername
	}
	if m.ID == "" {
		m.ID = "m-" + m.Username
	}
	f.byUsername[m.Username] = m
	f.byID[m.ID] = m
	f.creates++
	return m, nil
}

func (f *fakeMembersRepo) GetByUsername(ctx context.Context, username string) (*models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byUsername[username]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return m, nil
}

func (f *fakeMembersRepo) GetByID(ctx context.Context, id string) (*models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return m, nil
}

type fakeRepoManager struct {
	k *fakeKeysRepo
	m *fakeMembersRepo
}

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error  { return nil }
func (f *fakeRepoManager) Keys(db dbx.DBTX) keysrepo.Repository         { return f.k }
func (f *fakeRepoManager) Members(db dbx.DBTX) membersrepo.Repository   { return f.m }

var _ repomanager.RepositoryManager = (*fakeRepoManager)(nil)

// --- tests ---

func TestEnsureKey_GeneratesOnFirstUse(t *testing.T) {
	rm := &fakeRepoManager{k: newFakeKeysRepo(), m: newFakeMembersRepo()}
	s := NewKeyService(nil, rm)

	km, err := s.EnsureKey(context.Background(), "pii_aes_key", 256)
	require.NoError(t, err)
	require.Equal(t, "pii_aes_key", km.KeyLabel)
	require.Len(t, km.KeyValue, 32)
	require.Len(t, km.IV, 16)
	require.Equal(t, 256, km.KeySizeBits)
	require.Zero(t, km.UsageCount)
	require.Equal(t, 1, rm.k.saves)
}

func TestEnsureKey_Idempotent(t *testing.T) {
	rm := &fakeRepoManager{k: newFakeKeysRepo(), m: newFakeMembersRepo()}
	s := NewKeyService(nil, rm)

	first, err := s.EnsureKey(context.Background(), "pii_aes_key", 256)
	require.NoError(t, err)
	second, err := s.EnsureKey(context.Background(), "pii_aes_key", 256)
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Equal(t, first.KeyValue, second.KeyValue)
	require.Equal(t, 1, rm.k.saves, "no second record for the same label")
}

func TestEnsureKey_ConcurrentCallersConverge(t *testing.T) {
	rm := &fakeRepoManager{k: newFakeKeysRepo(), m: newFakeMembersRepo()}
	s := NewKeyService(nil, rm)

	const callers = 16
	results := make([]*models.KeyMaterial, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			km, err := s.EnsureKey(context.Background(), "pii_aes_key", 256)
			require.NoError(t, err)
			results[i] = km
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, rm.k.saves, "exactly one record may be inserted")
	for _, km := range results {
		require.Equal(t, results[0].KeyValue, km.KeyValue, "every caller sees the same key")
	}
}

func TestEnsureKey_LoserRereadsWinner(t *testing.T) {
	rm := &fakeRepoManager{k: newFakeKeysRepo(), m: newFakeMembersRepo()}
	s := NewKeyService(nil, rm)

	// winner's record lands between our lookup and our save: the first
	// lookup misses, the insert hits the uniqueness constraint, and the
	// re-read must return the winner's record instead of erroring.
	winner := &models.KeyMaterial{ID: "k-w", KeyLabel: "pii_aes_key", KeyValue: make([]byte, 32), IV: make([]byte, 16), KeySizeBits: 256}
	rm.k.byLabel["pii_aes_key"] = winner
	rm.k.missFirstGet = true
	rm.k.saveErr = common.ErrorKeyAlreadyExists

	km, err := s.EnsureKey(context.Background(), "pii_aes_key", 256)
	require.NoError(t, err)
	require.Equal(t, "k-w", km.ID)
	require.Zero(t, rm.k.saves)
}

func TestEnsureKey_InvalidSize(t *testing.T) {
	rm := &fakeRepoManager{k: newFakeKeysRepo(), m: newFakeMembersRepo()}
	s := NewKeyService(nil, rm)

	_, err := s.EnsureKey(context.Background(), "pii_aes_key", 0)
	require.Error(t, err)
	_, err = s.EnsureKey(context.Background(), "pii_aes_key", 255)
	require.Error(t, err)
	require.Zero(t, rm.k.saves, "nothing persisted on generation failure")
}

func TestEnsureKey_StoreError(t *testing.T) {
	rm := &fakeRepoManager{k: newFakeKeysRepo(), m: newFakeMembersRepo()}
	rm.k.getErr = errors.New("store down")
	s := NewKeyService(nil, rm)

	_, err := s.EnsureKey(context.Background(), "pii_aes_key", 256)
	require.Error(t, err)
	require.Zero(t, rm.k.saves)
}

func TestResolveKey_Missing(t *testing.T) {
	rm := &fakeRepoManager{k: newFakeKeysRepo(), m: newFakeMembersRepo()}
	s := NewKeyService(nil, rm)

	_, err := s.ResolveKey(context.Background(), "ghost_label")
	require.ErrorIs(t, err, common.ErrorKeyNotFound)
}
