package sync

import (
	"context"
	stdsync "sync"

	"github.com/avasilkov/giftcal/internal/models"
	"github.com/avasilkov/giftcal/internal/remote/blob"
)

// mockAdapter implements RemoteAdapter with canned responses and call
// recording.
type mockAdapter struct {
	mu stdsync.Mutex

	restoreErr error
	authCred   blob.Credential
	authErr    error
	connectID  string
	connectErr error
	fetchSnap  *models.Snapshot
	fetchErr   error
	persistErr error
	signOutErr error

	restoreCalls int
	authCalls    int
	connectSeeds []*models.Snapshot
	fetchCalls   int
	persisted    []*models.Snapshot
	signOutCalls int
}

func (m *mockAdapter) SilentRestore(ctx context.Context, cfg models.SyncConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restoreCalls++
	return m.restoreErr
}

func (m *mockAdapter) Authenticate(ctx context.Context) (blob.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authCalls++
	return m.authCred, m.authErr
}

func (m *mockAdapter) Connect(ctx context.Context, seed *models.Snapshot) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectSeeds = append(m.connectSeeds, seed)
	return m.connectID, m.connectErr
}

func (m *mockAdapter) Fetch(ctx context.Context, fileID string) (*models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchCalls++
	return m.fetchSnap, m.fetchErr
}

func (m *mockAdapter) Persist(ctx context.Context, fileID string, snap *models.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persisted = append(m.persisted, snap)
	return m.persistErr
}

func (m *mockAdapter) SignOut(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signOutCalls++
	return m.signOutErr
}

func (m *mockAdapter) persistedSnapshots() []*models.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.Snapshot(nil), m.persisted...)
}
