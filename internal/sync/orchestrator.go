// Package sync decides when the local store pushes to and pulls from the
// file-blob backend, and sequences the adapter calls so neither side ever
// observes a half-written snapshot.
package sync

import (
	"context"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/avasilkov/giftcal/internal/bus"
	"github.com/avasilkov/giftcal/internal/logging"
	"github.com/avasilkov/giftcal/internal/models"
	"github.com/avasilkov/giftcal/internal/remote/blob"
	"github.com/avasilkov/giftcal/internal/store"
)

// RemoteAdapter is the slice of the blob adapter the orchestrator drives.
// Implemented by blob.Adapter.
type RemoteAdapter interface {
	SilentRestore(ctx context.Context, cfg models.SyncConfig) error
	Authenticate(ctx context.Context) (blob.Credential, error)
	Connect(ctx context.Context, seed *models.Snapshot) (string, error)
	Fetch(ctx context.Context, fileID string) (*models.Snapshot, error)
	Persist(ctx context.Context, fileID string, snap *models.Snapshot) error
	SignOut(ctx context.Context) error
}

// Orchestrator owns push/pull timing for the snapshot backend.
//
// Pushes are fire-and-forget: a failed push is logged and swallowed, the
// local mutation stands, and the next mutation's push carries the
// accumulated state forward. Pulls are awaited and their failures propagate,
// because a failed pull means the UI must show a sync failure.
type Orchestrator struct {
	store   store.Store
	adapter RemoteAdapter
	bus     *bus.Bus
	log     logging.Logger
	now     func() time.Time

	inflight stdsync.WaitGroup
}

func New(st store.Store, adapter RemoteAdapter, b *bus.Bus, log logging.Logger) *Orchestrator {
	return &Orchestrator{
		store:   st,
		adapter: adapter,
		bus:     b,
		log:     log,
		now:     time.Now,
	}
}

// Push uploads the current snapshot in a detached goroutine and returns
// immediately. The snapshot is taken inside the goroutine, so of two
// overlapping pushes the later-started one reads the later store state;
// whichever network response lands last wins on the remote. That race is
// accepted for a single-device tool.
func (o *Orchestrator) Push(ctx context.Context) {
	// The push must outlive the mutation that triggered it.
	ctx = context.WithoutCancel(ctx)

	o.inflight.Add(1)
	go func() {
		defer o.inflight.Done()
		if err := o.push(ctx); err != nil {
			o.log.Warn(ctx, "push failed, local data unaffected", "error", err)
		}
	}()
}

func (o *Orchestrator) push(ctx context.Context) error {
	cfg, err := o.store.SyncConfig(ctx)
	if err != nil {
		return err
	}
	if !cfg.Connected || cfg.FileId == "" {
		return nil
	}

	snap, err := o.store.Snapshot(ctx, o.now())
	if err != nil {
		return err
	}
	return o.adapter.Persist(ctx, cfg.FileId, snap)
}

// Wait blocks until all in-flight pushes have finished. Called on shutdown
// and by tests; it does not influence push outcomes.
func (o *Orchestrator) Wait() {
	o.inflight.Wait()
}

// Pull fetches the remote snapshot and overwrites the local store with it.
// The current local snapshot rides along as the seed payload in case the
// remote file does not exist yet (first run). Any failure propagates and
// leaves the local store untouched; the store is only overwritten after a
// fully successful fetch. One bus notification fires at the end.
func (o *Orchestrator) Pull(ctx context.Context) error {
	seed, err := o.store.Snapshot(ctx, o.now())
	if err != nil {
		return fmt.Errorf("failed to snapshot local data: %w", err)
	}

	fileID, err := o.adapter.Connect(ctx, seed)
	if err != nil {
		return fmt.Errorf("failed to connect to remote file: %w", err)
	}

	// Only the handle is recorded here. The connected flag flips after the
	// overwrite succeeds, so an aborted pull never leaves a connection that
	// pushes would trust before the first reconcile.
	cfg, err := o.store.SyncConfig(ctx)
	if err != nil {
		return err
	}
	cfg.FileId = fileID
	if err := o.store.SetSyncConfig(ctx, cfg); err != nil {
		return err
	}

	snap, err := o.adapter.Fetch(ctx, fileID)
	if err != nil {
		return fmt.Errorf("failed to fetch remote snapshot: %w", err)
	}

	if err := o.store.Restore(ctx, snap); err != nil {
		return fmt.Errorf("failed to apply remote snapshot: %w", err)
	}

	cfg.Connected = true
	if err := o.store.SetSyncConfig(ctx, cfg); err != nil {
		return err
	}

	o.bus.Notify()
	return nil
}

// Startup re-establishes a prior connection without prompting: if the store
// records a Connected state, it attempts a silent restore followed by a
// pull. When the restore fails the connected flag is rolled back so the UI
// offers a fresh reconnect; the error is returned for reporting.
func (o *Orchestrator) Startup(ctx context.Context) error {
	cfg, err := o.store.SyncConfig(ctx)
	if err != nil {
		return err
	}
	if !cfg.Connected {
		return nil
	}

	if err := o.adapter.SilentRestore(ctx, cfg); err != nil {
		cfg.Connected = false
		cfg.AccessToken = ""
		cfg.TokenExpiry = ""
		if serr := o.store.SetSyncConfig(ctx, cfg); serr != nil {
			return serr
		}
		return fmt.Errorf("silent restore failed: %w", err)
	}

	return o.Pull(ctx)
}

// Reconnect runs the interactive consent flow and then pulls. Used on
// explicit user reconnect and on first-time connect.
func (o *Orchestrator) Reconnect(ctx context.Context) error {
	cred, err := o.adapter.Authenticate(ctx)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	cfg, err := o.store.SyncConfig(ctx)
	if err != nil {
		return err
	}
	cfg.AccessToken = cred.AccessToken
	if !cred.Expiry.IsZero() {
		cfg.TokenExpiry = cred.Expiry.UTC().Format(time.RFC3339)
	}
	if err := o.store.SetSyncConfig(ctx, cfg); err != nil {
		return err
	}

	return o.Pull(ctx)
}

// Disconnect signs out of the remote backend and clears the recorded
// connection state. Local data stays intact.
func (o *Orchestrator) Disconnect(ctx context.Context) error {
	if err := o.adapter.SignOut(ctx); err != nil {
		o.log.Warn(ctx, "sign-out revocation failed", "error", err)
	}

	cfg, err := o.store.SyncConfig(ctx)
	if err != nil {
		return err
	}
	cfg.Connected = false
	cfg.AccessToken = ""
	cfg.TokenExpiry = ""
	return o.store.SetSyncConfig(ctx, cfg)
}
