package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/avasilkov/giftcal/internal/common"
	"github.com/avasilkov/giftcal/internal/logging"
	"github.com/avasilkov/giftcal/internal/models"
)

// State is the adapter lifecycle position. Transitions only move forward,
// except for SignOut and auth failures which drop back to Ready.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateAuthenticated
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateAuthenticated:
		return "authenticated"
	case StateConnected:
		return "connected"
	}
	return "unknown"
}

// ReadinessProbe reports whether an external dependency is usable yet.
type ReadinessProbe func(ctx context.Context) error

// Adapter drives a FileHost through the connection lifecycle:
// Uninitialized → Initializing → Ready → Authenticated → Connected.
// It is safe for concurrent use; the underlying host calls are not
// serialized, matching the accepted overlapping-push race.
type Adapter struct {
	host     FileHost
	consent  ConsentFlow
	identity ReadinessProbe
	fileName string
	log      logging.Logger
	now      func() time.Time

	mu    sync.Mutex
	state State
	cred  Credential
}

// NewAdapter wires an adapter over host. fileName is the fixed name of the
// remote data document. identity probes the identity provider during Init;
// nil means only host reachability gates readiness.
func NewAdapter(host FileHost, consent ConsentFlow, identity ReadinessProbe, fileName string, log logging.Logger) *Adapter {
	return &Adapter{
		host:     host,
		consent:  consent,
		identity: identity,
		fileName: fileName,
		log:      log,
		now:      time.Now,
		state:    StateUninitialized,
	}
}

// State returns the current lifecycle state.
func (a *Adapter) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Adapter) setState(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

func (a *Adapter) requireAtLeast(s State) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state < s {
		return fmt.Errorf("adapter is %s: %w", a.state, common.ErrNotReady)
	}
	return nil
}

// Init waits for the host and the identity provider to become reachable and
// moves the adapter to Ready. Both probes run concurrently and both must
// succeed. There is no internal timeout: bound the wait through ctx.
func (a *Adapter) Init(ctx context.Context) error {
	a.setState(StateInitializing)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.host.Ping(gctx); err != nil {
			return fmt.Errorf("host not ready: %w", err)
		}
		return nil
	})
	if a.identity != nil {
		g.Go(func() error {
			if err := a.identity(gctx); err != nil {
				return fmt.Errorf("identity provider not ready: %w", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.setState(StateUninitialized)
		return err
	}

	a.setState(StateReady)
	return nil
}

// Authenticate runs the interactive consent flow and installs the resulting
// credential. Consent denial and provider errors surface to the caller.
func (a *Adapter) Authenticate(ctx context.Context) (Credential, error) {
	if err := a.requireAtLeast(StateReady); err != nil {
		return Credential{}, err
	}

	cred, err := a.consent.RequestConsent(ctx)
	if err != nil {
		return Credential{}, err
	}

	a.mu.Lock()
	a.cred = cred
	if a.state < StateAuthenticated {
		a.state = StateAuthenticated
	}
	a.mu.Unlock()
	a.host.SetCredential(cred)

	return cred, nil
}

// SilentRestore re-establishes a previously recorded connection without
// prompting. It only inspects the cached credential for non-expiry; it never
// refreshes, since no refresh flow exists for this host. On success the
// adapter is Authenticated and a Pull can proceed.
func (a *Adapter) SilentRestore(ctx context.Context, cfg models.SyncConfig) error {
	if err := a.requireAtLeast(StateReady); err != nil {
		return err
	}
	if !cfg.Connected {
		return common.ErrNotConnected
	}

	cred := Credential{AccessToken: cfg.AccessToken, Expiry: cfg.ExpiryTime()}
	if cred.Expired(a.now()) {
		return common.ErrTokenExpired
	}

	a.mu.Lock()
	a.cred = cred
	if a.state < StateAuthenticated {
		a.state = StateAuthenticated
	}
	a.mu.Unlock()
	a.host.SetCredential(cred)

	a.log.Debug(ctx, "silent restore succeeded")
	return nil
}

// Connect resolves the remote data document by name, creating it with the
// seed snapshot when absent (the first-run path), and moves to Connected.
func (a *Adapter) Connect(ctx context.Context, seed *models.Snapshot) (string, error) {
	if err := a.requireAtLeast(StateAuthenticated); err != nil {
		return "", err
	}

	fileID, err := a.host.FindFile(ctx, a.fileName)
	if errors.Is(err, common.ErrNotFound) {
		content, merr := json.Marshal(seed)
		if merr != nil {
			return "", merr
		}
		fileID, err = a.host.CreateFile(ctx, a.fileName, content)
		if err != nil {
			return "", fmt.Errorf("failed to create remote file: %w", err)
		}
		a.log.Info(ctx, "created remote file", "name", a.fileName, "id", fileID)
	} else if err != nil {
		return "", fmt.Errorf("failed to resolve remote file: %w", err)
	}

	a.setState(StateConnected)
	return fileID, nil
}

// Fetch downloads and decodes the remote snapshot.
func (a *Adapter) Fetch(ctx context.Context, fileID string) (*models.Snapshot, error) {
	if err := a.requireAtLeast(StateConnected); err != nil {
		return nil, err
	}

	raw, err := a.host.Download(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

// Persist overwrites the remote snapshot. An expired credential fails with
// ErrTokenExpired and drops the adapter back to Ready; the caller must
// re-run Authenticate; there is no auto-refresh.
func (a *Adapter) Persist(ctx context.Context, fileID string, snap *models.Snapshot) error {
	if err := a.requireAtLeast(StateConnected); err != nil {
		return err
	}

	a.mu.Lock()
	cred := a.cred
	a.mu.Unlock()
	if cred.Expired(a.now()) {
		a.setState(StateReady)
		return common.ErrTokenExpired
	}

	content, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if err := a.host.Upload(ctx, fileID, content); err != nil {
		if errors.Is(err, common.ErrTokenExpired) || errors.Is(err, common.ErrUnauthorized) {
			a.setState(StateReady)
		}
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}
	return nil
}

// SignOut revokes the credential, clears the host's cached token and drops
// back to Ready. Subsequent operations must re-run Authenticate.
func (a *Adapter) SignOut(ctx context.Context) error {
	a.mu.Lock()
	cred := a.cred
	a.cred = Credential{}
	if a.state > StateReady {
		a.state = StateReady
	}
	a.mu.Unlock()

	a.host.ClearCredential()

	if err := a.consent.Revoke(ctx, cred); err != nil {
		return fmt.Errorf("failed to revoke credential: %w", err)
	}
	return nil
}
