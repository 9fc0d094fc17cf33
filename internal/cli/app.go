package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"

	"github.com/avasilkov/giftcal/internal/bus"
	"github.com/avasilkov/giftcal/internal/config"
	"github.com/avasilkov/giftcal/internal/filex"
	"github.com/avasilkov/giftcal/internal/logging"
	"github.com/avasilkov/giftcal/internal/remote/blob"
	"github.com/avasilkov/giftcal/internal/remote/docstore"
	"github.com/avasilkov/giftcal/internal/service"
	"github.com/avasilkov/giftcal/internal/store"
	gsync "github.com/avasilkov/giftcal/internal/sync"

	_ "modernc.org/sqlite"
)

const (
	driveBaseURL   = "https://www.googleapis.com/drive/v3"
	driveUploadURL = "https://www.googleapis.com/upload/drive/v3"
	driveFileScope = "https://www.googleapis.com/auth/drive.file"

	googleAuthURL   = "https://accounts.google.com/o/oauth2/auth"
	googleTokenURL  = "https://oauth2.googleapis.com/token"
	googleRevokeURL = "https://oauth2.googleapis.com/revoke"

	// Out-of-band redirect: the user copies the code from the browser and
	// pastes it into the terminal.
	oobRedirectURL = "urn:ietf:wg:oauth:2.0:oob"

	startupTimeout = 15 * time.Second
)

// App ties the configured backend to the interactive command loop. In the
// default mode data lives in the local SQLite store and syncs to a file blob;
// with a document-store DSN configured, every operation goes straight to
// Postgres and the sync commands are inert.
type App struct {
	config *config.Config
	data   service.DataService
	bus    *bus.Bus
	log    logging.Logger
	reader *bufio.Reader

	store   *store.SQLiteStore
	adapter *blob.Adapter
	orch    *gsync.Orchestrator
	docs    *docstore.Client

	clientID     string
	clientSecret string
	apiKey       string
}

func NewApp(cfg *config.Config, log logging.Logger) (*App, error) {
	ctx := context.Background()

	a := &App{
		config: cfg,
		bus:    bus.New(),
		log:    log,
		reader: bufio.NewReader(os.Stdin),
	}

	if cfg.DocstoreDSN != "" {
		docs, err := docstore.Open(cfg.DocstoreDSN, log)
		if err != nil {
			return nil, fmt.Errorf("error opening document store: %w", err)
		}
		a.docs = docs
		a.data = service.NewDocService(docs, a.bus)
		return a, nil
	}

	if err := filex.EnsureParentDir(cfg.DatabasePath); err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}
	a.store = st
	a.data = service.NewLocalService(st, a.bus, a)

	a.clientID, a.clientSecret, a.apiKey = cfg.ClientId, cfg.ClientSecret, cfg.ApiKey
	if !cfg.CredentialsForced {
		if sc, err := st.SyncConfig(ctx); err == nil {
			if a.clientID == "" {
				a.clientID = sc.ClientId
			}
			if a.apiKey == "" {
				a.apiKey = sc.ApiKey
			}
		}
	}

	if err := a.buildSync(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return a, nil
}

// buildSync (re)assembles the file host, consent flow, adapter, and
// orchestrator from the current credential set.
func (a *App) buildSync(ctx context.Context) error {
	var host blob.FileHost
	switch a.config.BlobHost {
	case "s3":
		h, err := blob.NewS3Host(ctx, blob.S3Config{
			Region:       a.config.S3Region,
			Bucket:       a.config.S3Bucket,
			BaseEndpoint: a.config.S3BaseEndpoint,
			AccessKey:    a.config.S3AccessKey,
			SecretKey:    a.config.S3SecretKey,
		})
		if err != nil {
			return fmt.Errorf("error building s3 host: %w", err)
		}
		host = h
	default:
		host = blob.NewDriveHost(driveBaseURL, driveUploadURL, a.apiKey)
	}

	consent := &blob.OAuthConsent{
		Config: &oauth2.Config{
			ClientID:     a.clientID,
			ClientSecret: a.clientSecret,
			Endpoint:     oauth2.Endpoint{AuthURL: googleAuthURL, TokenURL: googleTokenURL},
			RedirectURL:  oobRedirectURL,
			Scopes:       []string{driveFileScope},
		},
		RevokeURL: googleRevokeURL,
		Prompt:    a.promptConsent,
	}

	a.adapter = blob.NewAdapter(host, consent, nil, a.config.RemoteFileName, a.log)
	a.orch = gsync.New(a.store, a.adapter, a.bus, a.log)
	return nil
}

// Push lets LocalService fire a background push without holding the
// orchestrator directly. A nil orchestrator (document-store mode) makes this
// a no-op.
func (a *App) Push(ctx context.Context) {
	if a.orch != nil {
		a.orch.Push(ctx)
	}
}

// Run performs the best-effort silent reconnect and enters the command loop.
// Startup failures leave the app in local-only mode; every command keeps
// working against the local store.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	if a.orch != nil {
		sctx, cancel := context.WithTimeout(ctx, startupTimeout)
		if err := a.adapter.Init(sctx); err != nil {
			a.log.Warn(sctx, "remote backend unreachable, staying local", "error", err)
		} else if err := a.orch.Startup(sctx); err != nil {
			a.log.Warn(sctx, "silent reconnect failed", "error", err)
		}
		cancel()
	}

	printlnFn("Welcome to giftcal (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}

func (a *App) Close() {
	if a.orch != nil {
		a.orch.Wait()
	}
	if a.store != nil {
		_ = a.store.Close()
	}
	if a.docs != nil {
		_ = a.docs.Close()
	}
}

func (a *App) connected() bool {
	return a.adapter != nil && a.adapter.State() == blob.StateConnected
}

func (a *App) status() string {
	if a.docs != nil {
		return "(docstore)"
	}
	return fmt.Sprintf("(%s)", a.adapter.State())
}

func (a *App) promptConsent(ctx context.Context, authURL string) (string, error) {
	printlnFn("Open this URL in your browser and approve access:")
	printlnFn()
	printlnFn("  " + authURL)
	printlnFn()
	return GetSimpleText(a.reader, "Paste the authorization code (empty line to cancel)", os.Stdout)
}
