package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/avasilkov/giftcal/internal/remote/blob"
)

var errDocstoreMode = errors.New("not applicable with the document-store backend")

// ensureCredentials makes sure a drive client id and API key are available,
// prompting for them on first use. Manually entered values are persisted in
// the local store; environment-supplied values shadow them and are never
// overwritten.
func (a *App) ensureCredentials(ctx context.Context) error {
	if a.config.BlobHost != "drive" || a.config.CredentialsForced {
		return nil
	}
	if a.clientID != "" && a.apiKey != "" {
		return nil
	}

	printlnFn("Remote access needs a drive client id and API key.")
	clientID, err := GetSimpleText(a.reader, "Client id", os.Stdout)
	if err != nil {
		return err
	}
	apiKey, err := GetSecret("API key", os.Stdout)
	if err != nil {
		return err
	}
	if clientID == "" || apiKey == "" {
		return errors.New("client id and API key are required")
	}

	sc, err := a.store.SyncConfig(ctx)
	if err != nil {
		return err
	}
	sc.ClientId = clientID
	sc.ApiKey = apiKey
	if err := a.store.SetSyncConfig(ctx, sc); err != nil {
		return err
	}

	a.clientID, a.apiKey = clientID, apiKey
	// The API key is baked into the drive host, so the sync stack is rebuilt.
	return a.buildSync(ctx)
}

func (a *App) Connect(ctx context.Context) error {
	if a.orch == nil {
		return errDocstoreMode
	}
	if err := a.ensureCredentials(ctx); err != nil {
		return err
	}
	if a.adapter.State() < blob.StateReady {
		if err := a.adapter.Init(ctx); err != nil {
			return fmt.Errorf("remote backend unreachable: %w", err)
		}
	}
	if err := a.orch.Reconnect(ctx); err != nil {
		return err
	}
	printlnFn("Connected.")
	return nil
}

func (a *App) Sync(ctx context.Context) error {
	if a.orch == nil {
		return errDocstoreMode
	}
	if err := a.orch.Pull(ctx); err != nil {
		return err
	}
	printlnFn("Local data replaced with the remote snapshot.")
	return nil
}

func (a *App) Disconnect(ctx context.Context) error {
	if a.orch == nil {
		return errDocstoreMode
	}
	if err := a.orch.Disconnect(ctx); err != nil {
		return err
	}
	printlnFn("Disconnected, staying local.")
	return nil
}

func (a *App) Status(ctx context.Context) error {
	if a.docs != nil {
		printlnFn("Backend: document store")
		if !a.docs.Configured() {
			printlnFn("Document store is not configured.")
		}
		return nil
	}

	printlnFn("Backend:", a.config.BlobHost)
	printlnFn("Adapter:", a.adapter.State().String())

	sc, err := a.store.SyncConfig(ctx)
	if err != nil {
		return err
	}
	printlnFn("Connected flag:", sc.Connected)
	if sc.FileId != "" {
		printlnFn("Remote file:", sc.FileId)
	}
	return nil
}
