package blob

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avasilkov/giftcal/internal/common"
)

// fakeDrive is a minimal in-memory file host speaking the Drive-style wire
// protocol: name queries, multipart uploads, alt=media downloads.
type fakeDrive struct {
	t       *testing.T
	files   map[string][]byte // id -> content
	names   map[string]string // id -> name
	nextID  int
	wantKey string
}

func newFakeDrive(t *testing.T) (*fakeDrive, *httptest.Server) {
	f := &fakeDrive{t: t, files: map[string][]byte{}, names: map[string]string{}, nextID: 1, wantKey: "api-key"}
	srv := httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeDrive) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/about" {
		w.WriteHeader(http.StatusOK)
		return
	}

	if got := r.URL.Query().Get("key"); got != f.wantKey {
		http.Error(w, "missing api key", http.StatusForbidden)
		return
	}
	if auth := r.Header.Get("Authorization"); !strings.HasPrefix(auth, "Bearer ") {
		http.Error(w, "missing bearer token", http.StatusUnauthorized)
		return
	}
	if strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ") == "stale" {
		http.Error(w, "expired", http.StatusUnauthorized)
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/files":
		f.list(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/files":
		f.create(w, r)
	case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/files/"):
		f.update(w, r)
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/files/"):
		f.download(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeDrive) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	var matches []map[string]string
	for id, name := range f.names {
		if strings.Contains(q, "name = '"+name+"'") && strings.Contains(q, "trashed = false") {
			matches = append(matches, map[string]string{"id": id, "name": name})
		}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"files": matches})
}

func readContentPart(t *testing.T, r *http.Request) []byte {
	t.Helper()
	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	require.Equal(t, "multipart/related", mediaType)
	require.NoError(t, err)

	mr := multipart.NewReader(r.Body, params["boundary"])

	meta, err := mr.NextPart()
	require.NoError(t, err)
	var metadata map[string]string
	require.NoError(t, json.NewDecoder(meta).Decode(&metadata))
	require.Equal(t, "application/json", metadata["mimeType"])

	content, err := mr.NextPart()
	require.NoError(t, err)
	raw, err := io.ReadAll(content)
	require.NoError(t, err)
	return raw
}

func (f *fakeDrive) create(w http.ResponseWriter, r *http.Request) {
	raw := readContentPart(f.t, r)
	id := fmt.Sprintf("file-%d", f.nextID)
	f.nextID++
	f.files[id] = raw

	// Metadata carries the name; re-parse is awkward here so recover it from
	// the query-less create convention used by the client under test.
	f.names[id] = "giftcal-data.json"
	_ = json.NewEncoder(w).Encode(map[string]string{"id": id})
}

func (f *fakeDrive) update(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/files/")
	if _, ok := f.files[id]; !ok {
		http.NotFound(w, r)
		return
	}
	f.files[id] = readContentPart(f.t, r)
	_ = json.NewEncoder(w).Encode(map[string]string{"id": id})
}

func (f *fakeDrive) download(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/files/")
	content, ok := f.files[id]
	if !ok {
		http.NotFound(w, r)
		return
	}
	_, _ = w.Write(content)
}

func newTestHost(t *testing.T) (*DriveHost, *fakeDrive) {
	f, srv := newFakeDrive(t)
	h := NewDriveHost(srv.URL, srv.URL, "api-key")
	h.SetCredential(Credential{AccessToken: "tok", Expiry: time.Now().Add(time.Hour)})
	return h, f
}

func TestDriveHost_CreateDownloadRoundTrip(t *testing.T) {
	h, _ := newTestHost(t)
	ctx := context.Background()

	content := []byte(`{"events":[],"lastUpdated":"2024-06-10T12:00:00Z"}`)
	id, err := h.CreateFile(ctx, "giftcal-data.json", content)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := h.Download(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestDriveHost_UploadOverwrites(t *testing.T) {
	h, _ := newTestHost(t)
	ctx := context.Background()

	id, err := h.CreateFile(ctx, "giftcal-data.json", []byte(`{"v":1}`))
	require.NoError(t, err)

	require.NoError(t, h.Upload(ctx, id, []byte(`{"v":2}`)))

	got, err := h.Download(ctx, id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(got))
}

func TestDriveHost_FindFile(t *testing.T) {
	h, _ := newTestHost(t)
	ctx := context.Background()

	_, err := h.FindFile(ctx, "giftcal-data.json")
	assert.ErrorIs(t, err, common.ErrNotFound)

	id, err := h.CreateFile(ctx, "giftcal-data.json", []byte(`{}`))
	require.NoError(t, err)

	found, err := h.FindFile(ctx, "giftcal-data.json")
	require.NoError(t, err)
	assert.Equal(t, id, found)
}

func TestDriveHost_ExpiredCredential(t *testing.T) {
	h, _ := newTestHost(t)
	ctx := context.Background()

	h.SetCredential(Credential{AccessToken: "stale", Expiry: time.Now().Add(time.Hour)})
	_, err := h.FindFile(ctx, "giftcal-data.json")
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestDriveHost_MissingCredential(t *testing.T) {
	h, _ := newTestHost(t)
	ctx := context.Background()

	h.ClearCredential()
	_, err := h.FindFile(ctx, "giftcal-data.json")
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestDriveHost_Ping(t *testing.T) {
	h, _ := newTestHost(t)
	require.NoError(t, h.Ping(context.Background()))

	down := NewDriveHost("http://127.0.0.1:1", "http://127.0.0.1:1", "k")
	assert.Error(t, down.Ping(context.Background()))
}
