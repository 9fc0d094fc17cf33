package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"sync"
	"time"

	"github.com/avasilkov/giftcal/internal/common"
)

const driveMimeType = "application/json"

// DriveHost talks to a Drive-style file host: files are listed with a
// name-and-not-trashed query, downloaded with alt=media, and written with a
// multipart/related upload carrying a JSON metadata part and a JSON content
// part. Requests authenticate with a bearer credential; the API key rides
// along as a query parameter.
type DriveHost struct {
	baseURL   string
	uploadURL string
	apiKey    string
	client    *http.Client

	mu   sync.Mutex
	cred Credential
}

// NewDriveHost builds a host client. baseURL serves metadata and downloads,
// uploadURL serves multipart uploads (the host exposes them on different
// prefixes).
func NewDriveHost(baseURL, uploadURL, apiKey string) *DriveHost {
	return &DriveHost{
		baseURL:   baseURL,
		uploadURL: uploadURL,
		apiKey:    apiKey,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (h *DriveHost) SetCredential(cred Credential) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cred = cred
}

func (h *DriveHost) ClearCredential() {
	h.SetCredential(Credential{})
}

func (h *DriveHost) credential() Credential {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cred
}

func (h *DriveHost) do(req *http.Request) (*http.Response, error) {
	cred := h.credential()
	if cred.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	}
	q := req.URL.Query()
	if h.apiKey != "" {
		q.Set("key", h.apiKey)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		_ = resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// checkStatus maps HTTP errors onto the shared sentinel set.
func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("host returned %d: %w", resp.StatusCode, common.ErrTokenExpired)
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("host returned %d: %w", resp.StatusCode, common.ErrUnauthorized)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("host returned %d: %w", resp.StatusCode, common.ErrNotFound)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("host returned %d: %s", resp.StatusCode, body)
	}
}

// Ping issues an unauthenticated about-request to verify reachability.
func (h *DriveHost) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/about", nil)
	if err != nil {
		return err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("host unreachable: %w", err)
	}
	_ = resp.Body.Close()
	return nil
}

type fileResource struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type fileList struct {
	Files []fileResource `json:"files"`
}

func (h *DriveHost) FindFile(ctx context.Context, name string) (string, error) {
	u := fmt.Sprintf("%s/files?q=%s&fields=%s",
		h.baseURL,
		url.QueryEscape(fmt.Sprintf("name = '%s' and trashed = false", name)),
		url.QueryEscape("files(id, name)"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	resp, err := h.do(req)
	if err != nil {
		return "", fmt.Errorf("failed to list files: %w", err)
	}
	defer resp.Body.Close()

	var list fileList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return "", fmt.Errorf("failed to decode file list: %w", err)
	}
	if len(list.Files) == 0 {
		return "", common.ErrNotFound
	}
	// The query is name-exact; the first match is the document.
	return list.Files[0].Id, nil
}

func (h *DriveHost) CreateFile(ctx context.Context, name string, content []byte) (string, error) {
	body, contentType, err := multipartBody(map[string]string{
		"name":     name,
		"mimeType": driveMimeType,
	}, content)
	if err != nil {
		return "", err
	}

	u := h.uploadURL + "/files?uploadType=multipart"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := h.do(req)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer resp.Body.Close()

	var file fileResource
	if err := json.NewDecoder(resp.Body).Decode(&file); err != nil {
		return "", fmt.Errorf("failed to decode created file: %w", err)
	}
	return file.Id, nil
}

func (h *DriveHost) Download(ctx context.Context, fileID string) ([]byte, error) {
	u := fmt.Sprintf("%s/files/%s?alt=media", h.baseURL, url.PathEscape(fileID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

func (h *DriveHost) Upload(ctx context.Context, fileID string, content []byte) error {
	body, contentType, err := multipartBody(map[string]string{
		"mimeType": driveMimeType,
	}, content)
	if err != nil {
		return err
	}

	u := fmt.Sprintf("%s/files/%s?uploadType=multipart", h.uploadURL, url.PathEscape(fileID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := h.do(req)
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}
	_ = resp.Body.Close()
	return nil
}

// multipartBody assembles the two-part upload: JSON metadata followed by the
// JSON document itself.
func multipartBody(metadata map[string]string, content []byte) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := w.CreatePart(metaHeader)
	if err != nil {
		return nil, "", err
	}
	if err := json.NewEncoder(metaPart).Encode(metadata); err != nil {
		return nil, "", err
	}

	contentHeader := textproto.MIMEHeader{}
	contentHeader.Set("Content-Type", driveMimeType)
	contentPart, err := w.CreatePart(contentHeader)
	if err != nil {
		return nil, "", err
	}
	if _, err := contentPart.Write(content); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, "multipart/related; boundary=" + w.Boundary(), nil
}
