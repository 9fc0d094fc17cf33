// Package blob implements the file-blob remote backend: the whole data set
// lives in one JSON document on a file host, discovered by name and
// overwritten wholesale on every push.
package blob

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Credential is the bearer access credential obtained from the consent flow.
// The adapter never refreshes it; when it expires the caller must
// re-authenticate.
type Credential struct {
	AccessToken string
	Expiry      time.Time
}

// Expired reports whether the credential is unusable at time now. A token
// that parses as a JWT is judged by its exp claim (unverified; the host
// validates signatures, we only need the timestamp); otherwise the recorded
// Expiry decides. A credential with neither is treated as expired.
func (c Credential) Expired(now time.Time) bool {
	if c.AccessToken == "" {
		return true
	}
	if strings.Count(c.AccessToken, ".") == 2 {
		var claims jwt.RegisteredClaims
		_, _, err := jwt.NewParser().ParseUnverified(c.AccessToken, &claims)
		if err == nil && claims.ExpiresAt != nil {
			return !now.Before(claims.ExpiresAt.Time)
		}
	}
	if c.Expiry.IsZero() {
		return true
	}
	return !now.Before(c.Expiry)
}

// FileHost is the wire-level contract the adapter drives once authenticated.
// Implemented by DriveHost (consumer file host) and S3Host (object storage).
type FileHost interface {
	// Ping checks host reachability. Used as a readiness probe.
	Ping(ctx context.Context) error

	// SetCredential installs the bearer credential for subsequent calls.
	SetCredential(cred Credential)

	// ClearCredential drops the cached credential, e.g. after sign-out.
	ClearCredential()

	// FindFile resolves the id of the named, not-trashed file. Returns
	// common.ErrNotFound when no such file exists.
	FindFile(ctx context.Context, name string) (string, error)

	// CreateFile uploads a new file with the given content and returns its id.
	CreateFile(ctx context.Context, name string, content []byte) (string, error)

	// Download returns the raw file content.
	Download(ctx context.Context, fileID string) ([]byte, error)

	// Upload overwrites the file content in place.
	Upload(ctx context.Context, fileID string, content []byte) error
}
