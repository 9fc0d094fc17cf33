package blob

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/avasilkov/giftcal/internal/common"
)

// ConsentFlow obtains and revokes the access credential for the file host.
type ConsentFlow interface {
	// RequestConsent runs the interactive consent flow. It returns
	// common.ErrConsentDenied when the user cancels.
	RequestConsent(ctx context.Context) (Credential, error)

	// Revoke invalidates the credential at the identity provider.
	Revoke(ctx context.Context, cred Credential) error
}

// OAuthConsent implements ConsentFlow over a standard authorization-code
// exchange. The Prompt hook performs the interactive part: it is given the
// authorization URL and must come back with the code, or an error when the
// user cancels.
type OAuthConsent struct {
	Config    *oauth2.Config
	RevokeURL string
	Prompt    func(ctx context.Context, authURL string) (code string, err error)
	Client    *http.Client
}

func (c *OAuthConsent) RequestConsent(ctx context.Context) (Credential, error) {
	if c.Prompt == nil {
		return Credential{}, fmt.Errorf("no consent prompt wired: %w", common.ErrConsentDenied)
	}

	state := uuid.NewString()
	authURL := c.Config.AuthCodeURL(state, oauth2.AccessTypeOnline)

	code, err := c.Prompt(ctx, authURL)
	if err != nil {
		return Credential{}, fmt.Errorf("consent prompt failed: %w", err)
	}
	if code == "" {
		return Credential{}, common.ErrConsentDenied
	}

	tok, err := c.Config.Exchange(ctx, code)
	if err != nil {
		return Credential{}, fmt.Errorf("code exchange failed: %w", err)
	}
	return Credential{AccessToken: tok.AccessToken, Expiry: tok.Expiry}, nil
}

func (c *OAuthConsent) Revoke(ctx context.Context, cred Credential) error {
	if c.RevokeURL == "" || cred.AccessToken == "" {
		return nil
	}
	form := url.Values{"token": {cred.AccessToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.RevokeURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("revocation request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("revocation returned %d", resp.StatusCode)
	}
	return nil
}
