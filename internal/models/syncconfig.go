package models

import "time"

// SyncConfig describes the connection to the remote file-blob backend.
// Created empty on first run; Connected flips true only after a successful
// authentication plus first pull. FileId is discovered (or created) lazily
// on the first sync and cached here for every later operation.
type SyncConfig struct {
	ClientId    string `json:"clientId,omitempty"`
	ApiKey      string `json:"apiKey,omitempty"`
	Connected   bool   `json:"connected"`
	FileId      string `json:"fileId,omitempty"`
	AccessToken string `json:"accessToken,omitempty"`
	TokenExpiry string `json:"tokenExpiry,omitempty"`
}

// ExpiryTime parses TokenExpiry, returning the zero time when unset or
// malformed.
func (c SyncConfig) ExpiryTime() time.Time {
	if c.TokenExpiry == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, c.TokenExpiry)
	if err != nil {
		return time.Time{}
	}
	return t
}
