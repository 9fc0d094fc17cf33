// Package common defines shared sentinel errors used across the sync core.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository / remote-file errors.
	ErrNotFound = errors.New("not found")

	// Backend lifecycle errors.
	ErrNotConfigured = errors.New("backend not configured")
	ErrNotReady      = errors.New("client not ready")
	ErrNotConnected  = errors.New("not connected")

	// Auth errors.
	ErrUnauthorized  = errors.New("unauthorized")
	ErrTokenExpired  = errors.New("token expired")
	ErrConsentDenied = errors.New("consent denied")
)
