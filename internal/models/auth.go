package models

// AuthInfo is the single local login record. Exactly one instance exists;
// it is overwritten in place and never versioned.
type AuthInfo struct {
	Username string `json:"username"`
	Secret   string `json:"secret"`
}

// DefaultAuth is returned by the store before any credentials were saved.
func DefaultAuth() AuthInfo {
	return AuthInfo{Username: "admin", Secret: "admin"}
}
