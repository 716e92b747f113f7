package core

import "time"

// Credential is an account-scoped bearer token authorizing calls to the
// GitHub API on that account's behalf. At most one live credential exists per
// account; a re-authorization overwrites the token in place.
type Credential struct {
	AccountID    string
	AccountLogin string
	AccessToken  string
	UpdatedAt    time.Time
}
