package core

import "time"

// Review is a posted code review recorded in the database. The
// (RepoFullName, PRNumber, HeadSHA) triple is the idempotency key that keeps
// redelivered webhooks from double-posting.
type Review struct {
	ID            int64
	RepoFullName  string
	PRNumber      int
	HeadSHA       string
	ReviewContent string
	CreatedAt     time.Time
}
