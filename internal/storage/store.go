// Package storage implements the database-backed stores for credentials and
// posted reviews.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/avoronov/review-relay/internal/core"
)

// Store defines all database operations used by the application.
type Store interface {
	// GetCredential returns the credential for an account, or
	// core.ErrNoCredential when none is stored.
	GetCredential(ctx context.Context, accountID string) (*core.Credential, error)

	// UpsertCredential stores a credential, overwriting any previous token
	// for the same account (last writer wins).
	UpsertCredential(ctx context.Context, cred *core.Credential) error

	// SaveReview records a posted review. Saving the same
	// (repo, PR, head SHA) twice is a no-op.
	SaveReview(ctx context.Context, review *core.Review) error

	// HasReviewForCommit reports whether a review was already posted for
	// the given pull request head commit.
	HasReviewForCommit(ctx context.Context, repoFullName string, prNumber int, headSHA string) (bool, error)

	// LatestReviewForPR returns the most recent review for a pull request.
	LatestReviewForPR(ctx context.Context, repoFullName string, prNumber int) (*core.Review, error)
}

type postgresStore struct {
	db *sqlx.DB
}

// NewStore creates a Postgres-backed Store.
func NewStore(db *sqlx.DB) Store {
	return &postgresStore{db: db}
}

func (s *postgresStore) GetCredential(ctx context.Context, accountID string) (*core.Credential, error) {
	query := `SELECT account_id, account_login, access_token, updated_at FROM credentials WHERE account_id = $1`

	var c core.Credential
	err := s.db.QueryRowContext(ctx, query, accountID).
		Scan(&c.AccountID, &c.AccountLogin, &c.AccessToken, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", core.ErrNoCredential, accountID)
		}
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}
	return &c, nil
}

func (s *postgresStore) UpsertCredential(ctx context.Context, cred *core.Credential) error {
	query := `
		INSERT INTO credentials (account_id, account_login, access_token, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account_id) DO UPDATE SET
			account_login = EXCLUDED.account_login,
			access_token  = EXCLUDED.access_token,
			updated_at    = EXCLUDED.updated_at`

	_, err := s.db.ExecContext(ctx, query, cred.AccountID, cred.AccountLogin, cred.AccessToken, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert credential for %s: %w", cred.AccountID, err)
	}
	return nil
}

func (s *postgresStore) SaveReview(ctx context.Context, review *core.Review) error {
	query := `
		INSERT INTO reviews (repo_full_name, pr_number, head_sha, review_content, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT ON CONSTRAINT reviews_delivery_key DO NOTHING`

	_, err := s.db.ExecContext(ctx, query,
		review.RepoFullName, review.PRNumber, review.HeadSHA, review.ReviewContent, time.Now())
	return err
}

func (s *postgresStore) HasReviewForCommit(ctx context.Context, repoFullName string, prNumber int, headSHA string) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM reviews WHERE repo_full_name = $1 AND pr_number = $2 AND head_sha = $3)`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, repoFullName, prNumber, headSHA).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check for existing review: %w", err)
	}
	return exists, nil
}

func (s *postgresStore) LatestReviewForPR(ctx context.Context, repoFullName string, prNumber int) (*core.Review, error) {
	query := `
		SELECT id, repo_full_name, pr_number, head_sha, review_content, created_at
		FROM reviews
		WHERE repo_full_name = $1 AND pr_number = $2
		ORDER BY created_at DESC
		LIMIT 1`

	var r core.Review
	err := s.db.QueryRowContext(ctx, query, repoFullName, prNumber).
		Scan(&r.ID, &r.RepoFullName, &r.PRNumber, &r.HeadSHA, &r.ReviewContent, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no review recorded for %s#%d", repoFullName, prNumber)
		}
		return nil, err
	}
	return &r, nil
}
