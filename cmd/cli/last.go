package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/avoronov/review-relay/internal/db"
	"github.com/avoronov/review-relay/internal/gitutil"
	"github.com/avoronov/review-relay/internal/storage"
)

var lastCmd = &cobra.Command{
	Use:   "last [pr-url]",
	Short: "Show the most recent stored review for a pull request",
	Long: `Show the most recent review the service stored for a pull request.

Requires database access (RR_DATABASE_URL).

Example:
  relay-cli last https://github.com/owner/repo/pull/123`,
	Args: cobra.ExactArgs(1),
	RunE: runLast,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	rootCmd.AddCommand(lastCmd)
}

func runLast(_ *cobra.Command, args []string) error {
	ctx := context.Background()

	owner, repo, prNumber, err := gitutil.ParsePullRequestURL(args[0])
	if err != nil {
		return err
	}

	databaseURL := viper.GetString("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("RR_DATABASE_URL must be set")
	}

	dbConn, cleanup, err := db.NewDatabase(databaseURL)
	if err != nil {
		return err
	}
	defer cleanup()

	store := storage.NewStore(dbConn.DB)
	review, err := store.LatestReviewForPR(ctx, owner+"/"+repo, prNumber)
	if err != nil {
		return err
	}

	titleColor.Printf("%s#%d @ %s (%s)\n", review.RepoFullName, review.PRNumber,
		review.HeadSHA, review.CreatedAt.Format("2006-01-02 15:04"))

	rendered, err := glamour.Render(review.ReviewContent, "dark")
	if err != nil {
		rendered = review.ReviewContent
	}
	fmt.Print(rendered)
	return nil
}
