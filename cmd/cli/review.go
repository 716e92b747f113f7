package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/avoronov/review-relay/internal/github"
	"github.com/avoronov/review-relay/internal/gitutil"
	"github.com/avoronov/review-relay/internal/llm"
)

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	dimColor     = color.New(color.FgHiBlack)
)

var postComment bool

var reviewCmd = &cobra.Command{
	Use:   "review [pr-url | pr-number]",
	Short: "Run a one-off AI review of a GitHub pull request",
	Long: `Run a one-off AI review of a GitHub pull request.

The target can be a full pull request URL, or just a PR number when run
inside a checkout of the repository (the owner/repo pair is read from the
git remotes).

Examples:
  relay-cli review https://github.com/owner/repo/pull/123
  relay-cli review 123
  relay-cli review --post 123`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	reviewCmd.Flags().BoolVar(&postComment, "post", false, "Post the generated review as a PR comment")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	owner, repo, prNumber, err := resolveTarget(args[0])
	if err != nil {
		return err
	}

	token := viper.GetString("GITHUB_TOKEN")
	if token == "" {
		return fmt.Errorf("a GitHub token is required (--github-token or RR_GITHUB_TOKEN)")
	}

	provider, err := llm.NewProvider(
		stringOrDefault(viper.GetString("LLM_PROVIDER"), "gemini"),
		stringOrDefault(viper.GetString("GENERATOR_MODEL_NAME"), "gemini-1.5-flash"),
		viper.GetString("GEMINI_API_KEY"),
		stringOrDefault(viper.GetString("OLLAMA_HOST"), "http://localhost:11434"),
		2*time.Minute,
	)
	if err != nil {
		return err
	}

	promptMgr, err := llm.NewPromptManager()
	if err != nil {
		return err
	}
	generator := llm.NewGenerator(provider, promptMgr, 2*time.Minute, logger)

	titleColor.Printf("Review Relay: %s/%s#%d\n", owner, repo, prNumber)

	ghClient := github.NewTokenClient(ctx, token, logger)

	dimColor.Println("fetching diff...")
	diff, err := ghClient.GetPullRequestDiff(ctx, owner, repo, prNumber)
	if err != nil {
		errorColor.Println("diff fetch failed")
		return err
	}

	dimColor.Printf("generating review (%s)...\n", provider.Name())
	review, err := generator.GenerateReview(ctx, &llm.ReviewData{Diff: diff})
	if err != nil {
		errorColor.Println("review generation failed")
		return err
	}

	rendered, err := glamour.Render(review, "dark")
	if err != nil {
		rendered = review
	}
	fmt.Print(rendered)

	if postComment {
		if err := ghClient.CreateComment(ctx, owner, repo, prNumber, review); err != nil {
			errorColor.Println("failed to post comment")
			return err
		}
		successColor.Println("review comment posted")
	}
	return nil
}

// resolveTarget accepts a PR URL or a bare PR number; bare numbers resolve
// the repository from the working directory's git remotes.
func resolveTarget(arg string) (owner, repo string, prNumber int, err error) {
	if n, convErr := strconv.Atoi(arg); convErr == nil {
		fullName, resolveErr := gitutil.ResolveRepoFullName(".")
		if resolveErr != nil {
			return "", "", 0, fmt.Errorf("cannot resolve repository for PR number %d: %w", n, resolveErr)
		}
		parts := strings.SplitN(fullName, "/", 2)
		return parts[0], parts[1], n, nil
	}
	return gitutil.ParsePullRequestURL(arg)
}

func stringOrDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
