package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var githubToken string

var rootCmd = &cobra.Command{
	Use:   "relay-cli",
	Short: "relay-cli is the command-line interface for Review Relay.",
	Long:  `A CLI for the Review Relay service: run one-off AI reviews of pull requests and inspect stored reviews.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() { //nolint:gochecknoinits // Cobra's init function for command registration
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&githubToken, "github-token", "t", "", "GitHub token (or RR_GITHUB_TOKEN)")

	if err := viper.BindPFlag("GITHUB_TOKEN", rootCmd.PersistentFlags().Lookup("github-token")); err != nil {
		slog.Error("error binding flag", "error", err)
		os.Exit(1)
	}
}

// initConfig reads environment variables prefixed with RR_.
func initConfig() {
	viper.SetEnvPrefix("RR")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}
