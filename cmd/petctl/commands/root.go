// Package commands implements the petctl command tree.
package commands

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/marguberk/findmypet"
	"github.com/marguberk/findmypet/comments"
)

var (
	home    string
	apiURL  string
	timeout time.Duration
	verbose bool
	output  string

	logger       *zap.Logger
	client       *findmypet.Client
	commentStore *comments.Store
)

func Execute() error {
	root := &cobra.Command{
		Use:   "petctl",
		Short: "Lost-and-found pet listings client",
		Long: `petctl is a client for the FindMyPet lost-and-found pet listings service.

Browse and filter listings, post missing or found pets with a photo and a
last-seen location, and keep local comment threads per listing.

Configuration is read from <home>/config.yaml (default ~/.findmypet),
FINDMYPET_* environment variables, and flags, in increasing precedence.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.findmypet)")
	root.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 0, "request timeout")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVarP(&output, "output", "o", "table", "output format (table, json, yaml)")

	root.AddCommand(
		loginCmd(),
		registerCmd(),
		logoutCmd(),
		whoamiCmd(),
		statusCmd(),
		petsCmd(),
		commentsCmd(),
	)
	return root.Execute()
}

func setup(cmd *cobra.Command, args []string) error {
	if home == "" {
		dir, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		home = filepath.Join(dir, ".findmypet")
	}
	if err := os.MkdirAll(home, 0o700); err != nil {
		return err
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(home)
	viper.SetEnvPrefix("FINDMYPET")
	viper.AutomaticEnv()
	viper.SetDefault("api", findmypet.DefaultBaseURL)
	viper.SetDefault("timeout", findmypet.DefaultTimeout)
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}
	if apiURL == "" {
		apiURL = viper.GetString("api")
	}
	if timeout == 0 {
		timeout = viper.GetDuration("timeout")
	}

	logger = zap.NewNop()
	if verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		logger = l
	}

	client = findmypet.NewClient(
		findmypet.WithBaseURL(apiURL),
		findmypet.WithTimeout(timeout),
		findmypet.WithLogger(logger),
		findmypet.WithTokenStore(findmypet.NewFileTokenStore(home)),
	)
	// A failed profile fetch at startup is not fatal: the session keeps
	// its token and the profile loads on demand.
	if err := client.Initialize(cmd.Context()); err != nil {
		logger.Debug("session hydration incomplete", zap.Error(err))
	}

	store, err := comments.Open(filepath.Join(home, "comments.json"))
	if err != nil {
		return err
	}
	commentStore = store
	return nil
}
