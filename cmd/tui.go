package cmd

import (
	"fmt"

	"github.com/matheuskafuri/hnstories/internal/config"
	"github.com/matheuskafuri/hnstories/internal/hn"
	"github.com/matheuskafuri/hnstories/internal/logging"
	"github.com/matheuskafuri/hnstories/internal/store"
	"github.com/matheuskafuri/hnstories/internal/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := store.Open(config.StatePath())
	if err != nil {
		return fmt.Errorf("opening state: %w", err)
	}
	defer db.Close()

	term, err := store.NewSemiPersistent(db, store.SearchKey, cfg.Query())
	if err != nil {
		// Unreadable state is not fatal: start from the default term
		logger.Warn("restoring search term", zap.Error(err))
	}
	if flagQuery != "" {
		if err := term.Set(flagQuery); err != nil {
			logger.Warn("persisting search term", zap.Error(err))
		}
	}

	return tui.Run(tui.RunOpts{
		Searcher: newSearcher(cfg, logger),
		Term:     term,
		Logger:   logger,
		Timeout:  cfg.TimeoutDuration(),
	})
}

func newSearcher(cfg *config.Config, logger *zap.Logger) hn.Searcher {
	client := hn.NewClient(
		hn.WithEndpoint(cfg.Endpoint),
		hn.WithTimeout(cfg.TimeoutDuration()),
		hn.WithRateLimit(cfg.RateLimit),
	)
	return hn.NewLoggingSearcher(client, logger)
}

// newLogger only writes a log file when asked to, either with --debug or
// an explicit non-default level in the config.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.LogLevel
	if flagDebug {
		level = "debug"
	}
	path := ""
	if flagDebug || (level != "" && level != "info") {
		path = config.LogPath()
	}
	logger, err := logging.New(path, level)
	if err != nil {
		return nil, fmt.Errorf("setting up logging: %w", err)
	}
	return logger, nil
}
