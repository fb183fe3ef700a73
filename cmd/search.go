package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/matheuskafuri/hnstories/internal/config"
	"github.com/matheuskafuri/hnstories/internal/hn"
	"github.com/matheuskafuri/hnstories/internal/stories"
	"github.com/matheuskafuri/hnstories/internal/store"
	"github.com/spf13/cobra"
)

var flagSearchLimit int

var searchCmd = &cobra.Command{
	Use:   "search [term...]",
	Short: "Print matching stories without starting the TUI",
	Long: `Run a single search and print the stories to stdout.

Without a term, the remembered search term is used. The remembered term is
never changed by this command.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer logger.Sync()

		term := strings.Join(args, " ")
		if term == "" {
			db, err := store.Open(config.StatePath())
			if err != nil {
				return fmt.Errorf("opening state: %w", err)
			}
			// Read directly: the remembered term must stay untouched here
			stored, _, err := db.Get(store.SearchKey)
			db.Close()
			if err != nil {
				return fmt.Errorf("reading search term: %w", err)
			}
			term = stored
			if term == "" {
				term = cfg.Query()
			}
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.TimeoutDuration())
		defer cancel()

		state, err := runSearch(ctx, newSearcher(cfg, logger), term)
		if state.IsError {
			return fmt.Errorf("something went wrong searching for %q: %w", term, err)
		}
		if err != nil {
			return err
		}
		printStories(cmd.OutOrStdout(), state, flagSearchLimit)
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&flagSearchLimit, "limit", "n", 0, "print at most n stories (0 = all)")
}

// runSearch drives one fetch through the story reducer, the same way the
// TUI does. On a failed search the returned state has IsError set and the
// error is the cause.
func runSearch(ctx context.Context, s hn.Searcher, term string) (stories.State, error) {
	state, err := stories.Reduce(stories.State{}, stories.FetchInit{})
	if err != nil {
		return state, err
	}

	hits, searchErr := s.Search(ctx, term)
	if searchErr != nil {
		state, err = stories.Reduce(state, stories.FetchFailure{})
		if err != nil {
			return state, err
		}
		return state, searchErr
	}
	return stories.Reduce(state, stories.FetchSuccess{Stories: hits})
}

func printStories(w io.Writer, state stories.State, limit int) {
	list := state.Data
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	if len(list) == 0 {
		fmt.Fprintln(w, "No stories.")
		return
	}
	for _, s := range list {
		fmt.Fprintf(w, "%s\n  %s\n  Author: %s  Comments: %d  Points: %d",
			s.Title, s.URL, s.Author, s.NumComments, s.Points)
		if created := s.Created(); !created.IsZero() {
			fmt.Fprintf(w, "  Date: %s", created.Local().Format("Jan 2, 2006 3:04 PM"))
		}
		fmt.Fprintln(w)
	}
}

var forgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Forget the remembered search term",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.Open(config.StatePath())
		if err != nil {
			return fmt.Errorf("opening state: %w", err)
		}
		defer db.Close()

		if err := db.Delete(store.SearchKey); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Search term forgotten.")
		return nil
	},
}
