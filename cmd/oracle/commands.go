package main

import (
	"fmt"
	"io"

	"github.com/samvad-hq/bacon-oracle/internal/app"
	"github.com/samvad-hq/bacon-oracle/internal/config"
	"github.com/samvad-hq/bacon-oracle/internal/logger"
	"github.com/samvad-hq/bacon-oracle/pkg/oracle"
	"github.com/spf13/cobra"
)

// cliEnv carries what every subcommand needs once the root pre-run has loaded it.
type cliEnv struct {
	cfg *config.Config
	log logger.Logger
	out io.Writer

	loadConfig func() (*config.Config, error)
	initLogger func(*config.Config) (logger.Logger, error)
}

func (e *cliEnv) setup() error {
	load := e.loadConfig
	if load == nil {
		load = config.Load
	}
	cfg, err := load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	initLog := e.initLogger
	if initLog == nil {
		initLog = logger.Init
	}
	log, err := initLog(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	e.cfg, e.log = cfg, log
	log.DebugObj("config loaded", "config", cfg.Redacted())
	return nil
}

func (e *cliEnv) close() {
	_ = logger.Close()
}

func newRootCmd(env *cliEnv) *cobra.Command {
	root := &cobra.Command{
		Use:           "oracle",
		Short:         "Find how two actors are connected through the movies they appeared in",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.setup()
		},
	}

	root.AddCommand(newFindCmd(env))
	root.AddCommand(newBatchCmd(env))
	root.AddCommand(newHistoryCmd(env))
	return root
}

func newFindCmd(env *cliEnv) *cobra.Command {
	var from, to string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "find",
		Short: "Look up the connection between two people",
		Long: "Look up the connection between two people. A side left empty falls back " +
			"to the anchor name (Kevin Bacon unless ORACLE_ANCHOR_NAME is set).",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun {
				q := oracle.NewQueryWithAnchor(env.cfg.AnchorName)
				q.SetFrom(from)
				q.SetTo(to)
				conn := oracle.NewConnector(env.cfg.APIKey, nil, oracle.WithBaseURL(env.cfg.BaseURL))
				fmt.Fprintln(env.out, conn.URI(q))
				return nil
			}

			cfg := *env.cfg
			cfg.QueriesFile = ""

			b, err := app.NewBatcher(cmd.Context(), &cfg, env.log, nil)
			if err != nil {
				return err
			}
			defer b.Close(cmd.Context())

			resp, err := b.Lookup(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			renderResponse(env.out, resp)

			switch r := resp.(type) {
			case *oracle.ServiceError:
				return fmt.Errorf("service error: %s", r.Message)
			case *oracle.Unknown:
				return fmt.Errorf("unrecognised response from service")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first person")
	cmd.Flags().StringVar(&to, "to", "", "second person")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the request URI instead of sending it")
	return cmd
}

func newBatchCmd(env *cliEnv) *cobra.Command {
	var queriesFile string
	var once bool

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run every query in the queries file, publishing results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := *env.cfg
			if queriesFile != "" {
				cfg.QueriesFile = queriesFile
			}
			if once {
				cfg.BatchInterval = 0
			}

			b, err := app.NewBatcher(cmd.Context(), &cfg, env.log, nil)
			if err != nil {
				return err
			}
			defer b.Close(cmd.Context())

			if err := b.Run(cmd.Context()); err != nil {
				return fmt.Errorf("batch run: %w", err)
			}
			return cmd.Context().Err()
		},
	}

	cmd.Flags().StringVar(&queriesFile, "queries", "", "queries file (overrides ORACLE_QUERIES_FILE)")
	cmd.Flags().BoolVar(&once, "once", false, "run a single pass even when batch_interval is set")
	return cmd
}

func newHistoryCmd(env *cliEnv) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the most recent lookups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}
			store, err := app.OpenHistory(env.cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(limit)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			renderHistory(env.out, entries)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries to show")
	return cmd
}
