package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/balkashynov/taskflow/internal/app"
	"github.com/balkashynov/taskflow/internal/auth"
	"github.com/balkashynov/taskflow/internal/config"
	"github.com/balkashynov/taskflow/internal/db"
	"github.com/balkashynov/taskflow/internal/logger"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// skipAppAnnotation marks commands that run without opening the store
const skipAppAnnotation = "taskflow/skip-app"

// env carries the state shared by every command of one invocation
type env struct {
	configDir string
	backend   string

	cfg *config.Config
	log *logrus.Entry
	app *app.App

	closers []io.Closer

	// overridable in tests
	now    func() time.Time
	hasher *auth.PasswordHasher
}

// newRootCmd builds the command tree
func newRootCmd(e *env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "taskflow",
		Short: "A personal task manager for the terminal",
		Long: `taskflow is a command-line task manager with accounts, categories, priorities and due dates.
Filter, sort and track your tasks from the terminal, or open the interactive dashboard with 'taskflow ls -i'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipAppAnnotation] == "true" {
				return nil
			}
			return e.open(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return e.close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&e.configDir, "config-dir", "", "Configuration directory (default $XDG_CONFIG_HOME/taskflow)")
	rootCmd.PersistentFlags().StringVar(&e.backend, "backend", "", "Storage backend: sqlite, redis or memory")

	// Add subcommands here
	rootCmd.AddCommand(newRegisterCmd(e))
	rootCmd.AddCommand(newLoginCmd(e))
	rootCmd.AddCommand(newLogoutCmd(e))
	rootCmd.AddCommand(newWhoamiCmd(e))
	rootCmd.AddCommand(newAvatarCmd(e))
	rootCmd.AddCommand(newAddCmd(e))
	rootCmd.AddCommand(newEditCmd(e))
	rootCmd.AddCommand(newRmCmd(e))
	rootCmd.AddCommand(newToggleCmd(e))
	rootCmd.AddCommand(newListCmd(e))
	rootCmd.AddCommand(newSearchCmd(e))
	rootCmd.AddCommand(newStatsCmd(e))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.SetHelpCommand(newHelpCmd())

	return rootCmd
}

// open loads configuration, sets up logging and restores the app state
func (e *env) open(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(e.configDir)
	if err != nil {
		return err
	}
	if e.backend != "" {
		cfg.Backend = e.backend
	}
	e.cfg = cfg

	log, logCloser, err := logger.Setup(cfg)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	e.closers = append(e.closers, logCloser)
	e.log = log

	store, err := db.Open(ctx, db.Options{
		Backend:     cfg.Backend,
		SQLitePath:  cfg.DBPath,
		RedisAddr:   cfg.RedisAddr,
		RedisPrefix: cfg.RedisPrefix,
	})
	if err != nil {
		return err
	}
	log.WithField("backend", cfg.Backend).Debug("store opened")

	application, err := app.New(ctx, store, app.Options{
		Logger:     log,
		Now:        e.now,
		Hasher:     e.hasher,
		LoginDelay: cfg.LoginDelay,
		Locale:     cfg.Locale,
		StrictWeek: cfg.StrictWeek,
	})
	if err != nil {
		store.Close()
		return err
	}
	e.app = application
	e.closers = append(e.closers, application)
	return nil
}

// close releases everything open opened, in reverse order
func (e *env) close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	e.app = nil
	return errors.Join(errs...)
}

// clock returns the current time of this invocation
func (e *env) clock() time.Time {
	if e.now != nil {
		return e.now()
	}
	return time.Now()
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	e := &env{}
	err := newRootCmd(e).ExecuteContext(context.Background())
	if closeErr := e.close(); err == nil {
		err = closeErr
	}
	return err
}
