// Package app wires the session and the task list into one application state.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"

	"github.com/balkashynov/taskflow/internal/auth"
	"github.com/balkashynov/taskflow/internal/db"
	"github.com/balkashynov/taskflow/internal/models"
	"github.com/balkashynov/taskflow/internal/tasks"
)

// Options configures an App. Zero values get defaults.
type Options struct {
	Logger     *logrus.Entry
	Now        func() time.Time
	Hasher     *auth.PasswordHasher
	LoginDelay time.Duration
	Locale     language.Tag
	StrictWeek bool
	NewTaskID  func() string
	NewUserID  func() string
}

// App owns the session and the task list of the signed-in user and keeps
// them consistent: signing in loads the user's tasks, signing out drops them.
type App struct {
	Session *auth.Session
	Tasks   *tasks.Store

	kv  db.Store
	log *logrus.Entry
}

// New builds an App on kv and restores the persisted session.
func New(ctx context.Context, kv db.Store, opts Options) (*App, error) {
	log := opts.Logger
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	store, err := tasks.NewStore(kv, tasks.Options{
		Logger:     log,
		Now:        opts.Now,
		NewID:      opts.NewTaskID,
		Locale:     opts.Locale,
		StrictWeek: opts.StrictWeek,
	})
	if err != nil {
		return nil, err
	}

	a := &App{
		Session: auth.NewSession(kv, auth.Options{
			Logger: log,
			Now:    opts.Now,
			NewID:  opts.NewUserID,
			Hasher: opts.Hasher,
			Delay:  opts.LoginDelay,
		}),
		Tasks: store,
		kv:    kv,
		log:   log,
	}

	if err := a.Session.Restore(ctx); err != nil {
		return nil, err
	}
	if user, ok := a.Session.Current(); ok {
		if err := a.Tasks.Load(ctx, user.ID); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Login signs in and loads the user's tasks
func (a *App) Login(ctx context.Context, email, password string) (models.User, error) {
	user, err := a.Session.Login(ctx, email, password)
	if err != nil {
		return models.User{}, err
	}
	if err := a.Tasks.Load(ctx, user.ID); err != nil {
		return models.User{}, a.abandonSignIn(ctx, err)
	}
	return user, nil
}

// Register creates an account, signs it in and loads its (empty) task list
func (a *App) Register(ctx context.Context, name, email, password string) (models.User, error) {
	user, err := a.Session.Register(ctx, name, email, password)
	if err != nil {
		return models.User{}, err
	}
	if err := a.Tasks.Load(ctx, user.ID); err != nil {
		return models.User{}, a.abandonSignIn(ctx, err)
	}
	return user, nil
}

// abandonSignIn signs out again after the task list failed to load, so a
// signed-in session always has its tasks. A registered account is kept.
func (a *App) abandonSignIn(ctx context.Context, err error) error {
	a.Tasks.Reset()
	if logoutErr := a.Session.Logout(ctx); logoutErr != nil {
		return errors.Join(err, logoutErr)
	}
	return err
}

// Logout signs out and clears the in-memory task list
func (a *App) Logout(ctx context.Context) error {
	if err := a.Session.Logout(ctx); err != nil {
		return err
	}
	a.Tasks.Reset()
	return nil
}

// RequireUser returns the signed-in user or auth.ErrNotAuthenticated
func (a *App) RequireUser() (models.User, error) {
	user, ok := a.Session.Current()
	if !ok {
		return models.User{}, auth.ErrNotAuthenticated
	}
	return user, nil
}

// Close releases the underlying store
func (a *App) Close() error {
	if err := a.kv.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	return nil
}
