// Package auth tracks the signed-in identity and the stored credential table.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/balkashynov/taskflow/internal/db"
	"github.com/balkashynov/taskflow/internal/models"
)

// DefaultAvatar is assigned to every new account
const DefaultAvatar = "https://images.pexels.com/photos/771742/pexels-photo-771742.jpeg?auto=compress&cs=tinysrgb&w=100&h=100&fit=crop"

// State is the lifecycle state of a Session
type State int

const (
	StateLoading State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options configures a Session. Zero values get defaults.
type Options struct {
	Logger *logrus.Entry
	Now    func() time.Time
	NewID  func() string
	Hasher *PasswordHasher

	// Delay is waited before every login and registration attempt
	Delay time.Duration
}

// Session holds the current identity. It is safe for concurrent use.
type Session struct {
	kv     db.Store
	log    *logrus.Entry
	now    func() time.Time
	newID  func() string
	hasher *PasswordHasher
	delay  time.Duration

	mu    sync.RWMutex
	state State
	user  *models.User

	// attempt is bumped by every sign-in attempt and by Logout; only the
	// latest attempt may commit or roll back
	attempt uint64
}

// NewSession creates a Session in the loading state; call Restore next.
func NewSession(kv db.Store, opts Options) *Session {
	s := &Session{
		kv:     kv,
		log:    opts.Logger,
		now:    opts.Now,
		newID:  opts.NewID,
		hasher: opts.Hasher,
		delay:  opts.Delay,
		state:  StateLoading,
	}
	if s.log == nil {
		s.log = logrus.NewEntry(logrus.StandardLogger())
	}
	s.log = s.log.WithField("component", "auth")
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = func() string { return uuid.New().String() }
	}
	if s.hasher == nil {
		s.hasher = NewPasswordHasher(DefaultBcryptCost)
	}
	return s
}

// Restore reads the persisted identity.
// A malformed identity is removed and the session becomes anonymous.
func (s *Session) Restore(ctx context.Context) error {
	user, found, err := db.Load[models.User](ctx, s.kv, db.UserKey)
	if err != nil && !errors.Is(err, db.ErrMalformedStoredData) {
		s.setAnonymous()
		return fmt.Errorf("failed to restore session: %w", err)
	}

	if err != nil {
		s.log.WithError(err).Warn("removing malformed stored identity")
		if delErr := s.kv.Delete(ctx, db.UserKey); delErr != nil {
			s.log.WithError(delErr).Error("failed to remove malformed identity")
		}
		found = false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !found {
		s.state = StateAnonymous
		s.user = nil
		return nil
	}
	s.state = StateAuthenticated
	s.user = &user
	s.log.WithField("user_id", user.ID).Debug("session restored")
	return nil
}

// Login signs in with an exact email and password match.
// On failure the identity is left as it is and ErrInvalidCredentials is returned.
func (s *Session) Login(ctx context.Context, email, password string) (models.User, error) {
	attempt := s.begin()

	user, err := s.login(ctx, attempt, strings.TrimSpace(email), password)
	if err != nil {
		s.rollback(attempt)
		return models.User{}, err
	}
	s.log.WithField("user_id", user.ID).Info("user logged in")
	return user, nil
}

func (s *Session) login(ctx context.Context, attempt uint64, email, password string) (models.User, error) {
	if err := s.wait(ctx); err != nil {
		return models.User{}, err
	}

	creds, err := s.credentials(ctx)
	if err != nil && !errors.Is(err, db.ErrMalformedStoredData) {
		return models.User{}, err
	}
	if err != nil {
		s.log.WithError(err).Warn("treating malformed credential table as empty")
		creds = nil
	}

	idx := slices.IndexFunc(creds, func(c models.Credential) bool { return c.Email == email })
	if idx < 0 || !s.hasher.Verify(password, creds[idx].Password) {
		return models.User{}, ErrInvalidCredentials
	}

	user := creds[idx].User()
	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	err = s.commit(attempt, user, func() error {
		if err := db.Save(ctx, s.kv, db.UserKey, user); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Register creates an account and signs it in.
// The credential table and the identity are written in one atomic step.
func (s *Session) Register(ctx context.Context, name, email, password string) (models.User, error) {
	attempt := s.begin()

	user, err := s.register(ctx, attempt, strings.TrimSpace(name), strings.TrimSpace(email), password)
	if err != nil {
		s.rollback(attempt)
		return models.User{}, err
	}
	s.log.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

func (s *Session) register(ctx context.Context, attempt uint64, name, email, password string) (models.User, error) {
	if err := s.wait(ctx); err != nil {
		return models.User{}, err
	}
	if err := validateRegistration(name, email, password); err != nil {
		return models.User{}, err
	}

	creds, err := s.credentials(ctx)
	if err != nil {
		return models.User{}, err
	}
	if slices.ContainsFunc(creds, func(c models.Credential) bool { return c.Email == email }) {
		return models.User{}, ErrUserExists
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	cred := models.Credential{
		ID:       s.newID(),
		Name:     name,
		Email:    email,
		Password: hash,
		Avatar:   DefaultAvatar,
		JoinedAt: s.now().UTC(),
	}
	if err := models.Validate(cred); err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	user := cred.User()

	if err := ctx.Err(); err != nil {
		return models.User{}, err
	}
	err = s.commit(attempt, user, func() error {
		return s.saveAccount(ctx, append(creds, cred), user)
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Logout removes the persisted identity.
// Sign-in attempts still in flight are superseded and cannot commit.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempt++

	if err := s.kv.Delete(ctx, db.UserKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	if s.user != nil {
		s.log.WithField("user_id", s.user.ID).Info("user logged out")
	}
	s.state = StateAnonymous
	s.user = nil
	return nil
}

// UpdateAvatar changes the avatar of the signed-in user
func (s *Session) UpdateAvatar(ctx context.Context, avatar string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAuthenticated || s.user == nil {
		return models.User{}, ErrNotAuthenticated
	}

	user := *s.user
	user.Avatar = strings.TrimSpace(avatar)

	creds, err := s.credentials(ctx)
	if err != nil && !errors.Is(err, db.ErrMalformedStoredData) {
		return models.User{}, err
	}
	if err != nil {
		s.log.WithError(err).Warn("credential table is malformed, updating identity only")
		if err := db.Save(ctx, s.kv, db.UserKey, user); err != nil {
			return models.User{}, fmt.Errorf("failed to save session: %w", err)
		}
	} else {
		if idx := slices.IndexFunc(creds, func(c models.Credential) bool { return c.ID == user.ID }); idx >= 0 {
			creds[idx].Avatar = user.Avatar
		}
		if err := s.saveAccount(ctx, creds, user); err != nil {
			return models.User{}, err
		}
	}

	s.user = &user
	return user, nil
}

// Current returns the signed-in user
func (s *Session) Current() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

// State returns the lifecycle state
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsAuthenticated reports whether a user is signed in
func (s *Session) IsAuthenticated() bool {
	return s.State() == StateAuthenticated
}

// begin enters the loading state and returns the attempt number.
// The current identity is kept while loading.
func (s *Session) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempt++
	s.state = StateLoading
	return s.attempt
}

// rollback leaves the loading state of a failed attempt. The state follows
// the identity as it is now, which a concurrent Logout may have cleared.
func (s *Session) rollback(attempt uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attempt != attempt || s.state != StateLoading {
		return
	}
	s.state = s.settledState()
}

// commit runs persist and signs user in, unless a later attempt or a
// Logout superseded this one
func (s *Session) commit(attempt uint64, user models.User, persist func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attempt != attempt {
		return ErrSuperseded
	}
	if err := persist(); err != nil {
		return err
	}
	s.state = StateAuthenticated
	s.user = &user
	return nil
}

func (s *Session) settledState() State {
	if s.user != nil {
		return StateAuthenticated
	}
	return StateAnonymous
}

func (s *Session) setAnonymous() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateAnonymous
	s.user = nil
}

// wait sleeps for the configured delay unless ctx ends first
func (s *Session) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// credentials loads the credential table; absent means empty
func (s *Session) credentials(ctx context.Context) ([]models.Credential, error) {
	creds, _, err := db.Load[[]models.Credential](ctx, s.kv, db.UsersKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	return creds, nil
}

func (s *Session) saveAccount(ctx context.Context, creds []models.Credential, user models.User) error {
	credsData, err := db.Encode(creds)
	if err != nil {
		return err
	}
	userData, err := db.Encode(user)
	if err != nil {
		return err
	}
	err = s.kv.SetMany(ctx, map[string][]byte{
		db.UsersKey: credsData,
		db.UserKey:  userData,
	})
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

func validateRegistration(name, email, password string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, maxPasswordBytes)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email %q", ErrInvalidInput, email)
	}
	return nil
}
