// Package session owns the signed-in state of one client: who the current
// user is, whether they are authenticated, and the copy of that state kept
// in local storage across restarts.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"agri_advisor/internal/model"
	"agri_advisor/internal/service"

	"github.com/sirupsen/logrus"
)

// ErrUnsupportedLocale is returned by SetLanguage for locales other than en and ml.
var ErrUnsupportedLocale = errors.New("unsupported locale")

// Backend performs the credential checks for a Manager.
type Backend interface {
	IssuePasscode(ctx context.Context, phone string) error
	VerifyPasscode(ctx context.Context, phone, code string) (*model.User, string, error)
	Login(ctx context.Context, email, password string, role model.Role) (*model.User, string, error)
	SaveProfile(ctx context.Context, user *model.User) error
}

// TokenVerifier checks a persisted token and returns the user ID it was issued to.
type TokenVerifier interface {
	ValidateToken(token string) (string, error)
}

// State is the position of a session in its lifecycle.
type State int

const (
	StateUnauthenticated State = iota
	StateAwaitingPasscode
	StateAuthenticatedIncomplete
	StateAuthenticatedComplete
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAwaitingPasscode:
		return "awaiting-passcode"
	case StateAuthenticatedIncomplete:
		return "authenticated-incomplete"
	case StateAuthenticatedComplete:
		return "authenticated-complete"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Option configures a Manager.
type Option func(*Manager)

// WithDelay adds an artificial pause before each backend call.
func WithDelay(d time.Duration) Option {
	return func(m *Manager) { m.delay = d }
}

// WithTokenVerifier makes RestoreSession reject tokens the verifier refuses.
func WithTokenVerifier(v TokenVerifier) Option {
	return func(m *Manager) { m.verifier = v }
}

// WithLogger sets the logger used for storage failures.
func WithLogger(l logrus.FieldLogger) Option {
	return func(m *Manager) { m.log = l }
}

// Manager is the session of a single client. It is safe for concurrent use.
type Manager struct {
	backend  Backend
	store    Store
	verifier TokenVerifier
	delay    time.Duration
	log      logrus.FieldLogger

	mu            sync.Mutex
	user          *model.User
	authenticated bool
	awaiting      string // phone with a passcode in flight
	language      model.Locale
}

// NewManager returns an unauthenticated Manager. Call RestoreSession to
// pick up state persisted by a previous process.
func NewManager(backend Backend, store Store, opts ...Option) *Manager {
	m := &Manager{
		backend:  backend,
		store:    store,
		log:      logrus.WithField("component", "session"),
		language: model.DefaultLocale,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IssuePasscode asks the backend to send a one-time passcode to phone.
func (m *Manager) IssuePasscode(ctx context.Context, phone string) error {
	if err := m.wait(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.backend.IssuePasscode(ctx, phone); err != nil {
		return err
	}
	if !m.authenticated {
		m.awaiting = strings.TrimSpace(phone)
	}
	return nil
}

// VerifyPasscode signs in with the passcode sent to phone. On failure the
// session is left as it was.
func (m *Manager) VerifyPasscode(ctx context.Context, phone, code string) (*model.User, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user, token, err := m.backend.VerifyPasscode(ctx, phone, code)
	if err != nil {
		return nil, err
	}
	m.signIn(ctx, user, token)
	return user.Clone(), nil
}

// Login signs in with either phone+passcode or email+password+role credentials.
func (m *Manager) Login(ctx context.Context, creds model.Credentials) (*model.User, error) {
	switch creds.Type {
	case model.CredentialsPhone:
		if creds.Phone == "" || creds.Code == "" {
			return nil, service.ErrInvalidCredentials
		}
		return m.VerifyPasscode(ctx, creds.Phone, creds.Code)
	case model.CredentialsEmail:
		if creds.Email == "" || !creds.Role.Valid() {
			return nil, service.ErrInvalidCredentials
		}
	default:
		return nil, service.ErrInvalidCredentials
	}

	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	user, token, err := m.backend.Login(ctx, creds.Email, creds.Password, creds.Role)
	if err != nil {
		return nil, err
	}
	m.signIn(ctx, user, token)
	return user.Clone(), nil
}

// Logout forgets the current user here and in local storage.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clear(ctx)
}

// UpdateProfile merges update into the current user and persists the
// result. It does nothing when no one is signed in. The merged record is
// kept locally even if writing it back to the backend fails.
func (m *Manager) UpdateProfile(ctx context.Context, update model.ProfileUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		return nil
	}

	merged := m.user.Clone()
	update.Apply(merged)
	m.user = merged
	m.persistUser(ctx)

	if err := m.backend.SaveProfile(ctx, merged.Clone()); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// RestoreSession loads the session persisted by a previous process. Missing,
// partial or corrupt state is cleared and the session stays signed out.
func (m *Manager) RestoreSession(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.user, m.authenticated, m.awaiting = nil, false, ""

	if lang, ok, err := m.store.Get(ctx, KeyPreferredLanguage); err == nil && ok && model.Locale(lang).Valid() {
		m.language = model.Locale(lang)
	}

	user, ok := m.readPersisted(ctx)
	if !ok {
		m.clear(ctx)
		return
	}
	m.user = user
	m.authenticated = true
}

func (m *Manager) readPersisted(ctx context.Context) (*model.User, bool) {
	raw, hasUser, err := m.store.Get(ctx, KeyUser)
	if err != nil {
		m.log.WithError(err).Warn("failed to read persisted user")
		return nil, false
	}
	token, hasToken, err := m.store.Get(ctx, KeyAuthToken)
	if err != nil {
		m.log.WithError(err).Warn("failed to read persisted token")
		return nil, false
	}
	if !hasUser || !hasToken || raw == "" || token == "" {
		return nil, false
	}

	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		m.log.WithError(err).Warn("discarding corrupt persisted user")
		return nil, false
	}
	if user.ID == "" || !user.Role.Valid() {
		m.log.Warn("discarding persisted user without id or role")
		return nil, false
	}

	if m.verifier != nil {
		userID, err := m.verifier.ValidateToken(token)
		if err != nil || userID != user.ID {
			m.log.WithError(err).Warn("discarding session with invalid token")
			return nil, false
		}
	}
	return &user, true
}

// SetLanguage changes and persists the preferred UI language.
func (m *Manager) SetLanguage(ctx context.Context, locale model.Locale) error {
	if !locale.Valid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedLocale, locale)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.language = locale
	m.put(ctx, KeyPreferredLanguage, string(locale))
	return nil
}

// Language returns the preferred UI language.
func (m *Manager) Language() model.Locale {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.language
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (m *Manager) CurrentUser() *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user.Clone()
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authenticated
}

// NeedsProfileSetup reports whether a signed-in user must complete their
// profile before using profile-dependent features.
func (m *Manager) NeedsProfileSetup() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authenticated && m.user.NeedsProfileSetup()
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case m.authenticated && m.user.NeedsProfileSetup():
		return StateAuthenticatedIncomplete
	case m.authenticated:
		return StateAuthenticatedComplete
	case m.awaiting != "":
		return StateAwaitingPasscode
	}
	return StateUnauthenticated
}

// signIn must be called with mu held.
func (m *Manager) signIn(ctx context.Context, user *model.User, token string) {
	m.user = user.Clone()
	m.authenticated = true
	m.awaiting = ""
	m.persistUser(ctx)
	m.put(ctx, KeyAuthToken, token)
	m.log.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("signed in")
}

// clear must be called with mu held.
func (m *Manager) clear(ctx context.Context) {
	m.user = nil
	m.authenticated = false
	m.awaiting = ""
	m.remove(ctx, KeyUser)
	m.remove(ctx, KeyAuthToken)
}

func (m *Manager) persistUser(ctx context.Context) {
	buf, err := json.Marshal(m.user)
	if err != nil {
		m.log.WithError(err).Warn("failed to encode user")
		return
	}
	m.put(ctx, KeyUser, string(buf))
}

// Storage writes never fail the calling operation.
func (m *Manager) put(ctx context.Context, key, value string) {
	if err := m.store.Set(ctx, key, value); err != nil {
		m.log.WithError(err).WithField("key", key).Warn("failed to persist session state")
	}
}

func (m *Manager) remove(ctx context.Context, key string) {
	if err := m.store.Delete(ctx, key); err != nil {
		m.log.WithError(err).WithField("key", key).Warn("failed to remove session state")
	}
}

func (m *Manager) wait(ctx context.Context) error {
	if m.delay <= 0 {
		return nil
	}
	t := time.NewTimer(m.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
