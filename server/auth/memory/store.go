package memory

import (
	"context"
	"crypto/subtle"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/dailyflo/dailyflo/server/auth"
)

// User represents a user in the memory store
type User struct {
	Username string
	Password string // In production this should be hashed
}

// Store implements an in-memory authentication store
type Store struct {
	mu     sync.RWMutex
	users  map[string]User // map[username]User
	logger *slog.Logger
}

// New creates a new in-memory authentication store
func New(opts ...Option) *Store {
	s := &Store{
		users:  make(map[string]User),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Option represents a configuration option for the Store
type Option func(*Store)

// WithLogger sets the logger for the store
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// AddUser adds a new user to the store
func (s *Store) AddUser(username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[username]; exists {
		s.logger.Warn("failed to add user: already exists",
			"username", username)
		return fmt.Errorf("user already exists: %s", username)
	}

	s.users[username] = User{
		Username: username,
		Password: password,
	}

	s.logger.Info("user added successfully",
		"username", username)

	return nil
}

// Authenticate implements auth.Authenticator
func (s *Store) Authenticate(ctx context.Context, creds auth.Credentials) (*auth.Principal, error) {
	s.mu.RLock()
	user, exists := s.users[creds.Username]
	s.mu.RUnlock()

	if !exists {
		s.logger.Info("authentication failed: user not found",
			"username", creds.Username)
		return nil, &auth.Error{
			Type:    auth.ErrInvalidCredentials,
			Message: "invalid username or password",
		}
	}

	// Constant-time comparison to prevent timing attacks
	if subtle.ConstantTimeCompare([]byte(user.Password), []byte(creds.Password)) != 1 {
		s.logger.Info("authentication failed: invalid password",
			"username", creds.Username)
		return nil, &auth.Error{
			Type:    auth.ErrInvalidCredentials,
			Message: "invalid username or password",
		}
	}

	s.logger.Debug("authentication successful",
		"username", creds.Username)

	return &auth.Principal{ID: creds.Username}, nil
}
