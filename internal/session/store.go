package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/James9b/fake-api-ecommerce/internal/domain"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	LoggedInKey = "isLoggedIn"
	UserKey     = "user"

	loggedInSentinel = "true"

	validUsername = "user"
	// bcrypt, cost 10.
	validPasswordHash = "$2a$10$VnjtUbFojVLtp9mSTkpQ7uXMHG7N.td.rA1Q7..Lh.UfY.S6TfkTG"

	InvalidCredentialsMessage = "Invalid username or password"
)

// Store is the session of one browser tab: an in-memory login flag and user, mirrored to
// tab-scoped storage after every change.
type Store struct {
	mu       sync.RWMutex
	storage  domain.SessionStorage
	loggedIn bool
	user     *domain.User
	log      *logrus.Logger
}

// NewStore restores a session from storage. Anything but the exact login sentinel means logged out.
func NewStore(ctx context.Context, storage domain.SessionStorage, logger *logrus.Logger) (*Store, error) {
	s := &Store{storage: storage, log: logger}

	flag, ok, err := storage.GetItem(ctx, LoggedInKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read login flag: %w", err)
	}
	s.loggedIn = ok && flag == loggedInSentinel

	raw, ok, err := storage.GetItem(ctx, UserKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read user record: %w", err)
	}
	if ok && raw != "" {
		var u domain.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			logger.Warnf("Session: Ignoring unreadable user record: %v", err)
		} else {
			s.user = &u
		}
	}
	return s, nil
}

// Login checks the credential pair. A wrong pair is reported in the result, not as an error;
// the error is only for storage failures.
func (s *Store) Login(ctx context.Context, username, password string) (domain.LoginResult, error) {
	if !credentialsValid(username, password) {
		s.log.Warnf("Session: Login rejected for username %q", username)
		return domain.LoginResult{Success: false, Error: InvalidCredentialsMessage}, nil
	}

	s.mu.Lock()
	s.loggedIn = true
	s.user = &domain.User{Username: username}
	s.mu.Unlock()

	if err := s.persist(ctx); err != nil {
		return domain.LoginResult{}, err
	}
	s.log.Infof("Session: User %s logged in", username)
	return domain.LoginResult{Success: true}, nil
}

func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.loggedIn = false
	s.user = nil
	s.mu.Unlock()

	if err := s.storage.RemoveItem(ctx, LoggedInKey); err != nil {
		return fmt.Errorf("failed to clear login flag: %w", err)
	}
	if err := s.storage.RemoveItem(ctx, UserKey); err != nil {
		return fmt.Errorf("failed to clear user record: %w", err)
	}
	s.log.Info("Session: Logged out")
	return nil
}

func (s *Store) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedIn
}

// User returns a copy of the current user, nil when there is none.
func (s *Store) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) persist(ctx context.Context) error {
	s.mu.RLock()
	loggedIn, user := s.loggedIn, s.user
	s.mu.RUnlock()

	if err := s.storage.SetItem(ctx, LoggedInKey, fmt.Sprintf("%t", loggedIn)); err != nil {
		return fmt.Errorf("failed to store login flag: %w", err)
	}
	if user == nil {
		if err := s.storage.RemoveItem(ctx, UserKey); err != nil {
			return fmt.Errorf("failed to clear user record: %w", err)
		}
		return nil
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user record: %w", err)
	}
	if err := s.storage.SetItem(ctx, UserKey, string(raw)); err != nil {
		return fmt.Errorf("failed to store user record: %w", err)
	}
	return nil
}

func credentialsValid(username, password string) bool {
	if username != validUsername {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(validPasswordHash), []byte(password)) == nil
}
