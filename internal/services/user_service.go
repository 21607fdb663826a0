package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/isdelr/accounts-be/internal/auth"
	"github.com/isdelr/accounts-be/internal/models"
	"github.com/isdelr/accounts-be/internal/validation"
	"github.com/rs/zerolog/log"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	CreateUser(ctx context.Context, in validation.UserInput) (models.SafeUser, error)
	GetUserByID(ctx context.Context, id string) (models.SafeUser, error)
	GetUserByEmail(ctx context.Context, email string) (models.SafeUser, error)
	UpdateUser(ctx context.Context, id string, patch models.UserPatch) (models.SafeUser, error)
	DeleteUser(ctx context.Context, id string) error
	GetAllUsers(ctx context.Context) ([]models.SafeUser, error)
	ValidateCredentials(ctx context.Context, email, password string) bool
	AuthenticateUser(ctx context.Context, email, password string) (models.SafeUser, error)
}

// UserStore is the persistence the user service depends on. Lookups of a
// missing user return nil without an error.
type UserStore interface {
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, ch models.UserChanges) (*models.User, error)
	DeleteUser(ctx context.Context, id string) (bool, error)
	GetAllUsers(ctx context.Context) ([]models.User, error)
}

// UserValidator checks registrations and patches.
type UserValidator interface {
	ValidateUser(in validation.UserInput) (models.NewUser, error)
	ValidatePatch(p models.UserPatch) (models.UserPatch, error)
}

// UserService provides business logic for user management.
type UserService struct {
	store     UserStore
	hasher    auth.Hasher
	validator UserValidator
	events    EventServiceProvider

	// writeMu makes the email uniqueness check and the write that depends on it atomic.
	writeMu sync.Mutex

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService creates a new UserService. events may be nil.
func NewUserService(store UserStore, hasher auth.Hasher, validator UserValidator, events EventServiceProvider) *UserService {
	return &UserService{
		store:     store,
		hasher:    hasher,
		validator: validator,
		events:    events,
	}
}

// CreateUser validates the registration, checks the email is free, hashes the
// password and stores the user.
func (s *UserService) CreateUser(ctx context.Context, in validation.UserInput) (models.SafeUser, error) {
	nu, err := s.validator.ValidateUser(in)
	if err != nil {
		return models.SafeUser{}, invalidInput(err)
	}

	// Reject duplicates before paying for the hash.
	if err := s.ensureEmailFree(ctx, nu.Email, ""); err != nil {
		return models.SafeUser{}, err
	}

	hash, err := s.hasher.Hash(nu.Password)
	if err != nil {
		return models.SafeUser{}, wrapError(err, KindInternal, "failed to hash password")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.ensureEmailFree(ctx, nu.Email, ""); err != nil {
		return models.SafeUser{}, err
	}
	created, err := s.store.CreateUser(ctx, models.User{
		Name:         nu.Name,
		Email:        nu.Email,
		PasswordHash: hash,
	})
	if err != nil {
		return models.SafeUser{}, wrapError(err, KindInternal, "failed to create user")
	}

	s.recordEvent("user.created", "info", fmt.Sprintf("User '%s' created.", created.Name), created.ID)
	return created.Safe(), nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.SafeUser, error) {
	if id == "" {
		return models.SafeUser{}, ErrMissingID
	}
	u, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		return models.SafeUser{}, wrapError(err, KindInternal, "failed to find user")
	}
	if u == nil {
		return models.SafeUser{}, ErrUserNotFound
	}
	return u.Safe(), nil
}

// GetUserByEmail retrieves a single user by their email.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (models.SafeUser, error) {
	if email == "" {
		return models.SafeUser{}, ErrMissingEmail
	}
	u, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return models.SafeUser{}, wrapError(err, KindInternal, "failed to find user")
	}
	if u == nil {
		return models.SafeUser{}, ErrUserNotFound
	}
	return u.Safe(), nil
}

// UpdateUser applies a partial update. Fields present in patch are validated
// with the registration rules; a new password is hashed before it is stored.
func (s *UserService) UpdateUser(ctx context.Context, id string, patch models.UserPatch) (models.SafeUser, error) {
	if id == "" {
		return models.SafeUser{}, ErrMissingID
	}
	patch, err := s.validator.ValidatePatch(patch)
	if err != nil {
		return models.SafeUser{}, invalidInput(err)
	}

	current, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		return models.SafeUser{}, wrapError(err, KindInternal, "failed to find user")
	}
	if current == nil {
		return models.SafeUser{}, ErrUserNotFound
	}
	if patch.Email != nil {
		if err := s.ensureEmailFree(ctx, *patch.Email, id); err != nil {
			return models.SafeUser{}, err
		}
	}

	changes := models.UserChanges{Name: patch.Name, Email: patch.Email}
	if patch.Password != nil {
		hash, err := s.hasher.Hash(*patch.Password)
		if err != nil {
			return models.SafeUser{}, wrapError(err, KindInternal, "failed to hash password")
		}
		changes.PasswordHash = &hash
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if patch.Email != nil {
		if err := s.ensureEmailFree(ctx, *patch.Email, id); err != nil {
			return models.SafeUser{}, err
		}
	}
	updated, err := s.store.UpdateUser(ctx, id, changes)
	if err != nil {
		return models.SafeUser{}, wrapError(err, KindInternal, "failed to update user")
	}
	if updated == nil {
		return models.SafeUser{}, ErrUserNotFound
	}

	s.recordEvent("user.updated", "info", fmt.Sprintf("User '%s' updated.", updated.Name), updated.ID)
	return updated.Safe(), nil
}

// DeleteUser permanently removes a user.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingID
	}

	s.writeMu.Lock()
	deleted, err := s.store.DeleteUser(ctx, id)
	s.writeMu.Unlock()

	if err != nil {
		return wrapError(err, KindInternal, "failed to delete user")
	}
	if !deleted {
		return ErrUserNotFound
	}

	s.recordEvent("user.deleted", "info", "User deleted.", id)
	return nil
}

// GetAllUsers returns every user. The result is never nil.
func (s *UserService) GetAllUsers(ctx context.Context) ([]models.SafeUser, error) {
	users, err := s.store.GetAllUsers(ctx)
	if err != nil {
		return nil, wrapError(err, KindInternal, "failed to list users")
	}
	safe := make([]models.SafeUser, 0, len(users))
	for _, u := range users {
		safe = append(safe, u.Safe())
	}
	return safe, nil
}

// ValidateCredentials reports whether password belongs to the user with email.
// Unknown users and wrong passwords are indistinguishable.
func (s *UserService) ValidateCredentials(ctx context.Context, email, password string) bool {
	_, err := s.AuthenticateUser(ctx, email, password)
	return err == nil
}

// AuthenticateUser verifies a user's credentials. Every failure, including an
// unknown email or a store error, is reported as ErrInvalidCredentials.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (models.SafeUser, error) {
	// Registration trims the email, so lookups must too.
	u, err := s.store.FindUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		log.Error().Err(err).Msg("Failed to look up user during authentication")
		return models.SafeUser{}, ErrInvalidCredentials
	}
	if u == nil {
		// Burn the same time a real comparison would take.
		if dummy := s.dummyPasswordHash(); dummy != "" {
			s.hasher.Verify(password, dummy)
		}
		s.recordEvent("user.login.fail", "warn", "Failed login attempt.", "")
		return models.SafeUser{}, ErrInvalidCredentials
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		s.recordEvent("user.login.fail", "warn", "Failed login attempt.", u.ID)
		return models.SafeUser{}, ErrInvalidCredentials
	}

	s.recordEvent("user.login.success", "info", fmt.Sprintf("User '%s' logged in.", u.Name), u.ID)
	return u.Safe(), nil
}

// ensureEmailFree fails with ErrEmailInUse if email belongs to a user other than exceptID.
func (s *UserService) ensureEmailFree(ctx context.Context, email, exceptID string) error {
	existing, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return wrapError(err, KindInternal, "failed to check email")
	}
	if existing != nil && existing.ID != exceptID {
		return ErrEmailInUse
	}
	return nil
}

func (s *UserService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("dummy-Passw0rd")
		if err != nil {
			log.Warn().Err(err).Msg("Could not prepare dummy password hash")
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

func (s *UserService) recordEvent(eventType, level, msg, userID string) {
	if s.events == nil {
		return
	}
	var uid *string
	if userID != "" {
		uid = &userID
	}
	if err := s.events.CreateEvent(eventType, level, msg, uid); err != nil {
		log.Warn().Err(err).Str("type", eventType).Msg("Failed to record event")
	}
}

func invalidInput(err error) *Error {
	return wrapError(err, KindInvalidInput, "Invalid data: "+err.Error())
}
