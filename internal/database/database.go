package database

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/accounts-be/internal/models"
)

// DB is an in-memory user table. Contents do not survive a restart.
type DB struct {
	mu    sync.RWMutex
	users map[string]models.User
	now   func() time.Time
}

// New creates an empty in-memory database.
func New() *DB {
	return &DB{
		users: make(map[string]models.User),
		now:   time.Now,
	}
}

// CreateUser stores u under a freshly generated ID and returns the stored record.
// Any ID or timestamps set on u are ignored.
func (db *DB) CreateUser(_ context.Context, u models.User) (models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	now := db.now()
	u.ID = db.newID()
	u.CreatedAt = now
	u.UpdatedAt = now
	db.users[u.ID] = u
	return u, nil
}

// FindUserByID returns the user with the given ID, or nil if there is none.
func (db *DB) FindUserByID(_ context.Context, id string) (*models.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	u, ok := db.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// FindUserByEmail returns the user with exactly this email, or nil if there is none.
func (db *DB) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, u := range db.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

// UpdateUser merges the non-nil fields of ch onto the stored user and refreshes
// UpdatedAt. It returns nil if the user does not exist.
func (db *DB) UpdateUser(_ context.Context, id string, ch models.UserChanges) (*models.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	u, ok := db.users[id]
	if !ok {
		return nil, nil
	}
	if ch.Name != nil {
		u.Name = *ch.Name
	}
	if ch.Email != nil {
		u.Email = *ch.Email
	}
	if ch.PasswordHash != nil {
		u.PasswordHash = *ch.PasswordHash
	}

	// UpdatedAt must move forward even when the clock has not.
	now := db.now()
	if !now.After(u.UpdatedAt) {
		now = u.UpdatedAt.Add(time.Nanosecond)
	}
	u.UpdatedAt = now
	db.users[id] = u
	return &u, nil
}

// DeleteUser removes the user and reports whether it existed.
func (db *DB) DeleteUser(_ context.Context, id string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.users[id]; !ok {
		return false, nil
	}
	delete(db.users, id)
	return true, nil
}

// GetAllUsers returns every stored user in no particular order.
func (db *DB) GetAllUsers(_ context.Context) ([]models.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	users := make([]models.User, 0, len(db.users))
	for _, u := range db.users {
		users = append(users, u)
	}
	return users, nil
}

// CountUsers returns the number of stored users.
func (db *DB) CountUsers(_ context.Context) (int, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.users), nil
}

// newID must be called with mu held.
func (db *DB) newID() string {
	for {
		id := uuid.New().String()
		if _, taken := db.users[id]; !taken {
			return id
		}
	}
}
