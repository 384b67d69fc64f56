package repository

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/bookhaven/book-platform-api/services/auth-service/internal/model"
)

// In-memory repository implementations backing the test suites. They return
// the same mongo sentinel and duplicate-key errors as the real repositories
// so the use cases cannot tell them apart.

func duplicateKeyError() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
}

// InMemoryUserRepository is a mutex-guarded UserRepository.
type InMemoryUserRepository struct {
	mu    sync.Mutex
	users map[string]*model.User
}

// NewInMemoryUserRepository creates an empty in-memory credential store.
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{users: make(map[string]*model.User)}
}

func (r *InMemoryUserRepository) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return nil, duplicateKeyError()
		}
	}

	now := time.Now()
	user.ID = bson.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now

	clone := *user
	r.users[user.ID.Hex()] = &clone

	return user, nil
}

func (r *InMemoryUserRepository) GetUser(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	clone := *user
	return &clone, nil
}

func (r *InMemoryUserRepository) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (r *InMemoryUserRepository) GetUserByEmailOrUsername(
	_ context.Context,
	email, username string,
) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Email == email || user.Username == username {
			clone := *user
			return &clone, nil
		}
	}

	return nil, mongo.ErrNoDocuments
}

func (r *InMemoryUserRepository) UpdateLastLogin(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.users[id]; ok {
		user.LastLoginAt = time.Now()
	}

	return nil
}

// DeleteUser removes an account, simulating deletion by an admin elsewhere
// in the platform.
func (r *InMemoryUserRepository) DeleteUser(_ context.Context, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.users, id)
}

// InMemorySessionRepository is a mutex-guarded SessionRepository. TakeSession
// holds the lock across lookup and removal, matching the atomicity of the
// MongoDB FindOneAndDelete.
type InMemorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
}

// NewInMemorySessionRepository creates an empty in-memory registry.
func NewInMemorySessionRepository() *InMemorySessionRepository {
	return &InMemorySessionRepository{sessions: make(map[string]*model.Session)}
}

func (r *InMemorySessionRepository) PutSession(_ context.Context, session *model.Session) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[session.TokenHash]; ok {
		return nil, duplicateKeyError()
	}

	session.ID = bson.NewObjectID()
	session.CreatedAt = time.Now()

	clone := *session
	r.sessions[session.TokenHash] = &clone

	return session, nil
}

func (r *InMemorySessionRepository) TakeSession(_ context.Context, tokenHash string) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[tokenHash]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	delete(r.sessions, tokenHash)

	return session, nil
}

func (r *InMemorySessionRepository) DeleteSession(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, tokenHash)

	return nil
}

// Len reports the number of live registry entries.
func (r *InMemorySessionRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions)
}
