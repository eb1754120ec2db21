package account

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

var (
	// ErrUserExists is returned when the email or username is already taken.
	ErrUserExists = errors.New("email or username already exists")

	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
)

// User is a stored account record. The password hash never leaves this
// package through the HTTP handlers.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
	Age          *int   `json:"age,omitempty"`
	Gender       string `json:"gender,omitempty"`
	CreatedAt    int64  `json:"createdAt"`
}

// Store persists accounts in BadgerDB. Records are keyed by email; a
// secondary key reserves the username so both stay unique.
type Store struct {
	db *badger.DB
}

func userKey(email string) []byte    { return []byte("user:" + email) }
func usernameKey(name string) []byte { return []byte("username:" + name) }

// Open opens (or creates) the account database at the given path.
func Open(path string) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("opening account db: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a throwaway in-memory store, used by tests.
func OpenInMemory() (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("opening in-memory account db: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Register persists a new user and returns the generated id. It fails with
// ErrUserExists when either the email or the username is already taken.
func (s *Store) Register(email, username, passwordHash string, age *int, gender string) (string, error) {
	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		Age:          age,
		Gender:       gender,
		CreatedAt:    time.Now().Unix(),
	}

	data, err := json.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("marshaling user: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(userKey(email)); err == nil {
			return ErrUserExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if _, err := txn.Get(usernameKey(username)); err == nil {
			return ErrUserExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		if err := txn.Set(userKey(email), data); err != nil {
			return err
		}
		return txn.Set(usernameKey(username), []byte(email))
	})
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// FindByEmail retrieves a stored user record.
func (s *Store) FindByEmail(email string) (User, error) {
	var user User

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(email))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}
