package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/mcnijman/go-emailaddress"
	"golang.org/x/crypto/bcrypt"

	"github.com/cardkeep/cardkeep-be/internal/models"
)

// MinPasswordLength is the minimum accepted password length for registration.
const MinPasswordLength = 6

// UserServiceProvider defines the interface for user and session services.
type UserServiceProvider interface {
	Register(email, password string) (models.User, error)
	Authenticate(email, password string) (models.User, error)
	GetUserByID(id string) (models.User, error)
	GetUserBySession(userID, token string) (models.User, error)
	AddSession(session models.Session) error
	RemoveSession(userID, token string) error
	PruneExpiredSessions(now time.Time) (int64, error)
}

// UserService provides business logic for accounts and sessions.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// Register validates the credentials, hashes the password and persists a new
// user. A duplicate email surfaces as ErrDuplicateEmail, never as a raw
// constraint error.
func (s *UserService) Register(email, password string) (models.User, error) {
	email = strings.TrimSpace(email)
	if _, err := emailaddress.Parse(email); err != nil {
		return models.User{}, fmt.Errorf("%w: email is not valid", ErrValidation)
	}
	if len(password) < MinPasswordLength {
		return models.User{}, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, MinPasswordLength)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now(),
	}

	_, err = s.db.Exec("INSERT INTO users(id, email, password_hash) VALUES(?, ?, ?)", user.ID, user.Email, user.PasswordHash)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}

	user.PasswordHash = ""
	return user, nil
}

// Authenticate verifies a user's credentials. Every failure collapses into
// ErrInvalidCredentials.
func (s *UserService) Authenticate(email, password string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, email, password_hash, created_at FROM users WHERE email = ?", email)
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	user.PasswordHash = ""
	return user, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, email, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Email, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// GetUserBySession resolves a user only when the exact token string is still
// in that user's active session list. This is the revocation check: a
// logged-out token stops resolving even though its signature stays valid.
func (s *UserService) GetUserBySession(userID, token string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow(`
		SELECT u.id, u.email, u.created_at
		FROM users u
		JOIN sessions s ON s.user_id = u.id
		WHERE u.id = ? AND s.token = ?`, userID, token)
	err := row.Scan(&user.ID, &user.Email, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// AddSession appends a token to the user's active session list.
func (s *UserService) AddSession(session models.Session) error {
	_, err := s.db.Exec("INSERT INTO sessions(token, user_id, access, expires_at) VALUES(?, ?, ?, ?)",
		session.Token, session.UserID, session.Access, session.ExpiresAt.Unix())
	return err
}

// RemoveSession deletes exactly the given token from the user's session list.
// Removing an already-absent token is not an error.
func (s *UserService) RemoveSession(userID, token string) error {
	_, err := s.db.Exec("DELETE FROM sessions WHERE user_id = ? AND token = ?", userID, token)
	return err
}

// PruneExpiredSessions deletes sessions whose expiry has passed, returning
// the number of rows removed.
func (s *UserService) PruneExpiredSessions(now time.Time) (int64, error) {
	res, err := s.db.Exec("DELETE FROM sessions WHERE expires_at <= ?", now.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
