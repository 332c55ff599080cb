package services

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/cardkeep/cardkeep-be/internal/database"
	"github.com/cardkeep/cardkeep-be/internal/models"
)

func addSession(t *testing.T, svc *UserService, userID, token string, expiresAt time.Time) {
	t.Helper()

	require.NoError(t, svc.AddSession(models.Session{
		Token:     token,
		UserID:    userID,
		Access:    "auth",
		ExpiresAt: expiresAt,
	}))
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	// A second connection would see a different in-memory database.
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRegister(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	user, err := svc.Register("peter@example.com", "abc123!")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "peter@example.com", user.Email)
	assert.Empty(t, user.PasswordHash, "hash must never leave the service")

	// The stored hash must verify against the original password and must not
	// be the password itself.
	var storedHash string
	require.NoError(t, db.QueryRow("SELECT password_hash FROM users WHERE id = ?", user.ID).Scan(&storedHash))
	assert.NotEqual(t, "abc123!", storedHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(storedHash), []byte("abc123!")))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	_, err := svc.Register("peter@example.com", "abc123!")
	require.NoError(t, err)

	_, err = svc.Register("peter@example.com", "different-pass")
	require.ErrorIs(t, err, ErrDuplicateEmail)
	require.ErrorIs(t, err, ErrValidation)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM users WHERE email = ?", "peter@example.com").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestRegister_InvalidInput(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	_, err := svc.Register("not-an-email", "abc123!")
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Register("", "abc123!")
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Register("peter@example.com", "short")
	require.ErrorIs(t, err, ErrValidation)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestAuthenticate(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	registered, err := svc.Register("peter@example.com", "abc123!")
	require.NoError(t, err)

	user, err := svc.Authenticate("peter@example.com", "abc123!")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Empty(t, user.PasswordHash)

	// Wrong password and unknown email must be indistinguishable.
	_, err = svc.Authenticate("peter@example.com", "wrong-pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate("nobody@example.com", "abc123!")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSessions(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	user, err := svc.Register("peter@example.com", "abc123!")
	require.NoError(t, err)

	expiresAt := time.Now().Add(time.Hour)
	addSession(t, svc, user.ID, "token-one", expiresAt)
	addSession(t, svc, user.ID, "token-two", expiresAt)

	resolved, err := svc.GetUserBySession(user.ID, "token-one")
	require.NoError(t, err)
	assert.Equal(t, user.ID, resolved.ID)

	// Removing one token leaves the other valid.
	require.NoError(t, svc.RemoveSession(user.ID, "token-one"))

	_, err = svc.GetUserBySession(user.ID, "token-one")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetUserBySession(user.ID, "token-two")
	require.NoError(t, err)

	// Removing an already-absent token is still a success.
	require.NoError(t, svc.RemoveSession(user.ID, "token-one"))
}

func TestGetUserBySession_WrongUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	userOne, err := svc.Register("peter@example.com", "abc123!")
	require.NoError(t, err)
	userTwo, err := svc.Register("mario@example.com", "abc123!")
	require.NoError(t, err)

	addSession(t, svc, userOne.ID, "token-one", time.Now().Add(time.Hour))

	// A token belonging to one user must not resolve another.
	_, err = svc.GetUserBySession(userTwo.ID, "token-one")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPruneExpiredSessions(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	user, err := svc.Register("peter@example.com", "abc123!")
	require.NoError(t, err)

	addSession(t, svc, user.ID, "stale", time.Now().Add(-time.Minute))
	addSession(t, svc, user.ID, "live", time.Now().Add(time.Hour))

	removed, err := svc.PruneExpiredSessions(time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = svc.GetUserBySession(user.ID, "stale")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetUserBySession(user.ID, "live")
	require.NoError(t, err)
}
