package postgresql

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sessionDomain "github.com/allisson/idcore/internal/session/domain"
)

func TestPostgreSQLAuthSessionRepository(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLAuthSessionRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()
	session := &sessionDomain.AuthSession{
		ID:            uuid.Must(uuid.NewV7()),
		ApplicationID: uuid.New(),
		SubjectID:     "user-1",
		Scopes:        []string{"openid", "email"},
		Status:        sessionDomain.SessionActive,
		Fingerprint:   []byte{1, 2},
		RedirectURI:   "https://app.example.com/cb",
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	t.Run("Create", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO auth_sessions")).
			WithArgs(session.ID, session.ApplicationID, "user-1", "openid email", "active", []byte{1, 2},
				"https://app.example.com/cb", "", now, now).
			WillReturnResult(sqlmock.NewResult(1, 1))
		assert.NoError(t, repo.Create(ctx, session))
	})

	t.Run("Get", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM auth_sessions WHERE id = $1")).
			WithArgs(session.ID).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "application_id", "subject_id", "scopes", "status", "fingerprint", "redirect_uri", "branding",
				"created_at", "updated_at",
			}).AddRow(session.ID.String(), session.ApplicationID.String(), "user-1", "openid email", "active",
				[]byte{1, 2}, "https://app.example.com/cb", "", now, now))

		got, err := repo.Get(ctx, session.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"openid", "email"}, got.Scopes)
		assert.True(t, got.IsActive())
	})

	t.Run("Get_NotFound", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM auth_sessions")).WillReturnError(sql.ErrNoRows)
		_, err := repo.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, sessionDomain.ErrSessionNotFound)
	})

	t.Run("UpdateStatus", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("UPDATE auth_sessions SET status = $1")).
			WithArgs(sessionDomain.SessionInactive, now, session.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		assert.NoError(t, repo.UpdateStatus(ctx, session.ID, sessionDomain.SessionInactive, now))
	})

	t.Run("UpdateStatus_NotFound", func(t *testing.T) {
		id := uuid.New()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE auth_sessions")).
			WithArgs(sessionDomain.SessionInactive, now, id).
			WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.UpdateStatus(ctx, id, sessionDomain.SessionInactive, now), sessionDomain.ErrSessionNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLCookieRepository(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLCookieRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()
	cookie := &sessionDomain.SingleSignOnCookie{
		ID:             uuid.Must(uuid.NewV7()),
		SessionID:      uuid.New(),
		CiphertextHash: "hash",
		Ciphertext:     []byte("ct"),
		Key:            []byte("key"),
		CreatedAt:      now,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sso_cookies")).
		WithArgs(cookie.ID, cookie.SessionID, "hash", []byte("ct"), []byte("key"), now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Create(ctx, cookie))

	mock.ExpectQuery(regexp.QuoteMeta("FROM sso_cookies WHERE ciphertext_hash = $1")).
		WithArgs("hash").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "session_id", "ciphertext_hash", "ciphertext", "cookie_key", "created_at",
		}).AddRow(cookie.ID.String(), cookie.SessionID.String(), "hash", []byte("ct"), []byte("key"), now))

	got, err := repo.GetByHash(ctx, "hash")
	require.NoError(t, err)
	assert.Equal(t, cookie.SessionID, got.SessionID)
	assert.Equal(t, []byte("key"), got.Key)

	mock.ExpectQuery(regexp.QuoteMeta("FROM sso_cookies")).WithArgs("missing").WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByHash(ctx, "missing")
	assert.ErrorIs(t, err, sessionDomain.ErrCookieNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
