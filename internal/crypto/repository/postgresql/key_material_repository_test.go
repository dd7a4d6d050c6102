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

	cryptoDomain "github.com/allisson/idcore/internal/crypto/domain"
)

var keyMaterialColumns = []string{
	"id", "alias", "algorithm", "password_container", "main_container", "created_at", "rotated_at",
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestPostgreSQLKeyMaterialRepository_Create(t *testing.T) {
	ctx := context.Background()
	pair := &cryptoDomain.KeyMaterialPair{
		ID:                uuid.Must(uuid.NewV7()),
		Alias:             "0123456789abcdef0123456789abcdef",
		Algorithm:         cryptoDomain.AESGCM,
		PasswordContainer: []byte("pc"),
		MainContainer:     []byte("mc"),
		CreatedAt:         time.Now().UTC(),
	}

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO key_materials")).
			WithArgs(pair.ID, pair.Alias, pair.Algorithm, []byte("pc"), []byte("mc"), pair.CreatedAt, nil).
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := NewPostgreSQLKeyMaterialRepository(db).Create(ctx, pair)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_Exec", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO key_materials")).WillReturnError(assert.AnError)

		err := NewPostgreSQLKeyMaterialRepository(db).Create(ctx, pair)
		assert.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "failed to create key material")
	})
}

func TestPostgreSQLKeyMaterialRepository_Get(t *testing.T) {
	ctx := context.Background()
	id := uuid.Must(uuid.NewV7())
	createdAt := time.Now().UTC()

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		rotatedAt := createdAt.Add(time.Hour)
		mock.ExpectQuery(regexp.QuoteMeta("FROM key_materials")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(keyMaterialColumns).
				AddRow(id.String(), "alias", "chacha20-poly1305", []byte("pc"), []byte("mc"), createdAt, rotatedAt))

		pair, err := NewPostgreSQLKeyMaterialRepository(db).Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, pair.ID)
		assert.Equal(t, cryptoDomain.ChaCha20, pair.Algorithm)
		assert.Equal(t, cryptoDomain.PasswordContainer("pc"), pair.PasswordContainer)
		assert.Equal(t, cryptoDomain.MainContainer("mc"), pair.MainContainer)
		require.NotNil(t, pair.RotatedAt)
		assert.Equal(t, rotatedAt, *pair.RotatedAt)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM key_materials")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(keyMaterialColumns))

		pair, err := NewPostgreSQLKeyMaterialRepository(db).Get(ctx, id)
		assert.Nil(t, pair)
		assert.ErrorIs(t, err, cryptoDomain.ErrKeyMaterialNotFound)
	})
}

func TestPostgreSQLKeyMaterialRepository_ListPendingRotation(t *testing.T) {
	ctx := context.Background()
	startedAt := time.Now().UTC()

	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE rotated_at IS NULL OR rotated_at < $1")).
		WithArgs(startedAt, 50).
		WillReturnRows(sqlmock.NewRows(keyMaterialColumns).
			AddRow(uuid.Must(uuid.NewV7()).String(), "a1", "aes-gcm", []byte("pc1"), []byte("mc1"), startedAt, nil).
			AddRow(uuid.Must(uuid.NewV7()).String(), "a2", "aes-gcm", []byte("pc2"), []byte("mc2"), startedAt, nil))

	pairs, err := NewPostgreSQLKeyMaterialRepository(db).ListPendingRotation(ctx, startedAt, 50)
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	assert.Equal(t, "a1", pairs[0].Alias)
	assert.Nil(t, pairs[0].RotatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLKeyMaterialRepository_UpdatePasswordContainer(t *testing.T) {
	ctx := context.Background()
	id := uuid.Must(uuid.NewV7())
	rotatedAt := time.Now().UTC()

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE key_materials SET password_container = $1")).
			WithArgs([]byte("new-pc"), rotatedAt, id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := NewPostgreSQLKeyMaterialRepository(db).
			UpdatePasswordContainer(ctx, id, cryptoDomain.PasswordContainer("new-pc"), rotatedAt)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec(regexp.QuoteMeta("UPDATE key_materials")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewPostgreSQLKeyMaterialRepository(db).
			UpdatePasswordContainer(ctx, id, cryptoDomain.PasswordContainer("new-pc"), rotatedAt)
		assert.ErrorIs(t, err, cryptoDomain.ErrKeyMaterialNotFound)
	})
}
