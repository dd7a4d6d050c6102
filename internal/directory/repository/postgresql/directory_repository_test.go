package postgresql

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	directoryDomain "github.com/allisson/idcore/internal/directory/domain"
)

func TestPostgreSQLDirectoryRepository_GetApplicationByClientID(t *testing.T) {
	ctx := context.Background()
	appID := uuid.Must(uuid.NewV7())
	orgID := uuid.Must(uuid.NewV7())
	createdAt := time.Now().UTC()

	columns := []string{
		"id", "organization_id", "client_id", "name", "auth_method", "require_pkce", "jwks_url",
		"access_token_ttl_seconds", "refresh_token_ttl_seconds", "max_transit_time_seconds", "created_at",
	}

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(regexp.QuoteMeta("FROM applications WHERE client_id = $1")).
			WithArgs("client-1").
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				appID.String(), orgID.String(), "client-1", "App", "private_key_jwt", false,
				"https://app.example.com/jwks.json", 300, 0, 30, createdAt,
			))

		app, err := NewPostgreSQLDirectoryRepository(db).GetApplicationByClientID(ctx, "client-1")
		require.NoError(t, err)
		assert.Equal(t, appID, app.ID)
		assert.Equal(t, orgID, app.OrganizationID)
		assert.Equal(t, directoryDomain.AuthMethodPrivateKeyJWT, app.AuthMethod)
		assert.Equal(t, "https://app.example.com/jwks.json", app.JWKSURL)
		assert.Equal(t, 5*time.Minute, app.TokenSettings.AccessTokenTTL)
		assert.Equal(t, time.Duration(0), app.TokenSettings.RefreshTokenTTL)
		assert.Equal(t, 30*time.Second, app.TokenSettings.MaxTransitTime)
	})

	t.Run("Error_UnknownAuthMethod", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(regexp.QuoteMeta("FROM applications WHERE client_id = $1")).
			WithArgs("client-1").
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				appID.String(), orgID.String(), "client-1", "App", "client_secret_basic", false,
				nil, 0, 0, 0, createdAt,
			))

		_, err = NewPostgreSQLDirectoryRepository(db).GetApplicationByClientID(ctx, "client-1")
		assert.ErrorIs(t, err, directoryDomain.ErrUnknownAuthMethod)
	})

	t.Run("Error_PlainHTTPKeySet", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(regexp.QuoteMeta("FROM applications WHERE client_id = $1")).
			WithArgs("client-1").
			WillReturnRows(sqlmock.NewRows(columns).AddRow(
				appID.String(), orgID.String(), "client-1", "App", "private_key_jwt", false,
				"http://app.example.com/jwks.json", 0, 0, 0, createdAt,
			))

		_, err = NewPostgreSQLDirectoryRepository(db).GetApplicationByClientID(ctx, "client-1")
		assert.ErrorIs(t, err, directoryDomain.ErrInvalidJWKSURL)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(regexp.QuoteMeta("FROM applications")).WillReturnRows(sqlmock.NewRows(columns))

		_, err = NewPostgreSQLDirectoryRepository(db).GetApplicationByClientID(ctx, "nope")
		assert.ErrorIs(t, err, directoryDomain.ErrApplicationNotFound)
	})
}

func TestPostgreSQLDirectoryRepository_GetUser(t *testing.T) {
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV7())

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "group_id", "row_id", "name", "phone_number", "email", "linked_login_id", "metadata",
		}).AddRow(userID.String(), "g-1", 42, "Ada", "+15550100", "ada@example.com", "login-7",
			[]byte(`{"tier":"gold"}`)))

	user, err := NewPostgreSQLDirectoryRepository(db).GetUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "g-1", user.GroupID)
	assert.Equal(t, int64(42), user.RowID)
	assert.Equal(t, "gold", user.Metadata["tier"])
}

func TestPostgreSQLDirectoryRepository_ListPermissions(t *testing.T) {
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV7())

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("FROM user_permissions")).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"resource", "verb"}).
			AddRow("apps", "read").
			AddRow("apps", "write"))

	perms, err := NewPostgreSQLDirectoryRepository(db).ListPermissions(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []directoryDomain.Permission{{Resource: "apps", Verb: "read"}, {Resource: "apps", Verb: "write"}}, perms)
}

func TestPostgreSQLDirectoryRepository_GetOrganization_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("FROM organizations")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "guid", "name"}))

	_, err = NewPostgreSQLDirectoryRepository(db).GetOrganization(context.Background(), uuid.New())
	assert.ErrorIs(t, err, directoryDomain.ErrOrganizationNotFound)
}
