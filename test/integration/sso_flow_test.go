// Package integration runs the trust core end to end against PostgreSQL and MySQL.
package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/idcore/internal/app"
	clientAuthDomain "github.com/allisson/idcore/internal/clientauth/domain"
	"github.com/allisson/idcore/internal/config"
	cryptoDomain "github.com/allisson/idcore/internal/crypto/domain"
	registryDomain "github.com/allisson/idcore/internal/registry/domain"
	sessionDomain "github.com/allisson/idcore/internal/session/domain"
	"github.com/allisson/idcore/internal/testutil"
)

const (
	testIssuer        = "https://id.example.com"
	testIntrospection = "https://id.example.com/v1/oauth/introspect"
	testCookieName    = "idcore_sso"
	testSignature     = "X-Body-Signature"
)

type flowContext struct {
	container     *app.Container
	server        *httptest.Server
	clientID      string
	applicationID uuid.UUID
	userID        uuid.UUID
	secret        string
}

func setupFlow(t *testing.T, driver string) *flowContext {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("MASTER_PASSWORD", "integration-master-password")

	var db *sql.DB
	var dsn string
	if driver == "postgres" {
		testutil.SkipIfNoPostgres(t)
		db = testutil.SetupPostgresDB(t)
		dsn = testutil.GetPostgresTestDSN()
	} else {
		testutil.SkipIfNoMySQL(t)
		db = testutil.SetupMySQLDB(t)
		dsn = testutil.GetMySQLTestDSN()
	}
	t.Cleanup(func() { testutil.TeardownDB(t, db) })

	orgID := testutil.CreateTestOrganization(t, db, driver, "acme")
	clientID := "acme-web-" + driver
	appID := testutil.CreateTestApplication(t, db, driver, orgID, clientID, "client_secret_jwt")
	userID := testutil.CreateTestUser(t, db, driver, "Jane Doe", "jane@example.com")

	cfg := &config.Config{
		DBDriver:                 driver,
		DBConnectionString:       dsn,
		DBMaxOpenConnections:     10,
		DBMaxIdleConnections:     5,
		DBConnMaxLifetime:        time.Hour,
		ServerHost:               "localhost",
		ServerPort:               8080,
		LogLevel:                 "error",
		EnvelopeAlgorithm:        string(cryptoDomain.AESGCM),
		EnvelopeScryptWorkFactor: 10,
		RotationBatchSize:        10,
		RotationConcurrency:      2,
		IssuerURL:                testIssuer,
		IntrospectionEndpointURL: testIntrospection,
		MaxActiveSecrets:         2,
		AssertionClockSkew:       30 * time.Second,
		JWKSFetchTimeout:         5 * time.Second,
		AccessTokenTTL:           time.Hour,
		RefreshTokenTTL:          24 * time.Hour,
		IDTokenTTL:               time.Hour,
		CodeTTL:                  time.Minute,
		MaxTransitTime:           5 * time.Minute,
		SSOCookieName:            testCookieName,
		SignatureHeader:          testSignature,
		SignatureWindow:          5 * time.Minute,
		SignatureMaxCandidates:   20,
		MetricsNamespace:         "idcore",
	}

	container := app.NewContainer(cfg)
	ctx := context.Background()

	credentials, err := container.CredentialUseCase()
	require.NoError(t, err)
	created, err := credentials.CreateSecret(ctx, &registryDomain.CreateSecretCredentialInput{
		ApplicationID: appID,
		Name:          "primary",
	})
	require.NoError(t, err)

	server, err := container.HTTPServer(ctx)
	require.NoError(t, err)
	ts := httptest.NewServer(server.GetHandler())

	t.Cleanup(func() {
		ts.Close()
		_ = container.Shutdown(context.Background())
	})

	return &flowContext{
		container:     container,
		server:        ts,
		clientID:      clientID,
		applicationID: appID,
		userID:        userID,
		secret:        created.PlainSecret,
	}
}

// openSession creates an active session for the test user and returns its cookie.
func (f *flowContext) openSession(t *testing.T) (uuid.UUID, string) {
	t.Helper()
	ctx := context.Background()

	sessions, err := f.container.SessionUseCase()
	require.NoError(t, err)

	session, err := sessions.CreateAuthSession(ctx, &sessionDomain.CreateAuthSessionInput{
		ApplicationID: f.applicationID,
		SubjectID:     f.userID.String(),
		Scopes:        []string{"openid", "profile", "email"},
		RedirectURI:   "https://app.example.com/callback",
	})
	require.NoError(t, err)

	cookie, err := sessions.GenerateCookie(ctx, session.ID)
	require.NoError(t, err)
	return session.ID, cookie.Value
}

func (f *flowContext) assertion(t *testing.T, secret string) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    f.clientID,
		Subject:   f.clientID,
		Audience:  jwt.ClaimStrings{testIntrospection},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		ID:        uuid.NewString(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func (f *flowContext) do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	client := &http.Client{Timeout: 10 * time.Second}
	//nolint:gosec // controlled test environment with localhost URLs
	resp, err := client.Do(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, body
}

func (f *flowContext) continueSession(t *testing.T, cookie string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, f.server.URL+"/v1/sso/continue", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: cookie})
	return f.do(t, req)
}

func (f *flowContext) introspect(t *testing.T, token, assertion string) (*http.Response, map[string]any) {
	t.Helper()
	form := url.Values{
		"token":                 {token},
		"client_id":             {f.clientID},
		"client_assertion_type": {clientAuthDomain.AssertionTypeJWTBearer},
		"client_assertion":      {assertion},
	}
	req, err := http.NewRequest(
		http.MethodPost,
		f.server.URL+"/v1/oauth/introspect",
		strings.NewReader(form.Encode()),
	)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, body := f.do(t, req)
	var claims map[string]any
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.Unmarshal(body, &claims))
	}
	return resp, claims
}

func TestSSOFlow(t *testing.T) {
	for _, driver := range []string{"postgres", "mysql"} {
		t.Run(driver, func(t *testing.T) {
			f := setupFlow(t, driver)
			ctx := context.Background()
			_, cookie := f.openSession(t)

			// Resume the session from its cookie.
			resp, body := f.continueSession(t, cookie)
			require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

			var issued struct {
				AccessToken string `json:"access_token"`
				TokenType   string `json:"token_type"`
				ExpiresIn   int64  `json:"expires_in"`
			}
			require.NoError(t, json.Unmarshal(body, &issued))
			assert.Equal(t, "Bearer", issued.TokenType)
			assert.Positive(t, issued.ExpiresIn)

			var rotated string
			for _, c := range resp.Cookies() {
				if c.Name == testCookieName {
					rotated = c.Value
				}
			}
			require.NotEmpty(t, rotated)
			assert.NotEqual(t, cookie, rotated)

			// Userinfo is signed with the token's signing key.
			req, err := http.NewRequest(http.MethodGet, f.server.URL+"/v1/userinfo", nil)
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer "+issued.AccessToken)
			resp, body = f.do(t, req)
			require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

			var userinfo map[string]any
			require.NoError(t, json.Unmarshal(body, &userinfo))
			assert.Equal(t, true, userinfo["active"])
			assert.Equal(t, f.userID.String(), userinfo["sub"])

			signatures, err := f.container.SignatureUseCase()
			require.NoError(t, err)
			_, err = signatures.Verify(ctx, "Bearer "+issued.AccessToken, resp.Header.Get(testSignature), body)
			assert.NoError(t, err)

			// Introspection with a valid client assertion.
			resp, claims := f.introspect(t, issued.AccessToken, f.assertion(t, f.secret))
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, true, claims["active"])

			// A wrong secret is rejected.
			resp, _ = f.introspect(t, issued.AccessToken, f.assertion(t, "not-the-secret"))
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

			// Logout ends the session and every token issued from it.
			req, err = http.NewRequest(http.MethodPost, f.server.URL+"/v1/sso/logout", nil)
			require.NoError(t, err)
			req.AddCookie(&http.Cookie{Name: testCookieName, Value: rotated})
			resp, _ = f.do(t, req)
			assert.Equal(t, http.StatusNoContent, resp.StatusCode)

			resp, _ = f.continueSession(t, rotated)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

			_, claims = f.introspect(t, issued.AccessToken, f.assertion(t, f.secret))
			assert.Equal(t, false, claims["active"])
		})
	}
}

func TestHealthAndReadiness(t *testing.T) {
	f := setupFlow(t, "postgres")

	for _, path := range []string{"/health", "/ready"} {
		req, err := http.NewRequest(http.MethodGet, f.server.URL+path, nil)
		require.NoError(t, err)
		resp, body := f.do(t, req)
		assert.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	}
}
