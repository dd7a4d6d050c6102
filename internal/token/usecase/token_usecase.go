package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/idcore/internal/cache"
	directoryDomain "github.com/allisson/idcore/internal/directory/domain"
	apperrors "github.com/allisson/idcore/internal/errors"
	sessionDomain "github.com/allisson/idcore/internal/session/domain"
	tokenDomain "github.com/allisson/idcore/internal/token/domain"
	tokenService "github.com/allisson/idcore/internal/token/service"
)

// Settings holds the server-wide token defaults.
type Settings struct {
	AccessTokenTTL      time.Duration
	RefreshTokenTTL     time.Duration
	IDTokenTTL          time.Duration
	CodeTTL             time.Duration
	MaxTransitTime      time.Duration
	FingerprintEnabled  bool
	URLPermissionsScope string
	CacheTTL            time.Duration
}

type tokenUseCase struct {
	tokenRepo TokenRepository
	sessions  SessionReader
	directory DirectoryReader
	generator tokenService.Generator
	cache     cache.Cache
	settings  Settings
	logger    *slog.Logger
}

// NewTokenUseCase creates a TokenUseCase.
func NewTokenUseCase(
	tokenRepo TokenRepository,
	sessions SessionReader,
	directory DirectoryReader,
	generator tokenService.Generator,
	lookupCache cache.Cache,
	settings Settings,
	logger *slog.Logger,
) TokenUseCase {
	return &tokenUseCase{
		tokenRepo: tokenRepo,
		sessions:  sessions,
		directory: directory,
		generator: generator,
		cache:     lookupCache,
		settings:  settings,
		logger:    logger,
	}
}

func tokenCacheKey(tokenType tokenDomain.TokenType, valueHash string) string {
	return cache.Key("token", string(tokenType), valueHash)
}

func (t *tokenUseCase) Create(
	ctx context.Context,
	input *tokenDomain.CreateTokenInput,
) (*tokenDomain.Token, error) {
	if _, err := tokenDomain.ParseTokenType(string(input.Type)); err != nil {
		return nil, err
	}
	if input.Value == "" || input.TTL <= 0 {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "token value and ttl are required")
	}

	now := time.Now().UTC()
	expiresAt := now.Add(input.TTL)
	token := &tokenDomain.Token{
		ID:            uuid.Must(uuid.NewV7()),
		Type:          input.Type,
		ValueHash:     tokenService.HashValue(input.Value),
		SessionID:     input.SessionID,
		ApplicationID: input.ApplicationID,
		SubjectID:     input.SubjectID,
		Opaque:        input.Opaque,
		SigningKey:    input.SigningKey,
		ExpiresAt:     &expiresAt,
		CreatedAt:     now,
		Value:         input.Value,
	}

	if err := t.tokenRepo.Create(ctx, token); err != nil {
		return nil, err
	}

	t.logger.DebugContext(ctx, "token created",
		slog.String("token_id", token.ID.String()),
		slog.String("type", string(token.Type)),
		slog.String("session_id", token.SessionID.String()),
	)
	return token, nil
}

func (t *tokenUseCase) Issue(
	ctx context.Context,
	input *tokenDomain.IssueTokenInput,
) (*tokenDomain.Token, error) {
	session, err := t.sessions.Get(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		return nil, sessionDomain.ErrSessionInactive
	}

	app, err := t.directory.GetApplication(ctx, session.ApplicationID)
	if err != nil {
		return nil, err
	}

	value, valueHash, err := t.generator.NewValue()
	if err != nil {
		return nil, err
	}

	var signingKey []byte
	if input.WithSigningKey {
		if signingKey, err = t.generator.NewSigningKey(valueHash); err != nil {
			return nil, err
		}
	}

	return t.Create(ctx, &tokenDomain.CreateTokenInput{
		Type:          input.Type,
		ApplicationID: session.ApplicationID,
		SubjectID:     session.SubjectID,
		SessionID:     session.ID,
		Value:         value,
		Opaque:        true,
		SigningKey:    signingKey,
		TTL:           t.ttlFor(input.Type, app),
	})
}

func (t *tokenUseCase) ttlFor(tokenType tokenDomain.TokenType, app *directoryDomain.Application) time.Duration {
	switch tokenType {
	case tokenDomain.TokenAccess:
		if app.TokenSettings.AccessTokenTTL > 0 {
			return app.TokenSettings.AccessTokenTTL
		}
		return t.settings.AccessTokenTTL
	case tokenDomain.TokenRefresh:
		if app.TokenSettings.RefreshTokenTTL > 0 {
			return app.TokenSettings.RefreshTokenTTL
		}
		return t.settings.RefreshTokenTTL
	case tokenDomain.TokenID:
		return t.settings.IDTokenTTL
	default:
		return t.settings.CodeTTL
	}
}

func (t *tokenUseCase) GetByValue(
	ctx context.Context,
	value string,
	tokenType tokenDomain.TokenType,
) (*tokenDomain.Token, error) {
	valueHash := tokenService.HashValue(value)
	key := tokenCacheKey(tokenType, valueHash)

	var cached tokenDomain.Token
	found, err := t.cache.Get(ctx, key, &cached)
	if err != nil {
		t.logger.WarnContext(ctx, "token cache read failed", slog.Any("error", err))
	}
	if found {
		cached.Value = value
		return &cached, nil
	}

	token, err := t.tokenRepo.GetByHash(ctx, valueHash, tokenType)
	if err != nil {
		return nil, err
	}

	// Tokens are immutable, so an entry only has to disappear once the token expires.
	if ttl := t.cacheTTL(token); ttl > 0 {
		if err := t.cache.Set(ctx, key, token, ttl); err != nil {
			t.logger.WarnContext(ctx, "token cache write failed", slog.Any("error", err))
		}
	}
	token.Value = value
	return token, nil
}

// cacheTTL is zero for tokens that must not be cached. Tokens with a signing
// key are always read from the repository.
func (t *tokenUseCase) cacheTTL(token *tokenDomain.Token) time.Duration {
	if token.ExpiresAt == nil || len(token.SigningKey) > 0 {
		return 0
	}
	ttl := time.Until(*token.ExpiresAt)
	if t.settings.CacheTTL > 0 && t.settings.CacheTTL < ttl {
		ttl = t.settings.CacheTTL
	}
	return ttl
}

func (t *tokenUseCase) IsActive(ctx context.Context, token *tokenDomain.Token) (bool, error) {
	session, err := t.loadSession(ctx, token)
	if err != nil || session == nil {
		return false, err
	}
	return token.IsActive(time.Now().UTC(), session), nil
}

// loadSession returns the token's session, or nil when it no longer exists.
func (t *tokenUseCase) loadSession(
	ctx context.Context,
	token *tokenDomain.Token,
) (*sessionDomain.AuthSession, error) {
	session, err := t.sessions.Get(ctx, token.SessionID)
	if err != nil {
		if errors.Is(err, sessionDomain.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return session, nil
}

func (t *tokenUseCase) Authenticate(
	ctx context.Context,
	value string,
	tokenType tokenDomain.TokenType,
) (*tokenDomain.Token, error) {
	token, err := t.GetByValue(ctx, value, tokenType)
	if err != nil {
		if errors.Is(err, tokenDomain.ErrTokenNotFound) {
			return nil, tokenDomain.ErrInvalidToken
		}
		return nil, err
	}

	active, err := t.IsActive(ctx, token)
	if err != nil {
		return nil, err
	}
	if !active {
		t.logger.DebugContext(ctx, "inactive token presented", slog.String("token_id", token.ID.String()))
		return nil, tokenDomain.ErrInvalidToken
	}
	return token, nil
}

func (t *tokenUseCase) GetClaimsForToken(
	ctx context.Context,
	token *tokenDomain.Token,
) (tokenDomain.Claims, error) {
	session, err := t.loadSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil || !token.IsActive(time.Now().UTC(), session) {
		return tokenDomain.InactiveClaims(), nil
	}

	app, err := t.directory.GetApplication(ctx, token.ApplicationID)
	if err != nil {
		return nil, err
	}

	claimsCtx := &tokenService.ClaimsContext{
		Token:               token,
		Session:             session,
		Application:         app,
		MaxTransitTime:      t.settings.MaxTransitTime,
		FingerprintEnabled:  t.settings.FingerprintEnabled,
		URLPermissionsScope: t.settings.URLPermissionsScope,
	}

	if claimsCtx.IsClientCredentials() {
		if claimsCtx.Organization, err = t.directory.GetOrganization(ctx, app.OrganizationID); err != nil {
			return nil, err
		}
		return tokenService.BuildClaims(claimsCtx), nil
	}

	if err := t.loadSubject(ctx, claimsCtx); err != nil {
		return nil, err
	}
	return tokenService.BuildClaims(claimsCtx), nil
}

// loadSubject fills the user-dependent parts of the claims context that the
// granted scopes ask for. Subjects that are not directory users get none.
func (t *tokenUseCase) loadSubject(ctx context.Context, c *tokenService.ClaimsContext) error {
	if !c.NeedsUser() && !c.NeedsPermissions() && !c.NeedsURLPermissions() {
		return nil
	}

	userID, err := uuid.Parse(c.Token.SubjectID)
	if err != nil {
		t.logger.WarnContext(ctx, "token subject is not a user id", slog.String("token_id", c.Token.ID.String()))
		return nil
	}

	if c.NeedsUser() {
		c.User, err = t.directory.GetUser(ctx, userID)
		if err != nil && !errors.Is(err, directoryDomain.ErrUserNotFound) {
			return err
		}
	}
	if c.NeedsPermissions() {
		if c.Permissions, err = t.directory.ListPermissions(ctx, userID); err != nil {
			return err
		}
	}
	if c.NeedsURLPermissions() {
		if c.URLPermissions, err = t.directory.ListURLPermissions(ctx, c.Application.ID, userID); err != nil {
			return err
		}
	}
	return nil
}

func (t *tokenUseCase) ListByApplicationWithin(
	ctx context.Context,
	applicationID uuid.UUID,
	from, to time.Time,
	limit int,
) ([]*tokenDomain.Token, error) {
	return t.tokenRepo.ListByApplicationWithin(ctx, applicationID, from, to, limit)
}

func (t *tokenUseCase) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	count, err := t.tokenRepo.DeleteExpired(ctx, before)
	if err != nil {
		return 0, err
	}
	t.logger.InfoContext(ctx, "expired tokens deleted", slog.Int64("count", count))
	return count, nil
}
