package service

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"

	apperrors "github.com/allisson/idcore/internal/errors"
)

// RemoteKeySet fetches and caches published key sets by URL.
type RemoteKeySet interface {
	Fetch(ctx context.Context, url string) (jwk.Set, error)
}

// JWKSCache is a RemoteKeySet backed by a jwk.Cache that refreshes each
// registered URL in the background. URLs are registered lazily on first use.
type JWKSCache struct {
	cache   *jwk.Cache
	timeout time.Duration
	cancel  context.CancelFunc

	mu         sync.Mutex
	registered map[string]struct{}
}

// NewJWKSCache starts a key set cache whose fetches time out after timeout.
// Close stops its refresh workers.
func NewJWKSCache(ctx context.Context, timeout time.Duration) (*JWKSCache, error) {
	ctx, cancel := context.WithCancel(ctx)

	client := httprc.NewClient(httprc.WithHTTPClient(&http.Client{Timeout: timeout}))
	cache, err := jwk.NewCache(ctx, client)
	if err != nil {
		cancel()
		return nil, apperrors.Wrap(err, "failed to create JWKS cache")
	}

	return &JWKSCache{
		cache:      cache,
		timeout:    timeout,
		cancel:     cancel,
		registered: make(map[string]struct{}),
	}, nil
}

// Fetch returns the cached key set for url, fetching it on first use.
func (c *JWKSCache) Fetch(ctx context.Context, url string) (jwk.Set, error) {
	if err := c.ensureRegistered(ctx, url); err != nil {
		return nil, err
	}
	set, err := c.cache.Lookup(ctx, url)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to lookup JWKS")
	}
	return set, nil
}

func (c *JWKSCache) ensureRegistered(ctx context.Context, url string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.registered[url]; ok {
		return nil
	}

	registerCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.cache.Register(registerCtx, url); err != nil {
		// A failed first fetch may leave the URL half-registered; drop it so
		// the next request retries from scratch.
		_ = c.cache.Unregister(ctx, url)
		return apperrors.Wrap(err, "failed to register JWKS URL")
	}
	c.registered[url] = struct{}{}
	return nil
}

// Close stops background refreshes.
func (c *JWKSCache) Close() {
	c.cancel()
}
