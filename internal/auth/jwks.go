package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/Jgaps7/curriculos-saas/internal/apperr"
)

// KeySet resolves the public key for a token's kid.
type KeySet interface {
	Key(ctx context.Context, kid string) (any, error)
}

type JWKSOptions struct {
	TTL          time.Duration
	MinRefresh   time.Duration
	FetchTimeout time.Duration
}

// JWKSCache holds one process-wide copy of the identity provider's key set.
// Entries expire after TTL and are refreshed lazily. When a refresh fails the
// previous set keeps being served. An unknown kid forces a refresh at most
// once per MinRefresh.
type JWKSCache struct {
	url    string
	opts   JWKSOptions
	client *http.Client
	log    *logrus.Logger
	now    func() time.Time

	flight      singleflight.Group
	mu          sync.RWMutex
	keys        *jose.JSONWebKeySet
	fetchedAt   time.Time
	lastAttempt time.Time
	refreshing  bool
}

func NewJWKSCache(url string, opts JWKSOptions, log *logrus.Logger) *JWKSCache {
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Minute
	}
	if opts.MinRefresh <= 0 {
		opts.MinRefresh = time.Minute
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 5 * time.Second
	}
	return &JWKSCache{
		url:    url,
		opts:   opts,
		client: &http.Client{Timeout: opts.FetchTimeout},
		log:    log,
		now:    time.Now,
	}
}

func (c *JWKSCache) Key(ctx context.Context, kid string) (any, error) {
	const op = "jwks.Key"

	if c.due() {
		if err := c.refresh(ctx); err != nil {
			if !c.loaded() {
				return nil, apperr.E(apperr.KindUnavailable, op, "signing keys unavailable", err)
			}
			c.log.WithError(err).Warn("⚠️  JWKS refresh failed, serving cached keys")
		}
	}

	if key, ok := c.lookup(kid); ok {
		return key, nil
	}

	if c.mayForce() {
		if err := c.refresh(ctx); err != nil {
			c.log.WithError(err).Warn("⚠️  JWKS refresh for unknown kid failed")
		} else if key, ok := c.lookup(kid); ok {
			return key, nil
		}
	}

	return nil, apperr.E(apperr.KindUnauthorized, op, "signing key not found", nil)
}

// due reports whether the cached set expired. Callers holding a cached set
// never wait behind a refresh that is already running.
func (c *JWKSCache) due() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.keys == nil {
		return true
	}
	if c.refreshing {
		return false
	}
	now := c.now()
	return now.Sub(c.fetchedAt) >= c.opts.TTL && now.Sub(c.lastAttempt) >= c.opts.MinRefresh
}

func (c *JWKSCache) mayForce() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.refreshing && c.now().Sub(c.lastAttempt) >= c.opts.MinRefresh
}

func (c *JWKSCache) loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.keys != nil
}

func (c *JWKSCache) lookup(kid string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.keys == nil {
		return nil, false
	}
	for _, k := range c.keys.Key(kid) {
		if k.Use != "" && k.Use != "sig" {
			continue
		}
		return k.Public().Key, true
	}
	return nil, false
}

// refresh fetches outside the lock. Concurrent callers share one request.
func (c *JWKSCache) refresh(ctx context.Context) error {
	_, err, _ := c.flight.Do("jwks", func() (any, error) {
		c.mu.Lock()
		c.lastAttempt = c.now()
		c.refreshing = true
		c.mu.Unlock()

		// Joined callers must not fail because the first one went away.
		set, err := c.fetch(context.WithoutCancel(ctx))

		c.mu.Lock()
		defer c.mu.Unlock()
		c.refreshing = false
		if err != nil {
			return nil, err
		}
		c.keys = set
		c.fetchedAt = c.now()
		c.log.WithField("keys", len(set.Keys)).Debug("🔑 JWKS refreshed")
		return nil, nil
	})
	return err
}

func (c *JWKSCache) fetch(ctx context.Context) (*jose.JSONWebKeySet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build JWKS request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("JWKS endpoint returned %d", resp.StatusCode)
	}

	var set jose.JSONWebKeySet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("failed to decode JWKS: %w", err)
	}
	return &set, nil
}
