// Package auth verifies bearer tokens and resolves the caller's tenant.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/Jgaps7/curriculos-saas/internal/apperr"
	"github.com/Jgaps7/curriculos-saas/internal/config"
	"github.com/Jgaps7/curriculos-saas/internal/models"
	"github.com/Jgaps7/curriculos-saas/internal/repositories"
)

// An empty allow-list would disable the algorithm check in the parser.
var defaultAlgs = []string{"HS256", "RS256", "ES256"}

// Claims is the subset of identity-provider claims the service reads.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
}

type Principal struct {
	TenantID string
	UserID   string
	Role     models.Role // empty for token-only principals
	Email    string
	Claims   *Claims
}

type Gate interface {
	// AuthenticateToken verifies the bearer token only.
	AuthenticateToken(ctx context.Context, authorization string) (*Principal, error)
	// Authorize verifies the token, then requires membership in the tenant
	// named by tenantHeader.
	Authorize(ctx context.Context, authorization, tenantHeader string) (*Principal, error)
}

type gate struct {
	secret      []byte
	keys        KeySet
	memberships repositories.MembershipRepository
	parser      *jwt.Parser
	log         *logrus.Logger
}

// NewGate builds the gate. keys may be nil when only HS tokens are accepted.
func NewGate(cfg config.AuthConfig, keys KeySet, memberships repositories.MembershipRepository, log *logrus.Logger) Gate {
	algs := cfg.AllowedAlgs
	if len(algs) == 0 {
		algs = defaultAlgs
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(algs),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	return &gate{
		secret:      []byte(cfg.JWTSecret),
		keys:        keys,
		memberships: memberships,
		parser:      jwt.NewParser(opts...),
		log:         log,
	}
}

func (g *gate) AuthenticateToken(ctx context.Context, authorization string) (*Principal, error) {
	const op = "auth.AuthenticateToken"

	raw, ok := bearerToken(authorization)
	if !ok {
		return nil, apperr.E(apperr.KindUnauthorized, op, "missing bearer token", nil)
	}

	claims := &Claims{}
	_, err := g.parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return g.verificationKey(ctx, t)
	})
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) && ae.Kind == apperr.KindUnavailable {
			return nil, ae
		}
		g.log.WithError(err).Debug("🔒 Token rejected")
		return nil, apperr.E(apperr.KindUnauthorized, op, "invalid token", err)
	}

	userID := claims.Subject
	if userID == "" {
		userID = claims.UserID
	}
	if userID == "" {
		return nil, apperr.E(apperr.KindUnauthorized, op, "token has no subject", nil)
	}

	return &Principal{UserID: userID, Email: claims.Email, Claims: claims}, nil
}

func (g *gate) Authorize(ctx context.Context, authorization, tenantHeader string) (*Principal, error) {
	const op = "auth.Authorize"

	principal, err := g.AuthenticateToken(ctx, authorization)
	if err != nil {
		return nil, err
	}

	tenantID := strings.TrimSpace(tenantHeader)
	if tenantID == "" {
		return nil, apperr.E(apperr.KindInvalidArgument, op, "X-Tenant-Id header is required", nil)
	}

	membership, err := g.memberships.Find(ctx, tenantID, principal.UserID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, apperr.E(apperr.KindForbidden, op, "not a member of this tenant", nil)
		}
		return nil, err
	}

	principal.TenantID = tenantID
	principal.Role = membership.Role
	return principal, nil
}

func (g *gate) verificationKey(ctx context.Context, t *jwt.Token) (any, error) {
	switch t.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if len(g.secret) == 0 {
			return nil, errors.New("shared secret not configured")
		}
		return g.secret, nil
	case *jwt.SigningMethodRSA, *jwt.SigningMethodRSAPSS, *jwt.SigningMethodECDSA:
		if g.keys == nil {
			return nil, errors.New("JWKS not configured")
		}
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token has no kid")
		}
		return g.keys.Key(ctx, kid)
	default:
		return nil, jwt.ErrTokenUnverifiable
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
