package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"elc/config"
	"elc/infras/jwt"
	"elc/infras/otel"
	"elc/permissions"
	"elc/shared/constant"
	"elc/shared/failure"
	"elc/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// trustedCallerKey marks a request authenticated by the internal API key.
type trustedCallerKey struct{}

var tokenFailures = []struct {
	err     error
	message string
}{
	{jwt.ErrExpiredToken, "Token has expired"},
	{jwt.ErrInvalidClaim, "Invalid token claims"},
	{jwt.ErrInvalidToken, "Invalid token"},
}

type Auth interface {
	Auth(http.Handler) http.Handler
	APIKey(http.Handler) http.Handler
}

type Role interface {
	RBAC(http.Handler) http.Handler
}

type AuthRole interface {
	Auth
	Role
}

type authRoleImpl struct {
	jwtService jwt.JWT
	otel       otel.Otel
	permission *permissions.PermissionData
	apiKey     string
}

func NewAuthRoleMiddleware(jwtService jwt.JWT, otel otel.Otel, permissions *permissions.PermissionData, cfg *config.Config) AuthRole {
	return &authRoleImpl{
		jwtService: jwtService,
		otel:       otel,
		permission: permissions,
		apiKey:     cfg.App.APIKey,
	}
}

// routePattern resolves the chi pattern a request will be served by, or the
// raw path when nothing matches.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.Routes != nil {
		if pattern := rctx.Routes.Find(chi.NewRouteContext(), r.Method, r.URL.Path); pattern != "" {
			return pattern
		}
	}

	return r.URL.Path
}

func trusted(r *http.Request) bool {
	ok, _ := r.Context().Value(trustedCallerKey{}).(bool)

	return ok
}

// public reports whether the route is open to anonymous callers, either
// globally or per endpoint.
func (m *authRoleImpl) public(r *http.Request) bool {
	if m.permission == nil {
		return false
	}

	return m.permission.Skip || m.permission.FindPermissions(routePattern(r), r.Method).Skip
}

func reject(w http.ResponseWriter, scope otel.Scope, err error) {
	scope.TraceError(err)
	response.WithError(w, err)
}

func tokenFailure(err error) error {
	for _, known := range tokenFailures {
		if errors.Is(err, known.err) {
			return failure.Unauthorized(known.message)
		}
	}

	return failure.Unauthorized("Token validation failed")
}

// Auth resolves the bearer access token into the caller's id, email and role
// on the request context.
func (m *authRoleImpl) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, scope := m.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, "auth.middleware")
		defer scope.End()

		if trusted(r) || m.public(r) {
			next.ServeHTTP(w, r)

			return
		}

		scope.SetAttributes(map[string]any{
			"http.route":  routePattern(r),
			"http.method": r.Method,
		})

		header := r.Header.Get(constant.RequestHeaderAuthorization)
		if header == "" {
			reject(w, scope, failure.Unauthorized("Missing authorization header"))

			return
		}

		token, err := jwt.BearerToken(header)
		if err != nil {
			reject(w, scope, failure.Unauthorized("Invalid authorization header format"))

			return
		}

		claims, err := m.jwtService.ValidateToken(ctx, token, jwt.AccessToken)
		if err != nil {
			reject(w, scope, tokenFailure(err))

			return
		}

		if claims.UserID == "" || claims.Email == "" {
			log.Warn().Str("user_id", claims.UserID).Msg("access token without user id or email")
			reject(w, scope, failure.Unauthorized("Invalid token claims"))

			return
		}

		ctx = r.Context()
		ctx = context.WithValue(ctx, constant.ContextKeyUserID, claims.UserID)
		ctx = context.WithValue(ctx, constant.ContextKeyUserEmail, claims.Email)
		ctx = context.WithValue(ctx, constant.ContextKeyUserRole, claims.Role)
		ctx = context.WithValue(ctx, constant.ContextKeyTokenID, claims.ID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RBAC admits the caller when its role satisfies the route's permission
// entry. Routes without an entry only need an authenticated caller.
func (m *authRoleImpl) RBAC(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, scope := m.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, "rbac.middleware")
		defer scope.End()

		if trusted(r) || m.public(r) {
			next.ServeHTTP(w, r)

			return
		}

		if m.permission == nil {
			reject(w, scope, failure.ForbiddenError)

			return
		}

		permission := m.permission.FindPermissions(routePattern(r), r.Method)
		role, _ := r.Context().Value(constant.ContextKeyUserRole).(string)

		if !permission.Authorize(role) {
			scope.SetAttributes(map[string]any{
				"user_role":             role,
				"allowed_roles":         permission.Permissions,
				"required_capabilities": len(permission.Capabilities),
			})
			reject(w, scope, failure.ForbiddenError)

			return
		}

		next.ServeHTTP(w, r)
	})
}

// APIKey lets internal callers that present the configured key bypass token
// and role checks. A wrong key is refused outright.
func (m *authRoleImpl) APIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, scope := m.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, "api_key.middleware")
		defer scope.End()

		key := r.Header.Get(constant.RequestHeaderAPIKey)
		if key == "" {
			scope.SetAttribute("http.source", "client")
			next.ServeHTTP(w, r)

			return
		}

		scope.SetAttribute("http.source", "internal")

		if m.apiKey == "" || subtle.ConstantTimeCompare([]byte(key), []byte(m.apiKey)) != 1 {
			reject(w, scope, failure.ForbiddenError)

			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), trustedCallerKey{}, true)))
	})
}
