package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/clinika/clinika-backend/internal/auth/jwt"
	"github.com/clinika/clinika-backend/pkg/errors"
	"github.com/clinika/clinika-backend/pkg/httputil"
)

// RequireAuth validates the bearer token and loads the user into the request
// context. Unauthenticated requests get a 401 whose details carry the sign-in
// page with the attempted path, so clients can return the user where they
// were after logging in.
func RequireAuth(manager *jwt.Manager, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				httputil.Error(w, unauthenticated(loginPath, r))
				return
			}

			claims, err := manager.ValidateAccessToken(token)
			if err != nil {
				httputil.Error(w, unauthenticated(loginPath, r))
				return
			}

			ctx := httputil.WithUserContext(r.Context(), claims.UserID, claims.Email, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole allows only users whose role is in allowed. Must run after
// RequireAuth.
func RequireRole(allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := httputil.GetUserRole(r.Context())
			for _, a := range allowed {
				if role == a {
					next.ServeHTTP(w, r)
					return
				}
			}
			httputil.Error(w, errors.Forbidden("insufficient role"))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func unauthenticated(loginPath string, r *http.Request) error {
	return errors.Unauthorized("not authenticated").WithDetails(map[string]string{
		"redirect": loginPath + "?to=" + url.QueryEscape(r.URL.RequestURI()),
	})
}
