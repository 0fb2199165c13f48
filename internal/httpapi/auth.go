package httpapi

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/Simplici0/facecost/internal/engine"
)

// adminMiddleware guards the factor admin routes with the static bearer token
// from ADMIN_TOKEN. Without a configured token the routes are closed.
func (s *server) adminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.adminToken == "" {
			writeJSON(w, http.StatusForbidden, &engine.Error{Kind: "forbidden", Message: "admin routes are disabled"})
			return
		}

		token, ok := bearerToken(r)
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="facecost"`)
			writeJSON(w, http.StatusUnauthorized, &engine.Error{Kind: "unauthorized", Message: "missing or invalid admin token"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
