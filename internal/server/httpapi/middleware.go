package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/yuwenwww/membervault/internal/common"
	"github.com/yuwenwww/membervault/internal/server/auth"
)

type ctxKey string

const memberIDKey ctxKey = "memberID"

// accessTokenMiddleware validates the bearer token and stores the member ID
// it was issued for on the request context.
func (s *HTTPServer) accessTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}

		memberID, err := auth.GetMemberIDFromToken(token, s.jwtSecret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), memberIDKey, memberID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func memberIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(memberIDKey).(string)
	return id
}
