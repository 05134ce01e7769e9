package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/quollsoft/passgate/pkg/authgw"
	"github.com/quollsoft/passgate/pkg/httpx"
	"github.com/quollsoft/passgate/pkg/slogx"
)

// SessionCookie is the name of the signed session cookie.
const SessionCookie = "passgate_session"

type contextKey int

const (
	ctxKeyUserID contextKey = iota
	ctxKeyEmail
)

// requireSession verifies the session cookie and stashes the user's id
// and email in the request context. When the client also sends the
// identity header it must agree with the cookie.
func (r *Router) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		cookie, err := req.Cookie(SessionCookie)
		if err != nil {
			httpx.WriteError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		userID, email, err := r.SessionService.Verify(cookie.Value)
		if err != nil {
			slogx.FromContext(req.Context()).Warn("rejected session cookie", "err", err)
			httpx.WriteError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		if hdr := req.Header.Get(authgw.IdentityHeader); hdr != "" && !strings.EqualFold(hdr, email) {
			httpx.WriteError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		ctx := context.WithValue(req.Context(), ctxKeyUserID, userID)
		ctx = context.WithValue(ctx, ctxKeyEmail, email)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

func userIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKeyUserID).(string)
	return id, ok && id != ""
}
