package server

import (
	"context"
	"net/http"
	"strings"

	logger "github.com/sirupsen/logrus"

	"tradejournal/src/auth"
	"tradejournal/src/model"
)

type authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// authMiddleware resolves the bearer token into a caller identity once per
// request and stores it in the context. Requests without a valid token flow
// through with no identity; the services reject them before any work.
func authMiddleware(authn authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
				user, err := authn.Authenticate(r.Context(), token)
				if err != nil {
					logger.WithError(err).Debug("bearer token rejected")
				} else if user != nil {
					r = r.WithContext(auth.WithUser(r.Context(), user))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
