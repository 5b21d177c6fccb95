package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	inErrors "github.com/moa/storefront/internal/errors"
	inHttp "github.com/moa/storefront/internal/http"
	"github.com/moa/storefront/internal/log"
)

type customerKey struct{}

func CustomerKeyFromContext(c context.Context) (string, error) {
	key, ok := c.Value(customerKey{}).(string)
	if !ok || key == "" {
		return "", inErrors.ErrEmptySubject
	}
	return key, nil
}

func AttachCustomerKeyToContext(c context.Context, key string) context.Context {
	return context.WithValue(c, customerKey{}, key)
}

// CustomerAuth is the identity collaborator's edge adapter: it verifies the
// bearer token and attaches its subject to the context as the opaque customer
// key. Nothing past this middleware inspects the token again.
func CustomerAuth(secretKey string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context()).
				With().
				Str(log.KeyTag, "middleware CustomerAuth").
				Logger()
			c := logger.WithContext(r.Context())

			authorization := r.Header.Get("Authorization")
			if authorization == "" {
				logger.Error().Err(inErrors.ErrEmptyAuth).Msg(inErrors.ErrEmptyAuth.Error())
				inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
					"status":     "failed",
					"statusCode": http.StatusUnauthorized,
					"message":    inErrors.ErrEmptyAuth.Error(),
				})
				return
			}

			token := strings.TrimPrefix(authorization, "Bearer ")
			claims := jwt.RegisteredClaims{}
			jwtToken, err := jwt.ParseWithClaims(
				token,
				&claims,
				func(t *jwt.Token) (interface{}, error) { return []byte(secretKey), nil },
				jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
				jwt.WithExpirationRequired(),
			)
			if err != nil || !jwtToken.Valid {
				err = fmt.Errorf("failed parsing token with error=%w", inErrors.ErrTokenInvalid)
				logger.Error().Err(err).Msg(err.Error())
				inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
					"status":     "failed",
					"statusCode": http.StatusUnauthorized,
					"message":    inErrors.ErrTokenInvalid.Error(),
				})
				return
			}
			if claims.Subject == "" {
				logger.Error().Err(inErrors.ErrEmptySubject).Msg(inErrors.ErrEmptySubject.Error())
				inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
					"status":     "failed",
					"statusCode": http.StatusUnauthorized,
					"message":    inErrors.ErrEmptySubject.Error(),
				})
				return
			}

			c = AttachCustomerKeyToContext(c, claims.Subject)
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}
