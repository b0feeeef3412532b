package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// CtxActorIDKey holds the authenticated actor id (string).
const CtxActorIDKey = "actor_id"

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// ActorJWT verifies an HS256 Bearer token and stores its subject as the acting user.
func ActorJWT(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authz := c.Request().Header.Get("Authorization")
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			}

			token, err := jwt.Parse(strings.TrimSpace(parts[1]), func(t *jwt.Token) (interface{}, error) {
				if t.Method != jwt.SigningMethodHS256 {
					return nil, errors.New("unexpected signing method")
				}
				return secret, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || token == nil || !token.Valid {
				return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			}

			sub, err := token.Claims.GetSubject()
			if err != nil || strings.TrimSpace(sub) == "" {
				return c.JSON(http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			}

			c.Set(CtxActorIDKey, strings.TrimSpace(sub))
			return next(c)
		}
	}
}

// ActorID returns the actor stored by ActorJWT, or "".
func ActorID(c echo.Context) string {
	s, _ := c.Get(CtxActorIDKey).(string)
	return s
}
