package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func runActor(t *testing.T, authz string) (*httptest.ResponseRecorder, string) {
	t.Helper()
	e := echo.New()
	var seen string
	h := ActorJWT(testSecret)(func(c echo.Context) error {
		seen = ActorID(c)
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/borrows", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, seen
}

func TestActorJWT_ValidToken(t *testing.T) {
	rec, actor := runActor(t, "Bearer "+signToken(t, "U-42"))
	if rec.Code != http.StatusNoContent || actor != "U-42" {
		t.Fatalf("want 204 with actor U-42, got %d %q", rec.Code, actor)
	}
}

func TestActorJWT_Rejects(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "U-1", "exp": time.Now().Add(-time.Hour).Unix()})
	expiredStr, _ := expired.SignedString(testSecret)

	otherKey := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "U-1"})
	otherKeyStr, _ := otherKey.SignedString([]byte("other"))

	noSub := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	noSubStr, _ := noSub.SignedString(testSecret)

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"sub": "U-1"})
	hs512Str, _ := hs512.SignedString(testSecret)

	cases := map[string]string{
		"missing header": "",
		"not bearer":     "Basic abc",
		"empty token":    "Bearer ",
		"garbage":        "Bearer not.a.jwt",
		"expired":        "Bearer " + expiredStr,
		"wrong key":      "Bearer " + otherKeyStr,
		"no subject":     "Bearer " + noSubStr,
		"wrong alg":      "Bearer " + hs512Str,
	}
	for name, authz := range cases {
		rec, actor := runActor(t, authz)
		if rec.Code != http.StatusUnauthorized || actor != "" {
			t.Fatalf("%s: want 401, got %d (actor %q)", name, rec.Code, actor)
		}
	}
}
