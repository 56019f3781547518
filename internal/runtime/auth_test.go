package runtime

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

var testSecret = []byte("test-secret")

func callProtected(t *testing.T, token string, mw ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	return rec, handler(c)
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	token, err := SignJWT("user-1", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	rec, err := callProtected(t, token, EchoAuthMiddleware(testSecret))
	if err != nil {
		t.Fatalf("middleware: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
}

func TestAuthMiddlewareRejects(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"missing token", ""},
		{"garbage token", "not-a-jwt"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := callProtected(t, tt.token, EchoAuthMiddleware(testSecret))
			he, ok := err.(*echo.HTTPError)
			if !ok || he.Code != http.StatusUnauthorized {
				t.Fatalf("got %v, want 401", err)
			}
		})
	}
}

func TestAuthMiddlewareRejectsWrongAlgorithm(t *testing.T) {
	// Signed with the right secret but the wrong method; only HS256 is valid.
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS384, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	_, err = callProtected(t, token, EchoAuthMiddleware(testSecret))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("got %v, want 401", err)
	}
}

func TestAuthMiddlewareRejectsExpired(t *testing.T) {
	token, err := SignJWT("user-1", testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	_, err = callProtected(t, token, EchoAuthMiddleware(testSecret))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("got %v, want 401", err)
	}
}

func TestRequireScopesPremium(t *testing.T) {
	premium, err := SignJWT("user-1", testSecret, time.Hour, ScopePremium)
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	free, err := SignJWT("user-2", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}

	rec, err := callProtected(t, premium, EchoAuthMiddleware(testSecret), RequireScopes(ScopePremium))
	if err != nil {
		t.Fatalf("premium caller: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("premium caller status %d, want 200", rec.Code)
	}

	_, err = callProtected(t, free, EchoAuthMiddleware(testSecret), RequireScopes(ScopePremium))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Fatalf("free caller got %v, want 403", err)
	}
}

func TestAuthMiddlewareReadsCookie(t *testing.T) {
	token, err := SignJWT("user-1", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "auth", Value: token})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := EchoAuthMiddleware(testSecret)
	h := mw(func(c echo.Context) error {
		if got := c.Get("user_id"); got != "user-1" {
			t.Fatalf("user_id got %v", got)
		}
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("middleware: %v", err)
	}
}
