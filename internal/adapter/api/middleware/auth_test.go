package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVerifier struct {
	uid string
	err error
}

func (f *fakeVerifier) VerifyToken(ctx context.Context, token string) (string, error) {
	return f.uid, f.err
}

func invoke(t *testing.T, m *AuthMiddleware, header string) (echo.Context, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := m.Authenticate(func(c echo.Context) error { return nil })(c)
	return c, err
}

func TestAuthenticateSetsUID(t *testing.T) {
	m := NewAuthMiddleware(&fakeVerifier{uid: "user-1"})

	c, err := invoke(t, m, "Bearer token")
	require.NoError(t, err)
	assert.Equal(t, "user-1", c.Get("uid"))
}

func TestAuthenticateRejectsMissingHeader(t *testing.T) {
	m := NewAuthMiddleware(&fakeVerifier{uid: "user-1"})

	_, err := invoke(t, m, "")
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestAuthenticateRejectsMalformedHeader(t *testing.T) {
	m := NewAuthMiddleware(&fakeVerifier{uid: "user-1"})

	_, err := invoke(t, m, "Basic abc")
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestAuthenticateRejectsInvalidToken(t *testing.T) {
	m := NewAuthMiddleware(&fakeVerifier{err: fmt.Errorf("expired")})

	_, err := invoke(t, m, "Bearer stale")
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}
