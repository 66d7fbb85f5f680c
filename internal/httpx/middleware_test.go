package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/joyeria-ecom/internal/auth"
	"github.com/MikeMC777/joyeria-ecom/internal/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Discard()
}

func newRouter(iss *auth.Issuer) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Logger(), Auth(iss))
	r.GET("/who", func(c *gin.Context) {
		a := Actor(c)
		c.JSON(http.StatusOK, gin.H{"user_id": a.UserID, "staff": a.Staff})
	})
	r.GET("/me", RequireUser(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/admin", RequireStaff(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := newRouter(auth.NewIssuer("s", time.Hour))
	w := do(r, "/who", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set("X-Request-ID", "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
}

func TestAuthAndGuards(t *testing.T) {
	iss := auth.NewIssuer("s", time.Hour)
	r := newRouter(iss)
	userTok, err := iss.Issue("u1", false)
	require.NoError(t, err)
	staffTok, err := iss.Issue("u2", true)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, do(r, "/me", "").Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/me", userTok).Code)
	assert.Equal(t, http.StatusForbidden, do(r, "/admin", userTok).Code)
	assert.Equal(t, http.StatusNoContent, do(r, "/admin", staffTok).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "/who", "garbage").Code)

	w := do(r, "/who", staffTok)
	assert.JSONEq(t, `{"user_id":"u2","staff":true}`, w.Body.String())
}
