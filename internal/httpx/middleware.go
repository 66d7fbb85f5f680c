package httpx

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MikeMC777/joyeria-ecom/internal/auth"
	"github.com/MikeMC777/joyeria-ecom/internal/logger"
)

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set("rid", rid)
		c.Writer.Header().Set("X-Request-ID", rid)
		c.Next()
	}
}

// Logger tags a request-scoped logger with the request id, stores it in the
// request context and logs one line per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		rid := c.GetString("rid")
		l := logger.L().With("rid", rid)
		c.Request = c.Request.WithContext(logger.Inject(c.Request.Context(), l))

		c.Next()

		l.Info("http",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"dur", time.Since(start).String())
	}
}

// Auth resolves an optional bearer token into an actor on the request
// context. A present but invalid token is rejected; no token means anonymous.
func Auth(iss *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			c.Next()
			return
		}
		token, ok := strings.CutPrefix(h, "Bearer ")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization must be a bearer token"})
			return
		}
		actor, err := iss.Parse(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		ctx := auth.WithActor(c.Request.Context(), actor)
		ctx = logger.Inject(ctx, logger.FromCtx(ctx).With("user_id", actor.UserID))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Actor returns the authenticated actor of the request, zero when anonymous.
func Actor(c *gin.Context) auth.Actor {
	return auth.FromContext(c.Request.Context())
}

func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Actor(c).Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		a := Actor(c)
		if !a.Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !a.Staff {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "staff only"})
			return
		}
		c.Next()
	}
}
