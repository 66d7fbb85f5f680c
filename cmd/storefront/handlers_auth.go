package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/joyeria-ecom/internal/auth"
	"github.com/MikeMC777/joyeria-ecom/internal/httpx"
	"github.com/MikeMC777/joyeria-ecom/internal/logger"
	"github.com/MikeMC777/joyeria-ecom/internal/user"
)

// registerHandler godoc
// @Summary      Create an account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      user.RegisterRequest  true  "Account"
// @Success      201   {object}  user.TokenResponse
// @Failure      400   {object}  product.HTTPError
// @Failure      409   {object}  product.HTTPError
// @Router       /auth/register [post]
func registerHandler(users *user.Service, iss *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		u, err := users.Register(c.Request.Context(), req)
		if u == nil {
			writeError(c, err)
			return
		}
		if err != nil {
			// the account exists; only a post-registration hook failed
			logger.FromCtx(c.Request.Context()).Warn("post-registration hook failed", "user_id", u.ID, "error", err)
		}
		tok, err := iss.Issue(u.ID, u.Staff)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, user.TokenResponse{Token: tok, User: *u})
	}
}

// loginHandler godoc
// @Summary      Exchange credentials for a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      user.LoginRequest  true  "Credentials"
// @Success      200   {object}  user.TokenResponse
// @Failure      401   {object}  product.HTTPError
// @Router       /auth/login [post]
func loginHandler(users *user.Service, iss *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req user.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		u, err := users.Authenticate(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			writeError(c, err)
			return
		}
		tok, err := iss.Issue(u.ID, u.Staff)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, user.TokenResponse{Token: tok, User: *u})
	}
}

// getProfileHandler godoc
// @Summary      Current account profile
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  user.Profile
// @Router       /account/profile [get]
func getProfileHandler(users *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := users.Profile(c.Request.Context(), httpx.Actor(c).UserID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

// updateProfileHandler godoc
// @Summary      Replace the account profile
// @Tags         account
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      user.Profile  true  "Profile"
// @Success      200   {object}  user.Profile
// @Router       /account/profile [put]
func updateProfileHandler(users *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p user.Profile
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		p.UserID = httpx.Actor(c).UserID
		out, err := users.UpdateProfile(c.Request.Context(), p)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// deleteAccountHandler godoc
// @Summary      Delete the account
// @Description  Removes the account with its profile, cart, reviews and wishlist. Past orders are kept without an owner.
// @Tags         account
// @Security     BearerAuth
// @Success      204
// @Router       /account [delete]
func deleteAccountHandler(users *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := users.Delete(c.Request.Context(), httpx.Actor(c).UserID); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
