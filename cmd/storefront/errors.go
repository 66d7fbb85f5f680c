package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/joyeria-ecom/internal/cart"
	"github.com/MikeMC777/joyeria-ecom/internal/contact"
	"github.com/MikeMC777/joyeria-ecom/internal/logger"
	"github.com/MikeMC777/joyeria-ecom/internal/order"
	"github.com/MikeMC777/joyeria-ecom/internal/product"
	"github.com/MikeMC777/joyeria-ecom/internal/user"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrInvalidShipping),
		errors.Is(err, order.ErrInvalidDiscount),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrOutOfStock),
		errors.Is(err, product.ErrInvalidRating),
		errors.Is(err, contact.ErrInvalid),
		errors.Is(err, user.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, order.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, cart.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, user.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, product.ErrReviewExists),
		errors.Is(err, user.ErrAlreadyExist):
		return http.StatusConflict
	case errors.Is(err, order.ErrPaymentUnavailable):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeError maps a service error to its status. Internal errors are logged
// and hidden from the client.
func writeError(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		logger.FromCtx(c.Request.Context()).Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(code, gin.H{"error": "internal error"})
		return
	}
	c.JSON(code, gin.H{"error": err.Error()})
}
