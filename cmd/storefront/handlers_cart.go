package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/joyeria-ecom/internal/cart"
	"github.com/MikeMC777/joyeria-ecom/internal/httpx"
	"github.com/MikeMC777/joyeria-ecom/internal/product"
)

func cartView(c *gin.Context, carts *cart.Service, rate decimal.Decimal) {
	lines, err := carts.Lines(c.Request.Context(), httpx.Actor(c).UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart.View{Lines: nonNil(lines), Totals: cart.ComputeTotals(lines, rate)})
}

// getCartHandler godoc
// @Summary      Current cart with totals
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  cart.View
// @Router       /cart [get]
func getCartHandler(carts *cart.Service, taxRate decimal.Decimal) gin.HandlerFunc {
	return func(c *gin.Context) { cartView(c, carts, taxRate) }
}

// checkoutPreviewHandler godoc
// @Summary      Cart totals at the checkout tax rate
// @Tags         checkout
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  cart.View
// @Router       /checkout/preview [get]
func checkoutPreviewHandler(carts *cart.Service, taxRate decimal.Decimal) gin.HandlerFunc {
	return func(c *gin.Context) { cartView(c, carts, taxRate) }
}

// addCartItemHandler godoc
// @Summary      Add a product to the cart
// @Description  Adding a product already in the cart raises its quantity. Quantities are capped at the available stock.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      cart.AddItemRequest  true  "Item"
// @Success      200   {object}  cart.Line
// @Failure      400   {object}  product.HTTPError
// @Failure      404   {object}  product.HTTPError
// @Router       /cart/items [post]
func addCartItemHandler(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cart.AddItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		if _, err := uuid.Parse(req.ProductID); err != nil {
			writeError(c, product.ErrNotFound)
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}
		line, err := carts.Add(c.Request.Context(), httpx.Actor(c).UserID, req.ProductID, req.Quantity)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, line)
	}
}

// updateCartItemHandler godoc
// @Summary      Change a cart line quantity
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                  true  "Cart line ID"
// @Param        body  body      cart.UpdateItemRequest  true  "Quantity"
// @Success      200   {object}  cart.Line
// @Failure      400   {object}  product.HTTPError
// @Failure      404   {object}  product.HTTPError
// @Router       /cart/items/{id} [put]
func updateCartItemHandler(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if _, err := uuid.Parse(id); err != nil {
			writeError(c, cart.ErrNotFound)
			return
		}
		var req cart.UpdateItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		line, err := carts.Update(c.Request.Context(), httpx.Actor(c).UserID, id, req.Quantity)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, line)
	}
}

// removeCartItemHandler godoc
// @Summary      Remove a cart line
// @Tags         cart
// @Security     BearerAuth
// @Param        id   path  string  true  "Cart line ID"
// @Success      204
// @Failure      404  {object}  product.HTTPError
// @Router       /cart/items/{id} [delete]
func removeCartItemHandler(carts *cart.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if _, err := uuid.Parse(id); err != nil {
			writeError(c, cart.ErrNotFound)
			return
		}
		if err := carts.Remove(c.Request.Context(), httpx.Actor(c).UserID, id); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
