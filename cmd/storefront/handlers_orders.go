package main

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/joyeria-ecom/internal/httpx"
	"github.com/MikeMC777/joyeria-ecom/internal/logger"
	"github.com/MikeMC777/joyeria-ecom/internal/order"
	"github.com/MikeMC777/joyeria-ecom/internal/payment"
)

// maxWebhookBody bounds the signed payload read from the gateway.
const maxWebhookBody = 64 << 10

type paymentResponse struct {
	RedirectURL string `json:"redirect_url"`
}

type cancelResponse struct {
	Cancelled bool         `json:"cancelled"`
	Status    order.Status `json:"status"`
}

type webhookResponse struct {
	Received bool          `json:"received"`
	Outcome  order.Outcome `json:"outcome"`
}

// checkoutHandler godoc
// @Summary      Place an order from the cart
// @Description  Creates a pending order from the cart and opens a payment session. When the payment provider fails the order is still returned with status 502 and can be paid later through /orders/{id}/pay.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      order.CheckoutRequest  true  "Shipping and coupon"
// @Success      201   {object}  order.CheckoutResponse
// @Failure      400   {object}  product.HTTPError
// @Failure      502   {object}  order.CheckoutResponse
// @Router       /checkout [post]
func checkoutHandler(w *order.Workflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		co, err := w.CreateOrder(c.Request.Context(), httpx.Actor(c), req)
		if co == nil {
			writeError(c, err)
			return
		}
		resp := order.CheckoutResponse{
			Order:       co.Order,
			Items:       co.Items,
			RedirectURL: co.RedirectURL,
			Warnings:    co.Warnings,
		}
		if err != nil {
			resp.Error = order.ErrPaymentUnavailable.Error()
			c.JSON(http.StatusBadGateway, resp)
			return
		}
		c.JSON(http.StatusCreated, resp)
	}
}

// listOrdersHandler godoc
// @Summary      Orders of the current user, newest first
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query  int  false  "Page size (max 100)"
// @Param        offset  query  int  false  "Offset"
// @Success      200     {array}  order.Order
// @Router       /orders [get]
func listOrdersHandler(w *order.Workflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := pageParams(c)
		out, err := w.ListByUser(c.Request.Context(), httpx.Actor(c), limit, offset)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, nonNil(out))
	}
}

// getOrderHandler godoc
// @Summary      Order detail
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  order.OrderDetail
// @Failure      403  {object}  product.HTTPError
// @Failure      404  {object}  product.HTTPError
// @Router       /orders/{id} [get]
func getOrderHandler(w *order.Workflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, items, err := w.Get(c.Request.Context(), httpx.Actor(c), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, order.OrderDetail{Order: *o, Items: nonNil(items)})
	}
}

// payOrderHandler godoc
// @Summary      Open a new payment session for a pending order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  paymentResponse
// @Failure      409  {object}  product.HTTPError
// @Failure      502  {object}  product.HTTPError
// @Router       /orders/{id}/pay [post]
func payOrderHandler(w *order.Workflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		url, err := w.StartPayment(c.Request.Context(), httpx.Actor(c), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, paymentResponse{RedirectURL: url})
	}
}

// cancelOrderHandler godoc
// @Summary      Cancel a pending or confirmed order
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  cancelResponse
// @Failure      403  {object}  product.HTTPError
// @Failure      409  {object}  product.HTTPError
// @Router       /orders/{id}/cancel [post]
func cancelOrderHandler(w *order.Workflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := w.CancelOrder(c.Request.Context(), httpx.Actor(c), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, cancelResponse{Cancelled: ok, Status: order.StatusCancelled})
	}
}

// updateOrderStatusHandler godoc
// @Summary      Move an order along fulfillment
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                     true  "Order ID"
// @Param        body  body      order.UpdateStatusRequest  true  "Target status"
// @Success      200   {object}  order.Order
// @Failure      409   {object}  product.HTTPError
// @Router       /admin/orders/{id}/status [put]
func updateOrderStatusHandler(w *order.Workflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		o, err := w.AdvanceStatus(c.Request.Context(), httpx.Actor(c), c.Param("id"), req.Status)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// analyticsHandler godoc
// @Summary      Sales dashboard for the last 30 days
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  order.Dashboard
// @Router       /admin/analytics [get]
func analyticsHandler(w *order.Workflow) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := w.Dashboard(c.Request.Context(), httpx.Actor(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, d)
	}
}

// webhookHandler godoc
// @Summary      Payment provider webhook
// @Description  Verifies the Stripe-Signature header and applies checkout.session.completed events. Unknown orders and other event types are acknowledged with 200.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        Stripe-Signature  header    string  true  "Provider signature"
// @Success      200               {object}  webhookResponse
// @Failure      400               {object}  product.HTTPError
// @Router       /payments/webhook [post]
func webhookHandler(w *order.Workflow, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
			return
		}
		ev, err := payment.ParseEvent(payload, c.GetHeader("Stripe-Signature"), secret)
		if err != nil {
			logger.FromCtx(ctx).Warn("webhook rejected", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": payment.ErrAuthentication.Error()})
			return
		}
		outcome, err := w.ApplyPaymentConfirmation(ctx, *ev)
		if err != nil {
			// 5xx makes the provider redeliver
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, webhookResponse{Received: true, Outcome: outcome})
	}
}
