package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/joyeria-ecom/internal/chat"
	"github.com/MikeMC777/joyeria-ecom/internal/contact"
	"github.com/MikeMC777/joyeria-ecom/internal/httpx"
	"github.com/MikeMC777/joyeria-ecom/internal/user"
)

// contactHandler godoc
// @Summary      Send a contact query
// @Description  Signed-in users are answered at their account email.
// @Tags         support
// @Accept       json
// @Produce      json
// @Param        body  body      contact.SubmitRequest  true  "Query"
// @Success      201   {object}  contact.Query
// @Failure      400   {object}  product.HTTPError
// @Router       /contact [post]
func contactHandler(svc *contact.Service, users *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var req contact.SubmitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		var accountEmail string
		if a := httpx.Actor(c); a.Authenticated() {
			if u, err := users.Get(ctx, a.UserID); err == nil {
				accountEmail = u.Email
			}
		}
		q, err := svc.Submit(ctx, req, accountEmail)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, q)
	}
}

// chatHandler godoc
// @Summary      Ask the shop assistant
// @Tags         support
// @Accept       json
// @Produce      json
// @Param        body  body      chat.Request  true  "Message"
// @Success      200   {object}  chat.Reply
// @Failure      400   {object}  chat.Reply
// @Router       /chat [post]
func chatHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req chat.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, chat.Reply{Error: "invalid json", Timestamp: time.Now().UTC()})
			return
		}
		reply := chat.Answer(req.Message, time.Now().UTC())
		if !reply.Success {
			c.JSON(http.StatusBadRequest, reply)
			return
		}
		c.JSON(http.StatusOK, reply)
	}
}
