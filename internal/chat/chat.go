// Package chat answers storefront chat messages from a fixed keyword table,
// over plain JSON requests or a WebSocket.
package chat

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

const MaxMessageLen = 1000

var (
	ErrEmptyMessage = errors.New("message is required")
	ErrTooLong      = errors.New("message too long, keep it under 1000 characters")
)

type rule struct {
	keyword string
	reply   string
}

// Checked in order; the first keyword found among the message's words wins.
var rules = []rule{
	{"hello", "Hello! Welcome to our jewelry store. How can I help you today? You can ask about our products, prices, shipping, or anything else!"},
	{"hi", "Hi there! Welcome to our jewelry store. What can I help you with?"},
	{"product", "We offer a collection of rings, necklaces, earrings and bracelets, plus premium beauty products. What interests you?"},
	{"ring", "We have Diamond Solitaire, Sapphire Engagement and Emerald and Gold rings. Would you like details on any?"},
	{"necklace", "Our necklaces include Gold Pearl Pendants, Crystal Charm Necklaces and Diamond Tennis Necklaces. Interested in any?"},
	{"earring", "We offer Diamond Stud Earrings, Pearl Drop Earrings and Rose Gold Chandelier Earrings. Find your perfect pair!"},
	{"bracelet", "Browse our bracelets: Diamond Tennis Bracelet, Gold Bangle Bracelet and Sapphire and Diamond Bracelet."},
	{"price", "Prices vary by piece. You can see every product with its price in the shop. Would you like a recommendation?"},
	{"shipping", "We ship fast and securely to most locations. Costs and timelines are shown during checkout."},
	{"payment", "We accept all major credit cards and process payments securely through Stripe."},
	{"beauty", "We also carry beauty products: Premium Lipstick Set, Luxury Face Serum and Hydrating Face Cream."},
	{"order", "You can order directly from the shop. Add items to your cart and proceed to checkout."},
	{"contact", "For detailed inquiries use our contact form. We respond within 24 hours!"},
	{"help", "I can help with products, prices, shipping, orders, beauty products or general questions. What would you like to know?"},
}

var (
	questionWords  = []string{"what", "which", "how", "where", "when"}
	gratitudeWords = []string{"thank", "thanks", "appreciate", "great", "love"}
)

const (
	replyQuestion  = "That's a great question! I can help with information about our products, pricing, shipping, payments, and more."
	replyGratitude = "You're welcome! Is there anything else I can help you with today?"
	replyDefault   = "Thanks for your message! I'm here to help with any questions about our products, orders, shipping, or anything else."
)

type Reply struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Request payload for POST /chat.
// swagger:model ChatRequest
type Request struct {
	Message string `json:"message" example:"Do you ship to Spain?"`
}

// Validate trims the message and checks its length.
func Validate(msg string) (string, error) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return "", ErrEmptyMessage
	}
	if len([]rune(msg)) > MaxMessageLen {
		return "", ErrTooLong
	}
	return msg, nil
}

// Respond picks the canned answer for a message.
func Respond(msg string) string {
	words := strings.FieldsFunc(strings.ToLower(msg), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, r := range rules {
		if hasWord(words, r.keyword) {
			return r.reply
		}
	}
	for _, w := range questionWords {
		if hasWord(words, w) {
			return replyQuestion
		}
	}
	for _, w := range gratitudeWords {
		if hasWord(words, w) {
			return replyGratitude
		}
	}
	return replyDefault
}

// hasWord matches whole words. Keywords of four letters or more also match
// longer forms ("rings", "thanks"); short ones like "hi" must match exactly.
func hasWord(words []string, keyword string) bool {
	for _, w := range words {
		if w == keyword || (len(keyword) >= 4 && strings.HasPrefix(w, keyword)) {
			return true
		}
	}
	return false
}

// Answer validates and responds, in the shape both transports return.
func Answer(msg string, now time.Time) Reply {
	msg, err := Validate(msg)
	if err != nil {
		return Reply{Success: false, Error: err.Error(), Timestamp: now}
	}
	return Reply{Success: true, Message: Respond(msg), Timestamp: now}
}
