package chat

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespond(t *testing.T) {
	cases := map[string]string{
		"Hello there":                   rules[0].reply,
		"I want a RING":                 rules[3].reply,
		"shipping costs?":               rules[8].reply,
		"what do you sell":              replyQuestion,
		"thank you":                     replyGratitude,
		"zzz":                           replyDefault,
		"this is his gift":              replyDefault,
		"necklace and bracelet options": rules[4].reply,
	}
	for in, want := range cases {
		assert.Equal(t, want, Respond(in), in)
	}
}

func TestAnswerValidation(t *testing.T) {
	now := time.Now()
	assert.False(t, Answer("   ", now).Success)
	assert.Equal(t, ErrTooLong.Error(), Answer(strings.Repeat("a", MaxMessageLen+1), now).Error)

	r := Answer(" help ", now)
	assert.True(t, r.Success)
	assert.NotEmpty(t, r.Message)
}

func TestServeWS(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(ServeWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(Request{Message: "payment options"}))
	var r Reply
	require.NoError(t, conn.ReadJSON(&r))
	assert.True(t, r.Success)
	assert.Equal(t, rules[9].reply, r.Message)

	require.NoError(t, conn.WriteJSON(Request{Message: ""}))
	require.NoError(t, conn.ReadJSON(&r))
	assert.False(t, r.Success)
}
