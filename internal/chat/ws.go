package chat

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MikeMC777/joyeria-ecom/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ServeWS upgrades the request and answers every JSON {"message": ...} frame
// with a Reply until the client goes away.
func ServeWS(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context())
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("chat: upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(4 * MaxMessageLen)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go ping(conn, done)

	for {
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("chat: connection closed", "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(Answer(req.Message, time.Now().UTC())); err != nil {
			return
		}
	}
}

// ping keeps idle connections alive. WriteControl is safe to call
// concurrently with the writer in ServeWS.
func ping(conn *websocket.Conn, done <-chan struct{}) {
	t := time.NewTicker(pingPeriod)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
