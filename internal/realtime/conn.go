package realtime

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mbeoliero/kit/log"

	"github.com/archiveone/panchat/internal/config"
	"github.com/archiveone/panchat/pkg/errcode"
)

// Conn wraps the websocket connection carrying the per-user event
// channel. Reads happen on the owner's loop; pings run on their own
// goroutine (single writer for control frames).
type Conn struct {
	ws        *websocket.Conn
	writeWait time.Duration
	pongWait  time.Duration
	closeOnce sync.Once
	closeChan chan struct{}
}

// Dial opens the event channel for the given user. The handshake
// carries the session token and user id as query parameters.
func Dial(ctx context.Context, cfg config.WebSocketConfig, tok, userId string) (*Conn, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, errcode.ErrInvalidParam.Wrap(err)
	}
	q := u.Query()
	q.Set("token", tok)
	q.Set("user_id", userId)
	u.RawQuery = q.Encode()

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, errcode.ErrNetwork.Wrap(err)
	}

	c := &Conn{
		ws:        ws,
		writeWait: cfg.WriteWait,
		pongWait:  cfg.PongWait,
		closeChan: make(chan struct{}),
	}

	ws.SetReadLimit(cfg.MaxMessageSize)
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(cfg.PongWait))
	})

	go c.pingLoop(cfg.PingPeriod)

	return c, nil
}

// pingLoop keeps the channel alive; the server drops idle subscriptions
func (c *Conn) pingLoop(period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug("ping error: %v", err)
				c.Close()
				return
			}
		case <-c.closeChan:
			return
		}
	}
}

// ReadMessage blocks until the next frame arrives
func (c *Conn) ReadMessage() ([]byte, error) {
	c.ws.SetReadDeadline(time.Now().Add(c.pongWait))
	_, data, err := c.ws.ReadMessage()
	return data, err
}

// Close releases the connection. Idempotent.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closeChan)
		c.ws.Close()
	})
	return nil
}
