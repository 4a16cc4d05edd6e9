package realtime

import (
	"context"
	"io"
	"sync"

	"github.com/mbeoliero/kit/log"

	"github.com/archiveone/panchat/internal/config"
)

// Subscription is a live per-user event channel. It is a scoped
// resource: acquired when the inbox opens, released on teardown, never
// held by two views at once.
type Subscription struct {
	conn      *Conn
	done      chan struct{}
	closeOnce sync.Once
}

// Done is closed when the read loop exits, whether by Close or by a
// connection failure
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close releases the subscription and its server-side slot. Idempotent.
func (s *Subscription) Close() error {
	s.closeOnce.Do(func() {
		s.conn.Close()
	})
	return nil
}

// Dialer opens subscriptions against the configured websocket endpoint
type Dialer struct {
	cfg   config.WebSocketConfig
	token string
}

// NewDialer creates a Dialer bound to a session token
func NewDialer(cfg config.WebSocketConfig, token string) *Dialer {
	return &Dialer{cfg: cfg, token: token}
}

// Subscribe dials the user's event channel and pumps every frame into
// the ingestor until the connection closes
func (d *Dialer) Subscribe(ctx context.Context, userId string, ing *Ingestor) (io.Closer, error) {
	conn, err := Dial(ctx, d.cfg, d.token, userId)
	if err != nil {
		return nil, err
	}

	sub := &Subscription{conn: conn, done: make(chan struct{})}

	go func() {
		defer close(sub.done)
		for {
			data, err := conn.ReadMessage()
			if err != nil {
				log.CtxDebug(ctx, "realtime read loop ended: user_id=%s, error=%v", userId, err)
				conn.Close()
				return
			}
			ing.HandleFrame(ctx, data)
		}
	}()

	log.CtxInfo(ctx, "realtime subscription opened: user_id=%s", userId)
	return sub, nil
}
