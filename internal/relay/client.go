// Package relay manages individual WebSocket sessions, handling read/write
// pumps, rate limiting, and lifecycle control for each connection.
package relay

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Client is the live transport binding for one participant. The id is minted
// at construction, stays stable for the connection's lifetime, and is never
// reused; a reconnecting user always becomes a new participant.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
	addr string

	// closed is owned by the hub event loop; it marks the send channel as
	// unusable once teardown has run.
	closed bool

	maxMessageSize int64
	rateLimiter    *rateLimiter
	rateLimit      RateLimitConfig
	log            zerolog.Logger
}

// NewClient binds a WebSocket connection to a freshly minted participant id.
// The send channel is buffered so the hub can fan out frames without blocking
// on slow consumers.
func NewClient(conn *websocket.Conn, hub *Hub, addr string) *Client {
	cfg := hub.cfg
	if conn != nil {
		conn.SetReadLimit(cfg.MaxMessageSize)
	}

	id := uuid.NewString()
	return &Client{
		id:             id,
		conn:           conn,
		send:           make(chan []byte, 256),
		hub:            hub,
		addr:           addr,
		maxMessageSize: cfg.MaxMessageSize,
		rateLimiter:    newRateLimiter(cfg.RateLimitBurst, cfg.RateLimitRefill),
		rateLimit:      cfg.RateLimit(),
		log:            hub.log.With().Str("id", id).Str("addr", addr).Logger(),
	}
}

// ID returns the opaque participant id for this session.
func (c *Client) ID() string {
	return c.id
}

// SendChan exposes the outbound frame channel read-only.
func (c *Client) SendChan() <-chan []byte {
	return c.send
}

// isExpectedCloseError checks if an error is expected during connection
// closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe")
}

// setupReadConnection configures read deadlines and the pong handler. A peer
// that stops answering pings is reaped after pongWait.
func (c *Client) setupReadConnection() {
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.Error().Err(err).Msg("setting initial read deadline")
	}
	c.conn.SetPongHandler(func(string) error {
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.log.Error().Err(err).Msg("setting read deadline in pong handler")
		}
		return nil
	})
}

// logReadError classifies a read failure so routine disconnects do not show
// up as errors in the logs.
func (c *Client) logReadError(err error) {
	switch {
	case errors.Is(err, websocket.ErrReadLimit):
		c.log.Warn().Int64("limit", c.maxMessageSize).Msg("inbound frame exceeded maximum size")
	case websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure):
		c.log.Info().Err(err).Msg("participant disconnected")
	case errors.Is(err, io.EOF), isExpectedCloseError(err):
		c.log.Info().Err(err).Msg("connection closed")
	default:
		c.log.Warn().Err(err).Msg("websocket read error")
	}
}

// readPump reads frames off the wire and funnels them into the hub event
// loop. It exits on the first read failure and always hands the session to
// the hub for teardown.
func (c *Client) readPump() {
	defer func() {
		c.hub.requestUnregister(c)
		if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
			c.log.Error().Err(err).Msg("closing connection in readPump")
		}
	}()

	c.setupReadConnection()

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			c.logReadError(err)
			return
		}

		if c.rateLimiter != nil && !c.rateLimiter.allow() {
			c.log.Warn().
				Int("burst", c.rateLimit.Burst).
				Dur("interval", c.rateLimit.RefillInterval).
				Msg("rate limit exceeded; discarding frame")
			continue
		}

		if !c.hub.submit(c, payload) {
			return
		}
	}
}

// writePump drains the send channel onto the wire and keeps the connection
// alive with periodic pings. It exits when the hub closes the send channel
// or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
			c.log.Error().Err(err).Msg("closing connection in writePump")
		}
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if !c.writeFrame(payload, ok) {
				return
			}
		case <-ticker.C:
			if !c.writePing() {
				return
			}
		}
	}
}

// writeFrame writes a single outbound frame. Each frame is its own WebSocket
// text message; frames are never coalesced.
func (c *Client) writeFrame(payload []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.log.Error().Err(err).Msg("setting write deadline")
		return false
	}

	if !ok {
		// Hub tore this session down; tell the peer we are done.
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil && !isExpectedCloseError(err) {
			c.log.Error().Err(err).Msg("writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		if !isExpectedCloseError(err) {
			c.log.Error().Err(err).Msg("writing frame")
		}
		return false
	}
	return true
}

func (c *Client) writePing() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.log.Error().Err(err).Msg("setting write deadline for ping")
		return false
	}
	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		if !isExpectedCloseError(err) {
			c.log.Error().Err(err).Msg("writing ping")
		}
		return false
	}
	return true
}
