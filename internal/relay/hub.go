// Package relay coordinates session registration, presence fan-out, and
// connection cleanup for the MapChat system via the Hub type.
package relay

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Hub is the room coordinator. A single event loop goroutine owns all
// mutations of the session registry and presence store: connection tasks
// communicate with it over channels, so broadcast iteration never races with
// registration or teardown. Per-sender frame ordering is preserved because
// each connection's read pump feeds the loop sequentially.
type Hub struct {
	registry *Registry
	presence *PresenceStore
	cfg      Config

	register   chan *Client
	unregister chan *Client
	inbound    chan inboundEvent

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	log    zerolog.Logger
}

// inboundEvent pairs a raw frame with the session it arrived on.
type inboundEvent struct {
	sender  *Client
	payload []byte
}

// NewHub creates a Hub ready to manage sessions. Run must be started in its
// own goroutine before clients are registered.
func NewHub(cfg Config, log zerolog.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		registry:   NewRegistry(),
		presence:   NewPresenceStore(),
		cfg:        cfg,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		inbound:    make(chan inboundEvent),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		log:        log.With().Str("component", "hub").Logger(),
	}
}

// Presence exposes the presence store read side.
func (h *Hub) Presence() *PresenceStore {
	return h.presence
}

// Register hands a new session to the event loop. It fails only when the hub
// is shutting down.
func (h *Hub) Register(c *Client) error {
	select {
	case h.register <- c:
		return nil
	case <-h.ctx.Done():
		return ErrShuttingDown
	}
}

// requestUnregister asks the loop to tear a session down. Safe to call more
// than once per session; teardown itself is idempotent.
func (h *Hub) requestUnregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.ctx.Done():
	}
}

// submit funnels an inbound frame into the event loop, preserving arrival
// order per sender. It reports false once the hub is shutting down.
func (h *Hub) submit(c *Client, payload []byte) bool {
	select {
	case h.inbound <- inboundEvent{sender: c, payload: payload}:
		return true
	case <-h.ctx.Done():
		return false
	}
}

// Run is the hub's main event loop. It should be called in a separate
// goroutine as it runs until Shutdown.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.registry.Close()
			h.closeAllSessions()
			return

		case c := <-h.register:
			if c == nil {
				h.log.Warn().Msg("received nil client registration; skipping")
				continue
			}
			h.onConnect(c)

		case c := <-h.unregister:
			h.teardown(c)

		case ev := <-h.inbound:
			h.route(ev.sender, ev.payload)
		}
	}
}

// onConnect registers the session, starts its pumps, and delivers the init
// snapshot. The snapshot is read after registration, so a joiner may already
// appear in its own users list; clients filter themselves out.
func (h *Hub) onConnect(c *Client) {
	if err := h.registry.Register(c); err != nil {
		h.log.Error().Err(err).Str("id", c.id).Msg("session registration rejected")
		if c.conn != nil {
			_ = c.conn.Close()
		}
		return
	}
	h.log.Info().Str("id", c.id).Str("addr", c.addr).Int("total", h.registry.Len()).Msg("participant connected")

	if c.conn != nil {
		h.wg.Add(2)
		go func() {
			defer h.wg.Done()
			c.writePump()
		}()
		go func() {
			defer h.wg.Done()
			c.readPump()
		}()
	}

	h.sendFrame(c, initFrame{
		Type:   TypeInit,
		UserID: c.id,
		Users:  h.presence.Snapshot(),
	})
}

// teardown removes all state for a session and notifies the remaining
// participants. It runs its side effects exactly once per session no matter
// how many paths trigger it: the registry's removal report is the guard.
func (h *Hub) teardown(c *Client) {
	if c == nil || !h.registry.Unregister(c.id) {
		return
	}

	var name *string
	if n, ok := h.presence.Name(c.id); ok {
		name = &n
	}
	h.presence.Remove(c.id)

	c.closed = true
	close(c.send)
	h.log.Info().Str("id", c.id).Int("total", h.registry.Len()).Msg("participant disconnected")

	h.broadcastFrame(userLeftFrame{Type: TypeUserLeft, UserID: c.id, Name: name}, "")
}

// deliver queues a frame on a session's send channel without blocking. A
// full buffer or an already-closed session counts as a failed write.
func (h *Hub) deliver(c *Client, payload []byte) bool {
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// sendFrame marshals and delivers a frame to one session, tearing the
// session down if the write fails.
func (h *Hub) sendFrame(c *Client, frame any) {
	payload, err := json.Marshal(frame)
	if err != nil {
		h.log.Error().Err(err).Msg("marshaling outbound frame")
		return
	}
	if !h.deliver(c, payload) {
		h.log.Warn().Str("id", c.id).Msg("send failed; tearing session down")
		h.teardown(c)
	}
}

// broadcastFrame fans a frame out to every session except excludeID. The
// recipient set is snapshotted at call time, so sessions joining mid-fan-out
// do not receive the frame. Sessions that fail the write are torn down after
// the loop without aborting delivery to the others.
func (h *Hub) broadcastFrame(frame any, excludeID string) {
	payload, err := json.Marshal(frame)
	if err != nil {
		h.log.Error().Err(err).Msg("marshaling broadcast frame")
		return
	}

	var failed []*Client
	for _, c := range h.registry.Snapshot(excludeID) {
		if !h.deliver(c, payload) {
			failed = append(failed, c)
		}
	}
	for _, c := range failed {
		h.log.Warn().Str("id", c.id).Msg("broadcast write failed; tearing session down")
		h.teardown(c)
	}
}

// closeAllSessions closes every live connection during shutdown. No userLeft
// frames are broadcast; everyone is leaving.
func (h *Hub) closeAllSessions() {
	clients := h.registry.Snapshot("")
	for _, c := range clients {
		if c.conn != nil {
			if err := c.conn.Close(); err != nil && !isExpectedCloseError(err) {
				h.log.Error().Err(err).Str("id", c.id).Msg("closing client connection")
			}
		}
	}
	h.log.Info().Int("count", len(clients)).Msg("closed all client connections")
}

// Shutdown stops the event loop and waits for all connection goroutines to
// finish, or until the timeout is reached.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.log.Info().Msg("initiating hub shutdown")

	h.cancel()
	<-h.done

	finished := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		h.log.Info().Msg("hub shutdown completed")
		return nil
	case <-time.After(timeout):
		h.log.Warn().Msg("hub shutdown timeout reached; some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
