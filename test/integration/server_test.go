package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mapchat/relay/internal/account"
	"github.com/mapchat/relay/internal/relay"
	"github.com/mapchat/relay/test/testhelpers"
)

// TestFullServerComposition verifies the account API and the relay endpoint
// coexist on one mux the way cmd/server wires them.
func TestFullServerComposition(t *testing.T) {
	cfg := relay.NewConfig()
	cfg.AllowedOrigins = []string{"*"}

	hub := relay.NewHub(*cfg, zerolog.Nop())
	go hub.Run()

	store, err := account.OpenInMemory()
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	issuer := account.NewTokenIssuer("test-secret", time.Hour)
	accounts := account.NewHandler(store, issuer, zerolog.Nop())

	mux := relay.SetupRoutes(hub, *cfg, zerolog.Nop())
	accounts.Register(mux)

	ts := httptest.NewServer(mux)
	t.Cleanup(func() {
		ts.Close()
		_ = hub.Shutdown(2 * time.Second)
		_ = store.Close()
	})

	// Register an account over the API side.
	payload, _ := json.Marshal(map[string]any{
		"email":    "alice@example.com",
		"username": "alice",
		"password": "long-enough-password",
	})
	resp, err := http.Post(ts.URL+"/api/register", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST /api/register: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d, want 201", resp.StatusCode)
	}

	// The relay side hands out a fresh participant id regardless of the
	// account identity; WebSocket identity stays opaque.
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/websocket"
	conn, err := testhelpers.ConnectWebSocket(wsURL)
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	defer func() { _ = conn.Close() }()

	reader := testhelpers.NewFrameReader(conn)
	init := reader.Next(t, frameWait)
	testhelpers.AssertFrameField(t, init, "type", "init")
	if init["userId"] == "" {
		t.Error("init frame missing userId")
	}
}
