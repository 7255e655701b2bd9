package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/crneirav-code/juegoBE/game/config"
	"github.com/crneirav-code/juegoBE/game/engine"
	"github.com/crneirav-code/juegoBE/game/loop"
	"github.com/crneirav-code/juegoBE/game/service"
	"github.com/crneirav-code/juegoBE/game/session"
)

func runHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub
}

func receive(t *testing.T, ch <-chan []byte) *Message {
	t.Helper()
	select {
	case data := <-ch:
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("Failed to decode message: %v", err)
		}
		return &msg
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for message")
		return nil
	}
}

func waitForClients(t *testing.T, hub *Hub, sessionID string, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.ClientCount(sessionID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Expected %d clients for %s, got %d", want, sessionID, hub.ClientCount(sessionID))
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if hub.broadcast == nil {
		t.Error("Hub broadcast channel is nil")
	}
	if hub.register == nil {
		t.Error("Hub register channel is nil")
	}
	if hub.unregister == nil {
		t.Error("Hub unregister channel is nil")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()

	client := &Client{
		hub:       hub,
		sessionID: "test-session",
		send:      make(chan []byte, 256),
	}

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}
	if len(hub.sessions["test-session"]) != 1 {
		t.Errorf("Expected 1 client in session, got %d", len(hub.sessions["test-session"]))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()

	client := &Client{
		hub:       hub,
		sessionID: "test-session",
		send:      make(chan []byte, 256),
	}

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Empty session should be removed")
	}

	// The send channel is closed
	if _, ok := <-client.send; ok {
		t.Error("Expected client send channel to be closed")
	}
}

func TestHubBroadcastToSession(t *testing.T) {
	hub := runHub(t)

	watcher := &Client{hub: hub, sessionID: "abcd", send: make(chan []byte, 8)}
	other := &Client{hub: hub, sessionID: "zzzz", send: make(chan []byte, 8)}
	hub.register <- watcher
	hub.register <- other

	state := &engine.GameState{Phase: engine.PhaseActive, PlayerPos: engine.Position{X: 2, Y: 1}}
	hub.BroadcastToSession("abcd", state)

	msg := receive(t, watcher.send)
	if msg.Event != "state_update" {
		t.Errorf("Expected state_update event, got %s", msg.Event)
	}
	if msg.GameState == nil || msg.GameState.PlayerPos.X != 2 {
		t.Errorf("Expected game state with player at x=2, got %+v", msg.GameState)
	}

	select {
	case <-other.send:
		t.Error("Client of another session should not receive the update")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubBroadcastEvent(t *testing.T) {
	hub := runHub(t)

	client := &Client{hub: hub, sessionID: "evnt", send: make(chan []byte, 8)}
	hub.register <- client

	hub.BroadcastEvent("evnt", "round_concluded", map[string]string{"outcome": "won"})

	msg := receive(t, client.send)
	if msg.Event != "round_concluded" {
		t.Errorf("Expected round_concluded event, got %s", msg.Event)
	}
}

func TestHubBroadcastNeverBlocks(t *testing.T) {
	hub := NewHub() // not running

	done := make(chan struct{})
	go func() {
		for i := 0; i < broadcastBuffer+50; i++ {
			hub.BroadcastToSession("full", &engine.GameState{})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("BroadcastToSession blocked on a saturated hub")
	}
}

func TestWebSocketUpgrade(t *testing.T) {
	hub := runHub(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=up01"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}

	waitForClients(t, hub, "up01", 1)

	hub.BroadcastToSession("up01", &engine.GameState{Phase: engine.PhaseIdle})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}
	if msg.SessionID != "up01" {
		t.Errorf("Expected session up01, got %s", msg.SessionID)
	}

	conn.Close()
	waitForClients(t, hub, "up01", 0)
}

func TestHubShutdownReleasesClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	defer cancel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=sd01"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()
	waitForClients(t, hub, "sd01", 1)

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Hub did not stop")
	}

	// The hub closes the client's connection on the way out
	conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Expected the connection to be closed after shutdown")
	}

	left := make(chan struct{})
	go func() {
		(&Client{hub: hub, sessionID: "sd01"}).leave()
		close(left)
	}()
	select {
	case <-left:
	case <-time.After(time.Second):
		t.Fatal("Client blocked unregistering from a stopped hub")
	}

	if n := hub.ClientCount("sd01"); n != 0 {
		t.Errorf("Expected 0 clients after shutdown, got %d", n)
	}
}

func TestWebSocketCommands(t *testing.T) {
	hub := runHub(t)

	configs, err := config.NewManager(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	sessions := session.NewManager(
		session.WithNotifier(hub.BroadcastToSession),
		session.WithRunnerOptions(loop.WithManualTicks()),
	)
	t.Cleanup(sessions.Close)
	svc := service.NewGameService(sessions, configs)
	hub.AttachService(svc)

	info, err := svc.CreateSession(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, info.ID)
	}))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()
	waitForClients(t, hub, info.ID, 1)

	// readUntil skips messages until one with the wanted event arrives
	readUntil := func(event string) Message {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		for {
			var msg Message
			if err := conn.ReadJSON(&msg); err != nil {
				t.Fatalf("Failed waiting for %s: %v", event, err)
			}
			if msg.Event == event {
				return msg
			}
		}
	}

	// The broadcast and the reply may arrive in either order
	conn.WriteJSON(Command{Action: "start"})
	seen := map[string]Message{}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for len(seen) < 2 {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("Failed waiting for start messages: %v", err)
		}
		if msg.Event == "state_update" || msg.Event == "start_result" {
			seen[msg.Event] = msg
		}
	}
	if seen["state_update"].GameState.Phase != engine.PhaseActive {
		t.Errorf("Expected active round, got %s", seen["state_update"].GameState.Phase)
	}

	conn.WriteJSON(Command{Action: "move", Direction: "right"})
	result := readUntil("move_result")
	data, _ := json.Marshal(result.Data)
	var move service.MoveResult
	if err := json.Unmarshal(data, &move); err != nil {
		t.Fatal(err)
	}
	if !move.Success {
		t.Errorf("Expected move to succeed: %s", move.Message)
	}

	conn.WriteJSON(Command{Action: "fly"})
	errMsg := readUntil("error")
	if !strings.Contains(errMsg.Data.(string), "unknown action") {
		t.Errorf("Expected unknown action error, got %v", errMsg.Data)
	}
}
