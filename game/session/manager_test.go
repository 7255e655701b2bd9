package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/crneirav-code/juegoBE/game/engine"
	"github.com/crneirav-code/juegoBE/game/loop"
)

func createTestConfig() *engine.GameConfig {
	greedy := 1.0
	return &engine.GameConfig{
		Name:        "Test Config",
		Description: "Test configuration",
		Layout: []string{
			"#####",
			"#S.P#",
			"#...#",
			"#..G#",
			"#####",
		},
		TickIntervalMs:    100,
		GreedyProbability: &greedy,
		Messages: engine.Messages{
			Welcome: "Welcome!",
			Won:     "Escaped in %d moves",
			Lost:    "Caught after %d moves",
			Blocked: "Wall!",
		},
	}
}

func newTestManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	opts = append([]Option{WithRunnerOptions(loop.WithManualTicks())}, opts...)
	m := NewManager(opts...)
	t.Cleanup(m.Close)
	return m
}

func TestManager_Create(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()
	config := createTestConfig()

	t.Run("create with custom ID", func(t *testing.T) {
		session, err := manager.Create(ctx, "test123", "test", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.ID != "test123" {
			t.Errorf("Expected ID 'test123', got '%s'", session.ID)
		}
		if session.ConfigID() != "test" {
			t.Errorf("Expected config ID 'test', got '%s'", session.ConfigID())
		}
		if session.Runner == nil {
			t.Error("Expected session to have a runner")
		}
	})

	t.Run("create with auto-generated ID", func(t *testing.T) {
		session, err := manager.Create(ctx, "", "test", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if len(session.ID) != 4 {
			t.Errorf("Expected 4-character ID, got '%s'", session.ID)
		}
	})

	t.Run("duplicate session ID", func(t *testing.T) {
		_, err := manager.Create(ctx, "test123", "test", config)
		if err != ErrSessionAlreadyExists {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("case-insensitive duplicate check", func(t *testing.T) {
		_, err := manager.Create(ctx, "TEST123", "test", config)
		if err != ErrSessionAlreadyExists {
			t.Errorf("Expected ErrSessionAlreadyExists for case variant, got %v", err)
		}
	})

	t.Run("invalid session ID", func(t *testing.T) {
		_, err := manager.Create(ctx, "../etc", "test", config)
		if !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("Expected ErrInvalidSessionID, got %v", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		bad := createTestConfig()
		bad.Layout = []string{"###", "#S#", "###"}
		_, err := manager.Create(ctx, "badcfg", "test", bad)
		if !errors.Is(err, engine.ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestManager_Get(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	created, err := manager.Create(ctx, "MixedCase", "test", createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	t.Run("get existing session", func(t *testing.T) {
		session, err := manager.Get(ctx, "MixedCase")
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}
		if session != created {
			t.Error("Expected the same session instance")
		}
	})

	t.Run("case-insensitive get", func(t *testing.T) {
		session, err := manager.Get(ctx, "mixedcase")
		if err != nil {
			t.Fatalf("Failed to get session case-insensitively: %v", err)
		}
		if session != created {
			t.Error("Expected the same session instance")
		}
	})

	t.Run("get non-existent session", func(t *testing.T) {
		_, err := manager.Get(ctx, "nope")
		if !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestManager_GetOrCreate(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	first, err := manager.GetOrCreate(ctx, "gc01", "test", createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	second, err := manager.GetOrCreate(ctx, "gc01", "test", createTestConfig())
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if first != second {
		t.Error("Expected GetOrCreate to return the existing session")
	}
	if manager.Count() != 1 {
		t.Errorf("Expected 1 session, got %d", manager.Count())
	}
}

func TestManager_Delete(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	session, err := manager.Create(ctx, "Del1", "test", createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	t.Run("delete stops the round loop", func(t *testing.T) {
		if err := manager.Delete(ctx, "del1"); err != nil {
			t.Fatalf("Failed to delete session: %v", err)
		}
		select {
		case <-session.Runner.Done():
		case <-time.After(time.Second):
			t.Fatal("Expected runner to stop after delete")
		}
		if _, err := manager.Get(ctx, "del1"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound after delete, got %v", err)
		}
	})

	t.Run("delete non-existent session", func(t *testing.T) {
		if err := manager.Delete(ctx, "ghost"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestManager_List(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	ids := []string{"aaaa", "bbbb", "cccc"}
	for _, id := range ids {
		if _, err := manager.Create(ctx, id, "test", createTestConfig()); err != nil {
			t.Fatalf("Failed to create session %s: %v", id, err)
		}
	}

	sessions := manager.List()
	if len(sessions) != len(ids) {
		t.Fatalf("Expected %d sessions, got %d", len(ids), len(sessions))
	}

	found := make(map[string]bool)
	for _, s := range sessions {
		found[s.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			t.Errorf("Expected session %s in list", id)
		}
	}
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	old, err := manager.Create(ctx, "old1", "test", createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if _, err := manager.Create(ctx, "new1", "test", createTestConfig()); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	removed := manager.CleanupExpiredSessions(20 * time.Millisecond)
	if removed != 1 {
		t.Errorf("Expected 1 expired session, got %d", removed)
	}
	if manager.Count() != 1 {
		t.Errorf("Expected 1 remaining session, got %d", manager.Count())
	}
	select {
	case <-old.Runner.Done():
	case <-time.After(time.Second):
		t.Error("Expected expired session's runner to stop")
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	session, err := manager.Create(ctx, "touch", "test", createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	before := session.LastAccessedAt()

	time.Sleep(5 * time.Millisecond)
	if err := manager.UpdateLastAccessed("TOUCH"); err != nil {
		t.Fatalf("Failed to update last accessed: %v", err)
	}
	if !session.LastAccessedAt().After(before) {
		t.Error("Expected last accessed time to advance")
	}

	if err := manager.UpdateLastAccessed("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_NotifierReceivesUpdates(t *testing.T) {
	var mu sync.Mutex
	var got []string
	manager := newTestManager(t, WithNotifier(func(sessionID string, state *engine.GameState) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, sessionID+":"+string(state.Phase))
	}))
	ctx := context.Background()

	session, err := manager.Create(ctx, "note", "test", createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if _, err := session.Runner.StartRound(ctx, nil); err != nil {
		t.Fatalf("Failed to start round: %v", err)
	}
	if _, _, err := session.Runner.Move(ctx, engine.DirectionDown); err != nil {
		t.Fatalf("Failed to move: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 {
		t.Fatalf("Expected 2 notifications, got %v", got)
	}
	if got[0] != "note:active" {
		t.Errorf("Expected first notification 'note:active', got %s", got[0])
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 20)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session, err := manager.Create(ctx, "", "test", createTestConfig())
			if err != nil {
				errs <- err
				return
			}
			if _, err := manager.Get(ctx, session.ID); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		// A generated ID may collide between two concurrent creates
		if !errors.Is(err, ErrSessionAlreadyExists) {
			t.Errorf("Unexpected error during concurrent access: %v", err)
		}
	}
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := newTestManager(t)
	ctx := context.Background()

	a, _ := manager.Create(ctx, "isoa", "test", createTestConfig())
	b, _ := manager.Create(ctx, "isob", "test", createTestConfig())

	if _, err := a.Runner.StartRound(ctx, nil); err != nil {
		t.Fatalf("Failed to start round: %v", err)
	}
	if _, _, err := a.Runner.Move(ctx, engine.DirectionDown); err != nil {
		t.Fatalf("Failed to move: %v", err)
	}

	stateB, err := b.Runner.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Failed to snapshot: %v", err)
	}
	if stateB.Phase != engine.PhaseIdle {
		t.Errorf("Expected session b to stay idle, got %s", stateB.Phase)
	}
}

func TestManager_SessionIDGeneration(t *testing.T) {
	manager := newTestManager(t)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := manager.generateSessionID()
		if len(id) != 4 {
			t.Errorf("Expected 4-character ID, got '%s'", id)
		}
		if strings.ToLower(id) != id {
			t.Errorf("Expected lowercase hex ID, got '%s'", id)
		}
		seen[id] = true
	}
	if len(seen) < 40 {
		t.Errorf("Expected mostly unique IDs, got %d unique of 50", len(seen))
	}
}
