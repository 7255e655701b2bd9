package session

import (
	"context"
	"errors"
	"testing"

	"github.com/crneirav-code/juegoBE/game/engine"
	"github.com/crneirav-code/juegoBE/game/loop"
)

func TestManagerWithPersistence(t *testing.T) {
	tempDir := t.TempDir()
	ctx := context.Background()

	persistence, err := NewFilePersistence(tempDir)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}

	newManager := func(t *testing.T) *Manager {
		m := NewManagerWithPersistence(persistence, WithRunnerOptions(loop.WithManualTicks()))
		t.Cleanup(m.Close)
		return m
	}
	manager := newManager(t)

	t.Run("Create Session Auto-Saves", func(t *testing.T) {
		session, err := manager.Create(ctx, "auto1", "test", createTestConfig())
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}

		if !persistence.Exists(ctx, session.ID) {
			t.Error("Session should be auto-saved on creation")
		}

		record, err := persistence.Load(ctx, session.ID)
		if err != nil {
			t.Fatalf("Failed to load auto-saved session: %v", err)
		}
		if record.ID != session.ID {
			t.Errorf("Expected ID %s, got %s", session.ID, record.ID)
		}
		if record.GameState.Phase != engine.PhaseIdle {
			t.Errorf("Expected idle phase, got %s", record.GameState.Phase)
		}
	})

	t.Run("Get Session Loads from Persistence", func(t *testing.T) {
		// New manager has no in-memory sessions
		manager2 := newManager(t)

		session, err := manager2.Get(ctx, "auto1")
		if err != nil {
			t.Fatalf("Failed to lazy-load session: %v", err)
		}
		if session.ConfigID() != "test" {
			t.Errorf("Expected config ID 'test', got '%s'", session.ConfigID())
		}
		if manager2.Count() != 1 {
			t.Errorf("Expected session to be cached in memory, got count %d", manager2.Count())
		}
	})

	t.Run("Save Method Persists Round State", func(t *testing.T) {
		session, err := manager.Create(ctx, "save1", "test", createTestConfig())
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if _, err := session.Runner.StartRound(ctx, nil); err != nil {
			t.Fatal(err)
		}
		if _, _, err := session.Runner.Move(ctx, engine.DirectionDown); err != nil {
			t.Fatal(err)
		}
		if err := manager.Save(ctx, "save1"); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}

		// Restore in a fresh manager and keep playing
		manager2 := newManager(t)
		restored, err := manager2.Get(ctx, "save1")
		if err != nil {
			t.Fatalf("Failed to restore session: %v", err)
		}
		state, err := restored.Runner.Snapshot(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if state.Phase != engine.PhaseActive {
			t.Errorf("Expected active round after restore, got %s", state.Phase)
		}
		if state.PlayerPos != (engine.Position{X: 1, Y: 2}) {
			t.Errorf("Expected player at (1,2), got %v", state.PlayerPos)
		}

		result, _, err := restored.Runner.Move(ctx, engine.DirectionDown)
		if err != nil {
			t.Fatal(err)
		}
		if !result.Accepted {
			t.Error("Expected restored round to accept commands")
		}
	})

	t.Run("Delete Removes from Persistence", func(t *testing.T) {
		if _, err := manager.Create(ctx, "del1", "test", createTestConfig()); err != nil {
			t.Fatal(err)
		}
		if err := manager.Delete(ctx, "del1"); err != nil {
			t.Fatalf("Failed to delete session: %v", err)
		}
		if persistence.Exists(ctx, "del1") {
			t.Error("Expected session file to be removed")
		}

		// Persisted-only sessions can be deleted too
		if err := manager.DeleteFromMemory("auto1"); err != nil {
			t.Fatal(err)
		}
		if err := manager.Delete(ctx, "auto1"); err != nil {
			t.Errorf("Expected delete of persisted-only session to succeed, got %v", err)
		}
		if _, err := manager.Get(ctx, "auto1"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("Load Persisted Sessions on Startup", func(t *testing.T) {
		if err := manager.SaveAllSessions(ctx); err != nil {
			t.Fatalf("Failed to save all sessions: %v", err)
		}

		manager2 := newManager(t)
		if err := manager2.LoadPersistedSessions(ctx); err != nil {
			t.Fatalf("Failed to load persisted sessions: %v", err)
		}
		if manager2.Count() != manager.Count() {
			t.Errorf("Expected %d sessions, got %d", manager.Count(), manager2.Count())
		}

		// Loading twice does not duplicate
		if err := manager2.LoadPersistedSessions(ctx); err != nil {
			t.Fatal(err)
		}
		if manager2.Count() != manager.Count() {
			t.Errorf("Expected %d sessions after reload, got %d", manager.Count(), manager2.Count())
		}
	})

	t.Run("Persisted Config Survives Missing File", func(t *testing.T) {
		custom := createTestConfig()
		custom.Name = "one-off"
		if _, err := manager.Create(ctx, "cust", "one-off", custom); err != nil {
			t.Fatal(err)
		}

		manager2 := newManager(t)
		restored, err := manager2.Get(ctx, "cust")
		if err != nil {
			t.Fatalf("Failed to restore session: %v", err)
		}
		if restored.Config().Name != "one-off" {
			t.Errorf("Expected stored config 'one-off', got '%s'", restored.Config().Name)
		}
	})
}
