package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/crneirav-code/juegoBE/game/engine"
)

func createTestConfigDir(t *testing.T) string {
	dir, err := os.MkdirTemp("", "config-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	return dir
}

func createValidConfig() *engine.GameConfig {
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

func writeConfigFile(t *testing.T, dir, name string, config *engine.GameConfig) {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal config: %v", err)
	}

	path := filepath.Join(dir, name+".json")
	err = os.WriteFile(path, data, 0644)
	if err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := createTestConfigDir(t)
		defer os.RemoveAll(dir)

		classic := createValidConfig()
		classic.Name = "Classic"
		writeConfigFile(t, dir, "classic", classic)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if manager.GetDefault().Name != "Classic" {
			t.Errorf("Expected classic.json as default, got '%s'", manager.GetDefault().Name)
		}
		if manager.DefaultID() != "classic" {
			t.Errorf("Expected default ID 'classic', got '%s'", manager.DefaultID())
		}
	})

	t.Run("non-existent directory", func(t *testing.T) {
		_, err := NewManager("/non/existent/path")
		if err == nil {
			t.Error("Expected error for non-existent directory")
		}
	})

	t.Run("missing default config", func(t *testing.T) {
		dir := createTestConfigDir(t)
		defer os.RemoveAll(dir)

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("NewManager should succeed even without config files, got error: %v", err)
		}

		// Falls back to the built-in maze
		defaultConfig := manager.GetDefault()
		if defaultConfig == nil {
			t.Fatal("Expected default config to be available")
		}
		if defaultConfig.Name != "classic" {
			t.Errorf("Expected built-in classic config, got '%s'", defaultConfig.Name)
		}
	})

	t.Run("invalid classic file", func(t *testing.T) {
		dir := createTestConfigDir(t)
		defer os.RemoveAll(dir)

		if err := os.WriteFile(filepath.Join(dir, "classic.json"), []byte("{not json"), 0644); err != nil {
			t.Fatal(err)
		}

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Expected fallback to built-in default, got error: %v", err)
		}
		if err := engine.ValidateGameConfig(manager.GetDefault()); err != nil {
			t.Errorf("Fallback default should be valid: %v", err)
		}
	})
}

func TestManager_LoadConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	easyConfig := createValidConfig()
	easyConfig.Name = "Easy"
	easyConfig.TickIntervalMs = 900
	writeConfigFile(t, dir, "easy", easyConfig)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("load existing config", func(t *testing.T) {
		config, err := manager.LoadConfig("easy")
		if err != nil {
			t.Fatalf("Failed to load config: %v", err)
		}
		if config.Name != "Easy" {
			t.Errorf("Expected config name 'Easy', got '%s'", config.Name)
		}
		if config.TickIntervalMs != 900 {
			t.Errorf("Expected tick interval 900, got %d", config.TickIntervalMs)
		}
	})

	t.Run("load with .json extension", func(t *testing.T) {
		config, err := manager.LoadConfig("easy.json")
		if err != nil {
			t.Fatalf("Failed to load config with extension: %v", err)
		}
		if config.Name != "Easy" {
			t.Errorf("Expected config name 'Easy', got '%s'", config.Name)
		}
	})

	t.Run("load from cache", func(t *testing.T) {
		config1, _ := manager.LoadConfig("easy")
		config2, err := manager.LoadConfig("easy")
		if err != nil {
			t.Fatalf("Failed to load config from cache: %v", err)
		}

		// Should be the same pointer (cached)
		if config1 != config2 {
			t.Error("Expected config to be loaded from cache")
		}
	})

	t.Run("load non-existent config", func(t *testing.T) {
		_, err := manager.LoadConfig("non-existent")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("Expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("classic without file", func(t *testing.T) {
		config, err := manager.LoadConfig("classic")
		if err != nil {
			t.Fatalf("Expected built-in classic config, got %v", err)
		}
		if len(config.Pursuers) != 6 {
			t.Errorf("Expected 6 pursuers, got %d", len(config.Pursuers))
		}
	})

	t.Run("load invalid config", func(t *testing.T) {
		bad := createValidConfig()
		bad.Layout = []string{"#####", "#S..#", "#####"} // no goal
		writeConfigFile(t, dir, "bad", bad)

		_, err := manager.LoadConfig("bad")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("load malformed json", func(t *testing.T) {
		if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := manager.LoadConfig("broken")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestManager_ListConfigs(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	writeConfigFile(t, dir, "tiny", createValidConfig())

	bad := createValidConfig()
	bad.Name = ""
	writeConfigFile(t, dir, "nameless", bad)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	configs, err := manager.ListConfigs()
	if err != nil {
		t.Fatalf("Failed to list configs: %v", err)
	}

	// tiny plus the built-in classic; nameless is skipped
	if len(configs) != 2 {
		t.Fatalf("Expected 2 configs, got %d", len(configs))
	}
	if configs[0].ConfigID != "classic" || configs[1].ConfigID != "tiny" {
		t.Errorf("Expected sorted [classic tiny], got [%s %s]", configs[0].ConfigID, configs[1].ConfigID)
	}

	tiny := configs[1]
	if tiny.Filename != "tiny.json" {
		t.Errorf("Expected filename tiny.json, got %s", tiny.Filename)
	}
	if tiny.Width != 5 || tiny.Height != 5 {
		t.Errorf("Expected 5x5, got %dx%d", tiny.Width, tiny.Height)
	}
	if tiny.Pursuers != 1 {
		t.Errorf("Expected 1 pursuer, got %d", tiny.Pursuers)
	}
	if tiny.TickIntervalMs != 100 {
		t.Errorf("Expected tick 100ms, got %d", tiny.TickIntervalMs)
	}
	if tiny.Greedy != 1.0 {
		t.Errorf("Expected greedy 1.0, got %v", tiny.Greedy)
	}
}

func TestManager_SaveConfig(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	t.Run("save and reload", func(t *testing.T) {
		config := createValidConfig()
		config.Name = "Saved"
		if err := manager.SaveConfig("saved", config); err != nil {
			t.Fatalf("Failed to save config: %v", err)
		}

		if _, err := os.Stat(filepath.Join(dir, "saved.json")); err != nil {
			t.Fatalf("Expected saved.json on disk: %v", err)
		}

		if err := manager.RefreshCache(); err != nil {
			t.Fatalf("Failed to refresh cache: %v", err)
		}
		loaded, err := manager.LoadConfig("saved")
		if err != nil {
			t.Fatalf("Failed to load saved config: %v", err)
		}
		if loaded.Name != "Saved" {
			t.Errorf("Expected name 'Saved', got '%s'", loaded.Name)
		}
	})

	t.Run("reject invalid", func(t *testing.T) {
		config := createValidConfig()
		config.TickIntervalMs = -5
		err := manager.SaveConfig("negative", config)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
		if _, statErr := os.Stat(filepath.Join(dir, "negative.json")); !os.IsNotExist(statErr) {
			t.Error("Invalid config should not be written")
		}
	})
}

func TestManager_SetDefault(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	tiny := createValidConfig()
	tiny.Name = "Tiny"
	writeConfigFile(t, dir, "tiny", tiny)

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := manager.SetDefault("tiny"); err != nil {
		t.Fatalf("Failed to set default: %v", err)
	}
	if manager.DefaultID() != "tiny" || manager.GetDefault().Name != "Tiny" {
		t.Errorf("Expected tiny default, got %s/%s", manager.DefaultID(), manager.GetDefault().Name)
	}

	if err := manager.SetDefault("missing"); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	dir := createTestConfigDir(t)
	defer os.RemoveAll(dir)

	for i := 1; i <= 5; i++ {
		config := createValidConfig()
		config.Name = "Config" + string(rune('0'+i))
		writeConfigFile(t, dir, "config"+string(rune('0'+i)), config)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	// Test concurrent loading
	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			configName := "config" + string(rune('0'+((id%5)+1)))
			if _, err := manager.LoadConfig(configName); err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}

	// 5 files plus the built-in classic
	if manager.Count() != 6 {
		t.Errorf("Expected 6 configs in cache, got %d", manager.Count())
	}
}

// Count returns the number of cached configs (test helper)
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}
