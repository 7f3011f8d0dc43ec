package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/edubrasil/internal/media"
	"github.com/desertthunder/edubrasil/internal/models"
	"github.com/desertthunder/edubrasil/internal/player"
	"github.com/desertthunder/edubrasil/internal/repositories"
	"github.com/desertthunder/edubrasil/internal/shared"
	th "github.com/desertthunder/edubrasil/internal/testing"
)

func newTestRunner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()

	dir := t.TempDir()
	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(dir, "test.db")
	config.Player.DefaultTrack = filepath.Join(dir, "missing.mp3")

	output := &bytes.Buffer{}
	return NewRunner(RunnerOpts{
		Config: config,
		Logger: shared.NewLogger(io.Discard),
		Output: output,
		Audio:  media.NullOutput{},
	}), output
}

func run(r *Runner, args ...string) error {
	return r.app().Run(context.Background(), append([]string{"edubrasil"}, args...))
}

// seed writes a persisted track and one upload row into the runner's database.
func seed(t *testing.T, r *Runner, value string) {
	t.Helper()
	ctx := context.Background()

	db, err := shared.OpenDatabase(ctx, r.config.Database)
	if err != nil {
		t.Fatalf("OpenDatabase failed: %v", err)
	}
	defer db.Close()

	if err := repositories.NewSettingRepository(db).Set(ctx, r.config.Player.StorageKey, value); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := repositories.NewUploadRepository(db).Record(ctx, models.NewUpload(value, "single.mp3", "audio/mpeg", 3)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			audio := media.NullOutput{}

			runner := NewRunner(RunnerOpts{Config: config, Logger: logger, Output: output, Audio: audio})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.audio != audio {
				t.Error("expected audio to be set")
			}
		})

		t.Run("with nil options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if _, ok := runner.audio.(media.DeviceOutput); !ok {
				t.Errorf("expected device output, got %T", runner.audio)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner, _ := newTestRunner(t)

		var names []string
		for _, c := range runner.register() {
			names = append(names, c.Name)
		}
		if got := strings.Join(names, ","); got != "setup,play,serve,track" {
			t.Errorf("unexpected commands %s", got)
		}
	})
}

func TestSetup(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	runner, output := newTestRunner(t)
	if err := run(runner, "setup", "--config", "config.toml", "--demo", "demo.wav"); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	th.AssertFileExists(t, filepath.Join(dir, "config.toml"))
	th.AssertFileExists(t, filepath.Join(dir, "edubrasil.db"))
	th.AssertFileExists(t, filepath.Join(dir, "demo.wav"))

	if !strings.Contains(output.String(), "Setup complete") {
		t.Errorf("unexpected output %q", output.String())
	}
	if !strings.Contains(output.String(), `player.default_track = "demo.wav"`) {
		t.Errorf("expected default track hint, got %q", output.String())
	}

	t.Run("existing config is kept", func(t *testing.T) {
		if err := os.WriteFile("custom.toml", []byte("[storage]\ndriver = \"memory\"\n"), 0644); err != nil {
			t.Fatal(err)
		}
		runner, _ := newTestRunner(t)
		if err := run(runner, "setup", "--config", "custom.toml"); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		if runner.config.Storage.Driver != shared.StorageMemory {
			t.Errorf("expected memory driver from custom config, got %s", runner.config.Storage.Driver)
		}
		if content := th.MustReadFile(t, "custom.toml"); !strings.Contains(content, "memory") {
			t.Error("custom config should not be overwritten")
		}
	})
}

func TestTrack(t *testing.T) {
	t.Run("show", func(t *testing.T) {
		runner, output := newTestRunner(t)
		seed(t, runner, "blob:1234")

		if err := run(runner, "track", "show"); err != nil {
			t.Fatalf("track show failed: %v", err)
		}
		for _, want := range []string{"musicFile", "blob:1234", "single.mp3", "live"} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("output missing %q:\n%s", want, output.String())
			}
		}
	})

	t.Run("show json", func(t *testing.T) {
		runner, output := newTestRunner(t)
		seed(t, runner, "blob:5678")

		if err := run(runner, "track", "show", "--json"); err != nil {
			t.Fatalf("track show failed: %v", err)
		}

		var view trackView
		if err := json.Unmarshal(output.Bytes(), &view); err != nil {
			t.Fatalf("invalid JSON %q: %v", output.String(), err)
		}
		if view.Persisted != "blob:5678" || len(view.Uploads) != 1 || view.Uploads[0].Filename != "single.mp3" {
			t.Errorf("unexpected view %+v", view)
		}
	})

	t.Run("show with nothing persisted", func(t *testing.T) {
		runner, output := newTestRunner(t)

		if err := run(runner, "track", "show"); err != nil {
			t.Fatalf("track show failed: %v", err)
		}
		if !strings.Contains(output.String(), "(none)") {
			t.Errorf("expected no persisted track:\n%s", output.String())
		}
	})

	t.Run("reset requires the passphrase", func(t *testing.T) {
		runner, _ := newTestRunner(t)
		seed(t, runner, "blob:1234")

		err := run(runner, "track", "reset", "--passphrase", "guess")
		if !errors.Is(err, player.ErrWrongPassphrase) {
			t.Fatalf("expected ErrWrongPassphrase, got %v", err)
		}

		if err := run(runner, "track", "reset", "--passphrase", runner.config.Admin.Passphrase); err != nil {
			t.Fatalf("track reset failed: %v", err)
		}

		db, err := shared.OpenDatabase(context.Background(), runner.config.Database)
		if err != nil {
			t.Fatal(err)
		}
		defer db.Close()
		if _, ok, _ := repositories.NewSettingRepository(db).Get(context.Background(), "musicFile"); ok {
			t.Error("expected persisted track removed")
		}
	})
}

func TestRootFlags(t *testing.T) {
	t.Run("config applies to every command", func(t *testing.T) {
		runner, output := newTestRunner(t)
		path := filepath.Join(t.TempDir(), "memory.toml")
		content := "[storage]\ndriver = \"memory\"\n\n[player]\ndefault_track = \"./jingle.mp3\"\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		if err := run(runner, "--config", path, "track", "show"); err != nil {
			t.Fatalf("track show failed: %v", err)
		}
		if runner.config.Storage.Driver != shared.StorageMemory {
			t.Errorf("expected memory driver from --config, got %s", runner.config.Storage.Driver)
		}
		if !strings.Contains(output.String(), "./jingle.mp3") {
			t.Errorf("expected default track from --config:\n%s", output.String())
		}
	})

	t.Run("explicit config must exist", func(t *testing.T) {
		runner, _ := newTestRunner(t)
		missing := filepath.Join(t.TempDir(), "nope.toml")

		for _, args := range [][]string{
			{"--config", missing, "track", "show"},
			{"--config", missing, "serve", "--mute"},
		} {
			if err := run(runner, args...); !errors.Is(err, shared.ErrMissingConfig) {
				t.Errorf("%v: expected ErrMissingConfig, got %v", args, err)
			}
		}
	})

	t.Run("debug", func(t *testing.T) {
		runner, _ := newTestRunner(t)
		if err := run(runner, "--debug", "track", "show"); err != nil {
			t.Fatalf("track show failed: %v", err)
		}
		if runner.logger.GetLevel() != log.DebugLevel {
			t.Errorf("expected debug level, got %v", runner.logger.GetLevel())
		}
	})

	t.Run("invalid arguments", func(t *testing.T) {
		runner, _ := newTestRunner(t)
		for _, args := range [][]string{
			{"track", "show", "--limit", "0"},
			{"serve", "--mute", "--port", "70000"},
		} {
			if err := run(runner, args...); !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("%v: expected ErrInvalidArgument, got %v", args, err)
			}
		}
	})

	t.Run("output failure", func(t *testing.T) {
		runner, _ := newTestRunner(t)
		runner.output = &th.FWriter{}

		if err := run(runner, "track", "show", "--json"); err == nil {
			t.Error("expected write error")
		}
	})
}

func TestOpenSession(t *testing.T) {
	t.Run("memory driver", func(t *testing.T) {
		runner, _ := newTestRunner(t)
		runner.config.Storage.Driver = shared.StorageMemory

		s, err := runner.openSession(context.Background(), sessionOpts{Output: media.NullOutput{}})
		if err != nil {
			t.Fatalf("openSession failed: %v", err)
		}
		if s.db != nil || s.uploads != nil {
			t.Error("memory driver should not open a database")
		}
		if err := s.widget.Dispatch(context.Background(), player.Mount{}); err != nil {
			t.Errorf("mount failed: %v", err)
		}
		if err := s.Close(context.Background()); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		runner, _ := newTestRunner(t)
		runner.config.Storage.Driver = "etcd"

		if _, err := runner.openSession(context.Background(), sessionOpts{Output: media.NullOutput{}}); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
