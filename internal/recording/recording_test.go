package recording

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leonardotrapani/memoscribe/internal/apierr"
	"github.com/leonardotrapani/memoscribe/internal/testutil"
)

// fakePipeWire puts pw-cli and pw-record scripts first on PATH. The fake
// pw-record writes four 16-bit samples and then blocks until killed.
func fakePipeWire(t *testing.T, pwCliExit int) {
	t.Helper()
	bin := t.TempDir()
	scripts := map[string]string{
		"pw-cli":    "#!/bin/sh\nexit " + string(rune('0'+pwCliExit)) + "\n",
		"pw-record": "#!/bin/sh\nprintf '\\001\\000\\002\\000\\003\\000\\004\\000'\nexec sleep 30\n",
	}
	for name, body := range scripts {
		if err := os.WriteFile(filepath.Join(bin, name), []byte(body), 0755); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.SampleRate != 16000 {
		t.Errorf("default sample rate should be 16000, got %d", config.SampleRate)
	}
	if config.Channels != 1 {
		t.Errorf("default channels should be 1, got %d", config.Channels)
	}
	if config.Format != "s16" {
		t.Errorf("default format should be s16, got %s", config.Format)
	}
	if config.BufferSize != 8192 {
		t.Errorf("default buffer size should be 8192, got %d", config.BufferSize)
	}
	if config.ChannelBufferSize != 30 {
		t.Errorf("default channel buffer size should be 30, got %d", config.ChannelBufferSize)
	}
	if config.Timeout != 3*time.Hour {
		t.Errorf("default timeout should be 3h, got %v", config.Timeout)
	}
}

func TestRecorderValidateConfig(t *testing.T) {
	valid := DefaultConfig()
	with := func(mut func(*Config)) Config {
		c := valid
		mut(&c)
		return c
	}

	tests := []struct {
		name        string
		config      Config
		expectError bool
	}{
		{"valid default config", valid, false},
		{"invalid sample rate", with(func(c *Config) { c.SampleRate = 0 }), true},
		{"negative sample rate", with(func(c *Config) { c.SampleRate = -1 }), true},
		{"invalid channels", with(func(c *Config) { c.Channels = 0 }), true},
		{"invalid buffer size", with(func(c *Config) { c.BufferSize = 0 }), true},
		{"invalid channel buffer size", with(func(c *Config) { c.ChannelBufferSize = 0 }), true},
		{"empty format", with(func(c *Config) { c.Format = "" }), true},
		{"float format", with(func(c *Config) { c.Format = "f32" }), true},
		{"s16le alias", with(func(c *Config) { c.Format = "s16le" }), false},
		{"unaligned buffer size", with(func(c *Config) { c.BufferSize = 8193 }), false},
		{"stereo valid config", with(func(c *Config) { c.SampleRate, c.Channels = 48000, 2 }), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewRecorder(tt.config).validateConfig()
			if tt.expectError && err == nil {
				t.Errorf("expected error for config %+v", tt.config)
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error for config %+v: %v", tt.config, err)
			}
		})
	}
}

func TestRecorderBuildPwRecordArgs(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected []string
	}{
		{
			name:     "default config",
			config:   DefaultConfig(),
			expected: []string{"--format", "s16", "--rate", "16000", "--channels", "1", "-"},
		},
		{
			name: "with device",
			config: Config{
				SampleRate: 48000,
				Channels:   2,
				Format:     "s16",
				Device:     "alsa_input.usb-Blue_Yeti-00.analog-stereo",
			},
			expected: []string{
				"--format", "s16", "--rate", "48000", "--channels", "2", "-",
				"--target", "alsa_input.usb-Blue_Yeti-00.analog-stereo",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := NewRecorder(tt.config).buildPwRecordArgs()
			if len(args) != len(tt.expected) {
				t.Fatalf("args = %v, want %v", args, tt.expected)
			}
			for i := range args {
				if args[i] != tt.expected[i] {
					t.Errorf("arg[%d] = %q, want %q", i, args[i], tt.expected[i])
				}
			}
		})
	}
}

func TestRecorderLifecycle(t *testing.T) {
	fakePipeWire(t, 0)
	recorder := NewDefaultRecorder()

	if _, err := recorder.Stop(); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Stop() before Start = %v, want ErrNotRecording", err)
	}
	if recorder.Elapsed() != 0 {
		t.Error("Elapsed() should be 0 when idle")
	}

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !recorder.IsRecording() {
		t.Error("recorder should be recording after Start")
	}
	if err := recorder.Start(context.Background()); !errors.Is(err, ErrAlreadyRecording) {
		t.Errorf("second Start() = %v, want ErrAlreadyRecording", err)
	}

	testutil.WaitForCondition(t, func() bool { return recorder.captured() == 8 }, 5*time.Second)

	src, err := recorder.Stop()
	if err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if !src.IsWAV() || src.MIMEType != "audio/wav" || src.Name != RecordingName {
		t.Errorf("source = %s %s (wav=%v)", src.Name, src.MIMEType, src.IsWAV())
	}
	if recorder.IsRecording() {
		t.Error("recorder should be idle after Stop")
	}

	// a new session starts from an empty buffer
	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("restart error = %v", err)
	}
	testutil.WaitForCondition(t, func() bool { return recorder.captured() == 8 }, 5*time.Second)
	recorder.Cancel()
	if recorder.IsRecording() || recorder.captured() != 0 {
		t.Error("Cancel() should stop and discard the audio")
	}
}

func TestRecorderTimeout(t *testing.T) {
	fakePipeWire(t, 0)
	config := DefaultConfig()
	config.Timeout = 200 * time.Millisecond
	recorder := NewRecorder(config)

	if err := recorder.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	select {
	case <-recorder.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("capture did not stop after the timeout")
	}

	src, err := recorder.Stop()
	if err != nil {
		t.Fatalf("Stop() after timeout error = %v", err)
	}
	if !src.IsWAV() {
		t.Error("audio captured before the timeout should be kept")
	}
}

func TestRecorderPermissionErrors(t *testing.T) {
	t.Run("pipewire unreachable", func(t *testing.T) {
		fakePipeWire(t, 1)
		err := NewDefaultRecorder().Start(context.Background())
		if apierr.KindOf(err) != apierr.Permission || apierr.OpOf(err) != apierr.OpCapture {
			t.Errorf("Start() = %v, want permission error", err)
		}
	})

	t.Run("pw-record missing", func(t *testing.T) {
		t.Setenv("PATH", t.TempDir())
		recorder := NewDefaultRecorder()
		err := recorder.Start(context.Background())
		if apierr.KindOf(err) != apierr.Permission {
			t.Errorf("Start() = %v, want permission error", err)
		}
		if recorder.IsRecording() {
			t.Error("failed Start must leave the recorder idle")
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		if err := NewRecorder(Config{SampleRate: -1}).Start(context.Background()); err == nil {
			t.Error("Start should return error with invalid config")
		}
	})
}

func TestRecorderConcurrentStop(t *testing.T) {
	recorder := NewDefaultRecorder()
	done := make(chan bool, 10)

	for i := 0; i < 10; i++ {
		go func() {
			recorder.Stop()
			recorder.IsRecording()
			done <- true
		}()
	}

	for i := 0; i < 10; i++ {
		select {
		case <-done:
		case <-time.After(1 * time.Second):
			t.Fatal("timeout waiting for concurrent Stop calls")
		}
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "00:00"},
		{59, "00:59"},
		{61, "01:01"},
		{3599, "59:59"},
		{3600, "01:00:00"},
		{5025, "01:23:45"},
		{-3, "00:00"},
	}
	for _, tt := range tests {
		if got := FormatElapsed(tt.seconds); got != tt.want {
			t.Errorf("FormatElapsed(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
