package daemon

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/leonardotrapani/memoscribe/internal/bus"
	"github.com/leonardotrapani/memoscribe/internal/config"
	"github.com/leonardotrapani/memoscribe/internal/media"
	"github.com/leonardotrapani/memoscribe/internal/notify"
	"github.com/leonardotrapani/memoscribe/internal/output"
	"github.com/leonardotrapani/memoscribe/internal/session"
	"github.com/leonardotrapani/memoscribe/internal/testutil"
)

type fakeRecorder struct {
	mu        sync.Mutex
	recording bool
	done      chan struct{}
	cancelled int
}

func (r *fakeRecorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recording = true
	r.done = make(chan struct{})
	return nil
}

func (r *fakeRecorder) end() {
	if r.recording {
		r.recording = false
		close(r.done)
	}
}

func (r *fakeRecorder) Stop() (media.AudioSource, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.end()
	return testutil.TestAudio(), nil
}

func (r *fakeRecorder) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.end()
	r.cancelled++
}

func (r *fakeRecorder) Elapsed() int { return 65 }

func (r *fakeRecorder) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// recordingNotifier keeps every message type sent
type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.MessageType
	errs []string
}

func (n *recordingNotifier) Send(mt notify.MessageType) {
	n.mu.Lock()
	n.sent = append(n.sent, mt)
	n.mu.Unlock()
}

func (n *recordingNotifier) Error(msg string) {
	n.mu.Lock()
	n.errs = append(n.errs, msg)
	n.mu.Unlock()
}

func (n *recordingNotifier) Notify(string, string) {}

func (n *recordingNotifier) has(mt notify.MessageType) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, s := range n.sent {
		if s == mt {
			return true
		}
	}
	return false
}

func startDaemon(t *testing.T, transcriber *testutil.MockTranscriber) (*Daemon, *fakeRecorder, *recordingNotifier, string) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	outDir := t.TempDir()
	cfgPath := testutil.CreateTempConfigFile(t, `
[output]
dir = "`+outDir+`"
open_pdf = false

[notifications]
enabled = false
`)
	mgr, err := config.NewManagerAt(cfgPath)
	if err != nil {
		t.Fatalf("NewManagerAt() error = %v", err)
	}

	rec := &fakeRecorder{}
	n := &recordingNotifier{}
	factory := func(cfg *config.Config) (session.Clients, session.Settings, error) {
		return session.Clients{Transcriber: transcriber}, session.Settings{UILanguage: "en"}, nil
	}
	d := New(mgr, n, WithRecorder(rec), WithClientFactory(factory))

	errCh := make(chan error, 1)
	go func() { errCh <- d.Run() }()

	testutil.WaitForCondition(t, func() bool {
		_, err := bus.SendCommand(bus.CmdVersion)
		return err == nil
	}, 3*time.Second)

	t.Cleanup(func() {
		bus.SendCommand(bus.CmdQuit)
		select {
		case <-errCh:
		case <-time.After(3 * time.Second):
			t.Error("daemon did not exit within timeout")
		}
	})
	return d, rec, n, outDir
}

func send(t *testing.T, cmd byte) bus.Reply {
	t.Helper()
	line, err := bus.SendCommand(cmd)
	if err != nil {
		t.Fatalf("SendCommand(%c) error = %v", cmd, err)
	}
	return bus.ParseReply(line)
}

func TestToggle_RecordAndProcess(t *testing.T) {
	mt := testutil.NewMockTranscriber("Buongiorno a tutti. ", "Oggi parliamo di entropia.")
	d, _, n, outDir := startDaemon(t, mt)

	if r := send(t, bus.CmdToggle); r.Kind != "OK" || r.Text != "recording" {
		t.Fatalf("first toggle = %+v", r)
	}
	r := send(t, bus.CmdStatus)
	if r.Fields["status"] != "recording" || r.Fields["elapsed"] != "01:05" {
		t.Errorf("status while recording = %+v", r)
	}

	if r := send(t, bus.CmdToggle); r.Text != "processing" {
		t.Fatalf("second toggle = %+v", r)
	}
	testutil.WaitForCondition(t, func() bool { return d.Status() == Idle }, 3*time.Second)

	r = send(t, bus.CmdStatus)
	last := r.Fields["last"]
	if r.Fields["status"] != "idle" || filepath.Dir(last) != outDir {
		t.Fatalf("status after session = %+v", r)
	}
	data, err := os.ReadFile(filepath.Join(last, output.TranscriptFile))
	if err != nil || string(data) != "Buongiorno a tutti. Oggi parliamo di entropia." {
		t.Errorf("transcript = %q (%v)", data, err)
	}

	for _, msg := range []notify.MessageType{notify.MsgRecordingStarted, notify.MsgRecordingStopped, notify.MsgSessionComplete} {
		testutil.WaitForCondition(t, func() bool { return n.has(msg) }, time.Second)
	}
}

func TestCancel_DuringRecording(t *testing.T) {
	mt := testutil.NewMockTranscriber("mai chiamato")
	d, rec, n, _ := startDaemon(t, mt)

	send(t, bus.CmdToggle)
	if r := send(t, bus.CmdCancel); r.Text != "cancelled" {
		t.Fatalf("cancel = %+v", r)
	}
	if d.Status() != Idle || rec.cancelled != 1 {
		t.Errorf("status = %s, cancelled = %d", d.Status(), rec.cancelled)
	}
	if len(mt.Calls()) != 0 {
		t.Error("cancelled recording must not be transcribed")
	}
	testutil.WaitForCondition(t, func() bool { return n.has(notify.MsgOperationCancelled) }, time.Second)

	if r := send(t, bus.CmdCancel); r.Text != "idle" {
		t.Errorf("cancel while idle = %+v", r)
	}
}

func TestToggle_BusyWhileProcessing(t *testing.T) {
	mt := testutil.NewMockTranscriber("Uno. ", "Due. ", "Tre.")
	mt.Delay = 200 * time.Millisecond
	d, _, _, _ := startDaemon(t, mt)

	send(t, bus.CmdToggle)
	send(t, bus.CmdToggle)

	r := send(t, bus.CmdToggle)
	if r.Kind != "ERR" || !strings.Contains(r.Text, "busy") {
		t.Errorf("toggle while processing = %+v", r)
	}
	if r := send(t, bus.CmdStatus); r.Fields["status"] != "processing" {
		t.Errorf("status = %+v", r)
	}

	if r := send(t, bus.CmdCancel); r.Text != "cancelling" {
		t.Errorf("cancel while processing = %+v", r)
	}
	testutil.WaitForCondition(t, func() bool { return d.Status() == Idle }, 3*time.Second)
}

func TestCaptureEndsOnItsOwn(t *testing.T) {
	mt := testutil.NewMockTranscriber("Ciao.")
	d, rec, _, _ := startDaemon(t, mt)

	send(t, bus.CmdToggle)
	// the capture stops by itself, as on the recording timeout
	rec.mu.Lock()
	rec.end()
	rec.mu.Unlock()

	testutil.WaitForCondition(t, func() bool { return len(mt.Calls()) == 1 }, 3*time.Second)
	testutil.WaitForCondition(t, func() bool { return d.Status() == Idle }, 3*time.Second)
}

func TestUnknownCommand(t *testing.T) {
	startDaemon(t, testutil.NewMockTranscriber())
	if r := send(t, 'x'); r.Kind != "ERR" {
		t.Errorf("reply = %+v", r)
	}
}
