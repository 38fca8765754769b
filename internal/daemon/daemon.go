package daemon

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/leonardotrapani/memoscribe/internal/apierr"
	"github.com/leonardotrapani/memoscribe/internal/bus"
	"github.com/leonardotrapani/memoscribe/internal/config"
	"github.com/leonardotrapani/memoscribe/internal/media"
	"github.com/leonardotrapani/memoscribe/internal/notify"
	"github.com/leonardotrapani/memoscribe/internal/output"
	"github.com/leonardotrapani/memoscribe/internal/pipeline"
	"github.com/leonardotrapani/memoscribe/internal/recording"
	"github.com/leonardotrapani/memoscribe/internal/session"
)

type Status string

const (
	Idle       Status = "idle"
	Recording  Status = "recording"
	Processing Status = "processing"
)

// Recorder is the capture side of a session.
type Recorder interface {
	Start(ctx context.Context) error
	Stop() (media.AudioSource, error)
	Cancel()
	Elapsed() int
	Done() <-chan struct{}
}

// ClientFactory builds the remote clients for a session from the config
// current when the recording stops.
type ClientFactory func(cfg *config.Config) (session.Clients, session.Settings, error)

type Daemon struct {
	mu       sync.Mutex
	cfgMgr   *config.Manager
	notifier notify.Notifier
	recorder Recorder
	clients  ClientFactory

	ctx    context.Context
	cancel context.CancelFunc

	status        Status
	phase         pipeline.Phase
	sessionCancel context.CancelFunc
	lastDir       string
	lastErr       error

	wg sync.WaitGroup
}

type Option func(*Daemon)

func WithRecorder(r Recorder) Option {
	return func(d *Daemon) { d.recorder = r }
}

func WithClientFactory(f ClientFactory) Option {
	return func(d *Daemon) { d.clients = f }
}

func New(cfgMgr *config.Manager, n notify.Notifier, opts ...Option) *Daemon {
	if n == nil {
		n = notify.Nop{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Daemon{
		cfgMgr:   cfgMgr,
		notifier: n,
		clients:  session.FromConfig,
		ctx:      ctx,
		cancel:   cancel,
		status:   Idle,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.recorder == nil {
		d.recorder = recording.NewRecorder(cfgMgr.GetConfig().ToRecordingConfig())
	}
	return d
}

func (d *Daemon) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

func (d *Daemon) Run() error {
	if err := bus.CheckExistingDaemon(); err != nil {
		return err
	}

	ln, err := bus.Listen()
	if err != nil {
		return err
	}
	defer ln.Close()

	if err := bus.CreatePidFile(); err != nil {
		return fmt.Errorf("failed to create PID file: %w", err)
	}
	defer bus.RemovePidFile()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			log.Printf("Received signal %v, shutting down gracefully", sig)
			d.cancel()
		case <-d.ctx.Done():
		}
	}()

	d.cfgMgr.OnChange(func(*config.Config) {
		d.notifier.Send(notify.MsgConfigReloaded)
	})
	if err := d.cfgMgr.StartWatching(d.ctx); err != nil {
		log.Printf("Daemon: config hot reload disabled: %v", err)
	}
	defer d.cfgMgr.Stop()

	// Close the listener when context is done
	go func() {
		<-d.ctx.Done()
		ln.Close()
	}()

	log.Printf("Daemon started, listening on socket")

	for {
		c, err := ln.Accept()
		if err != nil {
			if d.ctx.Err() != nil {
				log.Printf("Shutdown requested")
				d.shutdown()
				return nil
			}
			log.Printf("Accept error: %v", err)
			return fmt.Errorf("accept failed: %w", err)
		}
		go d.handle(c)
	}
}

func (d *Daemon) handle(c net.Conn) {
	defer c.Close()

	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		log.Printf("Client read error: %v", err)
		fmt.Fprintf(c, "ERR read_error: %v\n", err)
		return
	}
	if len(line) == 0 {
		fmt.Fprint(c, "ERR empty\n")
		return
	}

	switch cmd := line[0]; cmd {
	case bus.CmdToggle:
		reply, err := d.toggle()
		if err != nil {
			fmt.Fprintf(c, "ERR %v\n", err)
			return
		}
		fmt.Fprintf(c, "OK %s\n", reply)
	case bus.CmdStatus:
		fmt.Fprintf(c, "STATUS %s\n", d.statusLine())
	case bus.CmdCancel:
		fmt.Fprintf(c, "OK %s\n", d.cancelSession())
	case bus.CmdVersion:
		fmt.Fprintf(c, "STATUS proto=%s\n", bus.ProtoVer)
	case bus.CmdQuit:
		fmt.Fprint(c, "OK quitting\n")
		d.cancel()
	default:
		log.Printf("Unknown command: %c", cmd)
		fmt.Fprintf(c, "ERR unknown=%q\n", cmd)
	}
}

func (d *Daemon) statusLine() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.status {
	case Recording:
		return fmt.Sprintf("status=%s elapsed=%s", d.status, recording.FormatElapsed(d.recorder.Elapsed()))
	case Processing:
		return fmt.Sprintf("status=%s phase=%s", d.status, d.phase)
	}
	line := fmt.Sprintf("status=%s", d.status)
	if d.lastDir != "" {
		line += " last=" + d.lastDir
	}
	if d.lastErr != nil {
		line += " error=" + apierr.KindOf(d.lastErr).String()
	}
	return line
}

func (d *Daemon) toggle() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.status {
	case Idle:
		if err := d.recorder.Start(d.ctx); err != nil {
			log.Printf("Daemon: failed to start recording: %v", err)
			go d.notifier.Error(apierr.Message(err, d.cfgMgr.GetConfig().UILanguage()))
			return "", err
		}
		d.status = Recording
		d.lastErr = nil
		go d.notifier.Send(notify.MsgRecordingStarted)
		go d.watchCapture(d.recorder.Done())
		return "recording", nil

	case Recording:
		d.stopRecordingLocked()
		return "processing", nil

	default:
		return "", errors.New("busy processing the last session")
	}
}

// watchCapture ends the recording when capture stops on its own, for
// instance on the recording timeout.
func (d *Daemon) watchCapture(done <-chan struct{}) {
	if done == nil {
		return
	}
	select {
	case <-done:
	case <-d.ctx.Done():
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.status == Recording && d.recorder.Done() == done {
		log.Printf("Daemon: capture ended, processing the recording")
		d.stopRecordingLocked()
	}
}

func (d *Daemon) stopRecordingLocked() {
	src, err := d.recorder.Stop()
	if err != nil {
		log.Printf("Daemon: failed to stop recording: %v", err)
		d.status = Idle
		d.lastErr = err
		go d.notifier.Error(apierr.Message(err, d.cfgMgr.GetConfig().UILanguage()))
		return
	}

	go d.notifier.Send(notify.MsgRecordingStopped)

	sessionCtx, cancel := context.WithCancel(d.ctx)
	d.status = Processing
	d.phase = pipeline.PhaseSetup
	d.sessionCancel = cancel

	d.wg.Add(1)
	go d.process(sessionCtx, src)
}

func (d *Daemon) process(ctx context.Context, src media.AudioSource) {
	defer d.wg.Done()

	cfg := d.cfgMgr.GetConfig()
	lang := cfg.UILanguage()
	res, err := d.runSession(ctx, cfg, src)

	d.mu.Lock()
	d.status = Idle
	d.sessionCancel = nil
	d.lastErr = err
	if res != nil && res.Dir != "" {
		d.lastDir = res.Dir
	}
	d.mu.Unlock()

	if err != nil {
		if errors.Is(err, context.Canceled) {
			d.notifier.Send(notify.MsgOperationCancelled)
			return
		}
		log.Printf("Daemon: session failed: %v", err)
		d.notifier.Error(apierr.Message(err, lang))
		return
	}

	if res.Snapshot.Warning != "" {
		d.notifier.Error(res.Snapshot.Warning)
	}
	d.notifier.Send(notify.MsgSessionComplete)
	d.deliver(ctx, cfg, res)
}

func (d *Daemon) runSession(ctx context.Context, cfg *config.Config, src media.AudioSource) (*session.Result, error) {
	clients, settings, err := d.clients(cfg)
	if err != nil {
		return nil, err
	}
	out, err := cfg.ToOutputConfig()
	if err != nil {
		return nil, err
	}

	d.notifier.Send(notify.MsgTranscribing)
	obs := pipeline.ObserverFunc(func(s pipeline.Snapshot) {
		d.mu.Lock()
		d.phase = s.Phase
		d.mu.Unlock()
	})
	return session.Run(ctx, src, clients, settings, out, obs)
}

// deliver hands the finished artifacts to the desktop.
func (d *Daemon) deliver(ctx context.Context, cfg *config.Config, res *session.Result) {
	out, err := cfg.ToOutputConfig()
	if err != nil {
		return
	}
	if out.Clipboard {
		if err := output.CopyToClipboard(ctx, res.Snapshot.Transcript, out.ClipboardTimeout); err != nil {
			log.Printf("Daemon: clipboard copy failed: %v", err)
		}
	}
	if res.PDFPath == "" {
		return
	}
	d.notifier.Send(notify.MsgDocumentReady)
	if out.OpenPDF {
		if err := output.Open(ctx, res.PDFPath, out.OpenTimeout); err != nil {
			log.Printf("Daemon: %v", err)
			d.notifier.Error(apierr.Message(err, cfg.UILanguage()))
		}
	}
}

func (d *Daemon) cancelSession() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.status {
	case Recording:
		d.recorder.Cancel()
		d.status = Idle
		go d.notifier.Send(notify.MsgOperationCancelled)
		return "cancelled"
	case Processing:
		if d.sessionCancel != nil {
			d.sessionCancel()
		}
		return "cancelling"
	}
	return "idle"
}

func (d *Daemon) shutdown() {
	d.mu.Lock()
	if d.status == Recording {
		d.recorder.Cancel()
		d.status = Idle
	}
	if d.sessionCancel != nil {
		d.sessionCancel()
	}
	d.mu.Unlock()
	d.wg.Wait()
}
