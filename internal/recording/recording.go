package recording

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leonardotrapani/memoscribe/internal/apierr"
	"github.com/leonardotrapani/memoscribe/internal/media"
)

var (
	ErrAlreadyRecording = errors.New("already recording")
	ErrNotRecording     = errors.New("not recording")
)

// RecordingName is the name given to captured audio sources.
const RecordingName = "recording.wav"

type Config struct {
	SampleRate        int
	Channels          int
	Format            string
	BufferSize        int
	Device            string
	ChannelBufferSize int
	Timeout           time.Duration // capture stops on its own after this long, 0 for no limit
}

func DefaultConfig() Config {
	return Config{
		SampleRate:        16000,
		Channels:          1,
		Format:            "s16",
		BufferSize:        8192,
		Device:            "",
		ChannelBufferSize: 30,
		Timeout:           3 * time.Hour,
	}
}

// Recorder captures one microphone session at a time through pw-record
// and keeps the samples in memory until Stop.
type Recorder struct {
	config    Config
	recording atomic.Bool

	mu      sync.Mutex // guards everything below
	cmd     *exec.Cmd
	cancel  context.CancelFunc
	started time.Time
	pcm     []byte
	done    chan struct{}
	failure error

	wg sync.WaitGroup
}

func NewRecorder(config Config) *Recorder {
	return &Recorder{config: config}
}

func NewDefaultRecorder() *Recorder { return NewRecorder(DefaultConfig()) }

func (r *Recorder) IsRecording() bool {
	return r.recording.Load()
}

// Start launches the capture process. Capture ends when Stop or Cancel is
// called, when ctx is done, or when the configured timeout elapses.
func (r *Recorder) Start(ctx context.Context) error {
	if !r.recording.CompareAndSwap(false, true) {
		return ErrAlreadyRecording
	}

	if err := r.validateConfig(); err != nil {
		r.recording.Store(false)
		return err
	}

	if err := CheckPipeWireAvailable(ctx); err != nil {
		r.recording.Store(false)
		return apierr.New(apierr.Permission, apierr.OpCapture, fmt.Errorf("PipeWire not available: %w", err))
	}

	var recordingCtx context.Context
	var cancel context.CancelFunc
	if r.config.Timeout > 0 {
		recordingCtx, cancel = context.WithTimeout(ctx, r.config.Timeout)
	} else {
		recordingCtx, cancel = context.WithCancel(ctx)
	}

	cmd := exec.CommandContext(recordingCtx, "pw-record", r.buildPwRecordArgs()...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		r.recording.Store(false)
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		cancel()
		r.recording.Store(false)
		return fmt.Errorf("create stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		r.recording.Store(false)
		return apierr.New(apierr.Permission, apierr.OpCapture, fmt.Errorf("start pw-record: %w", err))
	}

	done := make(chan struct{})
	r.mu.Lock()
	r.cmd = cmd
	r.cancel = cancel
	r.started = time.Now()
	r.pcm = nil
	r.failure = nil
	r.done = done
	r.mu.Unlock()

	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			log.Printf("Recording stderr: %s", scanner.Text())
		}
	}()

	frames := make(chan []byte, r.config.ChannelBufferSize)
	r.wg.Add(2)
	go r.captureLoop(recordingCtx, stdout, frames)
	go r.collect(frames, done)

	log.Printf("Recording: started (%d Hz, %d ch, %s)", r.config.SampleRate, r.config.Channels, r.config.Format)
	return nil
}

// Done is closed once the capture process has exited, for instance after
// the timeout. It is nil before the first Start.
func (r *Recorder) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// Stop ends the capture and returns everything recorded as a WAV source.
func (r *Recorder) Stop() (media.AudioSource, error) {
	if !r.finish() {
		return media.AudioSource{}, ErrNotRecording
	}

	r.mu.Lock()
	pcm, failure, started := r.pcm, r.failure, r.started
	r.pcm = nil
	r.mu.Unlock()

	if len(pcm) == 0 {
		if failure != nil {
			return media.AudioSource{}, apierr.New(apierr.Permission, apierr.OpCapture, failure)
		}
		return media.AudioSource{}, apierr.New(apierr.Media, apierr.OpCapture, media.ErrEmptyAudio)
	}
	if failure != nil {
		log.Printf("Recording: keeping %d bytes captured before error: %v", len(pcm), failure)
	}

	data, err := media.EncodeWAV(pcm, r.config.SampleRate, r.config.Channels)
	if err != nil {
		return media.AudioSource{}, apierr.New(apierr.Media, apierr.OpCapture, err)
	}
	log.Printf("Recording: stopped after %v (%d bytes of audio)", time.Since(started).Round(time.Second), len(pcm))
	return media.NewSource(data, "audio/wav", RecordingName)
}

// Cancel ends the capture and drops the audio.
func (r *Recorder) Cancel() {
	if !r.finish() {
		return
	}
	r.mu.Lock()
	r.pcm = nil
	r.mu.Unlock()
	log.Printf("Recording: cancelled")
}

// Elapsed returns the whole seconds since Start, or 0 when idle.
func (r *Recorder) Elapsed() int {
	if !r.recording.Load() {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return int(time.Since(r.started) / time.Second)
}

// finish stops the process and waits for the capture goroutines. It
// reports false when no session was active.
func (r *Recorder) finish() bool {
	if !r.recording.Load() {
		return false
	}

	r.mu.Lock()
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	r.wg.Wait()

	r.mu.Lock()
	if r.cmd != nil {
		_ = r.cmd.Wait()
		r.cmd = nil
	}
	r.mu.Unlock()

	r.recording.Store(false)
	return true
}

func (r *Recorder) captureLoop(ctx context.Context, stdout io.Reader, frames chan<- []byte) {
	defer r.wg.Done()
	defer close(frames)

	buffer := make([]byte, r.config.BufferSize)
	for {
		n, readErr := stdout.Read(buffer)
		if n > 0 {
			frame := make([]byte, n)
			copy(frame, buffer[:n])
			frames <- frame
		}
		if readErr != nil {
			if !errors.Is(readErr, io.EOF) && ctx.Err() == nil {
				r.setFailure(fmt.Errorf("read audio: %w", readErr))
			}
			return
		}
	}
}

func (r *Recorder) collect(frames <-chan []byte, done chan<- struct{}) {
	defer r.wg.Done()
	defer close(done)

	for frame := range frames {
		r.mu.Lock()
		r.pcm = append(r.pcm, frame...)
		r.mu.Unlock()
	}
}

func (r *Recorder) setFailure(err error) {
	log.Printf("Recording error: %v", err)
	r.mu.Lock()
	if r.failure == nil {
		r.failure = err
	}
	r.mu.Unlock()
}

func (r *Recorder) captured() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pcm)
}

func (r *Recorder) buildPwRecordArgs() []string {
	args := []string{
		"--format", r.config.Format,
		"--rate", strconv.Itoa(r.config.SampleRate),
		"--channels", strconv.Itoa(r.config.Channels),
		"-", // stdout
	}
	if r.config.Device != "" {
		args = append(args, "--target", r.config.Device)
	}
	return args
}

func CheckPipeWireAvailable(ctx context.Context) error {
	if _, err := exec.LookPath("pw-record"); err != nil {
		return fmt.Errorf("pw-record not found: %w (install pipewire-tools)", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	cmd := exec.CommandContext(checkCtx, "pw-cli", "info")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("PipeWire not running or accessible: %w", err)
	}
	return nil
}

func (r *Recorder) validateConfig() error {
	if r.config.SampleRate <= 0 {
		return fmt.Errorf("invalid SampleRate: %d", r.config.SampleRate)
	}
	if r.config.Channels <= 0 {
		return fmt.Errorf("invalid Channels: %d", r.config.Channels)
	}
	if r.config.BufferSize <= 0 {
		return fmt.Errorf("invalid BufferSize: %d", r.config.BufferSize)
	}
	if r.config.ChannelBufferSize <= 0 {
		return fmt.Errorf("invalid ChannelBufferSize: %d", r.config.ChannelBufferSize)
	}
	// captured samples are wrapped as 16-bit PCM WAV
	if r.config.Format != "s16" && r.config.Format != "s16le" {
		return fmt.Errorf("unsupported Format %q (must be s16)", r.config.Format)
	}
	if frameBytes := 2 * r.config.Channels; r.config.BufferSize%frameBytes != 0 {
		log.Printf("Recording: BufferSize %d not aligned to frame size %d; audio frames may split",
			r.config.BufferSize, frameBytes)
	}
	return nil
}

// FormatElapsed renders seconds as MM:SS, or HH:MM:SS from one hour on.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, seconds/60%60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
