package media

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/leonardotrapani/memoscribe/internal/apierr"
	"github.com/orcaman/writerseeker"
)

// AudioSource is a captured or uploaded audio payload. It is not modified
// after construction.
type AudioSource struct {
	Data     []byte
	MIMEType string
	Name     string
}

var ErrEmptyAudio = errors.New("audio source is empty")

var mimeTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".aac":  "audio/aac",
	".webm": "audio/webm",
	".mp4":  "video/mp4",
	".mov":  "video/quicktime",
	".mkv":  "video/x-matroska",
}

// MIMEFromName returns the MIME type for a file name based on its extension.
func MIMEFromName(name string) (string, bool) {
	mime, ok := mimeTypes[strings.ToLower(filepath.Ext(name))]
	return mime, ok
}

// NewSource builds an AudioSource, resolving an empty MIME type from name.
func NewSource(data []byte, mimeType, name string) (AudioSource, error) {
	if len(data) == 0 {
		return AudioSource{}, apierr.New(apierr.Media, apierr.OpTranscribe, ErrEmptyAudio)
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		resolved, ok := MIMEFromName(name)
		if !ok {
			return AudioSource{}, apierr.New(apierr.Media, apierr.OpTranscribe,
				fmt.Errorf("unsupported file type: %s", filepath.Ext(name)))
		}
		mimeType = resolved
	}
	return AudioSource{Data: data, MIMEType: mimeType, Name: name}, nil
}

// LoadFile reads an audio or video file from disk.
func LoadFile(path string) (AudioSource, error) {
	if _, ok := MIMEFromName(path); !ok {
		return AudioSource{}, apierr.New(apierr.Media, apierr.OpTranscribe,
			fmt.Errorf("unsupported file type: %s", filepath.Ext(path)))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return AudioSource{}, fmt.Errorf("read audio file: %w", err)
	}
	return NewSource(data, "", filepath.Base(path))
}

// IsWAV reports whether the source carries RIFF WAV data.
func (s AudioSource) IsWAV() bool {
	return len(s.Data) >= 12 && string(s.Data[0:4]) == "RIFF" && string(s.Data[8:12]) == "WAVE"
}

// Duration returns the playback length of the source. WAV data is decoded
// in-process; other containers are probed with ffprobe.
func Duration(ctx context.Context, src AudioSource) (time.Duration, error) {
	if src.IsWAV() {
		d := wav.NewDecoder(bytes.NewReader(src.Data))
		if !d.IsValidFile() {
			return 0, apierr.New(apierr.Media, apierr.OpTranscribe,
				errors.New("failed to load audio metadata, the file might be corrupted"))
		}
		// the decoder's own Duration counts the header bytes as audio
		d.ReadInfo()
		if err := d.FwdToPCM(); err != nil {
			return 0, apierr.New(apierr.Media, apierr.OpTranscribe, fmt.Errorf("wav duration: %w", err))
		}
		if d.AvgBytesPerSec == 0 {
			return 0, apierr.New(apierr.Media, apierr.OpTranscribe, errors.New("wav duration: missing byte rate"))
		}
		return time.Duration(d.PCMLen()) * time.Second / time.Duration(d.AvgBytesPerSec), nil
	}
	return probeDuration(ctx, src)
}

// probeOutput mirrors the ffprobe JSON structure.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func probeDuration(ctx context.Context, src AudioSource) (time.Duration, error) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return 0, apierr.New(apierr.Media, apierr.OpTranscribe, fmt.Errorf("ffprobe not found: %w", err))
	}

	cmd := exec.CommandContext(ctx,
		"ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		"-i", "pipe:0",
	)
	cmd.Stdin = bytes.NewReader(src.Data)

	out, err := cmd.Output()
	if err != nil {
		return 0, apierr.New(apierr.Media, apierr.OpTranscribe,
			fmt.Errorf("failed to load audio metadata, the file might be corrupted: %w", err))
	}

	var probe probeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return 0, apierr.New(apierr.Media, apierr.OpTranscribe, fmt.Errorf("ffprobe JSON parse error: %w", err))
	}

	secs, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return 0, apierr.New(apierr.Media, apierr.OpTranscribe, fmt.Errorf("ffprobe duration %q: %w", probe.Format.Duration, err))
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// EncodeWAV wraps raw little-endian 16-bit PCM into a RIFF WAV file.
func EncodeWAV(pcm []byte, sampleRate, channels int) ([]byte, error) {
	samples := make([]int, len(pcm)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}

	out := &writerseeker.WriterSeeker{}
	encoder := wav.NewEncoder(out, sampleRate, 16, channels, 1)
	if err := encoder.Write(buf); err != nil {
		return nil, fmt.Errorf("encoder write buffer: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("encoder close: %w", err)
	}

	data, err := io.ReadAll(out.Reader())
	if err != nil {
		return nil, fmt.Errorf("reading wav into memory: %w", err)
	}
	return data, nil
}
