package config

import (
	"reflect"
	"time"

	"github.com/leonardotrapani/memoscribe/internal/notify"
)

// GeneralConfig holds global settings that apply across the application
type GeneralConfig struct {
	UILanguage string `toml:"ui_language"` // language of status and error messages ("it", "en")
}

type Config struct {
	General       GeneralConfig             `toml:"general"`
	Recording     RecordingConfig           `toml:"recording"`
	Transcription TranscriptionConfig       `toml:"transcription"`
	Translation   TranslationConfig         `toml:"translation"`
	Expansion     ExpansionConfig           `toml:"expansion"`
	Output        OutputConfig              `toml:"output"`
	Notifications NotificationsConfig       `toml:"notifications"`
	Web           WebConfig                 `toml:"web"`
	Providers     map[string]ProviderConfig `toml:"providers"`
}

// ProviderConfig holds API key for a provider
type ProviderConfig struct {
	APIKey string `toml:"api_key"`
}

type RecordingConfig struct {
	SampleRate        int           `toml:"sample_rate"`
	Channels          int           `toml:"channels"`
	Format            string        `toml:"format"`
	BufferSize        int           `toml:"buffer_size"`
	Device            string        `toml:"device"`
	ChannelBufferSize int           `toml:"channel_buffer_size"`
	Timeout           time.Duration `toml:"timeout"`
}

type TranscriptionConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	Language string `toml:"language"` // spoken language of the lecture
}

type TranslationConfig struct {
	Enabled        bool   `toml:"enabled"`
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	TargetLanguage string `toml:"target_language"`
	Ordering       string `toml:"ordering"` // "strict" or "arrival"
}

// ExpansionConfig configures the lesson document generator
type ExpansionConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	Auto     bool   `toml:"auto"` // build the lesson PDF after every recorded session
}

type OutputConfig struct {
	Dir       string `toml:"dir"`
	OpenPDF   bool   `toml:"open_pdf"`
	Clipboard bool   `toml:"clipboard"` // copy the transcript when a session ends
}

type WebConfig struct {
	Listen string `toml:"listen"`
}

type NotificationsConfig struct {
	Enabled  bool           `toml:"enabled"`
	Type     string         `toml:"type"` // "desktop", "log", "none"
	Messages MessagesConfig `toml:"messages"`
}

type MessageConfig struct {
	Title string `toml:"title"`
	Body  string `toml:"body"`
}

type MessagesConfig struct {
	RecordingStarted   MessageConfig `toml:"recording_started"`
	RecordingStopped   MessageConfig `toml:"recording_stopped"`
	Transcribing       MessageConfig `toml:"transcribing"`
	SessionComplete    MessageConfig `toml:"session_complete"`
	DocumentReady      MessageConfig `toml:"document_ready"`
	OperationCancelled MessageConfig `toml:"operation_cancelled"`
	ConfigReloaded     MessageConfig `toml:"config_reloaded"`
}

// Resolve merges user config with defaults from MessageDefs
func (m *MessagesConfig) Resolve() map[notify.MessageType]notify.Message {
	result := make(map[notify.MessageType]notify.Message)

	v := reflect.ValueOf(m).Elem()
	t := v.Type()
	tagToField := make(map[string]int)
	for i := 0; i < t.NumField(); i++ {
		tagToField[t.Field(i).Tag.Get("toml")] = i
	}

	for _, def := range notify.MessageDefs {
		msg := notify.Message{
			Title:   def.DefaultTitle,
			Body:    def.DefaultBody,
			IsError: def.IsError,
		}
		if idx, ok := tagToField[def.ConfigKey]; ok {
			userMsg := v.Field(idx).Interface().(MessageConfig)
			if userMsg.Title != "" {
				msg.Title = userMsg.Title
			}
			if userMsg.Body != "" {
				msg.Body = userMsg.Body
			}
		}
		result[def.Type] = msg
	}
	return result
}
