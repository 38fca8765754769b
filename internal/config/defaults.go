package config

import "time"

// DefaultConfig returns the initial configuration used for onboarding.
func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			UILanguage: "it",
		},
		Recording: RecordingConfig{
			SampleRate:        16000,
			Channels:          1,
			Format:            "s16",
			BufferSize:        8192,
			Device:            "",
			ChannelBufferSize: 30,
			Timeout:           3 * time.Hour,
		},
		Transcription: TranscriptionConfig{
			Provider: "gemini",
			Model:    "gemini-2.5-flash",
			Language: "it",
		},
		Translation: TranslationConfig{
			Enabled:        false,
			Provider:       "gemini",
			Model:          "gemini-2.5-flash",
			TargetLanguage: "en",
			Ordering:       "strict",
		},
		Expansion: ExpansionConfig{
			Provider: "gemini",
			Model:    "gemini-2.5-flash",
		},
		Output: OutputConfig{
			Dir:     "",
			OpenPDF: true,
		},
		Notifications: NotificationsConfig{
			Enabled: true,
			Type:    "desktop",
		},
		Web: WebConfig{
			Listen: "127.0.0.1:8765",
		},
		Providers: make(map[string]ProviderConfig),
	}
}
