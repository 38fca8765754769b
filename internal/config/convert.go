package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/leonardotrapani/memoscribe/internal/language"
	"github.com/leonardotrapani/memoscribe/internal/llm"
	"github.com/leonardotrapani/memoscribe/internal/notify"
	"github.com/leonardotrapani/memoscribe/internal/output"
	"github.com/leonardotrapani/memoscribe/internal/pipeline"
	"github.com/leonardotrapani/memoscribe/internal/provider"
	"github.com/leonardotrapani/memoscribe/internal/recording"
	"github.com/leonardotrapani/memoscribe/internal/transcriber"
	"github.com/leonardotrapani/memoscribe/internal/translator"
)

func (c *Config) ToRecordingConfig() recording.Config {
	return recording.Config{
		SampleRate:        c.Recording.SampleRate,
		Channels:          c.Recording.Channels,
		Format:            c.Recording.Format,
		BufferSize:        c.Recording.BufferSize,
		Device:            c.Recording.Device,
		ChannelBufferSize: c.Recording.ChannelBufferSize,
		Timeout:           c.Recording.Timeout,
	}
}

func (c *Config) ToTranscriberConfig() transcriber.Config {
	return transcriber.Config{
		Provider: c.Transcription.Provider,
		Model:    c.Transcription.Model,
		APIKey:   c.APIKey(c.Transcription.Provider),
	}
}

func (c *Config) ToTranslatorConfig() translator.Config {
	return translator.Config{
		Provider: c.Translation.Provider,
		Model:    c.Translation.Model,
		APIKey:   c.APIKey(c.Translation.Provider),
	}
}

func (c *Config) ToExpanderConfig() llm.Config {
	return llm.Config{
		Provider: c.Expansion.Provider,
		Model:    c.Expansion.Model,
		APIKey:   c.APIKey(c.Expansion.Provider),
	}
}

// APIKey returns the API key for a provider, from the config file first and
// then from the provider's environment variable
func (c *Config) APIKey(providerName string) string {
	if c.Providers != nil {
		if pc, ok := c.Providers[providerName]; ok && pc.APIKey != "" {
			return pc.APIKey
		}
	}
	if envVar := provider.EnvVarForProvider(providerName); envVar != "" {
		return os.Getenv(envVar)
	}
	return ""
}

// SourceLanguage is the lecture language as sent to the models
func (c *Config) SourceLanguage() string {
	return language.PromptName(c.Transcription.Language)
}

// TargetLanguage is the translation language as sent to the models
func (c *Config) TargetLanguage() string {
	return language.PromptName(c.Translation.TargetLanguage)
}

// UILanguage is the language code for status and error messages
func (c *Config) UILanguage() string {
	if c.General.UILanguage == "" {
		return "it"
	}
	return c.General.UILanguage
}

func (c *Config) Ordering() pipeline.Ordering {
	o, err := pipeline.ParseOrdering(c.Translation.Ordering)
	if err != nil {
		return pipeline.Strict
	}
	return o
}

// OutputDir returns the directory sessions are saved to, creating it if needed
func (c *Config) OutputDir() (string, error) {
	dir := c.Output.Dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, "memoscribe")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return dir, nil
}

func (c *Config) ToOutputConfig() (output.Config, error) {
	dir, err := c.OutputDir()
	if err != nil {
		return output.Config{}, err
	}
	oc := output.DefaultConfig()
	oc.Dir = dir
	oc.OpenPDF = c.Output.OpenPDF
	oc.Clipboard = c.Output.Clipboard
	return oc, nil
}

// Notifier builds the notifier described by the notifications section
func (c *Config) Notifier() notify.Notifier {
	if !c.Notifications.Enabled {
		return notify.Nop{}
	}
	return notify.New(c.Notifications.Type, c.Notifications.Messages.Resolve())
}

// NewTranscriber builds the configured transcription client
func (c *Config) NewTranscriber() (transcriber.Transcriber, error) {
	return transcriber.New(c.ToTranscriberConfig())
}

// NewTranslator builds the configured translation client
func (c *Config) NewTranslator() (translator.Translator, error) {
	return translator.New(c.ToTranslatorConfig())
}

// NewExpander builds the configured lesson generator
func (c *Config) NewExpander() (llm.Expander, error) {
	return llm.NewExpander(c.ToExpanderConfig())
}
