package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/leonardotrapani/memoscribe/internal/apierr"
	"github.com/leonardotrapani/memoscribe/internal/config"
)

// AdvancedSection represents a section in the advanced settings menu
type AdvancedSection string

const (
	AdvancedRecording AdvancedSection = "recording"
	AdvancedOutput    AdvancedSection = "output"
	AdvancedInterface AdvancedSection = "interface"
	AdvancedBack      AdvancedSection = "back"
)

// editAdvanced handles the advanced settings submenu
func editAdvanced(cfg *config.Config) error {
	for {
		options := []huh.Option[AdvancedSection]{
			huh.NewOption(formatAdvancedRecordingLabel(cfg), AdvancedRecording),
			huh.NewOption(formatAdvancedOutputLabel(cfg), AdvancedOutput),
			huh.NewOption(fmt.Sprintf("Interface (messages in %s, web on %s)",
				languageLabel(cfg.General.UILanguage), cfg.Web.Listen), AdvancedInterface),
			huh.NewOption("Back to Main Menu", AdvancedBack),
		}

		var selected AdvancedSection
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewSelect[AdvancedSection]().
					Title("Advanced Settings").
					Description("Configure low-level options").
					Options(options...).
					Value(&selected),
			),
		).WithTheme(getTheme())

		if err := form.Run(); err != nil {
			return err
		}

		switch selected {
		case AdvancedBack:
			return nil
		case AdvancedRecording:
			editRecording(cfg)
		case AdvancedOutput:
			editOutput(cfg)
		case AdvancedInterface:
			editInterface(cfg)
		}
	}
}

func formatAdvancedRecordingLabel(cfg *config.Config) string {
	return fmt.Sprintf("Recording Settings (rate=%d, timeout=%s)", cfg.Recording.SampleRate, cfg.Recording.Timeout)
}

func formatAdvancedOutputLabel(cfg *config.Config) string {
	dir := cfg.Output.Dir
	if dir == "" {
		dir = "default directory"
	}
	return fmt.Sprintf("Output (%s, open PDF=%t, clipboard=%t)", dir, cfg.Output.OpenPDF, cfg.Output.Clipboard)
}

func validateNumber(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if n <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func validateDuration(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration format (use '90m', '3h', etc.)")
	}
	if d <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

// editRecording handles the recording settings
func editRecording(cfg *config.Config) error {
	sampleRate := strconv.Itoa(cfg.Recording.SampleRate)
	channels := strconv.Itoa(cfg.Recording.Channels)
	bufferSize := strconv.Itoa(cfg.Recording.BufferSize)
	device := cfg.Recording.Device
	channelBufferSize := strconv.Itoa(cfg.Recording.ChannelBufferSize)
	timeout := cfg.Recording.Timeout.String()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Sample Rate (Hz)").
				Description("Audio sample rate. 16000 is optimal for speech recognition.").
				Placeholder("16000").
				Value(&sampleRate).
				Validate(validateNumber),
			huh.NewSelect[string]().
				Title("Channels").
				Description("Number of audio channels").
				Options(
					huh.NewOption("1 (Mono) - Recommended", "1"),
					huh.NewOption("2 (Stereo)", "2"),
				).
				Value(&channels),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Buffer Size (bytes)").
				Description("Internal buffer size. Larger = less CPU, more latency.").
				Placeholder("8192").
				Value(&bufferSize).
				Validate(validateNumber),
			huh.NewInput().
				Title("Channel Buffer Size").
				Description("Number of audio frames to buffer.").
				Placeholder("30").
				Value(&channelBufferSize).
				Validate(validateNumber),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Device").
				Description("PipeWire device name. Empty = default microphone.").
				Placeholder("(default)").
				Value(&device),
			huh.NewInput().
				Title("Recording Timeout").
				Description("Longest lecture to record (e.g., '90m', '3h'). The session is processed when it is reached.").
				Placeholder("3h").
				Value(&timeout).
				Validate(validateDuration),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Recording.SampleRate, _ = strconv.Atoi(sampleRate)
	cfg.Recording.Channels, _ = strconv.Atoi(channels)
	cfg.Recording.BufferSize, _ = strconv.Atoi(bufferSize)
	cfg.Recording.Device = device
	cfg.Recording.ChannelBufferSize, _ = strconv.Atoi(channelBufferSize)
	cfg.Recording.Timeout, _ = time.ParseDuration(timeout)
	return nil
}

// editOutput handles where session files go and what happens to them
func editOutput(cfg *config.Config) error {
	dir := cfg.Output.Dir
	openPDF := cfg.Output.OpenPDF
	clipboard := cfg.Output.Clipboard

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Output Directory").
				Description("Every session gets its own folder here. Empty = ~/memoscribe.").
				Placeholder("(default)").
				Value(&dir),
			huh.NewConfirm().
				Title("Open the lesson PDF when it is ready?").
				Value(&openPDF),
			huh.NewConfirm().
				Title("Copy the transcript to the clipboard?").
				Description("Needs wl-copy").
				Value(&clipboard),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Output.Dir = dir
	cfg.Output.OpenPDF = openPDF
	cfg.Output.Clipboard = clipboard
	return nil
}

// editInterface handles the message language and the web API address
func editInterface(cfg *config.Config) error {
	uiLanguage := cfg.General.UILanguage
	listen := cfg.Web.Listen

	var langOptions []huh.Option[string]
	for _, code := range apierr.Languages() {
		langOptions = append(langOptions, huh.NewOption(languageLabel(code), code))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Message Language").
				Description("Language of status and error messages").
				Options(langOptions...).
				Value(&uiLanguage),
			huh.NewInput().
				Title("Web API Address").
				Description("host:port for `memoscribe web`").
				Placeholder("127.0.0.1:8765").
				Value(&listen).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("address is required")
					}
					return nil
				}),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.General.UILanguage = uiLanguage
	cfg.Web.Listen = listen
	return nil
}
