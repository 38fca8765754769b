package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/leonardotrapani/memoscribe/internal/bus"
	"github.com/leonardotrapani/memoscribe/internal/config"
	"github.com/leonardotrapani/memoscribe/internal/daemon"
	"github.com/leonardotrapani/memoscribe/internal/tui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var quiet bool

	root := &cobra.Command{
		Use:          "memoscribe",
		Short:        "Lecture transcription with live translation and lesson PDFs",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if quiet {
				log.SetOutput(io.Discard)
			}
			config.LoadEnv()
		},
	}
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "discard log output")

	root.AddCommand(
		transcribeCmd(),
		expandCmd(),
		renderCmd(),
		serveCmd(),
		busCmd("toggle", "Start or stop recording a lecture", bus.CmdToggle),
		busCmd("status", "Show what the daemon is doing", bus.CmdStatus),
		busCmd("cancel", "Discard the current recording or session", bus.CmdCancel),
		busCmd("version", "Show the daemon protocol version", bus.CmdVersion),
		busCmd("stop", "Stop the daemon", bus.CmdQuit),
		webCmd(),
		followCmd(),
		configureCmd(),
		languagesCmd(),
		modelsCmd(),
		doctorCmd(),
	)
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the recording daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := config.NewManager()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			d := daemon.New(mgr, mgr.GetConfig().Notifier())
			return d.Run()
		},
	}
}

// busCmd sends a single command to the running daemon and prints its reply
func busCmd(use, short string, c byte) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand(c)
			if err != nil {
				return fmt.Errorf("failed to %s: %w", use, err)
			}
			fmt.Fprint(cmd.OutOrStdout(), resp)
			return bus.ParseReply(resp).Err()
		},
	}
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		Long: `Interactive configuration wizard for memoscribe.
This will guide you through setting up:
- Provider API keys (Gemini, OpenAI, Groq)
- Transcription model and lecture language
- Live translation
- Lesson PDF generation
- Notifications, output and recording preferences`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure(cmd.OutOrStdout())
		},
	}
}

func runConfigure(w io.Writer) error {
	cfg, err := config.LoadOrDefault()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	result, err := tui.Run(cfg)
	if err != nil {
		return fmt.Errorf("configuration wizard error: %w", err)
	}
	if result.Cancelled {
		fmt.Fprintln(w, "Configuration cancelled.")
		return nil
	}

	if err := result.Config.Validate(); err != nil {
		fmt.Fprintf(w, "Configuration validation failed: %v\n", err)
		return err
	}
	if err := config.Save(result.Config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, tui.StyleSuccess.Render("Configuration saved successfully!"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Next Steps:")
	fmt.Fprintln(w, "1. Transcribe a recording: memoscribe transcribe lecture.m4a")
	fmt.Fprintln(w, "2. Or start the daemon (memoscribe serve) and bind `memoscribe toggle` to a key")
	fmt.Fprintln(w)

	configPath, _ := config.GetConfigPath()
	fmt.Fprintf(w, "Config file location: %s\n", configPath)
	return nil
}
