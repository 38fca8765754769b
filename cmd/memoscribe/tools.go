package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leonardotrapani/memoscribe/internal/config"
	"github.com/leonardotrapani/memoscribe/internal/deps"
	"github.com/leonardotrapani/memoscribe/internal/language"
	"github.com/leonardotrapani/memoscribe/internal/provider"
	"github.com/leonardotrapani/memoscribe/internal/tui"
)

func languagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the languages accepted for transcription and translation",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printLanguages(cmd.OutOrStdout())
		},
	}
}

func printLanguages(w io.Writer) {
	for _, l := range language.List() {
		fmt.Fprintf(w, "%-4s %-12s %s\n", l.Code, l.Name, l.NativeName)
	}
}

func modelsCmd() *cobra.Command {
	var capability string

	cmd := &cobra.Command{
		Use:   "models [provider]",
		Short: "List the models of each provider",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var only []provider.Capability
			if capability != "" {
				c, err := parseCapability(capability)
				if err != nil {
					return err
				}
				only = append(only, c)
			}
			names := provider.ListProviders()
			if len(args) == 1 {
				if provider.GetProvider(args[0]) == nil {
					return fmt.Errorf("unknown provider: %s (available: %s)", args[0], strings.Join(names, ", "))
				}
				names = args
			}
			printModels(cmd.OutOrStdout(), names, only)
			return nil
		},
	}
	cmd.Flags().StringVarP(&capability, "capability", "c", "", "only models for transcription, translation or expansion")
	return cmd
}

func parseCapability(s string) (provider.Capability, error) {
	for _, c := range []provider.Capability{provider.Transcription, provider.Translation, provider.Expansion} {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown capability %q (want transcription, translation or expansion)", s)
}

func printModels(w io.Writer, names []string, only []provider.Capability) {
	for _, name := range names {
		p := provider.GetProvider(name)
		fmt.Fprintln(w, tui.StyleHeader.Render(p.DisplayName()))
		for _, m := range p.Models() {
			if len(only) > 0 && !m.Can(only[0]) {
				continue
			}
			caps := make([]string, 0, len(m.Capabilities))
			for _, c := range m.Capabilities {
				label := c.String()
				if p.DefaultModel(c) == m.ID {
					label += "*"
				}
				caps = append(caps, label)
			}
			fmt.Fprintf(w, "  %-28s %s\n", m.ID, strings.Join(caps, ", "))
		}
	}
	fmt.Fprintln(w, tui.StyleMuted.Render("* default for that capability"))
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools, configuration and API keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return runDoctor(cmd.OutOrStdout(), cfg, deps.CheckAll())
		},
	}
}

func runDoctor(w io.Writer, cfg *config.Config, reports []deps.Report) error {
	fmt.Fprintln(w, tui.StyleHeader.Render("Tools"))
	for _, r := range reports {
		switch {
		case r.Installed:
			fmt.Fprintf(w, "  %s %-12s %s\n", tui.StyleSuccess.Render("ok"), r.Name, tui.StyleMuted.Render(r.Version))
		case r.Required:
			fmt.Fprintf(w, "  %s %-12s %s (install: %s)\n", tui.StyleError.Render("!!"), r.Name, r.Purpose, r.Install)
		default:
			fmt.Fprintf(w, "  %s %-12s %s\n", tui.StyleWarning.Render("--"), r.Name, tui.StyleMuted.Render(r.Purpose))
		}
	}

	fmt.Fprintln(w, tui.StyleHeader.Render("API keys"))
	for _, name := range provider.ListProviders() {
		if cfg.APIKey(name) != "" {
			fmt.Fprintf(w, "  %s %s\n", tui.StyleSuccess.Render("ok"), name)
		} else {
			fmt.Fprintf(w, "  %s %s %s\n", tui.StyleWarning.Render("--"), name,
				tui.StyleMuted.Render("set "+provider.EnvVarForProvider(name)))
		}
	}

	fmt.Fprintln(w, tui.StyleHeader.Render("Configuration"))
	cfgErr := cfg.Validate()
	if cfgErr != nil {
		fmt.Fprintf(w, "  %s %v\n", tui.StyleError.Render("!!"), cfgErr)
	} else {
		fmt.Fprintf(w, "  %s valid\n", tui.StyleSuccess.Render("ok"))
	}

	var problems []string
	for _, r := range deps.Missing(reports) {
		problems = append(problems, r.Name)
	}
	if len(problems) > 0 {
		return fmt.Errorf("missing required tools: %s", strings.Join(problems, ", "))
	}
	if cfgErr != nil {
		return errors.New("configuration is not valid, run 'memoscribe configure'")
	}
	return nil
}
