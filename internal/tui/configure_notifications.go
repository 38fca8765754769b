package tui

import (
	"github.com/charmbracelet/huh"

	"github.com/leonardotrapani/memoscribe/internal/config"
	"github.com/leonardotrapani/memoscribe/internal/notify"
)

// notificationMode folds enabled + type into the single choice the form shows
func notificationMode(cfg *config.Config) string {
	if !cfg.Notifications.Enabled || cfg.Notifications.Type == "" {
		return "off"
	}
	return cfg.Notifications.Type
}

func applyNotificationMode(cfg *config.Config, mode string) {
	if mode == "off" {
		cfg.Notifications.Enabled = false
		return
	}
	cfg.Notifications.Enabled = true
	cfg.Notifications.Type = mode
}

func editNotifications(cfg *config.Config) error {
	mode := notificationMode(cfg)
	var sendTest bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Session notifications").
				Description("Sent when a recording starts or stops and when the lesson is ready").
				Options(
					huh.NewOption("Desktop (notify-send)", "desktop"),
					huh.NewOption("Daemon log only", "log"),
					huh.NewOption("Off", "off"),
				).
				Value(&mode),
			huh.NewConfirm().
				Title("Send a test notification?").
				Value(&sendTest),
		),
	).WithTheme(getTheme())
	if err := form.Run(); err != nil {
		return err
	}

	applyNotificationMode(cfg, mode)
	if sendTest && cfg.Notifications.Enabled {
		cfg.Notifier().Send(notify.MsgConfigReloaded)
	}
	return nil
}
