package output

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// CopyToClipboard puts text on the Wayland clipboard.
func CopyToClipboard(ctx context.Context, text string, timeout time.Duration) error {
	if text == "" {
		return fmt.Errorf("cannot copy empty text")
	}
	return run(ctx, timeout, strings.NewReader(text), "wl-copy")
}

func run(ctx context.Context, timeout time.Duration, stdin *strings.Reader, name string, args ...string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%s not found: %w", name, err)
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = stdin
	}
	// output is not captured: viewers started by xdg-open inherit the pipes
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}
