package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/leonardotrapani/memoscribe/internal/config"
	"github.com/leonardotrapani/memoscribe/internal/tui"
	"github.com/leonardotrapani/memoscribe/internal/web"
)

func webCmd() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the HTTP and WebSocket API",
		Long: `Serve the session API used by browser front ends.

  POST   /api/sessions               upload audio and start a session
  GET    /api/sessions/:id           current snapshot of a session
  DELETE /api/sessions/:id           forget a finished session
  POST   /api/sessions/:id/document  lesson PDF from a finished session
  POST   /api/documents              lesson PDF from pasted text
  GET    /ws/sessions/:id            live snapshots of a session`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if listen != "" {
				cfg.Web.Listen = listen
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			wc, err := web.FromConfig(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := web.New(wc)
			log.Printf("Web: listening on %s", cfg.Web.Listen)
			fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s\n", cfg.Web.Listen)
			return srv.ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "address to listen on (default: web.listen)")
	return cmd
}

func followCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "follow <session-id>",
		Short: "Watch a web session live from the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				cfg, err := config.LoadOrDefault()
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				addr = cfg.Web.Listen
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return follow(ctx, cmd.OutOrStdout(), addr, args[0])
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "server address (default: web.listen)")
	return cmd
}

// follow streams the views of one session and prints the transcript as it
// grows, then the final snapshot
func follow(ctx context.Context, w io.Writer, addr, id string) error {
	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws/sessions/" + url.PathEscape(id)}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", u.String(), err)
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	printer := newDeltaPrinter(w)
	var last web.View
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) && last.Done {
				break
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("stream closed: %w", err)
		}
		var v web.View
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("invalid message: %w", err)
		}
		if v.ID == "" {
			var body struct {
				Error string `json:"error"`
			}
			if json.Unmarshal(data, &body) == nil && body.Error != "" {
				return errors.New(body.Error)
			}
			continue
		}
		printer.Observe(v.Snapshot)
		last = v
		if v.Done {
			break
		}
	}

	fmt.Fprintln(w)
	fmt.Fprint(w, tui.RenderSnapshot(last.Snapshot, 0, 0))
	if last.Dir != "" {
		fmt.Fprintln(w, tui.StyleMuted.Render("saved in "+last.Dir))
	}
	if last.Error != "" {
		return errors.New(last.Error)
	}
	return nil
}
