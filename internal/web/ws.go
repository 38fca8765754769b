package web

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// requireUpgrade rejects plain HTTP on /ws. Unknown sessions are reported
// after the upgrade, by streamSession.
func (s *Server) requireUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// streamSession pushes the session view on every change and closes after
// the final one. Snapshots are cumulative, so a slow reader that skips
// intermediate ones still ends on the complete text.
func (s *Server) streamSession(conn *websocket.Conn) {
	defer conn.Close()

	e, ok := s.hub.Get(conn.Params("id"))
	if !ok {
		conn.WriteJSON(fiber.Map{"error": ErrSessionNotFound.Error(), "kind": "request"})
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, ErrSessionNotFound.Error()))
		return
	}

	// the read side only notices the client going away
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	last := int64(-1)
	for {
		v, changed := e.View()
		if v.Seq != last {
			if err := conn.WriteJSON(v); err != nil {
				log.Printf("Web: websocket write for %s: %v", e.ID, err)
				return
			}
			last = v.Seq
		}
		if v.Done {
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session finished"))
			return
		}
		select {
		case <-changed:
		case <-gone:
			return
		case <-s.ctx.Done():
			return
		}
	}
}
