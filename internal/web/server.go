package web

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/leonardotrapani/memoscribe/internal/apierr"
	"github.com/leonardotrapani/memoscribe/internal/config"
	"github.com/leonardotrapani/memoscribe/internal/document"
	"github.com/leonardotrapani/memoscribe/internal/language"
	"github.com/leonardotrapani/memoscribe/internal/llm"
	"github.com/leonardotrapani/memoscribe/internal/media"
	"github.com/leonardotrapani/memoscribe/internal/output"
	"github.com/leonardotrapani/memoscribe/internal/pdf"
	"github.com/leonardotrapani/memoscribe/internal/session"
)

const (
	// DefaultBodyLimit bounds uploads; lecture recordings run to hundreds of MB.
	DefaultBodyLimit = 512 << 20
	contentTypePDF   = "application/pdf"
)

// Config configures the web API.
type Config struct {
	Listen      string
	Settings    session.Settings // defaults for new sessions
	Output      output.Config
	Clients     func(session.Settings) (session.Clients, error)
	Expander    func() (llm.Expander, error)
	MaxSessions int
	BodyLimit   int
}

// FromConfig builds the web API configuration from the application config.
// Clients are created per request.
func FromConfig(cfg *config.Config) (Config, error) {
	out, err := cfg.ToOutputConfig()
	if err != nil {
		return Config{}, err
	}
	return Config{
		Listen: cfg.Web.Listen,
		Settings: session.Settings{
			SourceLanguage: cfg.SourceLanguage(),
			TargetLanguage: cfg.TargetLanguage(),
			UILanguage:     cfg.UILanguage(),
			Translate:      cfg.Translation.Enabled,
			Ordering:       cfg.Ordering(),
		},
		Output: out,
		Clients: func(s session.Settings) (session.Clients, error) {
			var clients session.Clients
			var err error
			if clients.Transcriber, err = cfg.NewTranscriber(); err != nil {
				return session.Clients{}, err
			}
			if s.Translate {
				if clients.Translator, err = cfg.NewTranslator(); err != nil {
					return session.Clients{}, err
				}
			}
			return clients, nil
		},
		Expander: cfg.NewExpander,
	}, nil
}

type Server struct {
	cfg Config
	app *fiber.App
	hub *Hub

	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func New(cfg Config) *Server {
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = DefaultBodyLimit
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:    cfg,
		hub:    NewHub(cfg.MaxSessions),
		ctx:    ctx,
		cancel: cancel,
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "memoscribe",
		BodyLimit:             cfg.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.app.Group("/api")
	api.Post("/sessions", s.createSession)
	api.Get("/sessions/:id", s.getSession)
	api.Delete("/sessions/:id", s.deleteSession)
	api.Post("/sessions/:id/document", s.sessionDocument)
	api.Post("/documents", s.textDocument)

	s.app.Use("/ws", s.requireUpgrade)
	s.app.Get("/ws/sessions/:id", websocket.New(s.streamSession))
}

// App exposes the fiber app, mostly for app.Test.
func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Hub() *Hub { return s.hub }

// ListenAndServe serves on cfg.Listen until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()
	log.Printf("Web: listening on http://%s", ln.Addr())
	return s.app.Listener(ln)
}

// Shutdown cancels running sessions and stops the HTTP server.
func (s *Server) Shutdown() {
	s.stopOnce.Do(func() {
		s.cancel()
		s.hub.CancelAll()
		if err := s.app.Shutdown(); err != nil {
			log.Printf("Web: shutdown error: %v", err)
		}
	})
	s.wg.Wait()
}

// Wait blocks until every background session has finished.
func (s *Server) Wait() { s.wg.Wait() }

func (s *Server) createSession(c *fiber.Ctx) error {
	fh, err := c.FormFile("audio")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "missing audio file")
	}
	f, err := fh.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "unreadable audio file")
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "unreadable audio file")
	}
	src, err := media.NewSource(data, fh.Header.Get(fiber.HeaderContentType), fh.Filename)
	if err != nil {
		return err
	}

	settings := s.cfg.Settings
	settings.ID = uuid.NewString()
	settings.Expand = false
	// form values may alias the request buffer; the session outlives it
	if v := utils.CopyString(c.FormValue("source_language")); v != "" {
		settings.SourceLanguage = language.PromptName(v)
	}
	if v := utils.CopyString(c.FormValue("target_language")); v != "" {
		settings.TargetLanguage = language.PromptName(v)
	}
	if v := c.FormValue("translate"); v != "" {
		translate, err := strconv.ParseBool(v)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "translate must be a boolean")
		}
		settings.Translate = translate
	}
	if settings.Translate && strings.TrimSpace(settings.TargetLanguage) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "target_language is required to translate")
	}

	clients, err := s.cfg.Clients(settings)
	if err != nil {
		return err
	}

	e := newEntry(settings.ID, settings)
	ctx, cancel := context.WithCancel(s.ctx)
	e.cancel = cancel
	s.hub.Add(e)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		res, err := session.Run(ctx, src, clients, settings, s.cfg.Output, e)
		if err != nil {
			log.Printf("Web: session %s failed: %v", e.ID, err)
		}
		e.finish(res, err)
	}()

	log.Printf("Web: session %s started (%s, %d bytes)", e.ID, src.MIMEType, len(src.Data))
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": e.ID})
}

func (s *Server) entry(c *fiber.Ctx) (*Entry, error) {
	e, ok := s.hub.Get(c.Params("id"))
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, ErrSessionNotFound.Error())
	}
	return e, nil
}

func (s *Server) getSession(c *fiber.Ctx) error {
	e, err := s.entry(c)
	if err != nil {
		return err
	}
	v, _ := e.View()
	return c.JSON(v)
}

func (s *Server) deleteSession(c *fiber.Ctx) error {
	switch err := s.hub.Delete(c.Params("id")); {
	case errors.Is(err, ErrSessionNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrSessionRunning):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// sessionDocument expands the transcript or the translation of a finished
// session, in the language of that text.
func (s *Server) sessionDocument(c *fiber.Ctx) error {
	e, err := s.entry(c)
	if err != nil {
		return err
	}
	res, _ := e.Result()
	if res == nil {
		return fiber.NewError(fiber.StatusConflict, ErrSessionRunning.Error())
	}

	var text, lang string
	switch source := c.Query("source", "transcript"); source {
	case "transcript":
		text, lang = res.Snapshot.Transcript, e.Settings.SourceLanguage
	case "translation":
		text, lang = res.Snapshot.Translation, e.Settings.TargetLanguage
	default:
		return fiber.NewError(fiber.StatusBadRequest, "source must be transcript or translation")
	}
	if strings.TrimSpace(text) == "" {
		return fiber.NewError(fiber.StatusBadRequest, llm.ErrEmptyTranscript.Error())
	}

	doc, err := s.expand(c.UserContext(), text, lang)
	if err != nil {
		return err
	}
	if res.Dir != "" {
		sess := &output.Session{Dir: res.Dir}
		path, err := sess.WriteDocument(doc, lang)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return sendPDF(c, data)
	}
	return s.renderPDF(c, doc, lang)
}

type documentRequest struct {
	Text     string `json:"text" form:"text"`
	Language string `json:"language" form:"language"`
}

// textDocument turns a pasted or uploaded transcript into a lesson PDF.
func (s *Server) textDocument(c *fiber.Ctx) error {
	var req documentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "unreadable text file")
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "unreadable text file")
		}
		req.Text = string(data)
	}
	if strings.TrimSpace(req.Text) == "" {
		return fiber.NewError(fiber.StatusBadRequest, llm.ErrEmptyTranscript.Error())
	}
	lang := s.cfg.Settings.SourceLanguage
	if req.Language != "" {
		lang = language.PromptName(req.Language)
	}

	doc, err := s.expand(c.UserContext(), req.Text, lang)
	if err != nil {
		return err
	}
	return s.renderPDF(c, doc, lang)
}

func (s *Server) expand(ctx context.Context, text, lang string) (*document.AcademicDocument, error) {
	if s.cfg.Expander == nil {
		return nil, fiber.NewError(fiber.StatusServiceUnavailable, "document expansion is not configured")
	}
	e, err := s.cfg.Expander()
	if err != nil {
		return nil, err
	}
	return session.ExpandText(ctx, e, text, lang)
}

func (s *Server) renderPDF(c *fiber.Ctx, doc *document.AcademicDocument, lang string) error {
	var buf bytes.Buffer
	if err := pdf.Render(doc, &buf, pdf.Options{Language: lang}); err != nil {
		return err
	}
	return sendPDF(c, buf.Bytes())
}

func sendPDF(c *fiber.Ctx, data []byte) error {
	c.Set(fiber.HeaderContentType, contentTypePDF)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+output.PDFFile+`"`)
	return c.Send(data)
}

// handleError answers every failure as {"error", "kind"} JSON.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message, "kind": "request"})
	}
	log.Printf("Web: %s %s: %v", c.Method(), c.Path(), err)
	lang := c.Query("lang", s.cfg.Settings.UILanguage)
	return c.Status(apierr.HTTPStatus(err)).JSON(fiber.Map{
		"error": apierr.Message(err, lang),
		"kind":  apierr.KindOf(err).String(),
	})
}
