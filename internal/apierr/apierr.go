package apierr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// Kind classifies a failure at the point where it happened.
type Kind int

const (
	Unknown Kind = iota
	Transport
	Quota
	Credential
	Media
	Format
	Permission
	Display
)

var kindNames = map[Kind]string{
	Unknown:    "unknown",
	Transport:  "transport",
	Quota:      "quota",
	Credential: "credential",
	Media:      "media",
	Format:     "format",
	Permission: "permission",
	Display:    "display",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Operations used as Error.Op
const (
	OpTranscribe = "transcribe"
	OpTranslate  = "translate"
	OpExpand     = "expand"
	OpCapture    = "capture"
	OpRender     = "render"
	OpOpen       = "open"
)

// Error carries a Kind alongside the wrapped cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err with an explicit kind.
func New(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in the chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// OpOf returns the op of the first *Error in the chain.
func OpOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}

// Classify attaches a kind derived from structured error values returned by
// the provider SDKs and the network stack. Errors that are already
// classified pass through unchanged.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return err
	}
	return &Error{Kind: kindFor(err), Op: op, Err: err}
}

func kindFor(err error) Kind {
	var oaiAPI *openai.APIError
	if errors.As(err, &oaiAPI) {
		return kindForStatus(oaiAPI.HTTPStatusCode, oaiAPI.Type)
	}
	var oaiReq *openai.RequestError
	if errors.As(err, &oaiReq) {
		return kindForStatus(oaiReq.HTTPStatusCode, "")
	}
	if apiErr, ok := genaiError(err); ok {
		for _, reason := range errorReasons(apiErr) {
			if reason == "API_KEY_INVALID" || reason == "API_KEY_SERVICE_BLOCKED" {
				return Credential
			}
		}
		return kindForStatus(apiErr.Code, apiErr.Status)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return Format
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Transport
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Transport
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return Transport
	}
	return Unknown
}

// genaiError finds the Gemini API error in the chain.
func genaiError(err error) (genai.APIError, bool) {
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch v := e.(type) {
		case genai.APIError:
			return v, true
		case *genai.APIError:
			if v != nil {
				return *v, true
			}
		}
	}
	return genai.APIError{}, false
}

// errorReasons returns the reason of every google.rpc.ErrorInfo detail.
// An invalid key is reported as INVALID_ARGUMENT with reason API_KEY_INVALID.
func errorReasons(e genai.APIError) []string {
	var reasons []string
	for _, d := range e.Details {
		typ, _ := d["@type"].(string)
		if !strings.HasSuffix(typ, "ErrorInfo") {
			continue
		}
		if reason, ok := d["reason"].(string); ok && reason != "" {
			reasons = append(reasons, reason)
		}
	}
	return reasons
}

func kindForStatus(code int, status string) Kind {
	switch strings.ToUpper(status) {
	case "RESOURCE_EXHAUSTED", "INSUFFICIENT_QUOTA":
		return Quota
	case "UNAUTHENTICATED", "PERMISSION_DENIED", "INVALID_API_KEY":
		return Credential
	}

	switch {
	case code == http.StatusTooManyRequests:
		return Quota
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return Credential
	case code == http.StatusBadRequest || code == http.StatusUnsupportedMediaType ||
		code == http.StatusRequestEntityTooLarge || code == http.StatusUnprocessableEntity:
		return Media
	case code >= 500:
		return Transport
	}
	return Unknown
}

// HTTPStatus maps a kind to the status code the web API answers with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case Quota:
		return http.StatusTooManyRequests
	case Credential:
		return http.StatusBadGateway
	case Media:
		return http.StatusUnprocessableEntity
	case Format:
		return http.StatusBadGateway
	case Transport:
		return http.StatusBadGateway
	case Permission:
		return http.StatusForbidden
	case Display:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
