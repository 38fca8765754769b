package notify

import (
	"fmt"
	"log"
	"os/exec"
)

// MessageType identifies a session event worth telling the user about
type MessageType int

const (
	MsgRecordingStarted MessageType = iota
	MsgRecordingStopped
	MsgTranscribing
	MsgSessionComplete
	MsgDocumentReady
	MsgOperationCancelled
	MsgConfigReloaded
)

// Message is a resolved notification
type Message struct {
	Title   string
	Body    string
	IsError bool
}

// MessageDef declares a message, its config key and its default text
type MessageDef struct {
	Type         MessageType
	ConfigKey    string
	DefaultTitle string
	DefaultBody  string
	IsError      bool
}

// MessageDefs lists every configurable message
var MessageDefs = []MessageDef{
	{MsgRecordingStarted, "recording_started", "memoscribe", "Recording started", false},
	{MsgRecordingStopped, "recording_stopped", "memoscribe", "Recording stopped", false},
	{MsgTranscribing, "transcribing", "memoscribe", "Transcribing...", false},
	{MsgSessionComplete, "session_complete", "memoscribe", "Transcript saved", false},
	{MsgDocumentReady, "document_ready", "memoscribe", "Lesson PDF ready", false},
	{MsgOperationCancelled, "operation_cancelled", "memoscribe", "Session cancelled", false},
	{MsgConfigReloaded, "config_reloaded", "memoscribe", "Configuration reloaded", false},
}

// DefaultMessages returns the messages with their default text
func DefaultMessages() map[MessageType]Message {
	out := make(map[MessageType]Message, len(MessageDefs))
	for _, def := range MessageDefs {
		out[def.Type] = Message{Title: def.DefaultTitle, Body: def.DefaultBody, IsError: def.IsError}
	}
	return out
}

type Notifier interface {
	Send(mt MessageType)
	Error(msg string)
	Notify(title, body string)
}

// New returns the notifier for a config type ("desktop", "log", "none").
// A nil messages map uses the defaults.
func New(kind string, messages map[MessageType]Message) Notifier {
	if messages == nil {
		messages = DefaultMessages()
	}
	switch kind {
	case "desktop":
		return &Desktop{messages: messages}
	case "log":
		return &Log{messages: messages}
	default:
		return Nop{}
	}
}

type Desktop struct {
	messages map[MessageType]Message
}

func (d *Desktop) Send(mt MessageType) {
	msg, ok := lookup(d.messages, mt)
	if !ok {
		return
	}
	if msg.IsError {
		d.Error(msg.Body)
		return
	}
	d.Notify(msg.Title, msg.Body)
}

func (d *Desktop) Notify(title, body string) {
	cmd := exec.Command("notify-send", "-a", "memoscribe", title, body)
	if err := cmd.Run(); err != nil {
		log.Printf("Failed to send notification: %v", err)
	}
}

func (d *Desktop) Error(msg string) {
	cmd := exec.Command("notify-send", "-a", "memoscribe", "-u", "critical", "memoscribe error", msg)
	if err := cmd.Run(); err != nil {
		log.Printf("Failed to send error notification: %v", err)
	}
}

// Log writes notifications to the standard logger
type Log struct {
	messages map[MessageType]Message
}

func (l *Log) Send(mt MessageType) {
	msg, ok := lookup(l.messages, mt)
	if !ok {
		return
	}
	if msg.IsError {
		l.Error(msg.Body)
		return
	}
	l.Notify(msg.Title, msg.Body)
}

func (l *Log) Notify(title, body string) {
	log.Printf("Notify: %s: %s", title, body)
}

func (l *Log) Error(msg string) {
	log.Printf("Notify: memoscribe error: %s", msg)
}

// Nop is a Notifier that does absolutely nothing.
// Useful in unit tests or headless builds.
type Nop struct{}

func (Nop) Send(MessageType)      {}
func (Nop) Error(string)          {}
func (Nop) Notify(string, string) {}

func lookup(messages map[MessageType]Message, mt MessageType) (Message, bool) {
	if msg, ok := messages[mt]; ok {
		return msg, true
	}
	for _, def := range MessageDefs {
		if def.Type == mt {
			return Message{Title: def.DefaultTitle, Body: def.DefaultBody, IsError: def.IsError}, true
		}
	}
	log.Printf("Notify: unknown message type %d", mt)
	return Message{}, false
}

func (mt MessageType) String() string {
	for _, def := range MessageDefs {
		if def.Type == mt {
			return def.ConfigKey
		}
	}
	return fmt.Sprintf("message(%d)", int(mt))
}
