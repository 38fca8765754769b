package pipeline

import "github.com/leonardotrapani/memoscribe/internal/apierr"

// Snapshot is a read-only copy of the session state for rendering.
type Snapshot struct {
	Phase       Phase  `json:"phase"`
	Status      string `json:"status,omitempty"`
	Transcript  string `json:"transcript"`
	Translation string `json:"translation,omitempty"`
	Warning     string `json:"warning,omitempty"`
	Error       string `json:"error,omitempty"`
	ErrorKind   string `json:"error_kind,omitempty"`
	Translate   bool   `json:"translate"`
	Jobs        int    `json:"jobs"`
	Running     int    `json:"running"`
}

// Terminal reports whether no further snapshots will follow. A failed
// session is only final once its in-flight jobs have settled.
func (s Snapshot) Terminal() bool {
	return (s.Phase == PhaseResults || s.Phase == PhaseError) && s.Running == 0
}

func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		Phase:       s.phase,
		Status:      s.status(),
		Transcript:  s.transcript.String(),
		Translation: s.translation.String(),
		Warning:     s.warning,
		Translate:   s.translate,
		Jobs:        s.nextSeq,
		Running:     s.running,
	}
	if s.err != nil {
		snap.Error = apierr.Message(s.err, s.uiLanguage)
		snap.ErrorKind = apierr.KindOf(s.err).String()
	}
	return snap
}

func (s *State) status() string {
	switch s.phase {
	case PhaseTranscribing:
		if s.transcript.Len() == 0 {
			return apierr.Text(apierr.MsgStatusAnalysing, s.uiLanguage)
		}
		return apierr.Text(apierr.MsgStatusListening, s.uiLanguage)
	case PhaseTranslating:
		return apierr.Text(apierr.MsgStatusTranslating, s.uiLanguage)
	}
	return ""
}
