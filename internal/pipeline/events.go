package pipeline

// Event is an input to State.Apply
type Event interface {
	event()
}

// Started begins a new session and resets every buffer.
type Started struct {
	Translate bool
}

// ChunkArrived carries one transcript chunk, in arrival order.
type ChunkArrived struct {
	Text string
}

// TranscriptEnded reports that the transcription stream is exhausted.
type TranscriptEnded struct{}

// TranscriptFailed ends the transcription stream with an error.
type TranscriptFailed struct {
	Err error
}

// JobChunk carries one translated chunk of job Seq.
type JobChunk struct {
	Seq  int
	Text string
}

// JobCompleted reports that job Seq finished successfully.
type JobCompleted struct {
	Seq int
}

// JobFailed reports that job Seq finished with an error.
type JobFailed struct {
	Seq int
	Err error
}

func (Started) event()          {}
func (ChunkArrived) event()     {}
func (TranscriptEnded) event()  {}
func (TranscriptFailed) event() {}
func (JobChunk) event()         {}
func (JobCompleted) event()     {}
func (JobFailed) event()        {}

// Dispatch asks the runner to start translation job Seq for Text.
type Dispatch struct {
	Seq  int
	Text string
}
