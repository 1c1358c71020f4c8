package pipeline

// State is the position of a request in the pipeline.
type State int

const (
	StateReceived State = iota
	StateNormalized
	StateLanguageResolved
	StateTranscribed
	StateReplyGenerated
	StateSynthesized
	StateDurationChecked
	StateCompleted
	StateFailed
)

var stateNames = [...]string{
	StateReceived:         "received",
	StateNormalized:       "normalized",
	StateLanguageResolved: "language_resolved",
	StateTranscribed:      "transcribed",
	StateReplyGenerated:   "reply_generated",
	StateSynthesized:      "synthesized",
	StateDurationChecked:  "duration_checked",
	StateCompleted:        "completed",
	StateFailed:           "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Stage names used for errors and latency metrics.
const (
	stageNormalize  = "normalize"
	stageDetect     = "detect"
	stageTranscribe = "transcribe"
	stageGenerate   = "generate"
	stageSynthesize = "synthesize"
	stageGuard      = "duration_guard"
)
