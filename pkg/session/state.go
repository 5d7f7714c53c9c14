package session

import (
	"github.com/dasmlab/linguaflow/pkg/history"
	"github.com/dasmlab/linguaflow/pkg/language"
	"github.com/dasmlab/linguaflow/pkg/notify"
	"github.com/dasmlab/linguaflow/pkg/voice"
)

// NearLimitRatio is the share of MaxChars from which the counter warns.
const NearLimitRatio = 0.8

// State is a snapshot of a session.
type State struct {
	SourceText     string           `json:"sourceText"`
	TranslatedText string           `json:"translatedText"`
	SourceLang     string           `json:"sourceLang"`
	TargetLang     string           `json:"targetLang"`
	IsTranslating  bool             `json:"isTranslating"`
	Detected       *language.Record `json:"detected,omitempty"`
	Error          string           `json:"error,omitempty"`

	CharCount int  `json:"charCount"`
	MaxChars  int  `json:"maxChars"`
	NearLimit bool `json:"nearLimit"`
	OverLimit bool `json:"overLimit"`

	Dictation voice.DictationState `json:"dictation"`
	Playback  voice.PlaybackState  `json:"playback"`
	Volume    float64              `json:"volume"`
}

// EventType tags an Event.
type EventType string

const (
	// EventState carries a fresh State after any change.
	EventState EventType = "state"
	// EventNotice carries a user-facing notice.
	EventNotice EventType = "notice"
	// EventDetected carries the detection result (nil Detected when absent).
	EventDetected EventType = "detected"
	// EventTranslated carries the history record of a completed translation
	// so history views can reload.
	EventTranslated EventType = "translated"
)

// Event is published to subscribers.
type Event struct {
	Type   EventType       `json:"type"`
	State  *State          `json:"state,omitempty"`
	Notice *notify.Notice  `json:"notice,omitempty"`
	Record *history.Record `json:"record,omitempty"`
}
