// Package voice adapts optional speech capabilities (dictation and spoken
// playback) to small state machines the session drives.
package voice

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrUnavailable is returned when the host has no such speech capability.
var ErrUnavailable = errors.New("speech capability unavailable")

// Recognition error codes reported through RecognitionEvents.OnError.
const (
	ErrorNotAllowed = "not-allowed"
	ErrorNoSpeech   = "no-speech"
	ErrorAborted    = "aborted"
	ErrorNetwork    = "network"
)

// RecognitionEvents are the callbacks a recognition instance fires. Any field
// may be nil. Callbacks may run on any goroutine but never synchronously from
// Start, Stop or SetEvents.
type RecognitionEvents struct {
	OnStart  func()
	OnResult func(transcript string)
	OnError  func(code string)
	OnEnd    func()
}

// Recognition is one speech-to-text handle bound to a language. It captures a
// single utterance per Start.
type Recognition interface {
	Start() error
	Stop()
	// SetEvents replaces the callbacks; the zero value detaches them.
	SetEvents(ev RecognitionEvents)
	Language() string
}

// RecognitionEngine creates recognition handles.
type RecognitionEngine interface {
	Available() bool
	NewRecognition(lang string) (Recognition, error)
}

// Utterance is a piece of text to speak.
type Utterance struct {
	Text   string
	Lang   string
	Volume float64
	Rate   float64
	Pitch  float64
}

// Default utterance parameters: slightly slower than normal speech.
const (
	DefaultRate   = 0.9
	DefaultPitch  = 1.0
	DefaultVolume = 1.0
)

// SpeechEvents are the callbacks a speech handle fires. Cancel fires none,
// and none fire synchronously from Speak or a Speech method.
type SpeechEvents struct {
	OnStart func()
	OnEnd   func()
	OnError func(err error)
}

// Speech is an in-progress utterance.
type Speech interface {
	Pause()
	Resume()
	Cancel()
	SetVolume(v float64)
}

// SynthesisEngine speaks utterances.
type SynthesisEngine interface {
	Available() bool
	Speak(u Utterance, ev SpeechEvents) (Speech, error)
}

// Availability reports which controls a client should show.
type Availability struct {
	Recognition bool `json:"recognition"`
	Synthesis   bool `json:"synthesis"`
}

// Probe checks both engines once and caches the answer.
type Probe struct {
	recognition RecognitionEngine
	synthesis   SynthesisEngine

	once   sync.Once
	result Availability
}

// NewProbe creates a probe over the given engines. Nil engines count as
// unavailable.
func NewProbe(rec RecognitionEngine, syn SynthesisEngine) *Probe {
	return &Probe{recognition: rec, synthesis: syn}
}

// Availability returns the cached capability check.
func (p *Probe) Availability() Availability {
	p.once.Do(func() {
		p.result = Availability{
			Recognition: p.recognition != nil && p.recognition.Available(),
			Synthesis:   p.synthesis != nil && p.synthesis.Available(),
		}
	})
	return p.result
}

// EngineKind selects the engine family.
type EngineKind string

const (
	// EngineNull reports both capabilities as absent.
	EngineNull EngineKind = "null"
	// EngineSimulated produces deterministic transcripts and timed playback.
	EngineSimulated EngineKind = "simulated"
)

// ParseEngineKind parses a voice engine name.
func ParseEngineKind(s string) (EngineKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "null", "none", "off":
		return EngineNull, nil
	case "simulated", "stub", "demo":
		return EngineSimulated, nil
	default:
		return "", fmt.Errorf("unknown voice engine: %s (supported: null, simulated)", s)
	}
}

// NewEngines builds the recognition and synthesis engines for kind.
func NewEngines(kind EngineKind) (RecognitionEngine, SynthesisEngine, error) {
	switch kind {
	case EngineNull, "":
		return NullRecognitionEngine{}, NullSynthesisEngine{}, nil
	case EngineSimulated:
		return NewSimulatedRecognitionEngine(nil), NewSimulatedSynthesisEngine(nil), nil
	default:
		return nil, nil, fmt.Errorf("unknown voice engine: %s", kind)
	}
}

// NullRecognitionEngine is used on hosts without speech recognition.
type NullRecognitionEngine struct{}

func (NullRecognitionEngine) Available() bool { return false }

func (NullRecognitionEngine) NewRecognition(string) (Recognition, error) {
	return nil, ErrUnavailable
}

// NullSynthesisEngine is used on hosts without speech synthesis.
type NullSynthesisEngine struct{}

func (NullSynthesisEngine) Available() bool { return false }

func (NullSynthesisEngine) Speak(Utterance, SpeechEvents) (Speech, error) {
	return nil, ErrUnavailable
}
