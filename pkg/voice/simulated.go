package voice

import (
	"errors"
	"sync"
	"time"
	"unicode/utf8"
)

// SimulatedRecognitionConfig configures the simulated recognizer.
type SimulatedRecognitionConfig struct {
	// Delay between start and the transcript.
	Delay time.Duration
	// Transcripts are returned in turn, one per Start, cycling.
	Transcripts []string
	// ErrorCode, when set, is reported instead of a transcript.
	ErrorCode string
}

// DefaultSimulatedRecognitionConfig returns the demo configuration.
func DefaultSimulatedRecognitionConfig() *SimulatedRecognitionConfig {
	return &SimulatedRecognitionConfig{
		Delay: 300 * time.Millisecond,
		Transcripts: []string{
			"Hello",
			"Good morning",
			"Thank you",
			"How are you",
			"Welcome",
		},
	}
}

// SimulatedRecognitionEngine hands out recognizers that "hear" canned
// transcripts. Used for demos and tests on hosts without a microphone.
type SimulatedRecognitionEngine struct {
	config *SimulatedRecognitionConfig

	mu   sync.Mutex
	next int
}

// NewSimulatedRecognitionEngine creates the engine; nil selects defaults.
func NewSimulatedRecognitionEngine(config *SimulatedRecognitionConfig) *SimulatedRecognitionEngine {
	if config == nil {
		config = DefaultSimulatedRecognitionConfig()
	}
	return &SimulatedRecognitionEngine{config: config}
}

func (e *SimulatedRecognitionEngine) Available() bool { return true }

func (e *SimulatedRecognitionEngine) NewRecognition(lang string) (Recognition, error) {
	return &simulatedRecognition{engine: e, lang: lang}, nil
}

func (e *SimulatedRecognitionEngine) nextTranscript() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.config.Transcripts) == 0 {
		return ""
	}
	t := e.config.Transcripts[e.next%len(e.config.Transcripts)]
	e.next++
	return t
}

type simulatedRecognition struct {
	engine *SimulatedRecognitionEngine
	lang   string

	mu     sync.Mutex
	events RecognitionEvents
	timer  *time.Timer
	active bool
	run    uint64
}

func (r *simulatedRecognition) Language() string { return r.lang }

func (r *simulatedRecognition) SetEvents(ev RecognitionEvents) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = ev
}

func (r *simulatedRecognition) Start() error {
	r.mu.Lock()
	if r.active {
		r.mu.Unlock()
		return errors.New("recognition already started")
	}
	r.active = true
	r.run++
	run := r.run
	r.timer = time.AfterFunc(r.engine.config.Delay, func() { r.deliver(run) })
	onStart := r.events.OnStart
	r.mu.Unlock()

	if onStart != nil {
		go onStart()
	}
	return nil
}

func (r *simulatedRecognition) deliver(run uint64) {
	r.mu.Lock()
	if !r.active || r.run != run {
		r.mu.Unlock()
		return
	}
	r.active = false
	ev := r.events
	r.mu.Unlock()

	if code := r.engine.config.ErrorCode; code != "" {
		if ev.OnError != nil {
			ev.OnError(code)
		}
	} else if t := r.engine.nextTranscript(); t == "" {
		if ev.OnError != nil {
			ev.OnError(ErrorNoSpeech)
		}
	} else if ev.OnResult != nil {
		ev.OnResult(t)
	}
	if ev.OnEnd != nil {
		ev.OnEnd()
	}
}

func (r *simulatedRecognition) Stop() {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return
	}
	r.active = false
	if r.timer != nil {
		r.timer.Stop()
	}
	onEnd := r.events.OnEnd
	r.mu.Unlock()

	if onEnd != nil {
		go onEnd()
	}
}

// SimulatedSynthesisConfig configures the simulated synthesizer.
type SimulatedSynthesisConfig struct {
	// PerRune is the speaking time per character at rate 1.
	PerRune time.Duration
}

// DefaultSimulatedSynthesisConfig returns the demo configuration.
func DefaultSimulatedSynthesisConfig() *SimulatedSynthesisConfig {
	return &SimulatedSynthesisConfig{PerRune: 60 * time.Millisecond}
}

// SimulatedSynthesisEngine "speaks" for a duration proportional to the text
// length and the utterance rate.
type SimulatedSynthesisEngine struct {
	config *SimulatedSynthesisConfig
}

// NewSimulatedSynthesisEngine creates the engine; nil selects defaults.
func NewSimulatedSynthesisEngine(config *SimulatedSynthesisConfig) *SimulatedSynthesisEngine {
	if config == nil {
		config = DefaultSimulatedSynthesisConfig()
	}
	return &SimulatedSynthesisEngine{config: config}
}

func (e *SimulatedSynthesisEngine) Available() bool { return true }

// Duration is how long u takes to speak.
func (e *SimulatedSynthesisEngine) Duration(u Utterance) time.Duration {
	rate := u.Rate
	if rate <= 0 {
		rate = 1
	}
	return time.Duration(float64(e.config.PerRune) * float64(utf8.RuneCountInString(u.Text)) / rate)
}

func (e *SimulatedSynthesisEngine) Speak(u Utterance, ev SpeechEvents) (Speech, error) {
	s := &simulatedSpeech{events: ev, remaining: e.Duration(u), volume: u.Volume}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer = time.AfterFunc(0, s.begin)
	return s, nil
}

type simulatedSpeech struct {
	events SpeechEvents

	mu        sync.Mutex
	timer     *time.Timer
	remaining time.Duration
	startedAt time.Time
	volume    float64
	started   bool
	paused    bool
	done      bool
}

func (s *simulatedSpeech) begin() {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.started = true
	if !s.paused {
		s.startedAt = time.Now()
		s.timer = time.AfterFunc(s.remaining, s.finish)
	}
	onStart := s.events.OnStart
	s.mu.Unlock()

	if onStart != nil {
		onStart()
	}
}

func (s *simulatedSpeech) finish() {
	s.mu.Lock()
	if s.paused {
		// Fired while being paused; finish as soon as it resumes.
		s.remaining = 0
	}
	if s.done || s.paused {
		s.mu.Unlock()
		return
	}
	s.done = true
	onEnd := s.events.OnEnd
	s.mu.Unlock()

	if onEnd != nil {
		onEnd()
	}
}

func (s *simulatedSpeech) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done || s.paused {
		return
	}
	s.paused = true
	if s.started && s.timer.Stop() {
		s.remaining -= time.Since(s.startedAt)
		if s.remaining < 0 {
			s.remaining = 0
		}
	}
}

func (s *simulatedSpeech) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done || !s.paused {
		return
	}
	s.paused = false
	if s.started {
		s.startedAt = time.Now()
		s.timer = time.AfterFunc(s.remaining, s.finish)
	}
}

func (s *simulatedSpeech) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = true
	if s.timer != nil {
		s.timer.Stop()
	}
}

func (s *simulatedSpeech) SetVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = v
}

// Volume is the current playback volume.
func (s *simulatedSpeech) Volume() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}
