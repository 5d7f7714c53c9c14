package voice

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/dasmlab/linguaflow/pkg/notify"
)

// PlaybackState is the playback adapter state.
type PlaybackState string

const (
	PlaybackIdle     PlaybackState = "idle"
	PlaybackSpeaking PlaybackState = "speaking"
	PlaybackPaused   PlaybackState = "paused"
)

// Playback speaks text through a SynthesisEngine.
type Playback struct {
	engine   SynthesisEngine
	notifier notify.Notifier
	logger   *logrus.Logger

	mu     sync.Mutex
	state  PlaybackState
	speech Speech
	gen    uint64
	volume float64
}

// NewPlayback creates an idle adapter at full volume.
func NewPlayback(engine SynthesisEngine, notifier notify.Notifier, logger *logrus.Logger) *Playback {
	if engine == nil {
		engine = NullSynthesisEngine{}
	}
	if notifier == nil {
		notifier = notify.Discard
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Playback{
		engine:   engine,
		notifier: notifier,
		logger:   logger,
		state:    PlaybackIdle,
		volume:   DefaultVolume,
	}
}

// State returns the current state.
func (p *Playback) State() PlaybackState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Volume returns the volume applied to new and current utterances.
func (p *Playback) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// Toggle starts speaking text when idle and pauses or resumes otherwise.
// Empty text only produces a warning.
func (p *Playback) Toggle(text, lang string) error {
	if !p.engine.Available() {
		p.notifier.Notify(notify.Error("Speech synthesis is not supported on this device"))
		return ErrUnavailable
	}

	p.mu.Lock()
	switch p.state {
	case PlaybackSpeaking:
		p.speech.Pause()
		p.state = PlaybackPaused
		p.mu.Unlock()
		p.notifier.Notify(notify.Info("Speech paused"))
		return nil
	case PlaybackPaused:
		p.speech.Resume()
		p.state = PlaybackSpeaking
		p.mu.Unlock()
		p.notifier.Notify(notify.Info("Speech resumed"))
		return nil
	}

	if strings.TrimSpace(text) == "" {
		p.mu.Unlock()
		p.notifier.Notify(notify.Warning("No text to speak"))
		return nil
	}

	p.gen++
	gen := p.gen
	speech, err := p.engine.Speak(Utterance{
		Text:   text,
		Lang:   lang,
		Volume: p.volume,
		Rate:   DefaultRate,
		Pitch:  DefaultPitch,
	}, SpeechEvents{
		OnStart: func() { p.onStart(gen) },
		OnEnd:   func() { p.onEnd(gen) },
		OnError: func(err error) { p.onError(gen, err) },
	})
	if err != nil {
		p.mu.Unlock()
		p.logger.WithError(err).Warn("Speech synthesis failed to start")
		p.notifier.Notify(notify.Error("Failed to start speech synthesis"))
		return fmt.Errorf("speak: %w", err)
	}
	p.speech = speech
	p.state = PlaybackSpeaking
	p.mu.Unlock()
	return nil
}

// Stop cancels the current utterance.
func (p *Playback) Stop() {
	p.mu.Lock()
	if p.speech == nil {
		p.mu.Unlock()
		return
	}
	p.resetLocked()
	p.mu.Unlock()
	p.notifier.Notify(notify.Info("Speech stopped"))
}

// SetVolume clamps v to [0, 1], stores it and applies it to the utterance in
// progress. It returns the applied volume.
func (p *Playback) SetVolume(v float64) float64 {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = v
	if p.speech != nil && p.state != PlaybackIdle {
		p.speech.SetVolume(v)
	}
	return v
}

// Close cancels playback without a notice.
func (p *Playback) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.speech != nil {
		p.resetLocked()
	}
}

func (p *Playback) resetLocked() {
	p.speech.Cancel()
	p.speech = nil
	p.gen++
	p.state = PlaybackIdle
}

func (p *Playback) onStart(gen uint64) {
	p.mu.Lock()
	live := p.gen == gen
	p.mu.Unlock()
	if live {
		p.notifier.Notify(notify.Success("Starting speech"))
	}
}

func (p *Playback) onEnd(gen uint64) {
	p.mu.Lock()
	if p.gen != gen {
		p.mu.Unlock()
		return
	}
	p.speech = nil
	p.state = PlaybackIdle
	p.mu.Unlock()
	p.notifier.Notify(notify.Info("Speech completed"))
}

func (p *Playback) onError(gen uint64, err error) {
	p.mu.Lock()
	if p.gen != gen {
		p.mu.Unlock()
		return
	}
	p.speech = nil
	p.state = PlaybackIdle
	p.mu.Unlock()
	p.logger.WithError(err).Warn("Speech synthesis error")
	p.notifier.Notify(notify.Error("Speech synthesis error occurred"))
}
