package voice

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/dasmlab/linguaflow/pkg/notify"
)

// DictationState is the dictation adapter state.
type DictationState string

const (
	DictationIdle      DictationState = "idle"
	DictationListening DictationState = "listening"
)

// Dictation captures speech into a sink, one utterance per start. The
// recognition handle follows the configured language; callbacks from a
// handle that has been replaced are ignored.
type Dictation struct {
	engine   RecognitionEngine
	notifier notify.Notifier
	sink     func(transcript string)
	logger   *logrus.Logger

	mu    sync.Mutex
	lang  string
	rec   Recognition
	gen   uint64
	state DictationState
}

// NewDictation creates an idle adapter. sink receives every recognised
// transcript.
func NewDictation(engine RecognitionEngine, lang string, sink func(string), notifier notify.Notifier, logger *logrus.Logger) *Dictation {
	if engine == nil {
		engine = NullRecognitionEngine{}
	}
	if notifier == nil {
		notifier = notify.Discard
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Dictation{
		engine:   engine,
		notifier: notifier,
		sink:     sink,
		logger:   logger,
		lang:     lang,
		state:    DictationIdle,
	}
}

// State returns the current state.
func (d *Dictation) State() DictationState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Language returns the recognition language.
func (d *Dictation) Language() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lang
}

// Toggle starts listening when idle and stops when listening.
func (d *Dictation) Toggle() error {
	d.mu.Lock()
	listening := d.state == DictationListening
	d.mu.Unlock()

	if listening {
		d.Stop()
		return nil
	}
	return d.Start()
}

// Start begins capturing one utterance.
func (d *Dictation) Start() error {
	d.mu.Lock()
	if d.state == DictationListening {
		d.mu.Unlock()
		return nil
	}
	if !d.engine.Available() {
		d.mu.Unlock()
		d.notifier.Notify(notify.Error("Speech recognition is not supported on this device"))
		return ErrUnavailable
	}
	if err := d.bindLocked(); err != nil {
		d.mu.Unlock()
		d.notifier.Notify(notify.Error("Failed to start speech recognition"))
		return err
	}
	if err := d.rec.Start(); err != nil {
		d.mu.Unlock()
		d.logger.WithError(err).Warn("Speech recognition failed to start")
		d.notifier.Notify(notify.Error("Failed to start speech recognition"))
		return fmt.Errorf("start recognition: %w", err)
	}
	d.state = DictationListening
	d.mu.Unlock()
	return nil
}

// Stop ends capture and detaches the recognition handle, so late results
// or end events from the stopped run never reach the sink or the state.
// The next Start binds a fresh handle.
func (d *Dictation) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != DictationListening {
		return
	}
	d.teardownLocked()
}

// SetLanguage rebinds recognition to lang. The previous handle is stopped
// and detached so none of its callbacks reach the sink.
func (d *Dictation) SetLanguage(lang string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if lang == d.lang && d.rec != nil {
		return
	}
	d.lang = lang
	d.teardownLocked()
	if d.engine.Available() {
		if err := d.bindLocked(); err != nil {
			d.logger.WithError(err).WithField("lang", lang).Warn("Failed to rebind speech recognition")
		}
	}
}

// Close releases the recognition handle.
func (d *Dictation) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.teardownLocked()
}

func (d *Dictation) teardownLocked() {
	if d.rec != nil {
		d.rec.SetEvents(RecognitionEvents{})
		if d.state == DictationListening {
			d.rec.Stop()
		}
		d.rec = nil
	}
	d.gen++
	d.state = DictationIdle
}

func (d *Dictation) bindLocked() error {
	if d.rec != nil {
		return nil
	}
	rec, err := d.engine.NewRecognition(d.lang)
	if err != nil {
		return fmt.Errorf("new recognition for %q: %w", d.lang, err)
	}
	d.gen++
	gen := d.gen
	rec.SetEvents(RecognitionEvents{
		OnStart:  func() { d.onStart(gen) },
		OnResult: func(t string) { d.onResult(gen, t) },
		OnError:  func(code string) { d.onError(gen, code) },
		OnEnd:    func() { d.onEnd(gen) },
	})
	d.rec = rec
	return nil
}

// current reports whether gen is the live binding.
func (d *Dictation) current(gen uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gen == gen
}

func (d *Dictation) onStart(gen uint64) {
	if !d.current(gen) {
		return
	}
	d.notifier.Notify(notify.Info("Listening... Please speak now"))
}

func (d *Dictation) onResult(gen uint64, transcript string) {
	if !d.current(gen) {
		d.logger.Debug("Dropping transcript from a replaced recognizer")
		return
	}
	if d.sink != nil {
		d.sink(transcript)
	}
	d.notifier.Notify(notify.Success("Voice input captured successfully"))
}

func (d *Dictation) onError(gen uint64, code string) {
	d.mu.Lock()
	if d.gen != gen {
		d.mu.Unlock()
		return
	}
	d.state = DictationIdle
	d.mu.Unlock()

	d.logger.WithField("code", code).Debug("Speech recognition error")
	switch code {
	case ErrorNotAllowed:
		d.notifier.Notify(notify.Error("Microphone access denied. Please enable microphone permissions."))
	case ErrorNoSpeech:
		d.notifier.Notify(notify.Warning("No speech detected. Please try again."))
	default:
		d.notifier.Notify(notify.Error("Speech recognition error: " + code))
	}
}

func (d *Dictation) onEnd(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gen == gen {
		d.state = DictationIdle
	}
}
