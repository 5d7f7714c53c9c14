// Package session orchestrates one translator front end: text input with
// debounced language detection, validated single-flight translation, history
// recording and the voice adapters.
package session

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/dasmlab/linguaflow/pkg/debounce"
	"github.com/dasmlab/linguaflow/pkg/history"
	"github.com/dasmlab/linguaflow/pkg/language"
	"github.com/dasmlab/linguaflow/pkg/notify"
	"github.com/dasmlab/linguaflow/pkg/translate"
	"github.com/dasmlab/linguaflow/pkg/voice"
)

const (
	DefaultDebounce   = 500 * time.Millisecond
	DefaultMaxChars   = 5000
	DefaultSourceLang = "en"
	DefaultTargetLang = "hi"

	subscriberBuffer = 64
)

// TranslationClient is the part of translate.Client a session needs.
type TranslationClient interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (translate.Result, error)
}

// Config wires a session. Only Client is required.
type Config struct {
	Catalog  *language.Catalog
	Detector language.LanguageDetector
	Client   TranslationClient
	History  history.Store

	Recognition voice.RecognitionEngine
	Synthesis   voice.SynthesisEngine
	Probe       *voice.Probe

	// Notifier also receives every notice the session publishes.
	Notifier notify.Notifier
	Logger   *logrus.Logger

	Debounce   time.Duration
	MaxChars   int
	SourceLang string
	TargetLang string

	// AfterFunc replaces the debounce timer source in tests.
	AfterFunc debounce.AfterFunc
}

// Outcome is a successful translation.
type Outcome struct {
	Result translate.Result `json:"result"`
	// Record is nil when the history write failed.
	Record *history.Record `json:"record,omitempty"`
}

// Session is safe for concurrent use. Asynchronous completions (detection,
// voice callbacks) re-acquire the session lock before touching state.
type Session struct {
	catalog  *language.Catalog
	detector language.LanguageDetector
	client   TranslationClient
	history  history.Store
	probe    *voice.Probe
	mapper   *language.LanguageMapper
	notifier notify.Notifier
	logger   *logrus.Logger
	maxChars int

	debouncer *debounce.Debouncer
	dictation *voice.Dictation
	playback  *voice.Playback

	mu             sync.Mutex
	sourceText     string
	translatedText string
	sourceLang     string
	targetLang     string
	isTranslating  bool
	detected       *language.Record
	errMsg         string
	closed         bool

	subMu       sync.Mutex
	subscribers map[int]chan Event
	nextSub     int
}

// New creates a session from cfg, filling in defaults.
func New(cfg Config) (*Session, error) {
	if cfg.Client == nil {
		return nil, ErrNoClient
	}
	if cfg.Catalog == nil {
		cfg.Catalog = language.DefaultCatalog()
	}
	if cfg.Detector == nil {
		cfg.Detector = language.NewDetector(cfg.Catalog)
	}
	if cfg.History == nil {
		cfg.History = history.NewMemoryStore(nil)
	}
	if cfg.Recognition == nil {
		cfg.Recognition = voice.NullRecognitionEngine{}
	}
	if cfg.Synthesis == nil {
		cfg.Synthesis = voice.NullSynthesisEngine{}
	}
	if cfg.Probe == nil {
		cfg.Probe = voice.NewProbe(cfg.Recognition, cfg.Synthesis)
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.Discard
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = DefaultMaxChars
	}
	if cfg.SourceLang == "" {
		cfg.SourceLang = DefaultSourceLang
	}
	if cfg.TargetLang == "" {
		cfg.TargetLang = DefaultTargetLang
	}
	for _, code := range []string{cfg.SourceLang, cfg.TargetLang} {
		if !cfg.Catalog.Valid(code) {
			return nil, unknownLanguageError(code)
		}
	}

	var opts []debounce.Option
	if cfg.AfterFunc != nil {
		opts = append(opts, debounce.WithAfterFunc(cfg.AfterFunc))
	}

	s := &Session{
		catalog:     cfg.Catalog,
		detector:    cfg.Detector,
		client:      cfg.Client,
		history:     cfg.History,
		probe:       cfg.Probe,
		mapper:      language.NewLanguageMapper(),
		notifier:    cfg.Notifier,
		logger:      cfg.Logger,
		maxChars:    cfg.MaxChars,
		debouncer:   debounce.New(cfg.Debounce, opts...),
		sourceLang:  cfg.SourceLang,
		targetLang:  cfg.TargetLang,
		subscribers: make(map[int]chan Event),
	}
	n := notify.Func(s.notice)
	s.dictation = voice.NewDictation(cfg.Recognition, s.mapper.ToRecognitionTag(cfg.SourceLang), s.appendTranscript, n, cfg.Logger)
	s.playback = voice.NewPlayback(cfg.Synthesis, n, cfg.Logger)
	activeSessions.Inc()
	return s, nil
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() State {
	count := utf8.RuneCountInString(s.sourceText)
	st := State{
		SourceText:     s.sourceText,
		TranslatedText: s.translatedText,
		SourceLang:     s.sourceLang,
		TargetLang:     s.targetLang,
		IsTranslating:  s.isTranslating,
		Error:          s.errMsg,
		CharCount:      count,
		MaxChars:       s.maxChars,
		NearLimit:      float64(count) >= NearLimitRatio*float64(s.maxChars),
		OverLimit:      count > s.maxChars,
		Dictation:      s.dictation.State(),
		Playback:       s.playback.State(),
		Volume:         s.playback.Volume(),
	}
	if s.detected != nil {
		d := *s.detected
		st.Detected = &d
	}
	return st
}

// SetSourceText replaces the input and schedules detection. Whitespace-only
// input cancels any pending detection and clears the detected language.
func (s *Session) SetSourceText(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.sourceText = text
	s.scheduleDetectionLocked()
	s.publishStateLocked()
	return nil
}

// appendTranscript is the dictation sink.
func (s *Session) appendTranscript(transcript string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.sourceText == "" {
		s.sourceText = transcript
	} else {
		s.sourceText = s.sourceText + " " + transcript
	}
	s.scheduleDetectionLocked()
	s.publishStateLocked()
}

func (s *Session) scheduleDetectionLocked() {
	text := s.sourceText
	if strings.TrimSpace(text) == "" {
		s.debouncer.Cancel()
		s.detected = nil
		return
	}
	s.debouncer.Schedule(func(ctx context.Context) {
		s.detect(ctx, text)
	})
}

func (s *Session) detect(ctx context.Context, text string) {
	rec, err := s.detector.DetectLanguage(ctx, text)

	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx.Err() != nil || s.closed {
		// Superseded by a newer edit.
		return
	}
	if err != nil {
		s.logger.WithError(err).Debug("Language detection failed")
		s.detected = nil
	} else {
		s.detected = rec
	}
	st := s.snapshotLocked()
	s.publish(Event{Type: EventDetected, State: &st})
}

// SetSourceLang selects the source language and rebinds dictation to it.
func (s *Session) SetSourceLang(code string) error {
	if !s.catalog.Valid(code) {
		return unknownLanguageError(code)
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.sourceLang = code
	s.publishStateLocked()
	s.mu.Unlock()

	s.dictation.SetLanguage(s.mapper.ToRecognitionTag(code))
	return nil
}

// SetTargetLang selects the target language.
func (s *Session) SetTargetLang(code string) error {
	if !s.catalog.Valid(code) {
		return unknownLanguageError(code)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.targetLang = code
	s.publishStateLocked()
	return nil
}

// Swap exchanges the languages and, when a translation is shown, the source
// and translated texts.
func (s *Session) Swap() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.isTranslating {
		s.mu.Unlock()
		return ErrTranslationInFlight
	}
	s.sourceLang, s.targetLang = s.targetLang, s.sourceLang
	if s.translatedText != "" {
		s.sourceText, s.translatedText = s.translatedText, s.sourceText
		s.scheduleDetectionLocked()
	}
	src := s.sourceLang
	s.publishStateLocked()
	s.mu.Unlock()

	s.dictation.SetLanguage(s.mapper.ToRecognitionTag(src))
	s.notice(notify.Info("Languages swapped!"))
	return nil
}

// ClearSource wipes the input, the translation and any error.
func (s *Session) ClearSource() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.sourceText = ""
	s.translatedText = ""
	s.errMsg = ""
	s.debouncer.Cancel()
	s.detected = nil
	s.publishStateLocked()
}

// ClearTranslated wipes the translation only.
func (s *Session) ClearTranslated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.translatedText = ""
	s.publishStateLocked()
}

func (s *Session) validateLocked() (string, error) {
	return Validate(s.catalog, s.sourceText, s.sourceLang, s.targetLang, s.maxChars)
}

// Validate checks a translation request and returns the trimmed text to send.
// Length is measured in runes of the trimmed text.
func Validate(catalog *language.Catalog, text, sourceLang, targetLang string, maxChars int) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", emptyTextError()
	}
	if !catalog.Valid(sourceLang) {
		return "", unknownLanguageError(sourceLang)
	}
	if !catalog.Valid(targetLang) {
		return "", unknownLanguageError(targetLang)
	}
	if sourceLang == targetLang {
		return "", sameLanguageError()
	}
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if utf8.RuneCountInString(text) > maxChars {
		return "", tooLongError(maxChars)
	}
	return text, nil
}

// Translate validates the input and sends it to the translation client. Only
// one translation runs at a time. On success the result is shown and
// appended to history; a history failure is logged and does not fail the
// call.
func (s *Session) Translate(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Outcome{}, ErrClosed
	}
	if s.isTranslating {
		s.mu.Unlock()
		return Outcome{}, ErrTranslationInFlight
	}
	text, err := s.validateLocked()
	if err != nil {
		s.mu.Unlock()
		translationsTotal.WithLabelValues("invalid").Inc()
		s.notice(notify.Error(err.Error()))
		return Outcome{}, err
	}
	src, tgt := s.sourceLang, s.targetLang
	s.isTranslating = true
	s.errMsg = ""
	s.publishStateLocked()
	s.mu.Unlock()

	res, err := s.client.Translate(ctx, text, src, tgt)

	s.mu.Lock()
	s.isTranslating = false
	if err != nil {
		s.errMsg = "Translation failed. Please try again."
		s.publishStateLocked()
		s.mu.Unlock()
		translationsTotal.WithLabelValues("error").Inc()
		s.logger.WithError(err).WithFields(logrus.Fields{
			"source_lang": src,
			"target_lang": tgt,
		}).Warn("Translation failed")
		s.notice(notify.Error("Translation failed. Please try again."))
		return Outcome{}, err
	}
	s.translatedText = res.TranslatedText
	s.publishStateLocked()
	s.mu.Unlock()
	translationsTotal.WithLabelValues("success").Inc()

	out := Outcome{Result: res}
	rec, herr := s.history.Append(ctx, history.Entry{
		SourceText:     res.SourceText,
		TranslatedText: res.TranslatedText,
		SourceLang:     res.SourceLang,
		TargetLang:     res.TargetLang,
		CharCount:      res.CharCount,
	})
	if herr != nil {
		historyFailures.Inc()
		s.logger.WithError(herr).Warn("Failed to save translation to history")
	} else {
		out.Record = &rec
		s.publish(Event{Type: EventTranslated, Record: &rec})
	}
	s.notice(notify.Success("Translation completed!"))
	return out, nil
}

// ToggleDictation starts or stops voice input.
func (s *Session) ToggleDictation() error {
	if s.isClosed() {
		return ErrClosed
	}
	err := s.dictation.Toggle()
	s.publishState()
	return err
}

// ToggleSpeech speaks the translated text, or pauses/resumes it.
func (s *Session) ToggleSpeech() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	text, lang := s.translatedText, s.mapper.ToRecognitionTag(s.targetLang)
	s.mu.Unlock()

	err := s.playback.Toggle(text, lang)
	s.publishState()
	return err
}

// StopSpeech cancels playback.
func (s *Session) StopSpeech() error {
	if s.isClosed() {
		return ErrClosed
	}
	s.playback.Stop()
	s.publishState()
	return nil
}

// SetVolume sets the playback volume, clamped to [0, 1], and returns the
// applied value.
func (s *Session) SetVolume(v float64) (float64, error) {
	if s.isClosed() {
		return 0, ErrClosed
	}
	applied := s.playback.SetVolume(v)
	s.publishState()
	return applied, nil
}

// VoiceAvailability reports which voice controls to show.
func (s *Session) VoiceAvailability() voice.Availability {
	return s.probe.Availability()
}

// Subscribe returns a channel of events and a function that ends the
// subscription. Slow subscribers miss events rather than block the session.
func (s *Session) Subscribe() (<-chan Event, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if s.subscribers == nil {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			if c, ok := s.subscribers[id]; ok {
				delete(s.subscribers, id)
				close(c)
			}
		})
	}
}

// Close cancels pending detection, releases the voice adapters and ends all
// subscriptions. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.debouncer.Close()
	s.mu.Unlock()

	s.dictation.Close()
	s.playback.Close()
	activeSessions.Dec()

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for id, ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, id)
	}
	s.subscribers = nil
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// notice forwards n to the configured notifier and to subscribers. It never
// takes the session lock.
func (s *Session) notice(n notify.Notice) {
	s.notifier.Notify(n)
	s.publish(Event{Type: EventNotice, Notice: &n})
}

func (s *Session) publishState() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishStateLocked()
}

func (s *Session) publishStateLocked() {
	st := s.snapshotLocked()
	s.publish(Event{Type: EventState, State: &st})
}

func (s *Session) publish(ev Event) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
		}
	}
}
