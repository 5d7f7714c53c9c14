package voice

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dasmlab/linguaflow/pkg/notify"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

// fakeRecognition lets tests fire callbacks by hand.
type fakeRecognition struct {
	lang string

	mu      sync.Mutex
	events  RecognitionEvents
	starts  int
	stops   int
	stopped bool
}

func (f *fakeRecognition) Language() string { return f.lang }

func (f *fakeRecognition) SetEvents(ev RecognitionEvents) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = ev
}

func (f *fakeRecognition) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	return nil
}

func (f *fakeRecognition) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	f.stopped = true
}

func (f *fakeRecognition) ev() RecognitionEvents {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events
}

type fakeRecognitionEngine struct {
	available bool
	made      []*fakeRecognition
}

func (e *fakeRecognitionEngine) Available() bool { return e.available }

func (e *fakeRecognitionEngine) NewRecognition(lang string) (Recognition, error) {
	r := &fakeRecognition{lang: lang}
	e.made = append(e.made, r)
	return r, nil
}

func newTestDictation(t *testing.T) (*Dictation, *fakeRecognitionEngine, *notify.Recorder, *[]string) {
	t.Helper()
	engine := &fakeRecognitionEngine{available: true}
	rec := &notify.Recorder{}
	var text []string
	d := NewDictation(engine, "en", func(s string) { text = append(text, s) }, rec, quietLogger())
	return d, engine, rec, &text
}

func TestDictation_ToggleAndResult(t *testing.T) {
	t.Parallel()

	d, engine, rec, text := newTestDictation(t)
	require.NoError(t, d.Toggle())
	assert.Equal(t, DictationListening, d.State())
	require.Len(t, engine.made, 1)
	assert.Equal(t, "en", engine.made[0].lang)

	ev := engine.made[0].ev()
	ev.OnStart()
	ev.OnResult("hello there")
	ev.OnEnd()

	assert.Equal(t, DictationIdle, d.State())
	assert.Equal(t, []string{"hello there"}, *text)
	assert.Equal(t, []string{"Listening... Please speak now", "Voice input captured successfully"}, rec.Messages())
}

func TestDictation_ToggleWhileListeningStops(t *testing.T) {
	t.Parallel()

	d, engine, _, _ := newTestDictation(t)
	require.NoError(t, d.Toggle())
	require.NoError(t, d.Toggle())

	assert.Equal(t, DictationIdle, d.State())
	assert.Equal(t, 1, engine.made[0].stops)
}

func TestDictation_LateEventsAfterStopAreIgnored(t *testing.T) {
	t.Parallel()

	d, engine, _, text := newTestDictation(t)
	require.NoError(t, d.Toggle())
	stale := engine.made[0].ev()

	require.NoError(t, d.Toggle())
	require.NoError(t, d.Toggle())
	assert.Equal(t, DictationListening, d.State())
	require.Len(t, engine.made, 2, "restart binds a fresh recognizer")

	// The stopped run reports its end only now.
	stale.OnResult("late")
	stale.OnEnd()

	assert.Equal(t, DictationListening, d.State())
	assert.Empty(t, *text)

	engine.made[1].ev().OnResult("hello")
	assert.Equal(t, []string{"hello"}, *text)
}

func TestDictation_SimulatedQuickRestartKeepsListening(t *testing.T) {
	t.Parallel()

	engine := NewSimulatedRecognitionEngine(&SimulatedRecognitionConfig{
		Delay:       time.Second,
		Transcripts: []string{"hello"},
	})
	var (
		mu  sync.Mutex
		got []string
	)
	d := NewDictation(engine, "en", func(s string) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, s)
	}, nil, quietLogger())
	defer d.Close()

	require.NoError(t, d.Toggle())
	require.NoError(t, d.Toggle())
	require.NoError(t, d.Toggle())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, DictationListening, d.State())

	require.NoError(t, d.Toggle())
	assert.Equal(t, DictationIdle, d.State())

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, got)
}

func TestDictation_ErrorsReturnToIdle(t *testing.T) {
	t.Parallel()

	cases := map[string]notify.Notice{
		ErrorNotAllowed: notify.Error("Microphone access denied. Please enable microphone permissions."),
		ErrorNoSpeech:   notify.Warning("No speech detected. Please try again."),
		ErrorNetwork:    notify.Error("Speech recognition error: network"),
	}
	for code, want := range cases {
		code, want := code, want
		t.Run(code, func(t *testing.T) {
			t.Parallel()
			d, engine, rec, _ := newTestDictation(t)
			require.NoError(t, d.Start())
			engine.made[0].ev().OnError(code)

			assert.Equal(t, DictationIdle, d.State())
			assert.Equal(t, []notify.Notice{want}, rec.Notices())
		})
	}
}

func TestDictation_SetLanguageDetachesOldRecognizer(t *testing.T) {
	t.Parallel()

	d, engine, _, text := newTestDictation(t)
	require.NoError(t, d.Start())
	old := engine.made[0]
	oldEvents := old.ev()

	d.SetLanguage("hi")
	assert.Equal(t, "hi", d.Language())
	assert.Equal(t, DictationIdle, d.State())
	require.Len(t, engine.made, 2)
	assert.Equal(t, "hi", engine.made[1].lang)
	assert.True(t, old.stopped)
	assert.Nil(t, old.ev().OnResult, "handlers detached")

	// A callback captured before the rebind must not reach the sink.
	oldEvents.OnResult("stale")
	assert.Empty(t, *text)

	require.NoError(t, d.Start())
	engine.made[1].ev().OnResult("नमस्ते")
	assert.Equal(t, []string{"नमस्ते"}, *text)
}

func TestDictation_Unavailable(t *testing.T) {
	t.Parallel()

	rec := &notify.Recorder{}
	d := NewDictation(NullRecognitionEngine{}, "en", nil, rec, quietLogger())
	assert.ErrorIs(t, d.Toggle(), ErrUnavailable)
	assert.Equal(t, DictationIdle, d.State())
	require.Len(t, rec.Notices(), 1)
	assert.Equal(t, notify.LevelError, rec.Notices()[0].Level)
}

func TestDictation_SimulatedEngine(t *testing.T) {
	t.Parallel()

	engine := NewSimulatedRecognitionEngine(&SimulatedRecognitionConfig{
		Delay:       5 * time.Millisecond,
		Transcripts: []string{"good morning"},
	})
	got := make(chan string, 1)
	d := NewDictation(engine, "en", func(s string) { got <- s }, nil, quietLogger())
	require.NoError(t, d.Start())

	select {
	case s := <-got:
		assert.Equal(t, "good morning", s)
	case <-time.After(2 * time.Second):
		require.FailNow(t, "no transcript")
	}
	assert.Eventually(t, func() bool { return d.State() == DictationIdle }, time.Second, 5*time.Millisecond)
}

// fakeSpeech records calls; tests fire events through the captured
// SpeechEvents.
type fakeSpeech struct {
	mu       sync.Mutex
	calls    []string
	volume   float64
	canceled bool
}

func (f *fakeSpeech) record(c string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *fakeSpeech) Pause()  { f.record("pause") }
func (f *fakeSpeech) Resume() { f.record("resume") }
func (f *fakeSpeech) Cancel() {
	f.record("cancel")
	f.mu.Lock()
	f.canceled = true
	f.mu.Unlock()
}
func (f *fakeSpeech) SetVolume(v float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = v
}

type fakeSynthesisEngine struct {
	utterances []Utterance
	events     []SpeechEvents
	speeches   []*fakeSpeech
	err        error
}

func (e *fakeSynthesisEngine) Available() bool { return true }

func (e *fakeSynthesisEngine) Speak(u Utterance, ev SpeechEvents) (Speech, error) {
	if e.err != nil {
		return nil, e.err
	}
	s := &fakeSpeech{volume: u.Volume}
	e.utterances = append(e.utterances, u)
	e.events = append(e.events, ev)
	e.speeches = append(e.speeches, s)
	return s, nil
}

func TestPlayback_ToggleCycle(t *testing.T) {
	t.Parallel()

	engine := &fakeSynthesisEngine{}
	rec := &notify.Recorder{}
	p := NewPlayback(engine, rec, quietLogger())

	require.NoError(t, p.Toggle("Bonjour", "fr"))
	assert.Equal(t, PlaybackSpeaking, p.State())
	require.Len(t, engine.utterances, 1)
	assert.Equal(t, Utterance{Text: "Bonjour", Lang: "fr", Volume: 1, Rate: 0.9, Pitch: 1}, engine.utterances[0])
	engine.events[0].OnStart()

	require.NoError(t, p.Toggle("Bonjour", "fr"))
	assert.Equal(t, PlaybackPaused, p.State())
	require.NoError(t, p.Toggle("Bonjour", "fr"))
	assert.Equal(t, PlaybackSpeaking, p.State())
	assert.Equal(t, []string{"pause", "resume"}, engine.speeches[0].calls)

	engine.events[0].OnEnd()
	assert.Equal(t, PlaybackIdle, p.State())
	assert.Equal(t, []string{"Starting speech", "Speech paused", "Speech resumed", "Speech completed"}, rec.Messages())
}

func TestPlayback_Stop(t *testing.T) {
	t.Parallel()

	engine := &fakeSynthesisEngine{}
	rec := &notify.Recorder{}
	p := NewPlayback(engine, rec, quietLogger())

	require.NoError(t, p.Toggle("Hola", "es"))
	p.Stop()
	assert.Equal(t, PlaybackIdle, p.State())
	assert.True(t, engine.speeches[0].canceled)

	// A late end from the canceled utterance is ignored.
	engine.events[0].OnEnd()
	assert.Equal(t, []string{"Speech stopped"}, rec.Messages())
}

func TestPlayback_EmptyTextWarns(t *testing.T) {
	t.Parallel()

	engine := &fakeSynthesisEngine{}
	rec := &notify.Recorder{}
	p := NewPlayback(engine, rec, quietLogger())

	require.NoError(t, p.Toggle("   ", "en"))
	assert.Equal(t, PlaybackIdle, p.State())
	assert.Empty(t, engine.utterances)
	assert.Equal(t, []notify.Notice{notify.Warning("No text to speak")}, rec.Notices())
}

func TestPlayback_VolumeClampedAndLive(t *testing.T) {
	t.Parallel()

	engine := &fakeSynthesisEngine{}
	p := NewPlayback(engine, nil, quietLogger())

	assert.Equal(t, 0.0, p.SetVolume(-3))
	assert.Equal(t, 1.0, p.SetVolume(7))
	assert.Equal(t, 0.4, p.SetVolume(0.4))

	require.NoError(t, p.Toggle("Merci", "fr"))
	assert.Equal(t, 0.4, engine.utterances[0].Volume)

	p.SetVolume(0.8)
	assert.Equal(t, 0.8, engine.speeches[0].volume)
}

func TestPlayback_Errors(t *testing.T) {
	t.Parallel()

	engine := &fakeSynthesisEngine{}
	rec := &notify.Recorder{}
	p := NewPlayback(engine, rec, quietLogger())

	require.NoError(t, p.Toggle("Hola", "es"))
	engine.events[0].OnError(errors.New("audio-busy"))
	assert.Equal(t, PlaybackIdle, p.State())
	assert.Equal(t, []string{"Speech synthesis error occurred"}, rec.Messages())

	engine.err = errors.New("no voices")
	assert.Error(t, p.Toggle("Hola", "es"))
	assert.Equal(t, PlaybackIdle, p.State())

	unavailable := NewPlayback(NullSynthesisEngine{}, nil, quietLogger())
	assert.ErrorIs(t, unavailable.Toggle("Hola", "es"), ErrUnavailable)
}

func TestPlayback_SimulatedEngineCompletes(t *testing.T) {
	t.Parallel()

	engine := NewSimulatedSynthesisEngine(&SimulatedSynthesisConfig{PerRune: time.Millisecond})
	rec := &notify.Recorder{}
	p := NewPlayback(engine, rec, quietLogger())

	require.NoError(t, p.Toggle(strings.Repeat("a", 10), "en"))
	assert.Eventually(t, func() bool { return p.State() == PlaybackIdle }, 2*time.Second, 5*time.Millisecond)
	assert.Contains(t, rec.Messages(), "Speech completed")
}

func TestSimulatedSynthesis_Duration(t *testing.T) {
	t.Parallel()

	e := NewSimulatedSynthesisEngine(&SimulatedSynthesisConfig{PerRune: 9 * time.Millisecond})
	assert.Equal(t, 180*time.Millisecond, e.Duration(Utterance{Text: "abcdefghij", Rate: 0.5}))
	assert.Equal(t, 54*time.Millisecond, e.Duration(Utterance{Text: "नमस्ते"}))
}

type countingEngine struct {
	NullRecognitionEngine
	calls int
}

func (c *countingEngine) Available() bool {
	c.calls++
	return true
}

func TestProbe_CachesResult(t *testing.T) {
	t.Parallel()

	rec := &countingEngine{}
	p := NewProbe(rec, NullSynthesisEngine{})
	for i := 0; i < 3; i++ {
		assert.Equal(t, Availability{Recognition: true, Synthesis: false}, p.Availability())
	}
	assert.Equal(t, 1, rec.calls)
}

func TestParseEngineKind(t *testing.T) {
	t.Parallel()

	k, err := ParseEngineKind("Simulated")
	require.NoError(t, err)
	assert.Equal(t, EngineSimulated, k)

	k, err = ParseEngineKind("")
	require.NoError(t, err)
	assert.Equal(t, EngineNull, k)

	_, err = ParseEngineKind("webspeech")
	assert.Error(t, err)

	r, s, err := NewEngines(EngineSimulated)
	require.NoError(t, err)
	assert.True(t, r.Available())
	assert.True(t, s.Available())
}
