package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dasmlab/linguaflow/pkg/history"
	"github.com/dasmlab/linguaflow/pkg/language"
	"github.com/dasmlab/linguaflow/pkg/service"
	"github.com/dasmlab/linguaflow/pkg/session"
	"github.com/dasmlab/linguaflow/pkg/settings"
	"github.com/dasmlab/linguaflow/pkg/translate"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

// brokenBackend fails every request.
type brokenBackend struct{ *translate.MockTranslator }

func (brokenBackend) Translate(context.Context, string, string, string) (string, error) {
	return "", errors.New("connection refused")
}

func (brokenBackend) CheckHealth(context.Context) error { return errors.New("connection refused") }

func newTestServer(t *testing.T, backend translate.Translator) (*HTTPServer, *service.TranslationService) {
	t.Helper()
	if backend == nil {
		backend = translate.NewMockTranslator(nil, 0)
	}
	client := translate.NewClient(backend, translate.EngineMock, 0, quietLogger())
	svc := service.NewTranslationService(service.Deps{Client: client, Logger: quietLogger()})
	t.Cleanup(svc.Sessions.CloseAll)
	return NewHTTPServer(svc, quietLogger(), Config{SSEKeepAlive: time.Hour}), svc
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)
	rec := do(t, srv.Handler(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[map[string]any](t, rec)["status"])

	broken, _ := newTestServer(t, brokenBackend{translate.NewMockTranslator(nil, 0)})
	rec = do(t, broken.Handler(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", decode[map[string]any](t, rec)["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)
	rec := do(t, srv.Handler(), http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "linguaflow_sessions_active")
}

func TestLanguages(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/api/v1/languages/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[[]language.Record](t, rec)
	assert.Equal(t, language.DefaultCatalog().Len(), len(all))

	rec = do(t, h, http.MethodGet, "/api/v1/languages/?popular=true", nil)
	assert.Len(t, decode[[]language.Record](t, rec), len(language.PopularCodes))

	rec = do(t, h, http.MethodGet, "/api/v1/languages/?q=fren", nil)
	found := decode[[]language.Record](t, rec)
	require.NotEmpty(t, found)
	assert.Equal(t, "fr", found[0].Code)

	rec = do(t, h, http.MethodGet, "/api/v1/languages/hi", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hindi", decode[language.Record](t, rec).Name)

	rec = do(t, h, http.MethodGet, "/api/v1/languages/xx", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/languages/id/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDetect(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/api/v1/detect", detectRequest{Text: "Bonjour, comment allez-vous?"})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[detectResponse](t, rec)
	require.True(t, got.Detected)
	assert.Equal(t, "fr", got.Language.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/detect", detectRequest{Text: "xyz"})
	assert.False(t, decode[detectResponse](t, rec).Detected)
}

func TestTranslate(t *testing.T) {
	t.Parallel()

	srv, svc := newTestServer(t, nil)
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/api/v1/translate", translateRequest{Text: "Good morning", SourceLang: "en", TargetLang: "es"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[session.Outcome](t, rec)
	assert.Equal(t, "Buenos días", out.Result.TranslatedText)
	require.NotNil(t, out.Record)
	assert.Equal(t, int64(1), out.Record.ID)

	records, err := svc.History.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestTranslate_Errors(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/api/v1/translate", translateRequest{Text: "", SourceLang: "en", TargetLang: "es"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[ErrResponse](t, rec)
	assert.Equal(t, string(session.ReasonEmptyText), body.Reason)
	assert.Equal(t, "Please enter text to translate", body.ErrorText)

	rec = do(t, h, http.MethodPost, "/api/v1/translate", translateRequest{Text: "hi", SourceLang: "es", TargetLang: "es"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(session.ReasonSameLanguage), decode[ErrResponse](t, rec).Reason)

	rec = do(t, h, http.MethodPost, "/api/v1/translate", translateRequest{Text: strings.Repeat("a", session.DefaultMaxChars+1), SourceLang: "en", TargetLang: "es"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(session.ReasonTooLong), decode[ErrResponse](t, rec).Reason)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/translate", strings.NewReader("{"))
	raw := httptest.NewRecorder()
	h.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)

	broken, _ := newTestServer(t, brokenBackend{translate.NewMockTranslator(nil, 0)})
	rec = do(t, broken.Handler(), http.MethodPost, "/api/v1/translate", translateRequest{Text: "hello", SourceLang: "en", TargetLang: "es"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Translation failed. Please try again.", decode[ErrResponse](t, rec).ErrorText)
}

func TestHistoryEndpoints(t *testing.T) {
	t.Parallel()

	srv, svc := newTestServer(t, nil)
	h := srv.Handler()
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		_, err := svc.History.Append(ctx, history.Entry{SourceText: "hello", TranslatedText: "Hola", SourceLang: "en", TargetLang: "es", CharCount: 5})
		require.NoError(t, err)
	}

	rec := do(t, h, http.MethodGet, "/api/v1/history/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	recent := decode[[]history.Record](t, rec)
	require.Len(t, recent, history.DefaultRecentLimit)
	assert.Equal(t, int64(12), recent[0].ID)

	rec = do(t, h, http.MethodGet, "/api/v1/history/?limit=3", nil)
	assert.Len(t, decode[[]history.Record](t, rec), 3)

	rec = do(t, h, http.MethodGet, "/api/v1/history/?limit=1000000000000", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]history.Record](t, rec), 12)

	rec = do(t, h, http.MethodGet, "/api/v1/history/?limit=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/history/all", nil)
	all := decode[[]history.Record](t, rec)
	require.Len(t, all, 12)
	assert.Equal(t, int64(1), all[0].ID)

	rec = do(t, h, http.MethodGet, "/api/v1/history/5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5), decode[history.Record](t, rec).ID)

	rec = do(t, h, http.MethodDelete, "/api/v1/history/5", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodDelete, "/api/v1/history/5", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/v1/history/5", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/v1/history/zero", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/v1/history/", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/v1/history/all", nil)
	assert.Empty(t, decode[[]history.Record](t, rec))
}

func TestSettingsEndpoints(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/api/v1/settings/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[settings.Settings](t, rec).DarkMode)

	rec = do(t, h, http.MethodPut, "/api/v1/settings/darkMode", settingValue{Value: "true"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[settings.Settings](t, rec).DarkMode)

	rec = do(t, h, http.MethodPut, "/api/v1/settings/darkMode", settingValue{Value: "maybe"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPatch, "/api/v1/settings/", map[string]any{"values": map[string]string{"fontSize": "large"}})
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[settings.Settings](t, rec)
	assert.True(t, st.DarkMode)
	assert.Equal(t, "large", st.Values["fontSize"])

	rec = do(t, h, http.MethodPost, "/api/v1/settings/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st = decode[settings.Settings](t, rec)
	assert.False(t, st.DarkMode)
	assert.Empty(t, st.Values)
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/api/v1/sessions/", openSessionRequest{ClientName: "browser", SourceLang: "en", TargetLang: "fr"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	opened := decode[sessionResponse](t, rec)
	require.NotEmpty(t, opened.ID)
	assert.Equal(t, "fr", opened.State.TargetLang)
	assert.Equal(t, 30, opened.HeartbeatIntervalSeconds)
	base := "/api/v1/sessions/" + opened.ID

	rec = do(t, h, http.MethodPut, base+"/text", textRequest{Text: "Welcome"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, decode[session.State](t, rec).CharCount)

	rec = do(t, h, http.MethodPost, base+"/translate", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Bienvenue", decode[session.Outcome](t, rec).Result.TranslatedText)

	rec = do(t, h, http.MethodPost, base+"/swap", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[session.State](t, rec)
	assert.Equal(t, "fr", st.SourceLang)
	assert.Equal(t, "Bienvenue", st.SourceText)
	assert.Equal(t, "Welcome", st.TranslatedText)

	rec = do(t, h, http.MethodPut, base+"/languages", languagesRequest{SourceLang: "de", TargetLang: "xx"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, base+"/clear-translation", nil)
	assert.Empty(t, decode[session.State](t, rec).TranslatedText)

	rec = do(t, h, http.MethodPost, base+"/clear", nil)
	assert.Empty(t, decode[session.State](t, rec).SourceText)

	rec = do(t, h, http.MethodPut, base+"/volume", map[string]float64{"volume": 1.7})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, decode[volumeResponse](t, rec).Volume)

	rec = do(t, h, http.MethodPost, base+"/heartbeat", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/sessions/", nil)
	assert.Len(t, decode[[]sessionResponse](t, rec), 1)

	rec = do(t, h, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, h, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionVoiceUnavailable(t *testing.T) {
	t.Parallel()

	srv, _ := newTestServer(t, nil)
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/api/v1/sessions/", openSessionRequest{})
	opened := decode[sessionResponse](t, rec)
	assert.False(t, opened.Voice.Recognition)
	assert.False(t, opened.Voice.Synthesis)
	assert.Equal(t, "http", opened.ClientName)

	rec = do(t, h, http.MethodPost, "/api/v1/sessions/"+opened.ID+"/dictation", nil)
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestSessionEventsStream(t *testing.T) {
	t.Parallel()

	srv, svc := newTestServer(t, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	info, err := svc.Sessions.Open("sse", "en", "es")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/v1/sessions/"+info.ID+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	next := func() (string, session.Event) {
		var typ string
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				typ = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				var ev session.Event
				require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev))
				return typ, ev
			}
		}
	}

	typ, ev := next()
	assert.Equal(t, "state", typ)
	require.NotNil(t, ev.State)
	assert.Equal(t, "es", ev.State.TargetLang)

	require.NoError(t, info.Session.SetSourceText("hola"))
	typ, ev = next()
	assert.Equal(t, "state", typ)
	assert.Equal(t, "hola", ev.State.SourceText)

	svc.Sessions.Close(info.ID)
	for {
		typ, _ = next()
		if typ == "closed" {
			break
		}
	}
}
