package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	"github.com/dasmlab/linguaflow/pkg/service"
	"github.com/dasmlab/linguaflow/pkg/session"
	"github.com/dasmlab/linguaflow/pkg/voice"
)

type openSessionRequest struct {
	ClientName string `json:"clientName"`
	SourceLang string `json:"sourceLang"`
	TargetLang string `json:"targetLang"`
}

type sessionResponse struct {
	service.SessionInfo
	HeartbeatIntervalSeconds int                `json:"heartbeatIntervalSeconds"`
	State                    session.State      `json:"state"`
	Voice                    voice.Availability `json:"voice"`
}

type languagesRequest struct {
	SourceLang string `json:"sourceLang"`
	TargetLang string `json:"targetLang"`
}

type textRequest struct {
	Text string `json:"text"`
}

type volumeRequest struct {
	Volume *float64 `json:"volume"`
}

type volumeResponse struct {
	Volume float64 `json:"volume"`
}

func (s *HTTPServer) describe(info service.SessionInfo) sessionResponse {
	return sessionResponse{
		SessionInfo:              info,
		HeartbeatIntervalSeconds: int(s.svc.Sessions.HeartbeatInterval() / time.Second),
		State:                    info.Session.Snapshot(),
		Voice:                    info.Session.VoiceAvailability(),
	}
}

func (s *HTTPServer) listSessions(w http.ResponseWriter, r *http.Request) {
	list := s.svc.Sessions.List()
	out := make([]sessionResponse, 0, len(list))
	for _, info := range list {
		out = append(out, s.describe(info))
	}
	render.JSON(w, r, out)
}

func (s *HTTPServer) openSession(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if req.ClientName == "" {
		req.ClientName = "http"
	}
	info, err := s.svc.Sessions.Open(req.ClientName, req.SourceLang, req.TargetLang)
	if err != nil {
		render.Render(w, r, ErrFrom(err))
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, s.describe(info))
}

// withSession resolves the {id} parameter, answering 404 when it is unknown.
func (s *HTTPServer) withSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.svc.Sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		render.Render(w, r, ErrFrom(err))
		return nil, false
	}
	return sess, true
}

// respondState answers with the session state, or the error when err is set.
func respondState(w http.ResponseWriter, r *http.Request, sess *session.Session, err error) {
	if err != nil {
		render.Render(w, r, ErrFrom(err))
		return
	}
	render.JSON(w, r, sess.Snapshot())
}

func (s *HTTPServer) getSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.svc.Sessions.Get(id); err != nil {
		render.Render(w, r, ErrFrom(err))
		return
	}
	info, ok := s.svc.Sessions.Info(id)
	if !ok {
		render.Render(w, r, ErrNotFound)
		return
	}
	render.JSON(w, r, s.describe(info))
}

func (s *HTTPServer) closeSession(w http.ResponseWriter, r *http.Request) {
	if !s.svc.Sessions.Close(chi.URLParam(r, "id")) {
		render.Render(w, r, ErrNotFound)
		return
	}
	render.NoContent(w, r)
}

func (s *HTTPServer) heartbeatSession(w http.ResponseWriter, r *http.Request) {
	seen, err := s.svc.Sessions.Heartbeat(chi.URLParam(r, "id"))
	if err != nil {
		render.Render(w, r, ErrFrom(err))
		return
	}
	render.JSON(w, r, map[string]any{
		"receivedAt":               seen,
		"heartbeatIntervalSeconds": int(s.svc.Sessions.HeartbeatInterval() / time.Second),
	})
}

func (s *HTTPServer) setSessionText(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	var req textRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	respondState(w, r, sess, sess.SetSourceText(req.Text))
}

func (s *HTTPServer) setSessionLanguages(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	var req languagesRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if req.SourceLang != "" {
		if err := sess.SetSourceLang(req.SourceLang); err != nil {
			render.Render(w, r, ErrFrom(err))
			return
		}
	}
	var err error
	if req.TargetLang != "" {
		err = sess.SetTargetLang(req.TargetLang)
	}
	respondState(w, r, sess, err)
}

func (s *HTTPServer) swapSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	respondState(w, r, sess, sess.Swap())
}

func (s *HTTPServer) translateSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	out, err := sess.Translate(r.Context())
	if err != nil {
		s.logTranslateError(err)
		render.Render(w, r, ErrFrom(err))
		return
	}
	render.JSON(w, r, out)
}

func (s *HTTPServer) clearSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	sess.ClearSource()
	respondState(w, r, sess, nil)
}

func (s *HTTPServer) clearSessionTranslation(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	sess.ClearTranslated()
	respondState(w, r, sess, nil)
}

func (s *HTTPServer) toggleDictation(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	respondState(w, r, sess, sess.ToggleDictation())
}

func (s *HTTPServer) toggleSpeech(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	respondState(w, r, sess, sess.ToggleSpeech())
}

func (s *HTTPServer) stopSpeech(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	respondState(w, r, sess, sess.StopSpeech())
}

func (s *HTTPServer) setVolume(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	var req volumeRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if req.Volume == nil {
		render.Render(w, r, ErrInvalidRequest(fmt.Errorf("volume is required")))
		return
	}
	applied, err := sess.SetVolume(*req.Volume)
	if err != nil {
		render.Render(w, r, ErrFrom(err))
		return
	}
	render.JSON(w, r, volumeResponse{Volume: applied})
}

// sessionEvents streams session events as Server-Sent Events until the
// client disconnects or the session closes.
func (s *HTTPServer) sessionEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	events, unsubscribe := sess.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	st := sess.Snapshot()
	s.sendSSEEvent(w, flusher, session.Event{Type: session.EventState, State: &st})

	keepAlive := time.NewTicker(s.cfg.SSEKeepAlive)
	defer keepAlive.Stop()

	id := chi.URLParam(r, "id")
	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-events:
			if !open {
				fmt.Fprint(w, "event: closed\ndata: {}\n\n")
				flusher.Flush()
				return
			}
			s.sendSSEEvent(w, flusher, ev)
		case <-keepAlive.C:
			// Event streams count as session activity.
			if _, err := s.svc.Sessions.Heartbeat(id); err != nil {
				return
			}
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}

// sendSSEEvent writes one event as "event: <type>\ndata: <json>\n\n".
func (s *HTTPServer) sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, ev session.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"event": ev.Type,
		}).Error("Failed to marshal SSE event")
		return
	}
	fmt.Fprintf(w, "event: %s\n", ev.Type)
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}
