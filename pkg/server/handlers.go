package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/dasmlab/linguaflow/pkg/history"
	"github.com/dasmlab/linguaflow/pkg/language"
	"github.com/dasmlab/linguaflow/pkg/session"
	"github.com/dasmlab/linguaflow/pkg/settings"
)

type translateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"sourceLang"`
	TargetLang string `json:"targetLang"`
}

type detectRequest struct {
	Text string `json:"text"`
}

type detectResponse struct {
	Detected bool             `json:"detected"`
	Language *language.Record `json:"language,omitempty"`
}

type settingValue struct {
	Value string `json:"value"`
}

func (s *HTTPServer) listLanguages(w http.ResponseWriter, r *http.Request) {
	popular, _ := strconv.ParseBool(r.URL.Query().Get("popular"))
	render.JSON(w, r, s.svc.Languages(r.URL.Query().Get("q"), popular))
}

func (s *HTTPServer) getLanguageByCode(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.svc.Catalog.ByCode(chi.URLParam(r, "code"))
	if !ok {
		render.Render(w, r, ErrNotFound)
		return
	}
	render.JSON(w, r, rec)
}

func (s *HTTPServer) getLanguageByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	rec, ok := s.svc.Catalog.ByID(id)
	if !ok {
		render.Render(w, r, ErrNotFound)
		return
	}
	render.JSON(w, r, rec)
}

func (s *HTTPServer) detectLanguage(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	rec, err := s.svc.DetectText(r.Context(), req.Text)
	if err != nil {
		render.Render(w, r, ErrFrom(err))
		return
	}
	render.JSON(w, r, detectResponse{Detected: rec != nil, Language: rec})
}

func (s *HTTPServer) translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	out, err := s.svc.TranslateText(r.Context(), req.Text, req.SourceLang, req.TargetLang)
	if err != nil {
		s.logTranslateError(err)
		render.Render(w, r, ErrFrom(err))
		return
	}
	render.JSON(w, r, out)
}

func (s *HTTPServer) logTranslateError(err error) {
	if session.IsValidation(err) {
		s.logger.WithError(err).Debug("Translation request rejected")
		return
	}
	s.logger.WithError(err).Warn("Translation failed")
}

func (s *HTTPServer) recentHistory(w http.ResponseWriter, r *http.Request) {
	limit := history.DefaultRecentLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			render.Render(w, r, ErrInvalidRequest(errors.New("limit must be a non-negative integer")))
			return
		}
		limit = history.ClampLimit(n)
	}
	records, err := s.svc.History.Recent(r.Context(), limit)
	if err != nil {
		render.Render(w, r, ErrFrom(err))
		return
	}
	render.JSON(w, r, records)
}

func (s *HTTPServer) allHistory(w http.ResponseWriter, r *http.Request) {
	records, err := s.svc.History.All(r.Context())
	if err != nil {
		render.Render(w, r, ErrFrom(err))
		return
	}
	render.JSON(w, r, records)
}

func historyID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("id must be a positive integer")
	}
	return id, nil
}

func (s *HTTPServer) getHistory(w http.ResponseWriter, r *http.Request) {
	id, err := historyID(r)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	rec, ok, err := s.svc.History.Get(r.Context(), id)
	if err != nil {
		render.Render(w, r, ErrFrom(err))
		return
	}
	if !ok {
		render.Render(w, r, ErrNotFound)
		return
	}
	render.JSON(w, r, rec)
}

// deleteHistory answers 204 whether or not the record existed.
func (s *HTTPServer) deleteHistory(w http.ResponseWriter, r *http.Request) {
	id, err := historyID(r)
	if err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if _, _, err := s.svc.History.Remove(r.Context(), id); err != nil {
		render.Render(w, r, ErrFrom(err))
		return
	}
	render.NoContent(w, r)
}

func (s *HTTPServer) clearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.History.Clear(r.Context()); err != nil {
		render.Render(w, r, ErrFrom(err))
		return
	}
	render.NoContent(w, r)
}

func (s *HTTPServer) getSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Settings.Get(r.Context())
	if err != nil {
		render.Render(w, r, ErrFrom(err))
		return
	}
	render.JSON(w, r, st)
}

func (s *HTTPServer) patchSettings(w http.ResponseWriter, r *http.Request) {
	var p settings.Patch
	if err := render.DecodeJSON(r.Body, &p); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	st, err := s.svc.Settings.Update(r.Context(), p)
	if err != nil {
		render.Render(w, r, ErrFrom(err))
		return
	}
	render.JSON(w, r, st)
}

func (s *HTTPServer) putSetting(w http.ResponseWriter, r *http.Request) {
	var v settingValue
	if err := render.DecodeJSON(r.Body, &v); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	st, err := s.svc.Settings.Set(r.Context(), chi.URLParam(r, "key"), v.Value)
	if err != nil {
		render.Render(w, r, ErrFrom(err))
		return
	}
	render.JSON(w, r, st)
}

func (s *HTTPServer) resetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Settings.Reset(r.Context())
	if err != nil {
		render.Render(w, r, ErrFrom(err))
		return
	}
	render.JSON(w, r, st)
}
