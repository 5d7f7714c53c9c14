// Package service implements the linguaflow.v1.Translator gRPC service and
// the registry of interactive translator sessions behind it.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/dasmlab/linguaflow/pkg/history"
	"github.com/dasmlab/linguaflow/pkg/language"
	linguaflowv1 "github.com/dasmlab/linguaflow/pkg/rpc/v1"
	"github.com/dasmlab/linguaflow/pkg/session"
	"github.com/dasmlab/linguaflow/pkg/settings"
)

// Deps are the collaborators of a TranslationService. Only Client is
// required; the rest default to in-memory implementations.
type Deps struct {
	Client   session.TranslationClient
	Catalog  *language.Catalog
	Detector language.LanguageDetector
	History  history.Store
	Settings settings.Store
	Sessions *Registry
	MaxChars int
	Logger   *logrus.Logger
}

// TranslationService implements linguaflowv1.TranslatorServer. The HTTP API
// calls the same methods, so both transports share validation and history
// behaviour.
type TranslationService struct {
	linguaflowv1.UnimplementedTranslatorServer

	Client   session.TranslationClient
	Catalog  *language.Catalog
	Detector language.LanguageDetector
	History  history.Store
	Settings settings.Store
	Sessions *Registry
	MaxChars int
	Logger   *logrus.Logger
}

// NewTranslationService creates a service from deps.
func NewTranslationService(deps Deps) *TranslationService {
	if deps.Logger == nil {
		deps.Logger = logrus.New()
	}
	if deps.Catalog == nil {
		deps.Catalog = language.DefaultCatalog()
	}
	if deps.Detector == nil {
		deps.Detector = language.NewDetector(deps.Catalog)
	}
	if deps.History == nil {
		deps.History = history.NewMemoryStore(nil)
	}
	if deps.Settings == nil {
		deps.Settings = settings.NewMemoryStore(settings.Settings{})
	}
	if deps.MaxChars <= 0 {
		deps.MaxChars = session.DefaultMaxChars
	}
	if deps.Sessions == nil {
		deps.Sessions = NewRegistry(session.Config{
			Catalog:  deps.Catalog,
			Detector: deps.Detector,
			Client:   deps.Client,
			History:  deps.History,
			MaxChars: deps.MaxChars,
			Logger:   deps.Logger,
		}, deps.Logger)
	}
	return &TranslationService{
		Client:   deps.Client,
		Catalog:  deps.Catalog,
		Detector: deps.Detector,
		History:  deps.History,
		Settings: deps.Settings,
		Sessions: deps.Sessions,
		MaxChars: deps.MaxChars,
		Logger:   deps.Logger,
	}
}

// TranslateText validates and translates text without a session. A
// successful result is appended to history; a history failure is logged and
// leaves Outcome.Record nil.
func (s *TranslationService) TranslateText(ctx context.Context, text, sourceLang, targetLang string) (session.Outcome, error) {
	trimmed, err := session.Validate(s.Catalog, text, sourceLang, targetLang, s.MaxChars)
	if err != nil {
		return session.Outcome{}, err
	}
	if s.Client == nil {
		return session.Outcome{}, session.ErrNoClient
	}
	res, err := s.Client.Translate(ctx, trimmed, sourceLang, targetLang)
	if err != nil {
		return session.Outcome{}, err
	}

	out := session.Outcome{Result: res}
	rec, err := s.History.Append(ctx, history.Entry{
		SourceText:     res.SourceText,
		TranslatedText: res.TranslatedText,
		SourceLang:     res.SourceLang,
		TargetLang:     res.TargetLang,
		CharCount:      res.CharCount,
	})
	if err != nil {
		s.Logger.WithError(err).Warn("Failed to save translation to history")
	} else {
		out.Record = &rec
	}
	return out, nil
}

// TranslateInSession updates the session's languages and text (empty values
// keep the current ones) and runs its translation.
func (s *TranslationService) TranslateInSession(ctx context.Context, id, text, sourceLang, targetLang string) (session.Outcome, error) {
	sess, err := s.Sessions.Get(id)
	if err != nil {
		return session.Outcome{}, err
	}
	if sourceLang != "" {
		if err := sess.SetSourceLang(sourceLang); err != nil {
			return session.Outcome{}, err
		}
	}
	if targetLang != "" {
		if err := sess.SetTargetLang(targetLang); err != nil {
			return session.Outcome{}, err
		}
	}
	if text != "" {
		if err := sess.SetSourceText(text); err != nil {
			return session.Outcome{}, err
		}
	}
	return sess.Translate(ctx)
}

// DetectText guesses the language of text. Blank text detects nothing.
func (s *TranslationService) DetectText(ctx context.Context, text string) (*language.Record, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return s.Detector.DetectLanguage(ctx, text)
}

// Languages lists the catalog, optionally filtered.
func (s *TranslationService) Languages(query string, popularOnly bool) []language.Record {
	switch {
	case popularOnly:
		return s.Catalog.Popular()
	case strings.TrimSpace(query) != "":
		return s.Catalog.Search(query)
	default:
		return s.Catalog.All()
	}
}

// Translate implements linguaflowv1.TranslatorServer.
func (s *TranslationService) Translate(ctx context.Context, req *linguaflowv1.TranslateRequest) (*linguaflowv1.TranslateResponse, error) {
	s.Logger.WithFields(logrus.Fields{
		"session_id":  req.SessionId,
		"source_lang": req.SourceLanguage,
		"target_lang": req.TargetLanguage,
		"text_len":    len(req.Text),
	}).Info("[gRPC] Translate request received")

	start := time.Now()
	var (
		out session.Outcome
		err error
	)
	if req.SessionId != "" {
		out, err = s.TranslateInSession(ctx, req.SessionId, req.Text, req.SourceLanguage, req.TargetLanguage)
	} else {
		out, err = s.TranslateText(ctx, req.Text, req.SourceLanguage, req.TargetLanguage)
	}
	if err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{
			"session_id": req.SessionId,
			"code":       Code(err).String(),
		}).Warn("[gRPC] Translate failed")
		return nil, toStatus(err)
	}

	inferenceTime := time.Since(start).Seconds()
	resp := &linguaflowv1.TranslateResponse{
		TranslatedText:       out.Result.TranslatedText,
		SourceText:           out.Result.SourceText,
		SourceLanguage:       out.Result.SourceLang,
		TargetLanguage:       out.Result.TargetLang,
		CharCount:            int32(out.Result.CharCount),
		CompletedAt:          timestamppb.Now(),
		InferenceTimeSeconds: inferenceTime,
	}
	if out.Record != nil {
		resp.HistoryId = out.Record.ID
	}

	s.Logger.WithFields(logrus.Fields{
		"history_id":     resp.HistoryId,
		"char_count":     resp.CharCount,
		"inference_time": inferenceTime,
	}).Info("[gRPC] Translation completed successfully")
	return resp, nil
}

// DetectLanguage implements linguaflowv1.TranslatorServer.
func (s *TranslationService) DetectLanguage(ctx context.Context, req *linguaflowv1.DetectLanguageRequest) (*linguaflowv1.DetectLanguageResponse, error) {
	rec, err := s.DetectText(ctx, req.Text)
	if err != nil {
		return nil, toStatus(err)
	}
	if rec == nil {
		return &linguaflowv1.DetectLanguageResponse{}, nil
	}
	return &linguaflowv1.DetectLanguageResponse{Detected: true, Language: toLanguage(*rec)}, nil
}

// ListLanguages implements linguaflowv1.TranslatorServer.
func (s *TranslationService) ListLanguages(ctx context.Context, req *linguaflowv1.ListLanguagesRequest) (*linguaflowv1.ListLanguagesResponse, error) {
	records := s.Languages(req.Query, req.PopularOnly)
	resp := &linguaflowv1.ListLanguagesResponse{Languages: make([]*linguaflowv1.Language, 0, len(records))}
	for _, r := range records {
		resp.Languages = append(resp.Languages, toLanguage(r))
	}
	return resp, nil
}

// RecentHistory implements linguaflowv1.TranslatorServer.
func (s *TranslationService) RecentHistory(ctx context.Context, req *linguaflowv1.RecentHistoryRequest) (*linguaflowv1.RecentHistoryResponse, error) {
	if req.Limit < 0 {
		return nil, status.Error(codes.InvalidArgument, "limit must not be negative")
	}
	limit := history.ClampLimit(int(req.Limit))
	if limit == 0 {
		limit = history.DefaultRecentLimit
	}
	records, err := s.History.Recent(ctx, limit)
	if err != nil {
		s.Logger.WithError(err).Error("[gRPC] RecentHistory failed")
		return nil, toStatus(err)
	}
	resp := &linguaflowv1.RecentHistoryResponse{Records: make([]*linguaflowv1.HistoryRecord, 0, len(records))}
	for _, r := range records {
		resp.Records = append(resp.Records, toHistoryRecord(r))
	}
	return resp, nil
}

// DeleteHistory implements linguaflowv1.TranslatorServer. Deleting a missing
// record succeeds with Deleted false.
func (s *TranslationService) DeleteHistory(ctx context.Context, req *linguaflowv1.DeleteHistoryRequest) (*linguaflowv1.DeleteHistoryResponse, error) {
	if req.Id <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id must be positive")
	}
	rec, ok, err := s.History.Remove(ctx, req.Id)
	if err != nil {
		s.Logger.WithError(err).WithField("id", req.Id).Error("[gRPC] DeleteHistory failed")
		return nil, toStatus(err)
	}
	if !ok {
		return &linguaflowv1.DeleteHistoryResponse{}, nil
	}
	s.Logger.WithField("id", req.Id).Info("[gRPC] History record deleted")
	return &linguaflowv1.DeleteHistoryResponse{Deleted: true, Record: toHistoryRecord(rec)}, nil
}

// ClearHistory implements linguaflowv1.TranslatorServer.
func (s *TranslationService) ClearHistory(ctx context.Context, req *linguaflowv1.ClearHistoryRequest) (*linguaflowv1.ClearHistoryResponse, error) {
	if err := s.History.Clear(ctx); err != nil {
		s.Logger.WithError(err).Error("[gRPC] ClearHistory failed")
		return nil, toStatus(err)
	}
	s.Logger.Info("[gRPC] History cleared")
	return &linguaflowv1.ClearHistoryResponse{Cleared: true}, nil
}

// GetSettings implements linguaflowv1.TranslatorServer.
func (s *TranslationService) GetSettings(ctx context.Context, req *linguaflowv1.GetSettingsRequest) (*linguaflowv1.GetSettingsResponse, error) {
	st, err := s.Settings.Get(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return &linguaflowv1.GetSettingsResponse{Settings: toSettings(st)}, nil
}

// UpdateSettings implements linguaflowv1.TranslatorServer.
func (s *TranslationService) UpdateSettings(ctx context.Context, req *linguaflowv1.UpdateSettingsRequest) (*linguaflowv1.UpdateSettingsResponse, error) {
	if req.Reset {
		if _, err := s.Settings.Reset(ctx); err != nil {
			return nil, toStatus(err)
		}
	}
	st, err := s.Settings.Update(ctx, settings.Patch{DarkMode: req.DarkMode, Values: req.Values})
	if err != nil {
		return nil, toStatus(err)
	}
	s.Logger.WithFields(logrus.Fields{
		"reset":     req.Reset,
		"dark_mode": st.DarkMode,
	}).Debug("[gRPC] Settings updated")
	return &linguaflowv1.UpdateSettingsResponse{Settings: toSettings(st)}, nil
}

// OpenSession implements linguaflowv1.TranslatorServer.
func (s *TranslationService) OpenSession(ctx context.Context, req *linguaflowv1.OpenSessionRequest) (*linguaflowv1.OpenSessionResponse, error) {
	s.Logger.WithFields(logrus.Fields{
		"client_name": req.ClientName,
		"source_lang": req.SourceLanguage,
		"target_lang": req.TargetLanguage,
	}).Info("[gRPC] OpenSession request received")

	if req.ClientName == "" {
		s.Logger.Error("[gRPC] OpenSession: client_name is required")
		return nil, status.Error(codes.InvalidArgument, "client_name is required")
	}
	info, err := s.Sessions.Open(req.ClientName, req.SourceLanguage, req.TargetLanguage)
	if err != nil {
		return nil, toStatus(err)
	}
	return &linguaflowv1.OpenSessionResponse{
		SessionId:                info.ID,
		HeartbeatIntervalSeconds: int32(s.Sessions.HeartbeatInterval() / time.Second),
		ExpiresAt:                timestamppb.New(info.LastSeen.Add(s.Sessions.IdleTimeout())),
	}, nil
}

// Heartbeat implements linguaflowv1.TranslatorServer. Unknown or expired
// sessions get ReopenRequired instead of an error.
func (s *TranslationService) Heartbeat(ctx context.Context, req *linguaflowv1.HeartbeatRequest) (*linguaflowv1.HeartbeatResponse, error) {
	if req.SessionId == "" {
		s.Logger.Error("[gRPC] Heartbeat: session_id is required")
		return nil, status.Error(codes.InvalidArgument, "session_id is required")
	}
	interval := int32(s.Sessions.HeartbeatInterval() / time.Second)
	seen, err := s.Sessions.Heartbeat(req.SessionId)
	if err != nil {
		s.Logger.WithField("session_id", req.SessionId).Warn("[gRPC] Heartbeat from unknown session")
		return &linguaflowv1.HeartbeatResponse{
			Success:                  false,
			Message:                  "Session not open or expired",
			ReceivedAt:               timestamppb.Now(),
			HeartbeatIntervalSeconds: interval,
			ReopenRequired:           true,
		}, nil
	}
	s.Logger.WithField("session_id", req.SessionId).Debug("[gRPC] Heartbeat acknowledged")
	return &linguaflowv1.HeartbeatResponse{
		Success:                  true,
		Message:                  "Heartbeat acknowledged",
		ReceivedAt:               timestamppb.New(seen),
		HeartbeatIntervalSeconds: interval,
	}, nil
}

func toLanguage(r language.Record) *linguaflowv1.Language {
	return &linguaflowv1.Language{
		Id:         int32(r.ID),
		Code:       r.Code,
		Name:       r.Name,
		NativeName: r.NativeName,
		Flag:       r.Flag,
	}
}

func toHistoryRecord(r history.Record) *linguaflowv1.HistoryRecord {
	return &linguaflowv1.HistoryRecord{
		Id:             r.ID,
		SourceText:     r.SourceText,
		TranslatedText: r.TranslatedText,
		SourceLanguage: r.SourceLang,
		TargetLanguage: r.TargetLang,
		CharCount:      int32(r.CharCount),
		CreatedAt:      timestamppb.New(time.UnixMilli(r.Timestamp)),
	}
}

func toSettings(st settings.Settings) *linguaflowv1.Settings {
	st = st.Clone()
	return &linguaflowv1.Settings{DarkMode: st.DarkMode, Values: st.Values}
}
