// Package linguaflowv1 defines the linguaflow.v1.Translator gRPC service.
// Messages are plain Go structs carried by the JSON codec registered in
// codec.go; clients select it with the "json" content subtype.
package linguaflowv1

import (
	"google.golang.org/protobuf/types/known/timestamppb"
)

// Language is a catalog entry.
type Language struct {
	Id         int32  `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
	Flag       string `json:"flag,omitempty"`
}

// TranslateRequest translates Text. With SessionId set the request runs
// through that session (its text and languages are replaced first).
type TranslateRequest struct {
	SessionId      string `json:"session_id,omitempty"`
	Text           string `json:"text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

type TranslateResponse struct {
	TranslatedText       string                 `json:"translated_text"`
	SourceText           string                 `json:"source_text"`
	SourceLanguage       string                 `json:"source_language"`
	TargetLanguage       string                 `json:"target_language"`
	CharCount            int32                  `json:"char_count"`
	HistoryId            int64                  `json:"history_id,omitempty"`
	CompletedAt          *timestamppb.Timestamp `json:"completed_at,omitempty"`
	InferenceTimeSeconds float64                `json:"inference_time_seconds"`
}

type DetectLanguageRequest struct {
	Text string `json:"text"`
}

type DetectLanguageResponse struct {
	Detected bool      `json:"detected"`
	Language *Language `json:"language,omitempty"`
}

// ListLanguagesRequest filters the catalog. An empty request lists all.
type ListLanguagesRequest struct {
	Query       string `json:"query,omitempty"`
	PopularOnly bool   `json:"popular_only,omitempty"`
}

type ListLanguagesResponse struct {
	Languages []*Language `json:"languages"`
}

type HistoryRecord struct {
	Id             int64                  `json:"id"`
	SourceText     string                 `json:"source_text"`
	TranslatedText string                 `json:"translated_text"`
	SourceLanguage string                 `json:"source_language"`
	TargetLanguage string                 `json:"target_language"`
	CharCount      int32                  `json:"char_count"`
	CreatedAt      *timestamppb.Timestamp `json:"created_at,omitempty"`
}

// RecentHistoryRequest asks for the newest records. Limit 0 means 10.
type RecentHistoryRequest struct {
	Limit int32 `json:"limit,omitempty"`
}

type RecentHistoryResponse struct {
	Records []*HistoryRecord `json:"records"`
}

type DeleteHistoryRequest struct {
	Id int64 `json:"id"`
}

type DeleteHistoryResponse struct {
	Deleted bool           `json:"deleted"`
	Record  *HistoryRecord `json:"record,omitempty"`
}

type ClearHistoryRequest struct{}

type ClearHistoryResponse struct {
	Cleared bool `json:"cleared"`
}

type Settings struct {
	DarkMode bool              `json:"dark_mode"`
	Values   map[string]string `json:"values,omitempty"`
}

type GetSettingsRequest struct{}

type GetSettingsResponse struct {
	Settings *Settings `json:"settings"`
}

// UpdateSettingsRequest merges fields into the settings. Reset restores the
// defaults before the merge.
type UpdateSettingsRequest struct {
	DarkMode *bool            `json:"dark_mode,omitempty"`
	Values   map[string]string `json:"values,omitempty"`
	Reset    bool              `json:"reset,omitempty"`
}

type UpdateSettingsResponse struct {
	Settings *Settings `json:"settings"`
}

type OpenSessionRequest struct {
	ClientName     string `json:"client_name"`
	SourceLanguage string `json:"source_language,omitempty"`
	TargetLanguage string `json:"target_language,omitempty"`
}

type OpenSessionResponse struct {
	SessionId                string                 `json:"session_id"`
	HeartbeatIntervalSeconds int32                  `json:"heartbeat_interval_seconds"`
	ExpiresAt                *timestamppb.Timestamp `json:"expires_at,omitempty"`
}

type HeartbeatRequest struct {
	SessionId string `json:"session_id"`
}

type HeartbeatResponse struct {
	Success                  bool                   `json:"success"`
	Message                  string                 `json:"message"`
	ReceivedAt               *timestamppb.Timestamp `json:"received_at,omitempty"`
	HeartbeatIntervalSeconds int32                  `json:"heartbeat_interval_seconds"`
	ReopenRequired           bool                   `json:"reopen_required"`
}
