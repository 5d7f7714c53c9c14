package linguaflowv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "linguaflow.v1.Translator"

const (
	Translator_Translate_FullMethodName      = "/linguaflow.v1.Translator/Translate"
	Translator_DetectLanguage_FullMethodName = "/linguaflow.v1.Translator/DetectLanguage"
	Translator_ListLanguages_FullMethodName  = "/linguaflow.v1.Translator/ListLanguages"
	Translator_RecentHistory_FullMethodName  = "/linguaflow.v1.Translator/RecentHistory"
	Translator_DeleteHistory_FullMethodName  = "/linguaflow.v1.Translator/DeleteHistory"
	Translator_ClearHistory_FullMethodName   = "/linguaflow.v1.Translator/ClearHistory"
	Translator_GetSettings_FullMethodName    = "/linguaflow.v1.Translator/GetSettings"
	Translator_UpdateSettings_FullMethodName = "/linguaflow.v1.Translator/UpdateSettings"
	Translator_OpenSession_FullMethodName    = "/linguaflow.v1.Translator/OpenSession"
	Translator_Heartbeat_FullMethodName      = "/linguaflow.v1.Translator/Heartbeat"
)

// TranslatorServer is the server API for the Translator service.
type TranslatorServer interface {
	Translate(context.Context, *TranslateRequest) (*TranslateResponse, error)
	DetectLanguage(context.Context, *DetectLanguageRequest) (*DetectLanguageResponse, error)
	ListLanguages(context.Context, *ListLanguagesRequest) (*ListLanguagesResponse, error)
	RecentHistory(context.Context, *RecentHistoryRequest) (*RecentHistoryResponse, error)
	DeleteHistory(context.Context, *DeleteHistoryRequest) (*DeleteHistoryResponse, error)
	ClearHistory(context.Context, *ClearHistoryRequest) (*ClearHistoryResponse, error)
	GetSettings(context.Context, *GetSettingsRequest) (*GetSettingsResponse, error)
	UpdateSettings(context.Context, *UpdateSettingsRequest) (*UpdateSettingsResponse, error)
	OpenSession(context.Context, *OpenSessionRequest) (*OpenSessionResponse, error)
	Heartbeat(context.Context, *HeartbeatRequest) (*HeartbeatResponse, error)
}

// UnimplementedTranslatorServer answers Unimplemented for every method. Embed
// it to stay forward compatible.
type UnimplementedTranslatorServer struct{}

func (UnimplementedTranslatorServer) Translate(context.Context, *TranslateRequest) (*TranslateResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Translate not implemented")
}
func (UnimplementedTranslatorServer) DetectLanguage(context.Context, *DetectLanguageRequest) (*DetectLanguageResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DetectLanguage not implemented")
}
func (UnimplementedTranslatorServer) ListLanguages(context.Context, *ListLanguagesRequest) (*ListLanguagesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListLanguages not implemented")
}
func (UnimplementedTranslatorServer) RecentHistory(context.Context, *RecentHistoryRequest) (*RecentHistoryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RecentHistory not implemented")
}
func (UnimplementedTranslatorServer) DeleteHistory(context.Context, *DeleteHistoryRequest) (*DeleteHistoryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteHistory not implemented")
}
func (UnimplementedTranslatorServer) ClearHistory(context.Context, *ClearHistoryRequest) (*ClearHistoryResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ClearHistory not implemented")
}
func (UnimplementedTranslatorServer) GetSettings(context.Context, *GetSettingsRequest) (*GetSettingsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSettings not implemented")
}
func (UnimplementedTranslatorServer) UpdateSettings(context.Context, *UpdateSettingsRequest) (*UpdateSettingsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateSettings not implemented")
}
func (UnimplementedTranslatorServer) OpenSession(context.Context, *OpenSessionRequest) (*OpenSessionResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method OpenSession not implemented")
}
func (UnimplementedTranslatorServer) Heartbeat(context.Context, *HeartbeatRequest) (*HeartbeatResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Heartbeat not implemented")
}

// RegisterTranslatorServer registers srv with s.
func RegisterTranslatorServer(s grpc.ServiceRegistrar, srv TranslatorServer) {
	s.RegisterService(&Translator_ServiceDesc, srv)
}

// unary builds the method descriptor for one unary call.
func unary[Req, Resp any](name, fullMethod string, call func(TranslatorServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(TranslatorServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(TranslatorServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// Translator_ServiceDesc describes the Translator service for grpc.Server.
var Translator_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*TranslatorServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Translate", Translator_Translate_FullMethodName, TranslatorServer.Translate),
		unary("DetectLanguage", Translator_DetectLanguage_FullMethodName, TranslatorServer.DetectLanguage),
		unary("ListLanguages", Translator_ListLanguages_FullMethodName, TranslatorServer.ListLanguages),
		unary("RecentHistory", Translator_RecentHistory_FullMethodName, TranslatorServer.RecentHistory),
		unary("DeleteHistory", Translator_DeleteHistory_FullMethodName, TranslatorServer.DeleteHistory),
		unary("ClearHistory", Translator_ClearHistory_FullMethodName, TranslatorServer.ClearHistory),
		unary("GetSettings", Translator_GetSettings_FullMethodName, TranslatorServer.GetSettings),
		unary("UpdateSettings", Translator_UpdateSettings_FullMethodName, TranslatorServer.UpdateSettings),
		unary("OpenSession", Translator_OpenSession_FullMethodName, TranslatorServer.OpenSession),
		unary("Heartbeat", Translator_Heartbeat_FullMethodName, TranslatorServer.Heartbeat),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "linguaflow/v1/translator.json",
}

// TranslatorClient is the client API for the Translator service.
type TranslatorClient interface {
	Translate(ctx context.Context, in *TranslateRequest, opts ...grpc.CallOption) (*TranslateResponse, error)
	DetectLanguage(ctx context.Context, in *DetectLanguageRequest, opts ...grpc.CallOption) (*DetectLanguageResponse, error)
	ListLanguages(ctx context.Context, in *ListLanguagesRequest, opts ...grpc.CallOption) (*ListLanguagesResponse, error)
	RecentHistory(ctx context.Context, in *RecentHistoryRequest, opts ...grpc.CallOption) (*RecentHistoryResponse, error)
	DeleteHistory(ctx context.Context, in *DeleteHistoryRequest, opts ...grpc.CallOption) (*DeleteHistoryResponse, error)
	ClearHistory(ctx context.Context, in *ClearHistoryRequest, opts ...grpc.CallOption) (*ClearHistoryResponse, error)
	GetSettings(ctx context.Context, in *GetSettingsRequest, opts ...grpc.CallOption) (*GetSettingsResponse, error)
	UpdateSettings(ctx context.Context, in *UpdateSettingsRequest, opts ...grpc.CallOption) (*UpdateSettingsResponse, error)
	OpenSession(ctx context.Context, in *OpenSessionRequest, opts ...grpc.CallOption) (*OpenSessionResponse, error)
	Heartbeat(ctx context.Context, in *HeartbeatRequest, opts ...grpc.CallOption) (*HeartbeatResponse, error)
}

type translatorClient struct {
	cc grpc.ClientConnInterface
}

// NewTranslatorClient returns a client that always uses the JSON codec.
func NewTranslatorClient(cc grpc.ClientConnInterface) TranslatorClient {
	return &translatorClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *translatorClient) Translate(ctx context.Context, in *TranslateRequest, opts ...grpc.CallOption) (*TranslateResponse, error) {
	return invoke[TranslateResponse](ctx, c.cc, Translator_Translate_FullMethodName, in, opts)
}

func (c *translatorClient) DetectLanguage(ctx context.Context, in *DetectLanguageRequest, opts ...grpc.CallOption) (*DetectLanguageResponse, error) {
	return invoke[DetectLanguageResponse](ctx, c.cc, Translator_DetectLanguage_FullMethodName, in, opts)
}

func (c *translatorClient) ListLanguages(ctx context.Context, in *ListLanguagesRequest, opts ...grpc.CallOption) (*ListLanguagesResponse, error) {
	return invoke[ListLanguagesResponse](ctx, c.cc, Translator_ListLanguages_FullMethodName, in, opts)
}

func (c *translatorClient) RecentHistory(ctx context.Context, in *RecentHistoryRequest, opts ...grpc.CallOption) (*RecentHistoryResponse, error) {
	return invoke[RecentHistoryResponse](ctx, c.cc, Translator_RecentHistory_FullMethodName, in, opts)
}

func (c *translatorClient) DeleteHistory(ctx context.Context, in *DeleteHistoryRequest, opts ...grpc.CallOption) (*DeleteHistoryResponse, error) {
	return invoke[DeleteHistoryResponse](ctx, c.cc, Translator_DeleteHistory_FullMethodName, in, opts)
}

func (c *translatorClient) ClearHistory(ctx context.Context, in *ClearHistoryRequest, opts ...grpc.CallOption) (*ClearHistoryResponse, error) {
	return invoke[ClearHistoryResponse](ctx, c.cc, Translator_ClearHistory_FullMethodName, in, opts)
}

func (c *translatorClient) GetSettings(ctx context.Context, in *GetSettingsRequest, opts ...grpc.CallOption) (*GetSettingsResponse, error) {
	return invoke[GetSettingsResponse](ctx, c.cc, Translator_GetSettings_FullMethodName, in, opts)
}

func (c *translatorClient) UpdateSettings(ctx context.Context, in *UpdateSettingsRequest, opts ...grpc.CallOption) (*UpdateSettingsResponse, error) {
	return invoke[UpdateSettingsResponse](ctx, c.cc, Translator_UpdateSettings_FullMethodName, in, opts)
}

func (c *translatorClient) OpenSession(ctx context.Context, in *OpenSessionRequest, opts ...grpc.CallOption) (*OpenSessionResponse, error) {
	return invoke[OpenSessionResponse](ctx, c.cc, Translator_OpenSession_FullMethodName, in, opts)
}

func (c *translatorClient) Heartbeat(ctx context.Context, in *HeartbeatRequest, opts ...grpc.CallOption) (*HeartbeatResponse, error) {
	return invoke[HeartbeatResponse](ctx, c.cc, Translator_Heartbeat_FullMethodName, in, opts)
}
