package grpc

import (
	"context"

	"google.golang.org/grpc"

	"github.com/dmitrijs2005/sundaram/internal/api"
)

// SundaramServer is implemented by Server. It exists so the hand-written
// service description can name a handler type.
type SundaramServer interface {
	Register(context.Context, *api.RegisterRequest) (*api.SessionResponse, error)
	Authenticate(context.Context, *api.AuthenticateRequest) (*api.SessionResponse, error)
	Generate(context.Context, *api.GenerateRequest) (*api.GenerateResponse, error)
	GetCurrent(context.Context, *api.Empty) (*api.CurrentResponse, error)
	DeleteCurrent(context.Context, *api.Empty) (*api.DeleteCurrentResponse, error)
	SaveParams(context.Context, *api.SaveParamsRequest) (*api.SaveParamsResponse, error)
	ListSavedParams(context.Context, *api.Empty) (*api.SavedParamsResponse, error)
	DeleteSavedParams(context.Context, *api.DeleteSavedRequest) (*api.DeleteSavedResponse, error)
	GetHistory(context.Context, *api.Empty) (*api.HistoryResponse, error)
	DeleteHistory(context.Context, *api.Empty) (*api.MessageResponse, error)
	ChangePassword(context.Context, *api.ChangePasswordRequest) (*api.ChangePasswordResponse, error)
	Ping(context.Context, *api.Empty) (*api.PingResponse, error)
}

// unary builds the method description for one request/response call.
func unary[Req, Resp any](name string, call func(SundaramServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(SundaramServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: api.FullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			})
		},
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: api.ServiceName,
	HandlerType: (*SundaramServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(api.MethodRegister, SundaramServer.Register),
		unary(api.MethodAuthenticate, SundaramServer.Authenticate),
		unary(api.MethodGenerate, SundaramServer.Generate),
		unary(api.MethodGetCurrent, SundaramServer.GetCurrent),
		unary(api.MethodDeleteCurrent, SundaramServer.DeleteCurrent),
		unary(api.MethodSaveParams, SundaramServer.SaveParams),
		unary(api.MethodListSavedParams, SundaramServer.ListSavedParams),
		unary(api.MethodDeleteSavedParams, SundaramServer.DeleteSavedParams),
		unary(api.MethodGetHistory, SundaramServer.GetHistory),
		unary(api.MethodDeleteHistory, SundaramServer.DeleteHistory),
		unary(api.MethodChangePassword, SundaramServer.ChangePassword),
		unary(api.MethodPing, SundaramServer.Ping),
	},
	Metadata: "sundaram.v1",
}

// RegisterSundaramServer adds the service to s.
func RegisterSundaramServer(s grpc.ServiceRegistrar, srv SundaramServer) {
	s.RegisterService(&serviceDesc, srv)
}
