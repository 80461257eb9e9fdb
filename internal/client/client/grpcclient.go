package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/sundaram/internal/api"
	"github.com/dmitrijs2005/sundaram/internal/common"
	"github.com/dmitrijs2005/sundaram/internal/signature"
)

// unsignedMethods are the calls made before a session exists.
var unsignedMethods = map[string]bool{
	api.FullMethod(api.MethodRegister):     true,
	api.FullMethod(api.MethodAuthenticate): true,
	api.FullMethod(api.MethodPing):         true,
}

type GRPCClient struct {
	signer
	endpointURL string
	conn        *grpc.ClientConn
}

func withSignature(ctx context.Context, sig, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.SignatureMetadataKey, sig)
	if token != "" {
		md.Set(common.SessionTokenMetadataKey, token)
	}
	return metadata.NewOutgoingContext(ctx, md)
}

// signatureInterceptor signs the canonical JSON of req for every call that
// needs a session.
func (c *GRPCClient) signatureInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if !unsignedMethods[method] {
		body, err := signature.CanonicalValue(req)
		if err != nil {
			return err
		}
		sig, token, err := c.sign(body)
		if err != nil {
			return err
		}
		ctx = withSignature(ctx, sig, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewGRPCClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.signatureInterceptor),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(api.CodecName)),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	return c, nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

func (c *GRPCClient) invoke(ctx context.Context, method string, in, out any) error {
	return mapError(c.conn.Invoke(ctx, api.FullMethod(method), in, out))
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	var sentinel error
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		sentinel = common.ErrorUnauthorized
	case codes.AlreadyExists:
		sentinel = common.ErrorConflict
	case codes.NotFound:
		sentinel = common.ErrorNotFound
	case codes.InvalidArgument:
		sentinel = common.ErrorBadRequest
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	case codes.Canceled:
		return context.Canceled
	default:
		sentinel = common.ErrorInternal
	}
	return common.Detail(sentinel, "%s", st.Message())
}

func (c *GRPCClient) Ping(ctx context.Context) error {
	var out api.PingResponse
	if err := c.invoke(ctx, api.MethodPing, &api.Empty{}, &out); err != nil {
		return err
	}
	if out.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (c *GRPCClient) Register(ctx context.Context, login, email, password string) (*api.SessionResponse, error) {
	out := &api.SessionResponse{}
	req := &api.RegisterRequest{Login: login, Email: email, Password: password}
	if err := c.invoke(ctx, api.MethodRegister, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GRPCClient) Authenticate(ctx context.Context, login, password string) (*api.SessionResponse, error) {
	out := &api.SessionResponse{}
	req := &api.AuthenticateRequest{Login: login, Password: password}
	if err := c.invoke(ctx, api.MethodAuthenticate, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GRPCClient) ChangePassword(ctx context.Context, oldPassword, newPassword string) (*api.ChangePasswordResponse, error) {
	out := &api.ChangePasswordResponse{}
	req := &api.ChangePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword}
	if err := c.invoke(ctx, api.MethodChangePassword, req, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GRPCClient) Generate(ctx context.Context, limit int) (*api.GenerateResponse, error) {
	out := &api.GenerateResponse{}
	if err := c.invoke(ctx, api.MethodGenerate, &api.GenerateRequest{Limit: limit}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GRPCClient) GetCurrent(ctx context.Context) (*api.CurrentResponse, error) {
	out := &api.CurrentResponse{}
	if err := c.invoke(ctx, api.MethodGetCurrent, &api.Empty{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GRPCClient) DeleteCurrent(ctx context.Context) (*api.DeleteCurrentResponse, error) {
	out := &api.DeleteCurrentResponse{}
	if err := c.invoke(ctx, api.MethodDeleteCurrent, &api.Empty{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GRPCClient) SaveParams(ctx context.Context, name string, limit int) (*api.SaveParamsResponse, error) {
	out := &api.SaveParamsResponse{}
	if err := c.invoke(ctx, api.MethodSaveParams, &api.SaveParamsRequest{Name: name, Limit: limit}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GRPCClient) ListSavedParams(ctx context.Context) (*api.SavedParamsResponse, error) {
	out := &api.SavedParamsResponse{}
	if err := c.invoke(ctx, api.MethodListSavedParams, &api.Empty{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GRPCClient) DeleteSavedParams(ctx context.Context, name string) (*api.DeleteSavedResponse, error) {
	out := &api.DeleteSavedResponse{}
	if err := c.invoke(ctx, api.MethodDeleteSavedParams, &api.DeleteSavedRequest{Name: name}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GRPCClient) GetHistory(ctx context.Context) (*api.HistoryResponse, error) {
	out := &api.HistoryResponse{}
	if err := c.invoke(ctx, api.MethodGetHistory, &api.Empty{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *GRPCClient) DeleteHistory(ctx context.Context) (*api.MessageResponse, error) {
	out := &api.MessageResponse{}
	if err := c.invoke(ctx, api.MethodDeleteHistory, &api.Empty{}, out); err != nil {
		return nil, err
	}
	return out, nil
}
