package grpc

import (
	"context"

	"github.com/dmitrijs2005/sundaram/internal/api"
	"github.com/dmitrijs2005/sundaram/internal/server/dto"
)

func (s *Server) Register(ctx context.Context, req *api.RegisterRequest) (*api.SessionResponse, error) {
	u, err := s.users.Register(ctx, req.Login, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	resp := dto.Session(u, api.MsgRegistered)
	return &resp, nil
}

func (s *Server) Authenticate(ctx context.Context, req *api.AuthenticateRequest) (*api.SessionResponse, error) {
	u, err := s.users.Authenticate(ctx, req.Login, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	resp := dto.Session(u, api.MsgAuthenticated)
	return &resp, nil
}

func (s *Server) Generate(ctx context.Context, req *api.GenerateRequest) (*api.GenerateResponse, error) {
	primes, err := s.sieve.Generate(ctx, userFromContext(ctx), req.Limit)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	resp := dto.Generate(primes, req.Limit)
	return &resp, nil
}

func (s *Server) GetCurrent(ctx context.Context, _ *api.Empty) (*api.CurrentResponse, error) {
	primes, params, err := s.sieve.Current(ctx, userFromContext(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	resp := dto.Current(primes, params)
	return &resp, nil
}

func (s *Server) DeleteCurrent(ctx context.Context, _ *api.Empty) (*api.DeleteCurrentResponse, error) {
	if err := s.sieve.DeleteCurrent(ctx, userFromContext(ctx)); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	resp := dto.DeleteCurrent()
	return &resp, nil
}

func (s *Server) SaveParams(ctx context.Context, req *api.SaveParamsRequest) (*api.SaveParamsResponse, error) {
	total, err := s.sieve.SaveParams(ctx, userFromContext(ctx), req.Name, req.Limit)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	resp := dto.SaveParams(req.Name, total)
	return &resp, nil
}

func (s *Server) ListSavedParams(ctx context.Context, _ *api.Empty) (*api.SavedParamsResponse, error) {
	list, err := s.sieve.ListSaved(ctx, userFromContext(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	resp := dto.SavedParams(list)
	return &resp, nil
}

func (s *Server) DeleteSavedParams(ctx context.Context, req *api.DeleteSavedRequest) (*api.DeleteSavedResponse, error) {
	remaining, err := s.sieve.DeleteSaved(ctx, userFromContext(ctx), req.Name)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	resp := dto.DeleteSaved(req.Name, remaining)
	return &resp, nil
}

func (s *Server) GetHistory(ctx context.Context, _ *api.Empty) (*api.HistoryResponse, error) {
	entries, err := s.history.List(ctx, userFromContext(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	resp := dto.History(entries)
	return &resp, nil
}

func (s *Server) DeleteHistory(ctx context.Context, _ *api.Empty) (*api.MessageResponse, error) {
	if err := s.history.Clear(ctx, userFromContext(ctx)); err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &api.MessageResponse{Message: api.MsgHistoryDeleted}, nil
}

func (s *Server) ChangePassword(ctx context.Context, req *api.ChangePasswordRequest) (*api.ChangePasswordResponse, error) {
	u, err := s.users.ChangePassword(ctx, userFromContext(ctx), req.OldPassword, req.NewPassword)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	resp := dto.ChangePassword(u)
	return &resp, nil
}

func (s *Server) Ping(context.Context, *api.Empty) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}
