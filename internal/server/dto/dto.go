// Package dto converts service results into api responses. Both transports
// use it so HTTP and gRPC answer with identical bodies.
package dto

import (
	"github.com/dmitrijs2005/sundaram/internal/api"
	"github.com/dmitrijs2005/sundaram/internal/server/models"
)

func Session(u *models.User, msg string) api.SessionResponse {
	return api.SessionResponse{
		Message:       msg,
		Login:         u.Login,
		SessionToken:  u.SessionToken,
		SessionSecret: u.SessionSecret,
	}
}

func Generate(primes []int, limit int) api.GenerateResponse {
	if primes == nil {
		primes = []int{}
	}
	return api.GenerateResponse{
		Message: api.MsgGenerated(len(primes), limit),
		Primes:  primes,
		Limit:   limit,
		Count:   len(primes),
	}
}

func Current(primes []int, p models.SieveParams) api.CurrentResponse {
	return api.CurrentResponse{
		Message: api.MsgCurrent(len(primes)),
		Primes:  primes,
		Params:  api.Params{Limit: p.Limit, Count: p.Count},
	}
}

func DeleteCurrent() api.DeleteCurrentResponse {
	return api.DeleteCurrentResponse{Message: api.MsgResultDeleted, Primes: []int{}}
}

func SaveParams(name string, total int) api.SaveParamsResponse {
	return api.SaveParamsResponse{Message: api.MsgParamsSaved, Name: name, TotalSaved: total}
}

func SavedParams(list []models.SavedParams) api.SavedParamsResponse {
	out := make([]api.SavedParams, 0, len(list))
	for _, p := range list {
		out = append(out, api.SavedParams{Name: p.Name, Limit: p.Limit, CreatedAt: p.CreatedAt})
	}
	msg := api.MsgNoSavedParams
	if len(out) > 0 {
		msg = api.MsgSavedParams(len(out))
	}
	return api.SavedParamsResponse{Message: msg, Params: out}
}

func DeleteSaved(name string, remaining int) api.DeleteSavedResponse {
	return api.DeleteSavedResponse{Message: api.MsgParamsDeleted, DeletedName: name, Remaining: remaining}
}

func History(entries []models.HistoryEntry) api.HistoryResponse {
	out := make([]api.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, api.HistoryEntry{
			ID:        e.ID,
			User:      e.UserID,
			Time:      e.Time,
			Operation: e.Operation,
			Details:   e.Details,
		})
	}
	msg := api.MsgHistory
	if len(out) == 0 {
		msg = api.MsgHistoryEmpty
	}
	return api.HistoryResponse{Message: msg, History: out}
}

func ChangePassword(u *models.User) api.ChangePasswordResponse {
	return api.ChangePasswordResponse{
		Message:          api.MsgPasswordChanged,
		NewSessionToken:  u.SessionToken,
		NewSessionSecret: u.SessionSecret,
	}
}
