// Package api defines the JSON request and response bodies shared by the HTTP
// and gRPC transports and by the client.
package api

import (
	"fmt"
	"time"
)

type RegisterRequest struct {
	Login    string `json:"login"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthenticateRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// SessionResponse answers register and authenticate. SessionSecret is the
// signing key for later requests; SessionToken is shown to the user and sent
// back as a lookup hint.
type SessionResponse struct {
	Message       string `json:"message"`
	Login         string `json:"login"`
	SessionToken  string `json:"session_token"`
	SessionSecret string `json:"session_secret"`
}

type GenerateRequest struct {
	Limit int `json:"limit"`
}

type GenerateResponse struct {
	Message string `json:"message"`
	Primes  []int  `json:"primes"`
	Limit   int    `json:"limit"`
	Count   int    `json:"count"`
}

type Params struct {
	Limit int `json:"limit"`
	Count int `json:"count"`
}

type CurrentResponse struct {
	Message string `json:"message"`
	Primes  []int  `json:"primes"`
	Params  Params `json:"params"`
}

type DeleteCurrentResponse struct {
	Message string `json:"message"`
	Primes  []int  `json:"primes"`
}

type SaveParamsRequest struct {
	Name  string `json:"name"`
	Limit int    `json:"limit"`
}

type SaveParamsResponse struct {
	Message    string `json:"message"`
	Name       string `json:"name"`
	TotalSaved int    `json:"total_saved"`
}

type SavedParams struct {
	Name      string    `json:"name"`
	Limit     int       `json:"limit"`
	CreatedAt time.Time `json:"created_at"`
}

type SavedParamsResponse struct {
	Message string        `json:"message"`
	Params  []SavedParams `json:"params"`
}

// DeleteSavedRequest is only used by gRPC; over HTTP the name is part of the
// path.
type DeleteSavedRequest struct {
	Name string `json:"name"`
}

type DeleteSavedResponse struct {
	Message     string `json:"message"`
	DeletedName string `json:"deleted_name"`
	Remaining   int    `json:"remaining"`
}

type HistoryEntry struct {
	ID        string    `json:"id"`
	User      int64     `json:"user"`
	Time      time.Time `json:"time"`
	Operation string    `json:"operation"`
	Details   string    `json:"details"`
}

type HistoryResponse struct {
	Message string         `json:"message"`
	History []HistoryEntry `json:"history"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type ChangePasswordResponse struct {
	Message          string `json:"message"`
	NewSessionToken  string `json:"new_session_token"`
	NewSessionSecret string `json:"new_session_secret"`
}

// MessageResponse is the body of acknowledgements without data.
type MessageResponse struct {
	Message string `json:"message"`
}

// Empty is the request of calls without a body. It encodes as "{}", the
// canonical empty body.
type Empty struct{}

type PingResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body of every HTTP error.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// User-facing messages.
const (
	MsgRegistered      = "registration successful"
	MsgAuthenticated   = "authentication successful"
	MsgResultDeleted   = "result deleted"
	MsgParamsSaved     = "params saved"
	MsgNoSavedParams   = "no saved params"
	MsgParamsDeleted   = "params deleted"
	MsgHistory         = "request history"
	MsgHistoryEmpty    = "history is empty"
	MsgHistoryDeleted  = "history deleted"
	MsgPasswordChanged = "password changed"
)

func MsgGenerated(count, limit int) string {
	return fmt.Sprintf("found %d primes up to %d", count, limit)
}

func MsgCurrent(count int) string {
	return fmt.Sprintf("current result (%d primes)", count)
}

func MsgSavedParams(count int) string {
	return fmt.Sprintf("saved params (%d)", count)
}
