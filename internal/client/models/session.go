// Package models holds the client's local state.
package models

import "time"

// Session is the signing state kept between CLI runs. Secret signs requests,
// Token is only a lookup hint for the server.
type Session struct {
	Login   string
	Secret  string
	Token   string
	SavedAt time.Time
}

func (s *Session) Valid() bool {
	return s != nil && s.Login != "" && s.Secret != ""
}
