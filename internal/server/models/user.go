// Package models holds the server-side domain records.
package models

import (
	"slices"
	"time"
)

// SieveParams describes the current sieve result of a user.
type SieveParams struct {
	Limit int `json:"limit"`
	Count int `json:"count"`
}

// SavedParams is a named sieve limit a user kept for later.
type SavedParams struct {
	Name      string    `json:"name"`
	Limit     int       `json:"limit"`
	CreatedAt time.Time `json:"created_at"`
}

// User is the durable account record. Password is stored as given.
//
// CurrentPrimes empty means the user has no current result; in that case
// CurrentParams is the zero value. SavedParams is never nil once a record has
// passed through NewUser or Normalize.
type User struct {
	ID            int64         `json:"id"`
	Login         string        `json:"login"`
	Email         string        `json:"email"`
	Password      string        `json:"password"`
	SessionSecret string        `json:"session_secret"`
	SessionToken  string        `json:"session_token"`
	CurrentPrimes []int         `json:"current_primes"`
	CurrentParams SieveParams   `json:"current_params"`
	SavedParams   []SavedParams `json:"saved_params"`
	CreatedAt     time.Time     `json:"created_at"`
}

func NewUser(login, email, password string) *User {
	return &User{
		Login:         login,
		Email:         email,
		Password:      password,
		CurrentPrimes: []int{},
		SavedParams:   []SavedParams{},
	}
}

// Normalize replaces nil collections with empty ones.
func (u *User) Normalize() *User {
	if u.CurrentPrimes == nil {
		u.CurrentPrimes = []int{}
	}
	if u.SavedParams == nil {
		u.SavedParams = []SavedParams{}
	}
	return u
}

// Clone returns a deep copy so that callers may mutate it freely.
func (u *User) Clone() *User {
	c := *u
	c.CurrentPrimes = slices.Clone(u.CurrentPrimes)
	c.SavedParams = slices.Clone(u.SavedParams)
	return c.Normalize()
}

func (u *User) HasResult() bool {
	return len(u.CurrentPrimes) > 0
}

// SetResult replaces the current result.
func (u *User) SetResult(limit int, primes []int) {
	u.CurrentPrimes = primes
	u.CurrentParams = SieveParams{Limit: limit, Count: len(primes)}
}

func (u *User) ClearResult() {
	u.CurrentPrimes = []int{}
	u.CurrentParams = SieveParams{}
}

// SavedIndex returns the position of the saved params called name, or -1.
func (u *User) SavedIndex(name string) int {
	return slices.IndexFunc(u.SavedParams, func(p SavedParams) bool { return p.Name == name })
}

// RemoveSaved drops the saved params called name and reports whether they
// existed. Order of the remaining entries is kept.
func (u *User) RemoveSaved(name string) bool {
	i := u.SavedIndex(name)
	if i < 0 {
		return false
	}
	u.SavedParams = slices.Delete(u.SavedParams, i, i+1)
	return true
}
