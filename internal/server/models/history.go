package models

import "time"

// Operation kinds recorded in the history log.
const (
	OpRegister       = "register"
	OpAuthenticate   = "auth"
	OpGenerate       = "sundaram_generate"
	OpGetCurrent     = "sundaram_get"
	OpDeleteCurrent  = "sundaram_delete"
	OpSaveParams     = "save_params"
	OpDeleteParams   = "delete_params"
	OpChangePassword = "change_password"
)

// HistoryEntry is one immutable audit record.
type HistoryEntry struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user"`
	Time      time.Time `json:"time"`
	Operation string    `json:"operation"`
	Details   string    `json:"details"`
}
