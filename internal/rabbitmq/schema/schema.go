package schema

import (
	"encoding/json"
	"time"
)

type PasswordResetEvent struct {
	UserID int64     `json:"userId"`
	At     time.Time `json:"at"`
}

func (e *PasswordResetEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

func (e *PasswordResetEvent) Unmarshal(data []byte) error {
	return json.Unmarshal(data, e)
}
