package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const sessionKey = "ual_session"

// Session is the persisted login used for auto-login on the next start.
type Session struct {
	AccountName       string    `json:"account_name"`
	AuthenticatorName string    `json:"authenticator_name"`
	Timestamp         time.Time `json:"timestamp"`
}

// Complete reports whether both the account and the authenticator are known.
func (s Session) Complete() bool {
	return s.AccountName != "" && s.AuthenticatorName != ""
}

// LoadSession returns the stored session, or a zero Session if none exists.
func (d *DB) LoadSession() (Session, error) {
	var raw string
	err := d.db.QueryRow(`SELECT value FROM session WHERE key = ?`, sessionKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("reading session: %w", err)
	}

	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Session{}, fmt.Errorf("decoding session: %w", err)
	}
	return s, nil
}

// SaveSession replaces the stored session. Saving an incomplete session
// clears it.
func (d *DB) SaveSession(s Session) error {
	if !s.Complete() {
		return d.ClearSession()
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	_, err = d.db.Exec(`INSERT OR REPLACE INTO session (key, value) VALUES (?, ?)`, sessionKey, string(data))
	return err
}

// ClearSession removes the stored session.
func (d *DB) ClearSession() error {
	_, err := d.db.Exec(`DELETE FROM session WHERE key = ?`, sessionKey)
	return err
}
