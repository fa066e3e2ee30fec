package cache

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// TxStatus mirrors the signing overlay status of a finished attempt.
type TxStatus int

const (
	TxPending TxStatus = iota
	TxSucceeded
	TxFailed
)

func (s TxStatus) String() string {
	switch s {
	case TxSucceeded:
		return "ok"
	case TxFailed:
		return "failed"
	default:
		return "pending"
	}
}

// TxRecord is one signing attempt.
type TxRecord struct {
	ID            string
	Account       string
	Authenticator string
	Contract      string
	Action        string
	Payload       string
	Status        TxStatus
	TxID          string
	Error         string
	CreatedAt     time.Time
}

// RecordTransaction stores rec, assigning an ID and timestamp if missing.
func (d *DB) RecordTransaction(rec TxRecord) (TxRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := d.db.Exec(`INSERT OR REPLACE INTO transactions
		(id, account, authenticator, contract, action, payload, status, tx_id, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Account, rec.Authenticator, rec.Contract, rec.Action, rec.Payload,
		int(rec.Status), nullStr(rec.TxID), nullStr(rec.Error), rec.CreatedAt.UnixMilli())
	return rec, err
}

// RecentTransactions returns up to limit records, newest first.
func (d *DB) RecentTransactions(limit int) ([]TxRecord, error) {
	rows, err := d.db.Query(`SELECT id, account, authenticator, contract, action, payload, status, tx_id, error, created_at
		FROM transactions ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TxRecord
	for rows.Next() {
		var rec TxRecord
		var txID, errText sql.NullString
		var status int
		var createdAt int64
		if err := rows.Scan(&rec.ID, &rec.Account, &rec.Authenticator, &rec.Contract, &rec.Action,
			&rec.Payload, &status, &txID, &errText, &createdAt); err != nil {
			return nil, err
		}
		rec.Status = TxStatus(status)
		rec.TxID = txID.String
		rec.Error = errText.String
		rec.CreatedAt = time.UnixMilli(createdAt)
		result = append(result, rec)
	}
	return result, rows.Err()
}
