package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSession_RoundTripAndClear(t *testing.T) {
	db := openTestDB(t)

	s, err := db.LoadSession()
	require.NoError(t, err)
	assert.False(t, s.Complete())

	now := time.Now().Truncate(time.Second)
	require.NoError(t, db.SaveSession(Session{AccountName: "alice.dac", AuthenticatorName: "Anchor", Timestamp: now}))

	s, err = db.LoadSession()
	require.NoError(t, err)
	assert.Equal(t, "alice.dac", s.AccountName)
	assert.Equal(t, "Anchor", s.AuthenticatorName)
	assert.True(t, s.Timestamp.Equal(now))

	require.NoError(t, db.SaveSession(Session{}))
	s, err = db.LoadSession()
	require.NoError(t, err)
	assert.Equal(t, Session{}, s)
}

func TestSession_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.SaveSession(Session{AccountName: "bob", AuthenticatorName: "Wombat"}))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()

	s, err := db.LoadSession()
	require.NoError(t, err)
	assert.Equal(t, "bob", s.AccountName)
}

func TestTransactions_RecordAndList(t *testing.T) {
	db := openTestDB(t)
	base := time.Now()

	first, err := db.RecordTransaction(TxRecord{
		Account: "alice.dac", Authenticator: "Anchor", Contract: "eosio.token", Action: "transfer",
		Payload: `{"memo":"{}"}`, Status: TxSucceeded, TxID: "0f1e2d", CreatedAt: base.Add(-time.Minute),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	_, err = db.RecordTransaction(TxRecord{
		Account: "alice.dac", Authenticator: "Anchor", Contract: "eosio.token", Action: "transfer",
		Payload: `{}`, Status: TxFailed, Error: "expired", CreatedAt: base,
	})
	require.NoError(t, err)

	recs, err := db.RecentTransactions(10)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, TxFailed, recs[0].Status)
	assert.Equal(t, "expired", recs[0].Error)
	assert.Equal(t, "", recs[0].TxID)
	assert.Equal(t, first.ID, recs[1].ID)
	assert.Equal(t, "0f1e2d", recs[1].TxID)
	assert.Equal(t, "ok", recs[1].Status.String())

	recs, err = db.RecentTransactions(1)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}
