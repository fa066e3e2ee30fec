package coordinator

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/dacforge/internal/cache"
	"github.com/fragmede/dacforge/internal/config"
	"github.com/fragmede/dacforge/internal/dac"
	"github.com/fragmede/dacforge/internal/store"
	"github.com/fragmede/dacforge/internal/ual"
	"github.com/fragmede/dacforge/internal/ual/ualtest"
)

type memPersister struct {
	session cache.Session
	saves   int
	clears  int
	records []cache.TxRecord
}

func (m *memPersister) SaveSession(s cache.Session) error {
	m.saves++
	m.session = s
	return nil
}

func (m *memPersister) ClearSession() error {
	m.clears++
	m.session = cache.Session{}
	return nil
}

func (m *memPersister) RecordTransaction(rec cache.TxRecord) (cache.TxRecord, error) {
	m.records = append(m.records, rec)
	return rec, nil
}

type fixture struct {
	c     *Coordinator
	state *store.State
	clock *clockwork.FakeClock
	db    *memPersister
}

func newFixture(t *testing.T, session cache.Session, auths ...ual.Authenticator) fixture {
	t.Helper()
	state := store.New(ual.NewRegistry(auths...), session)
	clock := clockwork.NewFakeClock()
	db := &memPersister{session: session}
	contracts := config.Contracts{
		"KASDAC_TOKEN_CONTRACT": "kasdactokens",
		"EOS_TOKEN_CONTRACT":    "eosio.token",
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return fixture{c: New(ctx, state, clock, contracts, db), state: state, clock: clock, db: db}
}

// loggedIn returns a fixture with alice logged in through a.
func loggedIn(t *testing.T, a *ualtest.Authenticator) fixture {
	t.Helper()
	f := newFixture(t, cache.Session{}, a)
	f.c.Update(f.c.Login(a, "alice.dac")())
	require.True(t, f.state.LoggedIn())
	return f
}

// runAsync starts cmd and returns a channel with its message.
func runAsync(cmd tea.Cmd) <-chan tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	return ch
}

// advanceUntil keeps moving the fake clock one poll interval at a time until
// ch yields.
func advanceUntil(t *testing.T, clock *clockwork.FakeClock, ch <-chan tea.Msg) tea.Msg {
	t.Helper()
	var got tea.Msg
	require.Eventually(t, func() bool {
		select {
		case got = <-ch:
			return true
		default:
			clock.Advance(loadPollInterval)
			return false
		}
	}, 2*time.Second, time.Millisecond)
	return got
}

func TestWaitForAuthenticatorToLoad_NotLoading(t *testing.T) {
	a := ualtest.New("Anchor")
	f := newFixture(t, cache.Session{}, a)

	require.NoError(t, f.c.WaitForAuthenticatorToLoad(context.Background(), a))
	assert.Equal(t, 1, a.Polls())
}

func TestWaitForAuthenticatorToLoad_PollsEvery250ms(t *testing.T) {
	a := ualtest.New("Anchor")
	a.SetLoading(true)
	f := newFixture(t, cache.Session{}, a)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- f.c.WaitForAuthenticatorToLoad(ctx, a) }()

	require.NoError(t, f.clock.BlockUntilContext(ctx, 1))
	f.clock.Advance(249 * time.Millisecond)
	assert.Never(t, func() bool { return a.Polls() > 1 }, 50*time.Millisecond, 5*time.Millisecond)

	f.clock.Advance(time.Millisecond)
	require.Eventually(t, func() bool { return a.Polls() == 2 }, time.Second, time.Millisecond)
	select {
	case <-done:
		t.Fatal("wait returned while still loading")
	default:
	}

	a.SetLoading(false)
	f.clock.Advance(loadPollInterval)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("wait did not return after loading finished")
	}
}

func TestWaitForAuthenticatorToLoad_Cancelled(t *testing.T) {
	a := ualtest.New("Anchor")
	a.SetLoading(true)
	f := newFixture(t, cache.Session{}, a)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, f.c.WaitForAuthenticatorToLoad(ctx, a), context.Canceled)
}

func TestAttemptAutoLogin_EmptySessionDoesNothing(t *testing.T) {
	a := ualtest.New("Anchor")
	for _, s := range []cache.Session{{}, {AccountName: "alice.dac"}, {AuthenticatorName: "Anchor"}} {
		f := newFixture(t, s, a)
		assert.Nil(t, f.c.AttemptAutoLogin())
	}
	initCalls, loginCalls, _ := a.Calls()
	assert.Zero(t, initCalls)
	assert.Zero(t, loginCalls)
}

func TestAttemptAutoLogin_Success(t *testing.T) {
	a := ualtest.New("Anchor")
	other := ualtest.New("Wombat")
	f := newFixture(t, cache.Session{AccountName: "alice.dac", AuthenticatorName: "Anchor"}, other, a)

	cmd := f.c.AttemptAutoLogin()
	require.NotNil(t, cmd)
	msg := cmd()
	f.c.Update(msg)

	assert.Equal(t, "alice.dac", f.state.AccountName)
	assert.Same(t, a, f.state.ActiveAuthenticator)
	assert.Equal(t, "alice.dac", f.state.Session.AccountName)
	assert.Equal(t, "Anchor", f.state.Session.AuthenticatorName)
	assert.True(t, f.state.Session.Timestamp.Equal(f.clock.Now()))
	assert.Equal(t, f.state.Session, f.db.session)

	initCalls, loginCalls, _ := a.Calls()
	assert.Equal(t, 1, initCalls)
	assert.Equal(t, 1, loginCalls)
	otherInit, _, _ := other.Calls()
	assert.Zero(t, otherInit)
}

func TestAttemptAutoLogin_WaitsForLoading(t *testing.T) {
	a := ualtest.New("Anchor")
	a.LoadingPolls = 3
	f := newFixture(t, cache.Session{AccountName: "alice.dac", AuthenticatorName: "Anchor"}, a)

	msg := advanceUntil(t, f.clock, runAsync(f.c.AttemptAutoLogin()))
	f.c.Update(msg)

	assert.True(t, f.state.LoggedIn())
	assert.GreaterOrEqual(t, a.Polls(), 4)
}

func TestAttemptAutoLogin_InitErrorClearsSession(t *testing.T) {
	a := ualtest.New("Anchor")
	a.FailInit = true
	f := newFixture(t, cache.Session{AccountName: "alice.dac", AuthenticatorName: "Anchor"}, a)

	msg := f.c.AttemptAutoLogin()()
	res := msg.(LoginResultMsg)
	assert.ErrorIs(t, res.Err, ual.ErrAuthenticatorUnavailable)
	f.c.Update(msg)

	assert.False(t, f.state.Session.Complete())
	assert.False(t, f.state.LoggedIn())
	assert.Equal(t, 1, f.db.clears)
	_, loginCalls, _ := a.Calls()
	assert.Zero(t, loginCalls)
}

func TestAttemptAutoLogin_LoginFailureClearsSession(t *testing.T) {
	a := ualtest.New("Anchor")
	a.LoginErr = &ual.Error{Message: "login rejected", Cause: &ual.ErrorCause{Reason: "expired key"}}
	f := newFixture(t, cache.Session{AccountName: "alice.dac", AuthenticatorName: "Anchor"}, a)

	f.c.Update(f.c.AttemptAutoLogin()())

	assert.Equal(t, cache.Session{}, f.state.Session)
	assert.Nil(t, f.state.ActiveAuthenticator)
	assert.Empty(t, f.state.AccountName)
}

func TestAttemptAutoLogin_UnknownAuthenticator(t *testing.T) {
	f := newFixture(t, cache.Session{AccountName: "alice.dac", AuthenticatorName: "Scatter"}, ualtest.New("Anchor"))

	assert.Nil(t, f.c.AttemptAutoLogin())
	assert.Equal(t, cache.Session{}, f.state.Session)
	assert.Equal(t, 1, f.db.clears)
}

func TestLogin_FromModal(t *testing.T) {
	a := ualtest.New("Anchor")
	f := newFixture(t, cache.Session{}, a)
	f.c.RenderLoginModal()
	require.True(t, f.state.ShouldRenderLoginModal)

	assert.Nil(t, f.c.Login(a, ""))

	f.c.Update(f.c.Login(a, "alice.dac")())
	assert.True(t, f.state.LoggedIn())
	assert.False(t, f.state.ShouldRenderLoginModal)
	assert.Equal(t, 1, f.db.saves)
}

func TestLogin_FailureKeepsSession(t *testing.T) {
	a := ualtest.New("Anchor")
	a.LoginErr = errors.New("denied")
	prev := cache.Session{AccountName: "bob", AuthenticatorName: "Anchor"}
	f := newFixture(t, prev, a)

	msg := f.c.Login(a, "alice.dac")()
	f.c.Update(msg)

	assert.Equal(t, prev, f.state.Session)
	assert.False(t, f.state.LoggedIn())
	assert.EqualError(t, msg.(LoginResultMsg).Err, "denied")
}

func TestLogout_WithoutActiveAuthenticator(t *testing.T) {
	s := cache.Session{AccountName: "alice.dac", AuthenticatorName: "Anchor"}
	f := newFixture(t, s, ualtest.New("Anchor"))
	f.state.SetAccountName("alice.dac")

	assert.Nil(t, f.c.Logout())
	assert.Equal(t, "alice.dac", f.state.AccountName)
	assert.Equal(t, s, f.state.Session)
}

func TestLogout_Success(t *testing.T) {
	a := ualtest.New("Anchor")
	f := loggedIn(t, a)

	f.c.Update(f.c.Logout()())

	assert.Nil(t, f.state.ActiveAuthenticator)
	assert.Empty(t, f.state.AccountName)
	assert.Equal(t, cache.Session{}, f.state.Session)
	assert.Equal(t, cache.Session{}, f.db.session)
}

func TestLogout_FailureLeavesStateUnchanged(t *testing.T) {
	a := ualtest.New("Anchor")
	f := loggedIn(t, a)
	a.LogoutErr = errors.New("wallet locked")
	before := *f.state

	f.c.Update(f.c.Logout()())

	assert.Same(t, a, f.state.ActiveAuthenticator)
	assert.Equal(t, before.AccountName, f.state.AccountName)
	assert.Equal(t, before.Session, f.state.Session)
}

func transferTx() ual.Transaction {
	return ual.Transaction{Actions: []ual.Action{{
		Account: "eosio.token",
		Name:    "transfer",
		Data:    dac.Transfer{From: "alice.dac", To: "piecesnbitss", Quantity: "1.0000 EOS", Memo: "{}"},
	}}}
}

func TestTransact_LoggedOutRendersLoginModal(t *testing.T) {
	f := newFixture(t, cache.Session{}, ualtest.New("Anchor"))

	assert.Nil(t, f.c.Transact(transferTx()))
	assert.True(t, f.state.ShouldRenderLoginModal)
	assert.Equal(t, store.SigningOverlay{}, f.state.SigningOverlay)
}

func TestTransact_SuccessThenHidesAfter1s(t *testing.T) {
	a := ualtest.New("Anchor")
	a.Result = &ual.SignResult{TransactionID: "0f1e2d"}
	f := loggedIn(t, a)

	cmd := f.c.Transact(transferTx())
	require.NotNil(t, cmd)
	assert.Equal(t, store.SigningOverlay{Show: true, Status: store.OverlayPending, Msg: "Waiting for Signature"}, f.state.SigningOverlay)

	msg := cmd().(TransactResultMsg)
	require.NoError(t, msg.Err)
	assert.Equal(t, "0f1e2d", msg.Result.TransactionID)

	txs, opts := a.Signed()
	require.Len(t, txs, 1)
	assert.True(t, opts[0].Broadcast)
	assert.Equal(t, []ual.Authorization{{Actor: "alice.dac", Permission: "active"}}, txs[0].Actions[0].Authorization)

	hide := f.c.Update(msg)
	assert.Equal(t, store.OverlaySuccess, f.state.SigningOverlay.Status)
	assert.True(t, f.state.SigningOverlay.Show)
	require.Len(t, f.db.records, 1)
	assert.Equal(t, cache.TxSucceeded, f.db.records[0].Status)
	assert.Equal(t, "0f1e2d", f.db.records[0].TxID)

	ch := runAsync(hide)
	ctx := context.Background()
	require.NoError(t, f.clock.BlockUntilContext(ctx, 1))
	f.clock.Advance(999 * time.Millisecond)
	select {
	case <-ch:
		t.Fatal("overlay hidden before 1000ms")
	case <-time.After(20 * time.Millisecond):
	}
	f.clock.Advance(time.Millisecond)

	var hideMsg tea.Msg
	select {
	case hideMsg = <-ch:
	case <-time.After(time.Second):
		t.Fatal("overlay not hidden after 1000ms")
	}
	f.c.Update(hideMsg)
	assert.Equal(t, store.SigningOverlay{Show: false, Status: store.OverlayPending}, f.state.SigningOverlay)
}

func TestTransact_KeepsSuppliedAuthorization(t *testing.T) {
	a := ualtest.New("Anchor")
	f := loggedIn(t, a)

	tx := transferTx()
	tx.Actions[0].Authorization = []ual.Authorization{{Actor: "alice.dac", Permission: "owner"}}
	tx.Actions = append(tx.Actions, ual.Action{Account: "ignored", Name: "noop"})

	f.c.Transact(tx)()
	txs, _ := a.Signed()
	require.Len(t, txs[0].Actions, 1)
	assert.Equal(t, "owner", txs[0].Actions[0].Authorization[0].Permission)
}

func TestTransact_FailureShowsErrorThenHidesAfter2s(t *testing.T) {
	a := ualtest.New("Anchor")
	a.SignErr = &ual.Error{Message: "sign failed", Cause: &ual.ErrorCause{Reason: "bad sig", Code: "7"}}
	f := loggedIn(t, a)

	msg := f.c.Transact(transferTx())().(TransactResultMsg)
	assert.Nil(t, msg.Result)

	hide := f.c.Update(msg)
	assert.Equal(t, store.SigningOverlay{Show: true, Status: store.OverlayError, Msg: "sign failed. bad sig 7"}, f.state.SigningOverlay)
	require.Len(t, f.db.records, 1)
	assert.Equal(t, cache.TxFailed, f.db.records[0].Status)

	ch := runAsync(hide)
	ctx := context.Background()
	require.NoError(t, f.clock.BlockUntilContext(ctx, 1))
	f.clock.Advance(1999 * time.Millisecond)
	select {
	case <-ch:
		t.Fatal("overlay hidden before 2000ms")
	case <-time.After(20 * time.Millisecond):
	}
	f.clock.Advance(time.Millisecond)
	select {
	case m := <-ch:
		f.c.Update(m)
	case <-time.After(time.Second):
		t.Fatal("overlay not hidden after 2000ms")
	}
	assert.False(t, f.state.SigningOverlay.Show)
}

func TestTransact_StaleHideTimerHidesNewerOverlay(t *testing.T) {
	a := ualtest.New("Anchor")
	f := loggedIn(t, a)

	staleHide := f.c.Update(f.c.Transact(transferTx())())
	f.c.Transact(transferTx())
	require.Equal(t, store.OverlayPending, f.state.SigningOverlay.Status)

	ch := runAsync(staleHide)
	require.NoError(t, f.clock.BlockUntilContext(context.Background(), 1))
	f.clock.Advance(SuccessHideDelay)
	f.c.Update(<-ch)

	assert.False(t, f.state.SigningOverlay.Show)
}

func TestPrepareDacTransact(t *testing.T) {
	a := ualtest.New("Anchor")
	f := loggedIn(t, a)

	steps := dac.Steps{
		Identity:  dac.Identity{DacName: "Kas DAC", TokenSymbol: "KAS"},
		Token:     dac.Token{Decimals: 4},
		Custodian: dac.Custodian{Lockup: 2, LockupSelect: dac.LockupDays},
	}
	cmd := f.c.PrepareDacTransact(dac.Payload{StepsData: steps, PayTokenSymbol: "EOS"})
	require.NotNil(t, cmd)
	assert.Equal(t, store.OverlayPending, f.state.SigningOverlay.Status)

	msg := cmd().(TransactResultMsg)
	assert.Equal(t, "eosio.token", msg.Action.Account)
	data := msg.Action.Data.(dac.Transfer)
	assert.Equal(t, "alice.dac", data.From)
	assert.Equal(t, "piecesnbitss", data.To)
	assert.Equal(t, "1.0000 EOS", data.Quantity)
	assert.Contains(t, data.Memo, `"lockup_release_time_delay":172800`)
	assert.Contains(t, data.Memo, `"max_supply":"1.0000 KAS"`)
	assert.Contains(t, data.Memo, `"issuance":"1.0000 KAS"`)
}

func TestPrepareDacTransact_LoggedOut(t *testing.T) {
	f := newFixture(t, cache.Session{}, ualtest.New("Anchor"))

	assert.Nil(t, f.c.PrepareDacTransact(dac.Payload{PayTokenSymbol: "EOS"}))
	assert.True(t, f.state.ShouldRenderLoginModal)
	assert.False(t, f.state.SigningOverlay.Show)
}

func TestParseUalError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "reason and code",
			err:  &ual.Error{Message: "sign failed", Cause: &ual.ErrorCause{Reason: "bad sig", Code: "7"}},
			want: "sign failed. bad sig 7",
		},
		{
			name: "message and errorCode",
			err:  &ual.Error{Message: "sign failed", Cause: &ual.ErrorCause{Message: "expired", ErrorCode: "E1"}},
			want: "sign failed. expired E1",
		},
		{
			name: "empty cause",
			err:  &ual.Error{Message: "sign failed", Cause: &ual.ErrorCause{}},
			want: "sign failed. Report this error to the eosdac devs to enhance the UX ",
		},
		{
			name: "no cause",
			err:  errors.New("boom"),
			want: "boom. unknown cause ",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseUalError(tt.err))
		})
	}
}

func TestHideSigningOverlay_DefaultDelay(t *testing.T) {
	f := newFixture(t, cache.Session{})
	f.state.SetSigningOverlay(store.SigningOverlay{Show: true, Status: store.OverlayError, Msg: "x"})

	ch := runAsync(f.c.HideSigningOverlay(0))
	require.NoError(t, f.clock.BlockUntilContext(context.Background(), 1))
	f.clock.Advance(DefaultHideDelay - time.Millisecond)
	select {
	case <-ch:
		t.Fatal("hidden before default delay")
	case <-time.After(20 * time.Millisecond):
	}
	f.clock.Advance(time.Millisecond)
	f.c.Update(<-ch)
	assert.Equal(t, store.SigningOverlay{}, f.state.SigningOverlay)
}

func TestLoadAuthenticators(t *testing.T) {
	ok := ualtest.New("Anchor")
	broken := ualtest.New("Broken")
	broken.FailInit = true
	f := newFixture(t, cache.Session{}, ok, broken)

	msg := f.c.LoadAuthenticators()().(AuthenticatorsLoadedMsg)
	require.NoError(t, msg.Err)
	assert.Equal(t, ual.Availability{"Anchor": true, "Broken": false}, msg.Availability)
}
