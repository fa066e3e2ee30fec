// Package coordinator sequences wallet logins and transaction signing and
// reflects their progress in the shared store.State.
//
// Every operation runs in two halves. The synchronous half executes inside
// the Bubble Tea Update loop and may mutate the state directly. Anything
// that blocks (authenticator init, login, logout, signing, timers) is
// returned as a tea.Cmd whose result message is fed back through Update,
// which applies the remaining mutations. The state therefore has a single
// writer. No operation surfaces an error to its caller: failures are logged
// and show up only as state (session, signing overlay) or in result
// messages.
package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jonboulle/clockwork"

	"github.com/fragmede/dacforge/internal/cache"
	"github.com/fragmede/dacforge/internal/config"
	"github.com/fragmede/dacforge/internal/dac"
	"github.com/fragmede/dacforge/internal/store"
	"github.com/fragmede/dacforge/internal/ual"
)

const (
	loadPollInterval = 250 * time.Millisecond

	DefaultHideDelay = 10 * time.Second
	SuccessHideDelay = 1000 * time.Millisecond
	ErrorHideDelay   = 2000 * time.Millisecond

	defaultPermission = "active"

	msgWaitingForSignature = "Waiting for Signature"
	msgTransactionOK       = "Transaction Successful"
	unknownCause           = "unknown cause"
	unhelpfulCause         = "Report this error to the eosdac devs to enhance the UX"
)

// ErrAuthenticatorNotFound is logged when a persisted session names an
// authenticator that is no longer configured.
var ErrAuthenticatorNotFound = errors.New("authenticator not found")

// Persister stores the session and the transaction log. *cache.DB
// implements it.
type Persister interface {
	SaveSession(cache.Session) error
	ClearSession() error
	RecordTransaction(cache.TxRecord) (cache.TxRecord, error)
}

type Coordinator struct {
	ctx       context.Context
	state     *store.State
	clock     clockwork.Clock
	contracts config.Contracts
	db        Persister
}

// New creates a coordinator over state. ctx bounds every blocking call the
// coordinator starts; db may be nil to disable persistence.
func New(ctx context.Context, state *store.State, clock clockwork.Clock, contracts config.Contracts, db Persister) *Coordinator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Coordinator{
		ctx:       ctx,
		state:     state,
		clock:     clock,
		contracts: contracts,
		db:        db,
	}
}

// State exposes the state for rendering.
func (c *Coordinator) State() *store.State {
	return c.state
}

// RenderLoginModal asks the UI to show the login modal.
func (c *Coordinator) RenderLoginModal() {
	c.state.SetShouldRenderLoginModal(true)
}

// Logout logs the active authenticator out. Without one it only logs.
func (c *Coordinator) Logout() tea.Cmd {
	a := c.state.ActiveAuthenticator
	if a == nil {
		slog.Info("No active authenticator found, you must be logged in before logging out")
		return nil
	}
	slog.Info("Logging out", "authenticator", a.Style().Text)

	ctx := c.ctx
	return func() tea.Msg {
		return LogoutResultMsg{Authenticator: a, Err: a.Logout(ctx)}
	}
}

// WaitForAuthenticatorToLoad returns once a is no longer loading, checking
// every 250ms. It has no deadline of its own; only ctx ends the wait early.
func (c *Coordinator) WaitForAuthenticatorToLoad(ctx context.Context, a ual.Authenticator) error {
	if !a.IsLoading() {
		return nil
	}
	ticker := c.clock.NewTicker(loadPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
			if !a.IsLoading() {
				return nil
			}
		}
	}
}

// LoadAuthenticators initializes every configured authenticator, for the
// login modal to show which ones are usable.
func (c *Coordinator) LoadAuthenticators() tea.Cmd {
	registry := c.state.UAL
	ctx := c.ctx
	return func() tea.Msg {
		avail, err := registry.InitAll(ctx, c.WaitForAuthenticatorToLoad)
		return AuthenticatorsLoadedMsg{Availability: avail, Err: err}
	}
}

// AttemptAutoLogin restores the persisted session, if any, by logging in
// again through the authenticator it names.
func (c *Coordinator) AttemptAutoLogin() tea.Cmd {
	s := c.state.Session
	if !s.Complete() {
		return nil
	}

	a, ok := c.state.UAL.Find(s.AuthenticatorName)
	if !ok {
		slog.Warn("Auto login skipped", "authenticator", s.AuthenticatorName, "error", ErrAuthenticatorNotFound)
		c.commitSession(cache.Session{})
		return nil
	}
	return c.loginCmd(a, s.AccountName, true)
}

// Login logs accountName in through a, as chosen in the login modal.
func (c *Coordinator) Login(a ual.Authenticator, accountName string) tea.Cmd {
	if a == nil || accountName == "" {
		return nil
	}
	return c.loginCmd(a, accountName, false)
}

func (c *Coordinator) loginCmd(a ual.Authenticator, accountName string, auto bool) tea.Cmd {
	ctx := c.ctx
	return func() tea.Msg {
		res := LoginResultMsg{Authenticator: a, AccountName: accountName, Auto: auto}

		a.Init(ctx)
		if err := c.WaitForAuthenticatorToLoad(ctx, a); err != nil {
			res.Err = err
			return res
		}
		if a.InitError() {
			res.Err = fmt.Errorf("%s: %w", a.Style().Text, ual.ErrAuthenticatorUnavailable)
			return res
		}
		res.Err = a.Login(ctx, accountName)
		return res
	}
}

// PrepareDacTransact shapes the wizard payload into the DAC creation
// transfer and hands it to Transact.
func (c *Coordinator) PrepareDacTransact(p dac.Payload) tea.Cmd {
	if c.contracts.DacToken() == "" {
		slog.Warn("DAC token contract not configured", "key", config.DacTokenContractKey)
	}
	if c.contracts.TokenContract(p.PayTokenSymbol) == "" {
		slog.Warn("Pay token contract not configured", "key", config.TokenContractKey(p.PayTokenSymbol))
	}

	tx, memo, err := dac.Prepare(c.state.AccountName, p, c.contracts)
	if err != nil {
		slog.Error("Preparing DAC transaction failed", "error", err)
		return nil
	}
	slog.Debug("Prepared DAC transaction", "dac", memo.ID, "owner", memo.Owner)
	return c.Transact(tx)
}

// Transact signs and broadcasts the first action of tx with the logged-in
// user. Logged out, it opens the login modal instead and leaves the overlay
// alone.
func (c *Coordinator) Transact(tx ual.Transaction) tea.Cmd {
	if !c.state.LoggedIn() {
		c.RenderLoginModal()
		return nil
	}
	if len(tx.Actions) == 0 {
		slog.Error("Transact called without actions")
		return nil
	}
	auth := c.state.ActiveAuthenticator
	users := auth.Users()
	if len(users) == 0 {
		slog.Warn("Active authenticator has no user", "authenticator", auth.Style().Text, "error", ual.ErrNotLoggedIn)
		c.RenderLoginModal()
		return nil
	}

	c.state.SetSigningOverlay(store.SigningOverlay{Show: true, Status: store.OverlayPending, Msg: msgWaitingForSignature})

	user := users[0]
	action := tx.Actions[0]
	if len(action.Authorization) == 0 {
		action.Authorization = []ual.Authorization{{Actor: user.AccountName(), Permission: defaultPermission}}
	}

	ctx := c.ctx
	authName := auth.Style().Text
	return func() tea.Msg {
		res, err := user.SignTransaction(ctx, ual.Transaction{Actions: []ual.Action{action}}, ual.SignOptions{Broadcast: true})
		return TransactResultMsg{
			Authenticator: authName,
			AccountName:   user.AccountName(),
			Action:        action,
			Result:        res,
			Err:           err,
		}
	}
}

// ParseUalError renders err for the signing overlay as
// "<error>. <cause> <code>".
func ParseUalError(err error) string {
	cause := unknownCause
	code := ""
	if c := ual.CauseOf(err); c != nil {
		cause = firstNonEmpty(c.Reason, c.Message, unhelpfulCause)
		code = firstNonEmpty(string(c.Code), string(c.ErrorCode))
	}
	return fmt.Sprintf("%v. %s %s", err, cause, code)
}

// HideSigningOverlay hides the overlay after d, or after DefaultHideDelay
// when d is not positive. The timer cannot be cancelled.
func (c *Coordinator) HideSigningOverlay(d time.Duration) tea.Cmd {
	if d <= 0 {
		d = DefaultHideDelay
	}
	clock := c.clock
	return func() tea.Msg {
		<-clock.After(d)
		return HideSigningOverlayMsg{}
	}
}

// Update applies the result messages of the coordinator's commands. Other
// messages are ignored.
func (c *Coordinator) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case LoginResultMsg:
		c.applyLogin(msg)

	case LogoutResultMsg:
		if msg.Err != nil {
			slog.Error("Logout failed", "authenticator", msg.Authenticator.Style().Text, "error", msg.Err)
			return nil
		}
		slog.Info("Logged out", "authenticator", msg.Authenticator.Style().Text)
		c.state.SetActiveAuthenticator(nil)
		c.state.SetAccountName("")
		c.commitSession(cache.Session{})

	case TransactResultMsg:
		return c.applyTransact(msg)

	case HideSigningOverlayMsg:
		c.state.SetSigningOverlay(store.SigningOverlay{Show: false, Status: store.OverlayPending})
	}
	return nil
}

func (c *Coordinator) applyLogin(msg LoginResultMsg) {
	name := msg.Authenticator.Style().Text
	if msg.Err != nil {
		switch {
		case errors.Is(msg.Err, ual.ErrAuthenticatorUnavailable):
			slog.Warn("Login failed because the authenticator is not available anymore",
				"authenticator", name, "auto", msg.Auto)
		default:
			slog.Error("Login failed", "authenticator", name, "account", msg.AccountName,
				"auto", msg.Auto, "error", msg.Err, "cause", ual.CauseOf(msg.Err).String())
		}
		if msg.Auto {
			c.commitSession(cache.Session{})
		}
		return
	}

	c.commitSession(cache.Session{
		AccountName:       msg.AccountName,
		AuthenticatorName: name,
		Timestamp:         c.clock.Now(),
	})
	c.state.SetAccountName(msg.AccountName)
	c.state.SetActiveAuthenticator(msg.Authenticator)
	c.state.SetShouldRenderLoginModal(false)
	slog.Info("Logged in", "authenticator", name, "account", msg.AccountName, "auto", msg.Auto)
}

func (c *Coordinator) applyTransact(msg TransactResultMsg) tea.Cmd {
	rec := cache.TxRecord{
		Account:       msg.AccountName,
		Authenticator: msg.Authenticator,
		Contract:      msg.Action.Account,
		Action:        msg.Action.Name,
		Payload:       encodeAction(msg.Action),
		CreatedAt:     c.clock.Now(),
	}

	if msg.Err != nil {
		slog.Error("Transaction failed", "account", msg.AccountName, "error", msg.Err,
			"cause", ual.CauseOf(msg.Err).String())
		text := ParseUalError(msg.Err)
		c.state.SetSigningOverlay(store.SigningOverlay{Show: true, Status: store.OverlayError, Msg: text})
		rec.Status = cache.TxFailed
		rec.Error = text
		c.record(rec)
		return c.HideSigningOverlay(ErrorHideDelay)
	}

	txID := ""
	if msg.Result != nil {
		txID = msg.Result.TransactionID
	}
	slog.Info("Transaction signed", "account", msg.AccountName, "tx", txID)
	c.state.SetSigningOverlay(store.SigningOverlay{Show: true, Status: store.OverlaySuccess, Msg: msgTransactionOK})
	rec.Status = cache.TxSucceeded
	rec.TxID = txID
	c.record(rec)
	return c.HideSigningOverlay(SuccessHideDelay)
}

func (c *Coordinator) commitSession(s cache.Session) {
	c.state.SetSession(s)
	if c.db == nil {
		return
	}
	var err error
	if s.Complete() {
		err = c.db.SaveSession(s)
	} else {
		err = c.db.ClearSession()
	}
	if err != nil {
		slog.Warn("Persisting session failed", "error", err)
	}
}

func (c *Coordinator) record(rec cache.TxRecord) {
	if c.db == nil {
		return
	}
	if _, err := c.db.RecordTransaction(rec); err != nil {
		slog.Warn("Recording transaction failed", "error", err)
	}
}

func encodeAction(a ual.Action) string {
	data, err := json.Marshal(a)
	if err != nil {
		return ""
	}
	return string(data)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
