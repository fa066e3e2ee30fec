// Package ualtest provides an in-memory authenticator for tests.
package ualtest

import (
	"context"
	"sync"

	"github.com/fragmede/dacforge/internal/ual"
)

// Authenticator is a scriptable ual.Authenticator. Configure the exported
// fields before handing it to the code under test.
type Authenticator struct {
	Name string

	// LoadingPolls is how many IsLoading calls report true after Init.
	LoadingPolls int
	FailInit     bool
	LoginErr     error
	LogoutErr    error
	SignErr      error
	Result       *ual.SignResult

	mu          sync.Mutex
	loading     bool
	remaining   int
	initErr     bool
	users       []ual.User
	initCalls   int
	loginCalls  int
	logoutCalls int
	polls       int
	signed      []ual.Transaction
	signOpts    []ual.SignOptions
}

func New(name string) *Authenticator {
	return &Authenticator{Name: name, Result: &ual.SignResult{TransactionID: "deadbeef"}}
}

func (a *Authenticator) Style() ual.Style { return ual.Style{Text: a.Name} }

func (a *Authenticator) Init(context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.initCalls++
	a.remaining = a.LoadingPolls
	a.initErr = a.FailInit
}

func (a *Authenticator) IsLoading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.polls++
	if a.remaining > 0 {
		a.remaining--
		return true
	}
	return a.loading
}

// SetLoading holds the loading flag until it is cleared again, independent of
// LoadingPolls.
func (a *Authenticator) SetLoading(v bool) {
	a.mu.Lock()
	a.loading = v
	if !v {
		a.remaining = 0
	}
	a.mu.Unlock()
}

func (a *Authenticator) InitError() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.initErr
}

func (a *Authenticator) Login(_ context.Context, accountName string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loginCalls++
	if a.LoginErr != nil {
		return a.LoginErr
	}
	a.users = []ual.User{&User{auth: a, account: accountName}}
	return nil
}

func (a *Authenticator) Logout(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logoutCalls++
	if a.LogoutErr != nil {
		return a.LogoutErr
	}
	a.users = nil
	return nil
}

func (a *Authenticator) Users() []ual.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]ual.User, len(a.users))
	copy(out, a.users)
	return out
}

// Calls returns how often Init, Login and Logout were invoked.
func (a *Authenticator) Calls() (init, login, logout int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.initCalls, a.loginCalls, a.logoutCalls
}

// Polls returns how many times IsLoading was called.
func (a *Authenticator) Polls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.polls
}

// Signed returns every transaction passed to SignTransaction.
func (a *Authenticator) Signed() ([]ual.Transaction, []ual.SignOptions) {
	a.mu.Lock()
	defer a.mu.Unlock()
	txs := make([]ual.Transaction, len(a.signed))
	copy(txs, a.signed)
	opts := make([]ual.SignOptions, len(a.signOpts))
	copy(opts, a.signOpts)
	return txs, opts
}

// User is the account a fake Authenticator logs in.
type User struct {
	auth    *Authenticator
	account string
}

func (u *User) AccountName() string { return u.account }

func (u *User) SignTransaction(_ context.Context, tx ual.Transaction, opts ual.SignOptions) (*ual.SignResult, error) {
	a := u.auth
	a.mu.Lock()
	defer a.mu.Unlock()
	a.signed = append(a.signed, tx)
	a.signOpts = append(a.signOpts, opts)
	if a.SignErr != nil {
		return nil, a.SignErr
	}
	return a.Result, nil
}
