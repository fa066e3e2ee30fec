// Package remote implements ual.Authenticator against a wallet signing
// service reachable over HTTP. The service holds the keys; this side only
// asks it to log an account in and to sign and broadcast transactions.
//
// Endpoints:
//
//	GET  /v1/status   availability check used by Init
//	POST /v1/login    {"account_name"}            -> {"account_name"}
//	POST /v1/logout
//	POST /v1/sign     {"account_name","transaction","broadcast"} -> ual.SignResult
package remote

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fragmede/dacforge/internal/ual"
)

type statusResponse struct {
	Ready   bool   `json:"ready"`
	Chain   string `json:"chain_id"`
	Version string `json:"version"`
}

type loginRequest struct {
	AccountName string `json:"account_name"`
}

type loginResponse struct {
	AccountName string `json:"account_name"`
}

type signRequest struct {
	AccountName string          `json:"account_name"`
	Transaction ual.Transaction `json:"transaction"`
	Broadcast   bool            `json:"broadcast"`
}

// Authenticator is a named remote signing service.
type Authenticator struct {
	name   string
	client *client

	mu      sync.Mutex
	loading bool
	initErr error
	user    *User
}

// New creates an authenticator called name for the service at baseURL.
func New(name, baseURL string, timeout time.Duration) *Authenticator {
	return &Authenticator{
		name:   name,
		client: newClient(baseURL, timeout),
	}
}

func (a *Authenticator) Style() ual.Style {
	return ual.Style{Text: a.name, TextColor: "#FFFFFF", Background: "#BA5F34"}
}

// Init checks the service in the background. A check already in flight is
// left alone; otherwise a fresh check replaces the previous outcome.
func (a *Authenticator) Init(ctx context.Context) {
	a.mu.Lock()
	if a.loading {
		a.mu.Unlock()
		return
	}
	a.loading = true
	a.initErr = nil
	a.mu.Unlock()

	go func() {
		err := a.checkStatus(ctx)
		if err != nil {
			slog.Warn("Authenticator status check failed", "authenticator", a.name, "error", err)
		}
		a.mu.Lock()
		a.initErr = err
		a.loading = false
		a.mu.Unlock()
	}()
}

func (a *Authenticator) checkStatus(ctx context.Context) error {
	var st statusResponse
	if err := a.client.get(ctx, "/v1/status", &st); err != nil {
		return err
	}
	if !st.Ready {
		return fmt.Errorf("%s: %w", a.name, ual.ErrAuthenticatorUnavailable)
	}
	return nil
}

func (a *Authenticator) IsLoading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading
}

func (a *Authenticator) InitError() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.initErr != nil
}

// Login asks the service to open a session for accountName.
func (a *Authenticator) Login(ctx context.Context, accountName string) error {
	var resp loginResponse
	if err := a.client.post(ctx, "/v1/login", loginRequest{AccountName: accountName}, &resp); err != nil {
		return fmt.Errorf("login %s via %s: %w", accountName, a.name, err)
	}
	if resp.AccountName == "" {
		resp.AccountName = accountName
	}

	a.mu.Lock()
	a.user = &User{auth: a, account: resp.AccountName}
	a.mu.Unlock()
	return nil
}

func (a *Authenticator) Logout(ctx context.Context) error {
	if err := a.client.post(ctx, "/v1/logout", struct{}{}, nil); err != nil {
		return fmt.Errorf("logout via %s: %w", a.name, err)
	}
	a.mu.Lock()
	a.user = nil
	a.mu.Unlock()
	return nil
}

func (a *Authenticator) Users() []ual.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.user == nil {
		return nil
	}
	return []ual.User{a.user}
}

// User is an account logged in through a remote Authenticator.
type User struct {
	auth    *Authenticator
	account string
}

func (u *User) AccountName() string { return u.account }

func (u *User) SignTransaction(ctx context.Context, tx ual.Transaction, opts ual.SignOptions) (*ual.SignResult, error) {
	req := signRequest{
		AccountName: u.account,
		Transaction: tx,
		Broadcast:   opts.Broadcast,
	}
	var res ual.SignResult
	if err := u.auth.client.post(ctx, "/v1/sign", req, &res); err != nil {
		return nil, fmt.Errorf("sign via %s: %w", u.auth.name, err)
	}
	return &res, nil
}
