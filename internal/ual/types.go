// Package ual is the universal authenticator layer: the contract every wallet
// provider implements, the transaction shapes handed to them, and the error
// type they report failures with.
package ual

import (
	"context"
	"encoding/json"
)

// Style is how an authenticator presents itself. Text doubles as its
// identity when a persisted session is matched back to a provider.
type Style struct {
	Text       string
	Icon       string
	TextColor  string
	Background string
}

// Authenticator is a pluggable wallet/login provider.
//
// Init starts provider initialization and may return before it finishes;
// IsLoading reports whether it is still in progress and InitError whether it
// failed. Users is non-empty only after a successful Login.
type Authenticator interface {
	Style() Style
	IsLoading() bool
	Init(ctx context.Context)
	InitError() bool
	Login(ctx context.Context, accountName string) error
	Logout(ctx context.Context) error
	Users() []User
}

// User is a logged-in account able to sign.
type User interface {
	AccountName() string
	SignTransaction(ctx context.Context, tx Transaction, opts SignOptions) (*SignResult, error)
}

type Authorization struct {
	Actor      string `json:"actor"`
	Permission string `json:"permission"`
}

type Action struct {
	Account       string          `json:"account"`
	Name          string          `json:"name"`
	Authorization []Authorization `json:"authorization,omitempty"`
	Data          any             `json:"data"`
}

type Transaction struct {
	Actions []Action `json:"actions"`
}

type SignOptions struct {
	Broadcast bool `json:"broadcast"`
}

// SignResult is what a provider returns after signing (and broadcasting).
type SignResult struct {
	TransactionID string          `json:"transaction_id"`
	Processed     json.RawMessage `json:"processed,omitempty"`
}
