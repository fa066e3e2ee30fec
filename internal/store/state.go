// Package store holds the application state shared by the coordinator and
// the views. It has a single writer: everything here is mutated from the
// Bubble Tea Update loop only, through the named setters.
package store

import (
	"github.com/fragmede/dacforge/internal/cache"
	"github.com/fragmede/dacforge/internal/ual"
)

// OverlayStatus is the progress shown by the signing overlay.
type OverlayStatus int

const (
	OverlayPending OverlayStatus = iota
	OverlaySuccess
	OverlayError
)

// SigningOverlay is the transient projection of a transaction in flight.
type SigningOverlay struct {
	Show   bool
	Status OverlayStatus
	Msg    string
}

type State struct {
	AccountName            string
	ActiveAuthenticator    ual.Authenticator
	Session                cache.Session
	UAL                    *ual.Registry
	SigningOverlay         SigningOverlay
	ShouldRenderLoginModal bool
}

func New(registry *ual.Registry, session cache.Session) *State {
	if registry == nil {
		registry = ual.NewRegistry()
	}
	return &State{UAL: registry, Session: session}
}

func (s *State) SetShouldRenderLoginModal(v bool) { s.ShouldRenderLoginModal = v }

func (s *State) SetActiveAuthenticator(a ual.Authenticator) { s.ActiveAuthenticator = a }

func (s *State) SetAccountName(name string) { s.AccountName = name }

func (s *State) SetSession(session cache.Session) { s.Session = session }

func (s *State) SetSigningOverlay(o SigningOverlay) { s.SigningOverlay = o }

// LoggedIn reports whether an authenticator is active for an account.
func (s *State) LoggedIn() bool {
	return s.ActiveAuthenticator != nil && s.AccountName != ""
}
