package coordinator

import "github.com/fragmede/dacforge/internal/ual"

// Results of the asynchronous halves of the coordinator operations. They are
// produced by tea.Cmds and applied to the state by Coordinator.Update.
type (
	// LoginResultMsg reports a login attempt. Auto marks the attempt made
	// from the persisted session at startup.
	LoginResultMsg struct {
		Authenticator ual.Authenticator
		AccountName   string
		Auto          bool
		Err           error
	}

	LogoutResultMsg struct {
		Authenticator ual.Authenticator
		Err           error
	}

	// TransactResultMsg carries the outcome of Transact. Result is nil when
	// signing failed.
	TransactResultMsg struct {
		Authenticator string
		AccountName   string
		Action        ual.Action
		Result        *ual.SignResult
		Err           error
	}

	HideSigningOverlayMsg struct{}

	AuthenticatorsLoadedMsg struct {
		Availability ual.Availability
		Err          error
	}
)
