package messages

import (
	"github.com/fragmede/dacforge/internal/cache"
	"github.com/fragmede/dacforge/internal/dac"
)

type (
	// GoBackMsg returns to the previous view.
	GoBackMsg struct{}

	// LoginRequestMsg is sent by the login modal once an authenticator and
	// an account are chosen.
	LoginRequestMsg struct {
		Authenticator string
		AccountName   string
	}

	// LoginCancelledMsg closes the login modal without logging in.
	LoginCancelledMsg struct{}

	SubmitDacMsg struct {
		Payload dac.Payload
	}

	HistoryLoadedMsg struct {
		Records []cache.TxRecord
		Err     error
	}

	// StatusMsg replaces the status bar message.
	StatusMsg struct {
		Text    string
		IsError bool
	}
)
