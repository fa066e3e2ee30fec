package login

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/dacforge/internal/coordinator"
	"github.com/fragmede/dacforge/internal/ual"
	"github.com/fragmede/dacforge/internal/ui/messages"
)

var enter = tea.KeyMsg{Type: tea.KeyEnter}

// loginRequest runs cmd and returns the LoginRequestMsg it carries, if any.
func loginRequest(cmd tea.Cmd) (messages.LoginRequestMsg, bool) {
	if cmd == nil {
		return messages.LoginRequestMsg{}, false
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if req, ok := loginRequest(c); ok {
				return req, true
			}
		}
		return messages.LoginRequestMsg{}, false
	}
	req, ok := msg.(messages.LoginRequestMsg)
	return req, ok
}

func TestSubmit(t *testing.T) {
	tests := []struct {
		name    string
		names   []string
		avail   ual.Availability
		loadErr error
		account string
		wantErr string
		want    messages.LoginRequestMsg
	}{
		{
			name:    "no authenticators",
			account: "alice.dac",
			wantErr: "No authenticator configured",
		},
		{
			name:    "authenticator unavailable",
			names:   []string{"Anchor"},
			avail:   ual.Availability{"Anchor": false},
			account: "alice.dac",
			wantErr: "Anchor is not available",
		},
		{
			name:    "still loading",
			names:   []string{"Anchor"},
			account: "alice.dac",
			wantErr: "Anchor is not available",
		},
		{
			name:    "empty account",
			names:   []string{"Anchor"},
			avail:   ual.Availability{"Anchor": true},
			account: "   ",
			wantErr: "Account name required",
		},
		{
			name:    "available",
			names:   []string{"Anchor"},
			avail:   ual.Availability{"Anchor": true},
			account: " alice.dac ",
			want:    messages.LoginRequestMsg{Authenticator: "Anchor", AccountName: "alice.dac"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.names, tt.account)
			if tt.avail != nil {
				m, _ = m.Update(coordinator.AuthenticatorsLoadedMsg{Availability: tt.avail})
			}

			m, _ = m.Update(enter)
			require.Equal(t, focusAccount, m.focused)
			m, cmd := m.Update(enter)

			req, ok := loginRequest(cmd)
			if tt.wantErr != "" {
				assert.False(t, ok)
				assert.Equal(t, tt.wantErr, m.err)
				assert.False(t, m.submitting)
				assert.Contains(t, m.View(), tt.wantErr)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, req)
			assert.True(t, m.submitting)
			assert.Empty(t, m.err)
		})
	}
}

func TestSubmit_IgnoredWhileLoggingIn(t *testing.T) {
	m := New([]string{"Anchor"}, "alice.dac")
	m, _ = m.Update(coordinator.AuthenticatorsLoadedMsg{Availability: ual.Availability{"Anchor": true}})
	m, _ = m.Update(enter)
	m, first := m.Update(enter)
	require.NotNil(t, first)

	m, second := m.Update(enter)
	assert.Nil(t, second)

	m, _ = m.Update(coordinator.LoginResultMsg{AccountName: "alice.dac", Err: errors.New("login rejected")})
	assert.False(t, m.submitting)
	assert.NotEmpty(t, m.err)

	_, retry := m.Update(enter)
	_, ok := loginRequest(retry)
	assert.True(t, ok)
}

func TestLoadFailureShowsError(t *testing.T) {
	m := New([]string{"Anchor"}, "")
	m, _ = m.Update(coordinator.AuthenticatorsLoadedMsg{Err: errors.New("all authenticators failed")})
	assert.False(t, m.loading)
	assert.Equal(t, "all authenticators failed", m.err)
}
