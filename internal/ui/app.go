package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/dacforge/internal/config"
	"github.com/fragmede/dacforge/internal/coordinator"
	"github.com/fragmede/dacforge/internal/render"
	"github.com/fragmede/dacforge/internal/store"
	"github.com/fragmede/dacforge/internal/ui/history"
	"github.com/fragmede/dacforge/internal/ui/login"
	"github.com/fragmede/dacforge/internal/ui/messages"
	"github.com/fragmede/dacforge/internal/ui/overlay"
	"github.com/fragmede/dacforge/internal/ui/statusbar"
	"github.com/fragmede/dacforge/internal/ui/wizard"
)

// ViewType identifies the active view.
type ViewType int

const (
	ViewHome ViewType = iota
	ViewWizard
	ViewHistory
	ViewLogin
)

// App is the root Bubble Tea model. It owns the coordinator and forwards
// the coordinator's result messages to it, so every state change happens
// inside Update.
type App struct {
	// View state
	activeView    ViewType
	previousViews []ViewType

	// Child models
	loginForm login.Model
	wizard    wizard.Model
	history   history.Model
	overlay   overlay.Model
	statusBar statusbar.Model
	help      help.Model

	// Shared state
	cfg   config.Config
	coord *coordinator.Coordinator

	// Dimensions
	width  int
	height int
}

// NewApp creates the root application model.
func NewApp(cfg config.Config, coord *coordinator.Coordinator, db history.Source) *App {
	return &App{
		activeView: ViewHome,
		wizard:     wizard.New("", cfg.PayTokenSymbol),
		history:    history.New(db, cfg.HistoryLimit),
		overlay:    overlay.New(),
		statusBar:  statusbar.New(),
		help:       help.New(),
		cfg:        cfg,
		coord:      coord,
	}
}

func (a *App) state() *store.State {
	return a.coord.State()
}

// Init starts the application.
func (a *App) Init() tea.Cmd {
	return a.coord.AttemptAutoLogin()
}

// Update handles all messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		contentHeight := msg.Height - 1 // Reserve 1 line for status bar.
		a.statusBar.SetSize(msg.Width)
		a.overlay.SetSize(msg.Width, contentHeight)
		a.wizard.SetSize(msg.Width, contentHeight)
		a.history.SetSize(msg.Width, contentHeight)
		a.loginForm.SetSize(msg.Width, contentHeight)
		a.help.Width = msg.Width
		return a, nil

	case tea.KeyMsg:
		if cmd, handled := a.handleKey(msg); handled {
			return a, cmd
		}

	case messages.LoginRequestMsg:
		auth, ok := a.state().UAL.Find(msg.Authenticator)
		if ok {
			cmds = append(cmds, a.coord.Login(auth, msg.AccountName))
		}

	case messages.LoginCancelledMsg:
		a.state().SetShouldRenderLoginModal(false)

	case messages.GoBackMsg:
		a.goBack()

	case messages.SubmitDacMsg:
		// A signature is already pending for an earlier submit.
		if a.state().SigningOverlay.Show {
			return a, nil
		}
		cmd := a.coord.PrepareDacTransact(msg.Payload)
		if cmd == nil {
			a.wizard.Resume()
		}
		cmds = append(cmds, cmd)

	case messages.HistoryLoadedMsg:
		var cmd tea.Cmd
		a.history, cmd = a.history.Update(msg)
		return a, cmd

	case coordinator.LoginResultMsg:
		cmds = append(cmds, a.coord.Update(msg))
		if msg.Err != nil && msg.Auto {
			a.statusBar.SetStatus("Session expired, please log in again", true)
		}

	case coordinator.LogoutResultMsg:
		cmds = append(cmds, a.coord.Update(msg))
		if msg.Err != nil {
			a.statusBar.SetStatus("Logout failed: "+msg.Err.Error(), true)
		} else {
			a.statusBar.SetStatus("Logged out", false)
		}

	case coordinator.TransactResultMsg:
		cmds = append(cmds, a.coord.Update(msg), a.history.Load())
		a.wizard.Resume()
		if msg.Err == nil && a.activeView == ViewWizard {
			a.wizard = wizard.New(a.state().AccountName, a.cfg.PayTokenSymbol)
			a.wizard.SetSize(a.width, a.height-1)
			a.goHome()
		}

	case coordinator.HideSigningOverlayMsg:
		cmds = append(cmds, a.coord.Update(msg))

	case messages.StatusMsg:
		a.statusBar.SetStatus(msg.Text, msg.IsError)
	}

	cmds = append(cmds, a.syncState())

	// Route to active view.
	var cmd tea.Cmd
	switch a.activeView {
	case ViewWizard:
		a.wizard, cmd = a.wizard.Update(msg)
		cmds = append(cmds, cmd)
	case ViewHistory:
		a.history, cmd = a.history.Update(msg)
		cmds = append(cmds, cmd)
	case ViewLogin:
		a.loginForm, cmd = a.loginForm.Update(msg)
		cmds = append(cmds, cmd)
	}

	a.overlay, cmd = a.overlay.Update(msg)
	cmds = append(cmds, cmd, a.overlay.SetVisible(a.state().SigningOverlay.Show))

	a.statusBar.SetActiveTab(a.tabLabel())
	return a, tea.Batch(cmds...)
}

// handleKey processes global keys. It reports false when the key should be
// passed on to the active view.
func (a *App) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return tea.Quit, true
	}
	if a.state().SigningOverlay.Show {
		return nil, true
	}

	// Text input views handle their own keys.
	if a.activeView == ViewLogin || a.activeView == ViewWizard {
		return nil, false
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		if a.activeView == ViewHome {
			return tea.Quit, true
		}
		return a.goBack(), true
	case key.Matches(msg, Keys.Back):
		return a.goBack(), true
	case key.Matches(msg, Keys.Home):
		a.goHome()
		return nil, true
	case key.Matches(msg, Keys.Login):
		if a.state().LoggedIn() {
			a.statusBar.SetStatus("Already logged in as "+a.state().AccountName, false)
			return nil, true
		}
		a.coord.RenderLoginModal()
		return a.syncState(), true
	case key.Matches(msg, Keys.Logout):
		return a.coord.Logout(), true
	case key.Matches(msg, Keys.Create):
		a.pushView(ViewWizard)
		a.wizard.SetOwner(a.state().AccountName)
		return nil, true
	case key.Matches(msg, Keys.History):
		if a.activeView != ViewHistory {
			a.pushView(ViewHistory)
		}
		return a.history.Load(), true
	}
	return nil, false
}

// syncState opens or closes the login modal to match the store and
// refreshes everything that shows the logged-in account.
func (a *App) syncState() tea.Cmd {
	st := a.state()

	account, authName := st.AccountName, ""
	if st.ActiveAuthenticator != nil {
		authName = st.ActiveAuthenticator.Style().Text
	}
	a.statusBar.SetAccount(account, authName)
	a.wizard.SetOwner(account)

	switch {
	case st.ShouldRenderLoginModal && a.activeView != ViewLogin:
		names := make([]string, 0)
		for _, auth := range st.UAL.All() {
			names = append(names, auth.Style().Text)
		}
		a.loginForm = login.New(names, st.Session.AccountName)
		a.loginForm.SetSize(a.width, a.height-1)
		a.pushView(ViewLogin)
		return tea.Batch(a.loginForm.Init(), a.coord.LoadAuthenticators())

	case !st.ShouldRenderLoginModal && a.activeView == ViewLogin:
		return a.goBack()
	}
	return nil
}

// View renders the application.
func (a *App) View() string {
	var content string
	st := a.state()

	switch {
	case st.SigningOverlay.Show:
		content = a.overlay.View(st.SigningOverlay)
	case a.activeView == ViewWizard:
		content = a.wizard.View()
	case a.activeView == ViewHistory:
		content = a.history.View()
	case a.activeView == ViewLogin:
		content = a.loginForm.View()
	default:
		content = a.homeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, content, a.statusBar.View())
}

func (a *App) homeView() string {
	st := a.state()
	var sb strings.Builder

	sb.WriteString(TitleStyle.Render("dacforge"))
	sb.WriteString("\n")
	if st.LoggedIn() {
		sb.WriteString(LabelStyle.Render("Account: "))
		sb.WriteString(AccountStyle.Render(st.AccountName))
		sb.WriteString(DimStyle.Render(" via " + st.ActiveAuthenticator.Style().Text))
		sb.WriteString("\n")
		sb.WriteString(DimStyle.Render("Session started " + render.TimeAgo(st.Session.Timestamp)))
	} else {
		sb.WriteString(InfoStyle.Render("Not logged in. Press "))
		sb.WriteString(KeyStyle.Render("L"))
		sb.WriteString(InfoStyle.Render(" to choose an authenticator."))
	}
	sb.WriteString("\n\n")
	sb.WriteString(a.help.View(Keys))

	height := a.height - 1
	if height < 0 {
		height = 0
	}
	return lipgloss.Place(a.width, height, lipgloss.Center, lipgloss.Center, sb.String())
}

func (a *App) tabLabel() string {
	switch a.activeView {
	case ViewWizard:
		return statusbar.Tabs[1]
	case ViewHistory:
		return statusbar.Tabs[2]
	case ViewLogin:
		if n := len(a.previousViews); n > 0 && a.previousViews[n-1] < ViewLogin {
			return statusbar.Tabs[a.previousViews[n-1]]
		}
	}
	return statusbar.Tabs[0]
}

func (a *App) pushView(v ViewType) {
	a.previousViews = append(a.previousViews, a.activeView)
	a.activeView = v
}

func (a *App) goBack() tea.Cmd {
	if len(a.previousViews) > 0 {
		a.activeView = a.previousViews[len(a.previousViews)-1]
		a.previousViews = a.previousViews[:len(a.previousViews)-1]
	} else {
		a.activeView = ViewHome
	}
	return nil
}

func (a *App) goHome() {
	a.activeView = ViewHome
	a.previousViews = nil
}
