package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/edubrasil/internal/media"
	"github.com/desertthunder/edubrasil/internal/models"
	"github.com/desertthunder/edubrasil/internal/player"
	"github.com/desertthunder/edubrasil/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlayerView ViewState = iota
	FileView
	GateView
)

// seekStep is how far the arrow keys move playback, in seconds.
const seekStep = 5.0

// Player is the widget surface the TUI drives.
type Player interface {
	Dispatch(ctx context.Context, action player.Action) error
	Snapshot() player.State
}

// Opener turns a path typed by the user into a file with its declared media type.
type Opener func(path string) (models.File, io.Closer, error)

// Options contains the dependencies and branding of a [Model].
type Options struct {
	Player   Player
	Notices  *Notices
	Open     Opener
	Brand    string
	Subtitle string
	// Refresh is how often the view re-reads the player state. Defaults to 250ms.
	Refresh time.Duration
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	player   Player
	notices  *Notices
	open     Opener
	brand    string
	subtitle string
	refresh  time.Duration
	state    player.State
	status   string
	isError  bool
	width    int
	input    textinput.Model
	bar      progress.Model
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.Open == nil {
		opts.Open = media.OpenFile
	}
	if opts.Notices == nil {
		opts.Notices = NewNotices(8)
	}
	if opts.Refresh <= 0 {
		opts.Refresh = 250 * time.Millisecond
	}

	input := textinput.New()
	input.CharLimit = 512
	input.Cursor.SetMode(cursor.CursorStatic)

	return &Model{
		ctx:      ctx,
		view:     PlayerView,
		player:   opts.Player,
		notices:  opts.Notices,
		open:     opts.Open,
		brand:    opts.Brand,
		subtitle: opts.Subtitle,
		refresh:  opts.Refresh,
		state:    opts.Player.Snapshot(),
		input:    input,
		bar:      progress.New(progress.WithGradient(brandViolet, brandYellow), progress.WithoutPercentage(), progress.WithWidth(40)),
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init mounts the widget and starts the refresh clock and notification listener.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.dispatch(player.Mount{}), m.tick(), m.notices.wait())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = max(10, min(msg.Width-4, 60))
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case FileView, GateView:
			return m.handlePromptKeys(msg)
		default:
			return m.handlePlayerKeys(msg)
		}

	case Msg:
		switch msg.kind {
		case MsgTick:
			m.state = m.player.Snapshot()
			return m, m.tick()
		case MsgNotice:
			if err, ok := msg.data.(error); ok && err != nil {
				m.setError(err)
			}
			return m, m.notices.wait()
		case MsgDispatched:
			return m.handleDispatched(msg.data.(dispatched))
		}
	}
	return m, nil
}

// View renders the player and, when open, the active prompt.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderControls())

	if m.state.Access.PanelVisible {
		b.WriteString("\n\n")
		b.WriteString(m.renderAdmin())
	}

	switch m.view {
	case FileView, GateView:
		b.WriteString("\n\n")
		b.WriteString(m.input.View())
	default:
		if m.state.ShowGate() {
			b.WriteString("\n\n")
			b.WriteString(styles.err.Render("Passphrase incorrect. Press a to try again."))
		}
	}

	if m.status != "" {
		b.WriteString("\n\n")
		if m.isError {
			b.WriteString(styles.err.Render(m.status))
		} else {
			b.WriteString(styles.time.Render(m.status))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m *Model) handlePlayerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggle):
		return m, m.dispatch(player.TogglePlay{})
	case key.Matches(msg, m.keys.back):
		return m, m.dispatch(player.Seek{Position: m.state.Position - seekStep})
	case key.Matches(msg, m.keys.forward):
		return m, m.dispatch(player.Seek{Position: m.state.Position + seekStep})
	case key.Matches(msg, m.keys.jump):
		tenths := float64(msg.Runes[0] - '0')
		return m, m.dispatch(player.Seek{Position: m.state.Duration * tenths / 10})
	case key.Matches(msg, m.keys.open):
		if !m.state.CanUpload() {
			m.setError(player.ErrLocked)
			return m, nil
		}
		m.openPrompt(FileView)
		return m, nil
	case key.Matches(msg, m.keys.admin):
		m.openPrompt(GateView)
		return m, nil
	case key.Matches(msg, m.keys.reset):
		return m, m.dispatch(player.Reset{})
	case key.Matches(msg, m.keys.lock):
		return m, m.dispatch(player.Lock{})
	}
	return m, nil
}

func (m *Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.keys.cancel):
		m.closePrompt()
		return m, nil
	case key.Matches(msg, m.keys.submit):
		value := m.input.Value()
		if m.view == FileView {
			if strings.TrimSpace(value) == "" {
				return m, nil
			}
			return m, m.selectFile(strings.TrimSpace(value))
		}
		return m, m.submitPassphrase(value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleDispatched(d dispatched) (tea.Model, tea.Cmd) {
	m.state = m.player.Snapshot()

	if d.err != nil {
		if !player.IsNotice(d.err) {
			m.setError(d.err)
		}
		return m, nil
	}

	switch a := d.action.(type) {
	case player.Authenticate:
		m.closePrompt()
		m.setStatus("Admin panel unlocked")
	case player.SelectFile:
		m.closePrompt()
		m.setStatus("Now playing " + a.File.Name)
	case player.Reset:
		m.setStatus("Default track restored")
	case player.Lock:
		m.setStatus("Track selection locked")
	}
	return m, nil
}

func (m *Model) openPrompt(view ViewState) {
	m.view = view
	m.input.Reset()
	switch view {
	case GateView:
		m.input.Prompt = "Passphrase: "
		m.input.Placeholder = ""
		m.input.EchoMode = textinput.EchoPassword
	default:
		m.input.Prompt = "Track: "
		m.input.Placeholder = "path to an audio file"
		m.input.EchoMode = textinput.EchoNormal
	}
	m.input.Focus()
}

func (m *Model) closePrompt() {
	m.view = PlayerView
	m.input.Reset()
	m.input.Blur()
}

func (m *Model) setStatus(s string) {
	m.status, m.isError = s, false
}

func (m *Model) setError(err error) {
	m.status, m.isError = err.Error(), true
}

// dispatch applies action off the update loop and reports the result as [MsgDispatched].
func (m *Model) dispatch(action player.Action) tea.Cmd {
	return func() tea.Msg {
		return dispatchedMsg(action, m.player.Dispatch(m.ctx, action))
	}
}

func (m *Model) submitPassphrase(value string) tea.Cmd {
	return m.dispatch(player.Authenticate{Value: value})
}

func (m *Model) selectFile(path string) tea.Cmd {
	return func() tea.Msg {
		file, closer, err := m.open(path)
		if err != nil {
			return dispatchedMsg(player.SelectFile{File: models.File{Name: path}}, err)
		}
		defer closer.Close()

		action := player.SelectFile{File: file}
		return dispatchedMsg(action, m.player.Dispatch(m.ctx, action))
	}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) renderHeader() string {
	lines := []string{styles.brand.Render(m.brand)}
	if m.subtitle != "" {
		lines = append(lines, styles.subtitle.Render(m.subtitle))
	}

	track := m.state.Info.Label()
	switch {
	case m.state.Source.Empty():
		track = "No track"
	case track == "":
		track = m.state.Source.Kind.String() + " track"
	}
	lines = append(lines, styles.track.Render(track))
	return strings.Join(lines, "\n")
}

func (m *Model) renderControls() string {
	var percent float64
	if m.state.Duration > 0 {
		percent = max(0, min(m.state.Position/m.state.Duration, 1))
	}

	timeline := fmt.Sprintf("%s  (-%s)", m.state.TimeLabel(), shared.FormatTime(m.state.Remaining()))
	return fmt.Sprintf("%s  %s\n%s",
		styles.button.Render(m.state.ButtonLabel()),
		styles.time.Render(timeline),
		m.bar.ViewAs(percent),
	)
}

func (m *Model) renderAdmin() string {
	title := styles.admin.Render("Admin")
	keys := []key.Binding{m.keys.reset}
	if !m.state.Locked {
		keys = append(keys, m.keys.lock)
	}
	return title + " " + m.help.ShortHelpView(keys)
}

func (m *Model) renderHelp() string {
	if m.view != PlayerView {
		return m.help.ShortHelpView([]key.Binding{m.keys.submit, m.keys.cancel})
	}

	keys := []key.Binding{m.keys.toggle, m.keys.back, m.keys.forward}
	if m.state.CanUpload() {
		keys = append(keys, m.keys.open)
	}
	if !m.state.Access.PanelVisible {
		keys = append(keys, m.keys.admin)
	}
	keys = append(keys, m.keys.quit)
	return m.help.ShortHelpView(keys)
}
