// Package app contains the root application model.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/shortcuts/internal/instance"
	"github.com/zjrosen/shortcuts/internal/keys"
	"github.com/zjrosen/shortcuts/internal/log"
	"github.com/zjrosen/shortcuts/internal/pubsub"
	"github.com/zjrosen/shortcuts/internal/rpc"
	"github.com/zjrosen/shortcuts/internal/shortcut"
	"github.com/zjrosen/shortcuts/internal/ui/styles"
	"github.com/zjrosen/shortcuts/internal/ui/toaster"
)

const (
	toastDuration       = 3 * time.Second
	noticeToastDuration = 8 * time.Second
	connPollInterval    = time.Second
)

// shortcutsLoadedMsg carries the collection after a list or mutation.
type shortcutsLoadedMsg struct {
	all shortcut.Collection
	err error
	// verb names the mutation for the toast; empty for a plain refresh.
	verb string
	name string
}

// instancesLoadedMsg carries the registry snapshot taken at startup.
type instancesLoadedMsg struct {
	infos []instance.Info
}

// launchResultMsg reports a launch that returned.
type launchResultMsg struct {
	sc  shortcut.Shortcut
	err error
}

// actionResultMsg reports a close or kill request.
type actionResultMsg struct {
	verb string
	sc   shortcut.Shortcut
	ok   bool
}

// connTickMsg polls the event channel state.
type connTickMsg struct{}

// Model is the root application state.
type Model struct {
	svc Service
	ctx context.Context

	shortcuts []shortcut.Shortcut
	byID      map[string]shortcut.Shortcut
	instances map[string]instance.Info
	cursor    int
	loadErr   error

	connected bool
	adding    bool
	form      form

	spinner spinner.Model
	help    help.Model
	toaster toaster.Model

	width  int
	height int

	listener *pubsub.ContinuousListener[instance.Event]
	cancel   context.CancelFunc
}

// New creates the root model over an initialized service.
func New(svc Service) Model {
	ctx, cancel := context.WithCancel(context.Background())

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = styles.SpinnerStyle

	return Model{
		svc:       svc,
		ctx:       ctx,
		byID:      map[string]shortcut.Shortcut{},
		instances: map[string]instance.Info{},
		spinner:   sp,
		help:      help.New(),
		toaster:   toaster.New(),
		listener:  pubsub.NewContinuousListener(ctx, svc.InstanceEvents()),
		cancel:    cancel,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.loadShortcuts(),
		m.loadInstances(),
		m.listener.Listen(),
		m.spinner.Tick,
		pollConnection(),
	}
	if notice, ok := m.svc.SetupNotice(); ok {
		cmds = append(cmds, func() tea.Msg { return setupNoticeMsg{notice} })
	}
	return tea.Batch(cmds...)
}

// setupNoticeMsg shows the launcher setup notice once.
type setupNoticeMsg struct {
	text string
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.form = m.form.setWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		if m.adding {
			var cmd tea.Cmd
			m.form, cmd = m.form.update(msg)
			return m, cmd
		}
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case submitFormMsg:
		m.adding = false
		return m, m.mutate("Added", msg.shortcut.Name, func(ctx context.Context) (shortcut.Collection, error) {
			return m.svc.AddShortcut(ctx, msg.shortcut)
		})

	case cancelFormMsg:
		m.adding = false
		return m, nil

	case shortcutsLoadedMsg:
		return m.handleLoaded(msg)

	case instancesLoadedMsg:
		for _, info := range msg.infos {
			m.instances[info.ShortcutID] = info
		}
		return m, nil

	case pubsub.Event[instance.Event]:
		cmd := m.applyInstanceEvent(msg.Payload)
		return m, tea.Batch(cmd, m.listener.Listen())

	case launchResultMsg:
		if msg.err != nil {
			log.Warn(log.CatUI, "launch failed", "shortcut_id", msg.sc.ID, "error", msg.err)
			return m.toast(launchFailure(msg.sc, msg.err), toaster.StyleError, toastDuration)
		}
		return m, nil

	case actionResultMsg:
		if !msg.ok {
			return m.toast(fmt.Sprintf("Could not %s %s", msg.verb, msg.sc.Name), toaster.StyleError, toastDuration)
		}
		return m, nil

	case setupNoticeMsg:
		return m.toast(msg.text, toaster.StyleInfo, noticeToastDuration)

	case connTickMsg:
		connected := m.svc.Connected()
		if connected != m.connected {
			log.Debug(log.CatUI, "connection changed", "connected", connected)
		}
		m.connected = connected
		return m, pollConnection()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case toaster.DismissMsg:
		m.toaster = m.toaster.Update(msg)
		return m, nil
	}

	if m.adding {
		var cmd tea.Cmd
		m.form, cmd = m.form.update(msg)
		return m, cmd
	}
	return m, nil
}

// handleMouse selects the clicked row. Clicking the selected row launches it.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.adding || msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	for i, sc := range m.shortcuts {
		z := zone.Get(rowZoneID(sc.ID))
		if z == nil || !z.InBounds(msg) {
			continue
		}
		if i != m.cursor {
			m.cursor = i
			return m, nil
		}
		if m.isActive(sc.ID) {
			return m, nil
		}
		return m, m.launch(sc)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.List.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.List.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, keys.List.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, keys.List.Down):
		if m.cursor < len(m.shortcuts)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, keys.List.Refresh):
		return m, m.loadShortcuts()
	case key.Matches(msg, keys.List.Add):
		m.adding = true
		m.form = newForm().setWidth(m.width)
		return m, nil
	}

	sc, ok := m.selected()
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.List.Launch):
		if m.isActive(sc.ID) {
			return m.toast(sc.Name+" is already running", toaster.StyleWarn, toastDuration)
		}
		return m, m.launch(sc)
	case key.Matches(msg, keys.List.Close):
		if !m.isActive(sc.ID) {
			return m, nil
		}
		return m, m.action("close", sc, m.svc.CloseShortcut)
	case key.Matches(msg, keys.List.Kill):
		if !m.isActive(sc.ID) {
			return m, nil
		}
		return m, m.action("kill", sc, m.svc.KillShortcut)
	case key.Matches(msg, keys.List.Delete):
		if m.isActive(sc.ID) {
			return m.toast("Stop "+sc.Name+" before deleting it", toaster.StyleWarn, toastDuration)
		}
		return m, m.mutate("Deleted", sc.Name, func(ctx context.Context) (shortcut.Collection, error) {
			return m.svc.RemoveShortcut(ctx, sc.ID)
		})
	}
	return m, nil
}

func (m Model) handleLoaded(msg shortcutsLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		log.ErrorErr(log.CatUI, "loading shortcuts", msg.err)
		if msg.verb == "" {
			m.loadErr = msg.err
			return m, nil
		}
		return m.toast(mutationFailure(msg.err), toaster.StyleError, toastDuration)
	}

	m.loadErr = nil
	m.shortcuts = msg.all.Sorted()
	m.byID = msg.all.Clone()
	if m.cursor >= len(m.shortcuts) {
		m.cursor = max(len(m.shortcuts)-1, 0)
	}

	if msg.verb != "" {
		return m.toast(msg.verb+" "+msg.name, toaster.StyleSuccess, toastDuration)
	}
	return m, nil
}

// applyInstanceEvent mirrors a registry transition and returns a toast
// command for exits worth reporting.
func (m *Model) applyInstanceEvent(ev instance.Event) tea.Cmd {
	if ev.State.Active() {
		info := m.instances[ev.ShortcutID]
		info.ShortcutID = ev.ShortcutID
		info.LaunchID = ev.LaunchID
		info.State = ev.State
		m.instances[ev.ShortcutID] = info
		return nil
	}

	if cur, ok := m.instances[ev.ShortcutID]; ok && cur.LaunchID == ev.LaunchID {
		delete(m.instances, ev.ShortcutID)
	}

	name := ev.ShortcutID
	if sc, ok := m.byID[ev.ShortcutID]; ok {
		name = sc.Name
	}

	var (
		text  string
		style toaster.Style
	)
	switch {
	case ev.Exit == nil:
		return nil
	case ev.Killed:
		text, style = name+" was killed", toaster.StyleWarn
	case ev.Exit.Signal != "":
		// Signalled processes report code -1.
		text, style = fmt.Sprintf("%s stopped (%s)", name, ev.Exit.Signal), toaster.StyleInfo
	case ev.Exit.Code != 0:
		text, style = fmt.Sprintf("%s exited with code %d", name, ev.Exit.Code), toaster.StyleError
	default:
		text, style = name+" finished", toaster.StyleSuccess
	}

	var cmd tea.Cmd
	m.toaster, cmd = m.toaster.Show(text, style, toastDuration)
	return cmd
}

func (m Model) toast(text string, style toaster.Style, d time.Duration) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.toaster, cmd = m.toaster.Show(text, style, d)
	return m, cmd
}

func (m Model) selected() (shortcut.Shortcut, bool) {
	if m.cursor < 0 || m.cursor >= len(m.shortcuts) {
		return shortcut.Shortcut{}, false
	}
	return m.shortcuts[m.cursor], true
}

func (m Model) isActive(id string) bool {
	info, ok := m.instances[id]
	return ok && info.State.Active()
}

func (m Model) loadShortcuts() tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		all, err := svc.ListShortcuts(ctx)
		return shortcutsLoadedMsg{all: all, err: err}
	}
}

func (m Model) loadInstances() tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		return instancesLoadedMsg{infos: svc.Instances(ctx)}
	}
}

func (m Model) mutate(verb, name string, fn func(context.Context) (shortcut.Collection, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		all, err := fn(ctx)
		return shortcutsLoadedMsg{all: all, err: err, verb: verb, name: name}
	}
}

func (m Model) launch(sc shortcut.Shortcut) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		_, err := svc.Launch(ctx, sc)
		return launchResultMsg{sc: sc, err: err}
	}
}

func (m Model) action(verb string, sc shortcut.Shortcut, fn func(context.Context, shortcut.Shortcut) bool) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionResultMsg{verb: verb, sc: sc, ok: fn(ctx, sc)}
	}
}

func pollConnection() tea.Cmd {
	return tea.Tick(connPollInterval, func(time.Time) tea.Msg { return connTickMsg{} })
}

func launchFailure(sc shortcut.Shortcut, err error) string {
	var lerr *instance.LaunchError
	switch {
	case errors.Is(err, instance.ErrAlreadyActive):
		return sc.Name + " is already running"
	case errors.Is(err, instance.ErrStartTimeout):
		return sc.Name + " has not started yet"
	case errors.Is(err, instance.ErrKilled):
		return sc.Name + " was killed before it started"
	case rpc.IsTransport(err):
		return "Backend unreachable"
	case errors.As(err, &lerr):
		return fmt.Sprintf("Launching %s failed at %s", sc.Name, lerr.Stage)
	default:
		return "Launching " + sc.Name + " failed"
	}
}

func mutationFailure(err error) string {
	var rerr *rpc.Error
	switch {
	case rpc.IsTransport(err):
		return "Backend unreachable"
	case errors.As(err, &rerr) && rerr.Message != "":
		return rerr.Message
	default:
		return err.Error()
	}
}

// Close cancels the registry subscription.
func (m *Model) Close() error {
	m.cancel()
	return nil
}
