package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"lumen-cli/internal/config"
	"lumen-cli/internal/editor"
	"lumen-cli/internal/events"
	"lumen-cli/internal/history"
	"lumen-cli/internal/input"
	"lumen-cli/internal/logger"
	"lumen-cli/internal/session"
	"lumen-cli/internal/term"
	"lumen-cli/internal/transcript"
	"lumen-cli/internal/ui"
	"lumen-cli/internal/ui/overlay"
	"lumen-cli/internal/ui/render"
)

// Gateway is the agent runtime collaborator behind the UI. Submit must
// not block: turn progress arrives as events on the stream channel.
type Gateway interface {
	Submit(ctx context.Context, text string) error
	Interrupt()
	Complete(prefix string) []string
	Models() []string
}

var interactionModes = []string{"chat", "plan", "auto"}

const noticeTTL = 4 * time.Second

// App owns the whole interactive session: component tree, renderer,
// input routing and the single-threaded run loop. Nothing in the tree
// is ever mutated outside that loop.
type App struct {
	cfg      config.Config
	adapter  *term.Adapter
	gateway  Gateway
	eventsCh <-chan events.Event
	log      *logger.LogEntry
	clock    func() time.Time

	root        *ui.Container
	transcripts *ui.Container
	overlaySlot *ui.Container
	footer      *ui.Container

	renderer *ui.Renderer
	editor   *editor.Editor
	router   *input.Router
	modals   *overlay.Manager
	stream   *transcript.Adapter

	status  *StatusIndicator
	notices *Notification
	info    *InfoLine

	commands  []slashCommand
	exitGuard *input.ExitGuard
	modeIdx   int

	prompts   *history.Store
	sessions  *session.Store
	sessionID string
	records   []transcript.Record

	quitOnce sync.Once
	quitCh   chan struct{}
	keys     chan input.Key
}

// Options 注入可替换的依赖，零值使用真实实现。
type Options struct {
	Clock    func() time.Time
	Screen   term.Screen
	Prompts  *history.Store
	Sessions *session.Store
}

func New(cfg config.Config, adapter *term.Adapter, gateway Gateway, eventsCh <-chan events.Event, opts Options) *App {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	var screen term.Screen = adapter
	if opts.Screen != nil {
		screen = opts.Screen
	}

	a := &App{
		cfg:       cfg,
		adapter:   adapter,
		gateway:   gateway,
		eventsCh:  eventsCh,
		log:       logger.Named("tui"),
		clock:     clock,
		exitGuard: input.NewExitGuard(clock),
		quitCh:    make(chan struct{}),
		prompts:   opts.Prompts,
		sessions:  opts.Sessions,
	}

	a.transcripts = ui.NewContainer()
	a.overlaySlot = ui.NewContainer()
	a.root = ui.NewContainer(a.transcripts, a.overlaySlot)

	a.status = NewStatusIndicator(cfg.Animations, clock)
	a.notices = NewNotification(clock)
	a.editor = editor.New("ask anything — / for commands")
	a.info = &InfoLine{Model: "default", Mode: interactionModes[0]}
	a.footer = ui.NewContainer(a.status, a.notices, a.editor, a.info)

	a.renderer = ui.NewRenderer(screen, a.root, a.footer)
	a.info.Scrolled = func() bool { return !a.renderer.AtBottom() }

	a.router = input.NewRouter()
	a.router.SetFocus(a.editor)
	a.modals = overlay.NewManager(a.router, a.overlaySlot, a.requestRender)

	a.stream = transcript.NewAdapter(a.transcripts, transcript.Hooks{
		TurnStarted:   a.onTurnStarted,
		TurnEnded:     a.onTurnEnded,
		RequestRender: a.requestRender,
		Record:        func(r transcript.Record) { a.records = append(a.records, r) },
	})
	if cfg.Verbose {
		a.stream.SetVerbose(true)
	}

	a.editor.OnSubmit = a.submit
	a.editor.OnEscape = a.interruptTurn
	a.editor.OnChange = a.requestRender
	a.editor.CompleteFunc = a.completeInput

	a.commands = builtinCommands()
	a.bindChords()
	return a
}

// Transcript exposes the streaming adapter, e.g. for history replay
// before the loop starts.
func (a *App) Transcript() *transcript.Adapter { return a.stream }

// Editor returns the input editor for seeding history.
func (a *App) Editor() *editor.Editor { return a.editor }

// Resume rebuilds the transcript from a saved session and keeps writing
// to the same session id.
func (a *App) Resume(snap session.Snapshot) {
	a.sessionID = snap.ID
	a.records = append([]transcript.Record(nil), snap.Records...)
	a.stream.Replay(snap.Records)
	a.renderer.ScrollToBottom()
}

// saveSession is best-effort; persistence failures never interrupt the
// conversation.
func (a *App) saveSession() {
	if a.sessions == nil || len(a.records) == 0 {
		return
	}
	id, err := a.sessions.Save(a.sessionID, a.records)
	if err != nil {
		a.log.Warnf("save session: %v", err)
		return
	}
	a.sessionID = id
}

func (a *App) bindChords() {
	a.router.Bind("ctrl+c", func(input.Key) bool {
		a.handleInterruptChord()
		return true
	})
	a.router.Bind("ctrl+d", func(input.Key) bool {
		if !a.editor.Empty() {
			// Never discard unsaved input on a reflexive ctrl+d.
			return false
		}
		a.requestExit()
		return true
	})
	a.router.Bind("ctrl+o", func(input.Key) bool { a.toggleVerbose(); return true })
	a.router.Bind("ctrl+n", func(input.Key) bool { a.newSession(); return true })
	a.router.Bind("ctrl+p", func(input.Key) bool { a.showModelPicker(); return true })
	a.router.Bind("ctrl+g", func(input.Key) bool { a.showReviewPanel(); return true })
	a.router.Bind("ctrl+t", func(input.Key) bool { a.cycleMode(); return true })
	a.router.Bind("ctrl+e", func(input.Key) bool { a.openExternalEditor(); return true })
	a.router.Bind("pgup", func(input.Key) bool { a.renderer.PageUp(); return true })
	a.router.Bind("pgdown", func(input.Key) bool { a.renderer.PageDown(); return true })
}

// routeKey funnels every key through the exit-guard bookkeeping before
// normal dispatch: any non-interrupt key cancels a pending confirmation.
func (a *App) routeKey(k input.Key) {
	if k.String() != "ctrl+c" && a.exitGuard.Armed() {
		a.exitGuard.Disarm()
		a.notices.Clear()
		a.requestRender()
	}
	a.router.Route(k)
}

// Run drives the session until exit: one goroutine decodes keys, but
// every tree mutation happens here, interleaved on this single loop.
func (a *App) Run(ctx context.Context) error {
	a.keys = make(chan input.Key, 16)
	a.startKeyReader()

	ticker := time.NewTicker(120 * time.Millisecond)
	defer ticker.Stop()

	a.requestRender()
	a.flush()

	eventsCh := a.eventsCh
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-a.quitCh:
			return nil
		case k, ok := <-a.keys:
			if !ok {
				return nil
			}
			a.routeKey(k)
		case evt, ok := <-eventsCh:
			if !ok {
				eventsCh = nil
				continue
			}
			a.stream.Apply(evt)
		case <-a.adapter.Resized():
			a.renderer.Invalidate()
		case <-ticker.C:
			// Animations and notice expiry repaint on the shared tick.
			if a.status.Working() || a.notices.Active() {
				a.requestRender()
			}
		}
		a.flush()
	}
}

// startKeyReader decodes keys on the adapter's current input reader.
// The reader is canceled while an external editor owns the terminal;
// a canceled generation exits without closing the channel so the next
// generation can take over after the handoff.
func (a *App) startKeyReader() {
	dec := input.NewDecoder(a.adapter.Input())
	go func() {
		for {
			k, err := dec.Next()
			if err != nil {
				if !errors.Is(err, term.ErrInputCanceled) {
					close(a.keys)
				}
				return
			}
			select {
			case a.keys <- k:
			case <-a.quitCh:
				return
			}
		}
	}()
}

// flush repaints; a failed write must never take the session down.
func (a *App) flush() {
	if err := a.renderer.Flush(); err != nil {
		a.log.Warnf("repaint failed: %v", err)
	}
}

func (a *App) requestRender() {
	a.renderer.RequestRender()
}

// --- Turn lifecycle ---

func (a *App) onTurnStarted() {
	a.editor.SetDisabled(true)
	a.status.Start("Working")
	a.renderer.ScrollToBottom()
}

func (a *App) onTurnEnded(errMessage string) {
	a.editor.SetDisabled(false)
	a.saveSession()
	if errMessage != "" {
		a.status.Fail("Error")
		a.notices.ShowError("turn failed: "+errMessage, noticeTTL)
		return
	}
	a.status.Stop()
}

func (a *App) submit(text string) {
	if strings.HasPrefix(text, "/") {
		a.dispatchSlash(text)
		a.requestRender()
		return
	}
	if a.stream.Busy() {
		a.notices.Show("agent is busy — esc to interrupt", noticeTTL)
		return
	}
	a.stream.AppendUser(text)
	if a.prompts != nil {
		if err := a.prompts.Append(text); err != nil {
			a.log.Warnf("append prompt history: %v", err)
		}
	}
	a.renderer.ScrollToBottom()
	if a.gateway == nil {
		a.notices.ShowError("no agent connected", noticeTTL)
		return
	}
	if err := a.gateway.Submit(context.Background(), text); err != nil {
		a.notices.ShowError("submit failed: "+err.Error(), noticeTTL)
	}
}

// interruptTurn is the esc hook: ask the collaborator to abort. The
// adapter still waits for agent-stop/agent-error to release the editor.
func (a *App) interruptTurn() {
	if !a.stream.Busy() {
		return
	}
	a.notices.Show("interrupting…", noticeTTL)
	if a.gateway != nil {
		a.gateway.Interrupt()
	}
}

// handleInterruptChord implements two-stage ctrl+c: first press clears
// pending input and arms the confirmation; a second press inside the
// window exits.
func (a *App) handleInterruptChord() {
	if a.exitGuard.Press() {
		a.requestExit()
		return
	}
	a.editor.Clear()
	if a.stream.Busy() {
		a.interruptTurn()
	}
	a.notices.Show("press ctrl+c again to exit", a.exitGuard.Window)
	a.requestRender()
}

// requestExit persists preferences and stops the loop. Idempotent.
func (a *App) requestExit() {
	a.quitOnce.Do(func() {
		if err := config.Save(a.cfg); err != nil {
			a.log.Warnf("save config: %v", err)
		}
		a.saveSession()
		close(a.quitCh)
	})
}

// --- Chord actions ---

func (a *App) toggleVerbose() {
	v := !a.stream.Verbose()
	a.stream.SetVerbose(v)
	a.cfg.Verbose = v
	if v {
		a.notices.Show("verbose thinking on", noticeTTL)
	} else {
		a.notices.Show("verbose thinking off", noticeTTL)
	}
}

func (a *App) newSession() {
	if a.stream.Busy() && a.gateway != nil {
		a.gateway.Interrupt()
	}
	a.saveSession()
	a.stream.Reset()
	a.records = nil
	a.sessionID = ""
	a.status.Stop()
	a.editor.SetDisabled(false)
	a.notices.Show("new session", noticeTTL)
}

func (a *App) cycleMode() {
	a.modeIdx = (a.modeIdx + 1) % len(interactionModes)
	a.info.Mode = interactionModes[a.modeIdx]
	a.notices.Show("mode: "+a.info.Mode, noticeTTL)
	a.requestRender()
}

func (a *App) showHelp() {
	content := ui.NewContainer()
	for _, cmd := range a.commands {
		content.AddChild(ui.Text{Content: fmt.Sprintf("%-10s %s", cmd.name, cmd.desc)})
	}
	a.modals.Show("Commands", content, true, nil)
}

func (a *App) showModelPicker() {
	models := []string{"default"}
	if a.gateway != nil {
		if m := a.gateway.Models(); len(m) > 0 {
			models = m
		}
	}
	list := &listView{items: models}
	for i, m := range models {
		if m == a.info.Model {
			list.selected = i
		}
	}
	modal := a.modals.Show("Pick a model", ui.NewContainer(list), true, nil)
	modal.SetKeyHandler(func(k input.Key) bool {
		switch k.Type {
		case input.KeyUp:
			list.Move(-1)
		case input.KeyDown:
			list.Move(1)
		case input.KeyEnter:
			a.info.Model = list.Selected()
			a.notices.Show("model: "+a.info.Model, noticeTTL)
			a.modals.Dismiss()
		default:
			return false
		}
		a.requestRender()
		return true
	})
}

func (a *App) showReviewPanel() {
	content := ui.NewContainer(
		ui.Text{Content: "model: " + a.info.Model},
		ui.Text{Content: "mode:  " + a.info.Mode},
		ui.Text{Content: fmt.Sprintf("transcript: %d blocks", a.transcripts.Len())},
	)
	a.modals.Show("Session review", content, true, nil)
}

func (a *App) openExternalEditor() {
	if a.adapter == nil {
		return
	}
	edited, err := editor.EditExternal(a.adapter, a.cfg.EditorCommand(), a.editor.Text(), ".md")
	// The subprocess owned the screen; everything we knew about it is
	// stale, and the key reader was canceled for the handoff.
	a.renderer.Invalidate()
	if a.keys != nil {
		a.startKeyReader()
	}
	if err != nil {
		a.notices.ShowError(err.Error(), noticeTTL)
		return
	}
	a.editor.SetText(strings.TrimRight(edited, "\n"))
}

// listView 是弹窗里的单选列表。
type listView struct {
	items    []string
	selected int
}

func (l *listView) Move(delta int) {
	l.selected += delta
	if l.selected < 0 {
		l.selected = 0
	}
	if l.selected >= len(l.items) {
		l.selected = len(l.items) - 1
	}
}

func (l *listView) Selected() string {
	if len(l.items) == 0 {
		return ""
	}
	return l.items[l.selected]
}

func (l *listView) Render(width int) []render.Line {
	out := make([]render.Line, 0, len(l.items))
	for i, item := range l.items {
		marker := "  "
		style := infoStyle
		if i == l.selected {
			marker = "▸ "
			style = selectedStyle
		}
		out = append(out, render.Styled(marker+render.TruncateToWidth(item, width-2), style))
	}
	return out
}
