package transcript

import (
	"lumen-cli/internal/events"
	"lumen-cli/internal/logger"
	"lumen-cli/internal/ui"
)

// Hooks lets the owning app react to turn boundaries and repaint needs
// without the adapter knowing about renderers or editors.
type Hooks struct {
	TurnStarted   func()
	TurnEnded     func(errMessage string)
	RequestRender func()
	// Record receives each completed entry for persistence.
	Record func(Record)
}

// Adapter applies the agent event stream to the transcript container.
// All per-turn references live in a scope object that is discarded
// wholesale at agent-stop/agent-error, so a new turn can never touch a
// stale component.
type Adapter struct {
	tree     *ui.Container
	hooks    Hooks
	log      *logger.LogEntry
	verbose  bool
	active   bool
	turn     turnScope
	thinking []*ThinkingCell
}

type turnScope struct {
	assistant *AssistantCell
	user      *UserCell
	thinking  *ThinkingCell
	tools     map[string]*ToolCell
}

func NewAdapter(tree *ui.Container, hooks Hooks) *Adapter {
	return &Adapter{
		tree:  tree,
		hooks: hooks,
		log:   logger.Named("transcript"),
		turn:  turnScope{tools: map[string]*ToolCell{}},
	}
}

// Busy reports whether a turn is in flight (submission disabled).
func (a *Adapter) Busy() bool { return a.active }

// Verbose reports the current thinking display mode.
func (a *Adapter) Verbose() bool { return a.verbose }

// SetVerbose flips thinking blocks between collapsed and full display,
// including ones already in the transcript.
func (a *Adapter) SetVerbose(v bool) {
	a.verbose = v
	for _, cell := range a.thinking {
		cell.SetVerbose(v)
	}
	a.repaint()
}

// Reset drops the whole transcript and any per-turn state.
func (a *Adapter) Reset() {
	a.tree.Clear()
	a.thinking = nil
	a.discardTurn()
	a.active = false
	a.repaint()
}

// AppendUser records a locally submitted user message.
func (a *Adapter) AppendUser(text string) {
	a.tree.AddChild(NewUserCell(text))
	a.record(Record{Kind: RecordUser, Text: text})
	a.repaint()
}

// Apply dispatches one stream event. Unknown-role or out-of-sequence
// events are normalized into fresh components instead of rejected.
func (a *Adapter) Apply(evt events.Event) {
	switch e := evt.(type) {
	case events.AgentStart:
		a.discardTurn()
		a.active = true
		if a.hooks.TurnStarted != nil {
			a.hooks.TurnStarted()
		}
	case events.AgentStop:
		a.endTurn("")
	case events.AgentError:
		if e.Message != "" {
			a.tree.AddChild(NewErrorCell(e.Message))
		}
		a.endTurn(e.Message)
	case events.StepStart, events.StepStop:
		// Step boundaries carry no transcript content.
		return
	case events.MessageStart:
		a.openMessage(e.Role)
	case events.MessageDelta:
		a.appendMessage(e.Role, e.Text)
	case events.MessageEnd:
		a.closeMessage(e.Role)
	case events.ThinkingStart:
		cell := NewThinkingCell(a.verbose)
		a.turn.thinking = cell
		a.thinking = append(a.thinking, cell)
		a.tree.AddChild(cell)
	case events.ThinkingDelta:
		if a.turn.thinking == nil {
			cell := NewThinkingCell(a.verbose)
			a.turn.thinking = cell
			a.thinking = append(a.thinking, cell)
			a.tree.AddChild(cell)
		}
		a.turn.thinking.Append(e.Text)
	case events.ThinkingEnd:
		if a.turn.thinking != nil {
			a.turn.thinking.Freeze()
			a.record(Record{Kind: RecordThinking, Text: a.turn.thinking.Text()})
			a.turn.thinking = nil
		}
	case events.ToolCallUpdate:
		cell, ok := a.turn.tools[e.CallID]
		if !ok {
			cell = NewToolCell(e.CallID, e.Name)
			a.turn.tools[e.CallID] = cell
			a.tree.AddChild(cell)
		}
		wasTerminal := cell.Terminal()
		cell.SetLog(e.Phases)
		if !wasTerminal && cell.Terminal() {
			a.recordTool(cell)
		}
	default:
		a.log.Debugf("unhandled event %T", evt)
		return
	}
	a.repaint()
}

func (a *Adapter) openMessage(role events.Role) {
	switch role {
	case events.RoleAssistant:
		cell := NewAssistantCell()
		a.turn.assistant = cell
		a.tree.AddChild(cell)
	case events.RoleUser:
		cell := NewUserCell("")
		a.turn.user = cell
		a.tree.AddChild(cell)
	}
}

func (a *Adapter) appendMessage(role events.Role, text string) {
	switch role {
	case events.RoleAssistant:
		if a.turn.assistant == nil {
			a.openMessage(role)
		}
		a.turn.assistant.Append(text)
	case events.RoleUser:
		if a.turn.user == nil {
			a.openMessage(role)
		}
		a.turn.user.Append(text)
	}
}

func (a *Adapter) closeMessage(role events.Role) {
	switch role {
	case events.RoleAssistant:
		if a.turn.assistant != nil {
			a.turn.assistant.Seal()
			a.record(Record{Kind: RecordAssistant, Text: a.turn.assistant.Text()})
			a.turn.assistant = nil
		}
	case events.RoleUser:
		if a.turn.user != nil {
			a.record(Record{Kind: RecordUser, Text: a.turn.user.Text()})
			a.turn.user = nil
		}
	}
}

// endTurn releases every per-turn reference so the next turn starts
// from a clean slate, and re-enables submission.
func (a *Adapter) endTurn(errMessage string) {
	if a.turn.assistant != nil {
		a.turn.assistant.Seal()
		a.record(Record{Kind: RecordAssistant, Text: a.turn.assistant.Text()})
	}
	if a.turn.thinking != nil {
		a.turn.thinking.Freeze()
		a.record(Record{Kind: RecordThinking, Text: a.turn.thinking.Text()})
	}
	a.discardTurn()
	a.active = false
	if a.hooks.TurnEnded != nil {
		a.hooks.TurnEnded(errMessage)
	}
}

func (a *Adapter) discardTurn() {
	a.turn = turnScope{tools: map[string]*ToolCell{}}
}

func (a *Adapter) record(r Record) {
	if a.hooks.Record != nil {
		a.hooks.Record(r)
	}
}

// recordTool emits the invocation and its terminal result as a pair
// once the call settles.
func (a *Adapter) recordTool(cell *ToolCell) {
	call := Record{Kind: RecordToolCall, CallID: cell.CallID(), ToolName: cell.Name()}
	result := Record{Kind: RecordToolResult, CallID: cell.CallID()}
	for _, p := range cell.Phases() {
		switch p.Kind {
		case events.PhaseStart:
			call.Text = p.Detail
		case events.PhaseEnd:
			result.Text = p.Detail
		case events.PhaseError:
			result.Text = p.Detail
			result.IsError = true
		}
	}
	a.record(call)
	a.record(result)
}

func (a *Adapter) repaint() {
	if a.hooks.RequestRender != nil {
		a.hooks.RequestRender()
	}
}
