// Package events defines the inbound agent event stream consumed by the
// transcript adapter. Events form a sealed tagged union so a dispatch
// switch can be exhaustive.
package events

// Role 标记消息事件归属的角色。
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Event is the sealed interface all stream events implement.
type Event interface {
	isEvent()
}

// AgentStart opens a turn: progress indicator on, submission disabled.
type AgentStart struct {
	TurnID string
}

// AgentStop closes a turn normally.
type AgentStop struct {
	TurnID string
}

// AgentError closes a turn with a failure. It carries the same
// release-everything semantics as AgentStop.
type AgentError struct {
	TurnID  string
	Message string
}

// StepStart marks the beginning of one model step within a turn.
type StepStart struct {
	TurnID string
}

// StepStop marks the end of one model step.
type StepStop struct {
	TurnID string
}

// MessageStart 开启一个新的流式消息组件。
type MessageStart struct {
	Role Role
}

// MessageDelta appends streamed text to the open message of the role.
type MessageDelta struct {
	Role Role
	Text string
}

// MessageEnd seals the open message; a later MessageStart begins a
// fresh component.
type MessageEnd struct {
	Role Role
}

// ThinkingStart opens a reasoning block, collapsed unless verbose.
type ThinkingStart struct{}

// ThinkingDelta appends streamed reasoning text.
type ThinkingDelta struct {
	Text string
}

// ThinkingEnd freezes the reasoning block.
type ThinkingEnd struct{}

// ToolCallUpdate carries the full accumulated phase log for one tool
// invocation. Consumers rebuild their rendering from the whole log on
// every update instead of patching incrementally.
type ToolCallUpdate struct {
	CallID string
	Name   string
	Phases []Phase
}

func (AgentStart) isEvent()     {}
func (AgentStop) isEvent()      {}
func (AgentError) isEvent()     {}
func (StepStart) isEvent()      {}
func (StepStop) isEvent()       {}
func (MessageStart) isEvent()   {}
func (MessageDelta) isEvent()   {}
func (MessageEnd) isEvent()     {}
func (ThinkingStart) isEvent()  {}
func (ThinkingDelta) isEvent()  {}
func (ThinkingEnd) isEvent()    {}
func (ToolCallUpdate) isEvent() {}
