package transcript

import "lumen-cli/internal/events"

// Record is one persisted conversation entry, as stored by the session
// layer. Tool invocations and their results may live in different
// records, in either order.
type Record struct {
	Kind     RecordKind
	Text     string
	CallID   string
	ToolName string
	IsError  bool
}

type RecordKind string

const (
	RecordUser       RecordKind = "user"
	RecordAssistant  RecordKind = "assistant"
	RecordThinking   RecordKind = "thinking"
	RecordToolCall   RecordKind = "tool_call"
	RecordToolResult RecordKind = "tool_result"
)

// Replay rebuilds the transcript from persisted records. It runs two
// passes: results are collected by call id first, then records are
// walked in order emitting components, because a tool's result may be
// persisted before or after its invocation record.
func (a *Adapter) Replay(records []Record) {
	results := map[string]Record{}
	for _, r := range records {
		if r.Kind != RecordToolResult || r.CallID == "" {
			continue
		}
		if _, seen := results[r.CallID]; !seen {
			results[r.CallID] = r
		}
	}

	for _, r := range records {
		switch r.Kind {
		case RecordUser:
			a.tree.AddChild(NewUserCell(r.Text))
		case RecordAssistant:
			cell := NewAssistantCell()
			cell.Append(r.Text)
			cell.Seal()
			a.tree.AddChild(cell)
		case RecordThinking:
			cell := NewThinkingCell(a.verbose)
			cell.Append(r.Text)
			cell.Freeze()
			a.thinking = append(a.thinking, cell)
			a.tree.AddChild(cell)
		case RecordToolCall:
			cell := NewToolCell(r.CallID, r.ToolName)
			log := []events.Phase{{Kind: events.PhaseStart, Detail: startDetail(r)}}
			if res, ok := results[r.CallID]; ok {
				kind := events.PhaseEnd
				if res.IsError {
					kind = events.PhaseError
				}
				log = append(log, events.Phase{Kind: kind, Detail: res.Text})
			}
			cell.SetLog(log)
			a.tree.AddChild(cell)
		case RecordToolResult:
			// Consumed by the first pass.
		}
	}
	a.repaint()
}

func startDetail(r Record) string {
	if r.Text != "" {
		return r.Text
	}
	return r.ToolName
}
