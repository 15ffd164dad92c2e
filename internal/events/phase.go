package events

import "sort"

// PhaseKind 标识工具调用生命周期中的一个阶段。
type PhaseKind string

const (
	PhaseStart  PhaseKind = "start"
	PhaseUpdate PhaseKind = "update"
	PhaseEnd    PhaseKind = "end"
	PhaseError  PhaseKind = "error"
)

// Rank orders phases for rendering: start before updates before the
// terminal phase. End and error share a rank because a call has at most
// one terminal phase.
func (k PhaseKind) Rank() int {
	switch k {
	case PhaseStart:
		return 0
	case PhaseUpdate:
		return 1
	case PhaseEnd, PhaseError:
		return 2
	default:
		return 1
	}
}

// Terminal reports whether the phase closes the call.
func (k PhaseKind) Terminal() bool {
	return k == PhaseEnd || k == PhaseError
}

// Phase is one entry in a tool call's accumulated log.
type Phase struct {
	Kind   PhaseKind
	Detail string
}

// SortPhases returns a copy of the log ordered by rank. The sort is
// stable so updates keep their relative delivery order.
func SortPhases(log []Phase) []Phase {
	out := append([]Phase{}, log...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Kind.Rank() < out[j].Kind.Rank()
	})
	return out
}

// NormalizePhases prepends a synthetic start when the log's first entry
// is not one, so a call whose start frame was lost still renders.
func NormalizePhases(log []Phase, name string) []Phase {
	if len(log) > 0 && log[0].Kind == PhaseStart {
		return log
	}
	out := make([]Phase, 0, len(log)+1)
	out = append(out, Phase{Kind: PhaseStart, Detail: name})
	out = append(out, log...)
	return out
}
