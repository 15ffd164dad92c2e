package main

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"lumen-cli/internal/events"
)

// demoGateway is the built-in stand-in for a real agent runtime: it
// echoes the prompt back as a streamed turn with one scripted tool
// call, so the UI is exercisable without any backend.
type demoGateway struct {
	queue       *events.Queue
	interrupted atomic.Bool
}

func newDemoGateway(queue *events.Queue) *demoGateway {
	return &demoGateway{queue: queue}
}

func (g *demoGateway) Submit(ctx context.Context, text string) error {
	g.interrupted.Store(false)
	go g.runTurn(ctx, text)
	return nil
}

func (g *demoGateway) Interrupt() {
	g.interrupted.Store(true)
}

func (g *demoGateway) Complete(prefix string) []string {
	candidates := []string{"explain", "refactor", "summarize", "translate"}
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func (g *demoGateway) Models() []string {
	return []string{"lumen-small", "lumen-large"}
}

func (g *demoGateway) runTurn(ctx context.Context, text string) {
	turnID := uuid.NewString()
	callID := uuid.NewString()
	emit := func(evt events.Event) bool {
		if g.interrupted.Load() {
			_ = g.queue.Publish(ctx, events.AgentError{TurnID: turnID, Message: "interrupted"})
			return false
		}
		return g.queue.Publish(ctx, evt) == nil
	}

	if !emit(events.AgentStart{TurnID: turnID}) {
		return
	}
	emit(events.StepStart{TurnID: turnID})

	emit(events.ThinkingStart{})
	emit(events.ThinkingDelta{Text: "The user said: " + text})
	emit(events.ThinkingEnd{})

	log := []events.Phase{{Kind: events.PhaseStart, Detail: "echo " + text}}
	emit(events.ToolCallUpdate{CallID: callID, Name: "echo", Phases: log})
	time.Sleep(150 * time.Millisecond)
	log = append(log, events.Phase{Kind: events.PhaseEnd, Detail: fmt.Sprintf("%d bytes", len(text))})
	emit(events.ToolCallUpdate{CallID: callID, Name: "echo", Phases: log})

	emit(events.MessageStart{Role: events.RoleAssistant})
	for _, word := range strings.Fields("You said: " + text) {
		if !emit(events.MessageDelta{Role: events.RoleAssistant, Text: word + " "}) {
			return
		}
		time.Sleep(40 * time.Millisecond)
	}
	emit(events.MessageEnd{Role: events.RoleAssistant})

	emit(events.StepStop{TurnID: turnID})
	emit(events.AgentStop{TurnID: turnID})
}
