package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"lumen-cli/internal/config"
	"lumen-cli/internal/events"
	"lumen-cli/internal/transcript"
	"lumen-cli/internal/tui"
	"lumen-cli/internal/ui"
	"lumen-cli/internal/ui/render"
)

const plainWidth = 100

// runPlain is the degraded mode for non-TTY streams: read prompts line
// by line, apply the event stream to the same transcript cells, and
// print only the newly produced rows after each turn.
func runPlain(cfg config.Config, gateway tui.Gateway, eventsCh <-chan events.Event) int {
	tree := ui.NewContainer()
	adapter := transcript.NewAdapter(tree, transcript.Hooks{})
	adapter.SetVerbose(cfg.Verbose)

	printed := 0
	dump := func() {
		lines := tree.Render(plainWidth)
		for ; printed < len(lines); printed++ {
			fmt.Println(render.StripANSI(lines[printed].String()))
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := scanner.Text()
		if text == "" {
			continue
		}
		adapter.AppendUser(text)
		if err := gateway.Submit(context.Background(), text); err != nil {
			fmt.Fprintf(os.Stderr, "submit: %v\n", err)
			return 1
		}
	turn:
		for evt := range eventsCh {
			adapter.Apply(evt)
			switch evt.(type) {
			case events.AgentStop, events.AgentError:
				break turn
			}
		}
		dump()
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "read input: %v\n", err)
		return 1
	}
	return 0
}
