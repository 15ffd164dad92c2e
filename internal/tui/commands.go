package tui

import (
	"sort"
	"strings"
	"time"
)

// slashCommand 是一个内置斜杠命令。
type slashCommand struct {
	name string
	desc string
	run  func(a *App, args string)
}

func builtinCommands() []slashCommand {
	return []slashCommand{
		{name: "/help", desc: "list available commands", run: (*App).showHelp0},
		{name: "/new", desc: "start a new session", run: func(a *App, _ string) { a.newSession() }},
		{name: "/clear", desc: "clear the transcript", run: func(a *App, _ string) { a.newSession() }},
		{name: "/model", desc: "pick the model", run: func(a *App, _ string) { a.showModelPicker() }},
		{name: "/review", desc: "open the review panel", run: func(a *App, _ string) { a.showReviewPanel() }},
		{name: "/mode", desc: "cycle interaction mode", run: func(a *App, _ string) { a.cycleMode() }},
		{name: "/verbose", desc: "toggle thinking display", run: func(a *App, _ string) { a.toggleVerbose() }},
		{name: "/quit", desc: "exit", run: func(a *App, _ string) { a.requestExit() }},
	}
}

func (a *App) showHelp0(string) { a.showHelp() }

// dispatchSlash runs a slash command; unknown names become a notice.
func (a *App) dispatchSlash(text string) {
	fields := strings.SplitN(text, " ", 2)
	name := fields[0]
	args := ""
	if len(fields) > 1 {
		args = strings.TrimSpace(fields[1])
	}
	for _, cmd := range a.commands {
		if cmd.name == name {
			cmd.run(a, args)
			return
		}
	}
	a.notices.Show("unknown command "+name, 4*time.Second)
}

// completeInput serves the editor's autocomplete hook: slash commands
// for "/" tokens, the gateway's candidates otherwise.
func (a *App) completeInput(prefix string) []string {
	if strings.HasPrefix(prefix, "/") {
		names := make([]string, 0, len(a.commands))
		for _, cmd := range a.commands {
			names = append(names, cmd.name)
		}
		sort.Strings(names)
		return names
	}
	if a.gateway == nil {
		return nil
	}
	return a.gateway.Complete(prefix)
}
