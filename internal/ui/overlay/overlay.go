// Package overlay implements the single-slot modal subsystem: one
// bordered box that owns input until dismissed.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"lumen-cli/internal/input"
	"lumen-cli/internal/logger"
	"lumen-cli/internal/ui"
	"lumen-cli/internal/ui/render"
)

var (
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true)
	hintStyle  = lipgloss.NewStyle().Faint(true)
)

// Modal is the overlay widget. It renders a bordered box around its
// content Container and receives all non-chord input while shown.
type Modal struct {
	title       string
	content     *ui.Container
	dismissible bool

	onClose func()
	closed  bool
	dismiss func()
	keys    func(k input.Key) bool
}

// SetKeyHandler installs the modal's own key handling. The handler runs
// before the built-in dismissal keys and consumes by returning true.
func (m *Modal) SetKeyHandler(fn func(k input.Key) bool) {
	m.keys = fn
}

// Content 返回弹窗内容容器。
func (m *Modal) Content() *ui.Container { return m.content }

// HandleKey implements input.Handler.
func (m *Modal) HandleKey(k input.Key) bool {
	if m.keys != nil && m.keys(k) {
		return true
	}
	if m.dismissible {
		switch k.String() {
		case "esc", "enter", "q":
			if m.dismiss != nil {
				m.dismiss()
			}
			return true
		}
	}
	// A captured modal swallows everything; nothing falls through to
	// the editor underneath.
	return true
}

// Render implements ui.Component: a bordered box sized to the viewport.
func (m *Modal) Render(width int) []render.Line {
	boxWidth := width - 2
	if boxWidth > 76 {
		boxWidth = 76
	}
	if boxWidth < 10 {
		boxWidth = width
	}
	innerWidth := boxWidth - 4

	rows := []string{titleStyle.Render(render.TruncateToWidth(m.title, innerWidth))}
	for _, line := range m.content.Render(innerWidth) {
		rows = append(rows, line.String())
	}
	if m.dismissible {
		rows = append(rows, "", hintStyle.Render("esc to close"))
	}
	body := boxStyle.Width(boxWidth - 2).Render(strings.Join(rows, "\n"))

	out := []render.Line{render.Plain("")}
	for _, row := range strings.Split(body, "\n") {
		out = append(out, render.Plain(row))
	}
	return out
}

// fireClose runs onClose exactly once regardless of how many dismissal
// paths race to it.
func (m *Modal) fireClose() {
	if m.closed {
		return
	}
	m.closed = true
	if m.onClose != nil {
		m.onClose()
	}
}

// Manager owns the single modal slot and its input capture.
type Manager struct {
	router  *input.Router
	slot    *ui.Container
	repaint func()
	active  *Modal
	log     *logger.LogEntry
}

func NewManager(router *input.Router, slot *ui.Container, repaint func()) *Manager {
	return &Manager{
		router:  router,
		slot:    slot,
		repaint: repaint,
		log:     logger.Named("overlay"),
	}
}

// Active returns the currently shown modal, or nil.
func (m *Manager) Active() *Modal { return m.active }

// Show opens a modal and captures input. There is no stacking: opening
// while another modal is up replaces it, and the replaced modal's
// onClose fires as if it had been dismissed.
func (m *Manager) Show(title string, content *ui.Container, dismissible bool, onClose func()) *Modal {
	if m.active != nil {
		m.log.Debugf("modal %q replaced by %q", m.active.title, title)
		m.closeActive()
	}
	if content == nil {
		content = ui.NewContainer()
	}
	modal := &Modal{
		title:       title,
		content:     content,
		dismissible: dismissible,
		onClose:     onClose,
	}
	modal.dismiss = func() { m.dismissModal(modal) }
	m.active = modal
	m.slot.AddChild(modal)
	m.router.CaptureModal(modal)
	m.requestRender()
	return modal
}

// Dismiss closes the active modal, restoring focus to whatever held it
// before the modal opened.
func (m *Manager) Dismiss() {
	if m.active == nil {
		return
	}
	m.closeActive()
	m.router.ReleaseModal()
	m.requestRender()
}

func (m *Manager) dismissModal(modal *Modal) {
	if m.active != modal {
		// Stale dismiss from a replaced modal; its onClose already ran.
		return
	}
	m.Dismiss()
}

func (m *Manager) closeActive() {
	modal := m.active
	m.active = nil
	m.slot.RemoveChild(modal)
	modal.fireClose()
}

func (m *Manager) requestRender() {
	if m.repaint != nil {
		m.repaint()
	}
}
