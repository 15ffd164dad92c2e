package editor

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"lumen-cli/internal/input"
	"lumen-cli/internal/logger"
	"lumen-cli/internal/ui/render"
)

var (
	promptStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	placeholderStyle = lipgloss.NewStyle().Faint(true)
	cursorStyle      = lipgloss.NewStyle().Reverse(true)
	disabledStyle    = lipgloss.NewStyle().Faint(true)
	popupStyle       = lipgloss.NewStyle().Faint(true)
	popupSelStyle    = lipgloss.NewStyle().Reverse(true)
)

const popupMaxRows = 6

// Editor is the input component at the bottom of the screen. It is the
// normal focus target of the router.
type Editor struct {
	buf     Buffer
	history History
	popup   *completionPopup

	disabled    bool
	placeholder string
	log         *logger.LogEntry

	// Outbound hooks; all optional.
	OnSubmit     func(text string)
	OnEscape     func()
	OnChange     func()
	CompleteFunc func(prefix string) []string
}

func New(placeholder string) *Editor {
	return &Editor{
		placeholder: placeholder,
		log:         logger.Named("editor"),
	}
}

// Text returns the current buffer content.
func (e *Editor) Text() string { return e.buf.Text() }

// Empty reports whether the buffer holds no input.
func (e *Editor) Empty() bool { return e.buf.Empty() }

// SetText replaces the buffer, e.g. after an external editor session.
func (e *Editor) SetText(text string) {
	e.buf.SetText(text)
	e.changed()
}

// SetDisabled blocks submission while a turn is in flight. Typing stays
// possible so the user can prepare the next prompt.
func (e *Editor) SetDisabled(v bool) { e.disabled = v }

func (e *Editor) Disabled() bool { return e.disabled }

// SetHistory seeds history entries, newest last.
func (e *Editor) SetHistory(entries []string) { e.history.Set(entries) }

// Clear 清空缓冲区并退出历史浏览。
func (e *Editor) Clear() {
	e.buf.Clear()
	e.history.ResetBrowsing()
	e.closePopup()
	e.changed()
}

// HandleKey implements input.Handler.
func (e *Editor) HandleKey(k input.Key) bool {
	if e.popup != nil && e.handlePopupKey(k) {
		e.changed()
		return true
	}

	switch {
	case k.Type == input.KeyPaste:
		e.buf.Insert(k.Paste)
	case k.Type == input.KeyEnter && k.Alt:
		e.buf.InsertRune('\n')
	case k.Type == input.KeyEnter:
		e.submit()
	case k.Type == input.KeyEsc:
		if e.OnEscape != nil {
			e.OnEscape()
		}
	case k.Type == input.KeyBackspace && k.Alt:
		e.buf.DeleteWordBack()
	case k.Type == input.KeyBackspace:
		e.buf.Backspace()
	case k.Type == input.KeyDelete:
		e.buf.Delete()
	case k.Type == input.KeyLeft:
		e.buf.Left()
	case k.Type == input.KeyRight:
		e.buf.Right()
	case k.Type == input.KeyHome:
		e.buf.Home()
	case k.Type == input.KeyEnd:
		e.buf.End()
	case k.Type == input.KeyUp:
		e.browsePrev()
	case k.Type == input.KeyDown:
		e.browseNext()
	case k.Type == input.KeyTab:
		e.openPopup()
	case k.Ctrl && k.Rune == 'a':
		e.buf.Home()
	case k.Ctrl && k.Rune == 'u':
		e.buf.KillToStart()
	case k.Ctrl && k.Rune == 'k':
		e.buf.KillToEnd()
	case k.Ctrl && k.Rune == 'w':
		e.buf.DeleteWordBack()
	case k.Ctrl && k.Rune == 'v':
		e.pasteClipboard()
	case k.Type == input.KeyRune && !k.Ctrl:
		e.buf.InsertRune(k.Rune)
		e.maybeRefreshPopup()
	default:
		return false
	}
	e.changed()
	return true
}

func (e *Editor) submit() {
	text := strings.TrimSpace(e.buf.Text())
	if text == "" || e.disabled {
		return
	}
	e.history.Add(text)
	e.buf.Clear()
	e.closePopup()
	if e.OnSubmit != nil {
		e.OnSubmit(text)
	}
}

func (e *Editor) browsePrev() {
	if text, ok := e.history.Prev(e.buf.Text()); ok {
		e.buf.SetText(text)
	}
}

func (e *Editor) browseNext() {
	if text, ok := e.history.Next(); ok {
		e.buf.SetText(text)
	}
}

func (e *Editor) pasteClipboard() {
	text, err := clipboard.ReadAll()
	if err != nil {
		e.log.Debugf("clipboard read failed: %v", err)
		return
	}
	e.buf.Insert(text)
}

func (e *Editor) changed() {
	if e.OnChange != nil {
		e.OnChange()
	}
}

// --- Autocomplete popup ---

type completionPopup struct {
	items    []string
	selected int
}

func (e *Editor) openPopup() {
	if e.CompleteFunc == nil {
		return
	}
	prefix := e.buf.CurrentWord()
	candidates := e.CompleteFunc(prefix)
	items := rankCompletions(prefix, candidates)
	if len(items) == 0 {
		return
	}
	e.popup = &completionPopup{items: items}
}

// maybeRefreshPopup re-ranks the open popup as the user keeps typing.
func (e *Editor) maybeRefreshPopup() {
	if e.popup == nil || e.CompleteFunc == nil {
		return
	}
	prefix := e.buf.CurrentWord()
	items := rankCompletions(prefix, e.CompleteFunc(prefix))
	if len(items) == 0 {
		e.closePopup()
		return
	}
	e.popup = &completionPopup{items: items}
}

func (e *Editor) closePopup() { e.popup = nil }

func (e *Editor) handlePopupKey(k input.Key) bool {
	p := e.popup
	switch k.Type {
	case input.KeyUp:
		if p.selected > 0 {
			p.selected--
		}
		return true
	case input.KeyDown:
		if p.selected < len(p.items)-1 {
			p.selected++
		}
		return true
	case input.KeyTab, input.KeyEnter:
		e.buf.ReplaceCurrentWord(p.items[p.selected])
		e.closePopup()
		return true
	case input.KeyEsc:
		e.closePopup()
		return true
	}
	return false
}

// rankCompletions fuzzy-ranks candidates against the prefix; an empty
// prefix keeps the caller's order.
func rankCompletions(prefix string, candidates []string) []string {
	if prefix == "" {
		return candidates
	}
	matches := fuzzy.Find(prefix, candidates)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, candidates[m.Index])
	}
	return out
}

// --- Rendering ---

// Render draws the prompt, wrapped buffer content with a visible
// cursor cell, and the completion popup beneath it.
func (e *Editor) Render(width int) []render.Line {
	wrapWidth := width - 2
	if wrapWidth < 4 {
		wrapWidth = 4
	}

	var out []render.Line
	if e.buf.Empty() {
		out = append(out, render.Line{Spans: []render.Span{
			{Text: "> ", Style: promptStyle},
			{Text: " ", Style: cursorStyle},
			{Text: e.placeholder, Style: placeholderStyle},
		}})
	} else {
		out = e.renderBuffer(wrapWidth)
	}

	if e.popup != nil {
		out = append(out, e.renderPopup(wrapWidth)...)
	}
	return out
}

func (e *Editor) renderBuffer(wrapWidth int) []render.Line {
	lines, curRow, curCol := e.buf.Lines()
	style := lipgloss.Style{}
	if e.disabled {
		style = disabledStyle
	}

	var out []render.Line
	for i, logical := range lines {
		chunks, cursorChunk, cursorIn := chunkLine(logical, wrapWidth, i == curRow, curCol)
		for j, chunk := range chunks {
			prefix := render.Span{Text: "  "}
			if i == 0 && j == 0 {
				prefix = render.Span{Text: "> ", Style: promptStyle}
			}
			spans := []render.Span{prefix}
			if i == curRow && j == cursorChunk {
				spans = append(spans, cursorSpans(chunk, cursorIn, style)...)
			} else {
				spans = append(spans, render.Span{Text: chunk, Style: style})
			}
			out = append(out, render.Line{Spans: spans})
		}
	}
	return out
}

// chunkLine hard-wraps one logical line by display width and locates
// which chunk holds the cursor column.
func chunkLine(line string, width int, hasCursor bool, cursorCol int) (chunks []string, cursorChunk, cursorIn int) {
	runes := []rune(line)
	cur := strings.Builder{}
	curWidth := 0
	count := 0
	for idx, r := range runes {
		rw := runewidth.RuneWidth(r)
		if curWidth+rw > width && cur.Len() > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curWidth = 0
			count = 0
		}
		if hasCursor && idx == cursorCol {
			cursorChunk = len(chunks)
			cursorIn = count
		}
		cur.WriteRune(r)
		curWidth += rw
		count++
	}
	chunks = append(chunks, cur.String())
	if hasCursor && cursorCol >= len(runes) {
		cursorChunk = len(chunks) - 1
		cursorIn = count
	}
	return chunks, cursorChunk, cursorIn
}

// cursorSpans splits a chunk so the rune under the cursor renders
// reversed; a cursor past the end renders as a reversed space.
func cursorSpans(chunk string, at int, style lipgloss.Style) []render.Span {
	runes := []rune(chunk)
	if at >= len(runes) {
		return []render.Span{
			{Text: chunk, Style: style},
			{Text: " ", Style: cursorStyle},
		}
	}
	return []render.Span{
		{Text: string(runes[:at]), Style: style},
		{Text: string(runes[at]), Style: cursorStyle},
		{Text: string(runes[at+1:]), Style: style},
	}
}

func (e *Editor) renderPopup(wrapWidth int) []render.Line {
	p := e.popup
	first := 0
	if p.selected >= popupMaxRows {
		first = p.selected - popupMaxRows + 1
	}
	out := []render.Line{}
	for i := first; i < len(p.items) && i < first+popupMaxRows; i++ {
		style := popupStyle
		marker := "  "
		if i == p.selected {
			style = popupSelStyle
			marker = "▸ "
		}
		out = append(out, render.Line{Spans: []render.Span{
			{Text: "  "},
			{Text: marker + render.TruncateToWidth(p.items[i], wrapWidth-4), Style: style},
		}})
	}
	return out
}
