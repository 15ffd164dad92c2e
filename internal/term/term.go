// Package term isolates all terminal and process-global state (raw mode,
// resize signals, cursor control) behind an explicitly acquired resource.
// Nothing above this package writes escape sequences directly.
package term

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-isatty"
	"github.com/muesli/cancelreader"
	"github.com/muesli/termenv"

	"lumen-cli/internal/logger"
)

// ErrNotTTY is returned when the output stream is not an interactive
// terminal. Callers degrade to a non-interactive mode instead of failing.
var ErrNotTTY = errors.New("stdout is not a terminal")

// ErrInputCanceled is returned from a pending Input read when the
// adapter yields the terminal (Suspend) or shuts down (Close).
var ErrInputCanceled = cancelreader.ErrCanceled

// Screen 是 Renderer 依赖的最小终端控制面。
// 所有写入先进入缓冲，Flush 时一次性落盘，保证每批重绘只有一次物理写。
type Screen interface {
	Size() (width, height int)
	WriteString(s string)
	MoveCursorUp(n int)
	MoveCursorDown(n int)
	CursorToLineStart()
	HideCursor()
	ShowCursor()
	ClearLine()
	ClearBelow()
	ClearScreen()
	Flush() error
}

// Adapter owns the real terminal. Acquire with Open, release with Close.
type Adapter struct {
	in       *os.File
	out      *os.File
	output   *termenv.Output
	reader   cancelreader.CancelReader
	buf      bytes.Buffer
	rawState *term.State
	resizeCh chan struct{}
	stopCh   chan struct{}
	log      *logger.LogEntry

	mu          sync.Mutex
	raw         bool
	paste       bool
	hidden      bool
	title       string
	titlePushed bool
}

// Open validates that both ends are TTYs and prepares the adapter. It does
// not enter raw mode; call Start for that.
func Open(in, out *os.File) (*Adapter, error) {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	if !isatty.IsTerminal(out.Fd()) && !isatty.IsCygwinTerminal(out.Fd()) {
		return nil, ErrNotTTY
	}
	if !isatty.IsTerminal(in.Fd()) {
		return nil, ErrNotTTY
	}
	a := &Adapter{
		in:       in,
		out:      out,
		output:   termenv.NewOutput(out),
		resizeCh: make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
		log:      logger.Named("term"),
	}
	reader, err := cancelreader.NewReader(in)
	if err != nil {
		a.log.Warnf("input reader not cancelable: %v", err)
	} else {
		a.reader = reader
	}
	return a, nil
}

// Start enters raw mode, enables bracketed paste and begins resize
// notification delivery.
func (a *Adapter) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.raw {
		return nil
	}
	state, err := term.MakeRaw(a.in.Fd())
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}
	a.rawState = state
	a.raw = true
	a.writeDirect(enableBracketedPaste)
	a.paste = true
	notifyResize(a.resizeCh, a.stopCh)
	a.log.Info("raw mode enabled")
	return nil
}

// Close restores cooked mode and any terminal state the adapter changed.
// Safe to call more than once.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	select {
	case <-a.stopCh:
	default:
		close(a.stopCh)
	}
	if a.reader != nil {
		a.reader.Cancel()
	}
	if a.titlePushed {
		a.writeDirect(restoreTitleSeq)
		a.titlePushed = false
	}
	if a.paste {
		a.writeDirect(disableBracketedPaste)
		a.paste = false
	}
	if a.hidden {
		a.writeDirect(showCursorSeq)
		a.hidden = false
	}
	if !a.raw {
		return nil
	}
	a.raw = false
	if err := term.Restore(a.in.Fd(), a.rawState); err != nil {
		return fmt.Errorf("restore terminal: %w", err)
	}
	a.log.Info("raw mode restored")
	return nil
}

// Suspend exits raw mode, cancels any pending Input read and runs fn
// with full terminal control (the external editor path), then re-enters
// raw mode on a fresh input reader. This is the only blocking handoff;
// the subprocess must be the sole reader of stdin while fn runs.
func (a *Adapter) Suspend(fn func() error) error {
	a.mu.Lock()
	wasRaw := a.raw
	a.mu.Unlock()
	if a.reader != nil {
		a.reader.Cancel()
	}
	if wasRaw {
		if err := a.Close(); err != nil {
			return err
		}
		// Close tore down the resize watcher; rebuild before Start.
		a.mu.Lock()
		a.stopCh = make(chan struct{})
		a.mu.Unlock()
	}
	runErr := fn()
	a.resetReader()
	if wasRaw {
		if err := a.Start(); err != nil {
			if runErr != nil {
				return errors.Join(runErr, err)
			}
			return err
		}
		if a.title != "" {
			a.SetWindowTitle(a.title)
		}
	}
	return runErr
}

// resetReader replaces the canceled input reader so the next key-reader
// generation gets a live stream.
func (a *Adapter) resetReader() {
	a.mu.Lock()
	defer a.mu.Unlock()
	reader, err := cancelreader.NewReader(a.in)
	if err != nil {
		a.log.Warnf("rebuild input reader: %v", err)
		a.reader = nil
		return
	}
	a.reader = reader
}

// Input returns the raw byte stream for the input decoder. Reads fail
// with ErrInputCanceled across Suspend; callers re-acquire a reader by
// calling Input again after the handoff.
func (a *Adapter) Input() io.Reader {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.reader != nil {
		return a.reader
	}
	return a.in
}

// Resized delivers a (coalesced) notification per terminal size change.
func (a *Adapter) Resized() <-chan struct{} { return a.resizeCh }

// Size reports the current terminal dimensions, with a conservative
// fallback when the query fails.
func (a *Adapter) Size() (int, int) {
	w, h, err := term.GetSize(a.out.Fd())
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}

// SetWindowTitle pushes the current title on the terminal's title stack
// and sets ours; Close pops the stack so the old title comes back.
func (a *Adapter) SetWindowTitle(title string) {
	if title == "" {
		return
	}
	if !a.titlePushed {
		a.writeDirect(saveTitleSeq)
		a.titlePushed = true
	}
	a.output.SetWindowTitle(title)
	a.title = title
}

// ColorProfile reports the detected color capability for style downgrade.
func (a *Adapter) ColorProfile() termenv.Profile {
	return a.output.EnvColorProfile()
}

// --- Screen implementation (buffered) ---

const (
	enableBracketedPaste  = "\x1b[?2004h"
	disableBracketedPaste = "\x1b[?2004l"
	hideCursorSeq         = "\x1b[?25l"
	showCursorSeq         = "\x1b[?25h"
	saveTitleSeq          = "\x1b[22;0t"
	restoreTitleSeq       = "\x1b[23;0t"
)

func (a *Adapter) WriteString(s string) { a.buf.WriteString(s) }

func (a *Adapter) MoveCursorUp(n int) {
	if n <= 0 {
		return
	}
	fmt.Fprintf(&a.buf, "\x1b[%dA", n)
}

func (a *Adapter) MoveCursorDown(n int) {
	if n <= 0 {
		return
	}
	fmt.Fprintf(&a.buf, "\x1b[%dB", n)
}

func (a *Adapter) CursorToLineStart() { a.buf.WriteString("\r") }

func (a *Adapter) HideCursor() {
	a.buf.WriteString(hideCursorSeq)
	a.hidden = true
}

func (a *Adapter) ShowCursor() {
	a.buf.WriteString(showCursorSeq)
	a.hidden = false
}

func (a *Adapter) ClearLine()   { a.buf.WriteString("\x1b[2K") }
func (a *Adapter) ClearBelow()  { a.buf.WriteString("\x1b[J") }
func (a *Adapter) ClearScreen() { a.buf.WriteString("\x1b[2J\x1b[H") }

// Flush 将本批重绘的全部字节一次写出。
func (a *Adapter) Flush() error {
	if a.buf.Len() == 0 {
		return nil
	}
	_, err := a.out.Write(a.buf.Bytes())
	a.buf.Reset()
	return err
}

func (a *Adapter) writeDirect(s string) {
	_, _ = a.out.WriteString(s)
}
