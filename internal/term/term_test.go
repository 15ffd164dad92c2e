package term

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/creack/pty"
)

func TestOpenRejectsNonTTY(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	if _, err := Open(r, w); !errors.Is(err, ErrNotTTY) {
		t.Fatalf("Open on pipe: err = %v, want ErrNotTTY", err)
	}
}

func TestAdapterRawModeRoundTrip(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	defer ptmx.Close()
	defer tty.Close()

	a, err := Open(tty, tty)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := a.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Close must be idempotent.
	if err := a.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestSuspendRestoresRawMode(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	defer ptmx.Close()
	defer tty.Close()

	a, err := Open(tty, tty)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := a.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer a.Close()

	ran := false
	if err := a.Suspend(func() error {
		ran = true
		if a.raw {
			t.Errorf("raw mode still active inside Suspend")
		}
		return nil
	}); err != nil {
		t.Fatalf("Suspend: %v", err)
	}
	if !ran {
		t.Fatalf("Suspend did not run fn")
	}
	if !a.raw {
		t.Fatalf("raw mode not restored after Suspend")
	}
}

func TestSuspendPropagatesSubprocessFailure(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	defer ptmx.Close()
	defer tty.Close()

	a, err := Open(tty, tty)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := a.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer a.Close()

	wantErr := errors.New("editor exited 1")
	if err := a.Suspend(func() error { return wantErr }); !errors.Is(err, wantErr) {
		t.Fatalf("Suspend err = %v, want %v", err, wantErr)
	}
	if !a.raw {
		t.Fatalf("raw mode not restored after failing subprocess")
	}
}

func TestScreenWritesAreBufferedUntilFlush(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	defer ptmx.Close()
	defer tty.Close()

	a, err := Open(tty, tty)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	a.MoveCursorUp(2)
	a.ClearLine()
	a.WriteString("hello")
	if a.buf.Len() == 0 {
		t.Fatalf("expected buffered bytes before Flush")
	}
	if err := a.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if a.buf.Len() != 0 {
		t.Fatalf("buffer not drained after Flush")
	}
}

func TestSuspendYieldsInputToSubprocess(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	defer ptmx.Close()
	defer tty.Close()

	a, err := Open(tty, tty)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	// Park a reader on Input the way the key-decoder goroutine does.
	readErr := make(chan error, 1)
	go func() {
		_, err := a.Input().Read(make([]byte, 1))
		readErr <- err
	}()
	time.Sleep(50 * time.Millisecond)

	if err := a.Suspend(func() error {
		// While suspended the subprocess is the only reader: a byte
		// typed now must arrive here, not on the parked Input read.
		if _, err := ptmx.Write([]byte("x")); err != nil {
			return err
		}
		buf := make([]byte, 1)
		n, err := tty.Read(buf)
		if err != nil {
			return err
		}
		if n != 1 || buf[0] != 'x' {
			return errors.New("subprocess did not receive the typed byte")
		}
		return nil
	}); err != nil {
		t.Fatalf("Suspend: %v", err)
	}

	select {
	case err := <-readErr:
		if !errors.Is(err, ErrInputCanceled) {
			t.Fatalf("parked Input read err = %v, want ErrInputCanceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("parked Input read survived the suspension")
	}

	// The rebuilt reader delivers input again after the handoff.
	if _, err := ptmx.Write([]byte("y")); err != nil {
		t.Fatalf("write after resume: %v", err)
	}
	buf := make([]byte, 1)
	if _, err := a.Input().Read(buf); err != nil || buf[0] != 'y' {
		t.Fatalf("read after resume: %q, %v", buf, err)
	}
}

func TestWindowTitlePushedAndPopped(t *testing.T) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		t.Skipf("pty unavailable: %v", err)
	}
	defer ptmx.Close()
	defer tty.Close()

	a, err := Open(tty, tty)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	a.SetWindowTitle("lumen")
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	out := make([]byte, 0, 256)
	buf := make([]byte, 64)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		n, err := ptmx.Read(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}
		if err != nil {
			break
		}
		got := string(out)
		if strings.Contains(got, "\x1b[22;0t") &&
			strings.Contains(got, "lumen") &&
			strings.Contains(got, "\x1b[23;0t") {
			return
		}
	}
	t.Fatalf("title push/set/pop not observed in output: %q", out)
}
