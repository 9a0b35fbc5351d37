// Package transport owns the MCP server child process and its line-framed
// stdio channel.
//
// One Transport owns at most one live process. Stdin carries request frames,
// stdout carries response frames, stderr is drained to the logger and never
// parsed. A dedicated goroutine pumps stdout lines into a channel so ReadLine
// can wait with a deadline instead of spinning on the pipe:
//
//	readLoop: stdout ──ReadBytes('\n')──→ lines chan ──select──→ ReadLine(deadline)
package transport

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"mcpmon/fault"
)

// killGrace is how long Disconnect waits after SIGTERM before SIGKILL.
const killGrace = 5 * time.Second

// lineBuffer bounds how many unread response frames the pump holds before it
// stops pulling from stdout.
const lineBuffer = 16

// Transport spawns and owns one MCP server process. The channel is
// single-flight: the owning client issues one request at a time, so frames
// never need to be routed by id here.
//
// Not safe for concurrent WriteLine/ReadLine from multiple goroutines; the
// owning client serializes calls.
type Transport struct {
	name   string
	args   []string
	logger *slog.Logger

	mu    sync.Mutex
	cmd   *exec.Cmd
	stdin io.WriteCloser
	lines chan []byte
	done  chan struct{} // closed by the wait goroutine when the process exits
}

// New prepares a transport for the given server command line. Nothing is
// spawned until Connect.
func New(name string, args ...string) *Transport {
	return &Transport{name: name, args: args, logger: slog.Default()}
}

// SetLogger replaces the logger used for lifecycle events and the stderr
// drain. Call before Connect.
func (t *Transport) SetLogger(logger *slog.Logger) {
	if logger != nil {
		t.logger = logger
	}
}

// Connect spawns the server process with piped stdin, stdout, and stderr,
// and starts the stdout pump and stderr drain.
func (t *Transport) Connect() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.alive() {
		return fmt.Errorf("transport: already connected")
	}

	cmd := exec.Command(t.name, t.args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("transport: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("transport: stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("transport: stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("transport: start %q: %w", t.name, err)
	}

	t.cmd = cmd
	t.stdin = stdin
	t.lines = make(chan []byte, lineBuffer)
	t.done = make(chan struct{})

	pumpDone := make(chan struct{})
	lines := t.lines
	go func() {
		t.readLoop(stdout, lines)
		close(pumpDone)
	}()
	go t.drainStderr(stderr)
	go t.wait(cmd, t.done, pumpDone)

	t.logger.Info("mcp server started", "command", t.name, "pid", cmd.Process.Pid)
	return nil
}

// IsAlive reports whether the handle exists and the process has not exited.
func (t *Transport) IsAlive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.alive()
}

// alive must be called with t.mu held.
func (t *Transport) alive() bool {
	if t.cmd == nil {
		return false
	}
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}

// WriteLine writes one already-framed request to the process's stdin.
func (t *Transport) WriteLine(frame []byte) error {
	t.mu.Lock()
	if !t.alive() {
		t.mu.Unlock()
		return fault.New(fault.NotConnected, "not connected to mcp server")
	}
	stdin := t.stdin
	t.mu.Unlock()

	if _, err := stdin.Write(frame); err != nil {
		return fault.Wrap(fault.NotConnected, err, "write to mcp server")
	}
	return nil
}

// ReadLine returns the next response frame, waiting up to timeout. The frame
// comes back without its trailing newline. A timeout does not disturb the
// process; the next ReadLine keeps waiting for the same frame.
func (t *Transport) ReadLine(timeout time.Duration) ([]byte, error) {
	t.mu.Lock()
	if !t.alive() {
		t.mu.Unlock()
		return nil, fault.New(fault.NotConnected, "not connected to mcp server")
	}
	lines, done := t.lines, t.done
	t.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case line, ok := <-lines:
		if !ok {
			return nil, fault.New(fault.NotConnected, "mcp server closed stdout")
		}
		return line, nil
	case <-done:
		// The process may have flushed a final frame just before exiting.
		select {
		case line, ok := <-lines:
			if ok {
				return line, nil
			}
		default:
		}
		return nil, fault.New(fault.NotConnected, "mcp server exited")
	case <-timer.C:
		return nil, fault.New(fault.Timeout, "no response within %s", timeout)
	}
}

// Disconnect terminates the process: SIGTERM, up to killGrace for a clean
// exit, then SIGKILL. Idempotent; the handle is released on every path.
func (t *Transport) Disconnect() error {
	t.mu.Lock()
	cmd, stdin, done := t.cmd, t.stdin, t.done
	t.cmd, t.stdin, t.lines, t.done = nil, nil, nil, nil
	t.mu.Unlock()

	if cmd == nil {
		return nil
	}
	if stdin != nil {
		stdin.Close()
	}

	select {
	case <-done:
		// Already exited.
	default:
		cmd.Process.Signal(syscall.SIGTERM)
		select {
		case <-done:
		case <-time.After(killGrace):
			t.logger.Warn("mcp server ignored SIGTERM, killing", "command", t.name)
			cmd.Process.Kill()
			<-done
		}
	}

	t.logger.Info("mcp server stopped", "command", t.name)
	return nil
}

// readLoop pumps stdout frames into lines until the pipe closes. It is the
// only reader of stdout, so frame boundaries are never split across readers.
//
// The send must never block: single-flight leaves at most one frame
// legitimately in flight, so a full buffer means the child is flooding
// stdout, not answering. Excess frames are dropped so the pump always
// reaches EOF — a blocked pump would wedge wait and Disconnect behind it.
func (t *Transport) readLoop(stdout io.Reader, lines chan<- []byte) {
	r := bufio.NewReader(stdout)
	for {
		line, err := r.ReadBytes('\n')
		if line = bytes.TrimRight(line, "\r\n"); len(line) > 0 {
			select {
			case lines <- line:
			default:
				t.logger.Debug("mcp server flooding stdout, dropping frame", "bytes", len(line))
			}
		}
		if err != nil {
			close(lines)
			return
		}
	}
}

// drainStderr forwards the server's diagnostic stream to debug logs. The
// content is never parsed.
func (t *Transport) drainStderr(stderr io.Reader) {
	sc := bufio.NewScanner(stderr)
	for sc.Scan() {
		t.logger.Debug("mcp server stderr", "line", sc.Text())
	}
}

// wait reaps the process and marks the handle dead. Wait must not run until
// the stdout pump has drained the pipe, or a final frame could be lost when
// Wait closes the pipe fds.
func (t *Transport) wait(cmd *exec.Cmd, done, pumpDone chan struct{}) {
	<-pumpDone
	err := cmd.Wait()
	close(done)
	if err != nil {
		t.logger.Debug("mcp server exited", "command", t.name, "error", err)
	}
}
