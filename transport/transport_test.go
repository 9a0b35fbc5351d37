package transport

import (
	"testing"
	"time"

	"mcpmon/fault"
)

func kindOf(t *testing.T, err error) fault.Kind {
	t.Helper()
	kind, ok := fault.KindOf(err)
	if !ok {
		t.Fatalf("expected a classified failure, got %v", err)
	}
	return kind
}

// cat echoes stdin to stdout line by line — a perfect loopback peer.
func connectCat(t *testing.T) *Transport {
	t.Helper()
	tr := New("cat")
	if err := tr.Connect(); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	t.Cleanup(func() { tr.Disconnect() })
	return tr
}

func TestWriteReadRoundTrip(t *testing.T) {
	tr := connectCat(t)

	if err := tr.WriteLine([]byte("hello\n")); err != nil {
		t.Fatalf("WriteLine failed: %v", err)
	}
	line, err := tr.ReadLine(2 * time.Second)
	if err != nil {
		t.Fatalf("ReadLine failed: %v", err)
	}
	if string(line) != "hello" {
		t.Errorf("got %q, want %q (newline stripped)", line, "hello")
	}
}

func TestReadLineTimeoutKeepsTransportAlive(t *testing.T) {
	tr := connectCat(t)

	// Nothing written yet — the deadline must fire.
	_, err := tr.ReadLine(50 * time.Millisecond)
	if kindOf(t, err) != fault.Timeout {
		t.Fatalf("expected Timeout, got %v", err)
	}
	if !tr.IsAlive() {
		t.Fatal("a read timeout must not kill the process")
	}

	// The channel stays usable for the next exchange.
	if err := tr.WriteLine([]byte("still here\n")); err != nil {
		t.Fatalf("WriteLine after timeout failed: %v", err)
	}
	line, err := tr.ReadLine(2 * time.Second)
	if err != nil {
		t.Fatalf("ReadLine after timeout failed: %v", err)
	}
	if string(line) != "still here" {
		t.Errorf("got %q, want %q", line, "still here")
	}
}

func TestNotConnectedBeforeConnect(t *testing.T) {
	tr := New("cat")

	if err := tr.WriteLine([]byte("x\n")); kindOf(t, err) != fault.NotConnected {
		t.Errorf("WriteLine: expected NotConnected, got %v", err)
	}
	if _, err := tr.ReadLine(time.Second); kindOf(t, err) != fault.NotConnected {
		t.Errorf("ReadLine: expected NotConnected, got %v", err)
	}
	if tr.IsAlive() {
		t.Error("never-started transport must not be alive")
	}
}

func TestIsAliveAfterProcessExit(t *testing.T) {
	tr := New("true")
	if err := tr.Connect(); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer tr.Disconnect()

	deadline := time.Now().Add(5 * time.Second)
	for tr.IsAlive() {
		if time.Now().After(deadline) {
			t.Fatal("process never observed as exited")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := tr.WriteLine([]byte("x\n")); kindOf(t, err) != fault.NotConnected {
		t.Errorf("WriteLine on exited process: expected NotConnected, got %v", err)
	}
}

func TestDisconnectIdempotent(t *testing.T) {
	tr := connectCat(t)

	if err := tr.Disconnect(); err != nil {
		t.Fatalf("first Disconnect failed: %v", err)
	}
	if tr.IsAlive() {
		t.Error("transport alive after Disconnect")
	}
	if err := tr.Disconnect(); err != nil {
		t.Errorf("second Disconnect must be a no-op, got %v", err)
	}
}

func TestReconnectAfterDisconnect(t *testing.T) {
	tr := connectCat(t)
	if err := tr.Disconnect(); err != nil {
		t.Fatalf("Disconnect failed: %v", err)
	}

	// The handle was released, so the same transport can spawn again.
	if err := tr.Connect(); err != nil {
		t.Fatalf("reconnect failed: %v", err)
	}
	if err := tr.WriteLine([]byte("again\n")); err != nil {
		t.Fatalf("WriteLine after reconnect failed: %v", err)
	}
	line, err := tr.ReadLine(2 * time.Second)
	if err != nil || string(line) != "again" {
		t.Errorf("round trip after reconnect: %q, %v", line, err)
	}
}

func TestConnectTwiceRejected(t *testing.T) {
	tr := connectCat(t)
	if err := tr.Connect(); err == nil {
		t.Error("second Connect on a live handle must fail")
	}
}

func TestDisconnectWithFloodingChild(t *testing.T) {
	// yes floods stdout far past the pump's buffer. Disconnect must still
	// terminate promptly and release the handle instead of blocking behind
	// a pump stuck on a full channel.
	tr := New("yes")
	if err := tr.Connect(); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	time.Sleep(300 * time.Millisecond) // let the buffer fill

	finished := make(chan error, 1)
	go func() { finished <- tr.Disconnect() }()

	select {
	case err := <-finished:
		if err != nil {
			t.Fatalf("Disconnect failed: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Disconnect hung on a flooding child")
	}
	if tr.IsAlive() {
		t.Error("handle not released after Disconnect")
	}
}

func TestFloodingChildThatExitsIsReaped(t *testing.T) {
	// The child writes more lines than the pump buffers, then exits on its
	// own. The pump must drain to EOF so the process is reaped and IsAlive
	// turns false without anyone calling ReadLine or Disconnect.
	tr := New("sh", "-c", "seq 100")
	if err := tr.Connect(); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer tr.Disconnect()

	deadline := time.Now().Add(5 * time.Second)
	for tr.IsAlive() {
		if time.Now().After(deadline) {
			t.Fatal("exited flooding child was never reaped")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestFloodingChildFirstFramesSurvive(t *testing.T) {
	// Dropping only starts once the buffer is full; the frames already
	// queued stay readable in order.
	tr := New("sh", "-c", "seq 100")
	if err := tr.Connect(); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer tr.Disconnect()

	line, err := tr.ReadLine(2 * time.Second)
	if err != nil {
		t.Fatalf("ReadLine failed: %v", err)
	}
	if string(line) != "1" {
		t.Errorf("first frame: got %q, want %q", line, "1")
	}
}

func TestConnectBadCommand(t *testing.T) {
	tr := New("definitely-not-a-real-binary-mcpmon")
	if err := tr.Connect(); err == nil {
		t.Fatal("expected spawn failure")
	}
	if tr.IsAlive() {
		t.Error("failed spawn must not leave a live handle")
	}
}
