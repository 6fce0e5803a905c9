package ircclient

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"
)

// mockServer is a loopback chat server for session tests.
//
// Every line a client sends is recorded and passed to handler, whose return
// lines are written back to the same client. Tests can also push lines to
// all connected clients.
type mockServer struct {
	listener net.Listener

	// handler returns the lines to send back for a received line, without
	// terminators. A nil handler never replies.
	handler func(line string) []string

	mu          sync.Mutex
	connections []net.Conn
	received    []string

	// arrived is signalled after each received line.
	arrived chan struct{}

	wg sync.WaitGroup
}

// startMockServer listens on an ephemeral loopback port. The server is
// stopped when the test finishes.
func startMockServer(t *testing.T, handler func(line string) []string) *mockServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to create mock server listener: %v", err)
	}

	ms := &mockServer{
		listener: listener,
		handler:  handler,
		arrived:  make(chan struct{}, 1),
	}

	ms.wg.Add(1)
	go ms.acceptLoop()

	t.Cleanup(ms.stop)
	return ms
}

// port returns the port the server listens on.
func (ms *mockServer) port() int {
	return ms.listener.Addr().(*net.TCPAddr).Port
}

func (ms *mockServer) acceptLoop() {
	defer ms.wg.Done()

	for {
		conn, err := ms.listener.Accept()
		if err != nil {
			return
		}

		ms.mu.Lock()
		ms.connections = append(ms.connections, conn)
		ms.mu.Unlock()

		ms.wg.Add(1)
		go ms.handleConnection(conn)
	}
}

func (ms *mockServer) handleConnection(conn net.Conn) {
	defer ms.wg.Done()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")

		ms.mu.Lock()
		ms.received = append(ms.received, line)
		ms.mu.Unlock()

		select {
		case ms.arrived <- struct{}{}:
		default:
		}

		if ms.handler == nil {
			continue
		}
		for _, reply := range ms.handler(line) {
			fmt.Fprint(conn, reply+"\r\n")
		}
	}
}

// push writes line to every connected client.
func (ms *mockServer) push(line string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for _, conn := range ms.connections {
		fmt.Fprint(conn, line+"\r\n")
	}
}

// dropClients closes every client connection from the server side.
func (ms *mockServer) dropClients() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	for _, conn := range ms.connections {
		conn.Close()
	}
	ms.connections = nil
}

// lines returns a copy of every line received so far.
func (ms *mockServer) lines() []string {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return append([]string(nil), ms.received...)
}

// waitForLines blocks until at least n lines arrived and returns them.
func (ms *mockServer) waitForLines(t *testing.T, n int) []string {
	t.Helper()

	deadline := time.After(3 * time.Second)
	for {
		if got := ms.lines(); len(got) >= n {
			return got
		}
		select {
		case <-ms.arrived:
		case <-time.After(10 * time.Millisecond):
		case <-deadline:
			t.Fatalf("timed out waiting for %d lines, got %q", n, ms.lines())
		}
	}
}

// waitForLine blocks until a received line satisfies match.
func (ms *mockServer) waitForLine(t *testing.T, match func(string) bool) string {
	t.Helper()

	deadline := time.After(3 * time.Second)
	for {
		for _, line := range ms.lines() {
			if match(line) {
				return line
			}
		}
		select {
		case <-ms.arrived:
		case <-time.After(10 * time.Millisecond):
		case <-deadline:
			t.Fatalf("timed out waiting for a matching line, got %q", ms.lines())
		}
	}
}

func (ms *mockServer) stop() {
	ms.listener.Close()
	ms.dropClients()
	ms.wg.Wait()
}
