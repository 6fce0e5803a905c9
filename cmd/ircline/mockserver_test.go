// =============================================================================
// mockserver_test.go - Mock Chat Server for Testing
// =============================================================================
//
// A loopback TCP server speaking just enough of the line protocol to drive
// the REPL end to end. Each test supplies a handler that maps a received
// line to the reply lines.
//
// =============================================================================

package main

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"
)

type mockServer struct {
	listener net.Listener

	// handler returns reply lines, without terminators, for a received line.
	handler func(line string) []string

	mu          sync.Mutex
	connections []net.Conn
	received    []string

	wg sync.WaitGroup
}

func startMockServer(t *testing.T, handler func(line string) []string) *mockServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to create mock server listener: %v", err)
	}
	if handler == nil {
		handler = defaultMockHandler
	}

	ms := &mockServer{listener: listener, handler: handler}

	ms.wg.Add(1)
	go ms.acceptLoop()

	t.Cleanup(ms.stop)
	return ms
}

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

		for _, reply := range ms.handler(line) {
			fmt.Fprint(conn, reply+"\r\n")
		}
	}
}

func (ms *mockServer) lines() []string {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return append([]string(nil), ms.received...)
}

// waitForLine blocks until want has been received.
func (ms *mockServer) waitForLine(t *testing.T, want string) {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		for _, l := range ms.lines() {
			if l == want {
				return
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("server never received %q, got %q", want, ms.lines())
}

func (ms *mockServer) stop() {
	ms.listener.Close()

	ms.mu.Lock()
	for _, conn := range ms.connections {
		conn.Close()
	}
	ms.connections = nil
	ms.mu.Unlock()

	ms.wg.Wait()
}

// defaultMockHandler answers the commands the REPL tests use.
func defaultMockHandler(line string) []string {
	switch {
	case strings.HasPrefix(line, "NICK "):
		nick := strings.TrimPrefix(line, "NICK ")
		return []string{":mock 001 " + nick + " :Welcome to the mock network"}
	case strings.HasPrefix(line, "JOIN "):
		channel := strings.TrimPrefix(line, "JOIN ")
		return []string{
			":tester!u@h JOIN " + channel,
			":mock 353 tester = " + channel + " :alice @tester +bob",
			":mock 366 tester " + channel + " :End of /NAMES list.",
		}
	case strings.HasPrefix(line, "NAMES "):
		channel := strings.TrimPrefix(line, "NAMES ")
		return []string{":mock 353 tester = " + channel + " :zoe ~root"}
	case line == "LIST":
		return []string{
			":mock 321 tester Channel :Users  Name",
			":mock 322 tester #go 12 :The Go programming language",
			":mock 322 tester #help 3 :",
			":mock 323 tester :End of /LIST",
		}
	default:
		return nil
	}
}
