package push

import (
	"fmt"
	"testing"
)

type mockConn struct {
	sent    []any
	failErr error
}

func (m *mockConn) WriteJSON(v any) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.sent = append(m.sent, v)
	return nil
}

func TestSendToUnknownUserIsNoOp(t *testing.T) {
	r := NewRegistry()
	// Must not panic or block.
	r.Send(map[string]string{"type": "test"}, "nobody")
}

func TestSendFanOut(t *testing.T) {
	r := NewRegistry()
	conn1 := &mockConn{}
	conn2 := &mockConn{}
	r.Connect(conn1, "user-1")
	r.Connect(conn2, "user-1")

	r.Send("hello", "user-1")

	if len(conn1.sent) != 1 {
		t.Errorf("Expected 1 message on conn1, got %d", len(conn1.sent))
	}
	if len(conn2.sent) != 1 {
		t.Errorf("Expected 1 message on conn2, got %d", len(conn2.sent))
	}
}

func TestSendSurvivesFailingConnection(t *testing.T) {
	r := NewRegistry()
	failing := &mockConn{failErr: fmt.Errorf("connection closed")}
	healthy := &mockConn{}
	r.Connect(failing, "user-1")
	r.Connect(healthy, "user-1")

	r.Send("hello", "user-1")

	if len(healthy.sent) != 1 {
		t.Errorf("Expected delivery to healthy connection, got %d messages", len(healthy.sent))
	}
	if r.CountForUser("user-1") != 1 {
		t.Errorf("Expected failing connection to be dropped, have %d connections", r.CountForUser("user-1"))
	}
}

func TestDisconnect(t *testing.T) {
	r := NewRegistry()
	conn1 := &mockConn{}
	conn2 := &mockConn{}
	r.Connect(conn1, "user-1")
	r.Connect(conn2, "user-1")

	r.Disconnect(conn1, "user-1")
	if r.CountForUser("user-1") != 1 {
		t.Errorf("Expected 1 connection after disconnect, got %d", r.CountForUser("user-1"))
	}

	r.Disconnect(conn2, "user-1")
	if r.CountForUser("user-1") != 0 {
		t.Errorf("Expected 0 connections after disconnecting all, got %d", r.CountForUser("user-1"))
	}

	// Disconnecting an absent connection is a no-op.
	r.Disconnect(conn1, "user-1")
	r.Disconnect(conn1, "unknown-user")
}

func TestConcurrentConnectDisconnect(t *testing.T) {
	r := NewRegistry()
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			conn := &mockConn{}
			r.Connect(conn, "user-1")
			r.Send("msg", "user-1")
			r.Disconnect(conn, "user-1")
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
	if r.CountForUser("user-1") != 0 {
		t.Errorf("Expected 0 connections after all goroutines finished, got %d", r.CountForUser("user-1"))
	}
}
