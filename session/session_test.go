package session

import (
	"net"
	"testing"
	"time"

	"github.com/wfunc/grapeserver/network"
)

// MockConnection is a test double for the network.Connection interface.
type MockConnection struct{}

func (m *MockConnection) Send(msgID uint16, data []byte) error { return nil }
func (m *MockConnection) Close() error                         { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration)  {}
func (m *MockConnection) ReadPacket() (*network.Packet, error) { return nil, nil }

func TestNewManager(t *testing.T) {
	manager := NewManager()
	if manager == nil {
		t.Fatal("NewManager should not return nil")
	}
	if manager.sessions == nil {
		t.Fatal("NewManager should initialize the sessions map")
	}
}

func TestManager_Add_Get_Remove(t *testing.T) {
	manager := NewManager()
	sess := NewSession("test_session_1", &MockConnection{})

	manager.Add(sess)
	if manager.Count() != 1 {
		t.Fatalf("Expected session count to be 1, got %d", manager.Count())
	}

	retrieved, exists := manager.Get("test_session_1")
	if !exists {
		t.Fatal("Get should find the added session")
	}
	if retrieved != sess {
		t.Fatal("Get should return the same session instance")
	}

	manager.Remove("test_session_1")
	if manager.Count() != 0 {
		t.Fatalf("Expected session count to be 0 after removal, got %d", manager.Count())
	}

	if _, exists = manager.Get("test_session_1"); exists {
		t.Fatal("Get should not find the removed session")
	}
}

func TestSession_SeatBinding(t *testing.T) {
	sess := NewSession("s1", &MockConnection{})

	if roomID, role := sess.Seat(); roomID != "" || role != "" {
		t.Fatal("A fresh session must not be seated")
	}

	sess.BindSeat("r1", "A", "小明")

	roomID, role := sess.Seat()
	if roomID != "r1" || role != "A" {
		t.Errorf("Expected seat (r1, A), got (%s, %s)", roomID, role)
	}
	if sess.GetRole() != "A" {
		t.Errorf("Expected role A, got %s", sess.GetRole())
	}
	if sess.GetName() != "小明" {
		t.Errorf("Expected name 小明, got %s", sess.GetName())
	}

	sess.ClearSeat()
	if roomID, role := sess.Seat(); roomID != "" || role != "" {
		t.Error("ClearSeat must remove the binding")
	}
	if sess.GetName() != "小明" {
		t.Error("ClearSeat must not erase the display name")
	}
}

func TestManager_GetByRoom(t *testing.T) {
	manager := NewManager()

	sess1 := NewSession("session1", &MockConnection{})
	sess1.BindSeat("r1", "A", "a")

	sess2 := NewSession("session2", &MockConnection{})
	sess2.BindSeat("r2", "A", "b")

	sess3 := NewSession("session3", &MockConnection{})
	sess3.BindSeat("r1", "B", "c")

	manager.Add(sess1)
	manager.Add(sess2)
	manager.Add(sess3)

	if got := len(manager.GetByRoom("r1")); got != 2 {
		t.Errorf("Expected 2 sessions in r1, got %d", got)
	}
	if got := len(manager.GetByRoom("r2")); got != 1 {
		t.Errorf("Expected 1 session in r2, got %d", got)
	}
	if got := len(manager.GetByRoom("r3")); got != 0 {
		t.Errorf("Expected 0 sessions in r3, got %d", got)
	}
}
