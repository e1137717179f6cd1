package server

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/wfunc/grapeserver/broadcast"
	"github.com/wfunc/grapeserver/game"
	"github.com/wfunc/grapeserver/models"
	"github.com/wfunc/grapeserver/monitor"
	"github.com/wfunc/grapeserver/network"
	"github.com/wfunc/grapeserver/room"
	"github.com/wfunc/grapeserver/session"
)

type sentPacket struct {
	msgID uint16
	data  []byte
}

// MockConnection is a test double for the network.Connection interface.
// It records everything the server sends to this client.
type MockConnection struct {
	sent []sentPacket
}

func (m *MockConnection) Send(msgID uint16, data []byte) error {
	m.sent = append(m.sent, sentPacket{msgID: msgID, data: data})
	return nil
}
func (m *MockConnection) Close() error                         { return nil }
func (m *MockConnection) RemoteAddr() net.Addr                 { return &net.TCPAddr{} }
func (m *MockConnection) SetHeartbeat(interval time.Duration)  {}
func (m *MockConnection) ReadPacket() (*network.Packet, error) { return nil, nil }

func (m *MockConnection) received(msgID uint16) [][]byte {
	var out [][]byte
	for _, p := range m.sent {
		if p.msgID == msgID {
			out = append(out, p.data)
		}
	}
	return out
}

func (m *MockConnection) lastPacket(t *testing.T) sentPacket {
	t.Helper()
	if len(m.sent) == 0 {
		t.Fatal("Expected the client to have received at least one packet")
	}
	return m.sent[len(m.sent)-1]
}

// prometheus 指标只能注册一次，整个测试包共用同一个 Monitor
var testMonitor = monitor.NewMonitor("grapeserver_test")

func newTestServer() *GameServer {
	s := &GameServer{
		roomManager:    room.NewRoomManager(),
		sessionManager: session.NewManager(),
		mon:            testMonitor,
		shutdownChan:   make(chan struct{}),
	}
	s.broadcaster = broadcast.NewRoomBroadcaster(s.roomManager, s.sessionManager)
	s.recorder = &resultSink{mon: testMonitor}
	return s
}

func newTestClient(s *GameServer, id string) (*session.Session, *MockConnection) {
	conn := &MockConnection{}
	sess := session.NewSession(id, conn)
	s.sessionManager.Add(sess)
	return sess, conn
}

func pkt(t *testing.T, v interface{}) *network.Packet {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal payload: %v", err)
	}
	return &network.Packet{Data: data, Length: uint16(len(data))}
}

func TestHandleCreateRoom_ReplyAndRoomExists(t *testing.T) {
	s := newTestServer()
	sessA, connA := newTestClient(s, "conn-a")

	s.handleCreateRoom(sessA, pkt(t, models.CreateRoomRequest{RoomID: "r1", PlayerName: "小明"}))

	last := connA.lastPacket(t)
	if last.msgID != network.MsgTypeRoomCreated {
		t.Fatalf("Expected room-created reply, got msgID %d", last.msgID)
	}
	var created models.RoomCreatedMsg
	if err := json.Unmarshal(last.data, &created); err != nil {
		t.Fatalf("Failed to decode room-created payload: %v", err)
	}
	if created.RoomID != "r1" || created.PlayerRole != game.RoleA || created.PlayerName != "小明" {
		t.Errorf("Unexpected room-created payload: %+v", created)
	}

	// 同名房间再创建: room-exists 单播给第二个发起者
	sessC, connC := newTestClient(s, "conn-c")
	s.handleCreateRoom(sessC, pkt(t, models.CreateRoomRequest{RoomID: "r1", PlayerName: "小刚"}))

	if connC.lastPacket(t).msgID != network.MsgTypeRoomExists {
		t.Fatalf("Expected room-exists reply, got msgID %d", connC.lastPacket(t).msgID)
	}
	if len(connA.received(network.MsgTypeRoomExists)) != 0 {
		t.Error("room-exists must only go to the initiator")
	}
}

func TestHandleJoinRoom_GameStartBroadcast(t *testing.T) {
	s := newTestServer()
	sessA, connA := newTestClient(s, "conn-a")
	sessB, connB := newTestClient(s, "conn-b")

	s.handleCreateRoom(sessA, pkt(t, models.CreateRoomRequest{RoomID: "r1", PlayerName: "小明"}))
	s.handleJoinRoom(sessB, pkt(t, models.JoinRoomRequest{RoomID: "r1", PlayerName: "小红"}))

	// join-success 单播给加入者
	successPayloads := connB.received(network.MsgTypeJoinSuccess)
	if len(successPayloads) != 1 {
		t.Fatalf("Expected exactly one join-success for the joiner, got %d", len(successPayloads))
	}
	var success models.JoinSuccessMsg
	if err := json.Unmarshal(successPayloads[0], &success); err != nil {
		t.Fatalf("Failed to decode join-success payload: %v", err)
	}
	if success.PlayerRole != game.RoleB {
		t.Errorf("Joiner must get role B, got %s", success.PlayerRole)
	}
	if len(connA.received(network.MsgTypeJoinSuccess)) != 0 {
		t.Error("join-success must only go to the joiner")
	}

	// game-start 广播给双方，携带双方昵称
	for name, conn := range map[string]*MockConnection{"creator": connA, "joiner": connB} {
		startPayloads := conn.received(network.MsgTypeGameStart)
		if len(startPayloads) != 1 {
			t.Fatalf("Expected exactly one game-start for the %s, got %d", name, len(startPayloads))
		}
		var start models.GameStartMsg
		if err := json.Unmarshal(startPayloads[0], &start); err != nil {
			t.Fatalf("Failed to decode game-start payload: %v", err)
		}
		if start.PlayerA != "小明" || start.PlayerB != "小红" {
			t.Errorf("Expected game-start names (小明, 小红) for the %s, got (%s, %s)", name, start.PlayerA, start.PlayerB)
		}
	}
}

func TestHandleJoinRoom_Failures(t *testing.T) {
	s := newTestServer()
	sessA, _ := newTestClient(s, "conn-a")
	sessB, _ := newTestClient(s, "conn-b")

	// 房间不存在
	sessX, connX := newTestClient(s, "conn-x")
	s.handleJoinRoom(sessX, pkt(t, models.JoinRoomRequest{RoomID: "missing", PlayerName: "小刚"}))

	last := connX.lastPacket(t)
	if last.msgID != network.MsgTypeJoinFailed {
		t.Fatalf("Expected join-failed reply, got msgID %d", last.msgID)
	}
	var failed models.JoinFailedMsg
	if err := json.Unmarshal(last.data, &failed); err != nil {
		t.Fatalf("Failed to decode join-failed payload: %v", err)
	}
	if failed.Message != "房间不存在" {
		t.Errorf("Expected message 房间不存在, got %s", failed.Message)
	}

	// 房间已满
	s.handleCreateRoom(sessA, pkt(t, models.CreateRoomRequest{RoomID: "r1", PlayerName: "小明"}))
	s.handleJoinRoom(sessB, pkt(t, models.JoinRoomRequest{RoomID: "r1", PlayerName: "小红"}))
	s.handleJoinRoom(sessX, pkt(t, models.JoinRoomRequest{RoomID: "r1", PlayerName: "小刚"}))

	last = connX.lastPacket(t)
	if last.msgID != network.MsgTypeJoinFailed {
		t.Fatalf("Expected join-failed reply for the full room, got msgID %d", last.msgID)
	}
	if err := json.Unmarshal(last.data, &failed); err != nil {
		t.Fatalf("Failed to decode join-failed payload: %v", err)
	}
	if failed.Message != "房间已满" {
		t.Errorf("Expected message 房间已满, got %s", failed.Message)
	}

	// 失败的加入不占座位
	if roomID, _ := sessX.Seat(); roomID != "" {
		t.Error("A failed join must not bind a seat")
	}
}
