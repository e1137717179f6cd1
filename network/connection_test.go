package network

import (
	"encoding/binary"
	"testing"
)

func TestEncodePacket(t *testing.T) {
	data := []byte(`{"roomId":"r1"}`)
	packet := EncodePacket(MsgTypeJoinRoom, data)

	if len(packet) != 4+len(data) {
		t.Fatalf("Expected packet length %d, got %d", 4+len(data), len(packet))
	}
	if got := binary.BigEndian.Uint16(packet[0:2]); got != MsgTypeJoinRoom {
		t.Errorf("Expected msgID %d, got %d", MsgTypeJoinRoom, got)
	}
	if got := binary.BigEndian.Uint16(packet[2:4]); got != uint16(len(data)) {
		t.Errorf("Expected length %d, got %d", len(data), got)
	}
	if string(packet[4:]) != string(data) {
		t.Error("Payload mismatch")
	}
}

func TestEncodePacket_Empty(t *testing.T) {
	packet := EncodePacket(MsgTypeHeartbeat, nil)

	if len(packet) != 4 {
		t.Fatalf("Expected 4-byte header only, got %d bytes", len(packet))
	}
	if got := binary.BigEndian.Uint16(packet[2:4]); got != 0 {
		t.Errorf("Expected zero length, got %d", got)
	}
}
