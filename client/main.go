package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// 消息ID与 network/protocol.go 保持一致
const (
	MsgTypeCreateRoom = 101
	MsgTypeJoinRoom   = 102
	MsgTypeSetPoison  = 201
	MsgTypePlayerMove = 202
	MsgTypeResetGame  = 203
)

var msgNames = map[uint16]string{
	301: "room-created",
	302: "room-exists",
	303: "join-success",
	304: "join-failed",
	305: "game-start",
	306: "game-state",
	307: "game-ended",
	308: "game-reset",
}

// send formats and sends a message to the WebSocket server.
func send(c *websocket.Conn, msgID uint16, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	packet := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[4:], data)

	return c.WriteMessage(websocket.BinaryMessage, packet)
}

func main() {
	addr := flag.String("addr", "localhost:3000", "server address")
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			if len(message) < 4 {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			msgID := binary.BigEndian.Uint16(message[0:2])
			name := msgNames[msgID]
			if name == "" {
				name = "unknown"
			}
			log.Printf("<- RECV %s (ID: %d): %s", name, msgID, string(message[4:]))
		}
	}()

	log.Println("Commands: create <roomId> <name> | join <roomId> <name> | poison <row> <col> | move <row> <col> | reset")

	var roomID string
	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		default:
			text, _ := reader.ReadString('\n')
			fields := strings.Fields(text)
			if len(fields) == 0 {
				continue
			}

			var err error
			switch fields[0] {
			case "create", "join":
				if len(fields) < 3 {
					log.Println("Usage: create|join <roomId> <name>")
					continue
				}
				roomID = fields[1]
				payload := map[string]string{"roomId": fields[1], "playerName": fields[2]}
				msgID := uint16(MsgTypeCreateRoom)
				if fields[0] == "join" {
					msgID = MsgTypeJoinRoom
				}
				err = send(c, msgID, payload)
			case "poison", "move":
				if len(fields) < 3 || roomID == "" {
					log.Println("Usage (after create/join): poison|move <row> <col>")
					continue
				}
				row, _ := strconv.Atoi(fields[1])
				col, _ := strconv.Atoi(fields[2])
				payload := map[string]interface{}{"roomId": roomID, "row": row, "col": col}
				msgID := uint16(MsgTypeSetPoison)
				if fields[0] == "move" {
					msgID = MsgTypePlayerMove
				}
				err = send(c, msgID, payload)
			case "reset":
				if roomID == "" {
					log.Println("Join a room first")
					continue
				}
				err = send(c, MsgTypeResetGame, map[string]string{"roomId": roomID})
			default:
				log.Printf("Unknown command: %s", fields[0])
				continue
			}

			if err != nil {
				log.Println("Write error:", err)
				return
			}
			log.Printf("-> SENT: %s", fields[0])
		}
	}
}
