// game/interfaces.go
package game

// Player defines the minimal interface for a seated player that a state needs
// to interact with.
type Player interface {
	GetID() string
	GetRole() string
}

// RoomContext defines the interface a Room must implement to be driven by the
// phase machine. This breaks the import cycle between room and game.
type RoomContext interface {
	GetID() string
	Game() *GameState
	ResetGame() *GameState
	ChangeState(newState State) error
	Broadcast(msgID uint16, data []byte) error
	RecordResult(winner, loser string)
}
