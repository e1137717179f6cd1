package network

// 客户端 -> 服务端
const (
	MsgTypeHeartbeat  = 1
	MsgTypeCreateRoom = 101
	MsgTypeJoinRoom   = 102
	MsgTypeSetPoison  = 201
	MsgTypePlayerMove = 202
	MsgTypeResetGame  = 203
)

// 服务端 -> 客户端
const (
	MsgTypeRoomCreated = 301
	MsgTypeRoomExists  = 302
	MsgTypeJoinSuccess = 303
	MsgTypeJoinFailed  = 304
	MsgTypeGameStart   = 305
	MsgTypeGameState   = 306
	MsgTypeGameEnded   = 307
	MsgTypeGameReset   = 308
)
