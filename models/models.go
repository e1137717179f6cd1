// models/models.go
package models

import (
	"time"
)

// Cell 棋盘坐标
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// --- 客户端 -> 服务端 消息体 ---

// CreateRoomRequest 创建房间请求
type CreateRoomRequest struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

// JoinRoomRequest 加入房间请求
type JoinRoomRequest struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

// CellRequest 落子/下毒请求
type CellRequest struct {
	RoomID string `json:"roomId"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
}

// ResetRequest 重置游戏请求
type ResetRequest struct {
	RoomID string `json:"roomId"`
}

// --- 服务端 -> 客户端 消息体 ---

// RoomCreatedMsg 创建成功应答（单播给发起者）
type RoomCreatedMsg struct {
	RoomID     string `json:"roomId"`
	PlayerRole string `json:"playerRole"`
	PlayerName string `json:"playerName"`
}

// JoinSuccessMsg 加入成功应答（单播给发起者）
type JoinSuccessMsg struct {
	RoomID     string `json:"roomId"`
	PlayerRole string `json:"playerRole"`
	PlayerName string `json:"playerName"`
}

// JoinFailedMsg 加入失败应答
type JoinFailedMsg struct {
	Message string `json:"message"`
}

// GameStartMsg 双方到齐后的开局广播，携带双方昵称
type GameStartMsg struct {
	PlayerA string `json:"playerA"`
	PlayerB string `json:"playerB"`
}

// GameStateMsg 对局公开视图广播，不含未揭示的毒葡萄坐标
type GameStateMsg struct {
	CurrentPlayer string `json:"currentPlayer"`
	GamePhase     string `json:"gamePhase"`
	SelectedCells []Cell `json:"selectedCells"`
	Message       string `json:"message"`
	PlayerAStatus string `json:"playerAStatus"`
	PlayerBStatus string `json:"playerBStatus"`
}

// GameEndedMsg 终局广播，首次（也是唯一一次）揭示双方毒葡萄
type GameEndedMsg struct {
	Winner  string `json:"winner"`
	Loser   string `json:"loser"`
	PoisonA *Cell  `json:"poisonA"`
	PoisonB *Cell  `json:"poisonB"`
}

// GameResetMsg 重置广播
type GameResetMsg struct {
	Message string `json:"message"`
}

// HealthStatus /health 端点应答
type HealthStatus struct {
	Status      string `json:"status"`
	ActiveRooms int    `json:"activeRooms"`
}

// --- 落库模型 ---

// GameRecord 对局记录
type GameRecord struct {
	RoomID     string    `json:"room_id"`
	GameType   string    `json:"game_type"`
	Winner     string    `json:"winner"` // 角色: A/B
	Loser      string    `json:"loser"`
	WinnerName string    `json:"winner_name"`
	LoserName  string    `json:"loser_name"`
	PoisonA    Cell      `json:"poison_a"`
	PoisonB    Cell      `json:"poison_b"`
	Moves      int       `json:"moves"`
	Duration   int       `json:"duration"` // 对局时长(秒)
	CreatedAt  time.Time `json:"created_at"`
}

// PlayerStats 按昵称聚合的胜负统计
type PlayerStats struct {
	Name       string `json:"name"`
	TotalGames int    `json:"total_games"`
	Wins       int    `json:"wins"`
	Losses     int    `json:"losses"`
}
