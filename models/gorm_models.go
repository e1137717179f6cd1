// models/gorm_models.go
package models

import (
	"gorm.io/gorm"
)

// GormGameRecord 对局记录表
type GormGameRecord struct {
	gorm.Model
	RoomID     string `gorm:"index;not null"`
	GameType   string `gorm:"not null"`
	Winner     string `gorm:"not null"` // 角色: A/B
	Loser      string `gorm:"not null"`
	WinnerName string `gorm:"index"`
	LoserName  string `gorm:"index"`
	PoisonARow int
	PoisonACol int
	PoisonBRow int
	PoisonBCol int
	Moves      int `gorm:"default:0"`
	Duration   int `gorm:"default:0"` // 对局时长(秒)
}

// ToRecord 转换为通用记录模型
func (r *GormGameRecord) ToRecord() GameRecord {
	return GameRecord{
		RoomID:     r.RoomID,
		GameType:   r.GameType,
		Winner:     r.Winner,
		Loser:      r.Loser,
		WinnerName: r.WinnerName,
		LoserName:  r.LoserName,
		PoisonA:    Cell{Row: r.PoisonARow, Col: r.PoisonACol},
		PoisonB:    Cell{Row: r.PoisonBRow, Col: r.PoisonBCol},
		Moves:      r.Moves,
		Duration:   r.Duration,
		CreatedAt:  r.CreatedAt,
	}
}

// FromRecord 从通用记录模型构造
func FromRecord(rec *GameRecord) *GormGameRecord {
	return &GormGameRecord{
		RoomID:     rec.RoomID,
		GameType:   rec.GameType,
		Winner:     rec.Winner,
		Loser:      rec.Loser,
		WinnerName: rec.WinnerName,
		LoserName:  rec.LoserName,
		PoisonARow: rec.PoisonA.Row,
		PoisonACol: rec.PoisonA.Col,
		PoisonBRow: rec.PoisonB.Row,
		PoisonBCol: rec.PoisonB.Col,
		Moves:      rec.Moves,
		Duration:   rec.Duration,
	}
}
