// services/record_service.go
package services

import (
	"github.com/wfunc/grapeserver/logger"
	"github.com/wfunc/grapeserver/models"
	"github.com/wfunc/grapeserver/persistence"
)

// RecordService 对局记录服务：终局写库、查询历史与玩家胜负统计
type RecordService struct {
	db persistence.Database
}

func NewRecordService(db persistence.Database) *RecordService {
	return &RecordService{db: db}
}

// RecordGame 实现 room.ResultRecorder。写库放到独立goroutine，
// 不能让数据库延迟阻塞房间的事件处理。
func (s *RecordService) RecordGame(record *models.GameRecord) {
	go func() {
		if err := s.db.SaveGameRecord(record); err != nil {
			logger.Log.Errorf("Failed to save game record for room %s: %v", record.RoomID, err)
			return
		}
		logger.Log.Infof("房间 %s 对局已落库: %s 胜 %s 负", record.RoomID, record.Winner, record.Loser)
	}()
}

// RecentGames 最近 limit 条对局记录
func (s *RecordService) RecentGames(limit int) ([]models.GameRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.db.RecentGameRecords(limit)
}

// PlayerStats 按昵称查询胜负统计
func (s *RecordService) PlayerStats(name string) (*models.PlayerStats, error) {
	return s.db.PlayerStats(name)
}
