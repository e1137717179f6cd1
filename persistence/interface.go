// persistence/interface.go
package persistence

import (
	"github.com/wfunc/grapeserver/models"
)

// Database 对局记录存储接口。只存已结束对局的历史，
// 不存活跃房间状态（进程重启即丢失所有房间，属设计内行为）。
type Database interface {
	SaveGameRecord(record *models.GameRecord) error
	RecentGameRecords(limit int) ([]models.GameRecord, error)
	PlayerStats(name string) (*models.PlayerStats, error)
	Close() error
}
