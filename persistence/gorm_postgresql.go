// persistence/gorm_postgresql.go
package persistence

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wfunc/grapeserver/models"
)

// GormPostgreSQL 使用GORM的PostgreSQL实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建GORM PostgreSQL数据库连接
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	// 配置GORM日志
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,   // 慢SQL阈值
			LogLevel:      logger.Silent, // 日志级别
			Colorful:      false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 自动迁移表结构
	if err := db.AutoMigrate(&models.GormGameRecord{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

// SaveGameRecord 保存一条对局记录
func (p *GormPostgreSQL) SaveGameRecord(record *models.GameRecord) error {
	return p.db.Create(models.FromRecord(record)).Error
}

// RecentGameRecords 最近的对局记录，按时间倒序
func (p *GormPostgreSQL) RecentGameRecords(limit int) ([]models.GameRecord, error) {
	var rows []models.GormGameRecord
	if err := p.db.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]models.GameRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].ToRecord())
	}
	return records, nil
}

// PlayerStats 按昵称聚合胜负。用事务保证两次计数读的是同一快照。
func (p *GormPostgreSQL) PlayerStats(name string) (*models.PlayerStats, error) {
	stats := &models.PlayerStats{Name: name}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		var wins, losses int64
		if err := tx.Model(&models.GormGameRecord{}).Where("winner_name = ?", name).Count(&wins).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.GormGameRecord{}).Where("loser_name = ?", name).Count(&losses).Error; err != nil {
			return err
		}
		stats.Wins = int(wins)
		stats.Losses = int(losses)
		stats.TotalGames = int(wins + losses)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Close 关闭数据库连接
func (p *GormPostgreSQL) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
