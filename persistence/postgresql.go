// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// PostgreSQL 驱动
	_ "github.com/lib/pq"

	"github.com/wfunc/grapeserver/models"
)

// PostgreSQL 原生 database/sql + lib/pq 实现
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	// 设置连接池参数
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	// 初始化表结构
	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

// initTables 初始化数据库表结构
func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS game_records (
            id SERIAL PRIMARY KEY,
            room_id VARCHAR(255) NOT NULL,
            game_type VARCHAR(100) NOT NULL,
            winner VARCHAR(8) NOT NULL,
            loser VARCHAR(8) NOT NULL,
            winner_name VARCHAR(255),
            loser_name VARCHAR(255),
            poison_a_row INT NOT NULL,
            poison_a_col INT NOT NULL,
            poison_b_row INT NOT NULL,
            poison_b_col INT NOT NULL,
            moves INT DEFAULT 0,
            duration INT DEFAULT 0,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_game_records_room ON game_records(room_id)`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_game_records_names ON game_records(winner_name, loser_name)`)
	return err
}

// SaveGameRecord 保存一条对局记录
func (p *PostgreSQL) SaveGameRecord(record *models.GameRecord) error {
	_, err := p.db.Exec(`
        INSERT INTO game_records
            (room_id, game_type, winner, loser, winner_name, loser_name,
             poison_a_row, poison_a_col, poison_b_row, poison_b_col, moves, duration)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `,
		record.RoomID, record.GameType, record.Winner, record.Loser,
		record.WinnerName, record.LoserName,
		record.PoisonA.Row, record.PoisonA.Col, record.PoisonB.Row, record.PoisonB.Col,
		record.Moves, record.Duration,
	)
	return err
}

// RecentGameRecords 最近的对局记录，按时间倒序
func (p *PostgreSQL) RecentGameRecords(limit int) ([]models.GameRecord, error) {
	rows, err := p.db.Query(`
        SELECT room_id, game_type, winner, loser, winner_name, loser_name,
               poison_a_row, poison_a_col, poison_b_row, poison_b_col,
               moves, duration, created_at
        FROM game_records
        ORDER BY created_at DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.GameRecord
	for rows.Next() {
		var rec models.GameRecord
		var winnerName, loserName sql.NullString
		if err := rows.Scan(
			&rec.RoomID, &rec.GameType, &rec.Winner, &rec.Loser,
			&winnerName, &loserName,
			&rec.PoisonA.Row, &rec.PoisonA.Col, &rec.PoisonB.Row, &rec.PoisonB.Col,
			&rec.Moves, &rec.Duration, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		rec.WinnerName = winnerName.String
		rec.LoserName = loserName.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// PlayerStats 按昵称聚合胜负
func (p *PostgreSQL) PlayerStats(name string) (*models.PlayerStats, error) {
	stats := &models.PlayerStats{Name: name}

	err := p.db.QueryRow(`
        SELECT
            COUNT(*) FILTER (WHERE winner_name = $1),
            COUNT(*) FILTER (WHERE loser_name = $1)
        FROM game_records
        WHERE winner_name = $1 OR loser_name = $1
    `, name).Scan(&stats.Wins, &stats.Losses)
	if err != nil {
		return nil, err
	}

	stats.TotalGames = stats.Wins + stats.Losses
	return stats, nil
}

// Close 关闭数据库连接
func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
