package services

import (
	"testing"
	"time"

	"github.com/wfunc/grapeserver/models"
)

// mockDatabase is a test double for the persistence.Database interface.
type mockDatabase struct {
	saved       chan *models.GameRecord
	recent      []models.GameRecord
	recentLimit int
}

func newMockDatabase() *mockDatabase {
	return &mockDatabase{saved: make(chan *models.GameRecord, 1)}
}

func (m *mockDatabase) SaveGameRecord(record *models.GameRecord) error {
	m.saved <- record
	return nil
}

func (m *mockDatabase) RecentGameRecords(limit int) ([]models.GameRecord, error) {
	m.recentLimit = limit
	return m.recent, nil
}

func (m *mockDatabase) PlayerStats(name string) (*models.PlayerStats, error) {
	return &models.PlayerStats{Name: name, Wins: 3, Losses: 1, TotalGames: 4}, nil
}

func (m *mockDatabase) Close() error { return nil }

func TestRecordService_RecordGame(t *testing.T) {
	db := newMockDatabase()
	svc := NewRecordService(db)

	record := &models.GameRecord{
		RoomID:   "r1",
		GameType: "poison_grape",
		Winner:   "A",
		Loser:    "B",
	}
	svc.RecordGame(record)

	// 落库是异步的
	select {
	case saved := <-db.saved:
		if saved != record {
			t.Error("Expected the same record instance to be saved")
		}
	case <-time.After(time.Second):
		t.Fatal("Record was not saved within 1s")
	}
}

func TestRecordService_RecentGamesDefaultLimit(t *testing.T) {
	db := newMockDatabase()
	svc := NewRecordService(db)

	if _, err := svc.RecentGames(0); err != nil {
		t.Fatalf("RecentGames failed: %v", err)
	}
	if db.recentLimit != 20 {
		t.Errorf("Expected default limit 20, got %d", db.recentLimit)
	}

	if _, err := svc.RecentGames(5); err != nil {
		t.Fatalf("RecentGames failed: %v", err)
	}
	if db.recentLimit != 5 {
		t.Errorf("Expected limit 5, got %d", db.recentLimit)
	}
}

func TestRecordService_PlayerStats(t *testing.T) {
	svc := NewRecordService(newMockDatabase())

	stats, err := svc.PlayerStats("小明")
	if err != nil {
		t.Fatalf("PlayerStats failed: %v", err)
	}
	if stats.Name != "小明" || stats.TotalGames != 4 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}
