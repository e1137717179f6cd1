package game

import (
	"time"

	"github.com/wfunc/grapeserver/models"
)

// BoardSize 棋盘边长
const BoardSize = 5

const (
	RoleA = "A"
	RoleB = "B"
)

// OtherRole 返回对方角色
func OtherRole(role string) string {
	if role == RoleA {
		return RoleB
	}
	return RoleA
}

// InBounds 服务端坐标范围校验
func InBounds(cell models.Cell) bool {
	return cell.Row >= 0 && cell.Row < BoardSize && cell.Col >= 0 && cell.Col < BoardSize
}

// GameState 单个房间的对局数据。只被当前阶段状态修改，
// 重置时整体替换而不是逐字段清理。
type GameState struct {
	Board         [BoardSize][BoardSize]bool
	PoisonA       *models.Cell
	PoisonB       *models.Cell
	CurrentPlayer string
	SelectedCells []models.Cell
	StartedAt     time.Time
}

func NewGameState() *GameState {
	return &GameState{
		CurrentPlayer: RoleA,
		SelectedCells: make([]models.Cell, 0),
		StartedAt:     time.Now(),
	}
}

// Selected 该格是否已被采摘过
func (g *GameState) Selected(cell models.Cell) bool {
	for _, c := range g.SelectedCells {
		if c.Row == cell.Row && c.Col == cell.Col {
			return true
		}
	}
	return false
}

// Select 记录一次采摘。调用方保证坐标合法且未重复。
func (g *GameState) Select(cell models.Cell) {
	g.Board[cell.Row][cell.Col] = true
	g.SelectedCells = append(g.SelectedCells, cell)
}

// IsPoison 该格是否踩中任意一方的毒葡萄
func (g *GameState) IsPoison(cell models.Cell) bool {
	if g.PoisonA != nil && g.PoisonA.Row == cell.Row && g.PoisonA.Col == cell.Col {
		return true
	}
	if g.PoisonB != nil && g.PoisonB.Row == cell.Row && g.PoisonB.Col == cell.Col {
		return true
	}
	return false
}

// PublicCells 返回已采摘格子的副本，供广播使用
func (g *GameState) PublicCells() []models.Cell {
	cells := make([]models.Cell, len(g.SelectedCells))
	copy(cells, g.SelectedCells)
	return cells
}
