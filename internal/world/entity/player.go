package entity

import (
	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world/block"
)

// MaxHealth — максимальное здоровье игрока
const MaxHealth = 20

// Input — флаги движения, выставляемые один раз за выборку ввода
type Input struct {
	Left    bool // -X
	Right   bool // +X
	Forward bool // +Z
	Back    bool // -Z
	Up      bool // +W
	Down    bool // -W
	Jump    bool
}

// Direction складывает флаги в вектор направления (Y не используется)
func (in Input) Direction() vec.Vec4 {
	var d vec.Vec4
	if in.Right {
		d.X++
	}
	if in.Left {
		d.X--
	}
	if in.Forward {
		d.Z++
	}
	if in.Back {
		d.Z--
	}
	if in.Up {
		d.W++
	}
	if in.Down {
		d.W--
	}
	return d
}

// Player представляет игрока
type Player struct {
	*Entity
	Username  string
	Inventory Inventory
	Selected  int // слот хотбара 0..8
	Health    int
	Input     Input
}

// NewPlayer создаёт игрока с полным здоровьем
func NewPlayer(id uint64, username string, position vec.Vec4) *Player {
	return &Player{
		Entity:   NewEntity(id, EntityTypePlayer, position),
		Username: username,
		Health:   MaxHealth,
	}
}

// Select выбирает слот хотбара
func (p *Player) Select(slot int) bool {
	if slot < 0 || slot >= HotbarSize {
		return false
	}
	p.Selected = slot
	return true
}

// SelectedStack возвращает выбранный слот хотбара
func (p *Player) SelectedStack() *block.ItemStack {
	return &p.Inventory.Slots[p.Selected]
}

// Damage наносит урон; возвращает true, если игрок погиб
func (p *Player) Damage(n int) bool {
	if n < 0 {
		return p.Health == 0
	}
	p.Health = max(p.Health-n, 0)
	return p.Health == 0
}

// Heal восстанавливает здоровье, не выше MaxHealth
func (p *Player) Heal(n int) {
	if n < 0 {
		return
	}
	p.Health = min(p.Health+n, MaxHealth)
}

// IsDead проверяет, погиб ли игрок
func (p *Player) IsDead() bool {
	return p.Health <= 0
}
