package entity

import (
	"math"

	"github.com/annel0/voxel4d/internal/physics"
	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world/block"
)

// Физические константы
const (
	Gravity     = -20.0 // блоков/с²
	WalkSpeed   = 4.3   // блоков/с
	JumpImpulse = 8.0   // начальная вертикальная скорость прыжка

	inputThreshold = 1e-4
	groundSkin     = 1e-6
)

// WorldView даёт физике доступ к материалам мира.
// Пакет entity не зависит от пакета world.
type WorldView interface {
	GetBlockID(pos vec.Vec4Int) block.BlockID
}

// Collides проверяет, задевает ли хитбокс в позиции pos занятую клетку
func Collides(view WorldView, pos, size vec.Vec4) bool {
	return !physics.CanOccupy(physics.BoxAt(pos, size), func(cell vec.Vec4Int) bool {
		return block.IsOccupied(view.GetBlockID(cell))
	})
}

// Step продвигает сущность на dt секунд: гравитация, проверка земли, перемещение
func Step(view WorldView, e *Entity, dt float64) {
	if e.Gravity && !e.OnGround {
		e.Velocity.Y += Gravity * dt
	}

	disp := e.Velocity.Mul(dt)

	if e.Gravity && e.Velocity.Y <= 0 {
		candY := e.Position.Y + disp.Y
		if layer, hit := groundBelow(view, e, e.Position.Y, candY); hit {
			e.Position.Y = float64(layer + 1)
			e.Velocity.Y = 0
			disp.Y = 0
			e.OnGround = true
		} else {
			e.OnGround = false
		}
	} else {
		e.OnGround = false
	}

	// Выпавшие предметы не скользят по земле
	if e.Type == EntityTypeItem && e.OnGround {
		e.Velocity.X, e.Velocity.Z, e.Velocity.W = 0, 0, 0
		disp.X, disp.Z, disp.W = 0, 0, 0
	}

	Move(view, e, disp)
	e.Age += dt
}

// StepPlayer применяет ввод игрока и продвигает его физику
func StepPlayer(view WorldView, p *Player, dt float64) {
	dir := p.Input.Direction()
	if dir.LengthSquared() > inputThreshold {
		walk := dir.Normalized().Mul(WalkSpeed)
		p.Velocity.X, p.Velocity.Z, p.Velocity.W = walk.X, walk.Z, walk.W
	} else {
		p.Velocity.X, p.Velocity.Z, p.Velocity.W = 0, 0, 0
	}

	if p.Input.Jump && p.OnGround {
		p.Velocity.Y = JumpImpulse
		p.OnGround = false
	}
	// Прыжок срабатывает один раз на выборку ввода
	p.Input.Jump = false

	Step(view, p.Entity, dt)
}

// groundBelow ищет непустой блок под всей площадью хитбокса на пути ног
// от fromY до candY. Проверяются все слои, чья верхняя грань лежит между
// ними, поэтому быстрое падение не проскакивает сквозь пол.
func groundBelow(view WorldView, e *Entity, fromY, candY float64) (int, bool) {
	top := int(math.Floor(fromY - 1 + groundSkin))
	bottom := int(math.Floor(candY - groundSkin))

	for layer := top; layer >= bottom; layer-- {
		footprint := physics.BoxAt(
			vec.Vec4{X: e.Position.X, Y: float64(layer), Z: e.Position.Z, W: e.Position.W},
			vec.Vec4{X: e.Size.X, Y: 1, Z: e.Size.Z, W: e.Size.W},
		)
		blocked := !physics.CellsSpanned(footprint, func(cell vec.Vec4Int) bool {
			return view.GetBlockID(cell) == block.AirBlockID
		})
		if blocked {
			return layer, true
		}
	}
	return 0, false
}

// Move пытается сместить сущность на disp. Если полный сдвиг невозможен,
// по очереди пробуются скольжения без X, Y, Z и W. Возвращает false,
// если ни один вариант не подошёл.
func Move(view WorldView, e *Entity, disp vec.Vec4) bool {
	if disp.LengthSquared() == 0 {
		return true
	}

	candidates := [5]vec.Vec4{
		disp,
		{Y: disp.Y, Z: disp.Z, W: disp.W},
		{X: disp.X, Z: disp.Z, W: disp.W},
		{X: disp.X, Y: disp.Y, W: disp.W},
		{X: disp.X, Y: disp.Y, Z: disp.Z},
	}

	for i, c := range candidates {
		if c.LengthSquared() == 0 {
			continue
		}
		if Collides(view, e.Position.Add(c), e.Size) {
			continue
		}
		e.Position = e.Position.Add(c)
		// Упёрлись по оси — гасим скорость по ней
		switch i {
		case 1:
			e.Velocity.X = 0
		case 2:
			e.Velocity.Y = 0
		case 3:
			e.Velocity.Z = 0
		case 4:
			e.Velocity.W = 0
		}
		return true
	}
	return false
}
