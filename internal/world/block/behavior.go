package block

import (
	"math/rand"

	"github.com/annel0/voxel4d/internal/vec"
)

// Capability — набор возможностей материала
type Capability uint16

const (
	CapSolid Capability = 1 << iota
	CapBreakable
	CapTexture
	CapPlaceable
	CapTool
	CapStateful
	CapDisplaceable // мягкий материал, который вода разрушает
	CapLiquid
)

// Has проверяет наличие всех указанных возможностей
func (c Capability) Has(flags Capability) bool {
	return c&flags == flags
}

// ToolType определяет тип инструмента и тип разрушения блока
type ToolType uint8

const (
	ToolNone ToolType = iota
	ToolPickaxe
	ToolAxe
	ToolShovel
)

// Properties — статическая таблица свойств материала
type Properties struct {
	Name          string
	Caps          Capability
	BreakType     ToolType // каким инструментом блок добывается с дропом
	BreakTier     int      // минимальный уровень инструмента (0 — рукой)
	ToolType      ToolType // для инструментов: тип инструмента
	ToolTier      int      // для инструментов: уровень
	MaxDurability int      // для инструментов: прочность
	MaxStack      int      // размер стака, 0 означает 64
}

// StackLimit возвращает максимальный размер стака
func (p Properties) StackLimit() int {
	if p.MaxStack <= 0 {
		return 64
	}
	return p.MaxStack
}

// CanHarvest проверяет, даёт ли разрушение блока этим инструментом дроп
func (p Properties) CanHarvest(tool ItemStack) bool {
	if p.BreakTier == 0 {
		return true
	}
	tp := PropertiesOf(tool.ID)
	if tool.IsEmpty() || !tp.Caps.Has(CapTool) {
		return false
	}
	return tp.ToolType == p.BreakType && tp.ToolTier >= p.BreakTier
}

// BlockBehavior определяет поведение материала
type BlockBehavior interface {
	ID() BlockID
	Name() string
	Properties() Properties
	NeedsTick() bool
	// TickUpdate продвигает состояние блока; возвращает true, если мир изменился
	TickUpdate(api BlockAPI, pos vec.Vec4Int, tick uint64) bool
	OnPlace(api BlockAPI, pos vec.Vec4Int)
	OnBreak(api BlockAPI, pos vec.Vec4Int)
	// CreateState возвращает начальное дополнительное состояние или nil
	CreateState() State
	// Drops возвращает дроп при разрушении указанным инструментом
	Drops(tool ItemStack, rng *rand.Rand) []ItemStack
}

// Вспомогательные запросы к таблице возможностей

func IsSolid(id BlockID) bool        { return PropertiesOf(id).Caps.Has(CapSolid) }
func IsBreakable(id BlockID) bool    { return PropertiesOf(id).Caps.Has(CapBreakable) }
func IsPlaceable(id BlockID) bool    { return PropertiesOf(id).Caps.Has(CapPlaceable) }
func IsTool(id BlockID) bool         { return PropertiesOf(id).Caps.Has(CapTool) }
func IsStateful(id BlockID) bool     { return PropertiesOf(id).Caps.Has(CapStateful) }
func IsDisplaceable(id BlockID) bool { return PropertiesOf(id).Caps.Has(CapDisplaceable) }
func IsLiquid(id BlockID) bool       { return PropertiesOf(id).Caps.Has(CapLiquid) }

// IsEmpty возвращает true для воздуха и незарегистрированных материалов
func IsEmpty(id BlockID) bool {
	return id == AirBlockID || !IsValidBlockID(id)
}

// IsOccupied возвращает true, если клетка блокирует движение сущностей.
// Проходим только воздух.
func IsOccupied(id BlockID) bool {
	return id != AirBlockID
}
