package block

// StateKind — тег записи дополнительного состояния (используется при сохранении)
type StateKind uint8

const (
	StateNone StateKind = iota
	StateLiquid
	StateSmelter
)

// MaxLiquidLevel — уровень источника
const MaxLiquidLevel = 7

// State — изменяемое состояние клетки, не выражаемое материалом.
// Хранится в разреженной таблице чанка по локальной координате.
type State interface {
	Kind() StateKind
	Clone() State
}

// LiquidState — состояние жидкой клетки
type LiquidState struct {
	Level      int    // 0..7
	Source     bool   // источник
	LastUpdate uint64 // тик последнего обновления
}

// NewLiquidState создаёт состояние с ограничением уровня
func NewLiquidState(level int, source bool, tick uint64) *LiquidState {
	s := &LiquidState{Source: source, LastUpdate: tick}
	s.SetLevel(level)
	return s
}

func (s *LiquidState) Kind() StateKind { return StateLiquid }

func (s *LiquidState) Clone() State {
	c := *s
	return &c
}

// SetLevel устанавливает уровень, ограничивая его диапазоном [0, 7]
func (s *LiquidState) SetLevel(level int) {
	s.Level = min(max(level, 0), MaxLiquidLevel)
}

// SmelterState — состояние плавильни
type SmelterState struct {
	Processing bool
	Progress   int // тиков переплавки текущего предмета
	Fuel       int // оставшиеся тики горения
	Powered    bool
	Input      ItemStack
	FuelSlot   ItemStack
	Output     ItemStack
}

func (s *SmelterState) Kind() StateKind { return StateSmelter }

func (s *SmelterState) Clone() State {
	c := *s
	return &c
}
