package block

// ItemStack — материал с количеством (и прочностью для инструментов)
type ItemStack struct {
	ID         BlockID
	Count      int
	Durability int
}

// NewStack создаёт стак материала с характеристиками по умолчанию.
// Инструменты получают полную прочность.
func NewStack(id BlockID, count int) ItemStack {
	stack := ItemStack{ID: id, Count: count}
	if p := PropertiesOf(id); p.Caps.Has(CapTool) {
		stack.Durability = p.MaxDurability
	}
	return stack
}

// IsEmpty возвращает true для пустого слота
func (s ItemStack) IsEmpty() bool {
	return s.Count <= 0 || s.ID == AirBlockID
}

// Stackable проверяет, можно ли объединить стаки
func (s ItemStack) Stackable(other ItemStack) bool {
	if s.ID != other.ID {
		return false
	}
	// Инструменты не складываются
	return !IsTool(s.ID)
}

// Name возвращает имя материала стака
func (s ItemStack) Name() string {
	return PropertiesOf(s.ID).Name
}
