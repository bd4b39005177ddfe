package storage

import (
	"fmt"
	"sort"

	"github.com/annel0/voxel4d/internal/logging"
	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world"
	"github.com/annel0/voxel4d/internal/world/block"
	"github.com/annel0/voxel4d/internal/world/entity"
	"google.golang.org/protobuf/encoding/protowire"
)

// Виды записей в файле чанка
const (
	recordChunkHeader uint64 = 1
	recordBlockState  uint64 = 2
	recordEntity      uint64 = 3
)

// Поле 1 любой записи чанка — её вид
const fieldRecordKind protowire.Number = 1

// Run — серия одинаковых материалов в плоском порядке индексов чанка
type Run struct {
	ID     block.BlockID
	Length int
}

// EncodeRuns сжимает сетку материалов в серии
func EncodeRuns(blocks []block.BlockID) []Run {
	var runs []Run
	for _, id := range blocks {
		if n := len(runs); n > 0 && runs[n-1].ID == id {
			runs[n-1].Length++
			continue
		}
		runs = append(runs, Run{ID: id, Length: 1})
	}
	return runs
}

// DecodeRuns разворачивает серии; сумма длин должна равняться объёму чанка
func DecodeRuns(runs []Run) ([]block.BlockID, error) {
	blocks := make([]block.BlockID, 0, world.ChunkVolume)
	for _, r := range runs {
		if r.Length <= 0 || len(blocks)+r.Length > world.ChunkVolume {
			return nil, fmt.Errorf("%w: серии выходят за объём чанка", ErrCorruptRecord)
		}
		for i := 0; i < r.Length; i++ {
			blocks = append(blocks, r.ID)
		}
	}
	if len(blocks) != world.ChunkVolume {
		return nil, fmt.Errorf("%w: серии покрывают %d клеток из %d", ErrCorruptRecord, len(blocks), world.ChunkVolume)
	}
	return blocks, nil
}

// EncodeChunk превращает снимок чанка в набор записей:
// заголовок с сериями, затем доп. состояния и сущности.
func EncodeChunk(snap world.ChunkSnapshot) [][]byte {
	records := make([][]byte, 0, 1+len(snap.States)+len(snap.Entities))

	var header []byte
	header = appendUint(header, fieldRecordKind, recordChunkHeader)
	header = appendVec4Int(header, 2, snap.Coords)
	header = appendBool(header, 3, snap.Dirty)
	var packed []byte
	for _, r := range EncodeRuns(snap.Blocks) {
		packed = protowire.AppendVarint(packed, uint64(r.ID))
		packed = protowire.AppendVarint(packed, uint64(r.Length))
	}
	header = appendBytes(header, 4, packed)
	records = append(records, header)

	indices := make([]int, 0, len(snap.States))
	for idx := range snap.States {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	for _, idx := range indices {
		payload, kind := encodeState(snap.States[idx])
		if kind == block.StateNone {
			continue
		}
		var rec []byte
		rec = appendUint(rec, fieldRecordKind, recordBlockState)
		rec = appendUint(rec, 2, uint64(idx))
		rec = appendUint(rec, 3, uint64(kind))
		rec = appendBytes(rec, 4, payload)
		records = append(records, rec)
	}

	for _, e := range snap.Entities {
		records = append(records, encodeEntity(e))
	}
	return records
}

// DecodeChunk собирает чанк из записей. Флаг изменений восстанавливается
// в сохранённое значение. Неизвестные сущности и состояния пропускаются.
func DecodeChunk(records [][]byte, logger *logging.Logger) (*world.Chunk, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: пустой файл чанка", ErrCorruptRecord)
	}

	kind, err := recordKind(records[0])
	if err != nil {
		return nil, err
	}
	if kind != recordChunkHeader {
		return nil, fmt.Errorf("%w: первая запись не является заголовком чанка", ErrCorruptRecord)
	}

	var (
		coords vec.Vec4Int
		dirty  bool
		runs   []Run
	)
	err = parseFields(records[0], func(f field) error {
		switch f.num {
		case 2:
			var err error
			coords, err = parseVec4Int(f.b)
			return err
		case 3:
			dirty = f.bool()
		case 4:
			var err error
			runs, err = parseRuns(f.b)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	blocks, err := DecodeRuns(runs)
	if err != nil {
		return nil, err
	}

	chunk := world.NewChunk(coords)
	states := make(map[int]block.State)

	for _, rec := range records[1:] {
		kind, err := recordKind(rec)
		if err != nil {
			return nil, err
		}
		switch kind {
		case recordBlockState:
			idx, state, err := decodeStateRecord(rec)
			if err != nil {
				return nil, err
			}
			if state == nil {
				logger.Warn("Чанк %v: пропущено доп. состояние неизвестного вида в клетке %d", coords, idx)
				continue
			}
			if idx < 0 || idx >= world.ChunkVolume {
				return nil, fmt.Errorf("%w: индекс доп. состояния %d вне чанка", ErrCorruptRecord, idx)
			}
			states[idx] = state
		case recordEntity:
			e, err := decodeEntity(rec)
			if err != nil {
				return nil, err
			}
			if e.Type != entity.EntityTypeItem {
				logger.Warn("Чанк %v: пропущена сущность %d неподдерживаемого типа %d", coords, e.ID, e.Type)
				continue
			}
			chunk.AddEntity(e)
		default:
			logger.Debug("Чанк %v: пропущена запись неизвестного вида %d", coords, kind)
		}
	}

	// Load идёт последним: AddEntity помечает чанк изменённым
	if err := chunk.Load(blocks, states, dirty); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return chunk, nil
}

func recordKind(rec []byte) (uint64, error) {
	num, typ, n := protowire.ConsumeTag(rec)
	if n < 0 || num != fieldRecordKind || typ != protowire.VarintType {
		return 0, fmt.Errorf("%w: запись без вида", ErrCorruptRecord)
	}
	kind, m := protowire.ConsumeVarint(rec[n:])
	if m < 0 {
		return 0, fmt.Errorf("%w: %v", ErrCorruptRecord, protowire.ParseError(m))
	}
	return kind, nil
}

func parseRuns(b []byte) ([]Run, error) {
	var runs []Run
	for len(b) > 0 {
		id, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return nil, fmt.Errorf("%w: материал серии: %v", ErrCorruptRecord, protowire.ParseError(n))
		}
		b = b[n:]
		length, m := protowire.ConsumeVarint(b)
		if m < 0 {
			return nil, fmt.Errorf("%w: длина серии: %v", ErrCorruptRecord, protowire.ParseError(m))
		}
		b = b[m:]
		if length > uint64(world.ChunkVolume) {
			return nil, fmt.Errorf("%w: длина серии %d", ErrCorruptRecord, length)
		}
		runs = append(runs, Run{ID: block.BlockID(id), Length: int(length)})
	}
	return runs, nil
}

// ---------------------------------------------------------------------------
// Доп. состояние

func encodeState(state block.State) ([]byte, block.StateKind) {
	var b []byte
	switch s := state.(type) {
	case *block.LiquidState:
		b = appendSint(b, 1, int64(s.Level))
		b = appendBool(b, 2, s.Source)
		b = appendUint(b, 3, s.LastUpdate)
		return b, block.StateLiquid
	case *block.SmelterState:
		b = appendBool(b, 1, s.Processing)
		b = appendSint(b, 2, int64(s.Progress))
		b = appendSint(b, 3, int64(s.Fuel))
		b = appendBool(b, 4, s.Powered)
		b = appendStack(b, 5, s.Input)
		b = appendStack(b, 6, s.FuelSlot)
		b = appendStack(b, 7, s.Output)
		return b, block.StateSmelter
	default:
		return nil, block.StateNone
	}
}

// decodeStateRecord возвращает nil-состояние для неизвестного вида
func decodeStateRecord(rec []byte) (int, block.State, error) {
	var (
		idx     int
		kind    block.StateKind
		payload []byte
	)
	err := parseFields(rec, func(f field) error {
		switch f.num {
		case 2:
			idx = int(f.uint())
		case 3:
			kind = block.StateKind(f.uint())
		case 4:
			payload = f.b
		}
		return nil
	})
	if err != nil {
		return 0, nil, err
	}

	switch kind {
	case block.StateLiquid:
		s := &block.LiquidState{}
		err = parseFields(payload, func(f field) error {
			switch f.num {
			case 1:
				s.SetLevel(int(f.int()))
			case 2:
				s.Source = f.bool()
			case 3:
				s.LastUpdate = f.uint()
			}
			return nil
		})
		return idx, s, err
	case block.StateSmelter:
		s := &block.SmelterState{}
		err = parseFields(payload, func(f field) error {
			var err error
			switch f.num {
			case 1:
				s.Processing = f.bool()
			case 2:
				s.Progress = int(f.int())
			case 3:
				s.Fuel = int(f.int())
			case 4:
				s.Powered = f.bool()
			case 5:
				s.Input, err = parseStack(f.b)
			case 6:
				s.FuelSlot, err = parseStack(f.b)
			case 7:
				s.Output, err = parseStack(f.b)
			}
			return err
		})
		return idx, s, err
	default:
		return idx, nil, nil
	}
}

// ---------------------------------------------------------------------------
// Сущности

func encodeEntity(e *entity.Entity) []byte {
	var b []byte
	b = appendUint(b, fieldRecordKind, recordEntity)
	b = appendUint(b, 2, uint64(e.Type))
	b = appendUint(b, 3, e.ID)
	b = appendVec4(b, 4, e.Position)
	b = appendVec4(b, 5, e.Velocity)
	b = appendVec4(b, 6, e.Size)
	b = appendBool(b, 7, e.Gravity)
	b = appendBool(b, 8, e.OnGround)
	if e.Item != nil {
		b = appendStack(b, 9, *e.Item)
	}
	b = appendDouble(b, 10, e.Age)
	return b
}

func decodeEntity(rec []byte) (*entity.Entity, error) {
	e := &entity.Entity{}
	err := parseFields(rec, func(f field) error {
		var err error
		switch f.num {
		case 2:
			e.Type = entity.EntityType(f.uint())
		case 3:
			e.ID = f.uint()
		case 4:
			e.Position, err = parseVec4(f.b)
		case 5:
			e.Velocity, err = parseVec4(f.b)
		case 6:
			e.Size, err = parseVec4(f.b)
		case 7:
			e.Gravity = f.bool()
		case 8:
			e.OnGround = f.bool()
		case 9:
			var stack block.ItemStack
			stack, err = parseStack(f.b)
			e.Item = &stack
		case 10:
			e.Age = f.double()
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if e.ID == 0 {
		return nil, fmt.Errorf("%w: сущность без ID", ErrCorruptRecord)
	}
	return e, nil
}

// ---------------------------------------------------------------------------
// Игрок

func encodePlayer(p *entity.Player) []byte {
	var b []byte
	b = appendString(b, 1, p.Username)
	b = appendUint(b, 2, p.ID)
	b = appendVec4(b, 3, p.Position)
	b = appendVec4(b, 4, p.Velocity)
	b = appendSint(b, 5, int64(p.Health))
	b = appendSint(b, 6, int64(p.Selected))
	for i, slot := range p.Inventory.Slots {
		if slot.IsEmpty() {
			continue
		}
		var msg []byte
		msg = appendUint(msg, 1, uint64(i))
		msg = appendStack(msg, 2, slot)
		b = appendBytes(b, 7, msg)
	}
	return b
}

func decodePlayer(rec []byte) (*entity.Player, error) {
	var (
		username string
		id       uint64
		pos, vel vec.Vec4
		health   = entity.MaxHealth
		selected int
		inv      entity.Inventory
	)
	err := parseFields(rec, func(f field) error {
		var err error
		switch f.num {
		case 1:
			username = string(f.b)
		case 2:
			id = f.uint()
		case 3:
			pos, err = parseVec4(f.b)
		case 4:
			vel, err = parseVec4(f.b)
		case 5:
			health = int(f.int())
		case 6:
			selected = int(f.int())
		case 7:
			err = decodeSlot(f.b, &inv)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	p := entity.NewPlayer(id, username, pos)
	p.Velocity = vel
	p.Health = min(max(health, 0), entity.MaxHealth)
	p.Inventory = inv
	if !p.Select(selected) {
		p.Select(0)
	}
	return p, nil
}

func decodeSlot(b []byte, inv *entity.Inventory) error {
	slot := -1
	var stack block.ItemStack
	err := parseFields(b, func(f field) error {
		var err error
		switch f.num {
		case 1:
			slot = int(f.uint())
		case 2:
			stack, err = parseStack(f.b)
		}
		return err
	})
	if err != nil {
		return err
	}
	if slot < 0 || slot >= entity.InventorySize {
		return fmt.Errorf("%w: слот инвентаря %d", ErrCorruptRecord, slot)
	}
	inv.Slots[slot] = stack
	return nil
}

// ---------------------------------------------------------------------------
// Метаданные мира

func encodeWorldInfo(info *WorldInfo) []byte {
	var b []byte
	b = appendString(b, 1, info.Name)
	b = appendSint(b, 2, info.Seed)
	b = appendString(b, 3, info.UUID)
	b = appendSint(b, 4, info.CreatedAt)
	b = appendSint(b, 5, info.LastPlayed)
	b = appendUint(b, 6, info.NextEntityID)
	b = appendUint(b, 7, uint64(info.Version))
	b = appendUint(b, 8, info.Tick)
	return b
}

func decodeWorldInfo(rec []byte) (*WorldInfo, error) {
	info := &WorldInfo{}
	err := parseFields(rec, func(f field) error {
		switch f.num {
		case 1:
			info.Name = string(f.b)
		case 2:
			info.Seed = f.int()
		case 3:
			info.UUID = string(f.b)
		case 4:
			info.CreatedAt = f.int()
		case 5:
			info.LastPlayed = f.int()
		case 6:
			info.NextEntityID = f.uint()
		case 7:
			info.Version = uint32(f.uint())
		case 8:
			info.Tick = f.uint()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return info, nil
}
