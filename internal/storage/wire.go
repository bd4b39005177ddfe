package storage

import (
	"fmt"
	"math"

	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world/block"
	"google.golang.org/protobuf/encoding/protowire"
)

// Низкоуровневые помощники для формата tag/value.
// Неизвестные поля при чтении пропускаются.

func appendUint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendSint(b []byte, num protowire.Number, v int64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, protowire.EncodeZigZag(v))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	return appendUint(b, num, protowire.EncodeBool(v))
}

func appendDouble(b []byte, num protowire.Number, v float64) []byte {
	b = protowire.AppendTag(b, num, protowire.Fixed64Type)
	return protowire.AppendFixed64(b, math.Float64bits(v))
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendVec4(b []byte, num protowire.Number, v vec.Vec4) []byte {
	var msg []byte
	msg = appendDouble(msg, 1, v.X)
	msg = appendDouble(msg, 2, v.Y)
	msg = appendDouble(msg, 3, v.Z)
	msg = appendDouble(msg, 4, v.W)
	return appendBytes(b, num, msg)
}

func appendVec4Int(b []byte, num protowire.Number, v vec.Vec4Int) []byte {
	var msg []byte
	msg = appendSint(msg, 1, int64(v.X))
	msg = appendSint(msg, 2, int64(v.Y))
	msg = appendSint(msg, 3, int64(v.Z))
	msg = appendSint(msg, 4, int64(v.W))
	return appendBytes(b, num, msg)
}

func appendStack(b []byte, num protowire.Number, s block.ItemStack) []byte {
	var msg []byte
	msg = appendUint(msg, 1, uint64(s.ID))
	msg = appendSint(msg, 2, int64(s.Count))
	msg = appendSint(msg, 3, int64(s.Durability))
	return appendBytes(b, num, msg)
}

// field — одно разобранное поле записи
type field struct {
	num protowire.Number
	typ protowire.Type
	v   uint64
	b   []byte
}

func (f field) uint() uint64 { return f.v }
func (f field) int() int64   { return protowire.DecodeZigZag(f.v) }
func (f field) bool() bool   { return protowire.DecodeBool(f.v) }

func (f field) double() float64 {
	if f.typ != protowire.Fixed64Type {
		return 0
	}
	return math.Float64frombits(f.v)
}

// parseFields обходит поля сообщения по порядку
func parseFields(b []byte, fn func(f field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrCorruptRecord, protowire.ParseError(n))
		}
		b = b[n:]

		f := field{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.v, n = protowire.ConsumeVarint(b)
		case protowire.Fixed64Type:
			f.v, n = protowire.ConsumeFixed64(b)
		case protowire.Fixed32Type:
			var v32 uint32
			v32, n = protowire.ConsumeFixed32(b)
			f.v = uint64(v32)
		case protowire.BytesType:
			f.b, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("%w: поле %d: %v", ErrCorruptRecord, num, protowire.ParseError(n))
		}
		b = b[n:]

		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func parseVec4(b []byte) (vec.Vec4, error) {
	var v vec.Vec4
	err := parseFields(b, func(f field) error {
		switch f.num {
		case 1:
			v.X = f.double()
		case 2:
			v.Y = f.double()
		case 3:
			v.Z = f.double()
		case 4:
			v.W = f.double()
		}
		return nil
	})
	return v, err
}

func parseVec4Int(b []byte) (vec.Vec4Int, error) {
	var v vec.Vec4Int
	err := parseFields(b, func(f field) error {
		switch f.num {
		case 1:
			v.X = int(f.int())
		case 2:
			v.Y = int(f.int())
		case 3:
			v.Z = int(f.int())
		case 4:
			v.W = int(f.int())
		}
		return nil
	})
	return v, err
}

func parseStack(b []byte) (block.ItemStack, error) {
	var s block.ItemStack
	err := parseFields(b, func(f field) error {
		switch f.num {
		case 1:
			s.ID = block.BlockID(f.uint())
		case 2:
			s.Count = int(f.int())
		case 3:
			s.Durability = int(f.int())
		}
		return nil
	})
	return s, err
}
