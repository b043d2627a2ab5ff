package object

import (
	"bytes"
	"cmp"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stssoft/persist/encoding"
	"github.com/stssoft/persist/schema"
)

const (
	ticksPerSecond = 10_000_000
	nanosPerTick   = 100
	// unixEpochSeconds is the number of seconds from 0001-01-01 to 1970-01-01 UTC.
	unixEpochSeconds = 62_135_596_800
)

// timeToTicks returns the 100ns ticks elapsed since 0001-01-01 UTC.
func timeToTicks(t time.Time) int64 {
	return (t.Unix()+unixEpochSeconds)*ticksPerSecond + int64(t.Nanosecond())/nanosPerTick
}

func ticksToTime(ticks int64) time.Time {
	sec, rem := ticks/ticksPerSecond, ticks%ticksPerSecond
	if rem < 0 {
		rem += ticksPerSecond
		sec--
	}

	return time.Unix(sec-unixEpochSeconds, rem*nanosPerTick).UTC()
}

func primitiveProcs(p schema.Prim) (encodeFunc, decodeFunc) {
	switch p {
	case schema.PrimBool:
		return func(w *encoding.Writer, v reflect.Value) error {
				w.WriteBool(v.Bool())
				return nil
			}, func(r *encoding.Reader, v reflect.Value) error {
				b, err := r.ReadBool()
				v.SetBool(b)
				return err
			}
	case schema.PrimInt8:
		return func(w *encoding.Writer, v reflect.Value) error {
				w.WriteInt8(int8(v.Int())) //nolint:gosec
				return nil
			}, func(r *encoding.Reader, v reflect.Value) error {
				x, err := r.ReadInt8()
				v.SetInt(int64(x))
				return err
			}
	case schema.PrimInt16:
		return func(w *encoding.Writer, v reflect.Value) error {
				w.WriteInt16(int16(v.Int())) //nolint:gosec
				return nil
			}, func(r *encoding.Reader, v reflect.Value) error {
				x, err := r.ReadInt16()
				v.SetInt(int64(x))
				return err
			}
	case schema.PrimInt32:
		return func(w *encoding.Writer, v reflect.Value) error {
				w.WriteInt32(int32(v.Int())) //nolint:gosec
				return nil
			}, func(r *encoding.Reader, v reflect.Value) error {
				x, err := r.ReadInt32()
				v.SetInt(int64(x))
				return err
			}
	case schema.PrimInt64:
		return func(w *encoding.Writer, v reflect.Value) error {
				w.WriteInt64(v.Int())
				return nil
			}, func(r *encoding.Reader, v reflect.Value) error {
				x, err := r.ReadInt64()
				v.SetInt(x)
				return err
			}
	case schema.PrimUint8:
		return func(w *encoding.Writer, v reflect.Value) error {
				w.WriteUint8(uint8(v.Uint())) //nolint:gosec
				return nil
			}, func(r *encoding.Reader, v reflect.Value) error {
				x, err := r.ReadUint8()
				v.SetUint(uint64(x))
				return err
			}
	case schema.PrimUint16:
		return func(w *encoding.Writer, v reflect.Value) error {
				w.WriteUint16(uint16(v.Uint())) //nolint:gosec
				return nil
			}, func(r *encoding.Reader, v reflect.Value) error {
				x, err := r.ReadUint16()
				v.SetUint(uint64(x))
				return err
			}
	case schema.PrimUint32:
		return func(w *encoding.Writer, v reflect.Value) error {
				w.WriteUint32(uint32(v.Uint())) //nolint:gosec
				return nil
			}, func(r *encoding.Reader, v reflect.Value) error {
				x, err := r.ReadUint32()
				v.SetUint(uint64(x))
				return err
			}
	case schema.PrimUint64:
		return func(w *encoding.Writer, v reflect.Value) error {
				w.WriteUint64(v.Uint())
				return nil
			}, func(r *encoding.Reader, v reflect.Value) error {
				x, err := r.ReadUint64()
				v.SetUint(x)
				return err
			}
	case schema.PrimFloat32:
		return func(w *encoding.Writer, v reflect.Value) error {
				w.WriteFloat32(float32(v.Float()))
				return nil
			}, func(r *encoding.Reader, v reflect.Value) error {
				x, err := r.ReadFloat32()
				v.SetFloat(float64(x))
				return err
			}
	case schema.PrimFloat64:
		return func(w *encoding.Writer, v reflect.Value) error {
				w.WriteFloat64(v.Float())
				return nil
			}, func(r *encoding.Reader, v reflect.Value) error {
				x, err := r.ReadFloat64()
				v.SetFloat(x)
				return err
			}
	case schema.PrimDecimal:
		return func(w *encoding.Writer, v reflect.Value) error {
				w.WriteDecimal(v.Interface().(decimal.Decimal))
				return nil
			}, func(r *encoding.Reader, v reflect.Value) error {
				d, err := r.ReadDecimal()
				if err != nil {
					return err
				}
				v.Set(reflect.ValueOf(d))

				return nil
			}
	case schema.PrimDateTime:
		return func(w *encoding.Writer, v reflect.Value) error {
				w.WriteInt64(timeToTicks(v.Interface().(time.Time)))
				return nil
			}, func(r *encoding.Reader, v reflect.Value) error {
				ticks, err := r.ReadInt64()
				if err != nil {
					return err
				}
				v.Set(reflect.ValueOf(ticksToTime(ticks)))

				return nil
			}
	case schema.PrimTimeSpan:
		return func(w *encoding.Writer, v reflect.Value) error {
				w.WriteInt64(v.Int() / nanosPerTick)
				return nil
			}, func(r *encoding.Reader, v reflect.Value) error {
				ticks, err := r.ReadInt64()
				v.SetInt(ticks * nanosPerTick)
				return err
			}
	default:
		panic(fmt.Sprintf("object: unexpected primitive %s", p))
	}
}

func guidProcs() (encodeFunc, decodeFunc) {
	return func(w *encoding.Writer, v reflect.Value) error {
			u := v.Interface().(uuid.UUID)
			w.WriteBytes(u[:])

			return nil
		}, func(r *encoding.Reader, v reflect.Value) error {
			var u uuid.UUID
			if err := r.ReadFull(u[:]); err != nil {
				return err
			}
			v.Set(reflect.ValueOf(u))

			return nil
		}
}

// keyComparator orders map keys for deterministic encoding.
func keyComparator(s *schema.Schema) func(a, b reflect.Value) int {
	switch s.Kind {
	case schema.KindGuid:
		return func(a, b reflect.Value) int {
			ua, ub := a.Interface().(uuid.UUID), b.Interface().(uuid.UUID)
			return bytes.Compare(ua[:], ub[:])
		}
	case schema.KindString:
		return func(a, b reflect.Value) int { return cmp.Compare(a.String(), b.String()) }
	case schema.KindPrimitive, schema.KindEnum:
	default:
		panic(fmt.Sprintf("object: unexpected map key kind %s", s.Kind))
	}

	switch s.Prim {
	case schema.PrimBool:
		return func(a, b reflect.Value) int {
			switch {
			case a.Bool() == b.Bool():
				return 0
			case b.Bool():
				return -1
			default:
				return 1
			}
		}
	case schema.PrimInt8, schema.PrimInt16, schema.PrimInt32, schema.PrimInt64, schema.PrimTimeSpan:
		return func(a, b reflect.Value) int { return cmp.Compare(a.Int(), b.Int()) }
	case schema.PrimUint8, schema.PrimUint16, schema.PrimUint32, schema.PrimUint64:
		return func(a, b reflect.Value) int { return cmp.Compare(a.Uint(), b.Uint()) }
	case schema.PrimFloat32, schema.PrimFloat64:
		return func(a, b reflect.Value) int { return cmp.Compare(a.Float(), b.Float()) }
	case schema.PrimDateTime:
		return func(a, b reflect.Value) int {
			return a.Interface().(time.Time).Compare(b.Interface().(time.Time))
		}
	default:
		panic(fmt.Sprintf("object: unexpected map key primitive %s", s.Prim))
	}
}
