// Package ocr modela el registro crudo producido por el motor OCR externo.
//
// Los valores de extracted_fields no tienen estructura garantizada; se representan con
// Value, una unión etiquetada (null, texto, número, booleano, fecha, lista u objeto).
// Los objetos son Fields, que conserva el orden de inserción de las claves.
package ocr

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Kind etiqueta del tipo contenido en un Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindTime
	KindList
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return "null"
	}
}

// Value valor inmutable de un campo OCR. El cero de Value es null.
type Value struct {
	kind Kind
	str  string
	num  decimal.Decimal
	b    bool
	t    time.Time
	list []Value
	obj  *Fields
}

func Null() Value { return Value{} }
func Str(s string) Value { return Value{kind: KindString, str: s} }
func Num(d decimal.Decimal) Value { return Value{kind: KindNumber, num: d} }
func Float(f float64) Value { return Value{kind: KindNumber, num: decimal.NewFromFloat(f)} }
func Int(i int64) Value { return Value{kind: KindNumber, num: decimal.NewFromInt(i)} }
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }
func Timestamp(t time.Time) Value { return Value{kind: KindTime, t: t} }
func List(items ...Value) Value { return Value{kind: KindList, list: items} }
func Object(fields *Fields) Value { return Value{kind: KindObject, obj: fields} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }
func (v Value) AsNumber() (decimal.Decimal, bool) { return v.num, v.kind == KindNumber }
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }
func (v Value) AsTime() (time.Time, bool) { return v.t, v.kind == KindTime }
func (v Value) AsList() ([]Value, bool) { return v.list, v.kind == KindList }

func (v Value) AsObject() (*Fields, bool) {
	if v.kind != KindObject || v.obj == nil {
		return nil, false
	}
	return v.obj, true
}

// IsEmpty reporta si el valor es "vacío": null, texto/lista/objeto sin contenido,
// número cero o false.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindString:
		return v.str == ""
	case KindNumber:
		return v.num.IsZero()
	case KindBool:
		return !v.b
	case KindTime:
		return v.t.IsZero()
	case KindList:
		return len(v.list) == 0
	case KindObject:
		return v.obj == nil || v.obj.Len() == 0
	default:
		return true
	}
}

// Text representación textual del valor: el texto tal cual, números en forma decimal,
// fechas RFC 3339 y compuestos como JSON. Null produce "".
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return v.num.String()
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindTime:
		return v.t.Format(time.RFC3339)
	case KindList, KindObject:
		b, err := v.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(b)
	default:
		return ""
	}
}

// MarshalJSON serializa el valor conservando el orden de las claves de los objetos.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindString:
		b, err := json.Marshal(v.str)
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindNumber:
		buf.WriteString(v.num.String())
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindTime:
		buf.WriteString(strconv.Quote(v.t.Format(time.RFC3339Nano)))
	case KindList:
		buf.WriteByte('[')
		for i, item := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		if v.obj == nil {
			buf.WriteString("{}")
			return nil
		}
		return v.obj.writeJSON(buf)
	default:
		buf.WriteString("null")
	}
	return nil
}

// UnmarshalJSON decodifica cualquier valor JSON conservando el orden de los objetos
// y la precisión exacta de los números.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	out, err := decodeValue(dec)
	if err != nil {
		return err
	}
	*v = out
	return nil
}
