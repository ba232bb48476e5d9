package ocr

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Field par clave/valor de un objeto OCR.
type Field struct {
	Key   string
	Value Value
}

// Fields objeto OCR con claves en orden de inserción. Una clave repetida conserva
// su posición original y toma el último valor. El cero de Fields es un objeto vacío.
type Fields struct {
	entries []Field
	index   map[string]int
}

// NewFields construye un objeto a partir de pares en orden.
func NewFields(entries ...Field) *Fields {
	f := &Fields{}
	for _, e := range entries {
		f.Set(e.Key, e.Value)
	}
	return f
}

// Set agrega o reemplaza una clave.
func (f *Fields) Set(key string, v Value) {
	if f.index == nil {
		f.index = make(map[string]int)
	}
	if i, ok := f.index[key]; ok {
		f.entries[i].Value = v
		return
	}
	f.index[key] = len(f.entries)
	f.entries = append(f.entries, Field{Key: key, Value: v})
}

// Get devuelve el valor de una clave exacta.
func (f *Fields) Get(key string) (Value, bool) {
	if f == nil {
		return Value{}, false
	}
	i, ok := f.index[key]
	if !ok {
		return Value{}, false
	}
	return f.entries[i].Value, true
}

// Len número de claves.
func (f *Fields) Len() int {
	if f == nil {
		return 0
	}
	return len(f.entries)
}

// Entries pares en orden de inserción. El slice no debe modificarse.
func (f *Fields) Entries() []Field {
	if f == nil {
		return nil
	}
	return f.entries
}

// MarshalJSON serializa el objeto en orden de inserción.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := f.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f *Fields) writeJSON(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	for i, e := range f.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		if err := e.Value.writeJSON(buf); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// UnmarshalJSON decodifica un objeto JSON conservando el orden de las claves.
func (f *Fields) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("ocr: leer objeto: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("ocr: se esperaba un objeto JSON")
	}
	out, err := decodeObject(dec)
	if err != nil {
		return err
	}
	*f = *out
	return nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, fmt.Errorf("ocr: leer valor: %w", err)
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj, err := decodeObject(dec)
			if err != nil {
				return Value{}, err
			}
			return Object(obj), nil
		case '[':
			items := []Value{}
			for dec.More() {
				item, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, fmt.Errorf("ocr: cerrar lista: %w", err)
			}
			return List(items...), nil
		}
		return Value{}, fmt.Errorf("ocr: delimitador inesperado %q", t)
	case string:
		return Str(t), nil
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		if err != nil {
			return Value{}, fmt.Errorf("ocr: número inválido %q: %w", t, err)
		}
		return Num(d), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	}
	return Value{}, fmt.Errorf("ocr: token inesperado %T", tok)
}

// decodeObject consume las claves hasta el '}' de cierre (el '{' ya fue leído).
func decodeObject(dec *json.Decoder) (*Fields, error) {
	f := &Fields{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("ocr: leer clave: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("ocr: clave inválida %v", tok)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		f.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("ocr: cerrar objeto: %w", err)
	}
	return f, nil
}
