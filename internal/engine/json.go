package engine

import (
	"bytes"
	"encoding/json"
)

// MarshalJSON renders a Field with the canonical key order required by
// spec.md §6: {fields, mode, name, type} (alphabetical), and omits
// "fields" entirely unless Type == "RECORD".
func (f Field) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	if f.Type == "RECORD" {
		buf.WriteString(`"fields":`)
		fields := f.Fields
		if fields == nil {
			fields = []Field{}
		}
		b, err := json.Marshal(fields)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
		buf.WriteByte(',')
	}

	buf.WriteString(`"mode":`)
	modeJSON, err := json.Marshal(f.Mode)
	if err != nil {
		return nil, err
	}
	buf.Write(modeJSON)
	buf.WriteByte(',')

	buf.WriteString(`"name":`)
	nameJSON, err := json.Marshal(f.Name)
	if err != nil {
		return nil, err
	}
	buf.Write(nameJSON)
	buf.WriteByte(',')

	buf.WriteString(`"type":`)
	typeJSON, err := json.Marshal(f.Type)
	if err != nil {
		return nil, err
	}
	buf.Write(typeJSON)

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// fieldJSON mirrors Field's wire shape for decoding.
type fieldJSON struct {
	Fields []Field `json:"fields,omitempty"`
	Mode   string  `json:"mode"`
	Name   string  `json:"name"`
	Type   string  `json:"type"`
}

// UnmarshalJSON decodes a Field from its canonical JSON shape,
// regardless of key order.
func (f *Field) UnmarshalJSON(data []byte) error {
	var aux fieldJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	f.Name = aux.Name
	f.Type = aux.Type
	f.Mode = aux.Mode
	f.Fields = aux.Fields
	return nil
}
