package ident

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID identifies an agent or a ticket. Batches may carry identifiers as JSON
// strings or numbers. The form is kept: 1 and "1" are different IDs, and
// each marshals back the way it arrived.
type ID struct {
	text    string
	numeric bool
}

// New returns a string-form ID.
func New(s string) ID { return ID{text: s} }

// Number returns a numeric ID from the literal text of a JSON number.
func Number(n json.Number) ID { return ID{text: n.String(), numeric: true} }

func (id ID) String() string { return id.text }

// IsNumeric reports whether the ID arrived as a JSON number.
func (id ID) IsNumeric() bool { return id.numeric }

func (id ID) IsZero() bool { return id == ID{} }

func (id ID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(id.text), nil
	}
	return json.Marshal(id.text)
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ID{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = New(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = Number(n)
	return nil
}
