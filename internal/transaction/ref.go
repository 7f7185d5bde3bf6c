package transaction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Ref is a reference that arrives either as a bare id or as the embedded record.
// The zero value means "no reference".
type Ref[T any] struct {
	ID    string
	Value *T
}

// RefTo builds an id-only reference.
func RefTo[T any](id string) Ref[T] {
	return Ref[T]{ID: id}
}

// Embed builds a reference carrying the full record.
func Embed[T any](id string, v *T) Ref[T] {
	return Ref[T]{ID: id, Value: v}
}

// Empty reports whether the reference points at nothing.
func (r Ref[T]) Empty() bool {
	return r.ID == "" && r.Value == nil
}

// Embedded reports whether the record itself is present.
func (r Ref[T]) Embedded() bool {
	return r.Value != nil
}

func (r *Ref[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Ref[T]{}
		return nil
	}

	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("decoding reference id: %w", err)
		}

		*r = Ref[T]{ID: id}

		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decoding reference: %w", err)
	}

	var id string
	if raw, ok := fields["id"]; ok {
		if err := json.Unmarshal(raw, &id); err != nil {
			return fmt.Errorf("decoding reference id: %w", err)
		}
	}

	// {"id": "..."} alone is still only a pointer.
	if len(fields) == 0 || (len(fields) == 1 && id != "") {
		*r = Ref[T]{ID: id}
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decoding embedded reference: %w", err)
	}

	*r = Ref[T]{ID: id, Value: &v}

	return nil
}

func (r Ref[T]) MarshalJSON() ([]byte, error) {
	switch {
	case r.Value != nil:
		return json.Marshal(r.Value)
	case r.ID != "":
		return json.Marshal(r.ID)
	}

	return []byte("null"), nil
}

// Date is a calendar date encoded as YYYY-MM-DD; RFC 3339 timestamps are accepted on input.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
			*d = Date{}
			return nil
		}

		return fmt.Errorf("decoding date: %w", err)
	}

	s = strings.TrimSpace(s)
	if s == "" {
		*d = Date{}
		return nil
	}

	for _, layout := range []string{time.DateOnly, time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			*d = Date{Time: t}
			return nil
		}
	}

	return fmt.Errorf("decoding date: unrecognized format %q", s)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}

	return json.Marshal(d.Format(time.DateOnly))
}
