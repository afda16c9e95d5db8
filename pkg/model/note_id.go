package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// ErrNoteIDOverflow is returned when the note counter is exhausted.
var ErrNoteIDOverflow = errors.New("note id space exhausted")

// NoteID is an unsigned 128-bit note identifier.
type NoteID struct {
	Hi uint64
	Lo uint64
}

// NoteIDFromUint64 returns the NoteID with value v.
func NoteIDFromUint64(v uint64) NoteID {
	return NoteID{Lo: v}
}

// Next returns id+1.
func (id NoteID) Next() (NoteID, error) {
	if id.Lo == math.MaxUint64 {
		if id.Hi == math.MaxUint64 {
			return NoteID{}, ErrNoteIDOverflow
		}
		return NoteID{Hi: id.Hi + 1}, nil
	}
	return NoteID{Hi: id.Hi, Lo: id.Lo + 1}, nil
}

// Cmp compares id and other and returns -1, 0 or +1.
func (id NoteID) Cmp(other NoteID) int {
	switch {
	case id.Hi < other.Hi:
		return -1
	case id.Hi > other.Hi:
		return 1
	case id.Lo < other.Lo:
		return -1
	case id.Lo > other.Lo:
		return 1
	}
	return 0
}

// Big returns id as a big.Int.
func (id NoteID) Big() *big.Int {
	v := new(big.Int).SetUint64(id.Hi)
	v.Lsh(v, 64)
	return v.Or(v, new(big.Int).SetUint64(id.Lo))
}

func (id NoteID) String() string {
	if id.Hi == 0 {
		return strconv.FormatUint(id.Lo, 10)
	}
	return id.Big().String()
}

// ParseNoteID parses a base-10 unsigned 128-bit integer.
func ParseNoteID(s string) (NoteID, error) {
	if s == "" {
		return NoteID{}, fmt.Errorf("invalid note id %q", s)
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return NoteID{}, fmt.Errorf("invalid note id %q", s)
		}
	}
	if len(s) <= 19 {
		v, err := strconv.ParseUint(s, 10, 64)
		if err == nil {
			return NoteID{Lo: v}, nil
		}
	}

	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.BitLen() > 128 {
		return NoteID{}, fmt.Errorf("invalid note id %q", s)
	}
	lo := new(big.Int).And(v, new(big.Int).SetUint64(math.MaxUint64))
	hi := new(big.Int).Rsh(v, 64)
	return NoteID{Hi: hi.Uint64(), Lo: lo.Uint64()}, nil
}

// MarshalJSON encodes the id as a JSON number.
func (id NoteID) MarshalJSON() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalJSON accepts a JSON number or a decimal string.
func (id *NoteID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	parsed, err := ParseNoteID(string(data))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Value stores the id as a decimal string so NUMERIC(39,0) columns hold it exactly.
func (id NoteID) Value() (driver.Value, error) {
	return id.String(), nil
}

// Scan reads a NUMERIC column.
func (id *NoteID) Scan(src interface{}) error {
	var (
		parsed NoteID
		err    error
	)
	switch v := src.(type) {
	case int64:
		if v < 0 {
			return fmt.Errorf("invalid note id %d", v)
		}
		parsed = NoteIDFromUint64(uint64(v))
	case string:
		parsed, err = ParseNoteID(v)
	case []byte:
		parsed, err = ParseNoteID(string(v))
	default:
		return fmt.Errorf("cannot scan %T into NoteID", src)
	}
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
