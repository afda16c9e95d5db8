package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteID_Next(t *testing.T) {
	id := NoteIDFromUint64(0)
	next, err := id.Next()
	require.NoError(t, err)
	assert.Equal(t, NoteIDFromUint64(1), next)

	carry, err := NoteID{Lo: math.MaxUint64}.Next()
	require.NoError(t, err)
	assert.Equal(t, NoteID{Hi: 1}, carry)

	_, err = NoteID{Hi: math.MaxUint64, Lo: math.MaxUint64}.Next()
	assert.ErrorIs(t, err, ErrNoteIDOverflow)
}

func TestNoteID_Cmp(t *testing.T) {
	assert.Equal(t, 0, NoteIDFromUint64(5).Cmp(NoteIDFromUint64(5)))
	assert.Equal(t, -1, NoteIDFromUint64(4).Cmp(NoteIDFromUint64(5)))
	assert.Equal(t, 1, NoteID{Hi: 1}.Cmp(NoteIDFromUint64(math.MaxUint64)))
	assert.Equal(t, -1, NoteID{Hi: 1}.Cmp(NoteID{Hi: 2}))
}

func TestParseNoteID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected NoteID
		wantErr  bool
	}{
		{name: "zero", input: "0", expected: NoteID{}},
		{name: "small", input: "42", expected: NoteIDFromUint64(42)},
		{name: "max uint64", input: "18446744073709551615", expected: NoteID{Lo: math.MaxUint64}},
		{name: "2^64", input: "18446744073709551616", expected: NoteID{Hi: 1}},
		{name: "max uint128", input: "340282366920938463463374607431768211455", expected: NoteID{Hi: math.MaxUint64, Lo: math.MaxUint64}},
		{name: "2^128 overflows", input: "340282366920938463463374607431768211456", wantErr: true},
		{name: "negative", input: "-1", wantErr: true},
		{name: "plus sign", input: "+1", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "not a number", input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ParseNoteID(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, id)
			assert.Equal(t, tt.input, id.String())
		})
	}
}

func TestNoteID_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		ID NoteID `json:"id"`
	}{ID: NoteID{Hi: 1, Lo: 2}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":18446744073709551618}`, string(data))

	var fromNumber NoteID
	require.NoError(t, json.Unmarshal([]byte(`7`), &fromNumber))
	assert.Equal(t, NoteIDFromUint64(7), fromNumber)

	var fromString NoteID
	require.NoError(t, json.Unmarshal([]byte(`"18446744073709551618"`), &fromString))
	assert.Equal(t, NoteID{Hi: 1, Lo: 2}, fromString)

	var bad NoteID
	assert.Error(t, json.Unmarshal([]byte(`-3`), &bad))
}

func TestNoteID_ScanValue(t *testing.T) {
	v, err := NoteID{Hi: 1}.Value()
	require.NoError(t, err)
	assert.Equal(t, "18446744073709551616", v)

	var id NoteID
	require.NoError(t, id.Scan([]byte("12")))
	assert.Equal(t, NoteIDFromUint64(12), id)
	require.NoError(t, id.Scan(int64(3)))
	assert.Equal(t, NoteIDFromUint64(3), id)
	require.NoError(t, id.Scan("18446744073709551616"))
	assert.Equal(t, NoteID{Hi: 1}, id)
	assert.Error(t, id.Scan(int64(-1)))
	assert.Error(t, id.Scan(1.5))
}
