package ident_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/ticket-router/internal/domain/ident"
)

func TestID_UnmarshalKeepsForm(t *testing.T) {
	tests := []struct {
		in      string
		want    ident.ID
		numeric bool
	}{
		{in: `"A1"`, want: ident.New("A1")},
		{in: `"1"`, want: ident.New("1")},
		{in: `1`, want: ident.Number("1"), numeric: true},
		{in: `101`, want: ident.Number("101"), numeric: true},
		{in: `null`, want: ident.ID{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var got ident.ID
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.numeric, got.IsNumeric())
		})
	}
}

func TestID_MarshalRoundTrip(t *testing.T) {
	for _, in := range []string{`"A1"`, `"1"`, `1`, `2.5`} {
		var id ident.ID
		require.NoError(t, json.Unmarshal([]byte(in), &id))
		out, err := json.Marshal(id)
		require.NoError(t, err)
		assert.Equal(t, in, string(out))
	}
}

func TestID_NumericAndStringDiffer(t *testing.T) {
	assert.NotEqual(t, ident.Number("1"), ident.New("1"))
	assert.Equal(t, ident.Number("1").String(), ident.New("1").String())

	seen := map[ident.ID]int{ident.Number("1"): 1, ident.New("1"): 2}
	assert.Len(t, seen, 2)
}

func TestID_RejectsOtherJSON(t *testing.T) {
	for _, in := range []string{`true`, `{}`, `[1]`} {
		var id ident.ID
		assert.Error(t, json.Unmarshal([]byte(in), &id), in)
	}
}

func TestID_IsZero(t *testing.T) {
	assert.True(t, ident.ID{}.IsZero())
	assert.False(t, ident.New("x").IsZero())
	assert.False(t, ident.Number("0").IsZero())
}
