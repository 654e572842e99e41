package ir

import (
	"encoding/json"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortedKeysUseUTF16CodeUnits(t *testing.T) {
	obj := IRObject{
		"\uE000":     IRInt(1),
		"\U00010000": IRInt(2),
		"Age":        IRInt(3),
		"age":        IRInt(4),
		"":           IRInt(5),
		"10":         IRInt(6),
		"2":          IRInt(7),
	}

	want := []string{"", "10", "2", "Age", "age", "\U00010000", "\uE000"}
	assert.Equal(t, want, obj.SortedKeys())

	byBytes := []string{"\U00010000", "\uE000"}
	sort.Strings(byBytes)
	assert.Equal(t, []string{"\uE000", "\U00010000"}, byBytes, "byte order differs from RFC 8785 order")
}

func TestSortedKeysEmpty(t *testing.T) {
	assert.Empty(t, IRObject{}.SortedKeys())
}

func TestFromGo(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want IRValue
	}{
		{"nil", nil, IRNull{}},
		{"string", "Ann", IRString("Ann")},
		{"bool", true, IRBool(true)},
		{"int", 18, IRInt(18)},
		{"int32", int32(-4), IRInt(-4)},
		{"int64", int64(1 << 40), IRInt(1 << 40)},
		{"uint64", uint64(9), IRInt(9)},
		{"integral float", float64(21), IRInt(21)},
		{"json number", json.Number("65"), IRInt(65)},
		{"already a value", IRString("x"), IRString("x")},
		{"list", []any{"a", 1, nil}, IRArray{IRString("a"), IRInt(1), IRNull{}}},
		{"map", map[string]any{"grade": 9, "tags": []any{"x"}},
			IRObject{"grade": IRInt(9), "tags": IRArray{IRString("x")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromGo(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromGoRejects(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"fraction", 2.5, "floats are forbidden"},
		{"decimal json number", json.Number("1.25"), "floats are forbidden"},
		{"float in list", []any{1, 0.5}, "array[1]: floats are forbidden"},
		{"float in map", map[string]any{"avg": 3.3}, `object["avg"]: floats are forbidden`},
		{"struct", struct{}{}, "unsupported literal type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromGo(tt.in)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   IRValue
		want string
	}{
		{"null", IRNull{}, "null"},
		{"go nil", nil, "null"},
		{"string", IRString(`say "hi"`), `"say \"hi\""`},
		{"int", IRInt(-7), "-7"},
		{"bool", IRBool(false), "false"},
		{"array", IRArray{IRInt(1), IRString("b")}, `[1, "b"]`},
		{"empty array", IRArray{}, "[]"},
		{"object sorted", IRObject{"b": IRInt(2), "a": IRArray{}}, "{a: [], b: 2}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.in))
		})
	}
}

func TestEqualValues(t *testing.T) {
	nested := func() IRValue {
		return IRObject{"courses": IRArray{IRString("Math"), IRObject{"credits": IRInt(3)}}}
	}

	assert.True(t, EqualValues(nested(), nested()))
	assert.True(t, EqualValues(IRNull{}, IRNull{}))
	assert.True(t, EqualValues(nil, nil))
	assert.True(t, EqualValues(IRInt(3), IRInt(3)))

	assert.False(t, EqualValues(IRInt(3), IRString("3")))
	assert.False(t, EqualValues(IRArray{IRInt(1)}, IRArray{IRInt(1), IRInt(2)}))
	assert.False(t, EqualValues(IRObject{"a": IRInt(1)}, IRObject{"b": IRInt(1)}))
	assert.False(t, EqualValues(IRArray{}, IRObject{}))
	assert.False(t, EqualValues(nil, IRNull{}))
}

func TestMarshalIRValue(t *testing.T) {
	tests := []struct {
		name string
		in   IRValue
		want string
	}{
		{"null", IRNull{}, "null"},
		{"string", IRString("Ann"), `"Ann"`},
		{"int", IRInt(9223372036854775807), "9223372036854775807"},
		{"empty object", IRObject{}, "{}"},
		{"sorted keys", IRObject{"zebra": IRInt(1), "apple": IRArray{IRNull{}}}, `{"apple":[null],"zebra":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalIRValue(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}

	_, err := MarshalIRValue(nil)
	require.Error(t, err)
}

func TestIRObjectThroughEncodingJSON(t *testing.T) {
	data, err := json.Marshal(map[string]any{
		"literal": IRObject{"b": IRBool(true), "a": IRNull{}},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"literal":{"a":null,"b":true}}`, string(data))
}
