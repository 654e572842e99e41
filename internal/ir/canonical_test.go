package ir

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeLiteral parses JSON the way scenario literals are decoded: numbers
// stay exact and go through FromGo.
func decodeLiteral(t testing.TB, data []byte) (IRValue, error) {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return FromGo(raw)
}

func TestMarshalCanonicalScalarsAndContainers(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", IRString("Alice"), `"Alice"`},
		{"empty string", IRString(""), `""`},
		{"int", IRInt(18), "18"},
		{"negative int", IRInt(-3), "-3"},
		{"min int64", IRInt(-9223372036854775808), "-9223372036854775808"},
		{"bool", IRBool(false), "false"},
		{"null", IRNull{}, "null"},
		{"empty array", IRArray{}, "[]"},
		{"empty object", IRObject{}, "{}"},
		{"ints", IRArray{IRInt(1), IRInt(2)}, "[1,2]"},
		{"go string", "where", `"where"`},
		{"go int", 2, "2"},
		{"go int64", int64(7), "7"},
		{"go bool", true, "true"},
		{"string slice", []string{"Distinct", "Take"}, `["Distinct","Take"]`},
		{"mixed slice", []any{int64(1), "two", IRNull{}}, `[1,"two",null]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestMarshalCanonicalSnapshotShape(t *testing.T) {
	clause := map[string]any{
		"kind":     "where",
		"text":     "where ([s].Age > 18)",
		"previous": "main_from",
		"modifiers": []any{
			map[string]any{"name": "Take", "count": "3"},
		},
	}

	got, err := MarshalCanonical(clause)
	require.NoError(t, err)
	assert.Equal(t,
		`{"kind":"where","modifiers":[{"count":"3","name":"Take"}],"previous":"main_from","text":"where ([s].Age > 18)"}`,
		string(got))
}

func TestMarshalCanonicalKeysUseUTF16Order(t *testing.T) {
	// U+10000 encodes as the surrogate pair D800 DC00 and so sorts before
	// U+E000, the opposite of UTF-8 byte order.
	obj := IRObject{
		"\uE000":     IRInt(1),
		"\U00010000": IRInt(2),
		"a":          IRObject{"z": IRInt(3), "b": IRInt(4)},
	}

	got, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":{\"b\":4,\"z\":3},\"\U00010000\":2,\"\uE000\":1}", string(got))
}

func TestMarshalCanonicalDoesNotEscapeHTML(t *testing.T) {
	got, err := MarshalCanonical(IRObject{"text": IRString("s.Age < 18 && s.Age > 3")})
	require.NoError(t, err)
	assert.Equal(t, `{"text":"s.Age < 18 && s.Age > 3"}`, string(got))
	assert.NotContains(t, string(got), `\u003c`)
	assert.NotContains(t, string(got), `\u0026`)
}

func TestMarshalCanonicalRejectsUnrepresentable(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"float64", 2.5, "floats are forbidden"},
		{"float32", float32(1), "floats are forbidden"},
		{"go nil", nil, "nil is forbidden"},
		{"nested float", map[string]any{"count": []any{1.5}}, `value for key "count": array[0]: floats are forbidden`},
		{"struct", struct{}{}, "unsupported type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MarshalCanonical(tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestMarshalCanonicalNormalizesToNFC(t *testing.T) {
	composed := "Ren\u00e9e"
	decomposed := "Rene\u0301e"

	a, err := MarshalCanonical(IRObject{composed: IRString(composed)})
	require.NoError(t, err)
	b, err := MarshalCanonical(IRObject{decomposed: IRString(decomposed)})
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestMarshalCanonicalStringEscapes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"quote", `s.Name == "Bo"`, `"s.Name == \"Bo\""`},
		{"backslash", `a\b`, `"a\\b"`},
		{"line separator kept raw", "a\u2028b\u2029c", "\"a\u2028b\u2029c\""},
		{"escaped text stays escaped", `literal \u2028`, `"literal \\u2028"`},
		{"literal and raw", "x \\u2029 y \u2029", "\"x \\\\u2029 y \u2029\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalCanonical(IRString(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestMarshalCanonicalIsIdempotent(t *testing.T) {
	values := []IRValue{
		IRString("Bob"),
		IRInt(42),
		IRArray{IRInt(1), IRNull{}, IRBool(true)},
		IRObject{"grades": IRArray{IRInt(9), IRInt(10)}, "name": IRString("Ann")},
	}

	for _, v := range values {
		first, err := MarshalCanonical(v)
		require.NoError(t, err)

		decoded, err := decodeLiteral(t, first)
		require.NoError(t, err)

		second, err := MarshalCanonical(decoded)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func FuzzMarshalCanonicalIdempotent(f *testing.F) {
	f.Add(`{"name":"Ann","age":19}`)
	f.Add(`[1,null,"x"]`)
	f.Add(`"café"`)
	f.Add(`{"b":{"a":[true]}}`)

	f.Fuzz(func(t *testing.T, input string) {
		v, err := decodeLiteral(t, []byte(input))
		if err != nil {
			t.Skip()
		}
		first, err := MarshalCanonical(v)
		if err != nil {
			t.Skip()
		}

		again, err := decodeLiteral(t, first)
		require.NoError(t, err)
		second, err := MarshalCanonical(again)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}
