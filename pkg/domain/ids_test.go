package domain

import (
	"encoding/json"
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "carehub/pkg/domain-errors"
)

// TestEncodeID_RoundTrip validates the codec invariant:
// "decoding an encoded decimal string reconstructs the same integer"
//
// Justification: identifiers longer than 15 digits are exactly where a float64
// representation would silently corrupt them.
func TestEncodeID_RoundTrip(t *testing.T) {
	inputs := []string{
		"0",
		"7",
		"42",
		"9007199254740991",     // 2^53 - 1
		"9007199254740993",     // 2^53 + 1, not representable as float64
		"123456789012345678",   // 18 digits
		"18446744073709551616", // 2^64, beyond uint64
		"340282366920938463463374607431768211457",
	}
	for _, s := range inputs {
		t.Run(s, func(t *testing.T) {
			id, err := EncodeID(s)
			require.NoError(t, err)
			assert.Equal(t, s, id.String())

			want, ok := new(big.Int).SetString(s, 10)
			require.True(t, ok)
			assert.Equal(t, 0, want.Cmp(DecodeID(id)))
		})
	}
}

func TestEncodeID_RejectsMalformed(t *testing.T) {
	cases := map[string]any{
		"empty":         "",
		"negative sign": "-5",
		"plus sign":     "+5",
		"letters":       "12a",
		"decimal point": "1.5",
		"exponent":      "1e3",
		"whitespace":    " 12",
		"negative int":  -1,
		"fraction":      1.5,
		"unsafe float":  float64(1 << 60),
		"NaN":           math.NaN(),
		"negative big":  big.NewInt(-3),
		"unsupported":   true,
		"json negative": json.Number("-12"),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			id, err := EncodeID(raw)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidID))
			assert.True(t, id.IsNil())
		})
	}
}

func TestEncodeID_Numbers(t *testing.T) {
	t.Run("accepts native integers", func(t *testing.T) {
		id, err := EncodeID(int64(1234))
		require.NoError(t, err)
		assert.Equal(t, "1234", id.String())

		id, err = EncodeID(uint64(math.MaxUint64))
		require.NoError(t, err)
		assert.Equal(t, "18446744073709551615", id.String())
	})

	t.Run("accepts integral safe floats", func(t *testing.T) {
		id, err := EncodeID(float64(9007199254740991))
		require.NoError(t, err)
		assert.Equal(t, "9007199254740991", id.String())
	})

	t.Run("accepts json numbers made of digits", func(t *testing.T) {
		id, err := EncodeID(json.Number("123456789012345678"))
		require.NoError(t, err)
		assert.Equal(t, "123456789012345678", id.String())
	})
}

func TestID_JSON(t *testing.T) {
	t.Run("marshals as a string", func(t *testing.T) {
		b, err := json.Marshal(struct {
			ID ID `json:"id"`
		}{ID: MustParseID("123456789012345678")})
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"123456789012345678"}`, string(b))
	})

	t.Run("rejects JSON numbers", func(t *testing.T) {
		var id ID
		err := json.Unmarshal([]byte(`123`), &id)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidID))
	})

	t.Run("rejects malformed strings", func(t *testing.T) {
		var id ID
		err := json.Unmarshal([]byte(`"-5"`), &id)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidID))
	})

	t.Run("null decodes to the zero id", func(t *testing.T) {
		id := MustParseID("1")
		require.NoError(t, json.Unmarshal([]byte(`null`), &id))
		assert.True(t, id.IsNil())
	})
}

func TestID_SQL(t *testing.T) {
	var id ID
	require.NoError(t, id.Scan(int64(77)))
	assert.Equal(t, "77", id.String())

	require.NoError(t, id.Scan([]byte("123456789012345678901")))
	assert.Equal(t, "123456789012345678901", id.String())

	v, err := MustParseID("77").Value()
	require.NoError(t, err)
	assert.Equal(t, int64(77), v)

	v, err = MustParseID("123456789012345678901").Value()
	require.NoError(t, err)
	assert.Equal(t, "123456789012345678901", v)

	assert.Error(t, id.Scan(int64(-1)))
}

func TestID_Uint64(t *testing.T) {
	n, err := MustParseID("18446744073709551615").Uint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), n)

	_, err = MustParseID("18446744073709551616").Uint64()
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidID))
}

// TestTypeDistinction documents the nominal typing: a plain string cannot be
// assigned to an ID, and the zero ID is the only one obtainable without validation.
func TestTypeDistinction(t *testing.T) {
	// var _ ID = "123" // compile error
	var zero ID
	assert.True(t, zero.IsNil())
	assert.Nil(t, DecodeID(zero))
}
