package sui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBCSWriter(t *testing.T) {
	var w bcsWriter
	w.uleb128(300)
	w.uleb128(0)
	w.uleb128(127)
	w.u16(0x0102)
	w.u64(1)
	w.bool(true)
	w.str("ab")

	assert.Equal(t, []byte{
		0xac, 0x02,
		0x00,
		0x7f,
		0x02, 0x01,
		0x01, 0, 0, 0, 0, 0, 0, 0,
		0x01,
		0x02, 'a', 'b',
	}, w.Bytes())
}

func TestArgumentEncoding(t *testing.T) {
	cases := []struct {
		arg  Argument
		want []byte
	}{
		{GasCoin(), []byte{0}},
		{Input(3), []byte{1, 3, 0}},
		{Result(1), []byte{2, 1, 0}},
		{NestedResult(1, 2), []byte{3, 1, 0, 2, 0}},
	}
	for _, tc := range cases {
		var w bcsWriter
		tc.arg.encode(&w)
		assert.Equal(t, tc.want, w.Bytes())
	}
}
