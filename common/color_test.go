package common

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColor_HexRoundTrip(t *testing.T) {
	for _, hex := range []uint32{0x000000, 0xffffff, 0x808080, 0xf5f5f5, 0x404040, 0x123abc} {
		assert.Equal(t, hex, ColorFromHex(hex).Hex(), "%06x", hex)
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{in: "#f5f5f5", want: 0xf5f5f5},
		{in: "F5F5F5", want: 0xf5f5f5},
		{in: "0x202020", want: 0x202020},
		{in: "  #010203 ", want: 0x010203},
		{in: "#fff", wantErr: true},
		{in: "#gggggg", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseHexColor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Hex())
		})
	}
}

func TestColor_TextMarshaling(t *testing.T) {
	text, err := ColorFromHex(0x102030).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "#102030", string(text))

	var c Color
	require.NoError(t, c.UnmarshalText([]byte("#a0b0c0")))
	assert.Equal(t, uint32(0xa0b0c0), c.Hex())
	assert.Error(t, c.UnmarshalText([]byte("nope")))
}

func TestColor_Arithmetic(t *testing.T) {
	a := Color{R: 0.5, G: 0.25, B: 1}
	assert.Equal(t, Color{R: 1, G: 0.5, B: 2}, a.Scale(2))
	assert.Equal(t, Color{R: 0.25, G: 0.0625, B: 1}, a.Mul(a))
	assert.Equal(t, Color{R: 1, G: 0.5, B: 2}, a.Add(a))
}

func TestColor_RGBAClamps(t *testing.T) {
	c := Color{R: 2, G: -1, B: 0.5}
	assert.Equal(t, color.RGBA{R: 255, G: 0, B: 128, A: 255}, c.RGBA())
}
