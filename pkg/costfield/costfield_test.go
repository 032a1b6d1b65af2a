package costfield

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/linkroute/pkg/geom"
)

func TestNewRejectsEmpty(t *testing.T) {
	_, err := New(0, 3, 32)
	assert.ErrorIs(t, err, ErrInvalidSize)
	_, err = New(3, 3, 0)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestSizeLimit(t *testing.T) {
	_, err := New(MaxCells, 2, 1)
	assert.ErrorIs(t, err, ErrInvalidSize)
	_, err = New(1<<40, 1<<40, 1)
	assert.ErrorIs(t, err, ErrInvalidSize, "cols*rows overflow is caught")

	f, err := New(MaxCells, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, MaxCells, f.Len())

	tests := []struct {
		name                string
		width, height, cell float64
	}{
		{"huge viewport", 1e12, 1e12, 1},
		{"just over", 2049, 2048, 1},
		{"zero viewport", 0, 600, 8},
		{"nan", math.NaN(), 600, 8},
		{"infinite cell", 800, 600, math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ForViewport(tt.width, tt.height, tt.cell)
			assert.ErrorIs(t, err, ErrInvalidSize)
		})
	}

	cols, rows, err := Dims(2048, 2048, 1)
	require.NoError(t, err)
	assert.Equal(t, MaxCells, cols*rows)
}

func TestForViewportRoundsUp(t *testing.T) {
	f, err := ForViewport(100, 64, 32)
	require.NoError(t, err)
	assert.Equal(t, 4, f.Cols)
	assert.Equal(t, 2, f.Rows)
	assert.Equal(t, geom.R(0, 0, 128, 64), f.Bounds())
}

func TestCellClamps(t *testing.T) {
	f, err := New(4, 3, 10)
	require.NoError(t, err)

	x, y := f.Cell(geom.Pt(25, 12))
	assert.Equal(t, []int{2, 1}, []int{x, y})

	x, y = f.Cell(geom.Pt(-50, 999))
	assert.Equal(t, []int{0, 2}, []int{x, y})

	assert.Equal(t, geom.Pt(25, 15), f.CellCenter(2, 1))
}

func TestAddRect(t *testing.T) {
	f, err := New(4, 4, 10)
	require.NoError(t, err)

	f.AddRect(geom.R(10, 10, 20, 10), 5)
	f.AddRect(geom.R(10, 10, 10, 10), 5)

	assert.Equal(t, uint32(10), f.At(1, 1))
	assert.Equal(t, uint32(5), f.At(2, 1))
	assert.Equal(t, uint32(0), f.At(1, 2), "max edge is exclusive")
	assert.Equal(t, uint32(0), f.At(0, 0))

	f.Set(3, 3, 1<<32-1)
	f.AddRect(geom.R(30, 30, 10, 10), 7)
	assert.Equal(t, uint32(1<<32-1), f.At(3, 3), "sums saturate")
}

func TestDecodeRejectsHugeImageHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 2, 2))))
	data := buf.Bytes()

	// Claim 100000x100000 pixels in IHDR and fix up its CRC.
	binary.BigEndian.PutUint32(data[16:], 100000)
	binary.BigEndian.PutUint32(data[20:], 100000)
	binary.BigEndian.PutUint32(data[29:], crc32.ChecksumIEEE(data[12:29]))

	_, err := Decode(bytes.NewReader(data), 8, DefaultMaxPenalty)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestUnmarshalRejectsOversizedHeader(t *testing.T) {
	data := make([]byte, 16)
	binary.LittleEndian.PutUint32(data[0:], 1<<16)
	binary.LittleEndian.PutUint32(data[4:], 1<<16)
	binary.LittleEndian.PutUint64(data[8:], math.Float64bits(1))

	var f Field
	assert.ErrorIs(t, f.UnmarshalBinary(data), ErrInvalidSize)
}

func TestBinaryRoundTrip(t *testing.T) {
	f, err := New(3, 2, 16)
	require.NoError(t, err)
	f.Set(2, 1, 42)
	f.Set(0, 1, 7)

	data, err := f.MarshalBinary()
	require.NoError(t, err)

	var got Field
	require.NoError(t, got.UnmarshalBinary(data))
	assert.Equal(t, *f, got)

	assert.Error(t, got.UnmarshalBinary(data[:10]))
	assert.Error(t, got.UnmarshalBinary(data[:len(data)-1]))
}

func TestDecodeImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 32))
	for x := 32; x < 64; x++ {
		for y := 0; y < 32; y++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	f, err := Decode(&buf, 32, 100)
	require.NoError(t, err)
	assert.Equal(t, 2, f.Cols)
	assert.Equal(t, 1, f.Rows)
	assert.Equal(t, uint32(0), f.At(0, 0))
	assert.Equal(t, uint32(100), f.At(1, 0))

	gray := f.Image(100)
	assert.Equal(t, uint8(255), gray.GrayAt(1, 0).Y)
}
