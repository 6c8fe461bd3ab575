package histdata

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Contour wire layout:
//
//	uint64 LE  point count
//	float32 LE latitude   } repeated per point, in contour order
//	float32 LE longitude  }
//
// The layout is fixed and versioned through the hash domain strings in
// hash.go. Point count is bounded to keep a corrupt length prefix from
// driving a huge allocation on decode.
const (
	contourHeaderSize = 8
	contourPointSize  = 8

	// MaxContourPoints bounds a single border polygon. Real country
	// outlines in the dataset stay well under 100k points.
	MaxContourPoints = 1 << 20
)

// EncodeContour serializes an ordered contour to its canonical byte
// form. The same contour always produces the same bytes.
func EncodeContour(contour []Coordinate) []byte {
	buf := make([]byte, contourHeaderSize+contourPointSize*len(contour))
	binary.LittleEndian.PutUint64(buf, uint64(len(contour)))

	off := contourHeaderSize
	for _, p := range contour {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(p.Latitude))
		binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(p.Longitude))
		off += contourPointSize
	}
	return buf
}

// DecodeContour is the inverse of EncodeContour. Trailing bytes after
// the declared point count are rejected.
func DecodeContour(data []byte) ([]Coordinate, error) {
	if len(data) < contourHeaderSize {
		return nil, fmt.Errorf("decode contour: truncated header: %d bytes", len(data))
	}

	count := binary.LittleEndian.Uint64(data)
	if count > MaxContourPoints {
		return nil, fmt.Errorf("decode contour: point count %d exceeds limit %d", count, MaxContourPoints)
	}
	want := contourHeaderSize + contourPointSize*int(count)
	if len(data) != want {
		return nil, fmt.Errorf("decode contour: %d bytes for %d points, want %d", len(data), count, want)
	}

	contour := make([]Coordinate, count)
	off := contourHeaderSize
	for i := range contour {
		contour[i] = Coordinate{
			Latitude:  math.Float32frombits(binary.LittleEndian.Uint32(data[off:])),
			Longitude: math.Float32frombits(binary.LittleEndian.Uint32(data[off+4:])),
		}
		off += contourPointSize
	}
	return contour, nil
}
