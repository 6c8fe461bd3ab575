package histdata

import (
	"crypto/sha256"
	"encoding/hex"
)

// Domain prefixes for content-addressed rows. The version suffix
// enables future layout migration without silently colliding with old
// hashes.
const (
	domainBorder = "histomap/border/v1"
	domainNote   = "histomap/note/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// BorderHash computes the content key for an encoded contour. Two
// countries whose contours encode to identical bytes share one border
// row in the store.
func BorderHash(encoded []byte) string {
	return hashWithDomain(domainBorder, encoded)
}

// ContourHash is shorthand for BorderHash(EncodeContour(contour)).
func ContourHash(contour []Coordinate) string {
	return BorderHash(EncodeContour(contour))
}

// NoteHash computes the content key for a note text.
func NoteHash(text string) string {
	return hashWithDomain(domainNote, []byte(text))
}
