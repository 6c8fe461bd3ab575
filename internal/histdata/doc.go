// Package histdata defines the records stored for a historical year and
// the deterministic byte codec used to content-address border contours.
//
// A year's snapshot (Data) holds the countries, cities and optional note
// visible on the map for that year. Border contours are serialized to a
// fixed little-endian layout so that byte-identical contours always hash
// to the same value; the hash is the deduplication key in the store.
//
// CRITICAL: EncodeContour is the ONLY serialization that may feed
// BorderHash. Any change to the wire layout changes every content hash
// and orphans existing border rows, so the layout is versioned through
// the hash domain strings instead.
package histdata
