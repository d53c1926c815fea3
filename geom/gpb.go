package geom

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// A GeoPackage geometry blob is an 8-byte header (magic "GP", version,
// flags, srs id), an optional envelope whose size is encoded in the flags,
// and then a plain WKB geometry.

var errBadGeometry = errors.New("invalid GeoPackage geometry blob")

var wkbBaseNames = map[uint32]string{
	0: "GEOMETRY",
	1: "POINT",
	2: "LINESTRING",
	3: "POLYGON",
	4: "MULTIPOINT",
	5: "MULTILINESTRING",
	6: "MULTIPOLYGON",
	7: "GEOMETRYCOLLECTION",
}

// geometryTypeName decodes the WKB geometry type name from a GeoPackage
// geometry blob.
func geometryTypeName(blob []byte) (string, error) {
	if len(blob) < 8 || blob[0] != 'G' || blob[1] != 'P' {
		return "", errBadGeometry
	}

	flags := blob[3]
	var envelopeLen int
	switch (flags >> 1) & 0x07 {
	case 0:
		envelopeLen = 0
	case 1:
		envelopeLen = 32
	case 2, 3:
		envelopeLen = 48
	case 4:
		envelopeLen = 64
	default:
		return "", fmt.Errorf("%w: bad envelope indicator", errBadGeometry)
	}

	wkb := 8 + envelopeLen
	if len(blob) < wkb+5 {
		return "", fmt.Errorf("%w: truncated", errBadGeometry)
	}

	var order binary.ByteOrder = binary.BigEndian
	if blob[wkb] == 1 {
		order = binary.LittleEndian
	}
	code := order.Uint32(blob[wkb+1 : wkb+5])

	name, ok := wkbBaseNames[code%1000]
	if !ok {
		return fmt.Sprintf("UNKNOWN(%d)", code), nil
	}
	switch code / 1000 {
	case 1:
		name += " Z"
	case 2:
		name += " M"
	case 3:
		name += " ZM"
	}
	return name, nil
}
