package ihdr

import (
	"fmt"
	"log"

	"github.com/adpollak/pngcore/internal/pngerr"
)

// Palette is the ordered set of (r, g, b) triples a PLTE chunk declares,
// consumed only when the color mode is one of the Palette* variants
// (spec.md §3).
type Palette struct {
	Entries [][3]byte
}

// ParsePalette builds a Palette from a PLTE payload. The PNG spec requires
// the payload length be a multiple of 3; a violation is logged and the
// trailing partial entry is dropped rather than rejected, matching
// spec.md §6's "warned, not rejected" posture for PLTE anomalies.
func ParsePalette(data []byte) *Palette {
	if len(data)%3 != 0 {
		log.Printf("warning: PLTE payload length %d is not a multiple of 3", len(data))
	}
	n := len(data) / 3
	p := &Palette{Entries: make([][3]byte, n)}
	for i := 0; i < n; i++ {
		p.Entries[i] = [3]byte{data[i*3], data[i*3+1], data[i*3+2]}
	}
	return p
}

// CheckBitDepth warns if the palette holds more entries than bitDepth can
// index.
func (p *Palette) CheckBitDepth(bitDepth uint8) {
	max := 1 << bitDepth
	if len(p.Entries) > max {
		log.Printf("warning: PLTE has %d entries, more than %d-bit indices can address", len(p.Entries), bitDepth)
	}
}

// Lookup returns the (r, g, b) triple for index idx.
func (p *Palette) Lookup(idx int) ([3]byte, error) {
	if idx < 0 || idx >= len(p.Entries) {
		return [3]byte{}, pngerr.FormatError(fmt.Sprintf("palette index %d out of range (have %d entries)", idx, len(p.Entries)))
	}
	return p.Entries[idx], nil
}
