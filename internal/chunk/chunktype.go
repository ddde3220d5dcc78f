package chunk

// Type is a 4-byte PNG chunk type code, e.g. "IHDR" or "gAMA". Bit 5 (0x20)
// of the first byte distinguishes ancillary chunks (bit set) from critical
// ones (bit clear) — see spec.md §3 and §6.
type Type [4]byte

func (t Type) String() string { return string(t[:]) }

// Critical reports whether this chunk type must be understood by every
// conforming reader. Unrecognized critical chunks are warned about;
// unrecognized ancillary chunks are silently skipped.
func (t Type) Critical() bool {
	return t[0]&0x20 == 0
}

var (
	IHDR = Type{'I', 'H', 'D', 'R'}
	PLTE = Type{'P', 'L', 'T', 'E'}
	IDAT = Type{'I', 'D', 'A', 'T'}
	IEND = Type{'I', 'E', 'N', 'D'}
)

// knownAncillary names the ancillary chunk types this decoder recognizes
// well enough to label in diagnostics. None of them carry decode-affecting
// semantics here (recognizing ancillary-chunk *content* is a spec.md
// Non-goal). Each label is the type's own 4 bytes, so Name returns the same
// text for these types as its raw-bytes fallback would.
var knownAncillary = map[Type]string{
	{'c', 'H', 'R', 'M'}: "cHRM",
	{'g', 'A', 'M', 'A'}: "gAMA",
	{'i', 'C', 'C', 'P'}: "iCCP",
	{'s', 'B', 'I', 'T'}: "sBIT",
	{'s', 'R', 'G', 'B'}: "sRGB",
	{'b', 'K', 'G', 'D'}: "bKGD",
	{'h', 'I', 'S', 'T'}: "hIST",
	{'t', 'R', 'N', 'S'}: "tRNS",
	{'p', 'H', 'Y', 's'}: "pHYs",
	{'s', 'P', 'L', 'T'}: "sPLT",
	{'t', 'I', 'M', 'E'}: "tIME",
	{'i', 'T', 'X', 't'}: "iTXt",
	{'t', 'E', 'X', 't'}: "tEXt",
	{'z', 'T', 'X', 't'}: "zTXt",
}

// Name returns a readable label for t, falling back to the raw 4 bytes for
// anything this decoder does not specifically recognize.
func (t Type) Name() string {
	if name, ok := knownAncillary[t]; ok {
		return name
	}
	return t.String()
}
