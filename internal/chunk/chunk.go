// Package chunk frames a PNG byte stream into chunks: a 32-bit length, a
// 4-byte type, that many payload bytes, and a trailing 4-byte CRC. See
// spec.md §3 and §4.1.
package chunk

import (
	"encoding/binary"
	"io"
	"log"

	"github.com/snksoft/crc"

	"github.com/adpollak/pngcore/internal/pngerr"
)

// Source is the seekable byte source a Reader frames chunks out of. It is
// satisfied by *os.File and by anything else that can both read and skip
// forward.
type Source interface {
	io.Reader
	io.Seeker
}

// Reader exposes one chunk's payload as an io.Reader. It owns src for the
// lifetime of the chunk: open it with Open, read up to Length payload
// bytes, then Close it to skip any unread payload and consume the CRC
// trailer, handing src back to the caller.
//
// Read follows the ordinary io.Reader short-read contract: when fewer than
// len(p) bytes remain in the chunk, Read returns the bytes that are left
// together with io.EOF in the same call. That is spec.md §9's "cross-chunk
// streaming signal" expressed as plain io.EOF instead of a bespoke error
// variant — see internal/chunk.IdatReader, the one caller that acts on it.
type Reader struct {
	src    Source
	Length uint32
	Type   Type
	read   uint32

	// crcBuf accumulates the bytes read so far, for CRC verification on
	// Close. Accumulation is skipped for chunks larger than crcBufCap
	// (in practice, IDAT) so a multi-megabyte compressed stream is not
	// buffered a second time just to check a CRC that spec.md §1/§9
	// explicitly does not require the decoder to enforce.
	crcBuf   []byte
	crcLimit bool
}

// crcBufCap bounds how much payload a Reader will mirror into crcBuf for
// verification. IDAT payloads routinely exceed this; their CRC is simply
// not checked, consistent with spec.md's "read but not validate" stance.
const crcBufCap = 1 << 20

// Open reads a chunk's length and type header from src and returns a
// Reader bound to its payload.
func Open(src Source) (*Reader, error) {
	var hdr [8]byte
	if _, err := io.ReadFull(src, hdr[:]); err != nil {
		return nil, pngerr.WrapIO(err, "reading chunk header")
	}
	length := binary.BigEndian.Uint32(hdr[0:4])
	if length > 0x7FFFFFFF {
		log.Printf("warning: chunk length %d exceeds (2^31)-1", length)
	}
	var typ Type
	copy(typ[:], hdr[4:8])
	r := &Reader{src: src, Length: length, Type: typ}
	r.crcBuf = append(r.crcBuf, typ[:]...)
	return r, nil
}

// Read implements io.Reader over the chunk's payload bytes.
func (r *Reader) Read(p []byte) (int, error) {
	remaining := r.Length - r.read
	if remaining == 0 {
		return 0, io.EOF
	}
	n := len(p)
	if uint32(n) > remaining {
		n = int(remaining)
	}
	if n == 0 {
		return 0, nil
	}
	if _, err := io.ReadFull(r.src, p[:n]); err != nil {
		return 0, pngerr.WrapIO(err, "reading chunk payload")
	}
	r.read += uint32(n)
	r.mirror(p[:n])
	if uint32(n) < uint32(len(p)) {
		return n, io.EOF
	}
	return n, nil
}

func (r *Reader) mirror(b []byte) {
	if r.crcLimit {
		return
	}
	if len(r.crcBuf)+len(b) > crcBufCap {
		r.crcLimit = true
		r.crcBuf = nil
		return
	}
	r.crcBuf = append(r.crcBuf, b...)
}

// Close skips any payload bytes the caller never read, verifies the CRC-32
// trailer when it was feasible to track one (see crcBufCap), and leaves src
// positioned immediately after the CRC.
func (r *Reader) Close() error {
	if remaining := r.Length - r.read; remaining > 0 {
		if _, err := r.src.Seek(int64(remaining), io.SeekCurrent); err != nil {
			return pngerr.WrapIO(err, "skipping unread chunk payload")
		}
		r.read = r.Length
		r.crcLimit = true
	}
	var crcTrailer [4]byte
	if _, err := io.ReadFull(r.src, crcTrailer[:]); err != nil {
		return pngerr.WrapIO(err, "reading chunk CRC")
	}
	if !r.crcLimit {
		stored := binary.BigEndian.Uint32(crcTrailer[:])
		computed := uint32(crc.CalculateCRC(crc.CRC32, r.crcBuf))
		if computed != stored {
			log.Printf("warning: CRC mismatch in %s chunk: stored %08X, computed %08X", r.Type, stored, computed)
		}
	}
	return nil
}
