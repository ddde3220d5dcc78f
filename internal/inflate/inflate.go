// Package inflate implements the zlib wrapper (RFC 1950) and DEFLATE
// (RFC 1951) decompressor spec.md §4.5 describes: stored, fixed-Huffman,
// and dynamic-Huffman blocks, decoding straight into a caller-sized
// destination buffer.
package inflate

import (
	"encoding/binary"
	"hash/adler32"
	"io"
	"log"

	"github.com/adpollak/pngcore/internal/bitio"
	"github.com/adpollak/pngcore/internal/huffman"
	"github.com/adpollak/pngcore/internal/pngerr"
)

// Decompress reads a zlib stream from r and writes exactly len(dst) bytes
// into dst. Emitting more or fewer bytes than len(dst) is a Format error
// (spec.md invariant #4), as is a back-reference whose distance exceeds
// the bytes written so far (invariant #3). The trailing 4-byte Adler-32 is
// checked against dst once decompression finishes, the same "computed and
// compared, but only ever warn" treatment internal/chunk gives CRC-32: a
// mismatch is logged, never a hard failure.
func Decompress(r io.Reader, dst []byte) error {
	br := bitio.New(r)
	if err := readZlibHeader(br); err != nil {
		return err
	}

	pos := 0
	for {
		bfinal, err := br.ReadBit()
		if err != nil {
			return pngerr.WrapIO(err, "reading block header")
		}
		btypeBits, err := br.ReadBits(2)
		if err != nil {
			return pngerr.WrapIO(err, "reading block type")
		}
		switch btypeBits {
		case 0:
			pos, err = storedBlock(br, dst, pos)
		case 1:
			pos, err = huffmanBlock(br, dst, pos, fixedLitLenTree(), fixedDistTree())
		case 2:
			pos, err = dynamicHuffmanBlock(br, dst, pos)
		default:
			err = pngerr.FormatError("invalid DEFLATE block type 3")
		}
		if err != nil {
			return err
		}
		if bfinal {
			break
		}
	}
	if pos != len(dst) {
		return pngerr.FormatError("decompressed size does not match expected buffer size")
	}
	trailer, err := br.ReadBuf(4)
	if err != nil {
		return pngerr.WrapIO(err, "reading zlib Adler-32 trailer")
	}
	stored := binary.BigEndian.Uint32(trailer)
	computed := adler32.Checksum(dst)
	if computed != stored {
		log.Printf("warning: Adler-32 mismatch: stored %08X, computed %08X", stored, computed)
	}
	return nil
}

func readZlibHeader(br *bitio.Reader) error {
	cmf, err := br.ReadU8()
	if err != nil {
		return pngerr.WrapIO(err, "reading zlib CMF")
	}
	if cmf&0x0F != 8 {
		return pngerr.FormatError("unrecognized zlib compression method")
	}
	if cmf>>4 > 7 {
		log.Printf("warning: zlib window size exceeds 32K")
	}
	flg, err := br.ReadU8()
	if err != nil {
		return pngerr.WrapIO(err, "reading zlib FLG")
	}
	if (uint16(cmf)*256+uint16(flg))%31 != 0 {
		log.Printf("warning: zlib header check bits are incorrect")
	}
	if flg&0x20 != 0 {
		return pngerr.FormatError("zlib preset dictionary is not supported")
	}
	return nil
}

func storedBlock(br *bitio.Reader, dst []byte, pos int) (int, error) {
	lenBuf, err := br.ReadU16LE()
	if err != nil {
		return pos, pngerr.WrapIO(err, "reading stored block length")
	}
	nlen, err := br.ReadU16LE()
	if err != nil {
		return pos, pngerr.WrapIO(err, "reading stored block length complement")
	}
	if ^lenBuf != nlen {
		log.Printf("warning: stored block NLEN does not complement LEN")
	}
	n := int(lenBuf)
	if n == 0 {
		return pos, nil
	}
	if pos+n > len(dst) {
		return pos, pngerr.FormatError("stored block overflows output buffer")
	}
	buf, err := br.ReadBuf(n)
	if err != nil {
		return pos, pngerr.WrapIO(err, "reading stored block data")
	}
	copy(dst[pos:pos+n], buf)
	return pos + n, nil
}

func huffmanBlock(br *bitio.Reader, dst []byte, pos int, litLen, dist *huffman.Tree) (int, error) {
	for {
		sym, err := litLen.Decode(br)
		if err != nil {
			return pos, err
		}
		switch {
		case sym < 256:
			if pos >= len(dst) {
				return pos, pngerr.FormatError("literal overflows output buffer")
			}
			dst[pos] = byte(sym)
			pos++
		case sym == 256:
			return pos, nil
		case sym <= 285:
			length, err := readLength(br, sym)
			if err != nil {
				return pos, err
			}
			distSym, err := dist.Decode(br)
			if err != nil {
				return pos, err
			}
			if distSym > 29 {
				return pos, pngerr.FormatError("invalid distance symbol")
			}
			distance, err := readDistance(br, distSym)
			if err != nil {
				return pos, err
			}
			if distance > pos {
				return pos, pngerr.FormatError("back-reference distance exceeds output written so far")
			}
			if pos+length > len(dst) {
				return pos, pngerr.FormatError("back-reference overflows output buffer")
			}
			src := pos - distance
			for i := 0; i < length; i++ {
				dst[pos+i] = dst[src+i]
			}
			pos += length
		default:
			return pos, pngerr.FormatError("invalid literal/length symbol")
		}
	}
}

func readLength(br *bitio.Reader, sym uint16) (int, error) {
	e := lengthTable[sym-257]
	if e.extra == 0 {
		return e.base, nil
	}
	extra, err := br.ReadBits(e.extra)
	if err != nil {
		return 0, pngerr.WrapIO(err, "reading length extra bits")
	}
	return e.base + int(extra), nil
}

func readDistance(br *bitio.Reader, sym uint16) (int, error) {
	e := distanceTable[sym]
	if e.extra == 0 {
		return e.base, nil
	}
	extra, err := br.ReadBits(e.extra)
	if err != nil {
		return 0, pngerr.WrapIO(err, "reading distance extra bits")
	}
	return e.base + int(extra), nil
}

func fixedLitLenTree() *huffman.Tree {
	t, err := huffman.Build(fixedLitLenLengths())
	if err != nil {
		panic("inflate: fixed literal/length code is malformed: " + err.Error())
	}
	return t
}

func fixedDistTree() *huffman.Tree {
	t, err := huffman.Build(fixedDistLengths())
	if err != nil {
		panic("inflate: fixed distance code is malformed: " + err.Error())
	}
	return t
}

// dynamicHuffmanBlock reads the HLIT/HDIST/HCLEN header, the code-length
// meta-code, and the two Huffman trees it describes, then decodes symbols
// the same way a fixed-Huffman block does (spec.md §4.5).
func dynamicHuffmanBlock(br *bitio.Reader, dst []byte, pos int) (int, error) {
	hlitBits, err := br.ReadBits(5)
	if err != nil {
		return pos, pngerr.WrapIO(err, "reading HLIT")
	}
	hdistBits, err := br.ReadBits(5)
	if err != nil {
		return pos, pngerr.WrapIO(err, "reading HDIST")
	}
	hclenBits, err := br.ReadBits(4)
	if err != nil {
		return pos, pngerr.WrapIO(err, "reading HCLEN")
	}
	hlit := int(hlitBits) + 257
	hdist := int(hdistBits) + 1
	hclen := int(hclenBits) + 4

	var clLengths [19]int
	for i := 0; i < hclen; i++ {
		l, err := br.ReadBits(3)
		if err != nil {
			return pos, pngerr.WrapIO(err, "reading code-length code length")
		}
		clLengths[codeLengthOrder[i]] = int(l)
	}
	clTree, err := huffman.Build(clLengths[:])
	if err != nil {
		return pos, err
	}

	lengths := make([]int, hlit+hdist)
	i := 0
	for i < len(lengths) {
		sym, err := clTree.Decode(br)
		if err != nil {
			return pos, err
		}
		switch {
		case sym <= 15:
			lengths[i] = int(sym)
			i++
		case sym == 16:
			if i == 0 {
				return pos, pngerr.FormatError("code-length repeat code 16 at position 0")
			}
			repeatBits, err := br.ReadBits(2)
			if err != nil {
				return pos, pngerr.WrapIO(err, "reading repeat-previous extra bits")
			}
			count := int(repeatBits) + 3
			if i+count > len(lengths) {
				log.Printf("warning: code-length run extends past the table")
				count = len(lengths) - i
			}
			prev := lengths[i-1]
			for k := 0; k < count; k++ {
				lengths[i+k] = prev
			}
			i += count
		case sym == 17:
			zeroBits, err := br.ReadBits(3)
			if err != nil {
				return pos, pngerr.WrapIO(err, "reading zero-run extra bits")
			}
			count := int(zeroBits) + 3
			if i+count > len(lengths) {
				log.Printf("warning: code-length run extends past the table")
				count = len(lengths) - i
			}
			i += count
		case sym == 18:
			zeroBits, err := br.ReadBits(7)
			if err != nil {
				return pos, pngerr.WrapIO(err, "reading long zero-run extra bits")
			}
			count := int(zeroBits) + 11
			if i+count > len(lengths) {
				log.Printf("warning: code-length run extends past the table")
				count = len(lengths) - i
			}
			i += count
		default:
			return pos, pngerr.FormatError("invalid code-length symbol")
		}
	}

	litLenTree, err := huffman.Build(lengths[:hlit])
	if err != nil {
		return pos, err
	}
	distTree, err := huffman.Build(lengths[hlit:])
	if err != nil {
		return pos, err
	}
	return huffmanBlock(br, dst, pos, litLenTree, distTree)
}
