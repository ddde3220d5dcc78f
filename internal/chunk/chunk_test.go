package chunk

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/snksoft/crc"
	"github.com/stretchr/testify/require"
)

// buildChunk assembles one well-formed chunk (length, type, data, CRC-32
// over type+data) the way a real PNG datastream lays one out.
func buildChunk(typ Type, data []byte) []byte {
	var buf bytes.Buffer
	var lenField [4]byte
	binary.BigEndian.PutUint32(lenField[:], uint32(len(data)))
	buf.Write(lenField[:])
	buf.Write(typ[:])
	buf.Write(data)
	sum := crc.CalculateCRC(crc.CRC32, append(append([]byte{}, typ[:]...), data...))
	var crcField [4]byte
	binary.BigEndian.PutUint32(crcField[:], uint32(sum))
	buf.Write(crcField[:])
	return buf.Bytes()
}

func TestOpenAndReadReturnsPayload(t *testing.T) {
	data := []byte("hello world")
	stream := bytes.NewReader(buildChunk(IDAT, data))

	r, err := Open(stream)
	require.NoError(t, err)
	require.Equal(t, IDAT, r.Type)
	require.Equal(t, uint32(len(data)), r.Length)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, data, got)
	require.NoError(t, r.Close())
}

func TestReadShortReadCarriesEOF(t *testing.T) {
	data := []byte("abc")
	stream := bytes.NewReader(buildChunk(IDAT, data))

	r, err := Open(stream)
	require.NoError(t, err)

	buf := make([]byte, 10)
	n, err := r.Read(buf)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, 3, n)
	require.Equal(t, data, buf[:n])
	require.NoError(t, r.Close())
}

func TestCloseSkipsUnreadPayload(t *testing.T) {
	data := []byte("this payload is never fully read by the caller")
	following := buildChunk(IEND, nil)
	stream := bytes.NewReader(append(buildChunk(IDAT, data), following...))

	r, err := Open(stream)
	require.NoError(t, err)
	small := make([]byte, 4)
	n, err := r.Read(small)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.NoError(t, r.Close())

	next, err := Open(stream)
	require.NoError(t, err)
	require.Equal(t, IEND, next.Type)
	require.NoError(t, next.Close())
}

func TestIdatReaderConcatenatesAcrossArbitrarySplits(t *testing.T) {
	whole := []byte("the quick brown fox jumps over the lazy dog, twice over")
	splits := [][]byte{
		whole[:1], whole[1:1], whole[1:17], whole[17:18], whole[18:],
	}
	var stream bytes.Buffer
	for _, part := range splits {
		stream.Write(buildChunk(IDAT, part))
	}
	stream.Write(buildChunk(IEND, nil))

	src := bytes.NewReader(stream.Bytes())
	first, err := Open(src)
	require.NoError(t, err)
	require.Equal(t, IDAT, first.Type)

	idat := NewIdatReader(src, first)
	got, err := io.ReadAll(idat)
	require.NoError(t, err)
	require.Equal(t, whole, got)

	pending := idat.Pending()
	require.NotNil(t, pending)
	require.Equal(t, IEND, pending.Type)
	require.NoError(t, pending.Close())
}
