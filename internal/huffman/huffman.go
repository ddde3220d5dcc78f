// Package huffman builds and decodes canonical Huffman codes the way
// spec.md §3/§9 models them: a recursive binary tree of Leaf/Branch nodes,
// rather than a flat decoding table. Acceptance/rejection and the decoded
// symbol for any code must match the canonical next-code construction this
// package also uses internally to assign codes before inserting them.
package huffman

import (
	"github.com/adpollak/pngcore/internal/bitio"
	"github.com/adpollak/pngcore/internal/pngerr"
)

// maxCodeLen is the largest code length DEFLATE ever uses (spec.md §4.5:
// code-length codes top out at 7 bits for run lengths, literal/length and
// distance codes at 15 bits of defined length; 16 is a safe ceiling).
const maxCodeLen = 16

type node struct {
	leaf     bool
	symbol   uint16
	children [2]*node
}

// Tree is a canonical Huffman code tree: shortest codes first, and symbols
// of equal length in ascending order (spec.md §3).
type Tree struct {
	root *node
}

// Build constructs a Tree from lengths, indexed by symbol; lengths[i] == 0
// means symbol i is absent. A well-formed input fills the tree exactly —
// spec.md invariant #2: construction succeeds iff
// sum(2^(maxLen-len_i)) == 2^maxLen over present symbols. The sole
// exception is a single present symbol of any length, accepted as a
// degenerate one-leaf tree with its sibling code point left reserved
// (spec.md §9's "single-distance-code" Open Question).
func Build(lengths []int) (*Tree, error) {
	var count [maxCodeLen + 1]int
	maxLen := 0
	nSymbols := 0
	for _, l := range lengths {
		if l == 0 {
			continue
		}
		if l < 0 || l > maxCodeLen {
			return nil, pngerr.FormatError("invalid huffman code length")
		}
		count[l]++
		nSymbols++
		if l > maxLen {
			maxLen = l
		}
	}
	if nSymbols == 0 {
		return &Tree{}, nil
	}
	if nSymbols > 1 {
		sum := 0
		for l := 1; l <= maxLen; l++ {
			sum += count[l] << uint(maxLen-l)
		}
		if sum != 1<<uint(maxLen) {
			return nil, pngerr.FormatError("invalid huffman codes")
		}
	}

	nextCode := make([]int, maxLen+1)
	code := 0
	for bits := 1; bits <= maxLen; bits++ {
		code = (code + count[bits-1]) << 1
		nextCode[bits] = code
	}

	t := &Tree{}
	for symbol, l := range lengths {
		if l == 0 {
			continue
		}
		c := nextCode[l]
		nextCode[l]++
		if err := t.insert(c, l, uint16(symbol)); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Tree) insert(code, length int, symbol uint16) error {
	cur := &t.root
	for i := length - 1; i >= 0; i-- {
		bit := (code >> uint(i)) & 1
		if *cur == nil {
			*cur = &node{}
		}
		if (*cur).leaf {
			return pngerr.FormatError("invalid huffman codes")
		}
		cur = &(*cur).children[bit]
	}
	if *cur != nil {
		return pngerr.FormatError("invalid huffman codes")
	}
	*cur = &node{leaf: true, symbol: symbol}
	return nil
}

// Decode walks the tree one bit at a time from br and returns the decoded
// symbol.
func (t *Tree) Decode(br *bitio.Reader) (uint16, error) {
	n := t.root
	if n == nil {
		return 0, pngerr.FormatError("huffman: empty code table used")
	}
	for !n.leaf {
		bit, err := br.ReadBit()
		if err != nil {
			return 0, err
		}
		idx := 0
		if bit {
			idx = 1
		}
		n = n.children[idx]
		if n == nil {
			return 0, pngerr.FormatError("invalid huffman code")
		}
	}
	return n.symbol, nil
}
