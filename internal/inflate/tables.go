package inflate

// Length and distance base/extra-bits tables for DEFLATE back-references
// (spec.md §4.5, RFC 1951 §3.2.5).

type baseExtra struct {
	base  int
	extra int
}

// lengthTable covers symbols 257..285.
var lengthTable = [29]baseExtra{
	{3, 0}, {4, 0}, {5, 0}, {6, 0}, {7, 0}, {8, 0}, {9, 0}, {10, 0},
	{11, 1}, {13, 1}, {15, 1}, {17, 1},
	{19, 2}, {23, 2}, {27, 2}, {31, 2},
	{35, 3}, {43, 3}, {51, 3}, {59, 3},
	{67, 4}, {83, 4}, {99, 4}, {115, 4},
	{131, 5}, {163, 5}, {195, 5}, {227, 5},
	{258, 0},
}

// distanceTable covers symbols 0..29.
var distanceTable = [30]baseExtra{
	{1, 0}, {2, 0}, {3, 0}, {4, 0},
	{5, 1}, {7, 1},
	{9, 2}, {13, 2},
	{17, 3}, {25, 3},
	{33, 4}, {49, 4},
	{65, 5}, {97, 5},
	{129, 6}, {193, 6},
	{257, 7}, {385, 7},
	{513, 8}, {769, 8},
	{1025, 9}, {1537, 9},
	{2049, 10}, {3073, 10},
	{4097, 11}, {6145, 11},
	{8193, 12}, {12289, 12},
	{16385, 13}, {24577, 13},
}

// codeLengthOrder is the order HCLEN code lengths arrive in (spec.md §4.5).
var codeLengthOrder = [19]int{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

// fixedLitLenLengths is the fixed literal/length code from RFC 1951 §3.2.6.
func fixedLitLenLengths() []int {
	lengths := make([]int, 288)
	for i := 0; i < 144; i++ {
		lengths[i] = 8
	}
	for i := 144; i < 256; i++ {
		lengths[i] = 9
	}
	for i := 256; i < 280; i++ {
		lengths[i] = 7
	}
	for i := 280; i < 288; i++ {
		lengths[i] = 8
	}
	return lengths
}

// fixedDistLengths is the fixed distance code: all 30 symbols at length 5,
// plus the two code points 30 and 31 (RFC 1951 §3.2.6) that complete the
// 5-bit code; huffmanBlock rejects them if they are ever decoded.
func fixedDistLengths() []int {
	lengths := make([]int, 32)
	for i := range lengths {
		lengths[i] = 5
	}
	return lengths
}
