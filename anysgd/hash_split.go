package anysgd

import "bytes"

// A Hasher is a SampleList that can hash its samples.
// Equal samples must have equal hashes.
type Hasher interface {
	SampleList
	Hash(i int) []byte
}

// HashSplit partitions h by the hash of each sample, so a
// given sample always lands on the same side regardless
// of the list order.
// Roughly leftRatio of the samples end up on the left.
//
// The order of h is changed in the process.
func HashSplit(h Hasher, leftRatio float64) (left, right SampleList) {
	cutoff := hashCutoff(leftRatio)
	var numLeft int
	for i := 0; i < h.Len(); i++ {
		if leftRatio >= 1 || bytes.Compare(h.Hash(i), cutoff) < 0 {
			h.Swap(numLeft, i)
			numLeft++
		}
	}
	return h.Slice(0, numLeft), h.Slice(numLeft, h.Len())
}

// hashCutoff encodes ratio as a big-endian base-256
// fraction.
func hashCutoff(ratio float64) []byte {
	if ratio <= 0 {
		return nil
	}
	res := make([]byte, 8)
	for i := range res {
		ratio *= 256
		digit := int(ratio)
		if digit > 255 {
			digit = 255
		}
		ratio -= float64(digit)
		res[i] = byte(digit)
	}
	return res
}
