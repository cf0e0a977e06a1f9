// Scalar arithmetic modulo the order of the Ed25519 base point.
// https://github.com/usbarmory/mculoader
//
// Copyright (c) The mculoader Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package scalar implements reduction modulo
//
//	l = 2^252 + 27742317777372353535851937790883648493
//
// and the canonicality check the Ed25519 verifier uses to reject
// non-canonical S values (signature malleability).
//
// Reduce follows the classic ref10 sc_reduce construction: unpack the
// 64-byte input into 21-bit limbs, then repeatedly fold any limb at
// position 12 or above down using the identity 2^252 = l - C (mod l),
// i.e. 2^(21k) = 2^(21(k-12)) * (-C) (mod l), where C is
// 27742317777372353535851937790883648493 and -C is expressed as the six
// signed 21-bit limbs (666643, 470296, 654183, -997805, 136657, -683901).
// Folding every limb at or above position 12 down to positions k-12..k-7
// brings the value below 2^253 (limb 12 at most 1); since 2^253 < 2l, a
// single conditional subtraction of l then yields the canonical result.
package scalar

// negCLimbs are the six signed 21-bit limbs such that
// 666643 + 470296*2^21 + 654183*2^42 - 997805*2^63 + 136657*2^84 -
// 683901*2^105 == -C exactly (this is -C's balanced base-2^21
// expansion, used as the fold coefficients for 2^252 = l - C (mod l)).
var negCLimbs = [6]int64{666643, 470296, 654183, -997805, 136657, -683901}

const limbBits = 21
const limbMask = int64(1)<<limbBits - 1

// Reduce reduces the 64-byte little-endian integer in, modulo l, and
// returns the canonical 32-byte little-endian result.
//
// A single descending fold pass followed by one carry-propagation can
// leave a nonzero carry in limb 12 (carries ripple up out of limb 11
// during propagation). Rather than special-case that, fold-then-carry
// runs to a fixed point: each round provably shrinks the magnitude
// held at position 12 and above, so a small bounded number of rounds
// is always enough. After every single fold the limbs below the folded
// position are carry-propagated, so no product v*c exceeds 2^41. The
// loop stops once the value lies in [0, 2^253); one conditional
// subtraction of l then makes it canonical.
func Reduce(in [64]byte) [32]byte {
	limbs := unpack64(in) // length 28, extra headroom for carries

	for round := 0; round < 8; round++ {
		foldedAny := false

		for k := len(limbs) - 1; k >= 12; k-- {
			v := limbs[k]
			high := int64(0)
			for _, x := range limbs[k+1:] {
				high |= x
			}

			// a lone 1 in limb 12 is left for the final subtraction
			if v == 0 || (k == 12 && v == 1 && high == 0) {
				continue
			}

			foldedAny = true
			limbs[k] = 0

			for j, c := range negCLimbs {
				limbs[k-12+j] += v * c
			}

			// keep every limb below k in [0, 2^21) so v*c cannot
			// overflow; the carry out stops in limb k
			carryPropagateFull(limbs[:k+1])
		}

		if !foldedAny {
			break
		}
	}

	limbs[11] += limbs[12] << limbBits
	out := pack252(limbs[:12])

	if !IsCanonical(out) {
		borrow := 0
		for i := range out {
			d := int(out[i]) - int(lBytes[i]) - borrow
			out[i] = byte(d)
			borrow = (d >> 8) & 1
		}
	}

	return out
}

// IsCanonical reports whether s, interpreted as a little-endian integer,
// is strictly less than l. The comparison is a constant-time ripple
// subtraction: no data-dependent branch, only arithmetic on the borrow
// bit.
func IsCanonical(s [32]byte) bool {
	var borrow uint32

	for i := 0; i < 32; i++ {
		borrow = (uint32(s[i]) - uint32(lBytes[i]) - borrow) >> 31 & 1
	}

	return borrow == 1
}

// lBytes is l = 2^252 + 27742317777372353535851937790883648493, little-endian.
var lBytes = [32]byte{
	0xed, 0xd3, 0xf5, 0x5c, 0x1a, 0x63, 0x12, 0x58,
	0xd6, 0x9c, 0xf7, 0xa2, 0xde, 0xf9, 0xde, 0x14,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x10,
}

func unpack64(in [64]byte) []int64 {
	// limbs 0-24 hold the 512-bit input: 25 limbs of 21 bits cover 525
	// bits, so the final limb carries the top 8 bits (byte 63) of the
	// value. limbs 25-27 stay zero, giving carryPropagateFull and the
	// fold loop headroom to ripple into without growing the slice.
	limbs := make([]int64, 28)

	var acc uint64
	var accBits uint

	byteIdx := 0
	for i := 0; i < 25; i++ {
		for accBits < limbBits && byteIdx < 64 {
			acc |= uint64(in[byteIdx]) << accBits
			accBits += 8
			byteIdx++
		}

		limbs[i] = int64(acc & uint64(limbMask))
		acc >>= limbBits

		// the last limb drains the accumulator with fewer than 21
		// bits left
		if accBits > limbBits {
			accBits -= limbBits
		} else {
			accBits = 0
		}
	}

	return limbs
}

// carryPropagateFull normalises every limb but the last to [0, 2^21),
// rippling carries (which may be negative, since negCLimbs has negative
// entries) up through the whole slice. limbs[i]>>limbBits is an
// arithmetic shift, rounding toward -infinity, so the remainder it
// leaves behind is always in range regardless of sign.
func carryPropagateFull(limbs []int64) {
	for i := 0; i < len(limbs)-1; i++ {
		carry := limbs[i] >> limbBits
		limbs[i] -= carry << limbBits
		limbs[i+1] += carry
	}
}

// pack252 packs 12 limbs of 21 bits (252 bits total) into 32
// little-endian bytes. The last limb may carry one extra bit, which
// lands in bit 252 (bit 4 of byte 31); the top 3 bits are always zero.
func pack252(limbs []int64) [32]byte {
	var out [32]byte

	var acc uint64
	var accBits uint
	byteIdx := 0

	for i := 0; i < 12; i++ {
		acc |= uint64(limbs[i]) << accBits
		accBits += limbBits

		for accBits >= 8 {
			out[byteIdx] = byte(acc)
			acc >>= 8
			accBits -= 8
			byteIdx++
		}
	}

	if accBits > 0 && byteIdx < 32 {
		out[byteIdx] = byte(acc)
	}

	return out
}
