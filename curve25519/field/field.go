// Field arithmetic over GF(2^255 - 19).
// https://github.com/usbarmory/mculoader
//
// Copyright (c) The mculoader Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package field implements GF(2^255-19) arithmetic using the five-limb,
// 51-bit radix representation described in RFC 7748's reference
// implementations. It underlies curve25519/group and, through that, the
// Ed25519 verifier.
//
// Every limb carries headroom above 51 bits between operations; callers
// that need a canonical value (for comparison or serialization) must call
// Reduce first. Multiplication follows the schoolbook
// 5x5 construction with the upper cross terms pre-multiplied by 19 so the
// ten partial products collapse back into five limbs.
package field

import "math/bits"

const mask51 = (uint64(1) << 51) - 1

// Element is a field element in unreduced five-limb 51-bit form.
type Element struct {
	l [5]uint64
}

// Zero returns the additive identity.
func Zero() Element { return Element{} }

// One returns the multiplicative identity.
func One() Element { return Element{l: [5]uint64{1, 0, 0, 0, 0}} }

// FromUint64 returns the field element with value v.
func FromUint64(v uint64) Element {
	return Element{l: [5]uint64{v, 0, 0, 0, 0}}
}

// dConst and sqrtM1Const are derived once, at init time, from their
// arithmetic definitions rather than hardcoded as literals: d = -121665/
// 121666 mod p, and sqrt(-1) = 2^((p-1)/4) mod p (valid because p = 5 mod
// 8, so -1 is a quadratic residue with that exponent as one of its two
// roots). Deriving them from Invert/Square/Mul, which carry their own
// known-answer tests, is less error-prone than transcribing 255-bit
// constants by hand.
var dConst, sqrtM1Const Element

func init() {
	dConst = Sub(Zero(), Mul(FromUint64(121665), Invert(FromUint64(121666))))

	two := FromUint64(2)
	pow2253 := two
	for i := 0; i < 253; i++ {
		pow2253 = Square(pow2253)
	}
	twoToFive := Mul(Square(Square(two)), two)
	sqrtM1Const = Mul(pow2253, Invert(twoToFive))
}

// D returns the twisted Edwards curve constant d.
func D() Element { return dConst }

// SqrtM1 returns a fixed square root of -1 modulo p.
func SqrtM1() Element { return sqrtM1Const }

// Add sets and returns a+b. The result may carry headroom above 51 bits per
// limb; callers needing a canonical value must Reduce.
func Add(a, b Element) Element {
	var out Element
	for i := range out.l {
		out.l[i] = a.l[i] + b.l[i]
	}
	return out
}

// twoP is 2p expressed in the five-limb radix, used by Sub to stay
// non-negative before reducing.
var twoP = [5]uint64{
	0xFFFFFFFFFFFDA,
	0xFFFFFFFFFFFFE,
	0xFFFFFFFFFFFFE,
	0xFFFFFFFFFFFFE,
	0xFFFFFFFFFFFFE,
}

// Sub sets and returns a-b, adding 2p first so every limb stays
// non-negative, then carry-propagating.
func Sub(a, b Element) Element {
	var out Element
	var c uint64

	out.l[0] = a.l[0] + twoP[0] - b.l[0]
	c = out.l[0] >> 51
	out.l[0] &= mask51

	for i := 1; i < 5; i++ {
		out.l[i] = a.l[i] + twoP[i] + c - b.l[i]
		c = out.l[i] >> 51
		out.l[i] &= mask51
	}

	// fold the final carry back with the characteristic *19 wrap
	out.l[0] += 19 * c

	return out
}

// u128 is a portable 128-bit unsigned accumulator built from two uint64
// halves, used when the target lacks a native 128-bit integer type. On a
// host with math/bits intrinsics this compiles down to the same
// mul64x64-plus-carry sequence a native type would produce.
type u128 struct {
	hi, lo uint64
}

func mul64(a, b uint64) u128 {
	hi, lo := bits.Mul64(a, b)
	return u128{hi: hi, lo: lo}
}

func (x u128) add(y u128) u128 {
	lo, carry := bits.Add64(x.lo, y.lo, 0)
	hi, _ := bits.Add64(x.hi, y.hi, carry)
	return u128{hi: hi, lo: lo}
}

// addLo adds a 64-bit value into the low half, propagating carry to hi.
func (x u128) addLo(y uint64) u128 {
	lo, carry := bits.Add64(x.lo, y, 0)
	hi, _ := bits.Add64(x.hi, 0, carry)
	return u128{hi: hi, lo: lo}
}

// shr51 returns x >> 51 as a uint64 (the field never accumulates enough
// partial products for the result to exceed 64 bits after this shift).
func (x u128) shr51() uint64 {
	return (x.hi << 13) | (x.lo >> 51)
}

func (x u128) lo51() uint64 {
	return x.lo & mask51
}

// Mul sets and returns a*b via the schoolbook 5x5 product with the five
// "upper" cross terms pre-multiplied by 19 so the ten partial products
// collapse back into five limbs.
func Mul(a, b Element) Element {
	r0, r1, r2, r3, r4 := a.l[0], a.l[1], a.l[2], a.l[3], a.l[4]
	s0, s1, s2, s3, s4 := b.l[0], b.l[1], b.l[2], b.l[3], b.l[4]

	t0 := mul64(r0, s0)
	t1 := mul64(r0, s1).add(mul64(r1, s0))
	t2 := mul64(r0, s2).add(mul64(r2, s0)).add(mul64(r1, s1))
	t3 := mul64(r0, s3).add(mul64(r3, s0)).add(mul64(r1, s2)).add(mul64(r2, s1))
	t4 := mul64(r0, s4).add(mul64(r4, s0)).add(mul64(r3, s1)).add(mul64(r1, s3)).add(mul64(r2, s2))

	r1 *= 19
	r2 *= 19
	r3 *= 19
	r4 *= 19

	t0 = t0.add(mul64(r4, s1)).add(mul64(r1, s4)).add(mul64(r2, s3)).add(mul64(r3, s2))
	t1 = t1.add(mul64(r4, s2)).add(mul64(r2, s4)).add(mul64(r3, s3))
	t2 = t2.add(mul64(r4, s3)).add(mul64(r3, s4))
	t3 = t3.add(mul64(r4, s4))

	var out Element

	c := t0.shr51()
	out.l[0] = t0.lo51()

	t1 = t1.addLo(c)
	c = t1.shr51()
	out.l[1] = t1.lo51()

	t2 = t2.addLo(c)
	c = t2.shr51()
	out.l[2] = t2.lo51()

	t3 = t3.addLo(c)
	c = t3.shr51()
	out.l[3] = t3.lo51()

	t4 = t4.addLo(c)
	c = t4.shr51()
	out.l[4] = t4.lo51()

	out.l[0] += 19 * c
	c = out.l[0] >> 51
	out.l[0] &= mask51
	out.l[1] += c

	return out
}

// Square sets and returns a*a. Implemented via Mul rather than the
// dedicated squaring shortcut some implementations use to halve the
// partial-product count; verification is not throughput bound.
func Square(a Element) Element {
	return Mul(a, a)
}

// CMove returns src if the low bit of flag is set and dst otherwise (flag
// is 0 or 1), in constant time with respect to flag: every limb is masked
// with the sign-extension of that bit rather than branching on it.
func CMove(dst, src Element, flag uint64) Element {
	mask := uint64(0) - (flag & 1)

	var out Element
	for i := range out.l {
		out.l[i] = dst.l[i] ^ (mask & (dst.l[i] ^ src.l[i]))
	}

	return out
}

// carryPropagate folds each limb's overflow above 51 bits into the next,
// wrapping any final overflow out of limb 4 back into limb 0 multiplied by
// 19 (2^255 = 19 mod p).
func (e *Element) carryPropagate() {
	var c uint64

	for pass := 0; pass < 2; pass++ {
		c = e.l[0] >> 51
		e.l[0] &= mask51
		e.l[1] += c

		c = e.l[1] >> 51
		e.l[1] &= mask51
		e.l[2] += c

		c = e.l[2] >> 51
		e.l[2] &= mask51
		e.l[3] += c

		c = e.l[3] >> 51
		e.l[3] &= mask51
		e.l[4] += c

		c = e.l[4] >> 51
		e.l[4] &= mask51
		e.l[0] += 19 * c
	}
}

// Reduce returns a copy of a with every limb brought below 2^51 and the
// value brought into canonical range [0, p).
func Reduce(a Element) Element {
	out := a
	out.carryPropagate()

	// dry-run carry chain to decide whether out >= p; q is 0 or 1
	q := (out.l[0] + 19) >> 51
	q = (out.l[1] + q) >> 51
	q = (out.l[2] + q) >> 51
	q = (out.l[3] + q) >> 51
	q = (out.l[4] + q) >> 51

	out.l[0] += 19 * q

	c := out.l[0] >> 51
	out.l[0] &= mask51
	out.l[1] += c

	c = out.l[1] >> 51
	out.l[1] &= mask51
	out.l[2] += c

	c = out.l[2] >> 51
	out.l[2] &= mask51
	out.l[3] += c

	c = out.l[3] >> 51
	out.l[3] &= mask51
	out.l[4] += c

	out.l[4] &= mask51 // any further carry out of limb 4 is mod 2^255

	return out
}

// Invert returns a^(p-2), the multiplicative inverse of a, via the
// standard 2^255-21 addition chain.
func Invert(z Element) Element {
	var t0, t1, t2, t3 Element

	t0 = Square(z)
	t1 = Square(t0)
	t1 = Square(t1)
	t1 = Mul(z, t1)
	t0 = Mul(t0, t1)
	t2 = Square(t0)
	t1 = Mul(t1, t2)
	t2 = Square(t1)
	for i := 0; i < 4; i++ {
		t2 = Square(t2)
	}
	t1 = Mul(t2, t1)
	t2 = Square(t1)
	for i := 0; i < 9; i++ {
		t2 = Square(t2)
	}
	t2 = Mul(t2, t1)
	t3 = Square(t2)
	for i := 0; i < 19; i++ {
		t3 = Square(t3)
	}
	t2 = Mul(t3, t2)
	t2 = Square(t2)
	for i := 0; i < 9; i++ {
		t2 = Square(t2)
	}
	t1 = Mul(t2, t1)
	t2 = Square(t1)
	for i := 0; i < 49; i++ {
		t2 = Square(t2)
	}
	t2 = Mul(t2, t1)
	t3 = Square(t2)
	for i := 0; i < 99; i++ {
		t3 = Square(t3)
	}
	t2 = Mul(t3, t2)
	for i := 0; i < 50; i++ {
		t2 = Square(t2)
	}
	t1 = Mul(t2, t1)
	for i := 0; i < 5; i++ {
		t1 = Square(t1)
	}

	return Mul(t1, t0)
}

// Pow22523 returns z^((p-5)/8), used by curve25519/group's point decoder
// when computing a candidate square root.
func Pow22523(z Element) Element {
	var t0, t1, t2 Element

	t0 = Square(z)
	t1 = Square(t0)
	t1 = Square(t1)
	t1 = Mul(z, t1)
	t0 = Mul(t0, t1)
	t0 = Square(t0)
	t0 = Mul(t1, t0)
	t1 = Square(t0)
	for i := 0; i < 4; i++ {
		t1 = Square(t1)
	}
	t0 = Mul(t1, t0)
	t1 = Square(t0)
	for i := 0; i < 9; i++ {
		t1 = Square(t1)
	}
	t1 = Mul(t1, t0)
	t2 = Square(t1)
	for i := 0; i < 19; i++ {
		t2 = Square(t2)
	}
	t1 = Mul(t2, t1)
	t1 = Square(t1)
	for i := 0; i < 9; i++ {
		t1 = Square(t1)
	}
	t0 = Mul(t1, t0)
	t1 = Square(t0)
	for i := 0; i < 49; i++ {
		t1 = Square(t1)
	}
	t1 = Mul(t1, t0)
	t2 = Square(t1)
	for i := 0; i < 99; i++ {
		t2 = Square(t2)
	}
	t1 = Mul(t2, t1)
	t1 = Square(t1)
	for i := 0; i < 49; i++ {
		t1 = Square(t1)
	}
	t0 = Mul(t1, t0)
	t0 = Square(t0)
	t0 = Square(t0)

	return Mul(t0, z)
}

// FromBytes deserialises a field element from its 32-byte little-endian
// encoding. The top bit of byte 31 is dropped silently; point encodings
// store the x-coordinate sign there.
func FromBytes(s [32]byte) Element {
	w0 := leUint64(s[0:8])
	w1 := leUint64(s[8:16])
	w2 := leUint64(s[16:24])
	w3 := leUint64(s[24:32])

	var e Element
	e.l[0] = w0 & mask51
	e.l[1] = ((w0 >> 51) | (w1 << 13)) & mask51
	e.l[2] = ((w1 >> 38) | (w2 << 26)) & mask51
	e.l[3] = ((w2 >> 25) | (w3 << 39)) & mask51
	e.l[4] = (w3 >> 12) & mask51

	return e
}

// ToBytes reduces a and serialises it to 32 bytes, little-endian.
func ToBytes(a Element) [32]byte {
	r := Reduce(a)

	w0 := r.l[0] | (r.l[1] << 51)
	w1 := (r.l[1] >> 13) | (r.l[2] << 38)
	w2 := (r.l[2] >> 26) | (r.l[3] << 25)
	w3 := (r.l[3] >> 39) | (r.l[4] << 12)

	var out [32]byte
	putLeUint64(out[0:8], w0)
	putLeUint64(out[8:16], w1)
	putLeUint64(out[16:24], w2)
	putLeUint64(out[24:32], w3)

	return out
}

// IsNegative returns 1 if the canonical encoding of a has its least
// significant bit set (used as the parity bit in point encoding), else 0.
func IsNegative(a Element) uint64 {
	b := ToBytes(a)
	return uint64(b[0] & 1)
}

// Equal returns 1 if a == b mod p, else 0. Not constant time; both inputs
// are public in every call site this package has.
func Equal(a, b Element) uint64 {
	ab := ToBytes(a)
	bb := ToBytes(b)

	for i := range ab {
		if ab[i] != bb[i] {
			return 0
		}
	}

	return 1
}

func leUint64(b []byte) uint64 {
	_ = b[7]
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 | uint64(b[3])<<24 |
		uint64(b[4])<<32 | uint64(b[5])<<40 | uint64(b[6])<<48 | uint64(b[7])<<56
}

func putLeUint64(b []byte, v uint64) {
	_ = b[7]
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	b[4] = byte(v >> 32)
	b[5] = byte(v >> 40)
	b[6] = byte(v >> 48)
	b[7] = byte(v >> 56)
}
