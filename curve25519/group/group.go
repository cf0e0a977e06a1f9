// Group arithmetic on the twisted Edwards curve underlying Ed25519.
// https://github.com/usbarmory/mculoader
//
// Copyright (c) The mculoader Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package group implements point decode/encode, addition, doubling and
// scalar multiplication in extended projective coordinates (X, Y, Z, T)
// with T = XY/Z, as used by curve25519/ed25519verify. Scalar multiplication
// here is double-and-add with no precomputed window: verification only
// ever multiplies by public scalars, so the simpler, non-constant-time
// construction is sound and keeps the table out of flash.
package group

import "github.com/usbarmory/mculoader/curve25519/field"

// Point is a curve point in extended projective coordinates.
type Point struct {
	X, Y, Z, T field.Element
}

// Identity returns the neutral element (0, 1, 1, 0).
func Identity() Point {
	return Point{
		X: field.Zero(),
		Y: field.One(),
		Z: field.One(),
		T: field.Zero(),
	}
}

// Negate returns -p. In extended coordinates this is componentwise
// negation of X and T.
func Negate(p Point) Point {
	return Point{
		X: field.Sub(field.Zero(), p.X),
		Y: p.Y,
		Z: p.Z,
		T: field.Sub(field.Zero(), p.T),
	}
}

// Add returns p+q using the extended-coordinate addition formulas, via the
// (Y1±X1)(Y2±X2) pattern shared with Double.
func Add(p, q Point) Point {
	d2 := field.Add(field.D(), field.D())

	a := field.Mul(field.Sub(p.Y, p.X), field.Sub(q.Y, q.X))
	b := field.Mul(field.Add(p.Y, p.X), field.Add(q.Y, q.X))
	c := field.Mul(field.Mul(p.T, d2), q.T)
	dd := field.Mul(field.Mul(p.Z, field.FromUint64(2)), q.Z)

	e := field.Sub(b, a)
	f := field.Sub(dd, c)
	g := field.Add(dd, c)
	h := field.Add(b, a)

	return Point{
		X: field.Mul(e, f),
		Y: field.Mul(g, h),
		Z: field.Mul(f, g),
		T: field.Mul(e, h),
	}
}

// Double returns p+p, specialising the addition formulas for equal inputs.
func Double(p Point) Point {
	a := field.Square(p.X)
	b := field.Square(p.Y)
	c := field.Mul(field.FromUint64(2), field.Square(p.Z))

	xPlusY := field.Add(p.X, p.Y)
	h := field.Add(a, b)
	e := field.Sub(field.Square(xPlusY), h)
	g := field.Sub(b, a)
	f := field.Sub(c, g)

	return Point{
		X: field.Mul(e, f),
		Y: field.Mul(g, h),
		Z: field.Mul(f, g),
		T: field.Mul(e, h),
	}
}

// ScalarMult returns [s]p, computed by double-and-add from the most
// significant bit (255) down to bit 0, with no windowing table. Not
// constant time: callers only ever multiply by public scalars (the Ed25519
// signature's S component and the SHA-512-derived challenge), never secret
// ones.
func ScalarMult(s [32]byte, p Point) Point {
	acc := Identity()

	for bit := 255; bit >= 0; bit-- {
		acc = Double(acc)

		byteIdx := bit / 8
		bitIdx := uint(bit % 8)

		if (s[byteIdx]>>bitIdx)&1 == 1 {
			acc = Add(acc, p)
		}
	}

	return acc
}

// Decode recovers a point from its 32-byte compressed encoding: the sign
// bit packed into the top bit of the last byte, and y in the low 255 bits.
// It returns ok=false if the encoding does not correspond to a point on
// the curve.
func Decode(s [32]byte) (p Point, ok bool) {
	signBit := s[31] >> 7

	yBytes := s
	yBytes[31] &= 0x7f
	y := field.FromBytes(yBytes)

	ySq := field.Square(y)
	u := field.Sub(ySq, field.One())
	v := field.Add(field.Mul(field.D(), ySq), field.One())

	x, valid := recoverX(u, v)
	if !valid {
		return Point{}, false
	}

	if field.IsNegative(x) != uint64(signBit) {
		x = field.Sub(field.Zero(), x)
	}

	return Point{
		X: x,
		Y: y,
		Z: field.One(),
		T: field.Reduce(field.Mul(x, y)),
	}, true
}

// recoverX computes a candidate x with x^2 = u/v, per RFC 8032 5.1.3,
// trying the direct candidate and its rotation by sqrt(-1) before giving
// up.
func recoverX(u, v field.Element) (field.Element, bool) {
	v3 := field.Mul(field.Square(v), v)
	v7 := field.Mul(field.Square(v3), v)

	x := field.Mul(field.Mul(u, v3), field.Pow22523(field.Mul(u, v7)))

	vxx := field.Mul(v, field.Square(x))
	hasCorrectSign := field.Equal(field.Reduce(vxx), field.Reduce(u))
	hasOppositeSign := field.Equal(field.Reduce(vxx), field.Reduce(field.Sub(field.Zero(), u)))

	switch {
	case hasCorrectSign == 1:
		return x, true
	case hasOppositeSign == 1:
		return field.Mul(x, field.SqrtM1()), true
	default:
		return field.Element{}, false
	}
}

// Encode normalises (x, y) = (X/Z, Y/Z) and serialises y little-endian
// with the top bit overwritten by the parity of x.
func Encode(p Point) [32]byte {
	zInv := field.Invert(p.Z)
	x := field.Reduce(field.Mul(p.X, zInv))
	y := field.Reduce(field.Mul(p.Y, zInv))

	out := field.ToBytes(y)
	out[31] &= 0x7f
	out[31] |= byte(field.IsNegative(x) << 7)

	return out
}

// baseY is 4/5 mod p, the y-coordinate of the standard Ed25519 base point.
func baseY() field.Element {
	return field.Mul(field.FromUint64(4), field.Invert(field.FromUint64(5)))
}

// Base returns the standard Ed25519 base point B. Rather than transcribing
// B's well-known 32-byte encoding as a literal (an easy place to introduce
// a silent transposition error), it is derived from the curve equation
// itself: y = 4/5, and x is the positive (even) root of x^2 = (y^2-1)/
// (d*y^2+1), which is exactly how Decode recovers a point from a y
// coordinate. This keeps the base point self-consistent with Decode/Encode
// by construction.
func Base() Point {
	y := baseY()
	ySq := field.Square(y)
	u := field.Sub(ySq, field.One())
	v := field.Add(field.Mul(field.D(), ySq), field.One())

	x, ok := recoverX(u, v)
	if !ok {
		panic("group: base point does not satisfy curve equation")
	}

	if field.IsNegative(x) == 1 {
		x = field.Sub(field.Zero(), x)
	}

	return Point{
		X: x,
		Y: y,
		Z: field.One(),
		T: field.Reduce(field.Mul(x, y)),
	}
}
