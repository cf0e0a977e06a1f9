// https://github.com/usbarmory/mculoader
//
// Copyright (c) The mculoader Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package group

import (
	"testing"

	"github.com/usbarmory/mculoader/curve25519/field"
)

func pointsEqual(p, q Point) bool {
	// compare in affine form: X/Z, Y/Z, since the same point can have
	// many extended-coordinate representations.
	px := field.Reduce(field.Mul(p.X, field.Invert(p.Z)))
	py := field.Reduce(field.Mul(p.Y, field.Invert(p.Z)))
	qx := field.Reduce(field.Mul(q.X, field.Invert(q.Z)))
	qy := field.Reduce(field.Mul(q.Y, field.Invert(q.Z)))

	return field.Equal(px, qx) == 1 && field.Equal(py, qy) == 1
}

func TestIdentityIsAddIdentity(t *testing.T) {
	b := Base()
	id := Identity()

	if !pointsEqual(Add(b, id), b) {
		t.Fatalf("B + identity != B")
	}
}

func TestDoubleMatchesAdd(t *testing.T) {
	b := Base()

	if !pointsEqual(Double(b), Add(b, b)) {
		t.Fatalf("Double(B) != Add(B, B)")
	}
}

func TestScalarMultByTwoMatchesDouble(t *testing.T) {
	b := Base()

	var two [32]byte
	two[0] = 2

	if !pointsEqual(ScalarMult(two, b), Double(b)) {
		t.Fatalf("[2]B != Double(B)")
	}
}

func TestScalarMultByZeroIsIdentity(t *testing.T) {
	b := Base()

	var zero [32]byte

	if !pointsEqual(ScalarMult(zero, b), Identity()) {
		t.Fatalf("[0]B != identity")
	}
}

func TestScalarMultByOneIsPoint(t *testing.T) {
	b := Base()

	var one [32]byte
	one[0] = 1

	if !pointsEqual(ScalarMult(one, b), b) {
		t.Fatalf("[1]B != B")
	}
}

func TestNegateCancels(t *testing.T) {
	b := Base()
	negB := Negate(b)

	if !pointsEqual(Add(b, negB), Identity()) {
		t.Fatalf("B + (-B) != identity")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	b := Base()
	enc := Encode(b)

	dec, ok := Decode(enc)
	if !ok {
		t.Fatalf("Decode(Encode(B)) failed")
	}

	if !pointsEqual(dec, b) {
		t.Fatalf("decoded point != B")
	}

	if Encode(dec) != enc {
		t.Fatalf("re-encoding did not round trip: got %x, want %x", Encode(dec), enc)
	}
}

func TestDecodeIdentity(t *testing.T) {
	id := Identity()
	enc := Encode(id)

	dec, ok := Decode(enc)
	if !ok {
		t.Fatalf("Decode(Encode(identity)) failed")
	}

	if !pointsEqual(dec, id) {
		t.Fatalf("decoded identity mismatch")
	}
}

func TestAssociativeScalarMult(t *testing.T) {
	b := Base()

	var three [32]byte
	three[0] = 3

	lhs := ScalarMult(three, b)
	rhs := Add(Add(b, b), b)

	if !pointsEqual(lhs, rhs) {
		t.Fatalf("[3]B != B+B+B")
	}
}
