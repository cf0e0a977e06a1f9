// https://github.com/usbarmory/mculoader
//
// Copyright (c) The mculoader Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package field

import "testing"

func TestInvertRoundTrip(t *testing.T) {
	for _, v := range []uint64{1, 2, 3, 19, 12345, 0xFFFFFFFF} {
		x := FromUint64(v)
		inv := Invert(x)
		got := Reduce(Mul(inv, x))

		if Equal(got, One()) != 1 {
			t.Fatalf("invert(%d)*%.d != 1: %v", v, v, ToBytes(got))
		}
	}
}

func TestSqrtM1SquaresToMinusOne(t *testing.T) {
	s := SqrtM1()
	sq := Reduce(Square(s))
	minusOne := Sub(Zero(), One())

	if Equal(sq, Reduce(minusOne)) != 1 {
		t.Fatalf("sqrt(-1)^2 != -1: got %x", ToBytes(sq))
	}
}

func TestToBytesFromBytesRoundTrip(t *testing.T) {
	cases := [][32]byte{
		{},
		{1},
		{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
			0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f},
	}

	for _, c := range cases {
		e := FromBytes(c)
		got := ToBytes(e)

		// top bit of the input is always dropped, mask it out before compare
		want := c
		want[31] &= 0x7f

		if got != want {
			t.Fatalf("round trip mismatch: got %x, want %x", got, want)
		}
	}
}

func TestAddSubConsistency(t *testing.T) {
	a := FromUint64(12345)
	b := FromUint64(6789)

	sum := Reduce(Add(a, b))
	back := Reduce(Sub(sum, b))

	if Equal(back, Reduce(a)) != 1 {
		t.Fatalf("a+b-b != a")
	}
}

func TestCMove(t *testing.T) {
	a := FromUint64(1)
	b := FromUint64(2)

	if got := CMove(a, b, 0); Equal(got, a) != 1 {
		t.Fatalf("cmove with flag=0 changed value")
	}

	if got := CMove(a, b, 1); Equal(got, b) != 1 {
		t.Fatalf("cmove with flag=1 did not select src")
	}
}

func TestMulByOneIsIdentity(t *testing.T) {
	a := FromUint64(987654321)
	got := Reduce(Mul(a, One()))

	if Equal(got, Reduce(a)) != 1 {
		t.Fatalf("a*1 != a")
	}
}
