// https://github.com/usbarmory/mculoader
//
// Copyright (c) The mculoader Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package scalar

import (
	"math/big"
	"testing"
)

func le64(lo [32]byte) (out [64]byte) {
	copy(out[:32], lo[:])
	return out
}

func TestReduceBelowLIsUnchanged(t *testing.T) {
	cases := [][32]byte{
		{},
		{1},
		{0xec, 0xd3, 0xf5, 0x5c, 0x1a, 0x63, 0x12, 0x58,
			0xd6, 0x9c, 0xf7, 0xa2, 0xde, 0xf9, 0xde, 0x14,
			0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x10}, // l-1
	}

	for _, c := range cases {
		got := Reduce(le64(c))
		if got != c {
			t.Fatalf("Reduce(%x || 0) = %x, want unchanged", c, got)
		}
	}
}

func TestReduceOfLIsZero(t *testing.T) {
	got := Reduce(le64(lBytes))
	if got != ([32]byte{}) {
		t.Fatalf("Reduce(l) = %x, want 0", got)
	}
}

func TestReduceWrapsHighBits(t *testing.T) {
	// 2^256 - 1: all bits set. Must reduce to something strictly < l.
	var in [64]byte
	for i := range in {
		in[i] = 0xff
	}

	got := Reduce(in)
	if !IsCanonical(got) {
		t.Fatalf("Reduce(2^512-1) = %x is not canonical", got)
	}
}

func TestIsCanonical(t *testing.T) {
	if !IsCanonical([32]byte{1}) {
		t.Fatalf("1 should be canonical")
	}

	if IsCanonical(lBytes) {
		t.Fatalf("l itself must not be canonical")
	}

	lPlusOne := lBytes
	lPlusOne[0]++
	if IsCanonical(lPlusOne) {
		t.Fatalf("l+1 must not be canonical")
	}

	lMinusOne := lBytes
	lMinusOne[0]--
	if !IsCanonical(lMinusOne) {
		t.Fatalf("l-1 must be canonical")
	}
}

func TestReduceIdempotent(t *testing.T) {
	var in [64]byte
	for i := range in {
		in[i] = byte(i * 7 % 251)
	}

	first := Reduce(in)
	second := Reduce(le64(first))

	if first != second {
		t.Fatalf("Reduce is not idempotent: %x != %x", first, second)
	}
}

// Reduce must agree with an independent big-integer computation over the
// full 512-bit input range, in particular for inputs whose top byte is
// nonzero: every SHA-512-derived challenge the verifier reduces has a
// uniformly random byte 63.
func TestReduceMatchesBigInt(t *testing.T) {
	ell, ok := new(big.Int).SetString("27742317777372353535851937790883648493", 10)
	if !ok {
		t.Fatal("bad constant")
	}
	ell.Add(ell, new(big.Int).Lsh(big.NewInt(1), 252))

	var topByteOnly [64]byte
	topByteOnly[63] = 0x80 // 2^511

	var allSet [64]byte
	for i := range allSet {
		allSet[i] = 0xff
	}

	var walking [64]byte
	for i := range walking {
		walking[i] = byte(i*37 + 11)
	}

	for _, in := range [][64]byte{topByteOnly, allSet, walking} {
		be := make([]byte, 64)
		for i, v := range in {
			be[63-i] = v
		}

		want := new(big.Int).Mod(new(big.Int).SetBytes(be), ell)

		var wantBytes [32]byte
		for i, v := range want.Bytes() {
			wantBytes[len(want.Bytes())-1-i] = v
		}

		if got := Reduce(in); got != wantBytes {
			t.Fatalf("Reduce(%x) = %x, want %x", in, got, wantBytes)
		}
	}
}
