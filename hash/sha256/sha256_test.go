// https://github.com/usbarmory/mculoader
//
// Copyright (c) The mculoader Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package sha256

import (
	"encoding/hex"
	"testing"
)

func TestEmpty(t *testing.T) {
	sum := Sum256(nil)
	got := hex.EncodeToString(sum[:])
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestNISTabc(t *testing.T) {
	sum := Sum256([]byte("abc"))
	got := hex.EncodeToString(sum[:])
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestMultiBlock(t *testing.T) {
	msg := []byte("abcdbcdecdefdefgefghfghighijhijkijkljklmklmnlmnomnopnopq")
	sum := Sum256(msg)
	got := hex.EncodeToString(sum[:])
	want := "248d6a61d20638b8e5c026930c3e6039a33ce45964ff2167f6ecedd419db06c1"

	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

// Write split across arbitrary chunk boundaries must produce the same
// digest as a single contiguous Write, including spans that straddle the
// internal 64-byte block buffer.
func TestIncrementalWrite(t *testing.T) {
	msg := make([]byte, 1000)
	for i := range msg {
		msg[i] = byte(i)
	}

	want := Sum256(msg)

	d := New()
	for i := 0; i < len(msg); i += 7 {
		end := i + 7
		if end > len(msg) {
			end = len(msg)
		}
		d.Write(msg[i:end])
	}

	var got [Size]byte
	copy(got[:], d.Sum(nil))

	if got != want {
		t.Fatalf("incremental write mismatch: got %x, want %x", got, want)
	}
}

// Sum must not disturb the running digest: the protocol engine calls Sum
// on every DONE, including a DONE that fails signature verification, and
// must keep accumulating the same image hash across any WRITE blocks that
// follow without an intervening ERASE APP.
func TestSumDoesNotMutateState(t *testing.T) {
	d := New()
	d.Write([]byte("abc"))

	first := d.Sum(nil)
	firstAgain := d.Sum(nil)

	if string(first) != string(firstAgain) {
		t.Fatalf("repeated Sum without Write produced different digests: %x vs %x", first, firstAgain)
	}

	d.Write([]byte("def"))
	got := d.Sum(nil)
	want := Sum256([]byte("abcdef"))

	if string(got) != string(want[:]) {
		t.Fatalf("digest after Sum+Write = %x, want %x", got, want)
	}
}
