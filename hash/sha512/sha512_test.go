// https://github.com/usbarmory/mculoader
//
// Copyright (c) The mculoader Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package sha512

import (
	"encoding/hex"
	"testing"
)

func TestEmpty(t *testing.T) {
	sum := Sum512(nil)
	got := hex.EncodeToString(sum[:])
	want := "cf83e1357eefb8bdf1542850d66d8007d620e4050b5715dc83f4a921d36ce9ce47d0d13c5d85f2b0ff8318d2877eec2f63b931bd47417a81a538327af927da3e"

	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestNISTabc(t *testing.T) {
	sum := Sum512([]byte("abc"))
	got := hex.EncodeToString(sum[:])
	want := "ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f"

	if got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestIncrementalWrite(t *testing.T) {
	msg := make([]byte, 1500)
	for i := range msg {
		msg[i] = byte(i * 3)
	}

	want := Sum512(msg)

	d := New()
	for i := 0; i < len(msg); i += 11 {
		end := i + 11
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
