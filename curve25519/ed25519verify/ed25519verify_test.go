// https://github.com/usbarmory/mculoader
//
// Copyright (c) The mculoader Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package ed25519verify

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/usbarmory/mculoader/curve25519/group"
	"github.com/usbarmory/mculoader/curve25519/scalar"
	"github.com/usbarmory/mculoader/hash/sha512"
)

// The first three test vectors of RFC 8032 section 7.1, verbatim. The
// signatures were produced by a standard Ed25519 signer, so these catch
// any divergence between this verifier and the rest of the ecosystem
// that a signer built on the same primitives could mask.
var rfc8032Vectors = []struct {
	name    string
	pub     string
	message string
	sig     string
}{
	{
		name:    "TEST 1",
		pub:     "d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a",
		message: "",
		sig: "e5564300c360ac729086e2cc806e828a84877f1eb8e5d974d873e06522490155" +
			"5fb8821590a33bacc61e39701cf9b46bd25bf5f0595bbe24655141438e7a100b",
	},
	{
		name:    "TEST 2",
		pub:     "3d4017c3e843895a92b70aa74d1b7ebc9c982ccf2ec4968cc0cd55f12af4660c",
		message: "72",
		sig: "92a009a9f0d4cab8720e820b5f642540a2b27b5416503f8fb3762223ebdb69da" +
			"085ac1e43e15996e458f3613d0f11d8c387b2eaeb4302aeeb00d291612bb0c00",
	},
	{
		name:    "TEST 3",
		pub:     "fc51cd8e6218a1a38da47ed00230f0580816ed13ba3303ac5deb911548908025",
		message: "af82",
		sig: "6291d657deec24024827e69c3abe01a30ce548a284743a445e3680d7db5ac3ac" +
			"18ff9b538d16f290ae67f760984dc6594a7c15e9716ed28dc027beceea1ec40a",
	},
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()

	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex literal %q: %v", s, err)
	}

	return b
}

func TestRFC8032KnownAnswerVectors(t *testing.T) {
	for _, v := range rfc8032Vectors {
		t.Run(v.name, func(t *testing.T) {
			var pub [PublicKeySize]byte
			copy(pub[:], mustHex(t, v.pub))

			var sig [SignatureSize]byte
			copy(sig[:], mustHex(t, v.sig))

			message := mustHex(t, v.message)

			key := NewKey(pub)

			if !key.Verify(message, sig) {
				t.Fatalf("Verify rejected the reference signature")
			}

			corrupt := sig
			corrupt[0] ^= 0x01
			if key.Verify(message, corrupt) {
				t.Fatalf("Verify accepted a corrupted reference signature")
			}

			if key.Verify([]byte("not the signed message"), sig) {
				t.Fatalf("Verify accepted the signature over a different message")
			}
		})
	}
}

// testSigner is a minimal, test-only Ed25519 signer built on the same
// group and scalar packages the verifier uses, so these tests exercise
// real signatures rather than fixed third-party vectors. The scalar
// multiply-add S = r + k*a (mod l) is done with math/big rather than
// hand-rolled limb arithmetic, since that step has no other equivalent
// in this package to cross-check it against.

var ellDecimal = mustEll()

func mustEll() *big.Int {
	c, ok := new(big.Int).SetString("27742317777372353535851937790883648493", 10)
	if !ok {
		panic("bad constant")
	}
	l := new(big.Int).Lsh(big.NewInt(1), 252)
	return l.Add(l, c)
}

func leBytesToBig(b []byte) *big.Int {
	be := make([]byte, len(b))
	for i, v := range b {
		be[len(b)-1-i] = v
	}
	return new(big.Int).SetBytes(be)
}

func bigToLeBytes32(n *big.Int) [32]byte {
	be := n.Bytes()
	var out [32]byte
	for i, v := range be {
		out[len(be)-1-i] = v
	}
	return out
}

type testSigner struct {
	a   [32]byte // clamped secret scalar
	pub [32]byte
}

func newTestSigner(seed [32]byte) testSigner {
	h := sha512.New()
	h.Write(seed[:])
	digest := h.Sum(nil)

	var a [32]byte
	copy(a[:], digest[:32])
	a[0] &= 0xf8
	a[31] &= 0x7f
	a[31] |= 0x40

	pub := group.Encode(group.ScalarMult(a, group.Base()))

	return testSigner{a: a, pub: pub}
}

func (ts testSigner) sign(message []byte) [64]byte {
	h := sha512.New()
	h.Write(message)
	rSeed := h.Sum(nil) // not RFC-compliant nonce derivation (no prefix half), fine for a self-test

	var rDigest [64]byte
	copy(rDigest[:], rSeed)
	rScalar := scalar.Reduce(rDigest)

	rPoint := group.Encode(group.ScalarMult(rScalar, group.Base()))

	hk := sha512.New()
	hk.Write(rPoint[:])
	hk.Write(ts.pub[:])
	hk.Write(message)
	var kDigest [64]byte
	copy(kDigest[:], hk.Sum(nil))
	k := scalar.Reduce(kDigest)

	// S = r + k*a (mod l), via math/big.
	rBig := leBytesToBig(rScalar[:])
	kBig := leBytesToBig(k[:])
	aBig := leBytesToBig(ts.a[:])

	s := new(big.Int).Mul(kBig, aBig)
	s.Add(s, rBig)
	s.Mod(s, ellDecimal)

	var sig [64]byte
	copy(sig[:32], rPoint[:])
	sBytes := bigToLeBytes32(s)
	copy(sig[32:], sBytes[:])

	return sig
}

func TestSignThenVerify(t *testing.T) {
	seed := [32]byte{1, 2, 3, 4, 5}
	signer := newTestSigner(seed)
	key := NewKey(signer.pub)

	message := []byte("firmware image v1")
	sig := signer.sign(message)

	if !key.Verify(message, sig) {
		t.Fatalf("Verify rejected a signature produced by the matching key")
	}
}

func TestVerifyRejectsTamperedMessage(t *testing.T) {
	seed := [32]byte{9, 8, 7}
	signer := newTestSigner(seed)
	key := NewKey(signer.pub)

	message := []byte("firmware image v1")
	sig := signer.sign(message)

	tampered := append([]byte{}, message...)
	tampered[0] ^= 0x01

	if key.Verify(tampered, sig) {
		t.Fatalf("Verify accepted a signature over a different message")
	}
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	seed := [32]byte{42}
	signer := newTestSigner(seed)
	key := NewKey(signer.pub)

	message := []byte("firmware image v1")
	sig := signer.sign(message)
	sig[0] ^= 0x01

	if key.Verify(message, sig) {
		t.Fatalf("Verify accepted a corrupted R")
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	signer := newTestSigner([32]byte{1})
	other := newTestSigner([32]byte{2})

	message := []byte("firmware image v1")
	sig := signer.sign(message)

	if NewKey(other.pub).Verify(message, sig) {
		t.Fatalf("Verify accepted a signature under the wrong public key")
	}
}

func TestVerifyRejectsNonCanonicalS(t *testing.T) {
	signer := newTestSigner([32]byte{7})
	key := NewKey(signer.pub)

	message := []byte("firmware image v1")
	sig := signer.sign(message)

	// replace S with l exactly: must be rejected regardless of R.
	lBytes := bigToLeBytes32(ellDecimal)
	copy(sig[32:], lBytes[:])

	if key.Verify(message, sig) {
		t.Fatalf("Verify accepted S == l")
	}
}
