// Ed25519 signature verification.
// https://github.com/usbarmory/mculoader
//
// Copyright (c) The mculoader Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package ed25519verify implements Ed25519 signature verification (RFC
// 8032 section 5.1.7) on top of curve25519/group and curve25519/scalar.
// There is no signing half here: the bootloader only ever checks a
// signature produced elsewhere, so clamping, key derivation and the
// deterministic-nonce machinery a signer needs have no home in this
// package.
package ed25519verify

import (
	"github.com/usbarmory/mculoader/curve25519/group"
	"github.com/usbarmory/mculoader/curve25519/scalar"
	"github.com/usbarmory/mculoader/hash/sha512"
)

const (
	// PublicKeySize is the length in bytes of an Ed25519 public key.
	PublicKeySize = 32
	// SignatureSize is the length in bytes of an Ed25519 signature.
	SignatureSize = 64
)

// Verifier checks Ed25519 signatures against a fixed public key.
type Verifier interface {
	Verify(message []byte, sig [SignatureSize]byte) bool
}

// Key is a Verifier bound to a single Ed25519 public key, the form the
// bootloader uses: one trusted signer burned into the image at build time.
type Key struct {
	pub [PublicKeySize]byte
}

// NewKey returns a Verifier for the given public key. It does not validate
// that pub decodes to a point on the curve; that check happens on every
// call to Verify, since a corrupt or adversarial key is exactly the case
// verification has to handle safely.
func NewKey(pub [PublicKeySize]byte) Key {
	return Key{pub: pub}
}

// Verify reports whether sig is a valid Ed25519 signature over message
// for the key's public key, per RFC 8032 5.1.7:
//
//  1. reject if S >= l (signature malleability)
//  2. decode A from the public key; reject if it is not a curve point
//  3. k = SHA-512(R || A || message) mod l
//  4. accept iff [S]B == R + [k]A, checked as [S]B + [k](-A) == R
//
// The final 32-byte comparison is constant time, per the same contract
// scalar.IsCanonical and field.CMove carry elsewhere in this package
// family: none of these checks may branch on attacker-controlled bytes.
func (k Key) Verify(message []byte, sig [SignatureSize]byte) bool {
	var r, s [32]byte
	copy(r[:], sig[:32])
	copy(s[:], sig[32:])

	if !scalar.IsCanonical(s) {
		return false
	}

	a, ok := group.Decode(k.pub)
	if !ok {
		return false
	}

	h := sha512.New()
	h.Write(r[:])
	h.Write(k.pub[:])
	h.Write(message)

	var digest [64]byte
	copy(digest[:], h.Sum(nil))

	challenge := scalar.Reduce(digest)

	sb := group.ScalarMult(s, group.Base())
	ca := group.ScalarMult(challenge, group.Negate(a))
	check := group.Encode(group.Add(sb, ca))

	return constantTimeEqual(check, r)
}

// constantTimeEqual folds all 32 byte differences into one accumulator
// and converts it to a boolean without a data-dependent branch:
// bit 0 of (diff - 1) >> 8 is set exactly when diff == 0.
func constantTimeEqual(a, b [32]byte) bool {
	var diff uint32

	for i := range a {
		diff |= uint32(a[i] ^ b[i])
	}

	return ((diff-1)>>8)&1 == 1
}
