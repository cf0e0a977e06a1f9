// Streaming, table-free SHA-512 used internally by the Ed25519 verifier.
// https://github.com/usbarmory/mculoader
//
// Copyright (c) The mculoader Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package sha512 implements FIPS 180-4 SHA-512. It exists solely to feed
// the Ed25519 verifier in curve25519/ed25519verify, which needs
// SHA-512(R || A || message); nothing else in this repository hashes with
// it.
package sha512

import "encoding/binary"

// Size is the size, in bytes, of a SHA-512 digest.
const Size = 64

// BlockSize is the block size, in bytes, of the SHA-512 hash function.
const BlockSize = 128

var k = [80]uint64{
	0x428a2f98d728ae22, 0x7137449123ef65cd, 0xb5c0fbcfec4d3b2f, 0xe9b5dba58189dbbc,
	0x3956c25bf348b538, 0x59f111f1b605d019, 0x923f82a4af194f9b, 0xab1c5ed5da6d8118,
	0xd807aa98a3030242, 0x12835b0145706fbe, 0x243185be4ee4b28c, 0x550c7dc3d5ffb4e2,
	0x72be5d74f27b896f, 0x80deb1fe3b1696b1, 0x9bdc06a725c71235, 0xc19bf174cf692694,
	0xe49b69c19ef14ad2, 0xefbe4786384f25e3, 0x0fc19dc68b8cd5b5, 0x240ca1cc77ac9c65,
	0x2de92c6f592b0275, 0x4a7484aa6ea6e483, 0x5cb0a9dcbd41fbd4, 0x76f988da831153b5,
	0x983e5152ee66dfab, 0xa831c66d2db43210, 0xb00327c898fb213f, 0xbf597fc7beef0ee4,
	0xc6e00bf33da88fc2, 0xd5a79147930aa725, 0x06ca6351e003826f, 0x142929670a0e6e70,
	0x27b70a8546d22ffc, 0x2e1b21385c26c926, 0x4d2c6dfc5ac42aed, 0x53380d139d95b3df,
	0x650a73548baf63de, 0x766a0abb3c77b2a8, 0x81c2c92e47edaee6, 0x92722c851482353b,
	0xa2bfe8a14cf10364, 0xa81a664bbc423001, 0xc24b8b70d0f89791, 0xc76c51a30654be30,
	0xd192e819d6ef5218, 0xd69906245565a910, 0xf40e35855771202a, 0x106aa07032bbd1b8,
	0x19a4c116b8d2d0c8, 0x1e376c085141ab53, 0x2748774cdf8eeb99, 0x34b0bcb5e19b48a8,
	0x391c0cb3c5c95a63, 0x4ed8aa4ae3418acb, 0x5b9cca4f7763e373, 0x682e6ff3d6b2b8a3,
	0x748f82ee5defb2fc, 0x78a5636f43172f60, 0x84c87814a1f0ab72, 0x8cc702081a6439ec,
	0x90befffa23631e28, 0xa4506cebde82bde9, 0xbef9a3f7b2c67915, 0xc67178f2e372532b,
	0xca273eceea26619c, 0xd186b8c721c0c207, 0xeada7dd6cde0eb1e, 0xf57d4f7fee6ed178,
	0x06f067aa72176fba, 0x0a637dc5a2c898a6, 0x113f9804bef90dae, 0x1b710b35131c471b,
	0x28db77f523047d84, 0x32caab7b40c72493, 0x3c9ebe0a15c9bebc, 0x431d67c49c100d4c,
	0x4cc5d4becb3e42b6, 0x597f299cfc657e2a, 0x5fcb6fab3ad6faec, 0x6c44198c4a475817,
}

// Digest represents the partial evaluation of a SHA-512 checksum. The zero
// value is not ready for use, call New or Reset first.
type Digest struct {
	h      [8]uint64
	buf    [BlockSize]byte
	nbuf   int
	length uint64 // bytes absorbed; SHA-512 uses a 128-bit length field but
	// no message handled by this bootloader ever approaches 2^64 bytes
	done bool
}

// New returns a Digest initialised to the standard H0..H7 constants.
func New() *Digest {
	d := new(Digest)
	d.Reset()
	return d
}

// Reset restores the digest to its initial state.
func (d *Digest) Reset() {
	d.h = [8]uint64{
		0x6a09e667f3bcc908, 0xbb67ae8584caa73b, 0x3c6ef372fe94f82b, 0xa54ff53a5f1d36f1,
		0x510e527fade682d1, 0x9b05688c2b3e6c1f, 0x1f83d9abfb41bd6b, 0x5be0cd19137e2179,
	}
	d.nbuf = 0
	d.length = 0
	d.done = false
}

// Write absorbs p into the running hash.
func (d *Digest) Write(p []byte) (n int, err error) {
	if d.done {
		return 0, errDone
	}

	n = len(p)
	d.length += uint64(n)

	if d.nbuf > 0 {
		c := copy(d.buf[d.nbuf:], p)
		d.nbuf += c
		p = p[c:]

		if d.nbuf == BlockSize {
			d.block(d.buf[:])
			d.nbuf = 0
		}
	}

	for len(p) >= BlockSize {
		d.block(p[:BlockSize])
		p = p[BlockSize:]
	}

	if len(p) > 0 {
		d.nbuf = copy(d.buf[:], p)
	}

	return
}

type errString string

func (e errString) Error() string { return string(e) }

var errDone = errString("sha512: Write after Sum")

// Sum appends the current 64-byte digest to b, finalizing and zeroing the
// context.
func (d *Digest) Sum(b []byte) []byte {
	length := d.length

	var tmp [BlockSize]byte
	tmp[0] = 0x80

	pad := 112 - int(length%BlockSize)
	if pad <= 0 {
		pad += BlockSize
	}
	d.Write(tmp[:pad])

	var lenBuf [16]byte
	// the high 64 bits of the 128-bit bit-length are always zero at this
	// message scale
	binary.BigEndian.PutUint64(lenBuf[8:], length*8)
	d.Write(lenBuf[:])

	var digest [Size]byte
	for i, s := range d.h {
		binary.BigEndian.PutUint64(digest[i*8:], s)
	}

	d.h = [8]uint64{}
	d.buf = [BlockSize]byte{}
	d.length = 0
	d.done = true

	return append(b, digest[:]...)
}

// BlockSize returns the hash's underlying block size.
func (d *Digest) BlockSize() int { return BlockSize }

// Size returns the number of bytes Sum will append.
func (d *Digest) Size() int { return Size }

func rotr(x uint64, n uint) uint64 { return (x >> n) | (x << (64 - n)) }

func (d *Digest) block(p []byte) {
	var w [80]uint64

	for i := 0; i < 16; i++ {
		w[i] = binary.BigEndian.Uint64(p[i*8:])
	}

	for i := 16; i < 80; i++ {
		s0 := rotr(w[i-15], 1) ^ rotr(w[i-15], 8) ^ (w[i-15] >> 7)
		s1 := rotr(w[i-2], 19) ^ rotr(w[i-2], 61) ^ (w[i-2] >> 6)
		w[i] = w[i-16] + s0 + w[i-7] + s1
	}

	a, b, c, e, f, g := d.h[0], d.h[1], d.h[2], d.h[4], d.h[5], d.h[6]
	dd, hh := d.h[3], d.h[7]

	for i := 0; i < 80; i++ {
		s1 := rotr(e, 14) ^ rotr(e, 18) ^ rotr(e, 41)
		ch := (e & f) ^ (^e & g)
		t1 := hh + s1 + ch + k[i] + w[i]
		s0 := rotr(a, 28) ^ rotr(a, 34) ^ rotr(a, 39)
		maj := (a & b) ^ (a & c) ^ (b & c)
		t2 := s0 + maj

		hh, g, f, e = g, f, e, dd+t1
		dd, c, b, a = c, b, a, t1+t2
	}

	d.h[0] += a
	d.h[1] += b
	d.h[2] += c
	d.h[3] += dd
	d.h[4] += e
	d.h[5] += f
	d.h[6] += g
	d.h[7] += hh
}

// Sum512 computes the SHA-512 checksum of data in one call.
func Sum512(data []byte) [Size]byte {
	d := New()
	d.Write(data)
	var out [Size]byte
	copy(out[:], d.Sum(nil))
	return out
}
