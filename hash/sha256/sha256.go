// Streaming, table-free SHA-256 sized for a resource-constrained target.
// https://github.com/usbarmory/mculoader
//
// Copyright (c) The mculoader Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package sha256 implements FIPS 180-4 SHA-256 as an incremental digest
// that never allocates beyond its fixed-size context. Sum follows the
// standard hash.Hash contract (it does not mutate the running state),
// since the protocol engine's image digest must survive a failed DONE
// and keep accumulating across later WRITE blocks.
//
// The digest is computed entirely in software; the target this package is
// written for has no hash accelerator, unlike the DCP/CAAM peripherals that
// back github.com/usbarmory/tamago's soc/imx6/dcp and soc/nxp/caam hash
// drivers. The Write/Sum shape mirrors those drivers' Hash interface so
// callers that know one know the other.
package sha256

import "encoding/binary"

// Size is the size, in bytes, of a SHA-256 digest.
const Size = 32

// BlockSize is the block size, in bytes, of the SHA-256 hash function.
const BlockSize = 64

var k = [64]uint32{
	0x428a2f98, 0x71374491, 0xb5c0fbcf, 0xe9b5dba5, 0x3956c25b, 0x59f111f1, 0x923f82a4, 0xab1c5ed5,
	0xd807aa98, 0x12835b01, 0x243185be, 0x550c7dc3, 0x72be5d74, 0x80deb1fe, 0x9bdc06a7, 0xc19bf174,
	0xe49b69c1, 0xefbe4786, 0x0fc19dc6, 0x240ca1cc, 0x2de92c6f, 0x4a7484aa, 0x5cb0a9dc, 0x76f988da,
	0x983e5152, 0xa831c66d, 0xb00327c8, 0xbf597fc7, 0xc6e00bf3, 0xd5a79147, 0x06ca6351, 0x14292967,
	0x27b70a85, 0x2e1b2138, 0x4d2c6dfc, 0x53380d13, 0x650a7354, 0x766a0abb, 0x81c2c92e, 0x92722c85,
	0xa2bfe8a1, 0xa81a664b, 0xc24b8b70, 0xc76c51a3, 0xd192e819, 0xd6990624, 0xf40e3585, 0x106aa070,
	0x19a4c116, 0x1e376c08, 0x2748774c, 0x34b0bcb5, 0x391c0cb3, 0x4ed8aa4a, 0x5b9cca4f, 0x682e6ff3,
	0x748f82ee, 0x78a5636f, 0x84c87814, 0x8cc70208, 0x90befffa, 0xa4506ceb, 0xbef9a3f7, 0xc67178f2,
}

// Digest represents the partial evaluation of a SHA-256 checksum. The zero
// value is not ready for use, call New or Reset first.
type Digest struct {
	h      [8]uint32
	buf    [BlockSize]byte
	nbuf   int
	length uint64 // total bytes absorbed, for the final length encoding
}

// New returns a Digest initialised to the standard H0..H7 constants.
func New() *Digest {
	d := new(Digest)
	d.Reset()
	return d
}

// Reset restores the digest to its initial state, discarding any data
// written so far.
func (d *Digest) Reset() {
	d.h = [8]uint32{
		0x6a09e667, 0xbb67ae85, 0x3c6ef372, 0xa54ff53a,
		0x510e527f, 0x9b05688c, 0x1f83d9ab, 0x5be0cd19,
	}
	d.nbuf = 0
	d.length = 0
}

// Write absorbs p into the running hash. It never returns a non-nil error.
func (d *Digest) Write(p []byte) (n int, err error) {
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

// Sum appends the current 32-byte digest to b and returns the resulting
// slice. Per the hash.Hash contract, it does not change the underlying
// state: the digest is computed against a scratch copy so the protocol
// engine can call Sum on a failed DONE and keep accumulating bytes into
// the same running image hash afterward (its image digest is only ever
// reset by construction or ERASE APP, never by DONE itself).
func (d *Digest) Sum(b []byte) []byte {
	scratch := *d
	scratch.finalize()

	var digest [Size]byte
	for i, s := range scratch.h {
		binary.BigEndian.PutUint32(digest[i*4:], s)
	}

	return append(b, digest[:]...)
}

// finalize pads and processes the trailing block in place. Only ever
// called on a scratch copy from Sum, never on the live Digest.
func (d *Digest) finalize() {
	length := d.length

	var tmp [BlockSize]byte
	tmp[0] = 0x80

	pad := 56 - int(length%BlockSize)
	if pad <= 0 {
		pad += BlockSize
	}
	d.Write(tmp[:pad])

	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], length*8)
	d.Write(lenBuf[:])

	if d.nbuf != 0 {
		panic("sha256: pending data after length padding")
	}
}

// BlockSize returns the hash's underlying block size.
func (d *Digest) BlockSize() int { return BlockSize }

// Size returns the number of bytes Sum will append.
func (d *Digest) Size() int { return Size }

func rotr(x uint32, n uint) uint32 { return (x >> n) | (x << (32 - n)) }

func (d *Digest) block(p []byte) {
	var w [64]uint32

	for i := 0; i < 16; i++ {
		w[i] = binary.BigEndian.Uint32(p[i*4:])
	}

	for i := 16; i < 64; i++ {
		s0 := rotr(w[i-15], 7) ^ rotr(w[i-15], 18) ^ (w[i-15] >> 3)
		s1 := rotr(w[i-2], 17) ^ rotr(w[i-2], 19) ^ (w[i-2] >> 10)
		w[i] = w[i-16] + s0 + w[i-7] + s1
	}

	a, b, c, e, f, g := d.h[0], d.h[1], d.h[2], d.h[4], d.h[5], d.h[6]
	dd, hh := d.h[3], d.h[7]

	for i := 0; i < 64; i++ {
		s1 := rotr(e, 6) ^ rotr(e, 11) ^ rotr(e, 25)
		ch := (e & f) ^ (^e & g)
		t1 := hh + s1 + ch + k[i] + w[i]
		s0 := rotr(a, 2) ^ rotr(a, 13) ^ rotr(a, 22)
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

// Sum256 computes the SHA-256 checksum of data in one call.
func Sum256(data []byte) [Size]byte {
	d := New()
	d.Write(data)
	var out [Size]byte
	copy(out[:], d.Sum(nil))
	return out
}
