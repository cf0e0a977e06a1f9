// IEEE 802.3 CRC-32, reflected, no lookup table.
// https://github.com/usbarmory/mculoader
//
// Copyright (c) The mculoader Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package crc32 implements the running CRC-32 accounting used by the
// protocol engine for each WRITE block. The image is small enough that
// throughput is not a concern, so this deliberately skips the usual
// 256-entry lookup table: eight shifts per byte, no table, no state beyond
// one uint32.
package crc32

// polynomial is the reflected IEEE 802.3 polynomial.
const polynomial = 0xEDB88320

// State is a running CRC-32 accumulator. The zero value is not a valid
// starting state; use New.
type State struct {
	crc uint32
}

// New returns a State initialised to 0xFFFFFFFF, ready to accumulate bytes.
func New() *State {
	return &State{crc: 0xFFFFFFFF}
}

// Reset restores the accumulator to its initial value.
func (s *State) Reset() {
	s.crc = 0xFFFFFFFF
}

// Update folds a single byte into the running CRC.
func (s *State) Update(b byte) {
	crc := s.crc ^ uint32(b)

	for i := 0; i < 8; i++ {
		if crc&1 != 0 {
			crc = (crc >> 1) ^ polynomial
		} else {
			crc >>= 1
		}
	}

	s.crc = crc
}

// Write folds every byte of p into the running CRC. It never returns an
// error; the signature matches io.Writer so a State can be used anywhere a
// writer is expected.
func (s *State) Write(p []byte) (int, error) {
	for _, b := range p {
		s.Update(b)
	}

	return len(p), nil
}

// Sum32 returns the finalized CRC-32 without disturbing the running state,
// so a caller may keep accumulating after inspecting it.
func (s *State) Sum32() uint32 {
	return s.crc ^ 0xFFFFFFFF
}

// Checksum computes the CRC-32 of data in one call.
func Checksum(data []byte) uint32 {
	s := New()
	s.Write(data)
	return s.Sum32()
}
