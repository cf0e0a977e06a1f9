// In-memory flash controller used by tests and non-device builds.
// https://github.com/usbarmory/mculoader
//
// Copyright (c) The mculoader Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package flash

// Simulated is an in-memory Controller used by tests and by any build
// that is not targeting real hardware. Erase fills a row with 0xff,
// matching the erased-cell value of NOR/NAND-style flash; Program
// requires the target page's row to have been erased at least once.
// Programming a page a second time after that erase is not detected.
type Simulated struct {
	mem       []byte
	erased    []bool // per-row erased flag, indexed by row number
	readyInit bool
}

// NewSimulated returns a Simulated controller backing a flash region of
// size bytes, initially unerased (as if freshly powered on with unknown
// contents).
func NewSimulated(size uint32) *Simulated {
	mem := make([]byte, size)
	for i := range mem {
		mem[i] = 0xff
	}

	return &Simulated{
		mem:    mem,
		erased: make([]bool, size/RowSize),
	}
}

func (s *Simulated) Init() error {
	s.readyInit = true
	return nil
}

func (s *Simulated) WaitReady() {}

func (s *Simulated) EraseRow(addr uint32) error {
	if addr%RowSize != 0 {
		return ErrMisaligned
	}

	if int(addr)+RowSize > len(s.mem) {
		return ErrRange
	}

	for i := 0; i < RowSize; i++ {
		s.mem[int(addr)+i] = 0xff
	}

	s.erased[addr/RowSize] = true

	return nil
}

func (s *Simulated) ProgramPage(addr uint32, data [PageSize]byte) error {
	if addr%PageSize != 0 {
		return ErrMisaligned
	}

	if int(addr)+PageSize > len(s.mem) {
		return ErrRange
	}

	if !s.erased[addr/RowSize] {
		return errRowNotErased
	}

	copy(s.mem[addr:int(addr)+PageSize], data[:])

	return nil
}

// Read returns a copy of the flash contents at [addr, addr+len), for use
// by tests that need to inspect what was written.
func (s *Simulated) Read(addr, length uint32) []byte {
	out := make([]byte, length)
	copy(out, s.mem[addr:addr+length])
	return out
}

// Size returns the total simulated flash size in bytes.
func (s *Simulated) Size() uint32 {
	return uint32(len(s.mem))
}
