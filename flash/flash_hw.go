// https://github.com/usbarmory/mculoader
//
// Copyright (c) The mculoader Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && arm

package flash

import (
	"unsafe"

	"github.com/usbarmory/mculoader/internal/reg"
)

// NVM register layout, offsets relative to a controller base address.
// Naming follows the vendor's NVM controller register map: an address
// register, a 32-bit data-in register used to populate the page buffer,
// a command register taking a key alongside the opcode (guards against
// stray writes triggering an erase), and a single busy bit in the
// interrupt/status register.
const (
	nvmAddr    = 0x00
	nvmData    = 0x04
	nvmCmd     = 0x08
	nvmIntFlag = 0x0c
	nvmCtrlB   = 0x10

	cmdKey = 0xa5

	cmdErasePage       = 0x02
	cmdWritePage       = 0x04
	cmdClearPageBuffer = 0x15

	intFlagReady = 0

	ctrlBManualWrite = 7
	ctrlBRwsShift    = 1

	// one read wait state, required at the 48 MHz operating point
	flashWaitStates = 1
)

// HW is the real NVM controller driver. Base is the controller's
// register block base address; it is a *uint32-free handle, the only
// site in this package that performs volatile I/O, per the narrow
// peripheral-handle convention this driver family follows throughout.
type HW struct {
	Base uint32
}

// NewHW returns a Controller backed by the NVM controller at base.
func NewHW(base uint32) *HW {
	return &HW{Base: base}
}

func (h *HW) reg(offset uint32) uint32 {
	return h.Base + offset
}

// Init waits for the controller to come up, disables automatic page
// writes (every program is an explicit write-page command from this
// driver) and configures the flash read wait states for the operating
// frequency.
func (h *HW) Init() error {
	h.WaitReady()

	reg.Set(h.reg(nvmCtrlB), ctrlBManualWrite)
	reg.SetN(h.reg(nvmCtrlB), ctrlBRwsShift, 0xf, flashWaitStates)

	return nil
}

// WaitReady blocks until the controller's busy bit clears. This is one
// of the three permitted blocking points in the whole system: the
// others are the pre-core clock-sync spin and the USB collaborator's
// own TX-full block.
func (h *HW) WaitReady() {
	reg.Wait(h.reg(nvmIntFlag), intFlagReady, 1, 1)
}

func (h *HW) EraseRow(addr uint32) error {
	if addr%RowSize != 0 {
		return ErrMisaligned
	}

	h.WaitReady()

	reg.Write(h.reg(nvmAddr), addr/2)
	reg.Write(h.reg(nvmCmd), cmdKey<<8|cmdErasePage)

	h.WaitReady()

	return nil
}

func (h *HW) ProgramPage(addr uint32, data [PageSize]byte) error {
	if addr%PageSize != 0 {
		return ErrMisaligned
	}

	h.WaitReady()

	reg.Write(h.reg(nvmCmd), cmdKey<<8|cmdClearPageBuffer)
	h.WaitReady()

	// Writing 16 32-bit words directly to the target flash address
	// populates the page buffer; the controller latches these instead
	// of performing an ordinary memory write.
	dst := (*[PageSize / 4]uint32)(unsafe.Pointer(uintptr(addr)))

	for i := 0; i < PageSize/4; i++ {
		dst[i] = uint32(data[i*4]) | uint32(data[i*4+1])<<8 |
			uint32(data[i*4+2])<<16 | uint32(data[i*4+3])<<24
	}

	reg.Write(h.reg(nvmAddr), addr/2)
	reg.Write(h.reg(nvmCmd), cmdKey<<8|cmdWritePage)

	h.WaitReady()

	return nil
}

// ReadWord performs a raw volatile 32-bit read of flash at addr. It is
// used by board wiring to inspect the valid marker before the protocol
// engine is constructed, and needs no Controller: reading flash, unlike
// erasing or programming it, requires no NVM controller sequencing.
func ReadWord(addr uint32) uint32 {
	return *(*uint32)(unsafe.Pointer(uintptr(addr)))
}
