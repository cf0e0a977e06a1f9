// Flash programming state machine.
// https://github.com/usbarmory/mculoader
//
// Copyright (c) The mculoader Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package flash abstracts the target's non-volatile memory controller
// behind a narrow interface, so the protocol engine and the boot
// decision logic never perform volatile register I/O directly. The
// only implementation that touches real hardware lives in
// flash_hw.go, built under tamago,arm; flash_sim.go provides an
// in-memory stand-in used by every other build and by tests.
package flash

import "errors"

// PageSize is the programming granularity of the target controller.
const PageSize = 64

// RowSize is the erase granularity of the target controller, four pages.
const RowSize = 4 * PageSize

// ErrMisaligned is returned when an address does not meet the alignment
// a given operation requires.
var ErrMisaligned = errors.New("flash: misaligned address")

// ErrRange is returned when an operation would touch an address outside
// the controller's flash window.
var ErrRange = errors.New("flash: address out of range")

// errRowNotErased is returned by Simulated when a program targets a page
// whose row has never been erased; a second program of the same page
// after one erase is not detected. The real controller has no way to
// detect either and would simply AND the new bits into whatever was
// already there, silently producing corrupt data.
var errRowNotErased = errors.New("flash: row not erased")

// Controller is the minimal contract the protocol engine and the boot
// package need from a non-volatile memory controller. All operations
// block until the controller reports ready; there is no asynchronous
// completion notification anywhere in this package family.
type Controller interface {
	// Init prepares the controller for use. It must be called once
	// before any Erase/Program call.
	Init() error

	// EraseRow erases the RowSize-aligned row starting at addr.
	EraseRow(addr uint32) error

	// ProgramPage writes a full PageSize page at a PageSize-aligned
	// address. Short data must already be padded by the caller.
	ProgramPage(addr uint32, data [PageSize]byte) error

	// WaitReady blocks until the controller is idle. Erase/Program
	// already wait internally; it is exposed so callers can observe
	// controller-busy as a distinct suspension point.
	WaitReady()
}

// EraseRange erases every RowSize-aligned row in [start, end) on ctrl.
// It is a convenience used to implement ERASE APP, iterating rows rather
// than leaving the stepping logic duplicated at each call site.
func EraseRange(ctrl Controller, start, end uint32) error {
	if start%RowSize != 0 || end%RowSize != 0 {
		return ErrMisaligned
	}

	for addr := start; addr < end; addr += RowSize {
		if err := ctrl.EraseRow(addr); err != nil {
			return err
		}
	}

	return nil
}

// WriteValidMarker programs magic into the 4 bytes immediately below
// appStart. The page containing appStart-4 must already be erased by
// the update sequence that preceded this call; the rest of the scratch
// page is filled with 0xff so only the marker word changes the erased
// contents of that page.
func WriteValidMarker(ctrl Controller, appStart uint32, magic uint32) error {
	markerAddr := appStart - 4
	pageAddr := markerAddr - (markerAddr % PageSize)
	offset := markerAddr - pageAddr

	var page [PageSize]byte
	for i := range page {
		page[i] = 0xff
	}

	page[offset+0] = byte(magic)
	page[offset+1] = byte(magic >> 8)
	page[offset+2] = byte(magic >> 16)
	page[offset+3] = byte(magic >> 24)

	return ctrl.ProgramPage(pageAddr, page)
}

// ReadValidMarker returns the 32-bit little-endian word stored at
// appStart-4. r is any contiguous flash-region reader, satisfied by
// Simulated.Read and by the real controller's memory-mapped window.
func ReadValidMarker(r func(addr, length uint32) []byte, appStart uint32) uint32 {
	b := r(appStart-4, 4)
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
