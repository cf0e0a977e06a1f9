// Board memory layout.
// https://github.com/usbarmory/mculoader
//
// Copyright (c) The mculoader Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package board holds the values a concrete target supplies to the core:
// the flash memory map, carried as a value so both bootloader-region
// variants are expressible without rebuilding, and the narrow USB
// collaborator interface the protocol engine is fed from. Nothing in
// this package touches hardware; the real peripheral wiring lives in
// board/generic, gated by the usual tamago build tags.
package board

// Layout is the flash memory map and trust anchor a bootloader instance
// is built against. The bootloader occupies [0, AppStart); the
// application image occupies [AppStart, FlashSize).
type Layout struct {
	// BootloaderSize is the size in bytes of the bootloader's own
	// flash region, either 8 KiB or 16 KiB.
	BootloaderSize uint32

	// AppStart is the flash address where the application image
	// begins. Power-of-two aligned, >= BootloaderSize.
	AppStart uint32

	// FlashSize is the total flash size in bytes.
	FlashSize uint32

	// PageSize is the programming granularity, RowSize the erase
	// granularity, of the target's NVM controller.
	PageSize uint32
	RowSize  uint32

	// AppValidMagic is stored at AppStart-4 when a signed image has
	// been committed since the last erase.
	AppValidMagic uint32

	// TrustedPubkey is the Ed25519 public key of the firmware signer
	// burned into this layout at construction time.
	TrustedPubkey [32]byte
}

// samd21FlashSize is the total flash size of the ATSAMD21G18A-class
// target this layout is modeled on (256 KiB).
const samd21FlashSize = 256 * 1024

// Layout8KiB returns the canonical layout with an 8 KiB bootloader
// region, the application image starting at 0x2000.
func Layout8KiB(pubkey [32]byte) Layout {
	return Layout{
		BootloaderSize: 8 * 1024,
		AppStart:       0x2000,
		FlashSize:      samd21FlashSize,
		PageSize:       64,
		RowSize:        256,
		AppValidMagic:  0x55AA13F0,
		TrustedPubkey:  pubkey,
	}
}

// Layout16KiB returns the wider-bootloader variant, doubling the region
// Layout8KiB reserves.
func Layout16KiB(pubkey [32]byte) Layout {
	l := Layout8KiB(pubkey)
	l.BootloaderSize = 16 * 1024
	l.AppStart = 0x4000
	return l
}
