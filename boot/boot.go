// Boot policy: stay-resident decision and application handoff.
// https://github.com/usbarmory/mculoader
//
// Copyright (c) The mculoader Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package boot implements the entry decision the bootloader makes on
// every reset, and the handoff primitive that transfers control to the
// application once that decision says to. The decision itself
// (ShouldStayResident) is a pure function so it can be exercised
// without hardware; the handoff (Handoff, in handoff_hw.go) cannot be,
// since it rewrites the stack pointer and the vector table.
package boot

// AppValidMagic marks address AppStart-4 as holding a committed,
// authenticated application image.
const AppValidMagic = 0x55AA13F0

// TouchBaud is the baud-rate notification value that signals the host
// wants the device to enter, or remain in, bootloader mode ("touch").
const TouchBaud = 1200

// ShouldStayResident reports whether the bootloader should remain
// resident rather than hand off to the application. It stays resident
// if either the host link currently reports the touch baud rate, or the
// valid marker below AppStart does not read as AppValidMagic.
func ShouldStayResident(hostBaud uint32, validMarker uint32) bool {
	if hostBaud == TouchBaud {
		return true
	}

	return validMarker != AppValidMagic
}

// PlausibleEntry reports whether the first two words of an application
// image look like a real vector table rather than erased or zeroed
// flash: neither may be all-ones or all-zeros. This is the documented
// precondition Handoff requires before it may be called; it does not,
// by itself, make the jump safe.
func PlausibleEntry(initialSP, resetVector uint32) bool {
	bad := func(w uint32) bool {
		return w == 0x00000000 || w == 0xffffffff
	}

	return !bad(initialSP) && !bad(resetVector)
}
