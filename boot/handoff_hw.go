// https://github.com/usbarmory/mculoader
//
// Copyright (c) The mculoader Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && arm

package boot

import "unsafe"

// Handoff transfers control to the application image at appStart. It is
// unsafe: the caller must have verified PlausibleEntry(firstWord,
// secondWord) for the words at appStart, and that the valid marker at
// appStart-4 is AppValidMagic, before calling. Handoff does not check
// either itself, since by the time it runs those checks have already
// gated the call; duplicating them here would just be a second place
// for the precondition to silently drift from the one actually enforced.
//
// vtorReg is the address of the target's vector-table-offset register.
// Handoff writes appStart there, then loads the first word at appStart
// as the initial main stack pointer and jumps to the second word as the
// application's reset vector. It never returns.
func Handoff(vtorReg uintptr, appStart uint32) {
	vtor := (*uint32)(unsafe.Pointer(vtorReg))
	*vtor = appStart

	base := unsafe.Pointer(uintptr(appStart))
	initialSP := *(*uint32)(base)
	resetVector := *(*uint32)(unsafe.Pointer(uintptr(appStart + 4)))

	setSP(uintptr(initialSP))
	jumpTo(uintptr(resetVector))
}

// setSP and jumpTo have no portable expression in Go: rewriting the
// stack pointer and branching to a raw address both require a patched
// runtime, the same way arm/exception.go's exceptionHandler does. They
// are declared here and supplied by that runtime fork rather than
// implemented in this package.
//
//go:linkname setSP runtime.setSP
func setSP(sp uintptr)

//go:linkname jumpTo runtime.jumpTo
func jumpTo(addr uintptr)
