// https://github.com/usbarmory/mculoader
//
// Copyright (c) The mculoader Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && arm

// Package generic wires the core packages (protocol, flash, boot) to a
// concrete target's peripheral register addresses. It is the only
// place outside flash/flash_hw.go and boot/handoff_hw.go that a real
// board build needs to supply: everything above it is hardware-free.
package generic

import (
	"github.com/usbarmory/mculoader/flash"
)

// NVMBase is the register block base address of the target's NVM
// controller.
const NVMBase = 0x41004000

// VTORAddr is the address of the Cortex-M vector-table-offset register.
const VTORAddr = 0xE000ED08

// NewNVM returns the real flash.Controller for this target, wrapping
// the NVM controller register block at NVMBase.
func NewNVM() flash.Controller {
	return flash.NewHW(NVMBase)
}
