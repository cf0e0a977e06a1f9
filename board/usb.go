// USB collaborator contract.
// https://github.com/usbarmory/mculoader
//
// Copyright (c) The mculoader Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package board

// USB is the narrow contract the protocol engine's driving loop needs
// from the host-facing virtual serial link. Enumeration, endpoint
// servicing, and the CDC descriptor set behind it belong to the
// concrete board package; this is the interface it must satisfy.
type USB interface {
	// RxGetchar returns the next received byte and true, or (0, false)
	// if none is currently available. Never blocks.
	RxGetchar() (byte, bool)

	// TxWrite queues p for transmission. It may block until space is
	// available in the underlying endpoint buffer; this is one of the
	// three permitted suspension points in the whole system.
	TxWrite(p []byte) (int, error)

	// HostBaud reports the baud rate most recently requested by the
	// host via SET_LINE_CODING. 1200 is the "touch" convention that
	// asks the device to enter, or remain in, bootloader mode.
	HostBaud() uint32

	// ServiceTick advances the USB stack. Must be called frequently by
	// the driving loop between byte reads.
	ServiceTick()
}
