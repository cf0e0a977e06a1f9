// https://github.com/usbarmory/mculoader
//
// Copyright (c) The mculoader Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && arm

// Command bootloader is the on-device entry point: it decides whether
// to stay resident or hand off to the application, and if resident,
// drives the protocol engine from the USB collaborator one byte at a
// time in a cooperative super-loop.
package main

import (
	"github.com/usbarmory/mculoader/board"
	"github.com/usbarmory/mculoader/board/generic"
	"github.com/usbarmory/mculoader/boot"
	"github.com/usbarmory/mculoader/curve25519/ed25519verify"
	"github.com/usbarmory/mculoader/flash"
	"github.com/usbarmory/mculoader/protocol"
)

// trustedPubkey is the Ed25519 public key of the firmware signer,
// burned into the image at build time. This placeholder must be
// replaced with the real signer's key before a release build.
var trustedPubkey = [32]byte{
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// NewUSB must be supplied by the concrete board package linked into
// this binary: CDC-ACM enumeration, endpoint servicing, and the
// SET_LINE_CODING baud notification all live behind the board.USB
// interface, not here. A board init() sets this before main runs.
var NewUSB func() board.USB

func main() {
	layout := board.Layout8KiB(trustedPubkey)

	ctrl := generic.NewNVM()
	ctrl.Init()

	usb := NewUSB()

	marker := flash.ReadWord(layout.AppStart - 4)
	if !boot.ShouldStayResident(usb.HostBaud(), marker) {
		firstWord := flash.ReadWord(layout.AppStart)
		resetVector := flash.ReadWord(layout.AppStart + 4)

		if boot.PlausibleEntry(firstWord, resetVector) {
			boot.Handoff(generic.VTORAddr, layout.AppStart)
		}
	}

	verifier := ed25519verify.NewKey(layout.TrustedPubkey)
	engine := protocol.New(layout, ctrl, verifier)

	for {
		usb.ServiceTick()

		b, ok := usb.RxGetchar()
		if !ok {
			continue
		}

		reply, done := engine.Feed(b)

		if len(reply) > 0 {
			usb.TxWrite(reply)
		}

		if done {
			boot.Handoff(generic.VTORAddr, layout.AppStart)
		}
	}
}
