// Firmware-update protocol engine.
// https://github.com/usbarmory/mculoader
//
// Copyright (c) The mculoader Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package protocol implements the line-oriented bootloader command
// parser and its binary-streaming WRITE sub-mode: argument validation,
// per-block CRC-32 and whole-image SHA-256 accounting, page-staged
// flash writes, and the final DONE signature-verify-then-commit step.
//
// An Engine owns all of the parser, integrity and staging state as
// unexported fields of one value constructed once by New; there is no
// package level mutable state. Feed is the only entry point the driving
// loop (cmd/bootloader) needs to call, one received byte at a time.
//
// A block whose CRC does not match is left in flash as written and
// answered with ERR CRC; the engine does not require, or track, a fresh
// ERASE APP before the host resends it.
package protocol

import (
	"bytes"

	"golang.org/x/sync/semaphore"

	"github.com/usbarmory/mculoader/board"
	"github.com/usbarmory/mculoader/crc32"
	"github.com/usbarmory/mculoader/curve25519/ed25519verify"
	"github.com/usbarmory/mculoader/flash"
	"github.com/usbarmory/mculoader/hash/sha256"
)

// state names the two legal parser states.
type state int

const (
	awaitingCommand state = iota
	receivingWriteData
)

const cmdBufferCap = 128

// ConformanceHooks are optional observation callbacks a conformance test
// can install to watch decisions the runtime state machine itself does
// not gate on. They never change behavior: default is nil, and every
// call site treats a nil hook as a no-op.
type ConformanceHooks struct {
	// OnWriteDeclare is called when a WRITE command is accepted, before
	// any data byte is consumed, so a test can record whether the
	// declared range was freshly erased in this session: the engine
	// itself does not track erasure across reboots, and a host may
	// re-program an already-programmed cell without it noticing.
	OnWriteDeclare func(addr, length uint32)

	// OnBlockCommitted is called once a WRITE block's data has been
	// fully consumed and its CRC checked, crcOK reporting the result.
	OnBlockCommitted func(addr uint32, crcOK bool)
}

// Engine is one instance of the protocol state machine. The zero value
// is not usable; construct with New.
type Engine struct {
	layout   board.Layout
	ctrl     flash.Controller
	verifier ed25519verify.Verifier
	hooks    ConformanceHooks

	st state

	cmdBuffer []byte
	overlong  bool

	writeCursor      uint32
	writeLength      uint32
	writeReceived    uint32
	writeExpectedCRC uint32
	writeBlockAddr   uint32

	crcState *crc32.State

	pageStaging [flash.PageSize]byte
	pageFill    int

	sha256State *sha256.Digest

	// writeSem guards the single write-data sub-mode instance, the
	// same way soc/imx6/dcp's hash channel guards its one live digest:
	// the core is single-threaded and a second concurrent WRITE cannot
	// happen today, but a future transport that multiplexes callers
	// must fail fast rather than corrupt pageStaging.
	writeSem *semaphore.Weighted
}

// New returns an Engine for the given flash layout, NVM controller, and
// signature verifier, ready to receive bytes via Feed.
func New(layout board.Layout, ctrl flash.Controller, verifier ed25519verify.Verifier) *Engine {
	e := &Engine{
		layout:      layout,
		ctrl:        ctrl,
		verifier:    verifier,
		cmdBuffer:   make([]byte, 0, cmdBufferCap),
		crcState:    crc32.New(),
		sha256State: sha256.New(),
		writeSem:    semaphore.NewWeighted(1),
	}
	return e
}

// SetConformanceHooks installs hooks for a conformance test harness. A
// nil ConformanceHooks field disables that observation point.
func (e *Engine) SetConformanceHooks(hooks ConformanceHooks) {
	e.hooks = hooks
}

// Feed consumes one byte from the host link and returns any reply bytes
// that should be sent back (nil if none yet, e.g. mid-line or mid-block).
// done reports that a DONE command has been accepted and verified: the
// caller must perform the handoff (boot.Handoff) after sending reply,
// since the jump primitive is outside this package's scope.
func (e *Engine) Feed(b byte) (reply []byte, done bool) {
	if e.st == receivingWriteData {
		return e.feedData(b), false
	}

	return e.feedLine(b)
}

func (e *Engine) feedLine(b byte) (reply []byte, done bool) {
	switch b {
	case '\r':
		return nil, false
	case '\n':
		line := string(e.cmdBuffer)
		e.cmdBuffer = e.cmdBuffer[:0]
		overlong := e.overlong
		e.overlong = false

		if overlong {
			// The line that triggered the reset is gone; the host
			// will see nothing for it and must resend.
			return nil, false
		}

		return e.dispatch(line)
	default:
		// A DONE line carries a 128-hex-digit signature, longer than
		// the general line limit; it may grow to exactly that length.
		limit := cmdBufferCap - 1
		if bytes.HasPrefix(e.cmdBuffer, []byte("DONE ")) {
			limit = len("DONE ") + 2*ed25519verify.SignatureSize
		}

		if len(e.cmdBuffer) >= limit {
			// Buffer would overflow: drop silently, wait for the
			// next '\n' to restart parsing.
			e.cmdBuffer = e.cmdBuffer[:0]
			e.overlong = true
			return nil, false
		}

		e.cmdBuffer = append(e.cmdBuffer, b)
		return nil, false
	}
}

func (e *Engine) feedData(b byte) []byte {
	e.crcState.Update(b)
	e.sha256State.Write([]byte{b})

	e.pageStaging[e.pageFill] = b
	e.pageFill++
	e.writeReceived++

	if e.pageFill == flash.PageSize {
		e.flushPage()
	}

	if e.writeReceived < e.writeLength {
		return nil
	}

	return e.finishBlock()
}

// flushPage programs the currently staged page to flash at writeCursor,
// padding a partial tail page with 0xff and programming the full page,
// and advances the cursor, clearing the staging buffer.
func (e *Engine) flushPage() {
	if e.pageFill == 0 {
		return
	}

	page := e.pageStaging
	for i := e.pageFill; i < flash.PageSize; i++ {
		page[i] = 0xff
	}

	// Errors from the NVM controller have no recovery path in the
	// protocol: the block's CRC reply still reflects what the host
	// sent, and a controller fault here is left to the host's retry
	// convention like any other hardware failure.
	e.ctrl.ProgramPage(e.writeCursor, page)

	e.writeCursor += flash.PageSize
	e.pageFill = 0
}

// finishBlock flushes any tail, finalizes the block's CRC, returns to
// AwaitingCommand, and replies OK WRITE or ERR CRC.
func (e *Engine) finishBlock() []byte {
	e.flushPage()

	crcOK := e.crcState.Sum32() == e.writeExpectedCRC

	e.st = awaitingCommand
	e.writeSem.Release(1)

	if e.hooks.OnBlockCommitted != nil {
		e.hooks.OnBlockCommitted(e.writeBlockAddr, crcOK)
	}

	if !crcOK {
		return []byte("ERR CRC\n")
	}

	return []byte("OK WRITE\n")
}
