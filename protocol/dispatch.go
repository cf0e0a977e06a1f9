// Command dispatch for the firmware-update protocol engine.
// https://github.com/usbarmory/mculoader
//
// Copyright (c) The mculoader Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package protocol

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/usbarmory/mculoader/curve25519/ed25519verify"
	"github.com/usbarmory/mculoader/flash"
)

// dispatch parses a complete command line (without its terminator) and
// executes it, returning the reply to send. Every branch returns to
// AwaitingCommand on completion or error: no error is fatal to the
// bootloader.
func (e *Engine) dispatch(line string) (reply []byte, done bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return []byte("ERR UNKNOWN\n"), false
	}

	switch fields[0] {
	case "HELLO":
		return []byte("OK BOOT v1.0\n"), false
	case "ERASE":
		return e.dispatchErase(fields), false
	case "WRITE":
		return e.dispatchWrite(fields), false
	case "DONE":
		return e.dispatchDone(fields)
	default:
		return []byte("ERR UNKNOWN\n"), false
	}
}

func (e *Engine) dispatchErase(fields []string) []byte {
	if len(fields) != 2 || fields[1] != "APP" {
		return []byte("ERR UNKNOWN\n")
	}

	if err := flash.EraseRange(e.ctrl, e.layout.AppStart, e.layout.FlashSize); err != nil {
		return []byte("ERR PARAM\n")
	}

	e.sha256State.Reset()

	return []byte("OK ERASE\n")
}

func (e *Engine) dispatchWrite(fields []string) []byte {
	if len(fields) != 4 {
		return []byte("ERR FORMAT\n")
	}

	addr, err1 := parseUint32(fields[1])
	length, err2 := parseUint32(fields[2])
	crc, err3 := parseUint32(fields[3])

	if err1 != nil || err2 != nil || err3 != nil {
		return []byte("ERR FORMAT\n")
	}

	if addr < e.layout.AppStart || uint64(addr)+uint64(length) > uint64(e.layout.FlashSize) {
		return []byte("ERR PARAM\n")
	}

	e.writeCursor = addr
	e.writeBlockAddr = addr
	e.writeLength = length
	e.writeReceived = 0
	e.writeExpectedCRC = crc
	e.crcState.Reset()
	e.pageFill = 0

	if !e.writeSem.TryAcquire(1) {
		return []byte("ERR PARAM\n")
	}

	if e.hooks.OnWriteDeclare != nil {
		e.hooks.OnWriteDeclare(addr, length)
	}

	if length == 0 {
		// Nothing to stream: the empty-block CRC (0, since the
		// 0xffffffff initial state cancels the final XOR) is already
		// what e.crcState.Sum32() reads, so finish immediately
		// instead of waiting for a byte that will never arrive.
		e.st = awaitingCommand
		e.writeSem.Release(1)

		if e.hooks.OnBlockCommitted != nil {
			e.hooks.OnBlockCommitted(addr, e.crcState.Sum32() == crc)
		}

		if e.crcState.Sum32() != crc {
			return []byte("ERR CRC\n")
		}

		return []byte("OK WRITE\n")
	}

	e.st = receivingWriteData

	return nil
}

func (e *Engine) dispatchDone(fields []string) (reply []byte, done bool) {
	if len(fields) != 2 || len(fields[1]) != 128 {
		return []byte("ERR FORMAT\n"), false
	}

	sigBytes, err := hex.DecodeString(fields[1])
	if err != nil {
		return []byte("ERR FORMAT\n"), false
	}

	var sig [ed25519verify.SignatureSize]byte
	copy(sig[:], sigBytes)

	digest := e.sha256State.Sum(nil)

	if !e.verifier.Verify(digest, sig) {
		return []byte("ERR SIGNATURE\n"), false
	}

	if err := flash.WriteValidMarker(e.ctrl, e.layout.AppStart, e.layout.AppValidMagic); err != nil {
		return []byte("ERR SIGNATURE\n"), false
	}

	return []byte("OK DONE\n"), true
}

// parseUint32 accepts decimal, octal (0 prefix), and hexadecimal (0x
// prefix), the numeric-literal grammar strconv.ParseUint's base-0 mode
// already implements.
func parseUint32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, err
	}

	return uint32(v), nil
}
