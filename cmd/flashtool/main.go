// https://github.com/usbarmory/mculoader
//
// Copyright (c) The mculoader Authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build hosttools

// Command flashtool is the host-side companion to the device bootloader:
// it drives the HELLO/ERASE APP/WRITE/DONE wire protocol against a real
// device over its virtual serial port, and can sign an image with a
// dev/release Ed25519 key. It never links into the on-device image, so
// unlike the device verifier it has no size constraints and signs with
// golang.org/x/crypto/ed25519 directly.
package main

import (
	"bufio"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"golang.org/x/crypto/ed25519"

	"github.com/usbarmory/mculoader/crc32"
	"github.com/usbarmory/mculoader/hash/sha256"
)

func main() {
	var (
		port    = flag.String("port", "/dev/ttyACM0", "device serial port")
		addr    = flag.Uint64("addr", 0x2000, "flash address to write the image at")
		imgPath = flag.String("image", "", "firmware image to flash")
		keyPath = flag.String("key", "", "hex-encoded 64-byte Ed25519 private key (sign mode)")
		sign    = flag.Bool("sign", false, "sign -image with -key and print the signature, do not flash")
	)
	flag.Parse()

	if *imgPath == "" {
		log.Fatal("flashtool: -image is required")
	}

	img, err := os.ReadFile(*imgPath)
	if err != nil {
		log.Fatalf("flashtool: read image: %v", err)
	}

	digest := sha256.Sum256(img)

	if *sign {
		sig := signImage(*keyPath, digest[:])
		fmt.Println(hex.EncodeToString(sig))
		return
	}

	dev, err := os.OpenFile(*port, os.O_RDWR, 0)
	if err != nil {
		log.Fatalf("flashtool: open %s: %v", *port, err)
	}
	defer dev.Close()

	c := &client{rw: dev, r: bufio.NewReader(dev)}

	if err := c.expect("HELLO\n", "OK BOOT"); err != nil {
		log.Fatalf("flashtool: %v", err)
	}

	if err := c.expect("ERASE APP\n", "OK ERASE"); err != nil {
		log.Fatalf("flashtool: %v", err)
	}

	if err := c.writeImage(uint32(*addr), img); err != nil {
		log.Fatalf("flashtool: %v", err)
	}

	sig := signImage(*keyPath, digest[:])
	cmd := fmt.Sprintf("DONE %s\n", hex.EncodeToString(sig))
	if err := c.expect(cmd, "OK DONE"); err != nil {
		log.Fatalf("flashtool: %v", err)
	}

	log.Printf("flashtool: image flashed and verified, %d bytes at 0x%x", len(img), *addr)
}

// signImage signs digest with the Ed25519 private key at keyPath (a
// hex-encoded 64-byte seed||pubkey, the stdlib's PrivateKey wire form).
func signImage(keyPath string, digest []byte) []byte {
	if keyPath == "" {
		log.Fatal("flashtool: -key is required to sign")
	}

	raw, err := os.ReadFile(keyPath)
	if err != nil {
		log.Fatalf("flashtool: read key: %v", err)
	}

	keyBytes, err := hex.DecodeString(string(trimNewline(raw)))
	if err != nil || len(keyBytes) != ed25519.PrivateKeySize {
		log.Fatalf("flashtool: key must be %d hex-encoded bytes", ed25519.PrivateKeySize)
	}

	return ed25519.Sign(ed25519.PrivateKey(keyBytes), digest)
}

func trimNewline(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

// client wraps a device serial port with the line-reply protocol used
// for every command except the raw WRITE data stream.
type client struct {
	rw io.ReadWriter
	r  *bufio.Reader
}

func (c *client) expect(cmd, wantPrefix string) error {
	if _, err := io.WriteString(c.rw, cmd); err != nil {
		return fmt.Errorf("write %q: %w", cmd, err)
	}

	line, err := c.r.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read reply to %q: %w", cmd, err)
	}

	if len(line) < len(wantPrefix) || line[:len(wantPrefix)] != wantPrefix {
		return fmt.Errorf("%q: unexpected reply %q", cmd, line)
	}

	return nil
}

// writeImage streams img to the device in maxBlock-sized WRITE blocks,
// each with its own declared CRC-32.
const maxBlock = 4096

func (c *client) writeImage(addr uint32, img []byte) error {
	for off := 0; off < len(img); off += maxBlock {
		end := off + maxBlock
		if end > len(img) {
			end = len(img)
		}
		block := img[off:end]

		crc := crc32.Checksum(block)
		cmd := fmt.Sprintf("WRITE 0x%x %d 0x%x\n", addr+uint32(off), len(block), crc)

		if _, err := io.WriteString(c.rw, cmd); err != nil {
			return fmt.Errorf("write command: %w", err)
		}
		if _, err := c.rw.Write(block); err != nil {
			return fmt.Errorf("write data: %w", err)
		}

		line, err := c.r.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read block reply: %w", err)
		}
		if line != "OK WRITE\n" {
			return fmt.Errorf("block at offset %d: device replied %q", off, line)
		}
	}

	return nil
}
