// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package loader

import (
	"fmt"
	"log"
	"time"

	"github.com/hako/durafmt"

	"github.com/usbarmory/go-boot-stub/payload"
)

// Network represents an image source fetched over the firmware network boot
// protocol (PXE DHCP and TFTP).
type Network struct {
	// Firmware provides handle enumeration and protocol access.
	Firmware NetworkFirmware
	// Endpoint is the TFTP server and image path.
	Endpoint Endpoint
	// Size is the image buffer size.
	Size int
	// Skip is the number of leading handles which are never tried.
	Skip int
	// Digest is the optional expected image BLAKE3-256 digest.
	Digest []byte

	handles []uint64
}

// Select implements [Source.Select] by enumerating the devices exposing the
// network boot protocol.
func (n *Network) Select() (err error) {
	if n.Firmware == nil {
		return fmt.Errorf("%w, no firmware", ErrProtocolDiscovery)
	}

	if n.handles, err = n.Firmware.LocateNetworkBoot(); err != nil {
		return fmt.Errorf("%w, %v", ErrProtocolDiscovery, err)
	}

	if len(n.handles) == 0 {
		return fmt.Errorf("%w, no network boot devices", ErrProtocolDiscovery)
	}

	log.Printf("found %d network boot devices", len(n.handles))

	return
}

// Length implements [Source.Length].
func (n *Network) Length() int {
	return n.Size
}

// Candidates returns the handles tried, in order, by [Network.Load].
func (n *Network) Candidates() []uint64 {
	if n.Skip >= len(n.handles) {
		return nil
	}

	return n.handles[n.Skip:]
}

// Load implements [Source.Load] by trying each candidate device until one
// completes the full network boot sequence.
func (n *Network) Load(buf []byte) (err error) {
	candidates := n.Candidates()

	if len(candidates) == 0 {
		return fmt.Errorf("%w, no candidates after skipping %d of %d devices", ErrExhaustedSources, n.Skip, len(n.handles))
	}

	for _, handle := range candidates {
		start := time.Now()

		size, err := n.fetch(handle, buf)

		if err != nil {
			log.Printf("skipping network boot device, %v", err)
			continue
		}

		// the image is shorter than the reserved buffer
		clear(buf[size:])

		log.Printf("loaded %d bytes from %s via device %#x in %s",
			size, n.Endpoint, handle, durafmt.Parse(time.Since(start)).LimitFirstN(2))

		return nil
	}

	return ErrExhaustedSources
}

// fetch performs the network boot sequence on a single device, the protocol
// is always stopped and closed before returning.
func (n *Network) fetch(handle uint64, buf []byte) (size int, err error) {
	fail := func(step string, err error) (int, error) {
		return 0, &DeviceError{Handle: handle, Step: step, Err: err}
	}

	dev, err := n.Firmware.OpenNetworkBoot(handle)

	if err != nil {
		return fail(StepOpen, err)
	}

	defer func() {
		if err := dev.Close(); err != nil {
			log.Printf("could not close device %#x, %v", handle, err)
		}
	}()

	if err = dev.Start(); err != nil {
		return fail(StepStart, err)
	}

	defer func() {
		if err := dev.Stop(); err != nil {
			log.Printf("could not stop device %#x, %v", handle, err)
		}
	}()

	if err = dev.DHCP(); err != nil {
		return fail(StepNegotiate, err)
	}

	if size, err = dev.ReadFile(n.Endpoint.Server, n.Endpoint.Path, buf); err != nil {
		return fail(StepTransfer, err)
	}

	if size <= 0 || size > len(buf) {
		return fail(StepTransfer, fmt.Errorf("invalid transfer size %d", size))
	}

	if err = payload.Verify(buf[:size], n.Digest); err != nil {
		return fail(StepVerify, err)
	}

	return
}

func (n *Network) String() string {
	return fmt.Sprintf("network image %s (%d bytes)", n.Endpoint, n.Size)
}
