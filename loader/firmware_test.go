// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package loader

import (
	"errors"
	"fmt"
	"net/netip"
)

var errFirmware = errors.New("EFI_STATUS error 0x8000000000000012 (EFI_TIMEOUT)")

// testFirmware records, in order, every firmware interaction.
type testFirmware struct {
	events []string

	memory   map[uint64][]byte
	allocErr error

	handles   []uint64
	locateErr error
	devices   map[uint64]*testDevice

	exitErr error
}

func newTestFirmware() *testFirmware {
	return &testFirmware{
		memory:  make(map[uint64][]byte),
		devices: make(map[uint64]*testDevice),
	}
}

func (fw *testFirmware) record(format string, args ...any) {
	fw.events = append(fw.events, fmt.Sprintf(format, args...))
}

func (fw *testFirmware) count(event string) (n int) {
	for _, e := range fw.events {
		if e == event {
			n++
		}
	}

	return
}

func (fw *testFirmware) index(event string) int {
	for i, e := range fw.events {
		if e == event {
			return i
		}
	}

	return -1
}

func (fw *testFirmware) AllocateAt(addr uint64, pages uint64) ([]byte, error) {
	fw.record("alloc %#x %d", addr, pages)

	if fw.allocErr != nil {
		return nil, fw.allocErr
	}

	buf := make([]byte, pages*PageSize)
	fw.memory[addr] = buf

	return buf, nil
}

func (fw *testFirmware) LocateNetworkBoot() ([]uint64, error) {
	fw.record("locate")
	return fw.handles, fw.locateErr
}

func (fw *testFirmware) OpenNetworkBoot(handle uint64) (Device, error) {
	fw.record("open %d", handle)

	dev, ok := fw.devices[handle]

	if !ok || dev.failAt == StepOpen {
		return nil, errFirmware
	}

	dev.fw = fw
	dev.handle = handle

	return dev, nil
}

func (fw *testFirmware) ExitBootServices() error {
	fw.record("exit")
	return fw.exitErr
}

func (fw *testFirmware) Exec(entry uint64) {
	fw.record("exec %#x", entry)
}

// addDevice registers a network boot device which fails at the argument
// step, or serves image when step is empty.
func (fw *testFirmware) addDevice(handle uint64, failAt string, image []byte) {
	fw.handles = append(fw.handles, handle)
	fw.devices[handle] = &testDevice{
		failAt: failAt,
		image:  image,
	}
}

type testDevice struct {
	fw     *testFirmware
	handle uint64
	failAt string
	image  []byte

	server netip.Addr
	path   string
}

func (d *testDevice) step(step string) error {
	d.fw.record("%s %d", step, d.handle)

	if d.failAt == step {
		return errFirmware
	}

	return nil
}

func (d *testDevice) Start() error {
	return d.step(StepStart)
}

func (d *testDevice) DHCP() error {
	return d.step(StepNegotiate)
}

func (d *testDevice) ReadFile(server netip.Addr, path string, buf []byte) (int, error) {
	d.server = server
	d.path = path

	if err := d.step(StepTransfer); err != nil {
		// partial transfer
		copy(buf, []byte{0xde, 0xad})
		return 0, err
	}

	if len(d.image) > len(buf) {
		return 0, errors.New("EFI_BUFFER_TOO_SMALL")
	}

	return copy(buf, d.image), nil
}

func (d *testDevice) Stop() error {
	return d.step("stop")
}

func (d *testDevice) Close() error {
	return d.step("close")
}
