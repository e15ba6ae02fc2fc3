// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package loader

import (
	"bytes"
	"errors"
	"net/netip"
	"testing"

	"github.com/usbarmory/go-boot-stub/payload"
)

var testEndpoint = Endpoint{
	Server: netip.MustParseAddr("172.16.0.2"),
	Path:   "loader.img",
}

func checkEvents(t *testing.T, fw *testFirmware, expected []string) {
	t.Helper()

	if len(fw.events) != len(expected) {
		t.Fatalf("unexpected firmware calls\n got: %q\nwant: %q", fw.events, expected)
	}

	for i := range expected {
		if fw.events[i] != expected[i] {
			t.Fatalf("unexpected firmware calls\n got: %q\nwant: %q", fw.events, expected)
		}
	}
}

func TestNetworkFallback(t *testing.T) {
	image := bytes.Repeat([]byte{0xeb, 0xfe}, 3000)

	fw := newTestFirmware()
	fw.addDevice(10, "", image)
	fw.addDevice(11, StepNegotiate, image)
	fw.addDevice(12, "", image)

	src := &Network{
		Firmware: fw,
		Endpoint: testEndpoint,
		Size:     len(image),
		Skip:     DefaultSkipHandles,
	}

	l := newTestLoader(fw, 0x100000, src)

	if err := l.Boot(); !errors.Is(err, ErrUnreachableReturn) {
		t.Fatalf("expected ErrUnreachableReturn, got %v", err)
	}

	checkEvents(t, fw, []string{
		"locate",
		"alloc 0x100000 2",
		"open 11",
		"start 11",
		"dhcp 11",
		"stop 11",
		"close 11",
		"open 12",
		"start 12",
		"dhcp 12",
		"tftp 12",
		"stop 12",
		"close 12",
		"exit",
		"exec 0x100000",
	})

	if !bytes.Equal(fw.memory[0x100000][:len(image)], image) {
		t.Fatal("image mismatch")
	}

	dev := fw.devices[12]

	if dev.server != testEndpoint.Server || dev.path != testEndpoint.Path {
		t.Fatalf("unexpected endpoint %s/%s", dev.server, dev.path)
	}
}

func TestNetworkStopsAfterSuccess(t *testing.T) {
	fw := newTestFirmware()
	fw.addDevice(1, "", nil)
	fw.addDevice(2, "", []byte{0x90})
	fw.addDevice(3, "", []byte{0x90})

	src := &Network{
		Firmware: fw,
		Endpoint: testEndpoint,
		Size:     PageSize,
		Skip:     1,
	}

	if err := src.Select(); err != nil {
		t.Fatal(err)
	}

	if err := src.Load(make([]byte, PageSize)); err != nil {
		t.Fatal(err)
	}

	if fw.count("open 1") != 0 || fw.count("open 3") != 0 {
		t.Fatalf("unexpected devices tried %v", fw.events)
	}
}

func TestNetworkExhausted(t *testing.T) {
	fw := newTestFirmware()
	fw.addDevice(1, "", []byte{0x90})
	fw.addDevice(2, StepOpen, nil)
	fw.addDevice(3, StepTransfer, nil)

	src := &Network{
		Firmware: fw,
		Endpoint: testEndpoint,
		Size:     PageSize,
		Skip:     1,
	}

	l := newTestLoader(fw, 0x100000, src)

	if err := l.Boot(); !errors.Is(err, ErrExhaustedSources) {
		t.Fatalf("expected ErrExhaustedSources, got %v", err)
	}

	checkEvents(t, fw, []string{
		"locate",
		"alloc 0x100000 1",
		"open 2",
		"open 3",
		"start 3",
		"dhcp 3",
		"tftp 3",
		"stop 3",
		"close 3",
	})

	if l.State() != FatalFailure {
		t.Fatalf("unexpected state %s", l.State())
	}
}

func TestNetworkStartFailure(t *testing.T) {
	fw := newTestFirmware()
	fw.addDevice(1, StepStart, nil)

	src := &Network{
		Firmware: fw,
		Endpoint: testEndpoint,
		Size:     PageSize,
	}

	if err := src.Select(); err != nil {
		t.Fatal(err)
	}

	if err := src.Load(make([]byte, PageSize)); !errors.Is(err, ErrExhaustedSources) {
		t.Fatalf("expected ErrExhaustedSources, got %v", err)
	}

	// a device which did not start is closed but not stopped
	checkEvents(t, fw, []string{
		"locate",
		"open 1",
		"start 1",
		"close 1",
	})
}

func TestNetworkDiscovery(t *testing.T) {
	fw := newTestFirmware()

	l := newTestLoader(fw, 0x100000, &Network{
		Firmware: fw,
		Endpoint: testEndpoint,
		Size:     PageSize,
		Skip:     1,
	})

	if err := l.Boot(); !errors.Is(err, ErrProtocolDiscovery) {
		t.Fatalf("expected ErrProtocolDiscovery, got %v", err)
	}

	checkEvents(t, fw, []string{"locate"})

	fw = newTestFirmware()
	fw.locateErr = errFirmware

	src := &Network{Firmware: fw}

	if err := src.Select(); !errors.Is(err, ErrProtocolDiscovery) {
		t.Fatalf("expected ErrProtocolDiscovery, got %v", err)
	}
}

func TestNetworkSkipAll(t *testing.T) {
	fw := newTestFirmware()
	fw.addDevice(1, "", []byte{0x90})

	l := newTestLoader(fw, 0x100000, &Network{
		Firmware: fw,
		Endpoint: testEndpoint,
		Size:     PageSize,
		Skip:     1,
	})

	if err := l.Boot(); !errors.Is(err, ErrExhaustedSources) {
		t.Fatalf("expected ErrExhaustedSources, got %v", err)
	}

	if fw.count("open 1") != 0 || fw.count("exit") != 0 {
		t.Fatalf("unexpected firmware calls %v", fw.events)
	}
}

func TestNetworkDigest(t *testing.T) {
	image := []byte("kernel image")
	corrupted := []byte("kernel imagf")

	fw := newTestFirmware()
	fw.addDevice(1, "", corrupted)
	fw.addDevice(2, "", image)

	src := &Network{
		Firmware: fw,
		Endpoint: testEndpoint,
		Size:     PageSize,
		Digest:   payload.Digest(image),
	}

	if err := src.Select(); err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, PageSize)

	if err := src.Load(buf); err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(buf[:len(image)], image) {
		t.Fatal("image mismatch")
	}

	if fw.count("close 1") != 1 || fw.count("stop 1") != 1 {
		t.Fatalf("rejected device not released %v", fw.events)
	}
}

func TestNetworkShortTransfer(t *testing.T) {
	fw := newTestFirmware()
	fw.addDevice(1, StepTransfer, nil)
	fw.addDevice(2, "", []byte{0x01, 0x02})

	src := &Network{
		Firmware: fw,
		Endpoint: testEndpoint,
		Size:     16,
	}

	if err := src.Select(); err != nil {
		t.Fatal(err)
	}

	buf := bytes.Repeat([]byte{0xff}, 16)

	if err := src.Load(buf); err != nil {
		t.Fatal(err)
	}

	expected := make([]byte, 16)
	expected[0] = 0x01
	expected[1] = 0x02

	// no partial bytes from the failed device survive
	if !bytes.Equal(buf, expected) {
		t.Fatalf("unexpected buffer %x", buf)
	}
}

func TestNetworkOversized(t *testing.T) {
	fw := newTestFirmware()
	fw.addDevice(1, "", make([]byte, 32))

	src := &Network{
		Firmware: fw,
		Endpoint: testEndpoint,
		Size:     16,
	}

	if err := src.Select(); err != nil {
		t.Fatal(err)
	}

	if err := src.Load(make([]byte, 16)); !errors.Is(err, ErrExhaustedSources) {
		t.Fatalf("expected ErrExhaustedSources, got %v", err)
	}
}

func TestDeviceError(t *testing.T) {
	var e *DeviceError

	err := error(&DeviceError{Handle: 0x7e, Step: StepNegotiate, Err: errFirmware})

	if !errors.As(err, &e) || e.Step != StepNegotiate {
		t.Fatal("expected device error")
	}

	if !errors.Is(err, errFirmware) {
		t.Fatal("expected wrapped firmware error")
	}

	if errors.As(ErrExhaustedSources, &e) {
		t.Fatal("unexpected device error")
	}
}
