// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package uefi is a minimal driver for the Unified Extensible Firmware
// Interface (UEFI) services used to fetch, place and start a raw boot image:
// page allocation, memory map, protocol handles, PXE Base Code, watchdog,
// boot services termination and system reset.
//
// Service calls follow the specifications at:
//
//	https://uefi.org/specs/UEFI/2.10/
//
// This package is only meant to be used with `GOOS=tamago` as
// supported by the TamaGo framework for bare metal Go, see
// https://github.com/usbarmory/tamago.
package uefi

import (
	"errors"
	"unsafe"
)

// EFI System Table signature ("IBI SYST")
const signature = 0x5453595320494249

// defined in efi_amd64.s
func callService(fn uint64, args []uint64) (status uint64)

// ptrval converts an output argument pointer to a service call argument.
//
// The pointed value must stay alive until callService returns, which holds
// as arguments are always converted within the calling function.
func ptrval(ptr any) uint64 {
	var p unsafe.Pointer

	switch v := ptr.(type) {
	case *uint64:
		p = unsafe.Pointer(v)
	case *uint32:
		p = unsafe.Pointer(v)
	case *byte:
		p = unsafe.Pointer(v)
	case *IPAddress:
		p = unsafe.Pointer(v)
	default:
		panic("internal error, invalid ptrval")
	}

	return uint64(uintptr(p))
}

// BootServices represents the EFI Boot Services table of the running image.
type BootServices struct {
	base        uint64
	imageHandle uint64
}

// RuntimeServices represents the EFI Runtime Services table, which remains
// usable after ExitBootServices.
type RuntimeServices struct {
	base uint64
}

// TableHeader represents the EFI_TABLE_HEADER.
type TableHeader struct {
	Signature  uint64
	Revision   uint32
	HeaderSize uint32
	CRC32      uint32
	Reserved   uint32
}

// SystemTable represents the EFI_SYSTEM_TABLE passed to the image entry
// point.
type SystemTable struct {
	Header               TableHeader
	FirmwareVendor       uint64
	FirmwareRevision     uint32
	_                    uint32
	ConsoleInHandle      uint64
	ConIn                uint64
	ConsoleOutHandle     uint64
	ConOut               uint64
	StandardErrorHandle  uint64
	StdErr               uint64
	RuntimeServices      uint64
	BootServices         uint64
	NumberOfTableEntries uint64
	ConfigurationTable   uint64
}

// Services holds the firmware services available to the boot stub.
type Services struct {
	SystemTable *SystemTable

	Console *Console
	Boot    *BootServices
	Runtime *RuntimeServices
}

// Init decodes the System Table found at the argument address, the image
// handle is used as agent for protocol access and boot services exit.
func (s *Services) Init(imageHandle uint64, systemTable uint64) (err error) {
	s.SystemTable = &SystemTable{}

	if err = decode(s.SystemTable, systemTable); err != nil {
		return
	}

	if s.SystemTable.Header.Signature != signature {
		return errors.New("invalid EFI System Table signature")
	}

	s.Console = &Console{
		ForceLine: true,
		Out:       s.SystemTable.ConOut,
	}

	s.Boot = &BootServices{
		base:        s.SystemTable.BootServices,
		imageHandle: imageHandle,
	}

	s.Runtime = &RuntimeServices{
		base: s.SystemTable.RuntimeServices,
	}

	return
}
