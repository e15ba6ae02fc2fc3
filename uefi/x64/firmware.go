// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && amd64

package x64

import (
	"errors"
	"fmt"
	"log"
	"net/netip"

	"github.com/usbarmory/tamago/dma"

	"github.com/usbarmory/go-boot-stub/loader"
	"github.com/usbarmory/go-boot-stub/uefi"
)

// defined in exec_amd64.s
func exec(entry uint64)
func halt()

// Firmware adapts UEFI services to the interfaces required by the loader.
type Firmware struct {
	Services *uefi.Services
}

// NewFirmware returns the firmware adapter for the board UEFI services.
func NewFirmware() *Firmware {
	return &Firmware{
		Services: UEFI,
	}
}

func (fw *Firmware) boot() (*uefi.BootServices, error) {
	if fw.Services == nil || fw.Services.Boot == nil {
		return nil, errors.New("EFI Boot Services are not available")
	}

	return fw.Services.Boot, nil
}

// AllocateAt reserves the argument number of pages at exactly the argument
// physical address and returns its mapping.
func (fw *Firmware) AllocateAt(addr uint64, pages uint64) (buf []byte, err error) {
	boot, err := fw.boot()

	if err != nil {
		return
	}

	size := int(pages * uefi.PageSize)

	if _, err = boot.AllocatePages(uefi.AllocateAddress, uefi.EfiLoaderData, size, addr); err != nil {
		fw.logConflicts(addr, size)
		return
	}

	r, err := dma.NewRegion(uint(addr), size, false)

	if err != nil {
		if err := boot.FreePages(addr, size); err != nil {
			log.Printf("could not free pages at %#x, %v", addr, err)
		}

		return nil, fmt.Errorf("could not map %#x, %v", addr, err)
	}

	_, buf = r.Reserve(size, 0)

	return
}

func (fw *Firmware) logConflicts(addr uint64, size int) {
	memoryMap, err := fw.Services.Boot.GetMemoryMap()

	if err != nil {
		return
	}

	for _, desc := range memoryMap.Overlapping(addr, size) {
		e, err := desc.E820()

		if err != nil {
			continue
		}

		log.Printf("conflicting range %#016x-%#016x type:%d (%v)",
			desc.PhysicalStart, desc.PhysicalEnd()-1, desc.Type, e.MemType)
	}
}

// DisableWatchdog turns off the firmware watchdog timer.
func (fw *Firmware) DisableWatchdog() error {
	boot, err := fw.boot()

	if err != nil {
		return err
	}

	return boot.SetWatchdogTimer(0)
}

// LocateNetworkBoot returns all handles supporting the PXE Base Code
// protocol, in firmware enumeration order. The absence of such handles is
// not an error.
func (fw *Firmware) LocateNetworkBoot() ([]uint64, error) {
	boot, err := fw.boot()

	if err != nil {
		return nil, err
	}

	handles, err := boot.LocateHandle(uefi.EFI_PXE_BASE_CODE_PROTOCOL_GUID)

	if errors.Is(err, uefi.ErrEfiNotFound) {
		return nil, nil
	}

	return handles, err
}

// OpenNetworkBoot opens the PXE Base Code protocol of the argument handle
// for exclusive use.
func (fw *Firmware) OpenNetworkBoot(handle uint64) (loader.Device, error) {
	boot, err := fw.boot()

	if err != nil {
		return nil, err
	}

	pxe, err := boot.OpenPXE(handle)

	if err != nil {
		return nil, err
	}

	return &pxeDevice{pxe: pxe}, nil
}

// ExitBootServices terminates all boot services and detaches the EFI
// console, subsequent output is only sent to the serial port.
func (fw *Firmware) ExitBootServices() (err error) {
	boot, err := fw.boot()

	if err != nil {
		return
	}

	err = boot.ExitBootServices()

	Console.Detach()

	if fw.Services.Console != nil {
		fw.Services.Console.Detach()
	}

	return
}

// Exec transfers control to the argument entry point, it returns only if
// the entry point does.
func (fw *Firmware) Exec(entry uint64) {
	exec(entry)
}

// Halt stops the CPU.
func (fw *Firmware) Halt() {
	halt()
}

// Exit returns control to the firmware with the argument EFI status.
func (fw *Firmware) Exit(status uint64) error {
	boot, err := fw.boot()

	if err != nil {
		return err
	}

	return boot.Exit(status)
}

// Reset requests a cold platform reset, reporting the argument EFI status as
// reset reason.
func (fw *Firmware) Reset(status uint64) error {
	if fw.Services == nil || fw.Services.Runtime == nil {
		return errors.New("EFI Runtime Services are not available")
	}

	return fw.Services.Runtime.ResetSystem(uefi.EfiResetCold, status)
}

type pxeDevice struct {
	pxe *uefi.PXE
}

func (d *pxeDevice) Start() error {
	return d.pxe.Start(false)
}

func (d *pxeDevice) DHCP() (err error) {
	if err = d.pxe.DHCP(false); err != nil {
		return
	}

	if mode, err := d.pxe.Mode(); err == nil {
		log.Printf("device %#x station address %s/%s", d.pxe.Handle, mode.StationIP, mode.SubnetMask)
	}

	return
}

func (d *pxeDevice) ReadFile(server netip.Addr, path string, buf []byte) (n int, err error) {
	ip, err := uefi.IPv4(server)

	if err != nil {
		return
	}

	return d.pxe.ReadFile(ip, path, buf)
}

func (d *pxeDevice) Stop() error {
	return d.pxe.Stop()
}

func (d *pxeDevice) Close() error {
	return d.pxe.Close()
}
