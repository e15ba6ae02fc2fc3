// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && amd64

// Package x64 is the board support for running the boot stub as an x86_64
// UEFI application: it brings up the CPU, serial port and clock, binds the
// firmware services handed to the image entry point and adapts them to the
// loader interfaces through [Firmware].
//
// Initialization happens automatically on import. This package is only meant
// to be used with `GOOS=tamago` as supported by the TamaGo framework for
// bare metal Go, see https://github.com/usbarmory/tamago.
package x64

import (
	"log"
	"runtime/goos"
	_ "unsafe"

	"github.com/usbarmory/tamago/amd64"
	"github.com/usbarmory/tamago/soc/intel/rtc"
	"github.com/usbarmory/tamago/soc/intel/uart"

	"github.com/usbarmory/go-boot-stub/uefi"
)

// COM1 is the serial port used once the EFI console is detached.
const COM1 = 0x3f8

// entry point arguments, set in x64.s
var (
	imageHandle uint64
	systemTable uint64
	conOut      uint64
)

var (
	// AMD64 is the single core running the stub.
	AMD64 = &amd64.CPU{
		// required before Init()
		TimerMultiplier: 1,
	}

	// RTC seeds the wall clock used for transfer timings.
	RTC = &rtc.RTC{}

	// UART0 receives log output after ExitBootServices.
	UART0 = &uart.UART{
		Index: 1,
		Base:  COM1,
		DTR:   true,
		RTS:   true,
	}

	// UEFI holds the firmware services of the running image.
	UEFI = &uefi.Services{}
)

//go:linkname nanotime runtime/goos.Nanotime
func nanotime() int64 {
	return AMD64.GetTime()
}

// Init performs the CPU and serial port setup required early in runtime
// initialization.
//
//go:linkname Init runtime/goos.Hwinit1
func Init() {
	AMD64.Init()

	// no idle management while firmware services are in use
	goos.Idle = nil

	UART0.Init()
}

func init() {
	if t, err := RTC.Now(); err == nil {
		AMD64.SetTime(t.UnixNano())
	}

	if err := UEFI.Init(imageHandle, systemTable); err != nil {
		log.Printf("could not bind EFI services, %v", err)
		return
	}

	// the runtime heap lies past the image and must be owned before any
	// fixed address reservation
	allocateHeap()
}
