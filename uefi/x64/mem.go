// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && amd64

package x64

import (
	"log"
	"runtime"
	_ "unsafe"

	"github.com/usbarmory/go-boot-stub/uefi"
)

//go:linkname _unused runtime.ramStart
var _unused uint64 = 0x00100000 // must match the linker text address (-T)

//go:linkname RamSize runtime.ramSize
var RamSize uint64 = 0x4000000 // 64MB

func allocateHeap() {
	memoryMap, err := UEFI.Boot.GetMemoryMap()

	if err != nil {
		log.Printf("WARNING: could not get memory map, %v", err)
		return
	}

	heapStart := uint64(0)
	ramStart, ramEnd := runtime.MemRegion()

	// locate runtime heap offset within UEFI memory allocation
	for _, desc := range memoryMap.Descriptors {
		if desc.Type == uefi.EfiLoaderCode && desc.PhysicalStart == ramStart {
			heapStart = desc.PhysicalEnd()
			break
		}
	}

	if heapStart == 0 {
		log.Print("WARNING: could not find heap offset")
		return
	}

	if _, err := UEFI.Boot.AllocatePages(
		uefi.AllocateAddress,
		uefi.EfiLoaderData,
		int(ramEnd-heapStart),
		heapStart,
	); err != nil {
		log.Printf("WARNING: could not allocate heap at %#x, %v", heapStart, err)
	}
}
