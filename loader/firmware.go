// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package loader

import (
	"net/netip"
)

// Allocator represents the firmware page allocator.
type Allocator interface {
	// AllocateAt reserves the argument number of pages exactly at the
	// argument physical address, as loader owned memory, and returns a
	// writable view of the whole range.
	AllocateAt(addr uint64, pages uint64) (buf []byte, err error)
}

// HandleEnumerator represents the firmware handle database.
type HandleEnumerator interface {
	// LocateNetworkBoot returns, in enumeration order, the handles of all
	// devices implementing the network boot protocol.
	LocateNetworkBoot() (handles []uint64, err error)
}

// Device represents a network boot protocol instance opened exclusively on a
// device handle.
type Device interface {
	Start() error
	DHCP() error
	ReadFile(server netip.Addr, path string, buf []byte) (n int, err error)
	Stop() error
	Close() error
}

// NetworkFirmware represents the firmware services required for network
// boot.
type NetworkFirmware interface {
	HandleEnumerator

	// OpenNetworkBoot opens exclusively the network boot protocol on the
	// argument handle.
	OpenNetworkBoot(handle uint64) (Device, error)
}

// Finalizer represents the firmware transition out of the boot services
// stage.
type Finalizer interface {
	// ExitBootServices terminates firmware boot services, it is invoked
	// exactly once.
	ExitBootServices() error
}

// Executor represents the control transfer to a loaded image.
type Executor interface {
	// Exec invokes the argument physical address as a parameterless entry
	// point, it is not expected to return.
	Exec(entry uint64)
}
