// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package loader

import (
	"errors"
	"fmt"
)

// Boot attempt failures, all of them are fatal.
var (
	// ErrConfiguration is returned on malformed build-time configuration,
	// before any firmware interaction.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrAllocation is returned when the firmware refuses to reserve the
	// load address range.
	ErrAllocation = errors.New("could not reserve memory")

	// ErrProtocolDiscovery is returned when no device exposes the network
	// boot protocol.
	ErrProtocolDiscovery = errors.New("could not locate network boot protocol")

	// ErrExhaustedSources is returned when every candidate network boot
	// device failed.
	ErrExhaustedSources = errors.New("no network boot device could load image")

	// ErrUnreachableReturn is returned when the loaded image entry point
	// returns, or when no image was loaded.
	ErrUnreachableReturn = errors.New("was unable to load image")
)

// Network boot sequence steps
const (
	StepOpen      = "open"
	StepStart     = "start"
	StepNegotiate = "dhcp"
	StepTransfer  = "tftp"
	StepVerify    = "verify"
)

// DeviceError represents the failure of a single network boot device, it is
// recovered by moving on to the next candidate.
type DeviceError struct {
	Handle uint64
	Step   string
	Err    error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device %#x %s error, %v", e.Handle, e.Step, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}
