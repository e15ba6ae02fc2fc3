// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

// EFI Runtime Services offset for ResetSystem
const resetSystem = 0x68

// EFI_RESET_TYPE
const (
	EfiResetCold = iota
	EfiResetWarm
	EfiResetShutdown
	EfiResetPlatformSpecific
)

// ResetSystem calls EFI_RUNTIME_SERVICES.ResetSystem(), the argument status
// is reported to the firmware as the reset reason.
func (s *RuntimeServices) ResetSystem(resetType int, status uint64) (err error) {
	return parseStatus(callService(s.base+resetSystem,
		[]uint64{
			uint64(resetType),
			status,
			0,
			0,
		},
	))
}
