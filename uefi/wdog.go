// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

// EFI Boot Services offset for SetWatchdogTimer
const setWatchdogTimer = 0x100

// watchdog code reported by the firmware on expiration
const watchdogCode = 0xba3e5e7a1

// SetWatchdogTimer calls EFI_BOOT_SERVICES.SetWatchdogTimer(). The firmware
// boot manager arms a five minute watchdog before starting the image, a zero
// timeout disarms it so that long network transfers are not interrupted.
func (s *BootServices) SetWatchdogTimer(sec int) error {
	return parseStatus(callService(s.base+setWatchdogTimer,
		[]uint64{
			uint64(sec),
			watchdogCode,
			0, // DataSize
			0, // WatchdogData
		},
	))
}
