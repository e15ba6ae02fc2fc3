// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

// EFI Boot Services offsets
const (
	exit             = 0xd8
	exitBootServices = 0xe8
)

// Exit calls EFI_BOOT_SERVICES.Exit(), returning control to the image loader
// with the argument EFI_STATUS.
func (s *BootServices) Exit(status uint64) (err error) {
	return parseStatus(callService(s.base+exit,
		[]uint64{
			s.imageHandle,
			status,
			0,
			0,
		},
	))
}

// ExitBootServices calls EFI_BOOT_SERVICES.ExitBootServices() with the
// current memory map key, on success no other Boot Services call is
// permitted.
func (s *BootServices) ExitBootServices() (err error) {
	memoryMap, err := s.GetMemoryMap()

	if err != nil {
		return
	}

	status := callService(s.base+exitBootServices,
		[]uint64{
			s.imageHandle,
			memoryMap.MapKey,
		},
	)

	return parseStatus(status)
}
