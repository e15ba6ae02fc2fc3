// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

// EFI Boot Services offsets
const (
	locateHandle  = 0x0b0
	openProtocol  = 0x118
	closeProtocol = 0x120
)

// EFI_LOCATE_SEARCH_TYPE
const (
	AllHandles = iota
	ByRegisterNotify
	ByProtocol
)

// EFI_OPEN_PROTOCOL attributes
const (
	EFI_OPEN_PROTOCOL_BY_HANDLE_PROTOCOL  = 0x01
	EFI_OPEN_PROTOCOL_GET_PROTOCOL        = 0x02
	EFI_OPEN_PROTOCOL_TEST_PROTOCOL       = 0x04
	EFI_OPEN_PROTOCOL_BY_CHILD_CONTROLLER = 0x08
	EFI_OPEN_PROTOCOL_BY_DRIVER           = 0x10
	EFI_OPEN_PROTOCOL_EXCLUSIVE           = 0x20
)

// handle size in bytes
const handleSize = 8

// LocateHandle calls EFI_BOOT_SERVICES.LocateHandle() to return, in
// enumeration order, all handles supporting the argument protocol.
func (s *BootServices) LocateHandle(guid GUID) (handles []uint64, err error) {
	var size uint64

	// The first call retrieves the required buffer size
	status := callService(s.base+locateHandle,
		[]uint64{
			ByProtocol,
			guid.ptrval(),
			0,
			ptrval(&size),
			0,
		},
	)

	if status != EFI_SUCCESS && !isError(status, EFI_BUFFER_TOO_SMALL) {
		return nil, parseStatus(status)
	}

	if size == 0 {
		return nil, Status(Error(EFI_NOT_FOUND))
	}

	buf := make([]byte, size)

	// The second call retrieves the handles
	status = callService(s.base+locateHandle,
		[]uint64{
			ByProtocol,
			guid.ptrval(),
			0,
			ptrval(&size),
			ptrval(&buf[0]),
		},
	)

	if err = parseStatus(status); err != nil {
		return
	}

	for i := 0; i+handleSize <= int(size); i += handleSize {
		var handle uint64

		if err = unmarshalBinary(buf[i:i+handleSize], &handle); err != nil {
			return nil, err
		}

		handles = append(handles, handle)
	}

	return
}

// OpenProtocol calls EFI_BOOT_SERVICES.OpenProtocol() on behalf of the
// current image.
func (s *BootServices) OpenProtocol(handle uint64, guid GUID, attributes uint32) (addr uint64, err error) {
	status := callService(s.base+openProtocol,
		[]uint64{
			handle,
			guid.ptrval(),
			ptrval(&addr),
			s.imageHandle,
			0,
			uint64(attributes),
		},
	)

	return addr, parseStatus(status)
}

// CloseProtocol calls EFI_BOOT_SERVICES.CloseProtocol() on behalf of the
// current image.
func (s *BootServices) CloseProtocol(handle uint64, guid GUID) (err error) {
	status := callService(s.base+closeProtocol,
		[]uint64{
			handle,
			guid.ptrval(),
			s.imageHandle,
			0,
		},
	)

	return parseStatus(status)
}
