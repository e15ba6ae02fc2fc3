// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

// EFI ConOut offset for OutputString
const outputString = 0x08

// Console represents an EFI Simple Text Output protocol instance.
type Console struct {
	// ForceLine controls whether line feeds (LF) should be supplemented
	// with a carriage return (CR).
	ForceLine bool

	// EFI Simple Text Output protocol instance
	Out uint64
}

// Output calls EFI_SIMPLE_TEXT_OUTPUT_PROTOCOL.OutputString() with a null
// terminated UTF-16 string.
func (c *Console) Output(p []byte) (status uint64) {
	if c.Out == 0 || len(p) == 0 {
		return
	}

	if len(p)%2 != 0 {
		p = append(p, 0x00)
	}

	if n := len(p); p[n-2] != 0x00 || p[n-1] != 0x00 {
		p = append(p, 0x00, 0x00)
	}

	return callService(c.Out+outputString,
		[]uint64{
			c.Out,
			ptrval(&p[0]),
		},
	)
}

// Detach disables any further console access, it must be invoked once EFI
// Boot Services are no longer available.
func (c *Console) Detach() {
	c.Out = 0
}
