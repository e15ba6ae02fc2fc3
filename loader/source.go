// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package loader

import (
	"fmt"
)

// Source represents an image source.
type Source interface {
	// Select prepares the source, it is invoked before memory
	// reservation.
	Select() error
	// Length returns the number of bytes to reserve for the image.
	Length() int
	// Load populates the argument buffer with the image.
	Load(buf []byte) error
	// String returns the source description.
	String() string
}

// Embedded represents a compiled-in image source.
type Embedded struct {
	Image []byte
}

// Select implements [Source.Select].
func (e *Embedded) Select() error {
	return nil
}

// Length implements [Source.Length].
func (e *Embedded) Length() int {
	return len(e.Image)
}

// Load implements [Source.Load], the image is copied in full.
func (e *Embedded) Load(buf []byte) error {
	if n := copy(buf, e.Image); n != len(e.Image) {
		return fmt.Errorf("short copy (%d < %d)", n, len(e.Image))
	}

	return nil
}

func (e *Embedded) String() string {
	return fmt.Sprintf("embedded image (%d bytes)", len(e.Image))
}
