// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"bytes"
	"encoding/binary"
	"errors"

	"github.com/usbarmory/tamago/dma"
)

// firmware structure alignment
const structAlign = 8

// marshalBinary returns the little-endian encoding of a fixed size
// firmware structure.
func marshalBinary(data any) ([]byte, error) {
	b := new(bytes.Buffer)

	if err := binary.Write(b, binary.LittleEndian, data); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

func unmarshalBinary(buf []byte, data any) (err error) {
	_, err = binary.Decode(buf, binary.LittleEndian, data)
	return
}

// decode copies the firmware structure at the argument physical address
// into data, whose type defines the layout and size read.
func decode(data any, addr uint64) error {
	if addr == 0 {
		return errors.New("invalid structure address")
	}

	layout, err := marshalBinary(data)

	if err != nil {
		return err
	}

	size := len(layout)
	r, err := dma.NewRegion(uint(addr), size+size%structAlign, true)

	if err != nil {
		return err
	}

	ptr, buf := r.Reserve(size, 0)
	defer r.Release(ptr)

	return unmarshalBinary(buf, data)
}
