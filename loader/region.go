// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package loader

import (
	"fmt"
	"log"
)

// PageSize represents the firmware page allocation granularity.
const PageSize = 4096

// Pages returns the number of pages required to hold length bytes.
func Pages(length int) uint64 {
	return (uint64(length) + PageSize - 1) / PageSize
}

// Region represents a physical memory range reserved for the loaded image.
type Region struct {
	// Address is the region physical start address.
	Address uint64
	// Pages is the number of reserved pages.
	Pages uint64

	buf []byte
}

// Bytes returns the usable region bytes.
func (r *Region) Bytes() []byte {
	return r.buf
}

// Size returns the number of usable region bytes.
func (r *Region) Size() int {
	return len(r.buf)
}

// End returns the physical end address of the reserved pages.
func (r *Region) End() uint64 {
	return r.Address + r.Pages*PageSize
}

// Reserve requests the pages required to hold length bytes exactly at the
// argument physical address. Any failure wraps [ErrAllocation] as the
// image cannot be relocated.
func Reserve(mem Allocator, addr uint64, length int) (r *Region, err error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w, invalid length %d", ErrAllocation, length)
	}

	r = &Region{
		Address: addr,
		Pages:   Pages(length),
	}

	buf, err := mem.AllocateAt(r.Address, r.Pages)

	if err != nil {
		return nil, fmt.Errorf("%w at %#x, %v", ErrAllocation, addr, err)
	}

	if len(buf) < length {
		return nil, fmt.Errorf("%w at %#x, short region (%d < %d)", ErrAllocation, addr, len(buf), length)
	}

	r.buf = buf[:length]

	log.Printf("reserved memory range %#08x - %#08x (%d bytes, %d pages)", r.Address, r.End(), r.Size(), r.Pages)

	return
}
