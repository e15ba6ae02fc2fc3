// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package loader

import (
	"errors"
	"testing"
)

func TestPages(t *testing.T) {
	for length := 1; length <= PageSize; length++ {
		if n := Pages(length); n != 1 {
			t.Fatalf("Pages(%d) = %d, expected 1", length, n)
		}
	}

	for _, length := range []int{PageSize + 1, 3 * PageSize, 3*PageSize + 7, 1 << 24} {
		expected := uint64((length + PageSize - 1) / PageSize)

		if n := Pages(length); n != expected {
			t.Errorf("Pages(%d) = %d, expected %d", length, n, expected)
		}

		if Pages(length)*PageSize < uint64(length) {
			t.Errorf("Pages(%d) does not cover length", length)
		}
	}
}

func TestReserve(t *testing.T) {
	fw := newTestFirmware()

	r, err := Reserve(fw, 0x100000, PageSize+1)

	if err != nil {
		t.Fatal(err)
	}

	if r.Address != 0x100000 || r.Pages != 2 || r.End() != 0x102000 {
		t.Fatalf("unexpected region %#x-%#x (%d pages)", r.Address, r.End(), r.Pages)
	}

	if r.Size() != PageSize+1 || len(r.Bytes()) != PageSize+1 {
		t.Fatalf("unexpected region size %d", r.Size())
	}

	if fw.events[0] != "alloc 0x100000 2" {
		t.Fatalf("unexpected allocation %q", fw.events[0])
	}
}

func TestReserveFailure(t *testing.T) {
	fw := newTestFirmware()
	fw.allocErr = errFirmware

	if _, err := Reserve(fw, 0x100000, 10); !errors.Is(err, ErrAllocation) {
		t.Fatalf("expected ErrAllocation, got %v", err)
	}

	if len(fw.events) != 1 {
		t.Fatalf("unexpected retries %v", fw.events)
	}
}

func TestReserveInvalidLength(t *testing.T) {
	fw := newTestFirmware()

	if _, err := Reserve(fw, 0x100000, 0); !errors.Is(err, ErrAllocation) {
		t.Fatalf("expected ErrAllocation, got %v", err)
	}

	if len(fw.events) != 0 {
		t.Fatalf("unexpected firmware calls %v", fw.events)
	}
}
