// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"bytes"
	"testing"
)

func TestParseGUID(t *testing.T) {
	// EFI_PXE_BASE_CODE_PROTOCOL_GUID native layout
	expected := []byte{
		0x03, 0xe6, 0xc4, 0x03,
		0x28, 0xac,
		0xd3, 0x11,
		0x9a, 0x2d,
		0x00, 0x90, 0x27, 0x3f, 0xc1, 0x4d,
	}

	g, err := ParseGUID("03c4e603-ac28-11d3-9a2d-0090273fc14d")

	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(g[:], expected) {
		t.Fatalf("unexpected GUID layout %x", g[:])
	}

	if s := g.String(); s != "03c4e603-ac28-11d3-9a2d-0090273fc14d" {
		t.Fatalf("unexpected string representation %s", s)
	}
}

func TestParseGUIDInvalid(t *testing.T) {
	for _, s := range []string{
		"",
		"03c4e603ac2811d39a2d0090273fc14d",
		"03c4e603-ac28-11d3-9a2d-0090273fc14",
		"z3c4e603-ac28-11d3-9a2d-0090273fc14d",
	} {
		if _, err := ParseGUID(s); err == nil {
			t.Errorf("expected error for %q", s)
		}
	}
}

func TestProtocolGUIDs(t *testing.T) {
	if EFI_PXE_BASE_CODE_PROTOCOL_GUID.String() != "03c4e603-ac28-11d3-9a2d-0090273fc14d" {
		t.Fatal("invalid PXE Base Code protocol GUID")
	}
}
