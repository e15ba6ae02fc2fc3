// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"regexp"
)

var guidPattern = regexp.MustCompile(`^([[:xdigit:]]{8})-([[:xdigit:]]{4})-([[:xdigit:]]{4})-([[:xdigit:]]{4})-([[:xdigit:]]{12})$`)

// GUID represents an EFI GUID (Globally Unique Identifier) as a 16-byte array
// with the native EFI byte order.
//
// The registry string format (xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx) stores
// the first three fields as little-endian values in memory.
type GUID [16]byte

// ParseGUID parses a GUID in registry string format into a native EFI GUID.
func ParseGUID(s string) (g GUID, err error) {
	var off int
	var buf []byte

	m := guidPattern.FindStringSubmatch(s)

	if len(m) != 6 {
		return GUID{}, fmt.Errorf("invalid GUID format: %q", s)
	}

	for i, field := range m[1:] {
		if buf, err = hex.DecodeString(field); err != nil {
			return GUID{}, err
		}

		switch i {
		case 0:
			binary.LittleEndian.PutUint32(g[off:], binary.BigEndian.Uint32(buf))
		case 1, 2:
			binary.LittleEndian.PutUint16(g[off:], binary.BigEndian.Uint16(buf))
		default:
			copy(g[off:], buf)
		}

		off += len(buf)
	}

	return
}

// MustParseGUID is like ParseGUID but panics on error, it is intended for
// package level GUID declarations.
func MustParseGUID(s string) (g GUID) {
	var err error

	if g, err = ParseGUID(s); err != nil {
		panic(err)
	}

	return
}

// String returns the registry format string representation of the GUID.
func (g GUID) String() string {
	return fmt.Sprintf("%08x-%04x-%04x-%x-%x",
		binary.LittleEndian.Uint32(g[0:4]),
		binary.LittleEndian.Uint16(g[4:6]),
		binary.LittleEndian.Uint16(g[6:8]),
		g[8:10],
		g[10:])
}

func (g *GUID) ptrval() uint64 {
	return ptrval(&g[0])
}
