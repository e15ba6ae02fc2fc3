// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package payload

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// DigestSize represents the BLAKE3 digest size in bytes.
const DigestSize = 32

// Digest returns the BLAKE3-256 digest of the argument image.
func Digest(image []byte) []byte {
	sum := blake3.Sum256(image)
	return sum[:]
}

// ParseDigest parses a hex encoded BLAKE3-256 digest, an empty string
// returns a nil digest.
func ParseDigest(s string) (digest []byte, err error) {
	if len(s) == 0 {
		return
	}

	if digest, err = hex.DecodeString(s); err != nil {
		return nil, fmt.Errorf("invalid digest, %v", err)
	}

	if len(digest) != DigestSize {
		return nil, fmt.Errorf("invalid digest size (%d)", len(digest))
	}

	return
}

// Verify compares the image digest against the expected one, a nil expected
// digest always verifies.
func Verify(image []byte, expected []byte) error {
	if expected == nil {
		return nil
	}

	if sum := Digest(image); !bytes.Equal(sum, expected) {
		return fmt.Errorf("digest mismatch (%x != %x)", sum, expected)
	}

	return nil
}
