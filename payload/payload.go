// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package payload implements decoding and integrity verification of boot
// images bundled within, or fetched by, the boot stub.
package payload

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// Supported payload codecs
const (
	None = "none"
	XZ   = "xz"
	LZ4  = "lz4"
	Zstd = "zstd"
)

// Codecs lists the supported payload codecs.
var Codecs = []string{None, XZ, LZ4, Zstd}

// Decode returns the argument blob decoded with the named codec, an empty
// codec name is equivalent to [None].
func Decode(codec string, blob []byte) (image []byte, err error) {
	var r io.Reader

	switch codec {
	case "", None:
		return blob, nil
	case XZ:
		if r, err = xz.NewReader(bytes.NewReader(blob)); err != nil {
			return nil, fmt.Errorf("invalid xz stream, %v", err)
		}
	case LZ4:
		r = lz4.NewReader(bytes.NewReader(blob))
	case Zstd:
		return decodeZstd(blob)
	default:
		return nil, fmt.Errorf("unsupported codec %q", codec)
	}

	if image, err = io.ReadAll(r); err != nil {
		return nil, fmt.Errorf("could not decode %s payload, %v", codec, err)
	}

	if len(image) == 0 {
		return nil, errors.New("empty payload")
	}

	return
}

func decodeZstd(blob []byte) (image []byte, err error) {
	// the stub is single threaded, avoid decoder goroutines
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))

	if err != nil {
		return
	}
	defer dec.Close()

	if image, err = dec.DecodeAll(blob, nil); err != nil {
		return nil, fmt.Errorf("could not decode zstd payload, %v", err)
	}

	if len(image) == 0 {
		return nil, errors.New("empty payload")
	}

	return
}
