// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && amd64 && embed

package main

import (
	_ "embed"
)

//go:embed image.bin
var image []byte
