// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"testing"
)

func TestCallServiceArguments(t *testing.T) {
	// rejected before the service pointer is dereferenced
	status := callService(0, make([]uint64, 17))

	if status != Error(EFI_INVALID_PARAMETER) {
		t.Fatalf("unexpected status %#x", status)
	}
}
