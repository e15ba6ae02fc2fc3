// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"errors"
	"fmt"
)

// EFI_STATUS error bit
const errorBit = 1 << 63

// EFI_STATUS codes (Appendix D - Status Codes)
const (
	EFI_SUCCESS = iota
	EFI_LOAD_ERROR
	EFI_INVALID_PARAMETER
	EFI_UNSUPPORTED
	EFI_BAD_BUFFER_SIZE
	EFI_BUFFER_TOO_SMALL
	EFI_NOT_READY
	EFI_DEVICE_ERROR
	EFI_WRITE_PROTECTED
	EFI_OUT_OF_RESOURCES
	EFI_VOLUME_CORRUPTED
	EFI_VOLUME_FULL
	EFI_NO_MEDIA
	EFI_MEDIA_CHANGED
	EFI_NOT_FOUND
	EFI_ACCESS_DENIED
	EFI_NO_RESPONSE
	EFI_NO_MAPPING
	EFI_TIMEOUT
	EFI_NOT_STARTED
	EFI_ALREADY_STARTED
	EFI_ABORTED
	EFI_ICMP_ERROR
	EFI_TFTP_ERROR
	EFI_PROTOCOL_ERROR
)

var statusNames = map[uint64]string{
	EFI_LOAD_ERROR:        "EFI_LOAD_ERROR",
	EFI_INVALID_PARAMETER: "EFI_INVALID_PARAMETER",
	EFI_UNSUPPORTED:       "EFI_UNSUPPORTED",
	EFI_BAD_BUFFER_SIZE:   "EFI_BAD_BUFFER_SIZE",
	EFI_BUFFER_TOO_SMALL:  "EFI_BUFFER_TOO_SMALL",
	EFI_NOT_READY:         "EFI_NOT_READY",
	EFI_DEVICE_ERROR:      "EFI_DEVICE_ERROR",
	EFI_WRITE_PROTECTED:   "EFI_WRITE_PROTECTED",
	EFI_OUT_OF_RESOURCES:  "EFI_OUT_OF_RESOURCES",
	EFI_VOLUME_CORRUPTED:  "EFI_VOLUME_CORRUPTED",
	EFI_VOLUME_FULL:       "EFI_VOLUME_FULL",
	EFI_NO_MEDIA:          "EFI_NO_MEDIA",
	EFI_MEDIA_CHANGED:     "EFI_MEDIA_CHANGED",
	EFI_NOT_FOUND:         "EFI_NOT_FOUND",
	EFI_ACCESS_DENIED:     "EFI_ACCESS_DENIED",
	EFI_NO_RESPONSE:       "EFI_NO_RESPONSE",
	EFI_NO_MAPPING:        "EFI_NO_MAPPING",
	EFI_TIMEOUT:           "EFI_TIMEOUT",
	EFI_NOT_STARTED:       "EFI_NOT_STARTED",
	EFI_ALREADY_STARTED:   "EFI_ALREADY_STARTED",
	EFI_ABORTED:           "EFI_ABORTED",
	EFI_ICMP_ERROR:        "EFI_ICMP_ERROR",
	EFI_TFTP_ERROR:        "EFI_TFTP_ERROR",
	EFI_PROTOCOL_ERROR:    "EFI_PROTOCOL_ERROR",
}

// ErrEfiNotFound is returned when a service reports EFI_NOT_FOUND.
var ErrEfiNotFound = errors.New("EFI_NOT_FOUND")

// Status represents a failed EFI_STATUS value.
type Status uint64

// Code returns the status code with the error bit cleared.
func (s Status) Code() uint64 {
	return uint64(s) &^ errorBit
}

// Error implements the error interface.
func (s Status) Error() string {
	if name, ok := statusNames[s.Code()]; ok {
		return fmt.Sprintf("EFI_STATUS error %#x (%s)", uint64(s), name)
	}

	return fmt.Sprintf("EFI_STATUS error %#x (%d)", uint64(s), s.Code())
}

// Is allows errors.Is matching against ErrEfiNotFound.
func (s Status) Is(target error) bool {
	return target == ErrEfiNotFound && s.Code() == EFI_NOT_FOUND
}

// Error returns the EFI_STATUS value, with the error bit set, for the
// argument status code.
func Error(code uint64) uint64 {
	return code | errorBit
}

// isError returns whether status is the error status for the argument code,
// warnings sharing the same code do not match.
func isError(status uint64, code uint64) bool {
	return status == Error(code)
}

func parseStatus(status uint64) (err error) {
	switch {
	case status == EFI_SUCCESS:
		return
	default:
		return Status(status)
	}
}
