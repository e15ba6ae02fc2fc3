// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && amd64

package main

import (
	"errors"
	"fmt"
	"log"
	"runtime"

	"github.com/usbarmory/go-boot-stub/loader"
	"github.com/usbarmory/go-boot-stub/uefi"
	"github.com/usbarmory/go-boot-stub/uefi/x64"
)

// set at build time with -ldflags "-X main.Name=value"
var (
	Build    string
	Revision string

	LoadAddress   string
	Source        string
	Compression   string
	ImageDigest   string
	ServerAddress string
	RemotePath    string
	ImageSize     string
	SkipHandles   string
)

func init() {
	log.SetFlags(0)
}

// status returns the EFI status reported to firmware for a failed boot
// attempt.
func status(err error) uint64 {
	switch {
	case errors.Is(err, loader.ErrConfiguration):
		return uefi.Error(uefi.EFI_INVALID_PARAMETER)
	case errors.Is(err, loader.ErrAllocation):
		return uefi.Error(uefi.EFI_OUT_OF_RESOURCES)
	case errors.Is(err, loader.ErrProtocolDiscovery):
		return uefi.Error(uefi.EFI_NOT_FOUND)
	default:
		return uefi.Error(uefi.EFI_LOAD_ERROR)
	}
}

func fatal(fw *x64.Firmware, err error, finalized bool) {
	log.Printf("fatal error, %v", err)

	if !finalized {
		code := status(err)

		if err := fw.Exit(code); err != nil {
			log.Printf("could not exit to firmware, %v", err)
		}

		if err := fw.Reset(code); err != nil {
			log.Printf("could not reset, %v", err)
		}
	}

	fw.Halt()
}

func main() {
	fw := x64.NewFirmware()

	log.Printf("go-boot-stub • %s/%s (%s) • %s %s",
		runtime.GOOS, runtime.GOARCH, runtime.Version(),
		Revision, Build)

	conf, err := loader.Parse(loader.Variables{
		LoadAddress:   LoadAddress,
		Source:        Source,
		Image:         image,
		Compression:   Compression,
		ImageDigest:   ImageDigest,
		ServerAddress: ServerAddress,
		RemotePath:    RemotePath,
		ImageSize:     ImageSize,
		SkipHandles:   SkipHandles,
	})

	if err != nil {
		fatal(fw, err, false)
	}

	if conf.Source == loader.SourceNetwork {
		if err = fw.DisableWatchdog(); err != nil {
			log.Printf("could not disable watchdog, %v", err)
		}
	}

	l := loader.New(conf, fw, fw, fw, fw)

	if err = l.Boot(); err == nil {
		err = fmt.Errorf("%w, boot returned", loader.ErrUnreachableReturn)
	}

	log.Printf("boot attempt ended in %s state", l.State())

	fatal(fw, err, l.Finalized())
}
