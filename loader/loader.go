// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package loader implements a boot stub which places a raw image at a fixed
// physical address, terminates firmware boot services and transfers control
// to the image.
//
// The image is either compiled-in or fetched over the firmware network boot
// protocol, firmware services are abstracted by the interfaces in this
// package.
package loader

import (
	"errors"
	"fmt"
	"log"
)

// State represents the boot attempt state.
type State int

// Boot attempt states
const (
	Init State = iota
	SourceSelected
	MemoryReserved
	ImageResident
	EnvironmentFinalized
	Transferred
	FatalFailure
)

var stateNames = map[State]string{
	Init:                 "init",
	SourceSelected:       "source selected",
	MemoryReserved:       "memory reserved",
	ImageResident:        "image resident",
	EnvironmentFinalized: "environment finalized",
	Transferred:          "transferred",
	FatalFailure:         "fatal failure",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}

	return fmt.Sprintf("state(%d)", int(s))
}

// Loader represents a single boot attempt.
type Loader struct {
	// LoadAddress is the image load address and entry point.
	LoadAddress uint64

	// Source is the image source.
	Source Source

	// Memory reserves the image region.
	Memory Allocator

	// Finalizer terminates firmware boot services.
	Finalizer Finalizer

	// Executor transfers control to the loaded image.
	Executor Executor

	state     State
	region    *Region
	finalized bool
}

// New returns a boot attempt for the argument configuration.
func New(conf *Config, fw NetworkFirmware, mem Allocator, fin Finalizer, exec Executor) *Loader {
	return &Loader{
		LoadAddress: conf.LoadAddress,
		Source:      conf.NewSource(fw),
		Memory:      mem,
		Finalizer:   fin,
		Executor:    exec,
	}
}

// State returns the boot attempt state.
func (l *Loader) State() State {
	return l.state
}

// Finalized returns whether firmware boot services have been terminated.
func (l *Loader) Finalized() bool {
	return l.finalized
}

// Region returns the reserved memory region, if any.
func (l *Loader) Region() *Region {
	return l.region
}

func (l *Loader) fail(err error) error {
	log.Printf("boot failed in %s state, %v", l.state, err)
	l.state = FatalFailure
	return err
}

// Boot loads the image and transfers control to it, on success it does not
// return. The returned error is always fatal.
func (l *Loader) Boot() (err error) {
	if l.state != Init {
		return fmt.Errorf("invalid boot attempt in %s state", l.state)
	}

	if l.Source == nil || l.Memory == nil || l.Finalizer == nil || l.Executor == nil {
		return l.fail(fmt.Errorf("%w, incomplete loader", ErrConfiguration))
	}

	if err = l.Source.Select(); err != nil {
		return l.fail(err)
	}

	l.state = SourceSelected

	if l.region, err = Reserve(l.Memory, l.LoadAddress, l.Source.Length()); err != nil {
		return l.fail(err)
	}

	l.state = MemoryReserved

	log.Printf("loading %s@%#08x", l.Source, l.region.Address)

	if err = l.Source.Load(l.region.Bytes()); err != nil {
		if !errors.Is(err, ErrExhaustedSources) {
			err = fmt.Errorf("%w, %v", ErrUnreachableReturn, err)
		}

		return l.fail(err)
	}

	l.state = ImageResident

	log.Printf("exiting EFI boot services")

	// only completion matters, boot services are gone either way
	if err = l.Finalizer.ExitBootServices(); err != nil {
		log.Printf("could not exit EFI boot services, %v", err)
	}

	l.state = EnvironmentFinalized
	l.finalized = true

	log.Printf("starting image@%#08x", l.LoadAddress)

	l.state = Transferred
	l.Executor.Exec(l.LoadAddress)

	l.state = FatalFailure

	return ErrUnreachableReturn
}
