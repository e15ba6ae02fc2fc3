// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package loader

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/usbarmory/go-boot-stub/payload"
)

// Image sources
const (
	SourceEmbedded = "embedded"
	SourceNetwork  = "network"
)

// DefaultSkipHandles is the number of leading network boot handles skipped
// when no explicit value is configured.
const DefaultSkipHandles = 1

// Variables represents the build-time configuration strings.
type Variables struct {
	// LoadAddress is the hex image load address, with 0x prefix.
	LoadAddress string
	// Source selects the image source (embedded, network).
	Source string

	// Image is the embedded payload.
	Image []byte
	// Compression is the embedded payload codec.
	Compression string
	// ImageDigest is the optional BLAKE3-256 hex digest of the image.
	ImageDigest string

	// ServerAddress is the TFTP server IPv4 address.
	ServerAddress string
	// RemotePath is the TFTP image path.
	RemotePath string
	// ImageSize is the network image buffer size.
	ImageSize string
	// SkipHandles is the number of leading network boot handles ignored.
	SkipHandles string
}

// Endpoint represents the network boot server and image path.
type Endpoint struct {
	Server netip.Addr
	Path   string
}

// String returns the endpoint in tftp URL form.
func (e Endpoint) String() string {
	return fmt.Sprintf("tftp://%s/%s", e.Server, strings.TrimPrefix(e.Path, "/"))
}

// Config represents a resolved boot stub configuration.
type Config struct {
	// LoadAddress is the physical address where the image is placed and
	// entered.
	LoadAddress uint64

	// Source is the image source name.
	Source string

	// Image is the decoded embedded image.
	Image []byte

	// Digest is the optional expected image BLAKE3-256 digest.
	Digest []byte

	// Endpoint is the network boot server and path.
	Endpoint Endpoint

	// ImageSize is the network image buffer size.
	ImageSize int

	// Skip is the number of leading network boot handles ignored.
	Skip int
}

// ParseAddress parses a hex string, with mandatory 0x prefix, into a
// non-zero physical address.
func ParseAddress(s string) (addr uint64, err error) {
	hex, ok := strings.CutPrefix(s, "0x")

	if !ok {
		return 0, fmt.Errorf("%w, address %q has no 0x prefix", ErrConfiguration, s)
	}

	if addr, err = strconv.ParseUint(hex, 16, 64); err != nil {
		return 0, fmt.Errorf("%w, invalid address %q", ErrConfiguration, s)
	}

	if addr == 0 {
		return 0, fmt.Errorf("%w, null address", ErrConfiguration)
	}

	return
}

func parseSize(s string) (size int, err error) {
	n, err := strconv.ParseUint(s, 0, 31)

	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w, invalid image size %q", ErrConfiguration, s)
	}

	return int(n), nil
}

func (c *Config) parseEmbedded(v *Variables) (err error) {
	if len(v.Image) == 0 {
		return fmt.Errorf("%w, no embedded image", ErrConfiguration)
	}

	if c.Image, err = payload.Decode(v.Compression, v.Image); err != nil {
		return fmt.Errorf("%w, %v", ErrConfiguration, err)
	}

	if err = payload.Verify(c.Image, c.Digest); err != nil {
		return fmt.Errorf("%w, embedded image %v", ErrConfiguration, err)
	}

	return
}

func (c *Config) parseNetwork(v *Variables) (err error) {
	if c.Endpoint.Server, err = netip.ParseAddr(v.ServerAddress); err != nil || !c.Endpoint.Server.Is4() {
		return fmt.Errorf("%w, invalid server address %q", ErrConfiguration, v.ServerAddress)
	}

	if c.Endpoint.Path = v.RemotePath; len(c.Endpoint.Path) == 0 {
		return fmt.Errorf("%w, missing remote path", ErrConfiguration)
	}

	if c.ImageSize, err = parseSize(v.ImageSize); err != nil {
		return
	}

	c.Skip = DefaultSkipHandles

	if len(v.SkipHandles) > 0 {
		if c.Skip, err = strconv.Atoi(v.SkipHandles); err != nil || c.Skip < 0 {
			return fmt.Errorf("%w, invalid handle skip count %q", ErrConfiguration, v.SkipHandles)
		}
	}

	return
}

// Parse resolves the build-time configuration strings, any error wraps
// [ErrConfiguration].
func Parse(v Variables) (c *Config, err error) {
	c = &Config{
		Source: v.Source,
	}

	if c.LoadAddress, err = ParseAddress(v.LoadAddress); err != nil {
		return nil, err
	}

	if c.LoadAddress%PageSize != 0 {
		return nil, fmt.Errorf("%w, address %#x is not page aligned", ErrConfiguration, c.LoadAddress)
	}

	if c.Digest, err = payload.ParseDigest(v.ImageDigest); err != nil {
		return nil, fmt.Errorf("%w, %v", ErrConfiguration, err)
	}

	if len(c.Source) == 0 {
		c.Source = SourceEmbedded
	}

	switch c.Source {
	case SourceEmbedded:
		err = c.parseEmbedded(&v)
	case SourceNetwork:
		err = c.parseNetwork(&v)
	default:
		err = fmt.Errorf("%w, invalid source %q", ErrConfiguration, c.Source)
	}

	if err != nil {
		return nil, err
	}

	return
}

// NewSource returns the image source selected by the configuration, the
// argument firmware is only used by network sources.
func (c *Config) NewSource(fw NetworkFirmware) Source {
	switch c.Source {
	case SourceNetwork:
		return &Network{
			Firmware: fw,
			Endpoint: c.Endpoint,
			Size:     c.ImageSize,
			Skip:     c.Skip,
			Digest:   c.Digest,
		}
	default:
		return &Embedded{
			Image: c.Image,
		}
	}
}
