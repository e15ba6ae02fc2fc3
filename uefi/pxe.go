// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"errors"
	"fmt"
	"net/netip"
)

// EFI PXE Base Code Protocol
var EFI_PXE_BASE_CODE_PROTOCOL_GUID = MustParseGUID("03c4e603-ac28-11d3-9a2d-0090273fc14d")

const EFI_PXE_BASE_CODE_PROTOCOL_REVISION = 0x00010000

// EFI PXE Base Code Protocol offsets
const (
	pxeStart = 0x08
	pxeStop  = 0x10
	pxeDhcp  = 0x18
	pxeMtftp = 0x28
)

// EFI_PXE_BASE_CODE_TFTP_OPCODE
const (
	EFI_PXE_BASE_CODE_TFTP_FIRST = iota
	EFI_PXE_BASE_CODE_TFTP_GET_FILE_SIZE
	EFI_PXE_BASE_CODE_TFTP_READ_FILE
	EFI_PXE_BASE_CODE_TFTP_WRITE_FILE
	EFI_PXE_BASE_CODE_TFTP_READ_DIRECTORY
	EFI_PXE_BASE_CODE_MTFTP_GET_FILE_SIZE
	EFI_PXE_BASE_CODE_MTFTP_READ_FILE
	EFI_PXE_BASE_CODE_MTFTP_READ_DIRECTORY
	EFI_PXE_BASE_CODE_MTFTP_LAST
)

// IPAddress represents an EFI IP Address (EFI_IP_ADDRESS), IPv4 addresses
// occupy the first four bytes.
type IPAddress [16]byte

// IPv4 converts an IPv4 address to its EFI representation.
func IPv4(addr netip.Addr) (ip IPAddress, err error) {
	if !addr.Is4() {
		return ip, fmt.Errorf("%s is not an IPv4 address", addr)
	}

	a := addr.As4()
	copy(ip[:], a[:])

	return
}

// String returns the IPv4 dotted decimal representation of the address.
func (ip IPAddress) String() string {
	return netip.AddrFrom4([4]byte(ip[0:4])).String()
}

// pxeBaseCode represents an EFI_PXE_BASE_CODE_PROTOCOL instance.
type pxeBaseCode struct {
	Revision      uint64
	Start         uint64
	Stop          uint64
	Dhcp          uint64
	Discover      uint64
	Mtftp         uint64
	UdpWrite      uint64
	UdpRead       uint64
	SetIpFilter   uint64
	Arp           uint64
	SetParameters uint64
	SetStationIp  uint64
	SetPackets    uint64
	Mode          uint64
}

// PXEMode represents the leading fields of an EFI_PXE_BASE_CODE_MODE
// instance.
type PXEMode struct {
	Started             bool
	IPv6Available       bool
	IPv6Supported       bool
	UsingIPv6           bool
	BISSupported        bool
	BISDetected         bool
	AutoARP             bool
	SendGUID            bool
	DHCPDiscoverValid   bool
	DHCPAckReceived     bool
	ProxyOfferReceived  bool
	PXEDiscoverValid    bool
	PXEReplyReceived    bool
	PXEBISReplyReceived bool
	ICMPErrorReceived   bool
	TFTPErrorReceived   bool
	MakeCallbacks       bool
	TTL                 uint8
	ToS                 uint8
	_                   uint8
	StationIP           IPAddress
	SubnetMask          IPAddress
}

// PXE represents an EFI PXE Base Code Protocol instance opened exclusively on
// a device handle, [PXE.Close] must be called to release it.
type PXE struct {
	// Handle is the device handle the protocol is opened on.
	Handle uint64

	base  uint64
	mode  uint64
	boot  *BootServices
	state *pxeBaseCode
}

// OpenPXE opens exclusively the EFI PXE Base Code Protocol on the argument
// device handle.
func (s *BootServices) OpenPXE(handle uint64) (pxe *PXE, err error) {
	pxe = &PXE{
		Handle: handle,
		boot:   s,
		state:  &pxeBaseCode{},
	}

	if pxe.base, err = s.OpenProtocol(handle, EFI_PXE_BASE_CODE_PROTOCOL_GUID, EFI_OPEN_PROTOCOL_EXCLUSIVE); err != nil {
		return nil, err
	}

	if err = decode(pxe.state, pxe.base); err != nil {
		pxe.Close()
		return nil, err
	}

	if pxe.state.Revision != EFI_PXE_BASE_CODE_PROTOCOL_REVISION {
		pxe.Close()
		return nil, fmt.Errorf("invalid protocol revision (%#x)", pxe.state.Revision)
	}

	pxe.mode = pxe.state.Mode

	return
}

// Close calls EFI_BOOT_SERVICES.CloseProtocol() to release the exclusive
// protocol instance.
func (p *PXE) Close() error {
	return p.boot.CloseProtocol(p.Handle, EFI_PXE_BASE_CODE_PROTOCOL_GUID)
}

// Start calls EFI_PXE_BASE_CODE_PROTOCOL.Start(), an already started
// instance is not reported as an error.
func (p *PXE) Start(ipv6 bool) (err error) {
	var useIPv6 uint64

	if ipv6 {
		useIPv6 = 1
	}

	status := callService(p.base+pxeStart,
		[]uint64{
			p.base,
			useIPv6,
		},
	)

	if isError(status, EFI_ALREADY_STARTED) {
		return nil
	}

	return parseStatus(status)
}

// Stop calls EFI_PXE_BASE_CODE_PROTOCOL.Stop().
func (p *PXE) Stop() (err error) {
	status := callService(p.base+pxeStop,
		[]uint64{
			p.base,
		},
	)

	return parseStatus(status)
}

// DHCP calls EFI_PXE_BASE_CODE_PROTOCOL.Dhcp() to perform the DHCP
// Discover, Offer, Request and Acknowledge sequence.
func (p *PXE) DHCP(sortOffers bool) (err error) {
	var sort uint64

	if sortOffers {
		sort = 1
	}

	status := callService(p.base+pxeDhcp,
		[]uint64{
			p.base,
			sort,
		},
	)

	return parseStatus(status)
}

// ReadFile calls EFI_PXE_BASE_CODE_PROTOCOL.Mtftp() with the TFTP read file
// operation, the file is transferred from the argument server directly into
// buf and the number of bytes read is returned.
//
// A file larger than buf results in an EFI_BUFFER_TOO_SMALL error.
func (p *PXE) ReadFile(server IPAddress, path string, buf []byte) (n int, err error) {
	if len(buf) == 0 {
		return 0, errors.New("invalid buffer")
	}

	if len(path) == 0 {
		return 0, errors.New("invalid path")
	}

	size := uint64(len(buf))
	filename := append([]byte(path), 0x00)

	status := callService(p.base+pxeMtftp,
		[]uint64{
			p.base,
			EFI_PXE_BASE_CODE_TFTP_READ_FILE,
			ptrval(&buf[0]),
			0, // Overwrite
			ptrval(&size),
			0, // BlockSize
			ptrval(&server),
			ptrval(&filename[0]),
			0, // Info
			0, // DontUseBuffer
		},
	)

	if err = parseStatus(status); err != nil {
		return
	}

	return int(size), nil
}

// Mode returns the EFI PXE Base Code Mode structure.
func (p *PXE) Mode() (mode *PXEMode, err error) {
	mode = &PXEMode{}

	if err = decode(mode, p.mode); err != nil {
		return nil, err
	}

	return
}
