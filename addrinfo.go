// SPDX-License-Identifier: GPL-3.0-or-later

package cares

import "net/netip"

// AddrInfo is a single resolved endpoint, the Go analogue of struct
// ares_addrinfo. A non-nil chain returned by [GetAddrInfo] is owned by
// the caller and must eventually be passed to [FreeAddrInfo].
type AddrInfo struct {
	// Family is [FamilyINET] or [FamilyINET6]. It always matches
	// Addr.Addr().Is4() / Is6().
	Family Family

	// Addr is the resolved address and port. Port is zero until the
	// service resolution step runs.
	Addr netip.AddrPort

	// SockType is the socket type inherited from the request hints,
	// possibly defaulted by the service resolution step.
	SockType SockType

	// Protocol is the protocol number inherited from the request
	// hints, possibly defaulted by the service resolution step.
	Protocol Protocol

	// CanonName is the canonical name, or "" if absent.
	CanonName string

	// Next is the next node in the chain, or nil.
	Next *AddrInfo
}

// newAddrInfoInet creates a node for an IPv4 address with port zero,
// inheriting SockType/Protocol from hints. This is the Go analogue of
// create_addrinfo_inet.
func newAddrInfoInet(hints Hints, addr [4]byte) *AddrInfo {
	return &AddrInfo{
		Family:   FamilyINET,
		Addr:     netip.AddrPortFrom(netip.AddrFrom4(addr), 0),
		SockType: hints.SockType,
		Protocol: hints.Protocol,
	}
}

// newAddrInfoInet6 creates a node for an IPv6 address with port zero,
// inheriting SockType/Protocol from hints. This is the Go analogue of
// create_addrinfo_inet6.
func newAddrInfoInet6(hints Hints, addr [16]byte) *AddrInfo {
	return &AddrInfo{
		Family:   FamilyINET6,
		Addr:     netip.AddrPortFrom(netip.AddrFrom16(addr), 0),
		SockType: hints.SockType,
		Protocol: hints.Protocol,
	}
}

// withPort returns a copy of addr with its port set.
func withPort(addr netip.AddrPort, port uint16) netip.AddrPort {
	return netip.AddrPortFrom(addr.Addr(), port)
}
