// SPDX-License-Identifier: GPL-3.0-or-later

package cares

// Family is a socket address family.
type Family int

const (
	// FamilyUnspec matches either [FamilyINET] or [FamilyINET6].
	FamilyUnspec Family = iota

	// FamilyINET is IPv4.
	FamilyINET

	// FamilyINET6 is IPv6.
	FamilyINET6
)

// SockType is a socket type.
type SockType int

const (
	// SockTypeUnspec means "any socket type", resolved by the service
	// step's defaulting rules.
	SockTypeUnspec SockType = iota

	// SockTypeStream is a stream socket (SOCK_STREAM).
	SockTypeStream

	// SockTypeDgram is a datagram socket (SOCK_DGRAM).
	SockTypeDgram

	// SockTypeRaw is a raw socket (SOCK_RAW).
	SockTypeRaw

	// SockTypeSeqPacket is a sequenced-packet socket (SOCK_SEQPACKET).
	SockTypeSeqPacket
)

// Protocol is an IP protocol number.
type Protocol int

const (
	// ProtocolUnspec means "any protocol", resolved by the service
	// step's defaulting rules.
	ProtocolUnspec Protocol = 0

	// ProtocolTCP is IPPROTO_TCP.
	ProtocolTCP Protocol = 6

	// ProtocolUDP is IPPROTO_UDP.
	ProtocolUDP Protocol = 17

	// ProtocolRAW is IPPROTO_RAW.
	ProtocolRAW Protocol = 255

	// ProtocolSCTP is IPPROTO_SCTP.
	ProtocolSCTP Protocol = 132
)

// Flags modify how [GetAddrInfo] resolves a request.
type Flags uint32

const (
	// FlagPassive requests a wildcard address suitable for binding a
	// listening socket, used when node is absent.
	FlagPassive Flags = 1 << iota

	// FlagCanonName requests that the canonical name be surfaced on
	// the head of the result chain. Requires node to be non-nil.
	FlagCanonName

	// FlagNumericHost forbids DNS lookups: node must parse as a
	// numeric address literal.
	FlagNumericHost

	// FlagNumericServ forbids symbolic service lookups: service must
	// parse as a base-10 port number.
	FlagNumericServ

	// FlagAll, combined with [FlagV4Mapped], requests both AF_INET and
	// AF_INET6 results even when the request specifically asked for
	// AF_INET6. Invalid without [FlagV4Mapped].
	FlagAll

	// FlagV4Mapped, with [FamilyINET6], also allows AF_INET results: an
	// IPv4 literal yields an AF_INET node, and the AF_INET DNS lookup
	// runs when the AF_INET6 one fails (or always, with [FlagAll]). IPv4
	// addresses are returned as AF_INET nodes; no ::ffff:a.b.c.d address
	// is synthesized (see the "V4-mapped" open question in DESIGN.md).
	FlagV4Mapped

	// FlagAddrConfig is accepted but honoured only as a no-op.
	FlagAddrConfig

	// FlagDefault is the flag set used when no hints are supplied.
	FlagDefault = FlagV4Mapped
)

// Hints narrows which resolutions [GetAddrInfo] produces.
type Hints struct {
	// Flags modifies resolution behavior.
	Flags Flags

	// Family restricts which address families are resolved. Must be
	// one of [FamilyUnspec], [FamilyINET], or [FamilyINET6].
	Family Family

	// SockType is the desired socket type, or [SockTypeUnspec] for any.
	SockType SockType

	// Protocol is the desired protocol number, or [ProtocolUnspec] for
	// any.
	Protocol Protocol
}

// DefaultHints is used by [GetAddrInfo] when hints is nil.
var DefaultHints = Hints{
	Flags:    FlagDefault,
	Family:   FamilyUnspec,
	SockType: SockTypeUnspec,
	Protocol: ProtocolUnspec,
}
