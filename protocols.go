// SPDX-License-Identifier: GPL-3.0-or-later

package cares

// protocolNames maps a protocol number to its canonical name, the table
// a real implementation would get from a getprotobynumber_r(3) call. We
// only need the protocols [applySockTypeProtocolDefaults] can derive.
var protocolNames = map[Protocol]string{
	ProtocolTCP:  "tcp",
	ProtocolUDP:  "udp",
	ProtocolRAW:  "raw",
	ProtocolSCTP: "sctp",
}

// lookupProtocolName is the Go analogue of ares_getprotobynumber_r: it
// resolves a protocol number to its canonical name. Unlike the real
// database lookup, this table never fails for a protocol this package
// itself assigned via [applySockTypeProtocolDefaults]; a miss here means
// a node carries a protocol number nothing in this package ever
// produces, which is reported as [ErrBadHints].
func lookupProtocolName(p Protocol) (string, bool) {
	name, ok := protocolNames[p]
	return name, ok
}

// applySockTypeProtocolDefaults defaults every node's SockType/Protocol
// in the chain when they are unset, the Go analogue of the socket-type
// and protocol defaulting the source runs at the top of both
// try_serv_strtol and resolve_serv.
func applySockTypeProtocolDefaults(chain *AddrInfo) error {
	for ai := chain; ai != nil; ai = ai.Next {
		if ai.SockType == SockTypeUnspec {
			switch ai.Family {
			case FamilyINET, FamilyINET6:
				ai.SockType = SockTypeStream
			default:
				return ErrBadFamily
			}
		}

		if ai.Protocol == ProtocolUnspec {
			switch ai.SockType {
			case SockTypeStream:
				ai.Protocol = ProtocolTCP
			case SockTypeDgram:
				ai.Protocol = ProtocolUDP
			case SockTypeRaw:
				ai.Protocol = ProtocolRAW
			case SockTypeSeqPacket:
				ai.Protocol = ProtocolSCTP
			default:
				return ErrBadFamily
			}
		}
	}
	return nil
}
