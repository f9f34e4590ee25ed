// SPDX-License-Identifier: GPL-3.0-or-later

package cares

import "net/netip"

var (
	// inet4Any is INADDR_ANY.
	inet4Any = [4]byte{0, 0, 0, 0}

	// inet4Loopback is INADDR_LOOPBACK.
	inet4Loopback = [4]byte{127, 0, 0, 1}

	// inet6Any is in6addr_any.
	inet6Any = [16]byte{}

	// inet6Loopback is in6addr_loopback.
	inet6Loopback = [16]byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}
)

// tryPtonInet attempts to resolve the node string as a numeric AF_INET
// address without using DNS. This is the Go analogue of try_pton_inet.
func tryPtonInet(r *request) {
	var addr [4]byte

	switch {
	case r.node == nil:
		if r.hints.Flags&FlagPassive != 0 {
			addr = inet4Any
		} else {
			addr = inet4Loopback
		}

	default:
		parsed, err := netip.ParseAddr(*r.node)
		if err != nil || !parsed.Is4() {
			// Not a numeric host, so continue.
			r.nextState()
			return
		}
		addr = parsed.As4()
	}

	node := newAddrInfoInet(r.hints, addr)
	prependAddrInfo(&r.result, node)

	if r.hints.Flags&FlagCanonName != 0 {
		// glibc returns the literal address in this case, so do we.
		node.CanonName = *r.node
	}

	r.state &^= stateHostINET | stateHostINET6
	r.nextState()
}

// tryPtonInet6 attempts to resolve the node string as a numeric AF_INET6
// address without using DNS. This is the Go analogue of try_pton_inet6.
func tryPtonInet6(r *request) {
	var addr [16]byte

	switch {
	case r.node == nil:
		if r.hints.Flags&FlagPassive != 0 {
			addr = inet6Any
		} else {
			addr = inet6Loopback
		}

	default:
		parsed, err := netip.ParseAddr(*r.node)
		if err != nil || !parsed.Is6() {
			// Not a numeric host, so continue.
			r.nextState()
			return
		}
		addr = parsed.As16()
	}

	node := newAddrInfoInet6(r.hints, addr)
	prependAddrInfo(&r.result, node)

	if r.hints.Flags&FlagCanonName != 0 {
		node.CanonName = *r.node
	}

	r.state &^= stateHostINET | stateHostINET6
	r.nextState()
}
