// SPDX-License-Identifier: GPL-3.0-or-later

package cares

// resolveHostInet issues the AF_INET DNS host lookup. This is the Go
// analogue of resolve_host_inet's AF_INET half plus the
// ares_gethostbyname call it performs.
func resolveHostInet(r *request) {
	resolveHost(r, FamilyINET)
}

// resolveHostInet6 issues the AF_INET6 DNS host lookup. This is the Go
// analogue of resolve_host_inet6.
func resolveHostInet6(r *request) {
	resolveHost(r, FamilyINET6)
}

// resolveHost issues the DNS host lookup for family and re-enters the
// state machine from the channel's callback goroutine once it completes.
// The state bit for family has already been cleared by
// [*request.nextState] before this runs; the other family's bit is left
// as it was.
func resolveHost(r *request, family Family) {
	node := *r.node
	r.channel.ResolveHost(r.ctx, node, family, func(status error, timeouts int, reply *HostReply) {
		r.mu.Lock()
		defer r.mu.Unlock()

		r.timeouts += timeouts

		if status != nil {
			if r.state&stateAnyHost != 0 {
				// The other family may still resolve; keep going.
				r.nextState()
				return
			}
			r.fail(status)
			return
		}

		for _, addr := range reply.Addrs {
			var ai *AddrInfo
			switch family {
			case FamilyINET:
				ai = newAddrInfoInet(r.hints, addr.As4())
			case FamilyINET6:
				ai = newAddrInfoInet6(r.hints, addr.As16())
			}
			if r.state&stateCanonical != 0 {
				ai.CanonName = reply.CanonName
			}
			prependAddrInfo(&r.result, ai)
		}

		if family == FamilyINET6 && r.hints.Family == FamilyINET6 && r.hints.Flags&FlagAll == 0 {
			// The caller restricted the lookup to INET6 and didn't ask
			// for every address via FlagAll, so there's no second family
			// to query. Under Unspec, stateHostINET stays set so the
			// other family still resolves.
			r.state &^= stateHostINET
		}

		r.nextState()
	})
}
