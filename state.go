// SPDX-License-Identifier: GPL-3.0-or-later

package cares

import (
	"fmt"
	"os"
)

// gaiState is the outstanding-work bitmask. Each bit is cleared at most
// once per request, by the step that claims it.
type gaiState uint16

const (
	// stateServ means the service must still be looked up.
	stateServ gaiState = 1 << iota

	// stateNumericServ means the numeric-port attempt has not run yet.
	stateNumericServ

	// stateHostINET means an AF_INET DNS host lookup is pending.
	stateHostINET

	// stateNumericHostINET means the numeric AF_INET attempt has not
	// run yet.
	stateNumericHostINET

	// stateNumericHostINET6 means the numeric AF_INET6 attempt has not
	// run yet.
	stateNumericHostINET6

	// stateCanonical means the canonical-name lift has not run yet.
	stateCanonical

	// stateHostINET6 means an AF_INET6 DNS host lookup is pending.
	stateHostINET6
)

// stateAnyHost is the union of every bit representing an outstanding or
// not-yet-attempted host resolution, numeric or DNS.
const stateAnyHost = stateHostINET | stateHostINET6 | stateNumericHostINET | stateNumericHostINET6

// Debug, when true, makes [*request.nextState] log each dispatch to
// os.Stderr. Off by default: this is not part of the package contract,
// only a debugging aid (see the "Debug tracing" open question in
// DESIGN.md).
var Debug = false

// nextState evaluates the outstanding-work bitmask and performs the next
// step, in fixed priority order. It is re-entered by every step's
// completion, synchronous or asynchronous. This is the Go analogue of
// next_state.
func (r *request) nextState() {
	if Debug {
		fmt.Fprintf(os.Stderr, "nextState(req %p[state 0x%04x])\n", r, r.state)
	}

	// We always start out doing the host lookup. This way we know which
	// sockaddrs we will have when we do the service lookup. Also, this
	// has to be done before the canonical name lookup.
	if r.state&stateNumericHostINET6 != 0 {
		r.state &^= stateNumericHostINET6
		tryPtonInet6(r)
		return
	}

	if r.state&stateNumericHostINET != 0 {
		r.state &^= stateNumericHostINET
		tryPtonInet(r)
		return
	}

	if r.state&stateAnyHost != 0 && r.hints.Flags&FlagNumericHost != 0 {
		// Not allowed to use DNS, but haven't been able to resolve the
		// node name as a literal.
		r.fail(ErrNoName)
		return
	}

	if r.state&stateHostINET6 != 0 {
		r.state &^= stateHostINET6
		resolveHostInet6(r)
		return
	}

	if r.state&stateHostINET != 0 {
		r.state &^= stateHostINET
		resolveHostInet(r)
		return
	}

	if r.state&stateCanonical != 0 {
		r.state &^= stateCanonical
		findCanonical(r)
		return
	}

	if r.state&stateNumericServ != 0 {
		r.state &^= stateNumericServ
		tryServStrtol(r)
		return
	}

	if r.state&stateServ != 0 && r.hints.Flags&FlagNumericServ != 0 {
		r.fail(ErrNoName)
		return
	}

	if r.state&stateServ != 0 {
		r.state &^= stateServ
		resolveServ(r)
		return
	}

	if r.state == 0 {
		r.finish()
		return
	}

	// Unreachable given correct bit derivation in start().
	r.fail(ErrFormat)
}
