// SPDX-License-Identifier: GPL-3.0-or-later

package cares

import (
	"net"
	"strconv"
)

// tryServStrtol attempts to resolve the service string as a base-10
// port number. This is the Go analogue of try_serv_strtol.
func tryServStrtol(r *request) {
	val, err := strconv.ParseUint(*r.service, 10, 16)
	if err != nil {
		// Not a numeric port.
		r.nextState()
		return
	}

	if defErr := applySockTypeProtocolDefaults(r.result); defErr != nil {
		r.fail(defErr)
		return
	}

	for ai := r.result; ai != nil; ai = ai.Next {
		ai.Addr = withPort(ai.Addr, uint16(val))
	}

	r.state &^= stateServ
	r.nextState()
}

// resolveServ resolves the service string symbolically via the
// protocol/services database. This is the Go analogue of resolve_serv.
func resolveServ(r *request) {
	if err := applySockTypeProtocolDefaults(r.result); err != nil {
		r.fail(err)
		return
	}

	for ai := r.result; ai != nil; ai = ai.Next {
		protoName, ok := lookupProtocolName(ai.Protocol)
		if !ok {
			r.fail(ErrBadHints)
			return
		}

		port, err := net.LookupPort(protoName, *r.service)
		if err != nil {
			r.fail(ErrNoName)
			return
		}

		ai.Addr = withPort(ai.Addr, uint16(port))
	}

	r.nextState()
}
