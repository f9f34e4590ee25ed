// SPDX-License-Identifier: GPL-3.0-or-later

package cares

import (
	"context"
	"sync"
)

// Callback is invoked exactly once when a [GetAddrInfo] request
// completes. status is nil on success; otherwise result is nil and status
// is one of the sentinel errors in errors.go or, when the last DNS host
// lookup fails, the error reported by the [*Channel]. On success, result is
// the non-empty head of a chain now owned by the caller, which must
// eventually be released with [FreeAddrInfo].
type Callback func(status error, timeouts int, result *AddrInfo)

// request is the Go analogue of struct ares_gaicb: the context driving a
// single resolution through the state machine.
type request struct {
	// mu guards every field below, since nextState may be re-entered
	// from a goroutine spawned by the channel's host resolution.
	mu sync.Mutex

	ctx      context.Context
	channel  *Channel
	node     *string
	service  *string
	hints    Hints
	result   *AddrInfo
	callback Callback
	state    gaiState
	timeouts int
}

// GetAddrInfo resolves node and/or service asynchronously, the Go
// analogue of ares_getaddrinfo. At least one of node/service must be
// non-nil. hints may be nil, in which case [DefaultHints] is used.
// callback is invoked exactly once, possibly before GetAddrInfo returns
// (for synchronously-detected errors) and possibly from a different
// goroutine (once a DNS host lookup completes).
func GetAddrInfo(ctx context.Context, channel *Channel, node, service *string, hints *Hints, callback Callback) {
	effectiveHints := DefaultHints
	if hints != nil {
		effectiveHints = *hints
	}

	if channel == nil {
		callback(ErrBadQuery, 0, nil)
		return
	}

	if node == nil && service == nil {
		callback(ErrNoName, 0, nil)
		return
	}

	if effectiveHints.Flags&FlagCanonName != 0 && node == nil {
		callback(ErrBadFlags, 0, nil)
		return
	}

	if effectiveHints.Flags&FlagAll != 0 && effectiveHints.Flags&FlagV4Mapped == 0 {
		callback(ErrBadFlags, 0, nil)
		return
	}

	switch effectiveHints.Family {
	case FamilyUnspec, FamilyINET, FamilyINET6:
	default:
		callback(ErrBadFamily, 0, nil)
		return
	}

	start(ctx, channel, node, service, effectiveHints, callback)
}

// start builds the request and derives the initial bitmask, the Go
// analogue of the source's start() helper plus the bitmask derivation at
// the end of ares_getaddrinfo.
func start(ctx context.Context, channel *Channel, node, service *string, hints Hints, callback Callback) {
	wantInet := hints.Family == FamilyUnspec || hints.Family == FamilyINET ||
		(hints.Family == FamilyINET6 && hints.Flags&FlagV4Mapped != 0)
	wantInet6 := hints.Family == FamilyUnspec || hints.Family == FamilyINET6

	var st gaiState
	if service != nil {
		st |= stateServ | stateNumericServ
	}
	if node != nil && wantInet {
		st |= stateHostINET
	}
	if node != nil && wantInet6 {
		st |= stateHostINET6
	}
	if wantInet {
		st |= stateNumericHostINET
	}
	if wantInet6 {
		st |= stateNumericHostINET6
	}
	if hints.Flags&FlagCanonName != 0 {
		st |= stateCanonical
	}

	r := &request{
		ctx:      ctx,
		channel:  channel,
		node:     node,
		service:  service,
		hints:    hints,
		callback: callback,
		state:    st,
	}

	r.nextState()
}

// fail invokes the callback with a terminal failure, releasing any
// partial result chain. This is the Go analogue of the many
// callback-then-free_gaicb call pairs scattered through the source.
func (r *request) fail(status error) {
	result := r.result
	r.result = nil
	FreeAddrInfo(result)
	r.callback(status, r.timeouts, nil)
}

// finish invokes the callback with the completed, non-empty result
// chain, transferring ownership to the caller. This is the Go analogue
// of the (cb->ar_state == 0) branch of next_state.
func (r *request) finish() {
	result := r.result
	r.result = nil
	r.callback(nil, r.timeouts, result)
}
