// SPDX-License-Identifier: GPL-3.0-or-later

package cares

import "errors"

// Terminal status values passed to a [Callback]. A nil status means
// success; every other value is one of the sentinels below, except when
// DNS host resolution fails, in which case the [*Channel]'s error is
// passed through unchanged.
//
// These follow the teacher package's convention (see the DNS response
// errors) of exported sentinel [error] values rather than a numeric
// status enum.
var (
	// ErrNoMemory means an allocation failed while building the request
	// or a result node.
	ErrNoMemory = errors.New("cannot allocate memory")

	// ErrBadQuery means the channel argument was nil.
	ErrBadQuery = errors.New("bad query")

	// ErrNoName means neither node nor service was given, or a numeric
	// hint could not be satisfied, or a symbolic service lookup failed.
	ErrNoName = errors.New("no such host")

	// ErrBadFlags means an incompatible combination of hint flags was
	// given (AI_CANONNAME without a node, or AI_ALL without AI_V4MAPPED).
	ErrBadFlags = errors.New("bad flags")

	// ErrBadFamily means the hints family was outside {Unspec, INET,
	// INET6}, or a default socket type/protocol could not be derived,
	// or a result node carries an unrecognized family.
	ErrBadFamily = errors.New("bad address family")

	// ErrBadHints means the protocol-by-number lookup failed during
	// service resolution.
	ErrBadHints = errors.New("bad hints")

	// ErrBadName means AI_CANONNAME was requested but no canonical name
	// could be found anywhere in the result chain.
	ErrBadName = errors.New("bad name")

	// ErrFormat means the state machine reached a bitmask it has no
	// dispatch rule for. This indicates an internal invariant was
	// broken and should never be observed by a caller.
	ErrFormat = errors.New("format error")

	// ErrServerMisbehaving means a [DNSTransport] got a response that
	// does not look like a DNS message (wrong content type, non-200
	// status) or whose body could not be read. An oversized body is
	// truncated, not reported with this error. This is a transport-level error rather
	// than one of the spec codes above.
	ErrServerMisbehaving = errors.New("server misbehaving")
)
