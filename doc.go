// SPDX-License-Identifier: GPL-3.0-or-later

// Package cares contains an asynchronous, protocol-agnostic getaddrinfo
// resolution core built on top of a pluggable DNS channel.
//
// The high-level entry point is [GetAddrInfo]. It behaves like the POSIX
// getaddrinfo(3) call, except that it never blocks: the caller supplies a
// completion [Callback] that is invoked exactly once with the resolved
// [*AddrInfo] chain or an error.
//
// Resolution is driven by a small state machine (see state.go) that walks
// through numeric-host parsing, DNS host lookups, canonical-name
// selection, and service resolution in a fixed priority order, dispatched
// off a bitmask of outstanding work. Every step, synchronous or
// asynchronous, either re-enters the state machine or invokes the
// callback and releases the request; there is no other control path.
//
// DNS host lookups are issued through a [*Channel], which tries one or
// more [DNSTransport] implementations in order until one succeeds:
//
//  1. DNS over UDP: implemented by [DNSOverUDPTransport]
//
//  2. DNS over TCP: implemented by [StreamTransport] using [*net.Dialer]
//
//  3. DNS over TLS: implemented by [StreamTransport] using [*tls.Dialer]
//
//  4. DNS over QUIC: implemented by [QUICTransport]
//
//  5. DNS over HTTPS: implemented by [HTTPSTransport]
//
//  6. DNS over HTTP/3: implemented by [HTTPSTransport] when configured
//     with an HTTP client backed by an [*http3.Transport]
//
// For example, to resolve a host and a service:
//
//	channel := cares.NewChannel(cares.NewDNSOverUDPTransport(&net.Dialer{}, endpoint))
//	node, service := "example.com", "https"
//	cares.GetAddrInfo(context.Background(), channel, &node, &service, nil,
//		func(status error, timeouts int, result *cares.AddrInfo) {
//			defer cares.FreeAddrInfo(result)
//			// ...
//		})
//
// [*Dialer] builds on top of [GetAddrInfo] to dial a [net.Conn] using the
// resolved chain directly, without going through the standard library
// resolver.
//
// The code in this package is an evolution of code originally written to
// measure DNS protocols, where the measurement-specific pieces have been
// removed and the getaddrinfo-shaped resolution state machine has been
// added in their place.
package cares
