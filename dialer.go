//
// SPDX-License-Identifier: BSD-3-Clause
//
// Adapted from: https://github.com/ooni/netem/blob/061c5671b52a2c064cac1de5d464bb056f7ccaa8/unetstack.go
//

package cares

import (
	"context"
	"errors"
	"net"
	"net/netip"

	"github.com/bassosimone/runtimex"
)

// Dialer allows dialing [net.Conn] connections pretty much like
// [*net.Dialer] except that it resolves the target host using
// [GetAddrInfo] over a [*Channel] rather than the system resolver, and
// uses a [NetDialer] as the dialing backend.
//
// Construct using [NewDialer].
//
// This [*Dialer] does not implement happy eyeballs and is instead very
// simple and focused on measuring network interference.
type Dialer struct {
	// channel is the channel used to resolve names.
	channel *Channel

	// udialer is the underlying dialer to use.
	udialer NetDialer
}

// NewDialer creates a new [*Dialer] instance.
func NewDialer(udialer NetDialer, channel *Channel) *Dialer {
	return &Dialer{channel, udialer}
}

// DialContext creates a new [net.Conn] connection.
func (d *Dialer) DialContext(ctx context.Context, network string, address string) (net.Conn, error) {
	// 1. separate the domain name and the port
	name, port, err := net.SplitHostPort(address)
	if err != nil {
		return nil, err
	}

	// 2. resolve the domain name to a chain of addresses
	addrs, err := d.lookupHost(ctx, network, name)
	if err != nil {
		return nil, err
	}
	runtimex.Assert(addrs != nil)

	// 3. attempt to connect sequentially
	errv := make([]error, 0)
	for ai := addrs; ai != nil; ai = ai.Next {
		conn, err := d.udialer.DialContext(ctx, network, net.JoinHostPort(ai.Addr.Addr().String(), port))
		if err != nil {
			errv = append(errv, err)
			continue
		}
		FreeAddrInfo(addrs)
		return conn, nil
	}

	// 4. bail if all the connect attempts failed
	FreeAddrInfo(addrs)
	return nil, errors.Join(errv...)
}

// lookupHost ensures that we short circuit IP addresses, and otherwise
// bridges the asynchronous [GetAddrInfo] into a synchronous call.
func (d *Dialer) lookupHost(ctx context.Context, network, name string) (*AddrInfo, error) {
	hints := Hints{SockType: SockTypeStream}
	switch network {
	case "tcp4", "udp4":
		hints.Family = FamilyINET
	case "tcp6", "udp6":
		hints.Family = FamilyINET6
	}

	if addr, err := netip.ParseAddr(name); err == nil {
		if addr.Is4() {
			return newAddrInfoInet(hints, addr.As4()), nil
		}
		return newAddrInfoInet6(hints, addr.As16()), nil
	}

	type result struct {
		addrs *AddrInfo
		err   error
	}
	ch := make(chan result, 1)
	GetAddrInfo(ctx, d.channel, &name, nil, &hints, func(status error, timeouts int, addrs *AddrInfo) {
		ch <- result{addrs, status}
	})

	select {
	case r := <-ch:
		return r.addrs, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
