// SPDX-License-Identifier: GPL-3.0-or-later

package cares

import (
	"context"
	"errors"
	"net/netip"
	"time"

	"github.com/bassosimone/dnscodec"
	"github.com/bassosimone/runtimex"
	"github.com/miekg/dns"
)

// DefaultChannelTimeout is the default lookup timeout used by
// [*Channel], the Go analogue of c-ares's per-query timeout.
const DefaultChannelTimeout = 10 * time.Second

// DNSTransport performs a DNS message exchange. [DNSOverUDPTransport],
// [StreamTransport], [HTTPSTransport], and [QUICTransport] implement
// this interface.
type DNSTransport interface {
	Exchange(ctx context.Context, query *dnscodec.Query) (*dnscodec.Response, error)
}

// HostReply is the result of one [*Channel.ResolveHost] call, the Go
// analogue of struct hostent as consumed by host_callback.
type HostReply struct {
	// Family is the family of every address in Addrs. [*Channel.ResolveHost]
	// always sets it to the family that was requested.
	Family Family

	// Addrs are the resolved addresses, all of the same Family.
	Addrs []netip.Addr

	// CanonName is the canonical name for the query, the Go analogue
	// of hostent.h_name. Always non-empty on success.
	CanonName string
}

// HostCallback receives the result of an asynchronous host lookup.
// status is nil on success. timeouts counts the transport exchanges that
// failed with [context.DeadlineExceeded]; a transport is never retried.
type HostCallback func(status error, timeouts int, reply *HostReply)

// Channel is the asynchronous DNS channel consumed by the host resolver
// bridge (component D), the Go analogue of ares_channel. Construct using
// [NewChannel].
type Channel struct {
	// Transports are the [DNSTransport] values to try, in order.
	//
	// Set by [NewChannel] to the user-provided value.
	Transports []DNSTransport

	// Timeout is the overall per-lookup timeout.
	//
	// Set by [NewChannel] to [DefaultChannelTimeout].
	Timeout time.Duration
}

// NewChannel creates a new [*Channel].
func NewChannel(transport ...DNSTransport) *Channel {
	return &Channel{
		Transports: transport,
		Timeout:    DefaultChannelTimeout,
	}
}

// ResolveHost issues an asynchronous DNS lookup for name in the given
// family and invokes cb exactly once with the result, off the calling
// goroutine. This is the Go analogue of ares_gethostbyname.
//
// Because a single request only ever has one host lookup outstanding at
// a time (see state.go's priority order), callers do not need to
// synchronize concurrent ResolveHost calls for the same request; the
// state machine guards its own fields with a mutex regardless.
func (c *Channel) ResolveHost(ctx context.Context, name string, family Family, cb HostCallback) {
	go func() {
		reply, timeouts, err := c.resolveHostSync(ctx, name, family)
		cb(err, timeouts, reply)
	}()
}

// resolveHostSync performs the actual lookup, trying every transport in
// turn, the Go analogue of the teacher's *Resolver.lookup plus the
// hostent construction host_callback performs on a successful response.
func (c *Channel) resolveHostSync(ctx context.Context, name string, family Family) (*HostReply, int, error) {
	if len(c.Transports) < 1 {
		return nil, 0, errors.New("no configured transport")
	}

	qtype := dns.TypeA
	if family == FamilyINET6 {
		qtype = dns.TypeAAAA
	}
	query := dnscodec.NewQuery(name, qtype)

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	var (
		errv     = make([]error, 0, len(c.Transports))
		timeouts int
	)
	for _, txp := range c.Transports {
		if err := ctx.Err(); err != nil {
			errv = append(errv, err)
			break
		}
		resp, err := txp.Exchange(ctx, query)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				timeouts++
			}
			errv = append(errv, err)
			continue
		}
		reply, err := newHostReply(family, query, resp)
		if err != nil {
			return nil, timeouts, err
		}
		return reply, timeouts, nil
	}

	runtimex.Assert(len(errv) >= 1)
	return nil, timeouts, errors.Join(errv...)
}

// newHostReply converts a [*dnscodec.Response] into a [*HostReply].
func newHostReply(family Family, query *dnscodec.Query, resp *dnscodec.Response) (*HostReply, error) {
	var (
		raw []string
		err error
	)
	switch family {
	case FamilyINET:
		raw, err = resp.RecordsA()
	case FamilyINET6:
		raw, err = resp.RecordsAAAA()
	default:
		return nil, ErrBadFamily
	}
	if err != nil {
		return nil, err
	}

	addrs := make([]netip.Addr, 0, len(raw))
	for _, s := range raw {
		addr, perr := netip.ParseAddr(s)
		if perr != nil {
			continue
		}
		addrs = append(addrs, addr)
	}
	if len(addrs) < 1 {
		return nil, dnscodec.ErrNoData
	}

	canonName := dns.Fqdn(query.Name)
	if cnames, cerr := resp.RecordsCNAME(); cerr == nil && len(cnames) > 0 {
		canonName = cnames[len(cnames)-1]
	}

	return &HostReply{Family: family, Addrs: addrs, CanonName: canonName}, nil
}
