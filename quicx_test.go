// SPDX-License-Identifier: GPL-3.0-or-later

package cares

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

// quicResolverFunc adapts a function to [QUICResolver].
type quicResolverFunc func(ctx context.Context, name string) ([]string, error)

func (f quicResolverFunc) LookupHost(ctx context.Context, name string) ([]string, error) {
	return f(ctx, name)
}

func TestQUICDialConfigDialContextBadAddress(t *testing.T) {
	d := &QUICDialConfig{}
	_, err := d.DialContext(context.Background(), "udp", "not-a-host-port")
	require.Error(t, err)
}

func TestQUICDialConfigDialContextResolveFailure(t *testing.T) {
	resolveErr := errors.New("resolve failure")
	d := &QUICDialConfig{
		Resolver: quicResolverFunc(func(context.Context, string) ([]string, error) {
			return nil, resolveErr
		}),
	}
	_, err := d.DialContext(context.Background(), "udp", "dns.example.com:853")
	require.ErrorIs(t, err, resolveErr)
}

// quicListenConfigFunc adapts a function to [QUICListenConfig].
type quicListenConfigFunc func(ctx context.Context, network, address string) (net.PacketConn, error)

func (f quicListenConfigFunc) ListenPacket(ctx context.Context, network, address string) (net.PacketConn, error) {
	return f(ctx, network, address)
}

func TestQUICDialConfigDialContextListenFailure(t *testing.T) {
	listenErr := errors.New("listen failure")
	d := &QUICDialConfig{
		Resolver: quicResolverFunc(func(context.Context, string) ([]string, error) {
			return []string{"127.0.0.1"}, nil
		}),
		ListenConfig: quicListenConfigFunc(func(context.Context, string, string) (net.PacketConn, error) {
			return nil, listenErr
		}),
	}
	_, err := d.DialContext(context.Background(), "udp", "dns.example.com:853")
	require.ErrorIs(t, err, listenErr)
}
