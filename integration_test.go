// SPDX-License-Identifier: GPL-3.0-or-later

package cares

import (
	"context"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegrationDNSOverUDPWorks(t *testing.T) {
	if testing.Short() {
		t.Skip("skip test in short mode")
	}
	ctx := context.Background()
	endpoint := netip.MustParseAddrPort("8.8.4.4:53")
	channel := NewChannel(NewDNSOverUDPTransport(&net.Dialer{}, endpoint))
	reply, _, err := resolveHostSync(t, channel, ctx, "dns.google", FamilyINET)
	require.NoError(t, err)
	assert.NotEmpty(t, reply.Addrs)
}

func TestIntegrationGetAddrInfoOverUDPWorks(t *testing.T) {
	if testing.Short() {
		t.Skip("skip test in short mode")
	}
	endpoint := netip.MustParseAddrPort("8.8.4.4:53")
	channel := NewChannel(NewDNSOverUDPTransport(&net.Dialer{}, endpoint))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	node := "dns.google"
	done := make(chan struct{})
	var (
		gotStatus error
		gotResult *AddrInfo
	)
	GetAddrInfo(ctx, channel, &node, nil, &Hints{Family: FamilyINET}, func(status error, timeouts int, result *AddrInfo) {
		gotStatus, gotResult = status, result
		close(done)
	})
	<-done

	require.NoError(t, gotStatus)
	require.NotNil(t, gotResult)
	FreeAddrInfo(gotResult)
}
