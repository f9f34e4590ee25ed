// SPDX-License-Identifier: GPL-3.0-or-later

package cares

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/bassosimone/dnscodec"
	"github.com/miekg/dns"
	"github.com/stretchr/testify/require"
)

// httpsClientFunc adapts a function to [HTTPSClient].
type httpsClientFunc func(req *http.Request) (*http.Response, error)

func (f httpsClientFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestHTTPSTransportExchangeRoundTrip(t *testing.T) {
	var gotContentType string
	client := httpsClientFunc(func(req *http.Request) (*http.Response, error) {
		gotContentType = req.Header.Get("Content-Type")
		rawQuery, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		rawResp := buildRawResponseFromQuery(t, rawQuery)
		return &http.Response{
			StatusCode: 200,
			Header:     http.Header{"Content-Type": []string{"application/dns-message"}},
			Body:       io.NopCloser(strings.NewReader(string(rawResp))),
		}, nil
	})

	transport := NewHTTPSTransport(client, "https://dns.example.com/dns-query")
	resp, err := transport.Exchange(context.Background(), dnscodec.NewQuery("example.com", dns.TypeA))
	require.NoError(t, err)
	require.NotNil(t, resp)
	require.Equal(t, "application/dns-message", gotContentType)
}

func TestHTTPSTransportExchangeDoFailure(t *testing.T) {
	doErr := errors.New("round trip failed")
	client := httpsClientFunc(func(*http.Request) (*http.Response, error) {
		return nil, doErr
	})

	transport := NewHTTPSTransport(client, "https://dns.example.com/dns-query")
	_, err := transport.Exchange(context.Background(), dnscodec.NewQuery("example.com", dns.TypeA))
	require.ErrorIs(t, err, doErr)
}

func TestHTTPSTransportExchangeNon200Status(t *testing.T) {
	client := httpsClientFunc(func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: 500,
			Header:     http.Header{"Content-Type": []string{"application/dns-message"}},
			Body:       io.NopCloser(strings.NewReader("")),
		}, nil
	})

	transport := NewHTTPSTransport(client, "https://dns.example.com/dns-query")
	_, err := transport.Exchange(context.Background(), dnscodec.NewQuery("example.com", dns.TypeA))
	require.ErrorIs(t, err, ErrServerMisbehaving)
}

func TestHTTPSTransportExchangeWrongContentType(t *testing.T) {
	client := httpsClientFunc(func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: 200,
			Header:     http.Header{"Content-Type": []string{"text/plain"}},
			Body:       io.NopCloser(strings.NewReader("")),
		}, nil
	})

	transport := NewHTTPSTransport(client, "https://dns.example.com/dns-query")
	_, err := transport.Exchange(context.Background(), dnscodec.NewQuery("example.com", dns.TypeA))
	require.ErrorIs(t, err, ErrServerMisbehaving)
}

func TestHTTPSTransportExchangeInvalidBody(t *testing.T) {
	client := httpsClientFunc(func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: 200,
			Header:     http.Header{"Content-Type": []string{"application/dns-message"}},
			Body:       io.NopCloser(strings.NewReader("not a dns message")),
		}, nil
	})

	transport := NewHTTPSTransport(client, "https://dns.example.com/dns-query")
	_, err := transport.Exchange(context.Background(), dnscodec.NewQuery("example.com", dns.TypeA))
	require.Error(t, err)
}
