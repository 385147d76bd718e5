package http

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// browserTransport dials HTTPS with a browser TLS ClientHello and routes
// the request to HTTP/1.1 or HTTP/2 depending on the negotiated ALPN.
type browserTransport struct {
	dial dialFunc
	h1   *http.Transport
	h2   *http2.Transport
}

func newBrowserTransport(dial dialFunc) *browserTransport {
	return &browserTransport{
		dial: dial,
		h1: &http.Transport{
			Proxy:       http.ProxyFromEnvironment,
			DialContext: dial,
		},
		h2: &http2.Transport{},
	}
}

// RoundTrip implements http.RoundTripper.
func (bt *browserTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		return bt.h1.RoundTrip(req)
	}

	addr := req.URL.Host
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, "443")
	}

	conn, alpn, err := bt.dialTLS(req.Context(), addr, req.URL.Hostname())
	if err != nil {
		return nil, err
	}

	if alpn == "h2" {
		cc, err := bt.h2.NewClientConn(conn)
		if err != nil {
			conn.Close()
			return nil, err
		}
		return cc.RoundTrip(req)
	}

	// One-shot transport reusing the already negotiated connection.
	t := &http.Transport{
		DialTLSContext: func(context.Context, string, string) (net.Conn, error) {
			return conn, nil
		},
	}
	return t.RoundTrip(req)
}

func (bt *browserTransport) dialTLS(ctx context.Context, addr, serverName string) (net.Conn, string, error) {
	raw, err := bt.dial(ctx, "tcp", addr)
	if err != nil {
		return nil, "", err
	}

	conn := utls.UClient(raw, &utls.Config{ServerName: serverName}, utls.HelloChrome_120)
	if err := conn.HandshakeContext(ctx); err != nil {
		raw.Close()
		return nil, "", err
	}

	return &utlsConn{conn}, conn.ConnectionState().NegotiatedProtocol, nil
}

// utlsConn exposes the standard ConnectionState that net/http2 expects.
type utlsConn struct {
	*utls.UConn
}

func (c *utlsConn) ConnectionState() tls.ConnectionState {
	cs := c.UConn.ConnectionState()
	return tls.ConnectionState{
		Version:                    cs.Version,
		HandshakeComplete:          cs.HandshakeComplete,
		CipherSuite:                cs.CipherSuite,
		NegotiatedProtocol:         cs.NegotiatedProtocol,
		NegotiatedProtocolIsMutual: cs.NegotiatedProtocolIsMutual,
		ServerName:                 cs.ServerName,
		PeerCertificates:           cs.PeerCertificates,
		VerifiedChains:             cs.VerifiedChains,
		OCSPResponse:               cs.OCSPResponse,
		TLSUnique:                  cs.TLSUnique,
	}
}
