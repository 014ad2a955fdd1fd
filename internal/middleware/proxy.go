package middleware

import (
	"net/http"
	"net/url"
)

// Proxy returns a middleware that routes every request through proxyURL.
// It must be the innermost middleware: it replaces the transport it wraps
// with a clone carrying the proxy setting. A nil proxyURL leaves the
// transport untouched.
func Proxy(proxyURL *url.URL) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		if proxyURL == nil {
			return next
		}

		transport, ok := next.(*http.Transport)
		if !ok {
			defaultTransport, ok := http.DefaultTransport.(*http.Transport)
			if !ok {
				return next
			}
			transport = defaultTransport.Clone()
		} else {
			transport = transport.Clone()
		}

		transport.Proxy = http.ProxyURL(proxyURL)

		return transport
	}
}
