package llmkernel

import (
	"fmt"
	"net"
	"net/http"
	"time"
)

// llmCallTimeout bounds a single model call. A prompt may carry the full
// contents of several source files plus a tool-result round trip, so the
// ceiling is generous by ordinary HTTP-client standards — spec calls this
// "essentially no timeout" at the transport layer.
const llmCallTimeout = 20 * time.Minute

const maxRedirects = 5

// newHTTPClient builds the HTTP client newModel hands to the Ollama
// provider, grounded on the teacher's newOllamaHTTPClient. The other
// providers are constructed without it and use their own client's
// transport.
func newHTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   llmCallTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
}
