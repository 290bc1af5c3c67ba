package geocode

import (
	"net/http"
	"net/url"
)

// newRewriteClient creates an HTTP client that redirects requests for the
// given provider hosts to test server URLs. Hosts without a mapping fail so
// tests never reach the real services.
func newRewriteClient(targets map[string]string) *http.Client {
	return &http.Client{
		Transport: &rewriteTransport{base: http.DefaultTransport, targets: targets},
	}
}

type rewriteTransport struct {
	base    http.RoundTripper
	targets map[string]string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	target, ok := t.targets[req.URL.Host]
	if !ok {
		return nil, &url.Error{Op: "Get", URL: req.URL.String(), Err: http.ErrNotSupported}
	}
	parsed, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	clone := req.Clone(req.Context())
	clone.URL.Scheme = parsed.Scheme
	clone.URL.Host = parsed.Host
	clone.Host = parsed.Host
	return t.base.RoundTrip(clone)
}
