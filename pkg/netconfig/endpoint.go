package netconfig

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/vyvo/netblank/pkg/neterr"
)

// Endpoint describes the components of an endpoint URL. Every field is
// optional; Port 0 means no explicit port. Host is unbracketed for IPv6
// literals. Path is kept as written in the URL, percent-encoding included.
type Endpoint struct {
	Scheme   string `json:"scheme,omitempty" yaml:"scheme,omitempty" mapstructure:"scheme"`
	Host     string `json:"host,omitempty" yaml:"host,omitempty" mapstructure:"host"`
	Port     int    `json:"port,omitempty" yaml:"port,omitempty" mapstructure:"port"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty" mapstructure:"path"`
	RawQuery string `json:"query,omitempty" yaml:"query,omitempty" mapstructure:"query"`
}

// ParseEndpoint splits raw into endpoint components.
func ParseEndpoint(raw string) (Endpoint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Endpoint{}, neterr.InvalidURL(raw, errors.New("empty url"))
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Endpoint{}, neterr.InvalidURL(raw, err)
	}
	ep := Endpoint{
		Scheme:   u.Scheme,
		Host:     u.Hostname(),
		Path:     u.EscapedPath(),
		RawQuery: u.RawQuery,
	}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return Endpoint{}, neterr.InvalidURL(raw, err)
		}
		ep.Port = port
	}
	return ep, nil
}

// URL composes the endpoint into a URL. It fails when the components cannot
// form one: no host and no path, a port out of range, or a relative path
// under a host.
func (e Endpoint) URL() (*url.URL, error) {
	raw := e.String()
	switch {
	case e.Host == "" && e.Path == "":
		return nil, neterr.InvalidURL(raw, errors.New("neither host nor path set"))
	case e.Port < 0 || e.Port > 65535:
		return nil, neterr.InvalidURL(raw, fmt.Errorf("port %d out of range", e.Port))
	case e.Port != 0 && e.Host == "":
		return nil, neterr.InvalidURL(raw, errors.New("port without host"))
	case e.Host != "" && e.Path != "" && !strings.HasPrefix(e.Path, "/"):
		return nil, neterr.InvalidURL(raw, errors.New("path must be absolute when host is set"))
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, neterr.InvalidURL(raw, err)
	}
	return u, nil
}

// String renders the components without validating them.
func (e Endpoint) String() string {
	u := url.URL{
		Scheme:   e.Scheme,
		Path:     e.Path,
		RawQuery: e.RawQuery,
	}
	if path, err := url.PathUnescape(e.Path); err == nil {
		u.Path = path
		u.RawPath = e.Path
	}

	host := strings.TrimSuffix(strings.TrimPrefix(e.Host, "["), "]")
	switch {
	case e.Port != 0:
		u.Host = net.JoinHostPort(host, strconv.Itoa(e.Port))
	case strings.Contains(host, ":"):
		u.Host = "[" + host + "]"
	default:
		u.Host = host
	}
	return u.String()
}

// Request pairs a target URL with the headers to send. It is built fresh for
// every call and never shared.
type Request struct {
	URL    *url.URL
	Header http.Header
}

// HTTPRequest converts r into an *http.Request for a transport.
func (r *Request) HTTPRequest(ctx context.Context, method string, body io.Reader) (*http.Request, error) {
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, r.URL.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create http request: %w", err)
	}
	for key, values := range r.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	return httpReq, nil
}
