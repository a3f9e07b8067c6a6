// Package netrouter composes outbound requests from a netconfig.Config and
// hands them to a transport.
package netrouter

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vyvo/netblank/pkg/netconfig"
	"github.com/vyvo/netblank/pkg/neterr"
	"github.com/vyvo/netblank/pkg/options"
)

const tracerName = "github.com/vyvo/netblank/pkg/netrouter"

// Router is the capability set of a request router.
type Router interface {
	netconfig.Lifecycle

	CheckOption(name string) bool
	EnableOption(name string)
	DisableOption(name string)

	BuildRequest(ctx context.Context, rawURL string) (*netconfig.Request, error)
	BuildRequestFor(ctx context.Context, code, rawURL string) (*netconfig.Request, error)
	URLRequest(ctx context.Context) (*netconfig.Request, error)
	URLRequestFor(ctx context.Context, code string) (*netconfig.Request, error)
	DataRequest(ctx context.Context, code, method string, body io.Reader) (*http.Response, error)

	Config() netconfig.Config
	LanguageCode() string
}

// Transport sends a built request. *http.Client satisfies it.
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

// BlankRouter is the default Router. It reads from its Config and never
// mutates it. Its options are its own and are not shared with the Config.
type BlankRouter struct {
	cfg       netconfig.Config
	options   options.Set
	lifecycle netconfig.Lifecycle
	reporter  neterr.Reporter
	transport Transport
	metrics   *Metrics
	tracer    trace.Tracer
}

var _ Router = (*BlankRouter)(nil)

// Option customizes a BlankRouter.
type Option func(*BlankRouter)

// WithLifecycle forwards lifecycle transitions to l.
func WithLifecycle(l netconfig.Lifecycle) Option {
	return func(r *BlankRouter) { r.lifecycle = l }
}

// WithReporter sends failures to rep.
func WithReporter(rep neterr.Reporter) Option {
	return func(r *BlankRouter) { r.reporter = rep }
}

// WithTransport replaces the default HTTP client used by DataRequest.
func WithTransport(t Transport) Option {
	return func(r *BlankRouter) { r.transport = t }
}

// WithMetrics records request outcomes in m.
func WithMetrics(m *Metrics) Option {
	return func(r *BlankRouter) { r.metrics = m }
}

// WithTracer replaces the tracer obtained from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(r *BlankRouter) { r.tracer = t }
}

// New creates a router over a fresh blank config it owns.
func New(opts ...Option) *BlankRouter {
	r := newRouter(nil, opts)
	r.cfg = netconfig.Blank(netconfig.WithReporter(r.reporter))
	return r
}

// NewWithConfig creates a router over cfg, which may be shared with other
// routers.
func NewWithConfig(cfg netconfig.Config, opts ...Option) *BlankRouter {
	return newRouter(cfg, opts)
}

func newRouter(cfg netconfig.Config, opts []Option) *BlankRouter {
	r := &BlankRouter{
		cfg:       cfg,
		lifecycle: netconfig.NopLifecycle{},
		reporter:  neterr.NopReporter{},
		transport: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.tracer == nil {
		r.tracer = otel.Tracer(tracerName)
	}
	return r
}

func (r *BlankRouter) Config() netconfig.Config { return r.cfg }

func (r *BlankRouter) LanguageCode() string { return r.cfg.LanguageCode() }

func (r *BlankRouter) CheckOption(name string) bool { return r.options.Check(name) }
func (r *BlankRouter) EnableOption(name string)     { r.options.Enable(name) }
func (r *BlankRouter) DisableOption(name string)    { r.options.Disable(name) }

// Options lists the router's enabled options in sorted order.
func (r *BlankRouter) Options() []string { return r.options.List() }

func (r *BlankRouter) OnActivate()        { r.lifecycle.OnActivate() }
func (r *BlankRouter) OnResignActive()    { r.lifecycle.OnResignActive() }
func (r *BlankRouter) OnEnterForeground() { r.lifecycle.OnEnterForeground() }
func (r *BlankRouter) OnEnterBackground() { r.lifecycle.OnEnterBackground() }

// BuildRequest attaches the default endpoint's headers to rawURL.
func (r *BlankRouter) BuildRequest(ctx context.Context, rawURL string) (*netconfig.Request, error) {
	ctx, span := r.tracer.Start(ctx, "netrouter.BuildRequest")
	defer span.End()

	req, err := r.cfg.BuildRequest(rawURL)
	return r.finish(ctx, span, "build", req, err)
}

// BuildRequestFor attaches code's headers to rawURL.
func (r *BlankRouter) BuildRequestFor(ctx context.Context, code, rawURL string) (*netconfig.Request, error) {
	ctx, span := r.tracer.Start(ctx, "netrouter.BuildRequestFor",
		trace.WithAttributes(attribute.String("netblank.code", code)))
	defer span.End()

	req, err := r.cfg.BuildRequestFor(code, rawURL)
	return r.finish(ctx, span, "build_for", req, err)
}

// URLRequest builds a request to the default endpoint's own URL.
func (r *BlankRouter) URLRequest(ctx context.Context) (*netconfig.Request, error) {
	ctx, span := r.tracer.Start(ctx, "netrouter.URLRequest")
	defer span.End()

	req, err := r.urlRequest(r.cfg.LookupDefault, r.cfg.HeadersDefault)
	return r.finish(ctx, span, "url", req, err)
}

// URLRequestFor builds a request to code's own URL with code's headers.
func (r *BlankRouter) URLRequestFor(ctx context.Context, code string) (*netconfig.Request, error) {
	ctx, span := r.tracer.Start(ctx, "netrouter.URLRequestFor",
		trace.WithAttributes(attribute.String("netblank.code", code)))
	defer span.End()

	req, err := r.urlRequest(
		func() (netconfig.Endpoint, error) { return r.cfg.Lookup(code) },
		func() (http.Header, error) { return r.cfg.HeadersFor(code) },
	)
	return r.finish(ctx, span, "url_for", req, err)
}

func (r *BlankRouter) urlRequest(lookup func() (netconfig.Endpoint, error), headers func() (http.Header, error)) (*netconfig.Request, error) {
	ep, err := lookup()
	if err != nil {
		return nil, err
	}
	u, err := ep.URL()
	if err != nil {
		return nil, err
	}
	h, err := headers()
	if err != nil {
		return nil, err
	}
	return &netconfig.Request{URL: u, Header: h}, nil
}

// DataRequest sends a request to code's URL through the transport. The
// caller owns the response body.
func (r *BlankRouter) DataRequest(ctx context.Context, code, method string, body io.Reader) (*http.Response, error) {
	req, err := r.URLRequestFor(ctx, code)
	if err != nil {
		return nil, err
	}

	ctx, span := r.tracer.Start(ctx, "netrouter.DataRequest",
		trace.WithAttributes(attribute.String("netblank.code", code)))
	defer span.End()

	httpReq, err := req.HTTPRequest(ctx, method, body)
	if err != nil {
		return nil, r.fail(ctx, span, err)
	}
	span.SetAttributes(attribute.String("http.method", httpReq.Method))

	resp, err := r.transport.Do(httpReq)
	if err != nil {
		return nil, r.fail(ctx, span, fmt.Errorf("data request %s: %w", code, err))
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	return resp, nil
}

func (r *BlankRouter) finish(ctx context.Context, span trace.Span, variant string, req *netconfig.Request, err error) (*netconfig.Request, error) {
	if err != nil {
		r.metrics.observe(variant, err)
		return nil, r.fail(ctx, span, err)
	}
	r.metrics.observe(variant, nil)
	span.SetAttributes(attribute.String("url.full", req.URL.String()))
	return req, nil
}

func (r *BlankRouter) fail(ctx context.Context, span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	neterr.Report(ctx, r.reporter, err)
	return err
}
