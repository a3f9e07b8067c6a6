// Package netconfig holds the code-keyed endpoint configuration that routers
// build outbound requests from.
package netconfig

import (
	"context"
	"net/http"
)

// DefaultCode is the code LookupDefault prefers when it is stored.
const DefaultCode = "default"

// Lifecycle receives host application lifecycle transitions.
type Lifecycle interface {
	OnActivate()
	OnResignActive()
	OnEnterForeground()
	OnEnterBackground()
}

// NopLifecycle ignores every transition.
type NopLifecycle struct{}

func (NopLifecycle) OnActivate()        {}
func (NopLifecycle) OnResignActive()    {}
func (NopLifecycle) OnEnterForeground() {}
func (NopLifecycle) OnEnterBackground() {}

// Config is the capability set of a network configuration provider.
type Config interface {
	Lifecycle

	CheckOption(name string) bool
	EnableOption(name string)
	DisableOption(name string)

	LookupDefault() (Endpoint, error)
	Lookup(code string) (Endpoint, error)
	SetEndpoint(ep Endpoint, code string) error
	Codes() []string
	Entries() []Entry

	HeadersDefault() (http.Header, error)
	HeadersFor(code string) (http.Header, error)

	BuildRequest(rawURL string) (*Request, error)
	BuildRequestFor(code, rawURL string) (*Request, error)

	LanguageCode() string
}

// Entry is a stored endpoint with its code.
type Entry struct {
	Code     string   `json:"code"`
	Endpoint Endpoint `json:"endpoint"`
}

// Configurer populates a Config when it is constructed.
type Configurer interface {
	Configure(ctx context.Context, cfg Config) error
}

// ConfigurerFunc adapts a function to Configurer.
type ConfigurerFunc func(ctx context.Context, cfg Config) error

func (f ConfigurerFunc) Configure(ctx context.Context, cfg Config) error { return f(ctx, cfg) }

// HeaderSource supplies the REST headers attached to requests for a code.
type HeaderSource interface {
	Headers(code string) (http.Header, error)
}

// HeaderSourceFunc adapts a function to HeaderSource.
type HeaderSourceFunc func(code string) (http.Header, error)

func (f HeaderSourceFunc) Headers(code string) (http.Header, error) { return f(code) }
