package netconfig

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/vyvo/netblank/pkg/locale"
	"github.com/vyvo/netblank/pkg/neterr"
	"github.com/vyvo/netblank/pkg/options"
)

// Store is the blank Config: an in-memory map of codes to endpoints that
// contributes no headers unless a HeaderSource is configured.
type Store struct {
	mu        sync.RWMutex
	endpoints map[string]Endpoint
	order     []string

	options   options.Set
	headers   HeaderSource
	lifecycle Lifecycle
	reporter  neterr.Reporter
	language  locale.Provider
}

var _ Config = (*Store)(nil)

// Option customizes a Store at construction.
type Option func(*settings)

type settings struct {
	configurer Configurer
	headers    HeaderSource
	lifecycle  Lifecycle
	reporter   neterr.Reporter
	language   locale.Provider
}

// WithConfigurer runs c against the new store before New returns.
func WithConfigurer(c Configurer) Option {
	return func(s *settings) { s.configurer = c }
}

// WithHeaderSource attaches per-code REST headers.
func WithHeaderSource(h HeaderSource) Option {
	return func(s *settings) { s.headers = h }
}

// WithLifecycle forwards lifecycle transitions to l.
func WithLifecycle(l Lifecycle) Option {
	return func(s *settings) { s.lifecycle = l }
}

// WithReporter sends detected failures to r.
func WithReporter(r neterr.Reporter) Option {
	return func(s *settings) { s.reporter = r }
}

// WithLanguage overrides the language code provider.
func WithLanguage(p locale.Provider) Option {
	return func(s *settings) { s.language = p }
}

// New creates an empty store and runs the configurer, if any.
func New(ctx context.Context, opts ...Option) (*Store, error) {
	cfg := collect(opts)
	s := newStore(cfg)
	if cfg.configurer != nil {
		if err := cfg.configurer.Configure(ctx, s); err != nil {
			return nil, fmt.Errorf("configure endpoints: %w", err)
		}
	}
	return s, nil
}

// Blank returns an empty store. A configurer passed in opts is ignored; use
// New to run one.
func Blank(opts ...Option) *Store {
	return newStore(collect(opts))
}

func collect(opts []Option) settings {
	cfg := settings{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func newStore(cfg settings) *Store {
	s := &Store{
		endpoints: make(map[string]Endpoint),
		headers:   cfg.headers,
		lifecycle: cfg.lifecycle,
		reporter:  cfg.reporter,
		language:  cfg.language,
	}
	if s.lifecycle == nil {
		s.lifecycle = NopLifecycle{}
	}
	if s.reporter == nil {
		s.reporter = neterr.NopReporter{}
	}
	if s.language == nil {
		s.language = locale.LanguageCode
	}
	return s
}

func (s *Store) LanguageCode() string { return s.language() }

func (s *Store) CheckOption(name string) bool { return s.options.Check(name) }
func (s *Store) EnableOption(name string)     { s.options.Enable(name) }
func (s *Store) DisableOption(name string)    { s.options.Disable(name) }

func (s *Store) OnActivate()        { s.lifecycle.OnActivate() }
func (s *Store) OnResignActive()    { s.lifecycle.OnResignActive() }
func (s *Store) OnEnterForeground() { s.lifecycle.OnEnterForeground() }
func (s *Store) OnEnterBackground() { s.lifecycle.OnEnterBackground() }

// defaultCode returns DefaultCode when stored, otherwise the first code
// inserted, or "" for an empty store.
func (s *Store) defaultCode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.endpoints[DefaultCode]; ok {
		return DefaultCode
	}
	if len(s.order) == 0 {
		return ""
	}
	return s.order[0]
}

// LookupDefault returns the endpoint stored under DefaultCode, falling back
// to the first code inserted.
func (s *Store) LookupDefault() (Endpoint, error) {
	code := s.defaultCode()
	if code == "" {
		return Endpoint{}, s.fail(neterr.NotFound(DefaultCode))
	}
	return s.Lookup(code)
}

func (s *Store) Lookup(code string) (Endpoint, error) {
	s.mu.RLock()
	ep, ok := s.endpoints[code]
	s.mu.RUnlock()
	if !ok {
		return Endpoint{}, s.fail(neterr.NotFound(code))
	}
	return ep, nil
}

// SetEndpoint stores ep under code, replacing any previous endpoint. An
// empty code is rejected and leaves the store unchanged.
func (s *Store) SetEndpoint(ep Endpoint, code string) error {
	if code == "" {
		return s.fail(neterr.InvalidParameter("code"))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.endpoints[code]; !exists {
		s.order = append(s.order, code)
	}
	s.endpoints[code] = ep
	return nil
}

// Codes returns the stored codes in insertion order.
func (s *Store) Codes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Entries returns the stored endpoints in insertion order.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, 0, len(s.order))
	for _, code := range s.order {
		out = append(out, Entry{Code: code, Endpoint: s.endpoints[code]})
	}
	return out
}

// HeadersDefault returns the headers for the code LookupDefault resolves to.
func (s *Store) HeadersDefault() (http.Header, error) {
	return s.HeadersFor(s.defaultCode())
}

// HeadersFor returns the REST headers for code. Without a HeaderSource the
// result is always empty.
func (s *Store) HeadersFor(code string) (http.Header, error) {
	if s.headers == nil {
		return http.Header{}, nil
	}
	h, err := s.headers.Headers(code)
	if err != nil {
		if _, ok := neterr.KindOf(err); !ok {
			err = neterr.Wrap(neterr.KindInvalidParameter, code, err)
		}
		return nil, s.fail(err)
	}
	if h == nil {
		return http.Header{}, nil
	}
	return h.Clone(), nil
}

// BuildRequest attaches the default code's headers to rawURL. It fails
// without building anything when the store has no endpoint.
func (s *Store) BuildRequest(rawURL string) (*Request, error) {
	if _, err := s.LookupDefault(); err != nil {
		return nil, err
	}
	headers, err := s.HeadersDefault()
	if err != nil {
		return nil, err
	}
	return s.newRequest(rawURL, headers)
}

// BuildRequestFor attaches code's headers to rawURL. It fails with NotFound
// when code has no stored endpoint.
func (s *Store) BuildRequestFor(code, rawURL string) (*Request, error) {
	if _, err := s.Lookup(code); err != nil {
		return nil, err
	}
	headers, err := s.HeadersFor(code)
	if err != nil {
		return nil, err
	}
	return s.newRequest(rawURL, headers)
}

func (s *Store) newRequest(rawURL string, headers http.Header) (*Request, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, s.fail(neterr.InvalidURL(rawURL, errors.New("empty url")))
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, s.fail(neterr.InvalidURL(rawURL, err))
	}
	return &Request{URL: u, Header: headers}, nil
}

func (s *Store) fail(err error) error {
	neterr.Report(context.Background(), s.reporter, err)
	return err
}
