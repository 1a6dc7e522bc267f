package mock

import (
	"sort"
	"sync"
	"testing"

	"github.com/tarmac-project/standin"
	"github.com/tarmac-project/standin/kv"
	"github.com/tarmac-project/standin/spy"
)

// Operation names used for per-call configuration.
const (
	OpGet    = "GET"
	OpSet    = "SET"
	OpDelete = "DELETE"
	OpKeys   = "KEYS"
)

// Fake implements kv.KV by delegating every method to a field.
type Fake struct {
	GetFunc    func(key string) ([]byte, error)
	SetFunc    func(key string, value []byte) error
	DeleteFunc func(key string) error
	KeysFunc   func() ([]string, error)
	CloseFunc  func() error
}

// Get implements kv.KV.
func (f *Fake) Get(key string) ([]byte, error) { return f.GetFunc(key) }

// Set implements kv.KV.
func (f *Fake) Set(key string, value []byte) error { return f.SetFunc(key, value) }

// Delete implements kv.KV.
func (f *Fake) Delete(key string) error { return f.DeleteFunc(key) }

// Keys implements kv.KV.
func (f *Fake) Keys() ([]string, error) { return f.KeysFunc() }

// Close implements kv.KV.
func (f *Fake) Close() error { return f.CloseFunc() }

// Config configures the mock client.
type Config struct {
	// Seed pre-populates the in-memory store.
	Seed map[string][]byte
}

// Response describes a configured mock outcome.
type Response struct {
	// Value applies to GET.
	Value []byte
	// Keys applies to KEYS.
	Keys []string
	// Err indicates an error to return for the operation.
	Err error
	// storeOnSet controls whether SET updates the in-memory store when a
	// configured SET response exists and Err == nil. Defaults to true.
	storeOnSet *bool
}

// ResponseBuilder allows fluent configuration of responses.
type ResponseBuilder struct {
	m   *Client
	key string // composite key: OP + " " + target
}

// ReturnValue sets bytes returned by GET.
func (b *ResponseBuilder) ReturnValue(v []byte) *ResponseBuilder {
	b.m.update(b.key, func(r *Response) { r.Value = v })
	return b
}

// ReturnKeys sets keys returned by KEYS.
func (b *ResponseBuilder) ReturnKeys(keys []string) *ResponseBuilder {
	b.m.update(b.key, func(r *Response) { r.Keys = append([]string(nil), keys...) })
	return b
}

// ReturnError sets an error for the configured operation.
func (b *ResponseBuilder) ReturnError(err error) *Client {
	b.m.update(b.key, func(r *Response) { r.Err = err })
	return b.m
}

// StoreOnSet controls whether a configured SET without error updates the store (default true).
func (b *ResponseBuilder) StoreOnSet(v bool) *ResponseBuilder {
	b.m.update(b.key, func(r *Response) { r.storeOnSet = &v })
	return b
}

// Call records an operation performed against the mock.
type Call struct {
	Op    string
	Key   string
	Value []byte
}

// Client is an in-memory kv.KV whose operations are spied. It can be used
// directly or through Object, which returns the underlying Fake.
type Client struct {
	*standin.Mock[Fake]

	mu        sync.Mutex
	store     map[string][]byte
	responses map[string]Response
}

var _ kv.KV = (*Client)(nil)

// New creates a new mock KV client.
func New(t testing.TB, cfg Config, opts ...standin.Option) *Client {
	t.Helper()

	st := make(map[string][]byte)
	for k, v := range cfg.Seed {
		st[k] = append([]byte(nil), v...)
	}

	m := &Client{
		store:     st,
		responses: make(map[string]Response),
	}

	m.Mock = standin.New(t, Fake{
		GetFunc:    m.get,
		SetFunc:    m.set,
		DeleteFunc: m.delete,
		KeysFunc:   m.keys,
		CloseFunc:  func() error { return nil },
	}, opts...)
	return m
}

// OnGet configures a GET response for a key.
func (m *Client) OnGet(key string) *ResponseBuilder {
	return &ResponseBuilder{m: m, key: OpGet + " " + key}
}

// OnSet configures a SET response for a key.
func (m *Client) OnSet(key string) *ResponseBuilder {
	return &ResponseBuilder{m: m, key: OpSet + " " + key}
}

// OnDelete configures a DELETE response for a key.
func (m *Client) OnDelete(key string) *ResponseBuilder {
	return &ResponseBuilder{m: m, key: OpDelete + " " + key}
}

// OnKeys configures the KEYS response.
func (m *Client) OnKeys() *ResponseBuilder { return &ResponseBuilder{m: m, key: OpKeys} }

// Get implements kv.KV.
func (m *Client) Get(key string) ([]byte, error) { return m.Object().Get(key) }

// Set implements kv.KV.
func (m *Client) Set(key string, value []byte) error { return m.Object().Set(key, value) }

// Delete implements kv.KV.
func (m *Client) Delete(key string) error { return m.Object().Delete(key) }

// Keys implements kv.KV.
func (m *Client) Keys() ([]string, error) { return m.Object().Keys() }

// Close implements kv.KV.
func (m *Client) Close() error { return m.Object().Close() }

// Spy returns the spy recording op, or nil for an unknown op.
func (m *Client) Spy(op string) *spy.Spy {
	switch op {
	case OpGet:
		return standin.SpyOf(m.Mock, func(f *Fake) *func(string) ([]byte, error) { return &f.GetFunc })
	case OpSet:
		return standin.SpyOf(m.Mock, func(f *Fake) *func(string, []byte) error { return &f.SetFunc })
	case OpDelete:
		return standin.SpyOf(m.Mock, func(f *Fake) *func(string) error { return &f.DeleteFunc })
	case OpKeys:
		return standin.SpyOf(m.Mock, func(f *Fake) *func() ([]string, error) { return &f.KeysFunc })
	}
	return nil
}

// Calls returns the recorded calls of op.
func (m *Client) Calls(op string) []Call {
	recorded := m.Spy(op).Calls()

	out := make([]Call, 0, len(recorded))
	for _, c := range recorded {
		call := Call{Op: op}
		if len(c.Args) > 0 {
			call.Key, _ = c.Args[0].(string)
		}
		if len(c.Args) > 1 {
			call.Value, _ = c.Args[1].([]byte)
		}
		out = append(out, call)
	}
	return out
}

func (m *Client) update(key string, fn func(*Response)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := m.responses[key]
	fn(&r)
	m.responses[key] = r
}

func (m *Client) response(key string) (Response, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.responses[key]
	return r, ok
}

// ensureStoreOnSet returns the effective storeOnSet flag for a response.
func ensureStoreOnSet(r Response) bool {
	if r.storeOnSet == nil {
		return true
	}
	return *r.storeOnSet
}

func (m *Client) get(key string) ([]byte, error) {
	if key == "" {
		return nil, kv.ErrInvalidKey
	}
	if r, ok := m.response(OpGet + " " + key); ok {
		return r.Value, r.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.store[key]
	if !ok {
		return nil, kv.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Client) set(key string, value []byte) error {
	if key == "" {
		return kv.ErrInvalidKey
	}
	if value == nil {
		return kv.ErrInvalidValue
	}

	r, ok := m.response(OpSet + " " + key)
	if ok && r.Err != nil {
		return r.Err
	}
	if ok && !ensureStoreOnSet(r) {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[key] = append([]byte(nil), value...)
	return nil
}

func (m *Client) delete(key string) error {
	if key == "" {
		return kv.ErrInvalidKey
	}
	if r, ok := m.response(OpDelete + " " + key); ok {
		return r.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.store[key]; !ok {
		return kv.ErrKeyNotFound
	}
	delete(m.store, key)
	return nil
}

func (m *Client) keys() ([]string, error) {
	if r, ok := m.response(OpKeys); ok {
		return append([]string(nil), r.Keys...), r.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.store))
	for k := range m.store {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
