package hostmock

import (
	"errors"
	"fmt"
	"testing"

	wapc "github.com/wapc/wapc-guest-tinygo"
	"google.golang.org/protobuf/proto"

	"github.com/tarmac-project/standin"
	"github.com/tarmac-project/standin/spy"
)

var (
	// ErrUnexpectedNamespace is returned when the namespace is not as expected.
	ErrUnexpectedNamespace = errors.New("unexpected namespace")

	// ErrUnexpectedCapability is returned when the capability is not as expected.
	ErrUnexpectedCapability = errors.New("unexpected capability")

	// ErrUnexpectedFunction is returned when the function is not as expected.
	ErrUnexpectedFunction = errors.New("unexpected function")

	// ErrOperationFailed is returned when Fail is set without a custom error.
	ErrOperationFailed = errors.New("operation failed")

	// ErrInvalidPayload is returned by ProtoPayload validators when the payload
	// does not decode.
	ErrInvalidPayload = errors.New("invalid protobuf payload")
)

// HostCallFunc matches the signature of wapc.HostCall.
type HostCallFunc func(namespace, capability, function string, payload []byte) ([]byte, error)

// Host is the waPC host boundary as seen by a component.
type Host struct {
	// HostCall performs a call on the host.
	HostCall HostCallFunc
}

// Config describes how the pretend host answers.
type Config struct {
	// ExpectedNamespace defines the namespace expected in the host call.
	ExpectedNamespace string

	// ExpectedCapability defines the capability expected in the host call.
	ExpectedCapability string

	// ExpectedFunction defines the function name expected in the host call.
	ExpectedFunction string

	// Error is the error to return if the mock is configured to fail.
	Error error

	// PayloadValidator validates the payload passed to the host call.
	PayloadValidator func([]byte) error

	// Response defines the response to return for the host call.
	Response func() []byte

	// Fail indicates whether the mock should return an error.
	Fail bool
}

// Handler returns a HostCallFunc answering according to c.
func (c Config) Handler() HostCallFunc {
	return func(namespace, capability, function string, payload []byte) ([]byte, error) {
		// Return user-defined error if Fail is set
		if c.Fail && c.Error != nil {
			return nil, c.Error
		}

		if c.Fail {
			return nil, ErrOperationFailed
		}

		if c.ExpectedNamespace != namespace {
			return nil, fmt.Errorf(
				"%w: expected namespace %s, got %s",
				ErrUnexpectedNamespace,
				c.ExpectedNamespace,
				namespace,
			)
		}

		if c.ExpectedCapability != capability {
			return nil, fmt.Errorf(
				"%w: expected capability %s, got %s",
				ErrUnexpectedCapability,
				c.ExpectedCapability,
				capability,
			)
		}

		if c.ExpectedFunction != function {
			return nil, fmt.Errorf("%w: expected function %s, got %s", ErrUnexpectedFunction, c.ExpectedFunction, function)
		}

		if c.PayloadValidator != nil {
			if err := c.PayloadValidator(payload); err != nil {
				return nil, err
			}
		}

		if c.Response != nil {
			return c.Response(), nil
		}

		// Default to no response
		return nil, nil
	}
}

// Call is a host call observed by a Mock.
type Call struct {
	Namespace  string
	Capability string
	Function   string
	Payload    []byte
}

// Mock is a stand-in Host whose HostCall is observed.
type Mock struct {
	*standin.Mock[Host]
}

func hostCall(h *Host) *HostCallFunc { return &h.HostCall }

// New returns a Mock answering host calls according to cfg.
func New(t testing.TB, cfg Config, opts ...standin.Option) *Mock {
	t.Helper()

	m := &Mock{Mock: standin.Of[Host](t, opts...)}
	m.Configure(cfg)
	return m
}

// Passthrough returns a Mock that forwards every call to the real waPC host
// while recording it.
func Passthrough(t testing.TB, opts ...standin.Option) *Mock {
	t.Helper()
	return &Mock{Mock: standin.New(t, Host{HostCall: wapc.HostCall}, opts...)}
}

// Configure replaces the answers of m with those described by cfg. The
// HostCall spy is kept and its history reset.
func (m *Mock) Configure(cfg Config) *Mock {
	standin.Setup(m.Mock, hostCall).Is(cfg.Handler())
	return m
}

// HostCall calls the stand-in's HostCall.
func (m *Mock) HostCall(namespace, capability, function string, payload []byte) ([]byte, error) {
	return m.Object().HostCall(namespace, capability, function, payload)
}

// Spy returns the spy recording HostCall.
func (m *Mock) Spy() *spy.Spy {
	return standin.SpyOf(m.Mock, hostCall)
}

// Calls returns the host calls recorded since the last Configure.
func (m *Mock) Calls() []Call {
	recorded := m.Spy().Calls()

	out := make([]Call, 0, len(recorded))
	for _, c := range recorded {
		if len(c.Args) != 4 {
			continue
		}

		call := Call{}
		call.Namespace, _ = c.Args[0].(string)
		call.Capability, _ = c.Args[1].(string)
		call.Function, _ = c.Args[2].(string)
		call.Payload, _ = c.Args[3].([]byte)
		out = append(out, call)
	}

	return out
}

// ProtoPayload returns a PayloadValidator that decodes the payload into the
// message produced by newMsg and hands it to check. A nil check only
// verifies that the payload decodes.
func ProtoPayload[M proto.Message](newMsg func() M, check func(M) error) func([]byte) error {
	return func(payload []byte) error {
		msg := newMsg()
		if err := proto.Unmarshal(payload, msg); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}

		if check == nil {
			return nil
		}
		return check(msg)
	}
}

// ProtoResponse returns a Response that always answers with msg encoded. The
// message is encoded once; a message that does not encode fails the test.
func ProtoResponse(t testing.TB, msg proto.Message) func() []byte {
	t.Helper()

	b, err := proto.Marshal(msg)
	if err != nil {
		t.Fatalf("hostmock: encoding response: %v", err)
	}

	return func() []byte { return b }
}
