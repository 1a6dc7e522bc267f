package hostmock_test

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkproto "github.com/tarmac-project/protobuf-go/sdk"
	proto "github.com/tarmac-project/protobuf-go/sdk/kvstore"
	pb "google.golang.org/protobuf/proto"

	"github.com/tarmac-project/standin"
	"github.com/tarmac-project/standin/hostmock"
	"github.com/tarmac-project/standin/spy"
)

type TestCase struct {
	name       string
	cfg        hostmock.Config
	payload    []byte
	namespace  string
	capability string
	function   string
	want       []byte
	wantErr    error
}

var ErrMockError = errors.New("Mock error")

func backends() []spy.Backend {
	return []spy.Backend{spy.Testify(), spy.Gomock()}
}

func TestHostMock(t *testing.T) {
	tt := []TestCase{
		{
			name: "Routed Call",
			cfg: hostmock.Config{
				ExpectedNamespace:  "test",
				ExpectedCapability: "test",
				ExpectedFunction:   "test",
				PayloadValidator: func(_ []byte) error {
					return nil
				},
				Response: func() []byte {
					return []byte("test")
				},
			},
			namespace:  "test",
			capability: "test",
			function:   "test",
			payload:    []byte("test"),
			want:       []byte("test"),
		},
		{
			name: "Custom Failure",
			cfg: hostmock.Config{
				ExpectedNamespace:  "test",
				ExpectedCapability: "test",
				ExpectedFunction:   "test",
				Error:              ErrMockError,
				Fail:               true,
				Response: func() []byte {
					return []byte("test")
				},
			},
			namespace:  "test",
			capability: "test",
			function:   "test",
			payload:    []byte("test"),
			wantErr:    ErrMockError,
		},
		{
			name: "Default fail error",
			cfg: hostmock.Config{
				ExpectedNamespace:  "test",
				ExpectedCapability: "test",
				ExpectedFunction:   "test",
				Fail:               true,
			},
			namespace:  "test",
			capability: "test",
			function:   "test",
			payload:    []byte("whatever"),
			wantErr:    hostmock.ErrOperationFailed,
		},
		{
			name: "Nil response returns nil",
			cfg: hostmock.Config{
				ExpectedNamespace:  "test",
				ExpectedCapability: "test",
				ExpectedFunction:   "test",
			},
			namespace:  "test",
			capability: "test",
			function:   "test",
			payload:    []byte("ok"),
		},
		{
			name: "Invalid Payload Format",
			cfg: hostmock.Config{
				ExpectedNamespace:  "test",
				ExpectedCapability: "test",
				ExpectedFunction:   "test",
				PayloadValidator: func(payload []byte) error {
					if string(payload) != "valid" {
						return ErrMockError
					}
					return nil
				},
			},
			namespace:  "test",
			capability: "test",
			function:   "test",
			payload:    []byte("invalid"),
			wantErr:    ErrMockError,
		},
		{
			name: "Unexpected Namespace",
			cfg: hostmock.Config{
				ExpectedNamespace:  "expected",
				ExpectedCapability: "test",
				ExpectedFunction:   "test",
			},
			namespace:  "test",
			capability: "test",
			function:   "test",
			wantErr:    hostmock.ErrUnexpectedNamespace,
		},
		{
			name: "Unexpected Capability",
			cfg: hostmock.Config{
				ExpectedNamespace:  "test",
				ExpectedCapability: "expected",
				ExpectedFunction:   "test",
			},
			namespace:  "test",
			capability: "test",
			function:   "test",
			wantErr:    hostmock.ErrUnexpectedCapability,
		},
		{
			name: "Unexpected Function",
			cfg: hostmock.Config{
				ExpectedNamespace:  "test",
				ExpectedCapability: "test",
				ExpectedFunction:   "expected",
			},
			namespace:  "test",
			capability: "test",
			function:   "test",
			wantErr:    hostmock.ErrUnexpectedFunction,
		},
	}

	for _, b := range backends() {
		for _, tc := range tt {
			t.Run(b.Name()+"/"+tc.name, func(t *testing.T) {
				mock := hostmock.New(t, tc.cfg, standin.WithBackend(b))

				got, err := mock.HostCall(tc.namespace, tc.capability, tc.function, tc.payload)
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Mock call returned unexpected error: got %v, want %v", err, tc.wantErr)
				}

				if !bytes.Equal(got, tc.want) {
					t.Fatalf("Mock call returned unexpected response: got %v, want %v", got, tc.want)
				}

				calls := mock.Calls()
				if len(calls) != 1 {
					t.Fatalf("Mock recorded %d calls, want 1", len(calls))
				}

				want := hostmock.Call{
					Namespace:  tc.namespace,
					Capability: tc.capability,
					Function:   tc.function,
					Payload:    tc.payload,
				}
				assert.Equal(t, want, calls[0])
			})
		}
	}
}

// kvSet is a minimal component issuing a kvstore set through the host.
func kvSet(host hostmock.HostCallFunc, key string, data []byte) error {
	req, err := pb.Marshal(&proto.KVStoreSet{Key: key, Data: data})
	if err != nil {
		return err
	}

	b, err := host("tarmac", "kvstore", "set", req)
	if err != nil {
		return fmt.Errorf("host call failed: %w", err)
	}

	var resp proto.KVStoreSetResponse
	if err := pb.Unmarshal(b, &resp); err != nil {
		return err
	}

	if code := resp.GetStatus().GetCode(); code != 0 {
		return fmt.Errorf("host returned status %d: %s", code, resp.GetStatus().GetStatus())
	}

	return nil
}

func TestProtoPayload(t *testing.T) {
	ok := hostmock.ProtoResponse(t, &proto.KVStoreSetResponse{Status: &sdkproto.Status{Status: "OK", Code: 0}})

	expectKey := func(key string) func(*proto.KVStoreSet) error {
		return func(req *proto.KVStoreSet) error {
			if req.GetKey() != key {
				return fmt.Errorf("unexpected key: %s", req.GetKey())
			}
			return nil
		}
	}

	newSet := func() *proto.KVStoreSet { return new(proto.KVStoreSet) }

	for _, b := range backends() {
		t.Run(b.Name(), func(t *testing.T) {
			t.Run("Matching Message", func(t *testing.T) {
				m := hostmock.New(t, hostmock.Config{
					ExpectedNamespace:  "tarmac",
					ExpectedCapability: "kvstore",
					ExpectedFunction:   "set",
					PayloadValidator:   hostmock.ProtoPayload(newSet, expectKey("key1")),
					Response:           ok,
				}, standin.WithBackend(b))

				require.NoError(t, kvSet(m.HostCall, "key1", []byte("value1")))
				require.Equal(t, 1, m.Spy().CallCount())

				var sent proto.KVStoreSet
				require.NoError(t, pb.Unmarshal(m.Calls()[0].Payload, &sent))
				assert.Equal(t, []byte("value1"), sent.GetData())
			})

			t.Run("Check Fails", func(t *testing.T) {
				m := hostmock.New(t, hostmock.Config{
					ExpectedNamespace:  "tarmac",
					ExpectedCapability: "kvstore",
					ExpectedFunction:   "set",
					PayloadValidator:   hostmock.ProtoPayload(newSet, expectKey("key1")),
					Response:           ok,
				}, standin.WithBackend(b))

				err := kvSet(m.HostCall, "other", []byte("value1"))
				assert.ErrorContains(t, err, "unexpected key: other")
			})

			t.Run("Undecodable Payload", func(t *testing.T) {
				m := hostmock.New(t, hostmock.Config{
					ExpectedNamespace:  "tarmac",
					ExpectedCapability: "kvstore",
					ExpectedFunction:   "set",
					PayloadValidator:   hostmock.ProtoPayload(newSet, nil),
				}, standin.WithBackend(b))

				_, err := m.HostCall("tarmac", "kvstore", "set", []byte("invalid"))
				assert.ErrorIs(t, err, hostmock.ErrInvalidPayload)
			})

			t.Run("Host Status", func(t *testing.T) {
				m := hostmock.New(t, hostmock.Config{
					ExpectedNamespace:  "tarmac",
					ExpectedCapability: "kvstore",
					ExpectedFunction:   "set",
					Response: hostmock.ProtoResponse(t, &proto.KVStoreSetResponse{
						Status: &sdkproto.Status{Status: "Failed", Code: 500},
					}),
				}, standin.WithBackend(b))

				err := kvSet(m.HostCall, "key1", []byte("value1"))
				assert.ErrorContains(t, err, "status 500")
			})
		})
	}
}

func TestConfigure(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.Name(), func(t *testing.T) {
			m := hostmock.New(t, hostmock.Config{Fail: true}, standin.WithBackend(b))

			_, err := m.HostCall("tarmac", "kvstore", "set", nil)
			require.ErrorIs(t, err, hostmock.ErrOperationFailed)
			s := m.Spy()

			m.Configure(hostmock.Config{
				ExpectedNamespace:  "tarmac",
				ExpectedCapability: "kvstore",
				ExpectedFunction:   "set",
				Response:           func() []byte { return []byte("ok") },
			})

			got, err := m.HostCall("tarmac", "kvstore", "set", nil)
			require.NoError(t, err)
			assert.Equal(t, []byte("ok"), got)
			assert.Same(t, s, m.Spy())
			assert.Equal(t, 1, s.CallCount())
		})
	}
}

func TestInjectedHost(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.Name(), func(t *testing.T) {
			m := hostmock.New(t, hostmock.Config{}, standin.WithBackend(b))

			// The stand-in itself can be handed to a component expecting a Host.
			host := m.Object()
			standin.Setup(m.Mock, func(h *hostmock.Host) *hostmock.HostCallFunc { return &h.HostCall }).
				Is(func(_, _, _ string, payload []byte) ([]byte, error) { return payload, nil })

			got, err := host.HostCall("a", "b", "c", []byte("echo"))
			require.NoError(t, err)
			assert.Equal(t, []byte("echo"), got)
			assert.Len(t, m.Calls(), 1)
		})
	}
}

func TestPassthroughIsSpied(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.Name(), func(t *testing.T) {
			m := hostmock.Passthrough(t, standin.WithBackend(b))

			require.NotNil(t, m.Spy())
			assert.NotNil(t, m.Object().HostCall)
			assert.False(t, m.Spy().Called())
		})
	}
}
