/*
Package hostmock provides a friendly pretend host for waPC calls.

It's designed for tests of components that talk to the Tarmac host through a
HostCall function, where you want to validate exactly what a component is
sending without needing a real host running. No real hosts were harmed in the
making of these tests.

Why use hostmock?

  - Validate routing: ensure calls use the expected namespace, capability, and function.
  - Inspect payloads: plug in a PayloadValidator, or build one with ProtoPayload.
  - Script responses: return custom bytes, encoded messages, or simulate failures.
  - Count calls: HostCall is spied, so Calls and Spy report what was sent.

Quick start

	m := hostmock.New(t, hostmock.Config{
	  ExpectedNamespace:  "tarmac",
	  ExpectedCapability: "kvstore",
	  ExpectedFunction:   "set",
	  PayloadValidator: hostmock.ProtoPayload(
	    func() *kvstore.KVStoreSet { return new(kvstore.KVStoreSet) },
	    func(req *kvstore.KVStoreSet) error { return nil },
	  ),
	  Response: hostmock.ProtoResponse(t, &kvstore.KVStoreSetResponse{}),
	})

	// Inject into a component under test
	client := NewClient(m.HostCall)

Behavior

  - If Fail is true and Error is set, HostCall returns that error.
  - If Fail is true and Error is nil, HostCall returns ErrOperationFailed.
  - Otherwise, HostCall enforces ExpectedNamespace/Capability/Function and runs
    PayloadValidator when provided. If everything is in order, Response (when set)
    provides the return bytes; otherwise it returns nil.

Configure swaps the answers mid-test and resets the recorded calls.
Passthrough records calls while forwarding them to the real host through
wapc.HostCall; it is only useful inside a WebAssembly guest.

Tips

  - Use table-driven tests for different routing and payload cases.
  - Keep the validator small and focused: decode, assert, return.
  - Prefer component mocks unless you truly need wire-level checks.
*/
package hostmock
