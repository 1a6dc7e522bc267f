/*
Package mock provides an in-memory implementation of the kv.KV interface for
testing Tarmac functions.

The store can be pre-seeded, configured with per-operation overrides, and
every operation is recorded by a spy, so assertions work the same way as for
any other standin.Mock.

# Basic Usage

	func TestSomething(t *testing.T) {
		m := mock.New(t, mock.Config{Seed: map[string][]byte{"a": []byte("1")}})
		v, err := m.Get("a")
		// assert v == "1" and err == nil
	}

# Overriding Behavior

Override responses per operation/key using a fluent builder:

	m.OnGet("missing").ReturnValue(nil).ReturnError(kv.ErrKeyNotFound)
	m.OnSet("bad").ReturnError(fmt.Errorf("reject set"))
	m.OnDelete("ghost").ReturnError(kv.ErrKeyNotFound)
	m.OnKeys().ReturnKeys([]string{"x","y"})

Whole operations can be replaced with standin.Setup on the Fake fields.

# Inspecting Calls

	for _, c := range m.Calls(mock.OpSet) {
		// c.Key, c.Value
	}
*/
package mock
