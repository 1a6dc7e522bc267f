/*
Package kv provides a client for the Tarmac key-value capability.

The client serializes requests with project protobufs, forwards them to the
host with waPC, and maps the returned status onto errors. Zero-value Config
options fall back to DefaultNamespace and the default waPC host call.

Tests can inject host behaviour through Config.HostCall, typically with a
hostmock.Mock, or skip the host entirely with the in-memory fake from
package kv/mock.
*/
package kv
