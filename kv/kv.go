package kv

import (
	"errors"
	"fmt"

	sdkproto "github.com/tarmac-project/protobuf-go/sdk"
	proto "github.com/tarmac-project/protobuf-go/sdk/kvstore"
	wapc "github.com/wapc/wapc-guest-tinygo"
	pb "google.golang.org/protobuf/proto"
)

// DefaultNamespace is used when no explicit namespace is provided.
const DefaultNamespace = "tarmac"

const capability = "kvstore"

// KV is the key-value capability available to a function.
type KV interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Keys() ([]string, error)
	Close() error
}

var (
	// ErrInvalidKey is returned for empty keys.
	ErrInvalidKey = errors.New("key is invalid")

	// ErrInvalidValue is returned when Set is given a nil value.
	ErrInvalidValue = errors.New("value is invalid")

	// ErrKeyNotFound is returned when the key does not exist.
	ErrKeyNotFound = errors.New("key not found")

	// ErrHostCall indicates that a waPC host invocation failed.
	ErrHostCall = errors.New("host call failed")

	// ErrHostResponseInvalid signals that the host returned an invalid or unexpected payload.
	ErrHostResponseInvalid = errors.New("host response is invalid or unexpected")

	// ErrHostError means the host completed the call but reported a failure status.
	ErrHostError = errors.New("host returned an error status")
)

// Config configures a Client.
type Config struct {
	// Namespace controls the function namespace to use for host callbacks.
	// If empty, DefaultNamespace is used.
	Namespace string

	// HostCall performs the waPC call. If nil, wapc.HostCall is used.
	HostCall func(namespace, capability, function string, payload []byte) ([]byte, error)
}

// Client talks to the key-value capability over waPC.
type Client struct {
	namespace string
	hostCall  func(string, string, string, []byte) ([]byte, error)
}

// New returns a Client. Zero-value fields of cfg take their defaults.
func New(cfg Config) (*Client, error) {
	c := &Client{namespace: DefaultNamespace, hostCall: wapc.HostCall}

	if cfg.Namespace != "" {
		c.namespace = cfg.Namespace
	}

	if cfg.HostCall != nil {
		c.hostCall = cfg.HostCall
	}

	return c, nil
}

// Close implements KV.
func (c *Client) Close() error { return nil }

// Get implements KV.
func (c *Client) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}

	var resp proto.KVStoreGetResponse
	if err := c.call("get", &proto.KVStoreGet{Key: key}, &resp); err != nil {
		return nil, err
	}

	if err := check(resp.GetStatus()); err != nil {
		return nil, err
	}

	return resp.GetData(), nil
}

// Set implements KV.
func (c *Client) Set(key string, value []byte) error {
	if key == "" {
		return ErrInvalidKey
	}

	if value == nil {
		return ErrInvalidValue
	}

	var resp proto.KVStoreSetResponse
	if err := c.call("set", &proto.KVStoreSet{Key: key, Data: value}, &resp); err != nil {
		return err
	}

	return check(resp.GetStatus())
}

// Delete implements KV.
func (c *Client) Delete(key string) error {
	if key == "" {
		return ErrInvalidKey
	}

	var resp proto.KVStoreDeleteResponse
	if err := c.call("delete", &proto.KVStoreDelete{Key: key}, &resp); err != nil {
		return err
	}

	return check(resp.GetStatus())
}

// Keys implements KV.
func (c *Client) Keys() ([]string, error) {
	var resp proto.KVStoreKeysResponse
	if err := c.call("keys", &proto.KVStoreKeys{}, &resp); err != nil {
		return nil, err
	}

	if err := check(resp.GetStatus()); err != nil {
		return nil, err
	}

	return resp.GetKeys(), nil
}

func (c *Client) call(function string, req, resp pb.Message) error {
	payload, err := pb.Marshal(req)
	if err != nil {
		return fmt.Errorf("%w: encoding request: %w", ErrHostCall, err)
	}

	b, err := c.hostCall(c.namespace, capability, function, payload)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrHostCall, err)
	}

	if err := pb.Unmarshal(b, resp); err != nil {
		return fmt.Errorf("%w: %w", ErrHostResponseInvalid, err)
	}

	return nil
}

func check(status *sdkproto.Status) error {
	if status == nil {
		return fmt.Errorf("%w: missing status", ErrHostResponseInvalid)
	}

	switch status.GetCode() {
	case 0, 200:
		return nil
	case 400:
		return fmt.Errorf("%w: %s", ErrHostResponseInvalid, status.GetStatus())
	case 404:
		return ErrKeyNotFound
	}

	return fmt.Errorf("%w: %d %s", ErrHostError, status.GetCode(), status.GetStatus())
}
