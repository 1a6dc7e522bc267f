/*
Package field resolves which struct field a selector names.

A selector is a one-argument function that returns the address of a single
field of its argument:

	name, err := field.Resolve(func(c *Client) *func() string { return &c.Name })
	// name == "Name"

The selector is run once against a zero-valued probe and the returned pointer
is matched against the probe's top-level fields by offset and type. Nothing
about the selector's source is inspected, so renames are caught by the
compiler rather than at run time.

Only direct field access resolves. Selectors that reach through an embedded
or nested struct, return a pointer to something other than the probe, or
dereference a nil pointer on the probe fail with ErrUnresolvable. A caller can
skip the selector entirely by passing the field name explicitly, which always
takes precedence.
*/
package field
