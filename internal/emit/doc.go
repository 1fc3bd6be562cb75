// Package emit renders a merged index.Table into an artifact: Go source that
// builds a subscriber.Table, or a JSON / msgpack snapshot of the same data.
// Files are replaced atomically.
package emit
