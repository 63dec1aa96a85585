// Package pkg roots the public extframe libraries. It holds no code of its
// own; the boundary tests beside it keep every library importable from
// outside the module.
package pkg
