//go:build !z3
// +build !z3

package solver

import "github.com/pkg/errors"

// NewZ3 returns an error: Z3 support is not compiled in.
func NewZ3(opts Options) (Context, error) {
	return nil, errors.New("z3 solver not available - rebuild with '-tags z3' to enable")
}
