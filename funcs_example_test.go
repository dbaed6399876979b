package mathcast_test

import (
	"fmt"
	"math/big"

	"github.com/zephyrtronium/mathcast"
)

type nargin struct{}

func (nargin) CanCall(n int) bool {
	return true
}

func (nargin) Call(args []*big.Float, r *big.Float) error {
	r.SetInt64(int64(len(args)))
	return nil
}

func ExampleFunc() {
	s := mathcast.NewSession()
	opt := mathcast.WithFunc("nargin", nargin{})

	a := s.MustParse("nargin")
	b := s.MustParse("nargin(100)")
	c := s.MustParse("nargin(3, 2, 1)")
	for _, t := range []*mathcast.Term{a, b, c} {
		r, _ := s.Eval(t, opt)
		fmt.Println(r, t)
	}

	// Output:
	// 0 nargin
	// 1 nargin(100)
	// 3 nargin(3, 2, 1)
}
