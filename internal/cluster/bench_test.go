package cluster

import (
	"fmt"
	"math/rand/v2"
	"testing"
)

func BenchmarkSoft(b *testing.B) {
	for _, n := range []int{4, 6, 8} {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			c, err := NewSoft(n, ljMayer())
			if err != nil {
				b.Fatal(err)
			}
			bx := pointBox(b, randomPoints(rand.New(rand.NewPCG(1, 1)), n, 1.3)...)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = bx.Refresh()
				c.Value(bx)
			}
		})
	}
}

func BenchmarkDerivatives(b *testing.B) {
	c, err := NewDerivatives(5, 2, ljMayer())
	if err != nil {
		b.Fatal(err)
	}
	bx := pointBox(b, randomPoints(rand.New(rand.NewPCG(1, 1)), 5, 1.3)...)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = bx.Refresh()
		c.Values(bx)
	}
}
