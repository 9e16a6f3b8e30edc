package fiber_test

import (
	"testing"

	"github.com/delaneyj/fiberparty/fiber"
	"github.com/stretchr/testify/assert"
)

type boxed struct {
	v any
}

func TestSame(t *testing.T) {
	m := map[string]int{"a": 1}
	s := []int{1, 2, 3}
	p := &boxed{}
	fn := func() {}

	cases := []struct {
		name string
		a, b any
		want bool
	}{
		{"nil", nil, nil, true},
		{"nil and value", nil, 0, false},
		{"ints", 1, 1, true},
		{"different ints", 1, 2, false},
		{"different types", 1, int64(1), false},
		{"strings", "x", "x", true},
		{"pointers", p, p, true},
		{"distinct pointers", p, &boxed{}, false},
		{"same map", m, m, true},
		{"equal maps", m, map[string]int{"a": 1}, false},
		{"same slice", s, s, true},
		{"resliced", s, s[:2], false},
		{"equal slices", s, []int{1, 2, 3}, false},
		{"funcs", fn, fn, false},
		{"uncomparable payload", boxed{v: m}, boxed{v: m}, false},
		{"comparable payload", boxed{v: 1}, boxed{v: 1}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, tc.want, fiber.Same(tc.a, tc.b))
			})
		})
	}
}
