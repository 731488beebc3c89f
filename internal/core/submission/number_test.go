package submission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	cases := map[string]float64{
		"":           0,
		"  ":         0,
		"1200":       1200,
		" 12.5 ":     12.5,
		"85,00,000":  8500000,
		"1_000":      1000,
		"abc":        0,
		"12abc":      0,
		"-3":         -3,
		"NaN":        0,
		"Inf":        0,
		"1e3":        1000,
		"0":          0,
		"0000012.50": 12.5,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseNumber(in), "input %q", in)
	}
}
