package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil stays nil", nil, nil},
		{"broker list from env", []string{" kafka-1:9092", "kafka-2:9092 ", "kafka-1:9092"}, []string{"kafka-1:9092", "kafka-2:9092"}},
		{"blanks dropped", []string{"", "  ", "kafka-1:9092"}, []string{"kafka-1:9092"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DedupeAndTrim(tc.in))
		})
	}
}
