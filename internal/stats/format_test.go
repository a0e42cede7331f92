package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes uint64
		want  string
	}{
		{name: "zero", bytes: 0, want: "0 B"},
		{name: "bytes", bytes: 512, want: "512 B"},
		{name: "kibibytes", bytes: 2048, want: "2.0 KiB"},
		{name: "mebibytes", bytes: 1048576, want: "1.0 MiB"},
		{name: "fractional mebibytes", bytes: 1572864, want: "1.5 MiB"},
		{name: "gibibytes", bytes: 1073741824, want: "1.0 GiB"},
		{name: "tebibytes", bytes: 1099511627776, want: "1.0 TiB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBytes(tt.bytes))
		})
	}
}
