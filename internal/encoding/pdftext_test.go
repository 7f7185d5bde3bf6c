package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestWindows1252(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "ASCII", input: "Invoice INV-1", want: "Invoice INV-1"},
		{name: "Latin1", input: "Café São Paulo", want: "Café São Paulo"},
		{name: "Euro", input: "€ 1.234,50", want: "€ 1.234,50"},
		{name: "Decomposable", input: "Ștefan Đorđe", want: "Stefan ?ord?e"},
		{name: "NoBase", input: "日本", want: "??"},
		{name: "Empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Windows1252(tt.input)

			decoded, err := charmap.Windows1252.NewDecoder().String(got)
			require.NoError(t, err)
			assert.Equal(t, tt.want, decoded)
		})
	}
}

func TestWindows1252_SingleBytePerRune(t *testing.T) {
	assert.Len(t, Windows1252("àé€"), 3)
}
