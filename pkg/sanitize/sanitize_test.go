package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  hello  ", "hello"},
		{"<script>alert(1)</script>nice view", "nice view"},
		{"<b>bold</b> move", "bold move"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Text(tt.in))
	}
}
