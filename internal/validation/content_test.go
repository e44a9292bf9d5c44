package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireText(t *testing.T) {
	t.Parallel()

	got, err := RequireText("title", "  Hello  ", MaxTitleLength)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got)

	_, err = RequireText("title", "   ", MaxTitleLength)
	assert.EqualError(t, err, "title is required")

	_, err = RequireText("title", strings.Repeat("x", MaxTitleLength+1), MaxTitleLength)
	assert.Error(t, err)

	// Limits count runes, not bytes.
	_, err = RequireText("title", strings.Repeat("é", MaxTitleLength), MaxTitleLength)
	assert.NoError(t, err)
}

func TestValidateMediaURLs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		urls    []string
		wantErr bool
	}{
		{"Empty", nil, false},
		{"Valid", []string{"https://cdn.example.com/a.png", "http://x.io/b.gif"}, false},
		{"Relative", []string{"/uploads/a.png"}, true},
		{"Bad Scheme", []string{"javascript:alert(1)"}, true},
		{"Too Many", make([]string, MaxMediaURLs+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMediaURLs(tt.urls)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
