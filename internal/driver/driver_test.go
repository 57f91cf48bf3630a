package driver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/locus/internal/config"
	"github.com/xkilldash9x/locus/internal/driver/cdp"
	"github.com/xkilldash9x/locus/internal/driver/pw"
	"github.com/xkilldash9x/locus/internal/driver/rod"
	"github.com/xkilldash9x/locus/internal/driver/snapshot"
)

// Every backend satisfies Session.
var (
	_ Session = (*cdp.Session)(nil)
	_ Session = (*rod.Session)(nil)
	_ Session = (*pw.Session)(nil)
	_ Session = (*snapshot.Document)(nil)
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input    string
		expected Kind
		wantErr  bool
	}{
		{"chrome", Chrome, false},
		{"Edge", Edge, false},
		{" FIREFOX ", Firefox, false},
		{"safari", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			k, err := ParseKind(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, k)
		})
	}
}

func TestParseKind_AcceptsEveryConfigKind(t *testing.T) {
	for _, name := range config.Kinds {
		b := config.BrowserConfig{Kind: name}
		require.NoError(t, b.Validate())

		k, err := ParseKind(name)
		require.NoError(t, err)
		assert.Equal(t, Kind(name), k)
	}
}

func TestOpen_UnknownKind(t *testing.T) {
	s, err := Open(context.Background(), config.BrowserConfig{Kind: "netscape"}, nil)
	assert.Nil(t, s)
	assert.ErrorContains(t, err, "unknown browser kind")
}
