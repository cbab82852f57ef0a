package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bimmerbailey/ryulog/internal/config"
	"github.com/bimmerbailey/ryulog/internal/watch"
)

func TestWatchDebounce(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		flag    string
		want    time.Duration
		wantErr bool
	}{
		{name: "config value", config: "5s", want: 5 * time.Second},
		{name: "flag overrides config", config: "5s", flag: "500ms", want: 500 * time.Millisecond},
		{name: "empty falls back", want: watch.DefaultDebounce},
		{name: "invalid", config: "soon", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			cmd := newTestCmd(&out, &errOut, func(c *cobra.Command) {
				c.Flags().String("debounce", "", "")
			})
			if tt.flag != "" {
				require.NoError(t, cmd.Flags().Set("debounce", tt.flag))
			}

			got, err := watchDebounce(cmd, &config.Config{Watch: config.WatchConfig{Debounce: tt.config}})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
