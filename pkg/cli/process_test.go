package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosbache/multiImageTextOverlay/internal/config"
)

func TestProcessRejectsInvalidTextColor(t *testing.T) {
	cfg := config.New()
	cfg.Input = t.TempDir()
	cfg.Output = t.TempDir()
	cfg.Overlay.TextColor = "red"

	cmd := newProcessCommand(cfg)
	err := cmd.RunE(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid text color")
}

func TestProcessRejectsInvalidOutlineColor(t *testing.T) {
	cfg := config.New()
	cfg.Input = t.TempDir()
	cfg.Output = t.TempDir()
	cfg.Overlay.OutlineColor = "0,0"

	cmd := newProcessCommand(cfg)
	err := cmd.RunE(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid outline color")
}
