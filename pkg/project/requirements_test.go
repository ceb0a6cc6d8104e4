package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeisme/smartrepo/pkg/generator"
	"github.com/yeisme/smartrepo/pkg/tools"
)

func TestCreateRequirements(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "requirements.txt")
	var buf bytes.Buffer

	require.NoError(t, ExecuteCreateRequirementsCommand(RequirementsOptions{Path: path}, &buf))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Requirements, string(data))
	assert.Contains(t, string(data), "radon>=6.0")
	assert.Contains(t, string(data), "bandit>=1.7.5")
	assert.Contains(t, string(data), "pylint>=3.0")
	assert.Contains(t, string(data), "flake8>=6.0")
	assert.Contains(t, buf.String(), "requirements.txt created")

	require.NoError(t, os.WriteFile(path, []byte("custom\n"), 0o644))
	err = ExecuteCreateRequirementsCommand(RequirementsOptions{Path: path}, &buf)
	assert.ErrorIs(t, err, ErrRequirementsExist)
	data, _ = os.ReadFile(path)
	assert.Equal(t, "custom\n", string(data))

	require.NoError(t, ExecuteCreateRequirementsCommand(RequirementsOptions{Path: path, Force: true}, &buf))
	data, _ = os.ReadFile(path)
	assert.Equal(t, Requirements, string(data))
}

func TestCreateRequirements_DirectoryTarget(t *testing.T) {
	err := ExecuteCreateRequirementsCommand(RequirementsOptions{Path: t.TempDir(), Force: true}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestErrorChain(t *testing.T) {
	err := fmt.Errorf("analyze: %w", ErrProjectNotFound)
	lines := ErrorChain(err)
	require.Len(t, lines, 2)
	assert.Equal(t, "*fmt.wrapError: analyze: project path does not exist", lines[0])
	assert.Equal(t, "  *errors.errorString: project path does not exist", lines[1])

	deep := fmt.Errorf("run: %w", fmt.Errorf("scan: %w", ErrNotDirectory))
	lines = ErrorChain(deep)
	require.Len(t, lines, 3)
	assert.Equal(t, "    *errors.errorString: project path is not a directory", lines[2])

	joined := errors.Join(fmt.Errorf("subproject a: %w", generator.ErrOutputWrite), ErrNotDirectory)
	lines = ErrorChain(joined)
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "*errors.joinError")
	assert.Equal(t, "  *fmt.wrapError: subproject a: "+generator.ErrOutputWrite.Error(), lines[1])
	assert.Equal(t, "    *errors.errorString: "+generator.ErrOutputWrite.Error(), lines[2])
	assert.Equal(t, "  *errors.errorString: project path is not a directory", lines[3])

	assert.Nil(t, ErrorChain(nil))
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(fmt.Errorf("x: %w", generator.ErrOutputWrite)))
	assert.True(t, IsFatal(errors.Join(errors.New("a"), ErrProjectNotFound)))
	assert.False(t, IsFatal(&tools.MissingToolError{Tool: "bandit", Install: "pip install bandit"}))
	assert.False(t, IsFatal(nil))
}
