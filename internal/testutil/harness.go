package testutil

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/FormingWorlds/proteus-config/internal/app"
	"github.com/FormingWorlds/proteus-config/internal/config"
	"github.com/FormingWorlds/proteus-config/internal/hcl_adapter"
	"github.com/FormingWorlds/proteus-config/internal/toml_adapter"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of a resolution test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	Config    *config.Configuration
	App       *app.App
}

// ResolveDocument provides a standardized harness for end-to-end
// resolution tests: it writes the document to a temporary file, picks the
// loader from the file extension, and runs the full pipeline including
// the consistency checks.
func ResolveDocument(t *testing.T, filename, content string) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, filename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	var loader config.Loader
	if strings.HasSuffix(filename, ".hcl") {
		loader = hcl_adapter.NewLoader()
	} else {
		loader = toml_adapter.NewLoader()
	}

	appConfig, err := app.NewConfig(app.Config{
		ConfigPath: path,
		LogLevel:   "debug",
		LogFormat:  "text",
	})
	require.NoError(t, err)

	logBuffer := &SafeBuffer{}
	testApp := app.New(io.Discard, logBuffer, appConfig, loader)

	cfg, err := testApp.Resolve(context.Background())

	if os.Getenv("PROTEUS_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       err,
		Config:    cfg,
		App:       testApp,
	}
}
