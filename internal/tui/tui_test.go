package tui

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Brownie44l1/analyart/internal/analyzer"
	"github.com/Brownie44l1/analyart/internal/labels"
	"github.com/Brownie44l1/analyart/internal/preprocess"
	"github.com/Brownie44l1/analyart/internal/session"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePredictor struct {
	scores []float32
}

func (f fakePredictor) Predict(context.Context, []float32) ([]float32, error) {
	return f.scores, nil
}

func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func writePNG(t *testing.T, dir string) string {
	t.Helper()
	return writeNamedPNG(t, dir, "painting.png")
}

func writeNamedPNG(t *testing.T, dir, name string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10))))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func readyModel(t *testing.T, scores []float32) Model {
	t.Helper()
	a, err := analyzer.New(fakePredictor{scores: scores}, analyzer.Options{
		Labels:     labels.Default,
		Preprocess: preprocess.Options{Size: 4},
	})
	require.NoError(t, err)

	m := New(context.Background(), analyzer.Preloaded(a), t.TempDir())
	updated, _ := m.Update(modelLoadedMsg{})
	return updated.(Model)
}

// findMsg executes cmd, descending into batches, and returns the first
// message of type T.
func findMsg[T any](t *testing.T, cmd tea.Cmd) T {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c == nil {
				continue
			}
			if found, ok := c().(T); ok {
				return found
			}
		}
		t.Fatalf("no %T in batch", *new(T))
	}
	found, ok := msg.(T)
	require.True(t, ok, "unexpected message %T", msg)
	return found
}

func TestLoadingView(t *testing.T) {
	m := New(context.Background(), analyzer.NewLoader(), t.TempDir())
	assert.Contains(t, m.View(), "Loading the AnalyArt engine")
}

func TestLoadFailureNeverEnables(t *testing.T) {
	l := analyzer.NewLoader()
	l.Start(context.Background(), func(context.Context) (*analyzer.Analyzer, error) {
		return nil, errors.New("network error")
	})

	m := New(context.Background(), l, t.TempDir())
	msg := m.waitForModel()
	updated, _ := m.Update(msg)
	m = updated.(Model)

	assert.Contains(t, m.View(), "System Error")
	assert.Contains(t, m.View(), "network error")

	m = m.selectFile(writePNG(t, t.TempDir()))
	assert.False(t, m.control.Enabled())

	updated, cmd := m.Update(key('i'))
	m = updated.(Model)
	assert.Nil(t, cmd)
	assert.Equal(t, session.Idle, m.control.State())
}

func TestIdentifyFlow(t *testing.T) {
	m := readyModel(t, []float32{0.91, 0.02, 0.03, 0.01, 0.02, 0.01})

	updated, cmd := m.Update(key('i'))
	m = updated.(Model)
	assert.Nil(t, cmd, "identify is disabled without an image")
	assert.Equal(t, session.Idle, m.control.State())

	m = m.selectFile(writePNG(t, t.TempDir()))
	assert.True(t, m.control.Enabled())
	assert.Contains(t, m.View(), "painting.png")

	updated, cmd = m.Update(key('i'))
	m = updated.(Model)
	assert.Equal(t, session.Analyzing, m.control.State())
	assert.Contains(t, m.View(), session.LabelAnalyzing)

	done := findMsg[identifiedMsg](t, cmd)
	require.NoError(t, done.err)

	updated, _ = m.Update(done)
	m = updated.(Model)
	assert.Equal(t, session.Ready, m.control.State())
	assert.Contains(t, m.View(), "Identified Movement: Realism")
	assert.Contains(t, m.View(), session.LabelIdentify)

	updated, _ = m.Update(key('r'))
	m = updated.(Model)
	assert.Equal(t, session.Idle, m.control.State())
	assert.NotContains(t, m.View(), "Identified Movement")
}

func TestIdentifyAlternateKey(t *testing.T) {
	m := readyModel(t, []float32{0.91, 0.02, 0.03, 0.01, 0.02, 0.01})
	m = m.selectFile(writePNG(t, t.TempDir()))

	updated, cmd := m.Update(key('a'))
	m = updated.(Model)
	assert.Equal(t, session.Analyzing, m.control.State())

	updated, _ = m.Update(findMsg[identifiedMsg](t, cmd))
	m = updated.(Model)
	assert.Contains(t, m.View(), "Identified Movement: Realism")
}

func TestResetDropsInFlightResult(t *testing.T) {
	m := readyModel(t, []float32{0.91, 0.02, 0.03, 0.01, 0.02, 0.01})
	dir := t.TempDir()

	m = m.selectFile(writeNamedPNG(t, dir, "first.png"))
	updated, firstCmd := m.Update(key('i'))
	m = updated.(Model)
	require.Equal(t, session.Analyzing, m.control.State())

	updated, _ = m.Update(key('r'))
	m = updated.(Model)
	require.Equal(t, session.Idle, m.control.State())

	m = m.selectFile(writeNamedPNG(t, dir, "second.png"))
	updated, secondCmd := m.Update(key('i'))
	m = updated.(Model)
	require.Equal(t, session.Analyzing, m.control.State())

	stale := findMsg[identifiedMsg](t, firstCmd)
	stale.result.Top.Label = "Stale"
	stale.result.Status = "Identified Movement: Stale"
	updated, _ = m.Update(stale)
	m = updated.(Model)
	assert.Equal(t, session.Analyzing, m.control.State())
	assert.Nil(t, m.control.Result())
	assert.NotContains(t, m.View(), "Stale")

	updated, _ = m.Update(findMsg[identifiedMsg](t, secondCmd))
	m = updated.(Model)
	assert.Equal(t, session.Ready, m.control.State())
	assert.Contains(t, m.View(), "second.png")
	assert.Contains(t, m.View(), "Identified Movement: Realism")
	assert.NotContains(t, m.View(), "Stale")
}

func TestIdentifyNotRecognized(t *testing.T) {
	m := readyModel(t, []float32{0.10, 0.15, 0.18, 0.19, 0.19, 0.19})
	m = m.selectFile(writePNG(t, t.TempDir()))

	updated, cmd := m.Update(key('i'))
	m = updated.(Model)
	updated, _ = m.Update(findMsg[identifiedMsg](t, cmd))
	m = updated.(Model)

	assert.Contains(t, m.View(), "Style not recognized")
	assert.NotContains(t, m.View(), "█")
}

func TestIdentifyMissingFile(t *testing.T) {
	m := readyModel(t, []float32{1})
	m = m.selectFile(filepath.Join(t.TempDir(), "gone.png"))

	updated, cmd := m.Update(key('i'))
	m = updated.(Model)
	done := findMsg[identifiedMsg](t, cmd)
	assert.Error(t, done.err)

	updated, _ = m.Update(done)
	m = updated.(Model)
	assert.Equal(t, session.Ready, m.control.State())
	assert.Contains(t, m.View(), "failed to read image")
}

func TestQuit(t *testing.T) {
	m := readyModel(t, nil)
	_, cmd := m.Update(key('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
