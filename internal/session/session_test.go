package session

import (
	"errors"
	"testing"

	"github.com/Brownie44l1/analyart/internal/ranking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readyControl(t *testing.T) *Control {
	t.Helper()
	c := New()
	c.SetModelReady(true)
	require.NoError(t, c.SelectImage("painting.jpg"))
	return c
}

func TestInitialState(t *testing.T) {
	c := New()
	assert.Equal(t, Idle, c.State())
	assert.False(t, c.Enabled())
	assert.Equal(t, LabelIdentify, c.ButtonLabel())
	_, err := c.Begin()
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestNoModelNeverEnables(t *testing.T) {
	c := New()
	assert.ErrorIs(t, c.SelectImage("painting.jpg"), ErrModelUnavailable)
	assert.False(t, c.Enabled())
	_, err := c.Begin()
	assert.ErrorIs(t, err, ErrDisabled)
	assert.Equal(t, Idle, c.State())
}

func TestFullCycle(t *testing.T) {
	c := readyControl(t)
	assert.Equal(t, Ready, c.State())
	assert.True(t, c.Enabled())
	assert.Equal(t, "painting.jpg", c.Image())

	gen, err := c.Begin()
	require.NoError(t, err)
	assert.Equal(t, Analyzing, c.State())
	assert.False(t, c.Enabled())
	assert.Equal(t, LabelAnalyzing, c.ButtonLabel())
	_, err = c.Begin()
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, c.SelectImage("other.jpg"), ErrBusy)

	res := ranking.Rank([]float32{0.9, 0.1}, []string{"Realism", "Cubism"})
	assert.True(t, c.Complete(gen, res))
	assert.Equal(t, Ready, c.State())
	assert.True(t, c.Enabled())
	assert.Equal(t, LabelIdentify, c.ButtonLabel())
	require.NotNil(t, c.Result())
	assert.Equal(t, "Realism", c.Result().Top.Label)
}

func TestFailReturnsToReady(t *testing.T) {
	c := readyControl(t)
	gen, err := c.Begin()
	require.NoError(t, err)

	boom := errors.New("boom")
	assert.True(t, c.Fail(gen, boom))
	assert.Equal(t, Ready, c.State())
	assert.ErrorIs(t, c.Err(), boom)
	assert.Nil(t, c.Result())
}

func TestCompleteOutsideAnalyzingIsIgnored(t *testing.T) {
	c := readyControl(t)
	assert.False(t, c.Complete(c.Generation(), ranking.Result{}))
	assert.Nil(t, c.Result())
	assert.Equal(t, Ready, c.State())
}

func TestStaleReplyAfterResetIsDropped(t *testing.T) {
	c := readyControl(t)
	first, err := c.Begin()
	require.NoError(t, err)

	c.Reset()
	require.NoError(t, c.SelectImage("second.jpg"))
	second, err := c.Begin()
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	assert.False(t, c.Complete(first, ranking.Result{Top: ranking.Entry{Label: "Realism", Percent: 91}}))
	assert.False(t, c.Fail(first, errors.New("late")))
	assert.Equal(t, Analyzing, c.State())
	assert.Nil(t, c.Result())
	assert.NoError(t, c.Err())

	assert.True(t, c.Complete(second, ranking.Result{Top: ranking.Entry{Label: "Cubism", Percent: 40}}))
	assert.Equal(t, "Cubism", c.Result().Top.Label)
	assert.Equal(t, "second.jpg", c.Image())
}

func TestResetIsIdempotent(t *testing.T) {
	states := map[string]func(*Control){
		"idle":  func(c *Control) { c.Reset() },
		"ready": func(*Control) {},
		"analyzing": func(c *Control) {
			_, err := c.Begin()
			require.NoError(t, err)
		},
		"with result": func(c *Control) {
			gen, err := c.Begin()
			require.NoError(t, err)
			c.Complete(gen, ranking.Result{Recognized: true})
		},
	}

	for name, setup := range states {
		t.Run(name, func(t *testing.T) {
			c := readyControl(t)
			setup(c)

			c.Reset()
			c.Reset()

			assert.Equal(t, Idle, c.State())
			assert.Empty(t, c.Image())
			assert.Nil(t, c.Result())
			assert.False(t, c.Enabled())
			assert.True(t, c.ModelReady())
		})
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "analyzing", Analyzing.String())
}
