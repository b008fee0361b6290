package job

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJob(t *testing.T) *Job {
	t.Helper()
	j, err := New(Params{Prompt: "a cosmic banana"}, Generate())
	require.NoError(t, err)
	return j
}

func TestNew_Success(t *testing.T) {
	j, err := New(Params{Prompt: "a cosmic banana", AspectRatio: "16:9"}, Generate())
	require.NoError(t, err)

	assert.Equal(t, StateQueued, j.Status.State)
	assert.Empty(t, j.Images)
	assert.True(t, strings.HasPrefix(j.ID, "bn_"))
	assert.Len(t, j.ID, len("bn_")+8)
	assert.Equal(t, AspectRatio("16:9"), j.Params.AspectRatio)
	assert.Equal(t, DefaultSize, j.Params.Size)
	assert.Equal(t, DefaultModel, j.Params.Model)
	assert.Equal(t, j.CreatedAt, j.UpdatedAt)
	assert.Empty(t, j.ParentID)
}

func TestNew_EmptyPrompt(t *testing.T) {
	_, err := New(Params{Prompt: "   "}, Generate())
	assert.ErrorIs(t, err, ErrEmptyPrompt)
}

func TestNewID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestLifecycle_HappyPath(t *testing.T) {
	j := newTestJob(t)

	require.NoError(t, j.MarkRunning(0))
	assert.Equal(t, Status{State: StateRunning}, j.Status)

	require.NoError(t, j.MarkRunning(150))
	assert.Equal(t, 100, j.Status.Progress)

	require.NoError(t, j.AppendImage(0, "aGVsbG8=", "image/png"))
	require.NoError(t, j.MarkCompleted())
	assert.Equal(t, StateCompleted, j.Status.State)
	assert.Len(t, j.Images, 1)
}

func TestMarkCompleted_RequiresRunning(t *testing.T) {
	j := newTestJob(t)

	err := j.MarkCompleted()
	var te *TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, StateQueued, te.From)
	assert.Equal(t, StateQueued, j.Status.State)
}

func TestMarkFailed_KeepsImages(t *testing.T) {
	j := newTestJob(t)
	require.NoError(t, j.MarkRunning(0))
	require.NoError(t, j.AppendImage(0, "ZGF0YQ==", "image/png"))

	require.NoError(t, j.MarkFailed("blocked"))
	assert.Equal(t, Status{State: StateFailed, Error: "blocked"}, j.Status)
	assert.Len(t, j.Images, 1)
}

func TestMarkCancelled_FromQueuedAndRunning(t *testing.T) {
	queued := newTestJob(t)
	require.NoError(t, queued.MarkCancelled())
	assert.Equal(t, StateCancelled, queued.Status.State)

	running := newTestJob(t)
	require.NoError(t, running.MarkRunning(10))
	require.NoError(t, running.MarkCancelled())
	assert.Equal(t, StateCancelled, running.Status.State)
}

func TestTerminalStates_RejectEveryMutation(t *testing.T) {
	terminals := map[string]func(*Job) error{
		"completed": func(j *Job) error {
			if err := j.MarkRunning(0); err != nil {
				return err
			}
			return j.MarkCompleted()
		},
		"failed":    func(j *Job) error { return j.MarkFailed("boom") },
		"cancelled": func(j *Job) error { return j.MarkCancelled() },
	}

	mutations := map[string]func(*Job) error{
		"running":   func(j *Job) error { return j.MarkRunning(50) },
		"completed": func(j *Job) error { return j.MarkCompleted() },
		"failed":    func(j *Job) error { return j.MarkFailed("again") },
		"cancelled": func(j *Job) error { return j.MarkCancelled() },
		"append":    func(j *Job) error { return j.AppendImage(9, "eA==", "image/png") },
	}

	for tname, reach := range terminals {
		for mname, mutate := range mutations {
			t.Run(tname+"/"+mname, func(t *testing.T) {
				j := newTestJob(t)
				require.NoError(t, reach(j))
				before := j.Clone()

				err := mutate(j)
				var te *TransitionError
				assert.True(t, errors.As(err, &te), "expected TransitionError, got %v", err)
				assert.Equal(t, before.Status, j.Status)
				assert.Equal(t, before.Images, j.Images)
				assert.Equal(t, before.UpdatedAt, j.UpdatedAt)
			})
		}
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		maxLen int
		want   string
	}{
		{"short", "banana", 10, "banana"},
		{"exact", "banana", 6, "banana"},
		{"truncated", "a cosmic banana", 10, "a cosmi..."},
		{"multibyte", "🍌🍌🍌🍌🍌🍌", 5, "🍌🍌..."},
		{"accents", "éééééééé", 4, "é..."},
		{"tiny", "banana", 2, "ba"},
		{"zero", "banana", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := &Job{Params: Params{Prompt: tt.prompt}}
			got := j.Preview(tt.maxLen)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
			assert.LessOrEqual(t, utf8.RuneCountInString(got), max(tt.maxLen, 0))
		})
	}
}

func TestSetImagePath_ClearsInlineData(t *testing.T) {
	j := newTestJob(t)
	require.NoError(t, j.MarkRunning(0))
	require.NoError(t, j.AppendImage(0, "ZGF0YQ==", "image/png"))
	require.NoError(t, j.MarkCompleted())

	j.SetImagePath(0, "/tmp/out/x_0.png")
	assert.Equal(t, "/tmp/out/x_0.png", j.Images[0].Path)
	assert.Empty(t, j.Images[0].Data)
	assert.True(t, j.Images[0].Downloaded())
	assert.Equal(t, []string{"/tmp/out/x_0.png"}, j.Paths())
}

func TestClone_IsIndependent(t *testing.T) {
	seed := int64(42)
	j := newTestJob(t)
	j.Params.Seed = &seed
	require.NoError(t, j.MarkRunning(0))
	require.NoError(t, j.AppendImage(0, "ZGF0YQ==", "image/png"))

	cp := j.Clone()
	j.Images[0].Data = "changed"
	*j.Params.Seed = 7
	require.NoError(t, j.MarkFailed("x"))

	assert.Equal(t, "ZGF0YQ==", cp.Images[0].Data)
	assert.Equal(t, int64(42), *cp.Params.Seed)
	assert.Equal(t, StateRunning, cp.Status.State)
}

func TestClone_KeepsEmptyImageList(t *testing.T) {
	cp := newTestJob(t).Clone()
	require.NotNil(t, cp.Images)
	assert.Empty(t, cp.Images)

	data, err := json.Marshal(cp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"images":[]`)
}

func TestParseSize(t *testing.T) {
	for in, want := range map[string]Size{"1K": SizeLow, "low": SizeLow, "2k": SizeMid, "MID": SizeMid, "4K": SizeHigh, "high": SizeHigh} {
		got, err := ParseSize(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseSize("8K")
	assert.Error(t, err)
}

func TestParseAspectRatio(t *testing.T) {
	ar, err := ParseAspectRatio("21:9")
	require.NoError(t, err)
	assert.Equal(t, AspectRatio("21:9"), ar)

	_, err = ParseAspectRatio("7:3")
	assert.Error(t, err)
}

func TestParseState(t *testing.T) {
	st, err := ParseState("failed")
	require.NoError(t, err)
	assert.Equal(t, StateFailed, st)

	_, err = ParseState("done")
	assert.Error(t, err)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "queued", Status{State: StateQueued}.String())
	assert.Equal(t, "running (40%)", Status{State: StateRunning, Progress: 40}.String())
	assert.Equal(t, "failed: blocked", Status{State: StateFailed, Error: "blocked"}.String())
}
