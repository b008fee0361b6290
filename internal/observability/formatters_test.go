package observability

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/banana-cli/internal/config"
	"github.com/jonathan/banana-cli/internal/job"
)

func completedJob(t *testing.T) *job.Job {
	t.Helper()
	j, err := job.New(job.Params{Prompt: "a cosmic banana floating through a nebula of ripe fruit"}, job.Generate())
	require.NoError(t, err)
	require.NoError(t, j.MarkRunning(0))
	require.NoError(t, j.AppendImage(0, "MA==", "image/png"))
	require.NoError(t, j.AppendImage(1, "MQ==", "image/png"))
	require.NoError(t, j.MarkCompleted())
	j.SetImagePath(0, "/out/"+j.ID+"_0.png")
	return j
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	f, err = ParseFormat("quiet")
	require.NoError(t, err)
	assert.Equal(t, FormatQuiet, f)

	_, err = ParseFormat("yaml")
	assert.Error(t, err)
}

func TestPrintJob_Text(t *testing.T) {
	var buf bytes.Buffer
	j := completedJob(t)

	require.NoError(t, NewPrinter(&buf, FormatText).PrintJob(j))
	output := buf.String()

	assert.Contains(t, output, "JOB "+j.ID)
	assert.Contains(t, output, "completed")
	assert.Contains(t, output, "[0] /out/"+j.ID+"_0.png")
	assert.Contains(t, output, "[1] (inline)")
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		assert.Equal(t, boxWidth, len([]rune(line)), "box line %q", line)
	}
}

func TestPrintJob_JSON(t *testing.T) {
	var buf bytes.Buffer
	j := completedJob(t)

	require.NoError(t, NewPrinter(&buf, FormatJSON).PrintJob(j))

	var decoded job.Job
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, j.ID, decoded.ID)
	assert.Equal(t, job.StateCompleted, decoded.Status.State)
}

func TestPrintJob_Quiet(t *testing.T) {
	var buf bytes.Buffer
	j := completedJob(t)

	require.NoError(t, NewPrinter(&buf, FormatQuiet).PrintJob(j))
	assert.Equal(t, "/out/"+j.ID+"_0.png\n", buf.String())

	buf.Reset()
	j2, _ := job.New(job.Params{Prompt: "x"}, job.Generate())
	require.NoError(t, NewPrinter(&buf, FormatQuiet).PrintJob(j2))
	assert.Equal(t, j2.ID+"\n", buf.String())
}

func TestPrintJobList_Text(t *testing.T) {
	var buf bytes.Buffer
	j := completedJob(t)

	require.NoError(t, NewPrinter(&buf, FormatText).PrintJobList([]*job.Job{j}, 5))
	output := buf.String()

	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "PROMPT")
	assert.Contains(t, output, j.ID)
	assert.Contains(t, output, j.Preview(promptPreviewLen))
	assert.NotContains(t, output, "ripe fruit")
	assert.Contains(t, output, "Showing 1 of 5 jobs")
}

func TestPrintJobList_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatText).PrintJobList(nil, 0))
	assert.Contains(t, buf.String(), "No jobs found.")

	buf.Reset()
	require.NoError(t, NewPrinter(&buf, FormatJSON).PrintJobList(nil, 0))
	assert.Equal(t, "[]\n", buf.String())
}

func TestPrintOutcome(t *testing.T) {
	var buf bytes.Buffer
	j := completedJob(t)
	NewPrinter(&buf, FormatText).PrintOutcome(j)
	assert.Contains(t, buf.String(), "completed with 2 image(s)")

	buf.Reset()
	failed, _ := job.New(job.Params{Prompt: "x"}, job.Generate())
	require.NoError(t, failed.MarkFailed("blocked"))
	NewPrinter(&buf, FormatText).PrintOutcome(failed)
	assert.Contains(t, buf.String(), "failed: blocked")

	buf.Reset()
	NewPrinter(&buf, FormatQuiet).PrintOutcome(j)
	assert.Empty(t, buf.String())
}

func TestPrintConfig_MasksKey(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	require.NoError(t, cfg.Set(config.KeyAPIKey, "secret"))

	require.NoError(t, NewPrinter(&buf, FormatText).PrintConfig(cfg))
	assert.Contains(t, buf.String(), "api.key")
	assert.Contains(t, buf.String(), "****")
	assert.NotContains(t, buf.String(), "secret")

	buf.Reset()
	require.NoError(t, NewPrinter(&buf, FormatJSON).PrintConfig(cfg))
	var values map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &values))
	assert.Equal(t, "****", values["api.key"])
	assert.Equal(t, "1:1", values["defaults.aspect_ratio"])
}

func TestNewLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "debug")
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())

	logger.Debug().Str("job_id", "bn_1").Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.Contains(t, buf.String(), "bn_1")

	assert.Equal(t, zerolog.WarnLevel, NewLogger(&buf, "").GetLevel())
	assert.Equal(t, zerolog.WarnLevel, NewLogger(&buf, "chatty").GetLevel())
}

func TestPrintWarning(t *testing.T) {
	var buf bytes.Buffer
	PrintWarning(&buf, "This will delete %d job(s).", 3)
	assert.Equal(t, "Warning: This will delete 3 job(s).\n", buf.String())
}
