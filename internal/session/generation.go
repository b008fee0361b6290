package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jonathan/banana-cli/internal/config"
	"github.com/jonathan/banana-cli/internal/job"
	"github.com/jonathan/banana-cli/internal/llm"
	"github.com/jonathan/banana-cli/internal/pipeline"
)

// ErrBusy is reported when a prompt is submitted during a generation
var ErrBusy = errors.New("a generation is already running")

// Runner executes generation jobs. *pipeline.Pipeline plus the client it
// owns satisfies it.
type Runner interface {
	Run(ctx context.Context, params job.Params, action job.Action) (*job.Job, error)
	Download(ctx context.Context, j *job.Job, outputDir string) ([]string, error)
	Close() error
}

// RunnerFactory builds a Runner for one generation from a snapshot of the
// configuration taken at submit time.
type RunnerFactory func(ctx context.Context, cfg config.Config) (Runner, error)

// GenerationRequest is everything a background generation needs. It holds
// no references to session state.
type GenerationRequest struct {
	Params       job.Params
	Config       config.Config
	OutputDir    string
	AutoDownload bool
}

// GenerationResult is handed back to the loop by value
type GenerationResult struct {
	Job         *job.Job
	Paths       []string
	Err         error
	DownloadErr error
}

// SubmitInput turns the prompt into a GenerationRequest and claims the
// single generation slot. It returns false when nothing should run: an
// empty prompt, or a generation already in flight, in which case the
// prompt is kept and the error is shown.
func (c *Controller) SubmitInput() (GenerationRequest, bool) {
	if c.mode != ModeInput {
		return GenerationRequest{}, false
	}
	prompt := strings.TrimSpace(c.input.String())
	if prompt == "" {
		return GenerationRequest{}, false
	}
	if !c.busy.TryAcquire(1) {
		c.setError(ErrBusy)
		return GenerationRequest{}, false
	}
	c.generating = true

	req := GenerationRequest{
		Params:       c.cfg.Params(prompt),
		Config:       *c.cfg,
		OutputDir:    c.cfg.Output.Directory,
		AutoDownload: c.cfg.Output.AutoDownload,
	}
	c.input.reset()
	c.setMode(ModeMain)
	c.status = "Generating..."
	c.logger.Info().Str("model", req.Params.Model).Msg("session: generation submitted")
	return req, true
}

// RunGeneration runs one job to completion and downloads its images when
// requested. It is safe to call off the loop goroutine.
func (c *Controller) RunGeneration(ctx context.Context, req GenerationRequest) GenerationResult {
	runner, err := c.factory(ctx, req.Config)
	if err != nil {
		return GenerationResult{Err: err}
	}
	defer func() {
		if cerr := runner.Close(); cerr != nil {
			c.logger.Warn().Err(cerr).Msg("session: close runner")
		}
	}()

	var res GenerationResult
	j, err := runner.Run(ctx, req.Params, job.Generate())
	if err == nil && req.AutoDownload {
		res.Paths, res.DownloadErr = runner.Download(ctx, j, req.OutputDir)
	}
	res.Err = err
	if j != nil {
		res.Job = j.Clone()
	}
	return res
}

// CompleteGeneration releases the generation slot, reloads the list and
// reports the outcome.
func (c *Controller) CompleteGeneration(ctx context.Context, res GenerationResult) {
	if c.generating {
		c.generating = false
		c.busy.Release(1)
	}

	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn().Err(err).Msg("session: refresh after generation")
	}

	c.status, c.err = "", ""
	switch {
	case res.Err != nil && res.Job != nil:
		c.err = fmt.Sprintf("Job %s failed: %s", res.Job.ID, res.Job.Status.Error)
		if res.Job.Status.Error == "" {
			c.err = fmt.Sprintf("Job %s: %v", res.Job.ID, res.Err)
		}
	case res.Err != nil:
		c.setError(res.Err)
	case res.Job != nil:
		c.status = fmt.Sprintf("Job %s completed with %d image(s)", res.Job.ID, len(res.Job.Images))
		if n := len(res.Paths); n > 0 {
			c.status += fmt.Sprintf(", saved %d", n)
		}
		if res.DownloadErr != nil {
			c.err = "download: " + res.DownloadErr.Error()
		}
	}

	if c.quitPending {
		c.quitPending = false
		c.quit = true
	}
}

// pipelineRunner pairs a pipeline with the client it owns
type pipelineRunner struct {
	*pipeline.Pipeline
	client llm.Client
}

func (r *pipelineRunner) Close() error {
	return r.client.Close()
}

// NewPipelineFactory returns a RunnerFactory that connects to the
// generation service for each run. A missing API key fails before any job
// is created.
func NewPipelineFactory(store job.Store, logger zerolog.Logger) RunnerFactory {
	return func(ctx context.Context, cfg config.Config) (Runner, error) {
		key, err := cfg.RequireAPIKey()
		if err != nil {
			return nil, err
		}
		client, err := llm.NewClient(ctx, cfg.LLMConfig(), key, logger)
		if err != nil {
			return nil, err
		}
		return &pipelineRunner{Pipeline: pipeline.New(client, store, logger), client: client}, nil
	}
}
