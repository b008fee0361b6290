// Package pipeline runs one image generation job from request to terminal
// status and optionally writes the produced images to disk.
package pipeline

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/jonathan/banana-cli/internal/job"
	"github.com/jonathan/banana-cli/internal/llm"
	"github.com/jonathan/banana-cli/internal/prompts"
)

// Stage names the point a run has reached
type Stage string

// Pipeline stages, in order
const (
	StageQueued      Stage = "queued"
	StageRunning     Stage = "running"
	StageRequestSent Stage = "request_sent"
	StageCompleted   Stage = "completed"
	StageFailed      Stage = "failed"
	StageDownloaded  Stage = "downloaded"
)

// ProgressEvent represents a progress update during a run
type ProgressEvent struct {
	JobID   string `json:"job_id"`
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// defaultImageMIME is assumed when the service omits a mime type
const defaultImageMIME = "image/png"

var sizeTokens = map[job.Size]string{
	job.SizeLow:  "1K",
	job.SizeMid:  "2K",
	job.SizeHigh: "4K",
}

// Pipeline drives jobs through the generation service and the job store.
type Pipeline struct {
	client     llm.Client
	store      job.Store
	logger     zerolog.Logger
	onProgress ProgressCallback
}

// New creates a Pipeline. The client and store are owned by the caller.
func New(client llm.Client, store job.Store, logger zerolog.Logger) *Pipeline {
	return &Pipeline{client: client, store: store, logger: logger}
}

// WithProgress sets the progress callback and returns p
func (p *Pipeline) WithProgress(cb ProgressCallback) *Pipeline {
	p.onProgress = cb
	return p
}

// Run creates a job for params and action, calls the service and records
// the outcome. The returned job is never nil once it has been inserted.
// On failure the job is already failed in the store when Run returns.
func (p *Pipeline) Run(ctx context.Context, params job.Params, action job.Action) (*job.Job, error) {
	j, err := job.New(params, action)
	if err != nil {
		return nil, err
	}
	log := p.logger.With().Str("job_id", j.ID).Logger()

	if err := p.store.Insert(ctx, j); err != nil {
		return nil, &StoreError{Op: "insert", JobID: j.ID, Cause: err}
	}
	p.emit(j, StageQueued, "job queued")

	if err := j.MarkRunning(0); err != nil {
		return j, err
	}
	if err := p.store.Update(ctx, j); err != nil {
		serr := &StoreError{Op: "update", JobID: j.ID, Cause: err}
		return j, p.fail(ctx, j, serr, serr.Error())
	}
	p.emit(j, StageRunning, "generating with "+j.Params.Model)

	req := BuildRequest(j.Params)
	log.Debug().Str("model", req.Model).Int("parts", len(req.Parts)).Msg("pipeline: request built")
	p.emit(j, StageRequestSent, "waiting for the service")

	resp, err := p.client.Generate(ctx, req)
	if err != nil {
		log.Warn().Err(err).Msg("pipeline: service call failed")
		gerr := &GenerationError{JobID: j.ID, Kind: FailureTransport, Message: err.Error(), Cause: err}
		return j, p.fail(ctx, j, gerr, gerr.Message)
	}

	if gerr := p.collect(j, resp, log); gerr != nil {
		log.Info().Str("kind", string(gerr.Kind)).Str("message", gerr.Message).Msg("pipeline: generation failed")
		return j, p.fail(ctx, j, gerr, gerr.Message)
	}

	if err := j.MarkCompleted(); err != nil {
		return j, err
	}
	if err := p.store.Update(ctx, j); err != nil {
		return j, &StoreError{Op: "update", JobID: j.ID, Cause: err}
	}
	log.Info().Int("images", len(j.Images)).Msg("pipeline: job completed")
	p.emit(j, StageCompleted, "generation complete")

	return j, nil
}

// BuildRequest turns job parameters into a service request. The text is
// the only part unless a reference image is attached, in which case the
// image comes first so the service edits it.
func BuildRequest(params job.Params) *llm.Request {
	edit := params.Reference != nil
	parts := []llm.Part{llm.TextPart{Text: prompts.Compose(params.Prompt, params.NegativePrompt, edit)}}
	if edit {
		ref := llm.ImagePart{MIMEType: params.Reference.MIMEType, Data: params.Reference.Data}
		parts = append([]llm.Part{ref}, parts...)
	}

	return &llm.Request{
		Model:       params.Model,
		Parts:       parts,
		AspectRatio: string(params.AspectRatio),
		ImageSize:   sizeTokens[params.Size],
		Seed:        params.Seed,
	}
}

// collect appends every image part to j, numbering them across all
// candidates. It stops at the first refusal.
func (p *Pipeline) collect(j *job.Job, resp *llm.Response, log zerolog.Logger) *GenerationError {
	next := 0
	for ci, cand := range resp.Candidates {
		if cand.Refused() {
			msg := cand.FinishMessage
			if msg == "" {
				msg = DefaultRefusalMessage
			}
			return &GenerationError{JobID: j.ID, Kind: FailureRefusal, Reason: cand.FinishReason, Message: msg}
		}

		for _, part := range cand.Parts {
			switch v := part.(type) {
			case llm.ImagePart:
				mime := v.MIMEType
				if mime == "" {
					mime = defaultImageMIME
				}
				if err := j.AppendImage(next, v.Data, mime); err != nil {
					return &GenerationError{JobID: j.ID, Kind: FailureTransport, Message: err.Error(), Cause: err}
				}
				next++
			case llm.TextPart:
				log.Debug().Int("candidate", ci).Str("text", v.Text).Msg("pipeline: text part ignored")
			default:
				log.Warn().Int("candidate", ci).Msgf("pipeline: unknown part %T ignored", part)
			}
		}
	}

	if next == 0 {
		return &GenerationError{JobID: j.ID, Kind: FailureEmpty, Message: NoImagesMessage}
	}
	return nil
}

// fail marks j failed, persists it and returns cause, joined with any
// store error hit while persisting. The write ignores cancellation of ctx
// so a cancelled request still leaves a failed job behind.
func (p *Pipeline) fail(ctx context.Context, j *job.Job, cause error, message string) error {
	if err := j.MarkFailed(message); err != nil {
		return errors.Join(cause, err)
	}
	p.emit(j, StageFailed, message)
	if err := p.store.Update(context.WithoutCancel(ctx), j); err != nil {
		return errors.Join(cause, &StoreError{Op: "update", JobID: j.ID, Cause: err})
	}
	return cause
}

func (p *Pipeline) emit(j *job.Job, stage Stage, message string) {
	if p.onProgress != nil {
		p.onProgress(ProgressEvent{JobID: j.ID, Stage: stage, Message: message})
	}
}
