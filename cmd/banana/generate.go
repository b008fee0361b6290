package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/banana-cli/internal/config"
	"github.com/jonathan/banana-cli/internal/job"
	"github.com/jonathan/banana-cli/internal/llm"
	"github.com/jonathan/banana-cli/internal/observability"
	"github.com/jonathan/banana-cli/internal/pipeline"
)

var generateCommand = &cobra.Command{
	Use:     "generate <prompt>",
	Aliases: []string{"g"},
	Short:   "Generate an image from a text prompt",
	Long: `Sends the prompt to the configured Gemini image model, records the job and writes the images to the output directory.

Flags override the defaults from the config file for this run only.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerateCmd,
}

var editCommand = &cobra.Command{
	Use:     "edit <image-path> <prompt>",
	Aliases: []string{"e"},
	Short:   "Edit an existing image with a text instruction",
	Long:    `Sends the image and the instruction to the configured Gemini image model. PNG, JPEG, WebP and GIF inputs are accepted.`,
	Args:    cobra.MinimumNArgs(2),
	RunE:    runEditCmd,
}

// generationFlags are shared by generate and edit
type generationFlags struct {
	aspectRatio string
	size        string
	model       string
	outputDir   string
	noDownload  bool
	seed        int64
	negative    string
	format      string
}

var (
	generateFlags generationFlags
	editFlags     generationFlags
)

func init() {
	addGenerationFlags(generateCommand, &generateFlags)
	addGenerationFlags(editCommand, &editFlags)

	rootCmd.AddCommand(generateCommand)
	rootCmd.AddCommand(editCommand)
}

func addGenerationFlags(cmd *cobra.Command, f *generationFlags) {
	cmd.Flags().StringVarP(&f.aspectRatio, "aspect-ratio", "a", "", "Aspect ratio, e.g. 1:1, 16:9 (defaults to config)")
	cmd.Flags().StringVar(&f.aspectRatio, "ar", "", "Alias for --aspect-ratio")
	_ = cmd.Flags().MarkHidden("ar")
	cmd.Flags().StringVarP(&f.size, "size", "s", "", "Image size: 1K, 2K, 4K (or low, mid, high)")
	cmd.Flags().StringVarP(&f.model, "model", "m", "", "Model id (defaults to config)")
	cmd.Flags().StringVarP(&f.outputDir, "output-dir", "o", "", "Directory for downloaded images (defaults to config)")
	cmd.Flags().BoolVar(&f.noDownload, "no-download", false, "Keep images in the job record instead of writing files")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "Seed for reproducible output")
	cmd.Flags().StringVar(&f.negative, "negative", "", "Things the image should avoid")
	cmd.Flags().StringVarP(&f.format, "format", "f", "text", "Output format: text, json, quiet")
}

// params merges the flags over the configured defaults
func (f *generationFlags) params(cmd *cobra.Command, cfg *config.Config, prompt string) (job.Params, error) {
	p := cfg.Params(prompt)
	p.NegativePrompt = f.negative

	if f.aspectRatio != "" {
		ar, err := job.ParseAspectRatio(f.aspectRatio)
		if err != nil {
			return p, err
		}
		p.AspectRatio = ar
	}
	if f.size != "" {
		size, err := job.ParseSize(f.size)
		if err != nil {
			return p, err
		}
		p.Size = size
	}
	if f.model != "" {
		p.Model = f.model
	}
	if cmd.Flags().Changed("seed") {
		seed := f.seed
		p.Seed = &seed
	}
	return p, nil
}

func runGenerateCmd(cmd *cobra.Command, args []string) error {
	prompt := strings.Join(args, " ")
	return runGeneration(cmd, &generateFlags, prompt, job.Generate(), nil)
}

func runEditCmd(cmd *cobra.Command, args []string) error {
	imagePath := args[0]
	prompt := strings.Join(args[1:], " ")

	ref, err := readReference(imagePath)
	if err != nil {
		return err
	}
	return runGeneration(cmd, &editFlags, prompt, job.Edit(imagePath), ref)
}

// readReference loads an image file as an inline reference
func readReference(path string) (*job.Reference, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return &job.Reference{
		MIMEType: mimeForPath(path),
		Data:     base64.StdEncoding.EncodeToString(data),
	}, nil
}

func mimeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/png"
	}
}

func runGeneration(cmd *cobra.Command, f *generationFlags, prompt string, action job.Action, ref *job.Reference) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	format, err := observability.ParseFormat(f.format)
	if err != nil {
		return err
	}
	printer := observability.NewPrinter(cmd.OutOrStdout(), format)

	a, err := newApp(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	apiKey, err := a.cfg.RequireAPIKey()
	if err != nil {
		return err
	}

	params, err := f.params(cmd, a.cfg, prompt)
	if err != nil {
		return err
	}
	params.Reference = ref

	client, err := llm.NewClient(ctx, a.cfg.LLMConfig(), apiKey, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer func() { _ = client.Close() }()

	p := pipeline.New(client, a.store, a.logger).WithProgress(func(e pipeline.ProgressEvent) {
		printer.PrintStep(e.Message)
	})

	j, err := p.Run(ctx, params, action)
	if err != nil {
		if j != nil && format == observability.FormatJSON {
			_ = printer.PrintJob(j)
		}
		return err
	}

	var downloadErr error
	if !f.noDownload && a.cfg.Output.AutoDownload {
		outDir := f.outputDir
		if outDir == "" {
			outDir = a.cfg.Output.Directory
		}
		_, downloadErr = p.Download(ctx, j, outDir)
	}

	if format == observability.FormatText {
		printer.PrintOutcome(j)
	} else if err := printer.PrintJob(j); err != nil {
		return err
	}

	if a.cfg.Output.Display == config.DisplayViewer {
		for _, path := range j.Paths() {
			if err := openViewer(path); err != nil {
				a.logger.Warn().Err(err).Str("path", path).Msg("failed to open viewer")
			}
		}
	}

	if downloadErr != nil {
		return errors.Join(errors.New("some images could not be saved"), downloadErr)
	}
	return nil
}
