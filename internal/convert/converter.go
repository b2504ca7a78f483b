package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/san-kum/nbforge/internal/notebook"
)

// Format is a conversion target.
type Format string

const (
	FormatScript   Format = "script"
	FormatMarkdown Format = "markdown"
)

// Job pairs one document with one target format. It exists only for the
// duration of a single tool invocation.
type Job struct {
	Document notebook.Document
	Format   Format
}

// Result describes one completed conversion.
type Result struct {
	Document     string
	Format       Format
	ArtifactPath string
	Duration     time.Duration
}

// Converter invokes the external conversion tool.
type Converter struct {
	tool        string
	kernel      string
	template    string
	scriptDir   string
	markdownDir string
}

func New(tool, kernel, template, scriptDir, markdownDir string) *Converter {
	return &Converter{
		tool:        tool,
		kernel:      kernel,
		template:    template,
		scriptDir:   scriptDir,
		markdownDir: markdownDir,
	}
}

// Convert runs one job and waits for the tool to finish. The document's
// content is never inspected here; the tool owns parsing and execution.
func (c *Converter) Convert(ctx context.Context, job Job) (*Result, error) {
	args, outDir, err := c.arguments(job)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, c.tool, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	if runErr != nil {
		if errors.Is(runErr, exec.ErrNotFound) || errors.Is(runErr, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrToolNotFound, c.tool)
		}
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return nil, &ConversionError{
			Document: job.Document.Name,
			Format:   job.Format,
			ExitCode: exitCode,
			Stderr:   stderr.String(),
			Wrapped: fmt.Errorf("%w: %s to %s (exit %d): %s",
				ErrConversionFailed, job.Document.Name, job.Format, exitCode,
				strings.TrimSpace(stderr.String())),
		}
	}

	return &Result{
		Document:     job.Document.Name,
		Format:       job.Format,
		ArtifactPath: filepath.Join(outDir, job.Document.Base()+c.artifactExt(job.Format)),
		Duration:     elapsed,
	}, nil
}

// arguments builds the tool command line for a job.
func (c *Converter) arguments(job Job) ([]string, string, error) {
	doc := job.Document.Path

	switch job.Format {
	case FormatScript:
		return []string{
			"nbconvert",
			"--to", "script",
			"--output-dir", c.scriptDir,
			doc,
		}, c.scriptDir, nil
	case FormatMarkdown:
		args := []string{
			"nbconvert",
			"--to", "markdown",
			"--execute",
			"--ExecutePreprocessor.kernel_name=" + c.kernel,
		}
		if c.template != "" {
			args = append(args, "--template", c.template)
		}
		args = append(args, "--output-dir", c.markdownDir, doc)
		return args, c.markdownDir, nil
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownFormat, job.Format)
	}
}

// artifactExt maps a format to the extension the tool writes. Script
// extensions follow the kernel language; anything unrecognized is
// assumed to be python.
func (c *Converter) artifactExt(format Format) string {
	if format == FormatMarkdown {
		return ".md"
	}
	switch {
	case strings.HasPrefix(c.kernel, "julia"):
		return ".jl"
	case c.kernel == "ir":
		return ".r"
	default:
		return ".py"
	}
}
