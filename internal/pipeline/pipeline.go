package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/san-kum/nbforge/internal/config"
	"github.com/san-kum/nbforge/internal/convert"
	"github.com/san-kum/nbforge/internal/notebook"
	"github.com/san-kum/nbforge/internal/publish"
)

// Stage names one step of a document's progress through the run.
type Stage string

const (
	StageScript   Stage = "script"
	StageMarkdown Stage = "markdown"
	StagePublish  Stage = "publish"
)

// Event reports a stage starting or finishing. Done is false when the
// stage has just started; Err is set only on a finished, failed stage.
type Event struct {
	Document string
	Stage    Stage
	Done     bool
	Err      error
	Duration time.Duration
}

// Summary is the outcome of one run.
type Summary struct {
	Documents int
	Results   []convert.Result
	Failures  []error
	Published bool
	Elapsed   time.Duration
}

// Pipeline drives the full conversion and publish sequence.
type Pipeline struct {
	cfg       *config.Config
	converter *convert.Converter
	publisher *publish.Publisher
	progress  func(Event)
}

func New(cfg *config.Config) *Pipeline {
	return &Pipeline{
		cfg: cfg,
		converter: convert.New(cfg.Tool, cfg.Kernel, cfg.Template,
			cfg.ScriptDir, cfg.MarkdownDir),
		publisher: publish.New(cfg.PublishDir),
	}
}

// OnProgress registers an observer for stage events. The observer is
// called from the run goroutine; it must not block.
func (p *Pipeline) OnProgress(fn func(Event)) {
	p.progress = fn
}

// Run executes the whole pipeline. With the halt policy the first failed
// conversion aborts the run before later documents are touched and
// nothing is published. With the continue policy failed documents are
// recorded, the rest still convert, and whatever rendered is published.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	summary := &Summary{}

	for _, dir := range []string{p.cfg.ScriptDir, p.cfg.MarkdownDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return summary, fmt.Errorf("creating output dir: %w", err)
		}
	}

	docs, err := notebook.Enumerate(p.cfg.SourceDir, p.cfg.Extension)
	if err != nil {
		return summary, fmt.Errorf("enumerating documents: %w", err)
	}
	summary.Documents = len(docs)

	for _, doc := range docs {
		if err := p.convertDocument(ctx, doc, summary); err != nil {
			summary.Failures = append(summary.Failures, err)
			if p.cfg.OnError == config.OnErrorHalt {
				summary.Elapsed = time.Since(start)
				return summary, err
			}
		}
	}

	p.emit(Event{Stage: StagePublish})
	pubStart := time.Now()
	if err := p.publisher.Publish(p.cfg.MarkdownDir); err != nil {
		err = fmt.Errorf("publishing to %s: %w", p.cfg.PublishDir, err)
		p.emit(Event{Stage: StagePublish, Done: true, Err: err})
		summary.Elapsed = time.Since(start)
		return summary, err
	}
	p.emit(Event{Stage: StagePublish, Done: true, Duration: time.Since(pubStart)})
	summary.Published = true
	summary.Elapsed = time.Since(start)

	if n := len(summary.Failures); n > 0 {
		return summary, fmt.Errorf("%d of %d documents failed", n, summary.Documents)
	}
	return summary, nil
}

// convertDocument runs the script conversion and then the executed
// markdown conversion for one document. The script always runs first.
func (p *Pipeline) convertDocument(ctx context.Context, doc notebook.Document, summary *Summary) error {
	for _, format := range []convert.Format{convert.FormatScript, convert.FormatMarkdown} {
		stage := StageScript
		if format == convert.FormatMarkdown {
			stage = StageMarkdown
		}

		p.emit(Event{Document: doc.Name, Stage: stage})

		jobCtx := ctx
		cancel := context.CancelFunc(func() {})
		if p.cfg.TimeoutSec > 0 {
			jobCtx, cancel = context.WithTimeout(ctx, time.Duration(p.cfg.TimeoutSec)*time.Second)
		}
		result, err := p.converter.Convert(jobCtx, convert.Job{Document: doc, Format: format})
		cancel()

		if err != nil {
			p.emit(Event{Document: doc.Name, Stage: stage, Done: true, Err: err})
			return err
		}

		summary.Results = append(summary.Results, *result)
		p.emit(Event{Document: doc.Name, Stage: stage, Done: true, Duration: result.Duration})
	}
	return nil
}

func (p *Pipeline) emit(ev Event) {
	if p.progress != nil {
		p.progress(ev)
	}
}
