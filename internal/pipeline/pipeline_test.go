package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/nbforge/internal/config"
	"github.com/san-kum/nbforge/internal/convert"
	"github.com/san-kum/nbforge/internal/pipeline"
)

// fakeTool mimics the external converter: it writes one artifact per
// invocation and fails for documents whose name contains "broken".
const fakeTool = `#!/bin/sh
fmt=""; out=""; doc=""
while [ $# -gt 0 ]; do
  case "$1" in
    --to) fmt="$2"; shift 2 ;;
    --output-dir) out="$2"; shift 2 ;;
    --template) shift 2 ;;
    *) doc="$1"; shift ;;
  esac
done
base=$(basename "$doc")
base=${base%.*}
case "$base" in
  *broken*) echo "Exception raised in cell 3" >&2; exit 1 ;;
esac
case "$fmt" in
  script) echo "# script for $base" > "$out/$base.py" ;;
  markdown) echo "# $base" > "$out/$base.md" ;;
esac
`

var _ = Describe("Pipeline", func() {
	var (
		workDir string
		cfg     *config.Config
	)

	writeDoc := func(name string) {
		path := filepath.Join(cfg.SourceDir, name)
		Expect(os.WriteFile(path, []byte("{}"), 0644)).To(Succeed())
	}

	BeforeEach(func() {
		workDir = GinkgoT().TempDir()

		tool := filepath.Join(workDir, "fake-jupyter")
		Expect(os.WriteFile(tool, []byte(fakeTool), 0755)).To(Succeed())

		cfg = config.DefaultConfig()
		cfg.Tool = tool
		cfg.SourceDir = filepath.Join(workDir, "notebooks")
		cfg.ScriptDir = filepath.Join(workDir, "build", "scripts")
		cfg.MarkdownDir = filepath.Join(workDir, "build", "markdown")
		cfg.PublishDir = filepath.Join(workDir, "docs", "examples")

		Expect(os.MkdirAll(cfg.SourceDir, 0755)).To(Succeed())
		Expect(os.MkdirAll(filepath.Join(workDir, "docs"), 0755)).To(Succeed())
	})

	It("converts every document into one script and one markdown artifact", func() {
		writeDoc("orbit.ipynb")
		writeDoc("pendulum.ipynb")

		summary, err := pipeline.New(cfg).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Documents).To(Equal(2))
		Expect(summary.Results).To(HaveLen(4))
		Expect(summary.Published).To(BeTrue())

		for _, base := range []string{"orbit", "pendulum"} {
			Expect(filepath.Join(cfg.ScriptDir, base+".py")).To(BeAnExistingFile())
			Expect(filepath.Join(cfg.MarkdownDir, base+".md")).To(BeAnExistingFile())
			Expect(filepath.Join(cfg.PublishDir, base+".md")).To(BeAnExistingFile())
		}
	})

	It("ignores files that do not match the document extension", func() {
		writeDoc("orbit.ipynb")
		Expect(os.WriteFile(filepath.Join(cfg.SourceDir, "readme.txt"), []byte("notes"), 0644)).To(Succeed())

		summary, err := pipeline.New(cfg).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Documents).To(Equal(1))
		Expect(filepath.Join(cfg.ScriptDir, "readme.py")).NotTo(BeAnExistingFile())
		Expect(filepath.Join(cfg.MarkdownDir, "readme.md")).NotTo(BeAnExistingFile())
	})

	It("halts at the first failed document", func() {
		writeDoc("alpha.ipynb")
		writeDoc("broken.ipynb")
		writeDoc("zeta.ipynb")

		summary, err := pipeline.New(cfg).Run(context.Background())
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, convert.ErrConversionFailed)).To(BeTrue())

		var convErr *convert.ConversionError
		Expect(errors.As(err, &convErr)).To(BeTrue())
		Expect(convErr.Stderr).To(ContainSubstring("Exception raised"))

		// alpha converted before the failure, zeta never reached
		Expect(filepath.Join(cfg.ScriptDir, "alpha.py")).To(BeAnExistingFile())
		Expect(filepath.Join(cfg.ScriptDir, "zeta.py")).NotTo(BeAnExistingFile())
		Expect(filepath.Join(cfg.MarkdownDir, "zeta.md")).NotTo(BeAnExistingFile())

		Expect(summary.Published).To(BeFalse())
		Expect(cfg.PublishDir).NotTo(BeADirectory())
	})

	It("continues past failures under the continue policy", func() {
		cfg.OnError = config.OnErrorContinue
		writeDoc("alpha.ipynb")
		writeDoc("broken.ipynb")
		writeDoc("zeta.ipynb")

		summary, err := pipeline.New(cfg).Run(context.Background())
		Expect(err).To(MatchError(ContainSubstring("1 of 3 documents failed")))
		Expect(summary.Failures).To(HaveLen(1))
		Expect(summary.Published).To(BeTrue())

		Expect(filepath.Join(cfg.ScriptDir, "zeta.py")).To(BeAnExistingFile())
		Expect(filepath.Join(cfg.PublishDir, "zeta.md")).To(BeAnExistingFile())
		Expect(filepath.Join(cfg.PublishDir, "broken.md")).NotTo(BeAnExistingFile())
	})

	It("succeeds with zero documents", func() {
		summary, err := pipeline.New(cfg).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(summary.Documents).To(BeZero())
		Expect(summary.Published).To(BeTrue())

		Expect(cfg.ScriptDir).To(BeADirectory())
		Expect(cfg.MarkdownDir).To(BeADirectory())

		entries, err := os.ReadDir(cfg.PublishDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(BeEmpty())
	})

	It("replaces stale content at the destination", func() {
		writeDoc("orbit.ipynb")
		Expect(os.MkdirAll(cfg.PublishDir, 0755)).To(Succeed())
		sentinel := filepath.Join(cfg.PublishDir, "sentinel.md")
		Expect(os.WriteFile(sentinel, []byte("stale"), 0644)).To(Succeed())

		_, err := pipeline.New(cfg).Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		Expect(sentinel).NotTo(BeAnExistingFile())
		Expect(filepath.Join(cfg.PublishDir, "orbit.md")).To(BeAnExistingFile())
	})

	It("runs the script conversion before the markdown conversion", func() {
		writeDoc("orbit.ipynb")

		var stages []pipeline.Stage
		p := pipeline.New(cfg)
		p.OnProgress(func(ev pipeline.Event) {
			if ev.Done && ev.Document == "orbit.ipynb" {
				stages = append(stages, ev.Stage)
			}
		})

		_, err := p.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(stages).To(Equal([]pipeline.Stage{pipeline.StageScript, pipeline.StageMarkdown}))
	})

	It("processes documents in sorted order", func() {
		writeDoc("zeta.ipynb")
		writeDoc("alpha.ipynb")

		var docs []string
		p := pipeline.New(cfg)
		p.OnProgress(func(ev pipeline.Event) {
			if !ev.Done && ev.Stage == pipeline.StageScript {
				docs = append(docs, ev.Document)
			}
		})

		_, err := p.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(docs).To(Equal([]string{"alpha.ipynb", "zeta.ipynb"}))
	})

	It("fails when the source directory is missing", func() {
		cfg.SourceDir = filepath.Join(workDir, "nope")

		_, err := pipeline.New(cfg).Run(context.Background())
		Expect(err).To(HaveOccurred())
	})
})
