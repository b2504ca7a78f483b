package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/nbforge/internal/config"
	"github.com/san-kum/nbforge/internal/convert"
	"github.com/san-kum/nbforge/internal/notebook"
	"github.com/san-kum/nbforge/internal/pipeline"
	"github.com/san-kum/nbforge/internal/publish"
	"github.com/san-kum/nbforge/internal/tui"
)

var (
	configFile string
	preset     string
	sourceDir  string
	scriptDir  string
	mdDir      string
	publishDir string
	tool       string
	kernel     string
	template   string
	extension  string
	onError    string
	timeoutSec int
	// Build display modes
	live  bool
	chart bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "nbforge",
		Short: "notebook example build and publish tool",
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().StringVar(&sourceDir, "source", config.DefaultSourceDir, "notebook source directory")
	rootCmd.PersistentFlags().StringVar(&scriptDir, "scripts", config.DefaultScriptDir, "script output directory")
	rootCmd.PersistentFlags().StringVar(&mdDir, "markdown", config.DefaultMarkdownDir, "markdown output directory")
	rootCmd.PersistentFlags().StringVar(&publishDir, "publish-dir", config.DefaultPublishDir, "publish destination directory")
	rootCmd.PersistentFlags().StringVar(&tool, "tool", config.DefaultTool, "conversion tool binary")
	rootCmd.PersistentFlags().StringVar(&kernel, "kernel", config.DefaultKernel, "execution kernel")
	rootCmd.PersistentFlags().StringVar(&template, "template", "", "markdown rendering template")
	rootCmd.PersistentFlags().StringVar(&extension, "ext", config.DefaultExtension, "document file extension")
	rootCmd.PersistentFlags().StringVar(&onError, "on-error", config.OnErrorHalt, "failure policy: halt or continue")
	rootCmd.PersistentFlags().IntVar(&timeoutSec, "timeout", 0, "per-conversion timeout in seconds (0 = none)")

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "convert all notebooks and publish the rendered markdown",
		RunE:  runBuild,
	}
	buildCmd.Flags().BoolVar(&live, "live", false, "show live progress view")
	buildCmd.Flags().BoolVar(&chart, "chart", false, "chart per-notebook execution time after the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list notebooks in the source directory",
		RunE:  listDocuments,
	}

	convertCmd := &cobra.Command{
		Use:   "convert [notebook]",
		Short: "convert a single notebook without publishing",
		Args:  cobra.ExactArgs(1),
		RunE:  convertOne,
	}

	publishCmd := &cobra.Command{
		Use:   "publish",
		Short: "publish the markdown tree to the destination",
		RunE:  runPublish,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				fmt.Println(p)
			}
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "nbforge.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			if err := config.Save(path, config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}

	rootCmd.AddCommand(buildCmd, listCmd, convertCmd, publishCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig assembles the effective config: preset, then config file,
// then explicit CLI flags, later sources winning.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		*cfg = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.SourceDir = sourceDir
	}
	if flags.Changed("scripts") {
		cfg.ScriptDir = scriptDir
	}
	if flags.Changed("markdown") {
		cfg.MarkdownDir = mdDir
	}
	if flags.Changed("publish-dir") {
		cfg.PublishDir = publishDir
	}
	if flags.Changed("tool") {
		cfg.Tool = tool
	}
	if flags.Changed("kernel") {
		cfg.Kernel = kernel
	}
	if flags.Changed("template") {
		cfg.Template = template
	}
	if flags.Changed("ext") {
		cfg.Extension = extension
	}
	if flags.Changed("on-error") {
		cfg.OnError = onError
	}
	if flags.Changed("timeout") {
		cfg.TimeoutSec = timeoutSec
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	p := pipeline.New(cfg)

	var summary *pipeline.Summary
	if live {
		docs, err := notebook.Enumerate(cfg.SourceDir, cfg.Extension)
		if err != nil {
			return err
		}
		names := make([]string, len(docs))
		for i, d := range docs {
			names[i] = d.Name
		}

		m := tui.NewModel(p, names)
		prog := tea.NewProgram(m)
		if _, err := prog.Run(); err != nil {
			return err
		}
		if m.Err() != nil {
			return m.Err()
		}
		summary = m.Summary()
	} else {
		p.OnProgress(printProgress)

		fmt.Printf("building %s...\n", cfg.SourceDir)
		summary, err = p.Run(context.Background())
		if err != nil {
			return err
		}
	}

	if summary == nil {
		return nil
	}

	fmt.Printf("\n%d notebooks converted in %v\n", summary.Documents, summary.Elapsed.Round(time.Millisecond))
	fmt.Printf("published to %s\n", cfg.PublishDir)

	if chart {
		printDurationChart(summary)
	}
	return nil
}

func printProgress(ev pipeline.Event) {
	if !ev.Done {
		return
	}
	label := string(ev.Stage)
	if ev.Stage == pipeline.StagePublish {
		if ev.Err == nil {
			fmt.Printf("publish: ok (%v)\n", ev.Duration.Round(time.Millisecond))
		}
		return
	}
	if ev.Err != nil {
		fmt.Printf("  %s: %s failed\n", ev.Document, label)
		return
	}
	fmt.Printf("  %s: %s ok (%v)\n", ev.Document, label, ev.Duration.Round(time.Millisecond))
}

func printDurationChart(summary *pipeline.Summary) {
	data := make([]float64, 0, len(summary.Results))
	for _, r := range summary.Results {
		if r.Format == convert.FormatMarkdown {
			data = append(data, float64(r.Duration.Milliseconds()))
		}
	}
	if len(data) < 2 {
		return
	}

	graph := asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("execution time per notebook (ms, build order)"),
	)
	fmt.Println()
	fmt.Println(graph)
}

func listDocuments(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	docs, err := notebook.Enumerate(cfg.SourceDir, cfg.Extension)
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		fmt.Println("no notebooks found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCODE\tMARKDOWN\tTITLE")

	for _, doc := range docs {
		nb, err := notebook.Read(doc.Path)
		if err != nil {
			fmt.Fprintf(w, "%s\t-\t-\tunreadable: %v\n", doc.Name, err)
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", doc.Name, nb.CodeCells(), nb.MarkdownCells(), nb.Title())
	}

	return w.Flush()
}

func convertOne(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	docs, err := notebook.Enumerate(cfg.SourceDir, cfg.Extension)
	if err != nil {
		return err
	}

	var doc *notebook.Document
	for i := range docs {
		if docs[i].Name == args[0] || docs[i].Base() == args[0] {
			doc = &docs[i]
			break
		}
	}
	if doc == nil {
		return fmt.Errorf("notebook not found: %s", args[0])
	}

	for _, dir := range []string{cfg.ScriptDir, cfg.MarkdownDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	conv := convert.New(cfg.Tool, cfg.Kernel, cfg.Template, cfg.ScriptDir, cfg.MarkdownDir)
	for _, format := range []convert.Format{convert.FormatScript, convert.FormatMarkdown} {
		result, err := conv.Convert(context.Background(), convert.Job{Document: *doc, Format: format})
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s (%v)\n", format, result.ArtifactPath, result.Duration.Round(time.Millisecond))
	}
	return nil
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.MarkdownDir); err != nil {
		return fmt.Errorf("markdown tree missing, run build first: %w", err)
	}

	if err := publish.New(cfg.PublishDir).Publish(cfg.MarkdownDir); err != nil {
		return err
	}
	fmt.Printf("published to %s\n", cfg.PublishDir)
	return nil
}
