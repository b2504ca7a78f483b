// Package tui renders live build progress with Bubble Tea. It is a pure
// observer of pipeline events; conversion stays strictly sequential.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/nbforge/internal/pipeline"
)

type docState int

const (
	statePending docState = iota
	stateScript
	stateMarkdown
	stateDone
	stateFailed
)

type eventMsg pipeline.Event

type doneMsg struct {
	summary *pipeline.Summary
	err     error
}

// Model displays one document per row while the pipeline runs.
type Model struct {
	p       *pipeline.Pipeline
	docs    []string
	events  chan pipeline.Event
	states  map[string]docState
	publish string
	done    bool
	err     error
	summary *pipeline.Summary
}

// NewModel wires the model as the pipeline's progress observer. Run the
// returned model with tea.NewProgram; the pipeline starts on Init.
func NewModel(p *pipeline.Pipeline, docs []string) *Model {
	m := &Model{
		p:      p,
		docs:   docs,
		events: make(chan pipeline.Event, 64),
		states: make(map[string]docState, len(docs)),
	}
	p.OnProgress(func(ev pipeline.Event) {
		m.events <- ev
	})
	return m
}

// Err returns the pipeline error once the program has finished.
func (m *Model) Err() error { return m.err }

// Summary returns the run summary once the program has finished.
func (m *Model) Summary() *pipeline.Summary { return m.summary }

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.runPipeline(), m.nextEvent())
}

func (m *Model) runPipeline() tea.Cmd {
	return func() tea.Msg {
		summary, err := m.p.Run(context.Background())
		return doneMsg{summary: summary, err: err}
	}
}

func (m *Model) nextEvent() tea.Cmd {
	return func() tea.Msg {
		return eventMsg(<-m.events)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case eventMsg:
		m.apply(pipeline.Event(msg))
		return m, m.nextEvent()
	case doneMsg:
		m.done = true
		m.summary = msg.summary
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) apply(ev pipeline.Event) {
	switch ev.Stage {
	case pipeline.StagePublish:
		switch {
		case !ev.Done:
			m.publish = "publishing"
		case ev.Err != nil:
			m.publish = "failed"
		default:
			m.publish = "published"
		}
	case pipeline.StageScript:
		if ev.Err != nil {
			m.states[ev.Document] = stateFailed
		} else {
			m.states[ev.Document] = stateScript
		}
	case pipeline.StageMarkdown:
		switch {
		case ev.Err != nil:
			m.states[ev.Document] = stateFailed
		case ev.Done:
			m.states[ev.Document] = stateDone
		default:
			m.states[ev.Document] = stateMarkdown
		}
	}
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("nbforge build"))
	b.WriteString("\n")

	for _, doc := range m.docs {
		b.WriteString(fmt.Sprintf("  %s %s\n",
			m.statusCell(m.states[doc]), docStyle.Render(doc)))
	}

	if m.publish != "" {
		style := runningStyle
		if m.publish == "published" {
			style = okStyle
		} else if m.publish == "failed" {
			style = failStyle
		}
		b.WriteString("\n  " + style.Render(m.publish) + "\n")
	}

	if m.done && m.err != nil {
		b.WriteString("\n" + failStyle.Render("build failed: "+m.err.Error()) + "\n")
	}

	b.WriteString(helpStyle.Render("q to abort"))
	return b.String()
}

func (m *Model) statusCell(s docState) string {
	switch s {
	case stateScript:
		return runningStyle.Render("script   ")
	case stateMarkdown:
		return runningStyle.Render("executing")
	case stateDone:
		return okStyle.Render("done     ")
	case stateFailed:
		return failStyle.Render("failed   ")
	default:
		return pendingStyle.Render("waiting  ")
	}
}
