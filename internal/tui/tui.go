// Package tui is the interactive terminal front end: pick an image, press
// i to identify its style, r to reset.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Brownie44l1/analyart/internal/analyzer"
	"github.com/Brownie44l1/analyart/internal/ranking"
	"github.com/Brownie44l1/analyart/internal/render"
	"github.com/Brownie44l1/analyart/internal/session"
	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1")).Border(lipgloss.RoundedBorder()).Padding(0, 1)
	buttonStyle   = lipgloss.NewStyle().Padding(0, 2).Background(lipgloss.Color("63")).Foreground(lipgloss.Color("15"))
	disabledStyle = lipgloss.NewStyle().Padding(0, 2).Background(lipgloss.Color("238")).Foreground(lipgloss.Color("245"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

var imageTypes = []string{".png", ".jpg", ".jpeg", ".gif"}

type modelLoadedMsg struct{}

type identifiedMsg struct {
	generation uint64
	result     ranking.Result
	err        error
}

// Model is the bubbletea model.
type Model struct {
	ctx      context.Context
	loader   *analyzer.Loader
	analyzer *analyzer.Analyzer
	loadErr  error
	control  *session.Control
	picker   filepicker.Model
	spinner  spinner.Model
	barWidth int
}

// New returns a Model that waits on loader before enabling selection. dir is
// where the file picker starts.
func New(ctx context.Context, loader *analyzer.Loader, dir string) Model {
	fp := filepicker.New()
	fp.AllowedTypes = imageTypes
	fp.CurrentDirectory = dir

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:      ctx,
		loader:   loader,
		control:  session.New(),
		picker:   fp,
		spinner:  sp,
		barWidth: 40,
	}
}

// Init starts the spinner, the file listing and the wait for the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.picker.Init(), m.waitForModel)
}

func (m Model) waitForModel() tea.Msg {
	select {
	case <-m.loader.Done():
	case <-m.ctx.Done():
	}
	return modelLoadedMsg{}
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "i", "a":
			return m.identify()
		case "r":
			m.control.Reset()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.barWidth = max(10, min(60, msg.Width-30))

	case modelLoadedMsg:
		a, err := m.loader.Analyzer()
		if err != nil {
			m.loadErr = err
			m.control.SetModelReady(false)
			return m, nil
		}
		m.analyzer = a
		m.control.SetModelReady(true)
		return m, nil

	case identifiedMsg:
		if msg.err != nil {
			m.control.Fail(msg.generation, msg.err)
		} else {
			m.control.Complete(msg.generation, msg.result)
		}
		return m, nil

	case spinner.TickMsg:
		loading := m.analyzer == nil && m.loadErr == nil
		if !loading && m.control.State() != session.Analyzing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.loadErr != nil {
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		m = m.selectFile(path)
	}
	return m, cmd
}

func (m Model) selectFile(path string) Model {
	_ = m.control.SelectImage(path)
	return m
}

func (m Model) identify() (tea.Model, tea.Cmd) {
	gen, err := m.control.Begin()
	if err != nil {
		return m, nil
	}
	a, path, ctx := m.analyzer, m.control.Image(), m.ctx
	run := func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return identifiedMsg{generation: gen, err: fmt.Errorf("failed to read image: %w", err)}
		}
		res, err := a.IdentifyBytes(ctx, data)
		return identifiedMsg{generation: gen, result: res, err: err}
	}
	return m, tea.Batch(run, m.spinner.Tick)
}

// View renders the screen.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("AnalyArt"))
	b.WriteString("\n\n")

	if m.loadErr != nil {
		b.WriteString(errorStyle.Render("System Error: the AnalyArt model could not be loaded.\n" + m.loadErr.Error()))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("q quit"))
		return b.String()
	}
	if m.analyzer == nil {
		b.WriteString(m.spinner.View() + " Loading the AnalyArt engine...")
		return b.String()
	}

	b.WriteString(m.picker.View())
	b.WriteString("\n\n")
	if img := m.control.Image(); img != "" {
		b.WriteString("Selected: " + filepath.Base(img) + "\n\n")
	} else {
		b.WriteString("Choose an image to analyze.\n\n")
	}

	button := disabledStyle
	if m.control.Enabled() {
		button = buttonStyle
	}
	label := m.control.ButtonLabel()
	if m.control.State() == session.Analyzing {
		label = m.spinner.View() + " " + label
	}
	b.WriteString(button.Render(label))
	b.WriteString("\n\n")

	if err := m.control.Err(); err != nil {
		b.WriteString(errorStyle.Render(err.Error()))
		b.WriteString("\n\n")
	}
	if res := m.control.Result(); res != nil {
		b.WriteString(render.Terminal(*res, m.barWidth))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("enter select • i/a identify style • r reset • q quit"))
	return b.String()
}
