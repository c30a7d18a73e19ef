package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/wasm-bindgen/abi"
	"github.com/wippyai/wasm-bindgen/bind"
	"github.com/wippyai/wasm-bindgen/runtime"
)

func paramTypeStr(f bind.Signature, i int) string {
	return abi.TypeString(f.Params[i].Type)
}

func resultTypeStr(f bind.Signature) string {
	return abi.TypeString(f.Results[0].Type)
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	scalarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	marshaledStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func styleFor(classification string) lipgloss.Style {
	if classification == "scalar" {
		return scalarStyle
	}
	return marshaledStyle
}

type interactiveModel struct {
	err      error
	rt       *runtime.Runtime
	module   *runtime.Module
	instance *runtime.Instance
	filename string
	result   string
	funcs    []bind.Signature
	inputs   []textinput.Model
	selected int
	focusIdx int
	state    modelState
}

type modelState int

const (
	stateSelectFunc modelState = iota
	stateInputArgs
	stateShowResult
)

func newInteractiveModel(filename string) *interactiveModel {
	return &interactiveModel{
		filename: filename,
		state:    stateSelectFunc,
	}
}

type loadedMsg struct {
	err   error
	rt    *runtime.Runtime
	mod   *runtime.Module
	funcs []bind.Signature
}

type callResultMsg struct {
	err    error
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadModule
}

func (m *interactiveModel) loadModule() tea.Msg {
	ctx := context.Background()

	rt, mod, err := loadModule(ctx, m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}

	funcs, err := mod.Signatures()
	if err != nil {
		rt.Close(ctx)
		return loadedMsg{err: err}
	}

	return loadedMsg{funcs: funcs, rt: rt, mod: mod}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			ctx := context.Background()
			if m.instance != nil {
				m.instance.Close(ctx)
			}
			if m.rt != nil {
				m.rt.Close(ctx)
			}
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectFunc && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectFunc && m.selected < len(m.funcs)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectFunc:
				m.prepareInputs()
				if len(m.inputs) == 0 {
					return m, m.callFunction
				}
				m.state = stateInputArgs

			case stateInputArgs:
				return m, m.callFunction

			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateSelectFunc
				m.inputs = nil
			case stateShowResult:
				m.state = stateSelectFunc
				m.result = ""
				m.err = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.funcs = msg.funcs
		m.rt = msg.rt
		m.module = msg.mod

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) prepareInputs() {
	f := m.funcs[m.selected]
	m.inputs = make([]textinput.Model, len(f.Params))
	for i, p := range f.Params {
		ti := textinput.New()
		ti.Placeholder = paramTypeStr(f, i)
		ti.Prompt = p.Name + ": "
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *interactiveModel) callFunction() tea.Msg {
	ctx := context.Background()

	if m.instance == nil {
		if m.module == nil {
			return callResultMsg{err: fmt.Errorf("module not loaded")}
		}
		inst, err := m.module.Instantiate(ctx)
		if err != nil {
			return callResultMsg{err: err}
		}
		m.instance = inst
	}

	f := m.funcs[m.selected]
	args := make([]any, len(m.inputs))
	for i, input := range m.inputs {
		v, err := parseArg(input.Value(), f.Params[i].Type)
		if err != nil {
			return callResultMsg{err: err}
		}
		args[i] = v
	}

	result, err := m.instance.Call(ctx, f.Name, args...)
	if err != nil {
		return callResultMsg{err: err}
	}

	if len(f.Results) == 0 {
		return callResultMsg{result: "(no result)"}
	}
	return callResultMsg{result: fmt.Sprintf("%v", result)}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if len(m.funcs) == 0 {
		return "Loading module..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("WASM Bindgen"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		b.WriteString("Select a function to call:\n\n")
		for i, f := range m.funcs {
			cursor := "  "
			if i == m.selected {
				cursor = "> "
				b.WriteString(selectedStyle.Render(cursor + m.formatFunc(f)))
			} else {
				b.WriteString(cursor + m.formatFunc(f))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateInputArgs:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(f.Name)))
		for i, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(paramTypeStr(f, i)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateShowResult:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(f.Name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) formatFunc(f bind.Signature) string {
	var params []string
	for i, p := range f.Params {
		params = append(params, p.Name+": "+typeStyle.Render(paramTypeStr(f, i)))
	}
	result := ""
	if len(f.Results) > 0 {
		result = " -> " + typeStyle.Render(resultTypeStr(f))
	}
	return funcStyle.Render(f.Name) + "(" + strings.Join(params, ", ") + ")" + result
}

func runInteractive(filename string) error {
	if _, err := os.Stat(filename); err != nil {
		return err
	}
	p := tea.NewProgram(newInteractiveModel(filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
