package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/binlayout"
	"github.com/wippyai/binlayout/codec"
	"github.com/wippyai/binlayout/cursor"
)

type interactiveModel struct {
	err      error
	compiled *binlayout.Compiled
	cur      *cursor.Cursor
	root     cursor.View
	opts     options
	data     []byte
	types    []*codec.Field
	input    textinput.Model
	selected int
	state    modelState
}

type modelState int

const (
	stateSelectType modelState = iota
	stateShowLayout
	stateBrowseData
)

func newInteractiveModel(opts options) *interactiveModel {
	ti := textinput.New()
	ti.Prompt = "index: "
	ti.Placeholder = "0"
	ti.CharLimit = 12
	ti.Width = 20
	return &interactiveModel{
		opts:  opts,
		input: ti,
		state: stateSelectType,
	}
}

type loadedMsg struct {
	err      error
	compiled *binlayout.Compiled
	data     []byte
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadSchema
}

func (m *interactiveModel) loadSchema() tea.Msg {
	compiled, err := compileTypes(m.opts)
	if err != nil {
		return loadedMsg{err: err}
	}
	var data []byte
	if m.opts.dataFile != "" {
		data, err = os.ReadFile(m.opts.dataFile)
		if err != nil {
			return loadedMsg{err: fmt.Errorf("read data: %w", err)}
		}
	}
	return loadedMsg{compiled: compiled, data: data}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateBrowseData {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectType && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectType && m.selected < len(m.types)-1 {
				m.selected++
			}

		case "left", "pgup":
			if m.state == stateBrowseData {
				m.move(m.cur.Index() - 1)
				return m, nil
			}

		case "right", "pgdown":
			if m.state == stateBrowseData {
				m.move(m.cur.Index() + 1)
				return m, nil
			}

		case "enter":
			switch m.state {
			case stateSelectType:
				m.open()
			case stateBrowseData:
				m.jump()
				return m, nil
			case stateShowLayout:
				m.state = stateSelectType
			}

		case "esc":
			m.state = stateSelectType
			m.err = nil
			m.input.Blur()
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.compiled = msg.compiled
		m.data = msg.data
		m.types = msg.compiled.Types
		if m.opts.typeName != "" {
			for i, f := range m.types {
				if f.TypeName == m.opts.typeName {
					m.selected = i
					m.open()
					m.move(m.opts.index)
					break
				}
			}
		}
	}

	if m.state == stateBrowseData {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	return m, nil
}

// open shows the selected type, bound to the data file when there is one.
func (m *interactiveModel) open() {
	m.err = nil
	if len(m.types) == 0 {
		return
	}
	f := m.types[m.selected]
	if m.data == nil {
		m.state = stateShowLayout
		return
	}
	cur, root, err := m.compiled.Cursor(f.TypeName, m.data)
	if err != nil {
		m.err = err
		m.state = stateShowLayout
		return
	}
	m.cur = cur
	m.root = root
	m.state = stateBrowseData
	m.input.SetValue("")
	m.input.Focus()
}

func (m *interactiveModel) jump() {
	s := strings.TrimSpace(m.input.Value())
	if s == "" {
		return
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		m.err = fmt.Errorf("index %q is not a number", s)
		return
	}
	m.move(i)
	m.input.SetValue("")
}

func (m *interactiveModel) move(i int) {
	if m.cur == nil {
		return
	}
	m.err = m.cur.SetIndex(i)
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state == stateSelectType {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.compiled == nil {
		return "Loading schema..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Layout Inspector"))
	b.WriteString(" ")
	b.WriteString(m.source())
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectType:
		if len(m.types) == 0 {
			b.WriteString("Schema declares no types.\n\n")
			b.WriteString(helpStyle.Render("q quit"))
			break
		}
		b.WriteString("Select a type:\n\n")
		for i, f := range m.types {
			line := fmt.Sprintf("%s  %s", f.TypeName, typeStyle.Render(fmt.Sprintf("%s, %d octets", f.Access, f.Size)))
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + f.TypeName))
				b.WriteString(line[len(f.TypeName):])
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		help := "↑/↓ select • enter show layout • q quit"
		if m.data != nil {
			help = "↑/↓ select • enter browse data • q quit"
		}
		b.WriteString(helpStyle.Render(help))

	case stateShowLayout:
		b.WriteString(renderLayout(m.types[m.selected], true))
		if m.err != nil {
			b.WriteString("\n")
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter/esc back • q quit"))

	case stateBrowseData:
		f := m.types[m.selected]
		b.WriteString(fmt.Sprintf("%s[%d] of %d at offset %d\n\n",
			nameStyle.Render(f.TypeName), m.cur.Index(), m.cur.Len(), m.cur.Base()))
		if m.cur.Len() > 0 {
			b.WriteString(renderValues(m.root, true))
		}
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("←/→ previous/next • enter jump to index • esc back • ctrl+c quit"))
	}

	return b.String()
}

func (m *interactiveModel) source() string {
	if m.opts.schemaFile != "" {
		return m.opts.schemaFile
	}
	return m.opts.witFile
}

func runInteractive(opts options) error {
	p := tea.NewProgram(newInteractiveModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
