package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/msgpack"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type inspectorModel struct {
	err      error
	filename string
	values   []*node
	rows     []*node
	cursor   int
	top      int
	height   int
	filter   textinput.Model
	state    modelState
}

// node is one row of the value tree.
type node struct {
	label    string
	preview  string
	parent   *node
	children []*node
	depth    int
	expanded bool
}

type modelState int

const (
	stateBrowse modelState = iota
	stateFilter
)

func newInspectorModel(filename string) *inspectorModel {
	ti := textinput.New()
	ti.Placeholder = "filter"
	ti.Prompt = "/ "
	ti.Width = 40
	return &inspectorModel{
		filename: filename,
		filter:   ti,
		height:   24,
		state:    stateBrowse,
	}
}

type loadedMsg struct {
	err    error
	values []*node
}

func (m *inspectorModel) Init() tea.Cmd {
	return m.loadFile
}

func (m *inspectorModel) loadFile() tea.Msg {
	data, err := os.ReadFile(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}

	dec := msgpack.DecodeOptions{
		OrderedMaps:      true,
		AllowInvalidUTF8: true,
	}.NewDecoder(bytes.NewReader(data))

	var values []*node
	for {
		v, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return loadedMsg{err: err}
		}
		label := strconv.Itoa(len(values))
		values = append(values, buildNode(label, v, nil))
	}
	if len(values) == 0 {
		return loadedMsg{err: errors.New("empty input")}
	}
	return loadedMsg{values: values}
}

// buildNode converts a decoded value into a tree row with one child
// per element or entry.
func buildNode(label string, v any, parent *node) *node {
	n := &node{label: label, parent: parent}
	if parent != nil {
		n.depth = parent.depth + 1
	}

	switch x := v.(type) {
	case []any:
		n.preview = fmt.Sprintf("array[%d]", len(x))
		for i, e := range x {
			n.children = append(n.children, buildNode(strconv.Itoa(i), e, n))
		}
	case *msgpack.OrderedMap:
		n.preview = fmt.Sprintf("map[%d]", x.Len())
		for _, p := range x.Pairs() {
			n.children = append(n.children, buildNode(previewValue(p.Key), p.Value, n))
		}
	case map[any]any:
		n.preview = fmt.Sprintf("map[%d]", len(x))
		keys := make([]any, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			return previewValue(keys[i]) < previewValue(keys[j])
		})
		for _, k := range keys {
			n.children = append(n.children, buildNode(previewValue(k), x[k], n))
		}
	default:
		n.preview = previewValue(v)
	}
	return n
}

// previewValue renders a value for a single row, truncating long
// strings and payloads.
func previewValue(v any) string {
	const maxPreview = 48

	switch x := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return truncate(strconv.Quote(x), maxPreview)
	case []byte:
		return truncate(fmt.Sprintf("h'%x'", x), maxPreview)
	case msgpack.Ext:
		return fmt.Sprintf("ext(%d, %d bytes)", x.Type, len(x.Data))
	case msgpack.ExtKey:
		return fmt.Sprintf("ext(%d, %d bytes)", x.Type, len(x.Data))
	case []any:
		return fmt.Sprintf("array[%d]", len(x))
	case *msgpack.OrderedMap:
		return fmt.Sprintf("map[%d]", x.Len())
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8 {
			data := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(data), rv)
			return truncate(fmt.Sprintf("h'%x'", data), maxPreview)
		}
		return truncate(fmt.Sprintf("%v", v), maxPreview)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

func (m *inspectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height

	case tea.KeyMsg:
		if m.state == stateFilter {
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "esc":
				m.filter.SetValue("")
				m.filter.Blur()
				m.state = stateBrowse
				m.rebuildRows()
			case "enter":
				m.filter.Blur()
				m.state = stateBrowse
			default:
				var cmd tea.Cmd
				m.filter, cmd = m.filter.Update(msg)
				m.rebuildRows()
				return m, cmd
			}
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}

		case "enter", " ":
			if n := m.current(); n != nil && len(n.children) > 0 {
				n.expanded = !n.expanded
				m.rebuildRows()
			}

		case "right", "l":
			if n := m.current(); n != nil && len(n.children) > 0 && !n.expanded {
				n.expanded = true
				m.rebuildRows()
			}

		case "left", "h":
			if n := m.current(); n != nil {
				if n.expanded {
					n.expanded = false
					m.rebuildRows()
				} else if n.parent != nil {
					m.moveTo(n.parent)
				}
			}

		case "/":
			m.state = stateFilter
			m.filter.Focus()
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.values = msg.values
		for _, v := range m.values {
			v.expanded = true
		}
		m.rebuildRows()
	}

	m.scroll()
	return m, nil
}

func (m *inspectorModel) current() *node {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor]
}

func (m *inspectorModel) moveTo(target *node) {
	for i, n := range m.rows {
		if n == target {
			m.cursor = i
			return
		}
	}
}

// rebuildRows flattens the tree into visible rows. With a filter set,
// expansion state is ignored and every matching row is shown.
func (m *inspectorModel) rebuildRows() {
	m.rows = m.rows[:0]
	query := strings.ToLower(m.filter.Value())

	var walk func(n *node)
	walk = func(n *node) {
		if query == "" {
			m.rows = append(m.rows, n)
			if n.expanded {
				for _, c := range n.children {
					walk(c)
				}
			}
			return
		}
		if strings.Contains(strings.ToLower(n.label), query) ||
			strings.Contains(strings.ToLower(n.preview), query) {
			m.rows = append(m.rows, n)
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	for _, v := range m.values {
		walk(v)
	}

	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// scroll keeps the cursor inside the visible window.
func (m *inspectorModel) scroll() {
	visible := m.height - 4
	if visible < 1 {
		visible = 1
	}
	if m.cursor < m.top {
		m.top = m.cursor
	}
	if m.cursor >= m.top+visible {
		m.top = m.cursor - visible + 1
	}
}

func (m *inspectorModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if len(m.values) == 0 {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("MsgPack Inspector"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n")

	if m.state == stateFilter || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	} else {
		b.WriteString("\n")
	}

	visible := m.height - 4
	if visible < 1 {
		visible = 1
	}
	end := m.top + visible
	if end > len(m.rows) {
		end = len(m.rows)
	}
	for i := m.top; i < end; i++ {
		n := m.rows[i]
		marker := "  "
		if len(n.children) > 0 {
			if n.expanded {
				marker = "▾ "
			} else {
				marker = "▸ "
			}
		}
		line := strings.Repeat("  ", n.depth) + marker +
			keyStyle.Render(n.label) + ": " + typeStyle.Render(n.preview)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.state == stateFilter {
		b.WriteString(helpStyle.Render("type to filter • enter apply • esc clear"))
	} else {
		b.WriteString(helpStyle.Render("↑/↓ move • enter expand • / filter • q quit"))
	}

	return b.String()
}

func runInteractive(filename string) error {
	p := tea.NewProgram(newInspectorModel(filename), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
