package x_log

import (
	"cmp"
	"fmt"
	"io"
	"maps"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
)

const consoleTime = "01-02 15:04:05"

// Theme colors the console writer. Levels are keyed by zerolog level name,
// Fields by field name; other field names use Key.
type Theme struct {
	Levels map[string]lipgloss.Color
	Fields map[string]lipgloss.Color
	Key    lipgloss.Color
	Dim    lipgloss.Color
	Text   lipgloss.Color
}

var darkTheme = Theme{
	Levels: map[string]lipgloss.Color{
		"debug": "#3ddbd9",
		"info":  "#4589ff",
		"warn":  "#ff832b",
		"error": "#da1e28",
		"fatal": "#ff0000",
	},
	Fields: map[string]lipgloss.Color{
		"tree":   "#3ddbd9",
		"depth":  "#78a9ff",
		"req":    "#8d8d8d",
		"module": "#be95ff",
	},
	Key:  "#78a9ff",
	Dim:  "#8d8d8d",
	Text: "#f4f4f4",
}

// lightOverrides replaces the colors unreadable on a light background.
var lightOverrides = Theme{
	Levels: map[string]lipgloss.Color{"info": "#0043ce"},
	Fields: map[string]lipgloss.Color{"tree": "#007d79", "module": "#8a3ffc"},
	Key:    "#0f62fe",
	Text:   "#161616",
}

// ThemeByName returns a copy of the "dark" (default) or "light" theme.
func ThemeByName(name string) *Theme {
	th := darkTheme.merge(Theme{})
	if strings.EqualFold(name, "light") {
		th = darkTheme.merge(lightOverrides)
	}
	return th
}

func (t Theme) merge(o Theme) *Theme {
	out := &Theme{
		Levels: maps.Clone(t.Levels),
		Fields: maps.Clone(t.Fields),
		Key:    cmp.Or(o.Key, t.Key),
		Dim:    cmp.Or(o.Dim, t.Dim),
		Text:   cmp.Or(o.Text, t.Text),
	}
	maps.Copy(out.Levels, o.Levels)
	maps.Copy(out.Fields, o.Fields)
	return out
}

// NewConsoleWriter renders events for a human. A nil theme writes plain
// text without escape codes.
func NewConsoleWriter(out io.Writer, th *Theme) zerolog.ConsoleWriter {
	w := zerolog.ConsoleWriter{Out: out, TimeFormat: consoleTime, NoColor: th == nil}
	if th == nil {
		return w
	}

	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	eq := fg(th.Dim).Render("=")
	errColor := th.Levels["error"]

	w.FormatLevel = func(i any) string {
		name, _ := i.(string)
		bg, ok := th.Levels[name]
		if !ok {
			bg = th.Dim
		}
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(bg).
			Padding(0, 1).
			Render(levelLabel(name))
	}
	w.FormatTimestamp = func(i any) string {
		return fg(th.Dim).Render(fmt.Sprint(i))
	}
	w.FormatMessage = func(i any) string {
		if i == nil {
			return ""
		}
		return fg(th.Text).Render(fmt.Sprint(i))
	}
	w.FormatFieldName = func(i any) string {
		key := fmt.Sprint(i)
		c, ok := th.Fields[key]
		if !ok {
			c = th.Key
		}
		return fg(c).Render(key) + eq
	}
	w.FormatErrFieldName = func(i any) string {
		return fg(errColor).Render(fmt.Sprint(i)) + eq
	}
	w.FormatErrFieldValue = func(i any) string {
		return fg(errColor).Bold(true).Render(fmt.Sprint(i))
	}
	return w
}

// levelLabel gives the three-letter tag zerolog uses (INF, WRN, ...).
func levelLabel(name string) string {
	if lvl, err := zerolog.ParseLevel(name); err == nil {
		if s, ok := zerolog.FormattedLevels[lvl]; ok {
			return s
		}
	}
	return "???"
}
