package view

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/invoicer/internal/format"
	"github.com/MrJamesThe3rd/invoicer/internal/transaction"
)

var timeNow = time.Now

// Timeframe is a preset or custom date window for the transaction table.
type Timeframe int

const (
	TimeframeThisMonth Timeframe = iota
	TimeframeLastMonth
	TimeframeLast90Days
	TimeframeThisYear
	TimeframeAll
	TimeframeCustom
)

var timeframeLabels = [...]string{
	TimeframeThisMonth:  "This Month",
	TimeframeLastMonth:  "Last Month",
	TimeframeLast90Days: "Last 90 Days",
	TimeframeThisYear:   "This Year",
	TimeframeAll:        "All Time",
	TimeframeCustom:     "Custom Range",
}

func (t Timeframe) String() string {
	if t < 0 || int(t) >= len(timeframeLabels) {
		return "Unknown"
	}

	return timeframeLabels[t]
}

// Range returns the inclusive day window for a preset relative to now.
// All and Custom return ok=false.
func (t Timeframe) Range(now time.Time) (start, end time.Time, ok bool) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	switch t {
	case TimeframeThisMonth:
		return monthStart, day, true
	case TimeframeLastMonth:
		start = monthStart.AddDate(0, -1, 0)
		return start, monthStart.AddDate(0, 0, -1), true
	case TimeframeLast90Days:
		return day.AddDate(0, 0, -89), day, true
	case TimeframeThisYear:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC), day, true
	}

	return time.Time{}, time.Time{}, false
}

// TimeframeSelectedMsg carries the filter chosen in the picker.
type TimeframeSelectedMsg struct {
	Label  string
	Filter transaction.ListFilter
}

func selected(label string, start, end time.Time) tea.Cmd {
	return func() tea.Msg {
		return TimeframeSelectedMsg{
			Label:  label,
			Filter: transaction.ListFilter{StartDate: &start, EndDate: &end},
		}
	}
}

// TimeframePicker lets the user pick a preset or type a custom range.
type TimeframePicker struct {
	cursor Timeframe
	custom bool
	inputs [2]textinput.Model
	focus  int
	now    func() time.Time
	err    error
}

func NewTimeframePicker(initial Timeframe) TimeframePicker {
	var inputs [2]textinput.Model

	for i, prompt := range []string{"From: ", "To:   "} {
		in := textinput.New()
		in.Placeholder = "YYYY-MM-DD"
		in.CharLimit = 10
		in.Width = 12
		in.Prompt = prompt
		inputs[i] = in
	}

	return TimeframePicker{cursor: initial, inputs: inputs, now: timeNow}
}

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	key, isKey := msg.(tea.KeyMsg)

	if !m.custom {
		if isKey {
			return m.updatePresets(key)
		}

		return m, nil
	}

	if isKey {
		switch key.String() {
		case "esc":
			m.custom = false
			m.err = nil

			return m, nil
		case "tab", "shift+tab":
			m.inputs[m.focus].Blur()
			m.focus = 1 - m.focus

			return m, m.inputs[m.focus].Focus()
		case "enter":
			return m.submitCustom()
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)

	return m, cmd
}

func (m TimeframePicker) updatePresets(key tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < TimeframeCustom {
			m.cursor++
		}
	case "enter":
		switch m.cursor {
		case TimeframeCustom:
			m.custom = true
			m.focus = 0

			return m, m.inputs[0].Focus()
		case TimeframeAll:
			return m, func() tea.Msg {
				return TimeframeSelectedMsg{Label: TimeframeAll.String()}
			}
		}

		start, end, _ := m.cursor.Range(m.now())

		return m, selected(m.cursor.String(), start, end)
	}

	return m, nil
}

func (m TimeframePicker) submitCustom() (TimeframePicker, tea.Cmd) {
	start, err := time.Parse(time.DateOnly, strings.TrimSpace(m.inputs[0].Value()))
	if err != nil {
		m.err = errors.New("invalid start date, use YYYY-MM-DD")
		return m, nil
	}

	end, err := time.Parse(time.DateOnly, strings.TrimSpace(m.inputs[1].Value()))
	if err != nil {
		m.err = errors.New("invalid end date, use YYYY-MM-DD")
		return m, nil
	}

	if end.Before(start) {
		m.err = errors.New("end date is before start date")
		return m, nil
	}

	m.err = nil
	label := fmt.Sprintf("%s to %s", format.ISODate(start), format.ISODate(end))

	return m, selected(label, start, end)
}

func (m TimeframePicker) View() string {
	var b strings.Builder

	if m.custom {
		b.WriteString("Custom range:\n\n")
		b.WriteString(m.inputs[0].View() + "\n")
		b.WriteString(m.inputs[1].View() + "\n\n")
		b.WriteString(helpStyle.Render("enter: apply | tab: switch | esc: presets"))
	} else {
		b.WriteString("Show transactions from:\n\n")

		for tf := TimeframeThisMonth; tf <= TimeframeCustom; tf++ {
			cursor := "  "
			if tf == m.cursor {
				cursor = "> "
			}

			b.WriteString(cursor + tf.String() + "\n")
		}

		b.WriteString("\n" + helpStyle.Render("enter: select | esc: cancel"))
	}

	if m.err != nil {
		b.WriteString("\n\n" + errorStyle.Render("Error: "+m.err.Error()))
	}

	return b.String()
}

// Reset returns the picker to the preset list, keeping the cursor.
func (m *TimeframePicker) Reset() {
	m.custom = false
	m.err = nil

	for i := range m.inputs {
		m.inputs[i].Blur()
		m.inputs[i].SetValue("")
	}
}
