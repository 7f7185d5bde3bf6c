package view

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/invoicer/internal/delivery"
	"github.com/MrJamesThe3rd/invoicer/internal/format"
	"github.com/MrJamesThe3rd/invoicer/internal/status"
	"github.com/MrJamesThe3rd/invoicer/internal/transaction"
)

var errPhoneAborted = errors.New("phone prompt aborted")

type Transactions interface {
	ListInvoiceable(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

type Deliverer interface {
	Deliver(ctx context.Context, req delivery.Request) (*delivery.Attempt, error)
	Busy(ch delivery.Channel, txID string) bool
}

type consoleState int

const (
	consoleStateTable consoleState = iota
	consoleStateTimeframe
	consoleStatePhone
)

type loadTxsMsg struct {
	txs []*transaction.Transaction
	err error
}

type deliveredMsg struct {
	channel delivery.Channel
	txID    string
	attempt *delivery.Attempt
	err     error
}

// ConsoleModel lists invoiceable transactions and delivers the selected one.
type ConsoleModel struct {
	CommonModel
	transactions Transactions
	deliverer    Deliverer
	role         string

	state   consoleState
	picker  TimeframePicker
	table   table.Model
	spinner spinner.Model

	label  string
	filter transaction.ListFilter
	txs    []*transaction.Transaction

	loading  bool
	err      error
	inFlight map[string]string
	toast    *status.Notice
	modal    *status.Notice

	form       *huh.Form
	phone      *string
	phoneReply chan<- phoneReply
}

func NewConsoleModel(txs Transactions, d Deliverer, role string) ConsoleModel {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Type", Width: 10},
		{Title: "Number", Width: 14},
		{Title: "Counterparty", Width: 28},
		{Title: "Total", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	initial := TimeframeThisMonth
	start, end, _ := initial.Range(timeNow())

	return ConsoleModel{
		transactions: txs,
		deliverer:    d,
		role:         role,
		picker:       NewTimeframePicker(initial),
		table:        t,
		spinner:      sp,
		label:        initial.String(),
		filter:       transaction.ListFilter{StartDate: &start, EndDate: &end},
		loading:      true,
		inFlight:     map[string]string{},
	}
}

func (m ConsoleModel) Title() string { return "Invoices" }

func (m ConsoleModel) ShortHelp() string {
	switch {
	case m.modal != nil:
		return "enter: dismiss"
	case m.state == consoleStateTimeframe:
		return "enter: select | esc: cancel"
	case m.state == consoleStatePhone:
		return "enter: send | esc: cancel"
	}

	return "d: download | p: print | e: email | w: chat | D: detailed chat | t: timeframe | r: refresh | q: quit"
}

func (m ConsoleModel) Init() tea.Cmd {
	return m.loadTxsCmd()
}

func (m ConsoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.table.SetHeight(max(msg.Height-10, 5))

		return m, nil

	case loadTxsMsg:
		m.loading = false
		m.err = msg.err

		if msg.err == nil {
			m.txs = msg.txs
			m.refreshRows()
		}

		return m, nil

	case NoticeMsg:
		return m.handleNotice(status.Notice(msg))

	case deliveredMsg:
		delete(m.inFlight, inFlightKey(msg.channel, msg.txID))

		if errors.Is(msg.err, delivery.ErrInFlight) {
			m.toast = &status.Notice{
				Kind:    status.KindToast,
				Level:   status.LevelInfo,
				Message: fmt.Sprintf("%s is already in progress", msg.channel),
			}
		}

		return m, nil

	case PhoneRequestMsg:
		return m.openPhoneForm(msg)

	case spinner.TickMsg:
		if len(m.inFlight) == 0 {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case TimeframeSelectedMsg:
		m.label = msg.Label
		m.filter = msg.Filter
		m.state = consoleStateTable
		m.loading = true
		m.picker.Reset()
		m.table.Focus()

		return m, m.loadTxsCmd()
	}

	switch m.state {
	case consoleStateTimeframe:
		return m.updateTimeframe(msg)
	case consoleStatePhone:
		return m.updatePhone(msg)
	}

	return m.updateTable(msg)
}

func (m ConsoleModel) handleNotice(n status.Notice) (tea.Model, tea.Cmd) {
	key := inFlightKey(delivery.Channel(n.Channel), n.TransactionID)

	switch n.Kind {
	case status.KindProgress:
		if _, ok := m.inFlight[key]; ok {
			m.inFlight[key] = n.Stage
		}
	case status.KindToast:
		m.toast = &n
	case status.KindModal:
		m.modal = &n
	}

	return m, nil
}

func (m ConsoleModel) updateTable(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)

		return m, cmd
	}

	if m.modal != nil {
		if key.Type == tea.KeyEnter || key.Type == tea.KeyEsc {
			m.modal = nil
		}

		return m, nil
	}

	switch key.String() {
	case "q", "esc":
		return m, Back
	case "r":
		m.loading = true
		return m, m.loadTxsCmd()
	case "t":
		m.state = consoleStateTimeframe
		m.table.Blur()

		return m, nil
	case "d":
		return m.deliver(delivery.ChannelDownload, false)
	case "p":
		return m.deliver(delivery.ChannelPrint, false)
	case "e":
		return m.deliver(delivery.ChannelEmail, false)
	case "w":
		return m.deliver(delivery.ChannelChat, false)
	case "D":
		return m.deliver(delivery.ChannelChat, true)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m ConsoleModel) updateTimeframe(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc && !m.picker.custom {
		m.state = consoleStateTable
		m.table.Focus()

		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	return m, cmd
}

func (m ConsoleModel) selectedTx() *transaction.Transaction {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.txs) {
		return nil
	}

	return m.txs[idx]
}

func (m ConsoleModel) deliver(ch delivery.Channel, detailed bool) (tea.Model, tea.Cmd) {
	tx := m.selectedTx()
	if tx == nil {
		return m, nil
	}

	key := inFlightKey(ch, tx.ID)
	if _, busy := m.inFlight[key]; busy || m.deliverer.Busy(ch, tx.ID) {
		return m, nil
	}

	m.inFlight[key] = string(delivery.StateIdle)
	m.toast = nil

	req := delivery.Request{
		Channel:     ch,
		Transaction: tx,
		Detailed:    detailed,
		Role:        m.role,
	}

	d := m.deliverer
	run := func() tea.Msg {
		att, err := d.Deliver(context.Background(), req)
		return deliveredMsg{channel: ch, txID: tx.ID, attempt: att, err: err}
	}

	return m, tea.Batch(run, m.spinner.Tick)
}

func (m ConsoleModel) openPhoneForm(msg PhoneRequestMsg) (tea.Model, tea.Cmd) {
	// One prompt at a time; a second chat waits for the first to be answered.
	if m.phoneReply != nil {
		msg.reply <- phoneReply{err: errPhoneAborted}
		return m, nil
	}

	m.phone = new(string)
	m.phoneReply = msg.reply

	title := "Phone number"
	if msg.Name != "" {
		title = fmt.Sprintf("Phone number for %s", msg.Name)
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("phone").
				Title(title).
				Placeholder("+351 912 345 678").
				Value(m.phone).
				Validate(func(s string) error {
					if delivery.Digits(s) == "" {
						return errors.New("enter a number with at least one digit")
					}

					return nil
				}),
		),
	).WithWidth(40).WithShowHelp(false)

	m.state = consoleStatePhone
	m.table.Blur()

	return m, m.form.Init()
}

func (m ConsoleModel) updatePhone(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.Type == tea.KeyEsc {
		return m.answerPhone(phoneReply{err: errPhoneAborted}), nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m.answerPhone(phoneReply{phone: strings.TrimSpace(*m.phone)}), nil
	case huh.StateAborted:
		return m.answerPhone(phoneReply{err: errPhoneAborted}), nil
	}

	return m, cmd
}

func (m ConsoleModel) answerPhone(r phoneReply) ConsoleModel {
	if m.phoneReply != nil {
		m.phoneReply <- r
	}

	m.phoneReply = nil
	m.form = nil
	m.phone = nil
	m.state = consoleStateTable
	m.table.Focus()

	return m
}

func (m ConsoleModel) loadTxsCmd() tea.Cmd {
	svc := m.transactions
	filter := m.filter

	return func() tea.Msg {
		ctx, cancel := serviceCtx()
		defer cancel()

		txs, err := svc.ListInvoiceable(ctx, filter)

		return loadTxsMsg{txs: txs, err: err}
	}
}

func (m *ConsoleModel) refreshRows() {
	rows := make([]table.Row, 0, len(m.txs))

	for _, tx := range m.txs {
		name := ""
		if cp := tx.Counterparty.Value; cp != nil {
			name = cp.Name
		}

		rows = append(rows, table.Row{
			format.ISODate(tx.Date.Time),
			string(tx.Type),
			tx.DocumentNumber(),
			name,
			format.Amount(tx.TotalAmount, tx.Currency),
		})
	}

	m.table.SetRows(rows)
}

func (m ConsoleModel) View() string {
	if m.state == consoleStateTimeframe {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.picker.View())
	}

	header := titleStyle.Render("Invoices") + "  " + helpStyle.Render("Timeframe: "+m.label)

	var body string

	switch {
	case m.loading:
		body = "Loading transactions..."
	case m.err != nil:
		body = errorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	case len(m.txs) == 0:
		body = "No invoiceable transactions in this timeframe."
	default:
		body = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View())
	}

	if m.state == consoleStatePhone && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(48).
			Render("Send via chat\n\n" + m.form.View())

		body = lipgloss.JoinHorizontal(lipgloss.Top, body, panel)
	}

	parts := []string{header, "", body, "", m.statusLine()}

	if m.modal != nil {
		title := m.modal.Title
		if title == "" {
			title = "Delivery failed"
		}

		parts = append(parts, "", modalStyle.Render(
			errorStyle.Bold(true).Render(title)+"\n\n"+m.modal.Message+"\n\n"+helpStyle.Render("enter: dismiss"),
		))
	}

	parts = append(parts, "", helpStyle.Render(m.ShortHelp()))

	return lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// statusLine shows running deliveries, falling back to the last toast.
func (m ConsoleModel) statusLine() string {
	if len(m.inFlight) > 0 {
		stages := make([]string, 0, len(m.inFlight))
		for _, key := range slices.Sorted(maps.Keys(m.inFlight)) {
			stages = append(stages, fmt.Sprintf("%s (%s)", key, m.inFlight[key]))
		}

		return m.spinner.View() + " " + strings.Join(stages, ", ")
	}

	if m.toast == nil {
		return ""
	}

	return toastStyle(m.toast.Level).Render(m.toast.Message)
}

func toastStyle(level status.Level) lipgloss.Style {
	switch level {
	case status.LevelSuccess:
		return successStyle
	case status.LevelWarning:
		return warningStyle
	case status.LevelError:
		return errorStyle
	}

	return infoStyle
}

func inFlightKey(ch delivery.Channel, txID string) string {
	return string(ch) + "/" + txID
}
