package template

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/MrJamesThe3rd/invoicer/internal/encoding"
	"github.com/MrJamesThe3rd/invoicer/internal/format"
	"github.com/MrJamesThe3rd/invoicer/internal/transaction"
)

const (
	margin      = 15.0
	thermalWide = 80.0
)

var errNoTransaction = errors.New("template input has no transaction")

// pdfBuilder defers serialization of a laid-out document.
type pdfBuilder struct {
	pdf *gofpdf.Fpdf
}

func (b *pdfBuilder) Finalize() ([]byte, error) {
	var buf bytes.Buffer
	if err := b.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}

	return buf.Bytes(), nil
}

type lineNamer struct{}

func (lineNamer) Name(l transaction.Line) string {
	if n := strings.TrimSpace(l.Name); n != "" {
		return n
	}

	return "Item"
}

func (l layout) documentTitle(tx *transaction.Transaction) string {
	if l.title != "" {
		return l.title
	}

	if tx.Type == transaction.TypeProforma {
		return "PROFORMA INVOICE"
	}

	return "INVOICE"
}

func (l layout) render(ctx context.Context, in Input) (Output, error) {
	if in.Transaction == nil {
		return Output{}, errNoTransaction
	}

	if err := ctx.Err(); err != nil {
		return Output{}, err
	}

	if in.Items == nil {
		in.Items = lineNamer{}
	}

	d := newDoc(l, in)

	if l.thermal {
		d.thermalBody()
	} else {
		d.header()
		d.parties()
		d.lineTable()
		d.totals()
		d.paymentDetails()
		d.notes()
	}

	if d.pdf.Err() {
		return Output{}, fmt.Errorf("laying out %s: %w", d.docTitle, d.pdf.Error())
	}

	b := &pdfBuilder{pdf: d.pdf}
	if !l.eager {
		return Output{Builder: b}, nil
	}

	data, err := b.Finalize()
	if err != nil {
		return Output{}, err
	}

	return Output{Bytes: data}, nil
}

type doc struct {
	layout
	in       Input
	tx       *transaction.Transaction
	pdf      *gofpdf.Fpdf
	tr       func(string) string
	docTitle string
	width    float64
	lh       float64
	size     float64
}

func newDoc(l layout, in Input) *doc {
	var pdf *gofpdf.Fpdf

	if l.thermal {
		pdf = gofpdf.NewCustom(&gofpdf.InitType{
			OrientationStr: "P",
			UnitStr:        "mm",
			Size:           gofpdf.SizeType{Wd: thermalWide, Ht: 297},
		})
		pdf.SetMargins(4, 4, 4)
	} else {
		pdf = gofpdf.New("P", "mm", l.page, "")
		pdf.SetMargins(margin, margin, margin)
	}

	pdf.SetAutoPageBreak(true, margin)
	pdf.AliasNbPages("")

	d := &doc{
		layout:   l,
		in:       in,
		tx:       in.Transaction,
		pdf:      pdf,
		tr:       encoding.Windows1252,
		docTitle: l.documentTitle(in.Transaction),
		lh:       6,
		size:     10,
	}

	if l.compact {
		d.lh = 4.5
		d.size = 8
	}

	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	d.width = pageW - left - right

	pdf.SetTitle(d.docTitle+" "+d.tx.DocumentNumber(), true)
	pdf.SetCreator("invoicer", true)

	if in.Company != nil {
		pdf.SetAuthor(in.Company.Name, true)
	}

	pdf.SetFooterFunc(d.footer)
	pdf.AddPage()

	return d
}

func (d *doc) setFont(style string, delta float64) {
	d.pdf.SetFont(d.layout.font, style, d.size+delta)
}

func (d *doc) accentText() {
	d.pdf.SetTextColor(d.accent.r, d.accent.g, d.accent.b)
}

func (d *doc) plainText() {
	d.pdf.SetTextColor(0, 0, 0)
}

func (d *doc) text(w float64, s, align string) {
	d.pdf.CellFormat(w, d.lh, d.tr(s), "", 1, align, false, 0, "")
}

func (d *doc) header() {
	company := d.in.Company
	companyName := ""

	if company != nil {
		companyName = company.Name
	}

	if d.headerBand {
		d.pdf.SetFillColor(d.accent.r, d.accent.g, d.accent.b)
		d.pdf.Rect(0, 0, d.width+2*margin, 28, "F")
		d.pdf.SetTextColor(255, 255, 255)
		d.pdf.SetXY(margin, 8)
		d.setFont("B", 8)
		d.pdf.CellFormat(d.width/2, 10, d.tr(companyName), "", 0, "L", false, 0, "")
		d.pdf.CellFormat(d.width/2, 10, d.tr(d.docTitle), "", 1, "R", false, 0, "")
		d.pdf.SetY(32)
		d.plainText()
	} else {
		align := "L"
		if d.letterhead {
			align = "C"
		}

		d.accentText()
		d.setFont("B", 8)
		d.pdf.CellFormat(d.width, 10, d.tr(companyName), "", 1, align, false, 0, "")
		d.plainText()
	}

	d.setFont("", -1)

	if company != nil {
		align := "L"
		if d.letterhead {
			align = "C"
		}

		for _, line := range company.Address.Lines() {
			d.text(d.width, line, align)
		}

		var ids []string
		if company.RegistrationNumber != "" {
			ids = append(ids, "Reg. No. "+company.RegistrationNumber)
		}

		if company.TaxID != "" {
			ids = append(ids, "Tax ID "+company.TaxID)
		}

		if len(ids) > 0 {
			d.text(d.width, strings.Join(ids, "  |  "), align)
		}

		contact := joinNonEmpty("  |  ", company.Email, company.Phone, company.Website)
		if contact != "" {
			d.text(d.width, contact, align)
		}
	}

	if d.cobrand && d.in.OwnerClient != nil {
		d.setFont("I", -2)
		d.accentText()
		d.text(d.width, "In partnership with "+d.in.OwnerClient.Name, "L")
		d.plainText()
	}

	d.pdf.Ln(4)

	if !d.headerBand {
		d.accentText()
		d.setFont("B", 6)
		d.text(d.width, d.docTitle, "R")
		d.plainText()
	}

	d.setFont("", 0)
	d.text(d.width, "No. "+d.tx.DocumentNumber(), "R")
	d.text(d.width, "Date "+format.Date(d.tx.Date.Time), "R")

	if d.tx.DueDate != nil && !d.tx.DueDate.IsZero() {
		d.text(d.width, "Due "+format.Date(d.tx.DueDate.Time), "R")
	}

	d.pdf.Ln(3)
}

func (d *doc) parties() {
	half := d.width / 2
	y := d.pdf.GetY()

	end := d.block(margin, y, half, "Bill To", d.billTo())

	if ship := d.in.ShippingAddress; ship != nil {
		end = max(end, d.block(margin+half, y, half, "Ship To", ship.Lines()))
	}

	d.pdf.SetXY(margin, end)
	d.pdf.Ln(4)
}

func (d *doc) billTo() []string {
	cp := d.in.Counterparty
	if cp == nil {
		return []string{"-"}
	}

	lines := []string{cp.Name}
	lines = append(lines, cp.Address.Lines()...)

	if cp.TaxID != "" {
		lines = append(lines, "Tax ID "+cp.TaxID)
	}

	if contact := joinNonEmpty("  ", cp.Email, cp.Phone); contact != "" {
		lines = append(lines, contact)
	}

	return lines
}

// block draws a titled column of lines at x,y and returns the y below it.
func (d *doc) block(x, y, w float64, heading string, lines []string) float64 {
	d.pdf.SetXY(x, y)
	d.accentText()
	d.setFont("B", 0)
	d.pdf.CellFormat(w, d.lh, d.tr(heading), "", 2, "L", false, 0, "")
	d.plainText()
	d.setFont("", 0)

	for _, line := range lines {
		d.pdf.CellFormat(w, d.lh, d.tr(line), "", 2, "L", false, 0, "")
	}

	return d.pdf.GetY()
}

type column struct {
	title string
	width float64
	align string
}

func (d *doc) columns() []column {
	qty := d.qtyLabel
	if qty == "" {
		qty = "Qty"
	}

	price := d.priceLabel
	if price == "" {
		price = "Unit Price"
	}

	cols := []column{
		{"#", 8, "C"},
		{"Description", 0, "L"},
		{qty, 16, "R"},
		{"Unit", 14, "L"},
		{price, 26, "R"},
	}

	if d.taxColumn {
		cols = append(cols, column{"Tax", 22, "R"})
	}

	cols = append(cols, column{"Amount", 28, "R"})

	fixed := 0.0
	for _, c := range cols {
		fixed += c.width
	}

	cols[1].width = d.width - fixed

	return cols
}

func (d *doc) tableHeader(cols []column) {
	d.pdf.SetFillColor(d.accent.r, d.accent.g, d.accent.b)
	d.pdf.SetTextColor(255, 255, 255)
	d.setFont("B", -1)

	for _, c := range cols {
		d.pdf.CellFormat(c.width, d.lh+1, d.tr(c.title), "", 0, c.align, true, 0, "")
	}

	d.pdf.Ln(-1)
	d.plainText()
	d.setFont("", -1)
}

func (d *doc) lineTable() {
	cols := d.columns()
	d.pdf.SetX(margin)
	d.tableHeader(cols)

	_, pageH := d.pdf.GetPageSize()

	for i, line := range d.tx.Lines {
		name := d.in.Items.Name(line)
		wrapped := d.pdf.SplitLines([]byte(d.tr(name)), cols[1].width-2)
		rowH := float64(max(1, len(wrapped))) * d.lh

		if d.pdf.GetY()+rowH > pageH-margin-10 {
			d.pdf.AddPage()
			d.tableHeader(cols)
		}

		fill := i%2 == 1
		if fill {
			d.pdf.SetFillColor(lightGrey.r, lightGrey.g, lightGrey.b)
		}

		x, y := d.pdf.GetXY()
		cells := []string{
			fmt.Sprintf("%d", i+1),
			"",
			format.Quantity(line.Quantity),
			line.Unit,
			format.Number(line.UnitPrice),
		}

		if d.taxColumn {
			tax := ""
			if line.TaxAmount != nil {
				tax = format.Number(*line.TaxAmount)
			}

			cells = append(cells, tax)
		}

		cells = append(cells, format.Number(line.Amount))

		cx := x
		for ci, c := range cols {
			d.pdf.SetXY(cx, y)

			if ci == 1 {
				d.pdf.MultiCell(c.width, d.lh, string(bytes.Join(wrapped, []byte("\n"))), "", "L", fill)
			} else {
				d.pdf.CellFormat(c.width, rowH, d.tr(cells[ci]), "", 0, c.align, fill, 0, "")
			}

			cx += c.width
		}

		d.pdf.SetXY(x, y+rowH)
	}

	d.pdf.SetDrawColor(d.accent.r, d.accent.g, d.accent.b)
	d.pdf.Line(margin, d.pdf.GetY(), margin+d.width, d.pdf.GetY())
	d.pdf.Ln(2)
}

func (d *doc) totals() {
	labelW := d.width - 40
	currency := d.tx.Currency

	row := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}

		d.setFont(style, 0)
		d.pdf.CellFormat(labelW, d.lh, d.tr(label), "", 0, "R", false, 0, "")
		d.pdf.CellFormat(40, d.lh, d.tr(value), "", 1, "R", false, 0, "")
	}

	row("Subtotal", format.Amount(d.tx.Subtotal(), currency), false)

	if tax := d.tx.TaxTotal(); !tax.IsZero() {
		row("Tax", format.Amount(tax, currency), false)
	}

	d.accentText()
	row("Total", format.Amount(d.tx.TotalAmount, currency), true)
	d.plainText()

	if d.tx.PaymentMethod != "" {
		d.setFont("I", -1)
		d.text(d.width, "Payment method: "+d.tx.PaymentMethod, "R")
	}

	d.pdf.Ln(4)
}

func (d *doc) paymentDetails() {
	b := d.in.Bank
	if b == nil || d.hideBank {
		return
	}

	d.accentText()
	d.setFont("B", 0)
	d.text(d.width, "Payment Details", "L")
	d.plainText()
	d.setFont("", -1)

	for _, kv := range [][2]string{
		{"Bank", b.BankName},
		{"Account name", b.AccountName},
		{"Account no.", b.AccountNumber},
		{"IBAN", b.IBAN},
		{"SWIFT/BIC", b.SWIFT},
		{"Branch", b.Branch},
	} {
		if kv[1] == "" {
			continue
		}

		d.text(d.width, kv[0]+": "+kv[1], "L")
	}

	d.pdf.Ln(3)
}

func (d *doc) notes() {
	if strings.TrimSpace(d.tx.Notes) == "" {
		return
	}

	d.setFont("B", 0)
	d.text(d.width, "Notes", "L")
	d.setFont("", -1)
	d.pdf.MultiCell(d.width, d.lh, d.tr(d.tx.Notes), "", "L", false)
}

func (d *doc) footer() {
	if d.thermal {
		return
	}

	d.pdf.SetY(-12)
	d.setFont("I", -3)
	d.pdf.SetTextColor(120, 120, 120)

	left := ""
	if d.cobrand && d.in.OwnerClient != nil {
		left = joinNonEmpty("  ", "Issued via "+d.in.OwnerClient.Name, d.in.OwnerClient.Website)
	}

	d.pdf.CellFormat(d.width/2, 6, d.tr(left), "", 0, "L", false, 0, "")
	d.pdf.CellFormat(d.width/2, 6, fmt.Sprintf("Page %d/{nb}", d.pdf.PageNo()), "", 0, "R", false, 0, "")
	d.plainText()
}

func (d *doc) thermalBody() {
	d.setFont("B", 2)

	if d.in.Company != nil {
		d.text(d.width, d.in.Company.Name, "C")
		d.setFont("", -1)

		for _, line := range d.in.Company.Address.Lines() {
			d.text(d.width, line, "C")
		}

		if d.in.Company.TaxID != "" {
			d.text(d.width, "Tax ID "+d.in.Company.TaxID, "C")
		}
	}

	d.setFont("B", 0)
	d.text(d.width, d.docTitle+" "+d.tx.DocumentNumber(), "C")
	d.setFont("", 0)
	d.text(d.width, format.Date(d.tx.Date.Time), "C")

	if d.in.Counterparty != nil {
		d.text(d.width, d.in.Counterparty.Name, "C")
	}

	d.text(d.width, strings.Repeat("-", 40), "C")

	for _, line := range d.tx.Lines {
		d.pdf.MultiCell(d.width, d.lh, d.tr(d.in.Items.Name(line)), "", "L", false)
		detail := fmt.Sprintf("%s x %s", format.Quantity(line.Quantity), format.Number(line.UnitPrice))
		d.pdf.CellFormat(d.width/2, d.lh, d.tr(detail), "", 0, "L", false, 0, "")
		d.pdf.CellFormat(d.width/2, d.lh, d.tr(format.Number(line.Amount)), "", 1, "R", false, 0, "")
	}

	d.text(d.width, strings.Repeat("-", 40), "C")
	d.setFont("B", 1)
	d.pdf.CellFormat(d.width/2, d.lh, "TOTAL", "", 0, "L", false, 0, "")
	d.pdf.CellFormat(d.width/2, d.lh, d.tr(format.Amount(d.tx.TotalAmount, d.tx.Currency)), "", 1, "R", false, 0, "")
	d.setFont("", -1)

	if d.tx.PaymentMethod != "" {
		d.text(d.width, "Paid by "+d.tx.PaymentMethod, "C")
	}
}

func joinNonEmpty(sep string, values ...string) string {
	parts := make([]string, 0, len(values))

	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}

	return strings.Join(parts, sep)
}
