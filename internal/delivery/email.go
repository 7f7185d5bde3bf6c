package delivery

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	htmltemplate "html/template"

	"github.com/MrJamesThe3rd/invoicer/internal/dataservice"
	"github.com/MrJamesThe3rd/invoicer/internal/format"
)

var emailBody = htmltemplate.Must(htmltemplate.New("email").Parse(`<p>Dear {{.Name}},</p>
<p>Please find attached invoice <strong>{{.Number}}</strong> dated {{.Date}} for <strong>{{.Amount}}</strong>.</p>
{{- if .Due}}
<p>Payment is due by {{.Due}}.</p>
{{- end}}
<p>Kind regards,<br>{{.Company}}</p>
`))

type emailData struct {
	Name    string
	Number  string
	Date    string
	Due     string
	Amount  string
	Company string
}

type emailChannel struct {
	backend Backend
	sendAs  string
}

func notConnectedMessage(role string) string {
	if role == RoleCustomer {
		return "Email sending is not set up yet. Connect your mailbox under Settings > Integrations, then try again."
	}

	return "Email sending is not configured for this account. Please contact your administrator."
}

func (c *emailChannel) ready(ctx context.Context, j *job) error {
	cp := j.counterparty()
	if cp == nil || cp.Email == "" {
		return newError(KindPreconditionFailed, ChannelEmail, "This customer has no email address. Add one and try again.", ErrMissingEmail)
	}

	if c.backend == nil {
		return newError(KindPreconditionFailed, ChannelEmail, notConnectedMessage(j.req.Role), ErrIntegrationNotConnected)
	}

	connected, err := c.backend.EmailConnected(ctx)
	if err != nil {
		return newError(KindTransportFailed, ChannelEmail, "Could not check the email integration. Please try again later.", err)
	}

	if !connected {
		return newError(KindPreconditionFailed, ChannelEmail, notConnectedMessage(j.req.Role), ErrIntegrationNotConnected)
	}

	return nil
}

func (c *emailChannel) deliver(ctx context.Context, j *job) (string, error) {
	cp := j.counterparty()

	subject, html, err := composeEmail(j)
	if err != nil {
		return "", newError(KindRenderFailed, ChannelEmail, "The email body could not be generated.", err)
	}

	resp, err := c.backend.SendInvoice(ctx, dataservice.SendInvoiceRequest{
		To:             cp.Email,
		Subject:        subject,
		HTML:           html,
		FileName:       j.doc.FileName,
		DocumentBase64: base64.StdEncoding.EncodeToString(j.doc.Data),
		CompanyID:      companyID(j),
		SendAs:         c.sendAs,
	})
	if err != nil {
		return "", newError(KindTransportFailed, ChannelEmail, "The email could not be sent. Please try again later.", err)
	}

	if !resp.Accepted() {
		msg := firstNonEmpty(resp.Error, resp.Message, "The email provider rejected the message.")
		return "", newError(KindTransportFailed, ChannelEmail, msg, ErrSendRejected)
	}

	return firstNonEmpty(resp.Message, fmt.Sprintf("Invoice emailed to %s", cp.Email)), nil
}

func composeEmail(j *job) (string, string, error) {
	data := emailData{
		Name:    j.counterparty().Name,
		Number:  j.tx.DocumentNumber(),
		Date:    format.Date(j.tx.Date.Time),
		Amount:  format.Amount(j.tx.TotalAmount, j.tx.Currency),
		Company: companyName(j),
	}

	if j.tx.DueDate != nil {
		data.Due = format.Date(j.tx.DueDate.Time)
	}

	subject := "Invoice " + data.Number
	if data.Company != "" {
		subject += " from " + data.Company
	}

	var buf bytes.Buffer
	if err := emailBody.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("executing email template: %w", err)
	}

	return subject, buf.String(), nil
}

func companyID(j *job) string {
	if j.ents != nil && j.ents.Company != nil && j.ents.Company.ID != "" {
		return j.ents.Company.ID
	}

	return j.tx.Company.ID
}

func companyName(j *job) string {
	if j.ents != nil && j.ents.Company != nil {
		return j.ents.Company.Name
	}

	if j.tx.Company.Value != nil {
		return j.tx.Company.Value.Name
	}

	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
