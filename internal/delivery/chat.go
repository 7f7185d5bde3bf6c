package delivery

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/MrJamesThe3rd/invoicer/internal/format"
	"github.com/MrJamesThe3rd/invoicer/internal/resolve"
	"github.com/MrJamesThe3rd/invoicer/internal/transaction"
)

// Opener shows a link to the user, typically in a new browser window.
type Opener interface {
	Open(ctx context.Context, link string) error
}

// PhonePrompt asks the user for a number when the counterparty has none.
// Returning an empty string or an error means the user backed out.
type PhonePrompt interface {
	Phone(ctx context.Context, name string) (string, error)
}

// BrowserOpener hands links to the desktop's default browser.
type BrowserOpener struct{}

func (BrowserOpener) Open(ctx context.Context, link string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", link)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", link)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", link)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("opening browser: %w", err)
	}

	go cmd.Wait() //nolint:errcheck

	return nil
}

// LinkOpener records links instead of opening them, for callers that forward
// the link to a remote client.
type LinkOpener struct{}

func (LinkOpener) Open(context.Context, string) error {
	return nil
}

type chatChannel struct {
	saver  Saver
	opener Opener
	prompt PhonePrompt
	host   string
}

func (c *chatChannel) ready(ctx context.Context, j *job) error {
	cp := j.counterparty()

	phone := Digits(j.req.Phone)
	if phone == "" && cp != nil {
		phone = Digits(cp.Phone)
	}

	if phone == "" {
		if c.prompt == nil {
			return newError(KindPreconditionFailed, ChannelChat, "This customer has no phone number. Enter one to continue.", ErrMissingPhone)
		}

		name := ""
		if cp != nil {
			name = cp.Name
		}

		entered, err := c.prompt.Phone(ctx, name)
		phone = Digits(entered)

		if err != nil || phone == "" {
			return newError(KindUserCancelled, ChannelChat, "Chat hand-off cancelled: no phone number entered.", ErrCancelled)
		}
	}

	j.phone = phone

	return nil
}

// deliver saves the document for the user to attach by hand, then opens the
// pre-filled compose link. The document itself is never uploaded.
func (c *chatChannel) deliver(ctx context.Context, j *job) (string, error) {
	loc, err := j.saver(c.saver).Save(ctx, j.doc)
	if err != nil {
		return "", newError(KindTransportFailed, ChannelChat, "The invoice could not be saved for attaching.", err)
	}

	j.attempt.Location = loc

	link := DeepLink(c.host, j.phone, ComposeMessage(j.tx, j.counterparty(), j.ents, j.req.Detailed))
	j.attempt.Link = link

	if err := c.opener.Open(ctx, link); err != nil {
		return "", newError(KindTransportFailed, ChannelChat, "Could not open the chat window.", err)
	}

	return fmt.Sprintf("Chat opened. Attach %s before sending.", filepath.Base(loc)), nil
}

// Digits strips everything but ASCII digits.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}

		return -1
	}, s)
}

func DeepLink(host, phone, text string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return fmt.Sprintf("https://%s/send?phone=%s&text=%s", host, Digits(phone), escaped)
}

// ComposeMessage builds the chat text. Detailed messages list every line
// item by its catalog name.
func ComposeMessage(tx *transaction.Transaction, cp *transaction.Counterparty, ents *resolve.Entities, detailed bool) string {
	var b strings.Builder

	name := "there"
	if cp != nil && cp.Name != "" {
		name = cp.Name
	}

	fmt.Fprintf(&b, "Hello %s,\n\n", name)
	fmt.Fprintf(&b, "Here is invoice %s dated %s for %s.\n",
		tx.DocumentNumber(), format.Date(tx.Date.Time), format.Amount(tx.TotalAmount, tx.Currency))

	if detailed && len(tx.Lines) > 0 {
		var items resolve.ItemNames
		if ents != nil {
			items = ents.Items
		}

		b.WriteString("\nItems:\n")

		for _, l := range tx.Lines {
			fmt.Fprintf(&b, "- %s: %s x %s = %s\n",
				items.Name(l),
				format.Quantity(l.Quantity),
				format.Amount(l.UnitPrice, tx.Currency),
				format.Amount(l.Amount, tx.Currency),
			)
		}

		fmt.Fprintf(&b, "\nTotal: %s\n", format.Amount(tx.TotalAmount, tx.Currency))
	}

	b.WriteString("\nThe PDF is attached. Thank you!")

	if ents != nil && ents.Company != nil && ents.Company.Name != "" {
		fmt.Fprintf(&b, "\n%s", ents.Company.Name)
	}

	return b.String()
}
