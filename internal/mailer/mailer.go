// Package mailer renders and sends transactional email over SMTP.
package mailer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

// Template names accepted by Send.  The payload keys each template
// reads are produced by the notifier when the outbox entry is written.
const (
	TemplateWelcome       = "welcome"
	TemplateBookingUpdate = "booking_update"
	TemplateAccountUpdate = "account_update"
	TemplateCustom        = "custom"
)

var bodies = map[string]*template.Template{
	TemplateWelcome: template.Must(template.New(TemplateWelcome).Parse(`
<p>Hi {{.name}},</p>
<p>Welcome aboard! Your account is ready. Browse tours, pick a date and book your next experience.</p>
<p>The Journiq team</p>`)),

	TemplateBookingUpdate: template.Must(template.New(TemplateBookingUpdate).Parse(`
<p>Hi {{.name}},</p>
<p>{{.message}}</p>
<p>Tour: <b>{{.tour_title}}</b><br>
Date: {{.day}}<br>
People: {{.num_people}}</p>
<p>The Journiq team</p>`)),

	TemplateAccountUpdate: template.Must(template.New(TemplateAccountUpdate).Parse(`
<p>Hi {{.name}},</p>
<p>{{.message}}</p>
<p>The Journiq team</p>`)),

	TemplateCustom: template.Must(template.New(TemplateCustom).Parse(`
<p>Hi {{.name}},</p>
<p>{{.message}}</p>
<p>The Journiq team</p>`)),
}

// Mailer sends email through a single SMTP account.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func New(host string, port int, user, pass, from string) *Mailer {
	return &Mailer{dialer: gomail.NewDialer(host, port, user, pass), from: from}
}

// Send renders the named template with the JSON payload and delivers
// the message.  Unknown template names are an error so a bad producer
// shows up in the worker logs instead of sending empty mail.
func (m *Mailer) Send(recipient, subject, tmplName string, payload []byte) error {
	tmpl, ok := bodies[tmplName]
	if !ok {
		return fmt.Errorf("unknown email template %q", tmplName)
	}
	var ctx map[string]any
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &ctx); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return fmt.Errorf("render template %q: %w", tmplName, err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", buf.String())
	return m.dialer.DialAndSend(msg)
}
