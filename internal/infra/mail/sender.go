package mail

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"gopkg.in/gomail.v2"

	"github.com/vportela/leadcrm/internal/entity"
	"github.com/vportela/leadcrm/internal/infra/queue"
)

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
	}
}

var wonTemplate = template.Must(template.New("lead_won").Parse(`
<h2>Lead converted</h2>
<p><strong>{{.Name}}</strong> has been marked as Won.</p>
<ul>
  <li>Email: {{.Email}}</li>
  <li>Phone: {{.Phone}}</li>
  <li>Assigned to: {{.AssignedTo}}</li>
</ul>
`))

type wonEmailData struct {
	Name       string
	Email      string
	Phone      string
	AssignedTo string
}

// SendLeadWon emails the workspace notification address about a conversion.
func (s *EmailSender) SendLeadWon(to, leadName, leadEmail, leadPhone, assignedTo string) error {
	var body bytes.Buffer
	data := wonEmailData{Name: leadName, Email: leadEmail, Phone: leadPhone, AssignedTo: assignedTo}
	if err := wonTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("render email template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Lead won: %s", leadName))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send smtp email: %w", err)
	}
	return nil
}

// Name and Notify make the sender usable as a conversion sink.
func (s *EmailSender) Name() string { return "mail" }

func (s *EmailSender) Notify(_ context.Context, settings *entity.Settings, payload queue.ConversionPayload) error {
	if settings.NotificationEmail == "" {
		return nil
	}
	return s.SendLeadWon(settings.NotificationEmail, payload.Name, payload.Email, payload.Phone, payload.AssignedTo)
}
