// Package email avisa por SMTP al dueño de un reporte perdido cuando aparece un match.
package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	texttemplate "text/template"
	"time"

	"pet-lost-found/internal/ports/notify"
)

const DefaultPort = 587

var ErrNotConfigured = errors.New("smtp not configured")

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // default Username
}

// SendFunc tiene la firma de smtp.SendMail (STARTTLS cuando el server lo anuncia).
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Notifier struct {
	cfg  Config
	send SendFunc
	now  func() time.Time
}

func New(cfg Config) *Notifier {
	if cfg.Port <= 0 {
		cfg.Port = DefaultPort
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &Notifier{cfg: cfg, send: smtp.SendMail, now: time.Now}
}

// WithSender reemplaza el envío (tests).
func (n *Notifier) WithSender(send SendFunc) *Notifier {
	n.send = send
	return n
}

func (n *Notifier) Name() string { return "email" }

func (n *Notifier) Configured() bool {
	return n.cfg.Host != "" && n.cfg.Username != "" && n.cfg.Password != ""
}

func (n *Notifier) Notify(ctx context.Context, notice notify.MatchNotice) error {
	if !n.Configured() {
		return ErrNotConfigured
	}
	to := strings.TrimSpace(notice.OwnerEmail)
	if to == "" {
		return errors.New("lost report has no contact email")
	}

	msg, err := n.buildMessage(to, notice)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))
	auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)

	// smtp.SendMail no acepta ctx; se corre aparte y se respeta la cancelación del caller.
	done := make(chan error, 1)
	go func() { done <- n.send(addr, auth, n.cfg.From, []string{to}, msg) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subject arma el asunto del aviso.
func Subject(petName string) string {
	if strings.TrimSpace(petName) == "" {
		petName = "your pet"
	}
	return "Potential Match Found for " + petName + "!"
}

type bodyData struct {
	OwnerName string
	PetName   string
	Fields    string
	Location  string
	ImageURL  string
}

var textBody = texttemplate.Must(texttemplate.New("text").Parse(`Great News, {{.OwnerName}}!

We found a potential match for {{.PetName}}!

Match Details:
- Matched characteristics: {{.Fields}}
{{- if .Location}}
- Found location: {{.Location}}
{{- end}}
{{if .ImageURL}}
View found pet images: {{.ImageURL}}
{{end}}
Please log in to your PetFinder account to review the match and contact the finder.

Best regards,
The PetFinder Team
`))

var htmlBody = htmltemplate.Must(htmltemplate.New("html").Parse(`<html>
  <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
      <h2 style="color: #4CAF50;">Great News, {{.OwnerName}}!</h2>
      <p>We found a potential match for <strong>{{.PetName}}</strong>!</p>
      <div style="background-color: #f0f8ff; padding: 15px; border-radius: 5px; margin: 20px 0;">
        <h3 style="margin-top: 0;">Match Details:</h3>
        <ul style="margin: 10px 0;">
          <li><strong>Matched characteristics:</strong> {{.Fields}}</li>
          {{- if .Location}}
          <li><strong>Found location:</strong> {{.Location}}</li>
          {{- end}}
        </ul>
      </div>
      {{- if .ImageURL}}
      <p><a href="{{.ImageURL}}" style="background-color: #4CAF50; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px;">View Found Pet Images</a></p>
      {{- end}}
      <p>Please log in to your PetFinder account to review the match and contact the finder.</p>
      <p style="margin-top: 30px; font-size: 12px; color: #666;">Best regards,<br>The PetFinder Team</p>
    </div>
  </body>
</html>
`))

func (n *Notifier) buildMessage(to string, notice notify.MatchNotice) ([]byte, error) {
	data := bodyData{
		OwnerName: fallback(notice.OwnerName, "there"),
		PetName:   fallback(notice.PetName, "your pet"),
		Fields:    fallback(strings.Join(notice.MatchedFields, ", "), "multiple characteristics"),
		Location:  notice.FoundLocation,
		ImageURL:  notice.FoundImageURL,
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", n.cfg.From)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", Subject(notice.PetName)))
	fmt.Fprintf(&buf, "Date: %s\r\n", n.now().UTC().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", mw.Boundary())

	parts := []struct {
		contentType string
		render      func(*bytes.Buffer) error
	}{
		{"text/plain; charset=utf-8", func(w *bytes.Buffer) error { return textBody.Execute(w, data) }},
		{"text/html; charset=utf-8", func(w *bytes.Buffer) error { return htmlBody.Execute(w, data) }},
	}
	for _, p := range parts {
		pw, err := mw.CreatePart(textproto.MIMEHeader{"Content-Type": {p.contentType}})
		if err != nil {
			return nil, err
		}
		var rendered bytes.Buffer
		if err := p.render(&rendered); err != nil {
			return nil, fmt.Errorf("render mail body: %w", err)
		}
		if _, err := pw.Write(rendered.Bytes()); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	buf.Write(body.Bytes())
	return buf.Bytes(), nil
}

func fallback(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
