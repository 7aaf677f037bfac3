// Package email sends the optional lecture-theme digest after a successful
// generation run.
package email

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"theme-tracker/internal/config"
	"theme-tracker/internal/models"
)

//go:embed digest_template.html
var digestTemplate string

type Sender struct {
	config *config.EmailConfig
}

func NewSender(cfg *config.EmailConfig) *Sender {
	return &Sender{config: cfg}
}

type digest struct {
	Themes      []*models.ThemeSuggestion
	Cohort      models.AgeCohort
	SourceLabel string
	Date        time.Time
}

// SendDigest emails the generated themes. A digest with no themes is a no-op.
func (s *Sender) SendDigest(themes []*models.ThemeSuggestion, cohort models.AgeCohort, source models.SourceSelector) error {
	if len(themes) == 0 {
		return nil
	}

	d := &digest{
		Themes:      themes,
		Cohort:      cohort,
		SourceLabel: sourceLabel(source),
		Date:        time.Now(),
	}

	subject := fmt.Sprintf("Lecture Theme Suggestions - %d themes for ages %s (%s)",
		len(themes), cohort, d.Date.Format("Jan 2, 2006"))

	body, err := s.renderDigest(d)
	if err != nil {
		return fmt.Errorf("failed to render digest: %w", err)
	}

	return s.sendViaSMTP(subject, body)
}

func (s *Sender) renderDigest(d *digest) (string, error) {
	tmpl, err := template.New("digest").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).Parse(digestTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *Sender) sendViaSMTP(subject, body string) error {
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.SMTPServer)

	to := []string{s.config.ToEmail}
	msg := []byte(fmt.Sprintf(`To: %s
From: %s
Subject: %s
MIME-Version: 1.0
Content-Type: text/html; charset=UTF-8

%s`, s.config.ToEmail, s.config.FromEmail, subject, body))

	addr := fmt.Sprintf("%s:%d", s.config.SMTPServer, s.config.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.FromEmail, to, msg)
}

func sourceLabel(source models.SourceSelector) string {
	if w, ok := source.Window(); ok {
		return w.Label()
	}
	return "Combined (All Time Periods)"
}
