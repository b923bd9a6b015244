package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title   string
	Heading string
}

type followUpEmailData struct {
	baseEmailData
	EstablishmentName string
	ContactName       string
	FollowUpDate      string
	FollowUpTime      string
}

type interestedAlertEmailData struct {
	baseEmailData
	EstablishmentName string
	Phone             string
	ContactName       string
	Urgency           string
}

type transferAlertEmailData struct {
	baseEmailData
	EstablishmentName string
	Phone             string
	Reason            string
	Note              string
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}
