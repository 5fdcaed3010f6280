package notification

import (
	"bytes"
	"html/template"
)

var (
	attendanceBody = template.Must(template.New("attendance").Parse(
		`<p><strong>{{.Name}}</strong>: {{.Status}}</p><p>{{.Time}}</p>`))

	chatBody = template.Must(template.New("chat").Parse(
		`<p><strong>{{.Name}}</strong> wrote:</p><blockquote>{{.Message}}</blockquote><p>{{.Time}}</p>`))
)

type bodyData struct {
	Name    string
	Status  string
	Message string
	Time    string
}

func render(t *template.Template, data bodyData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
