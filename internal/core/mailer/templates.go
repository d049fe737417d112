package mailer

import (
	"bytes"
	"html/template"
	"strings"

	"vitrina/internal/domain"
)

var tpls = template.Must(template.New("mail").Parse(`
{{define "registro_submitted"}}<p>Nuevo registro pendiente de revisión.</p>
<ul><li>Nombre: {{.DisplayName}}</li><li>Email: {{.Email}}</li><li>Usuario: {{.Username}}</li>
<li>Plan: {{.Plan}} ({{.DurationDays}} días) {{.PriceLabel}}</li>
<li>Entrevista: {{.Interview.Date}} {{.Interview.Time}}</li></ul>{{end}}
{{define "welcome"}}<p>Hola {{.DisplayName}},</p>
<p>Tu registro fue aprobado. Ya puedes ingresar con el usuario <b>{{.Username}}</b> y activar tu perfil.</p>{{end}}
{{define "rejected"}}<p>Hola {{.R.DisplayName}},</p>
<p>Lamentablemente tu registro no fue aprobado.{{if .Reason}} Motivo: {{.Reason}}{{end}}</p>{{end}}
{{define "contact"}}<p>Nuevo mensaje de contacto de {{.Name}} &lt;{{.Email}}&gt;</p>
<p><b>{{.Subject}}</b></p><p>{{.Body}}</p>{{end}}
`))

func render(name string, data any) string {
	var buf bytes.Buffer
	if err := tpls.ExecuteTemplate(&buf, name, data); err != nil {
		return ""
	}
	return strings.TrimSpace(buf.String())
}

// RegistroSubmitted 给管理员的新注册提醒
func RegistroSubmitted(adminEmail string, r *domain.Registro) Message {
	return Message{
		To:      adminEmail,
		Subject: "Nuevo registro: " + r.DisplayName,
		Text:    "Nuevo registro pendiente: " + r.DisplayName + " (" + r.Email + ")",
		HTML:    render("registro_submitted", r),
	}
}

func Welcome(r *domain.Registro) Message {
	return Message{
		To:      r.Email,
		Subject: "Tu registro fue aprobado",
		Text:    "Tu registro fue aprobado. Usuario: " + r.Username,
		HTML:    render("welcome", r),
	}
}

func Rejected(r *domain.Registro, reason string) Message {
	text := "Tu registro no fue aprobado."
	if reason != "" {
		text += " Motivo: " + reason
	}
	return Message{
		To:      r.Email,
		Subject: "Resultado de tu registro",
		Text:    text,
		HTML:    render("rejected", struct {
			R      *domain.Registro
			Reason string
		}{r, reason}),
	}
}

func ContactReceived(adminEmail string, m *domain.ContactMessage) Message {
	return Message{
		To:      adminEmail,
		Subject: "Contacto: " + m.Subject,
		Text:    m.Name + " <" + m.Email + ">: " + m.Body,
		HTML:    render("contact", m),
	}
}
