package notify

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// TemplateData is the input for every lifecycle template.
type TemplateData struct {
	Name         string
	Email        string
	Password     string
	Reason       string
	DashboardURL string
}

type emailTemplate struct {
	subject string
	body    *template.Template
}

var templates = map[Kind]emailTemplate{
	KindApproval: {
		subject: "Your landlord account has been approved",
		body: template.Must(template.New("approval").Parse(`Hello {{.Name}},

Your landlord account has been verified and is now active.
{{if .Password}}
You can sign in with:
  Email:    {{.Email}}
  Password: {{.Password}}

Please change your password after your first login.
{{end}}
Dashboard: {{.DashboardURL}}
`)),
	},
	KindRejection: {
		subject: "Your landlord verification was not approved",
		body: template.Must(template.New("rejection").Parse(`Hello {{.Name}},

We were unable to verify your landlord account.
{{if .Reason}}
Reason: {{.Reason}}
{{end}}
Reply to this email once the issue is resolved and we will review your account again.
`)),
	},
	KindInactive: {
		subject: "Your landlord account has been deactivated",
		body: template.Must(template.New("inactive").Parse(`Hello {{.Name}},

Your landlord account has been deactivated and your listings are hidden.
{{if .Reason}}
Reason: {{.Reason}}
{{end}}
Contact support if you believe this is a mistake.
`)),
	},
	KindActivation: {
		subject: "Your landlord account has been reactivated",
		body: template.Must(template.New("activation").Parse(`Hello {{.Name}},

Your landlord account is active again. Your listings are visible to clients.

Dashboard: {{.DashboardURL}}
`)),
	},
}

// Render produces the subject and plain-text body for kind.
func Render(kind Kind, data TemplateData) (string, string, error) {
	tpl, ok := templates[kind]
	if !ok {
		return "", "", fmt.Errorf("no template for %q", kind)
	}
	if strings.TrimSpace(data.Name) == "" {
		data.Name = "there"
	}
	var buf bytes.Buffer
	if err := tpl.body.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render %s: %w", kind, err)
	}
	return tpl.subject, buf.String(), nil
}
