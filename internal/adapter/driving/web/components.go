package web

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	vm "github.com/ericfisherdev/gitswitch/internal/adapter/driving/web/viewmodel"
)

var esc = templ.EscapeString[string]

// Layout wraps body in the HTML document shell.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>%s</title>
<link rel="stylesheet" href="/static/style.css">
</head>
<body>
`, esc(title)); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "</body>\n</html>\n")
		return err
	})
}

// SettingsPage renders the identity table, the add form, the repository
// list, pending mismatches and the help text.
func SettingsPage(page vm.SettingsPageViewModel) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}

		p.printf("<h1>Manage Identities</h1>\n")
		if page.Flash != "" {
			p.printf("<p class=\"flash\">%s</p>\n", esc(page.Flash))
		}
		if page.Error != "" {
			p.printf("<p class=\"error\" role=\"alert\">%s</p>\n", esc(page.Error))
		}

		identityTable(p, page)
		addForm(p, page)
		repoTable(p, page.Repos)
		decisionList(p, page.Decisions)

		if p.err != nil {
			return p.err
		}
		if page.HelpHTML != "" {
			p.printf("<section class=\"help\">\n")
			if p.err != nil {
				return p.err
			}
			if err := templ.Raw(page.HelpHTML).Render(ctx, w); err != nil {
				return err
			}
			p.printf("</section>\n")
		}
		return p.err
	})
}

func identityTable(p *printer, page vm.SettingsPageViewModel) {
	if len(page.Identities) == 0 {
		p.printf("<p class=\"muted\">No identities configured. Add one below.</p>\n")
		return
	}

	p.printf("<table>\n<thead><tr><th>Label</th><th>Name</th><th>Email</th><th>SSH key</th><th>GitHub</th><th>Repos</th><th></th></tr></thead>\n<tbody>\n")
	for _, id := range page.Identities {
		p.printf("<tr><td>%s</td><td>%s</td><td>%s</td><td class=\"muted\">%s</td><td>%s</td><td>%d</td>",
			esc(id.Label), esc(id.Name), esc(id.Email), esc(id.SSHKeyPath), esc(id.GitHubUsername), id.BindingCount)
		p.printf("<td><form class=\"inline\" method=\"post\" action=\"%s\">%s<button type=\"submit\">Delete</button></form></td></tr>\n",
			esc(id.DeletePath), csrfInput(page.CSRFToken))
	}
	p.printf("</tbody>\n</table>\n")
}

func addForm(p *printer, page vm.SettingsPageViewModel) {
	f := page.Form
	p.printf("<h2>Add Identity</h2>\n<form class=\"stack\" method=\"post\" action=\"/identities\">\n%s\n", csrfInput(page.CSRFToken))
	for _, field := range []struct{ name, label, value, kind string }{
		{"label", "Label", f.Label, "text"},
		{"name", "Name", f.Name, "text"},
		{"email", "Email", f.Email, "email"},
		{"sshKeyPath", "SSH key path", f.SSHKeyPath, "text"},
		{"githubUsername", "GitHub username (optional)", f.GitHubUsername, "text"},
	} {
		p.printf("<label>%s <input type=\"%s\" name=\"%s\" value=\"%s\"></label>\n",
			esc(field.label), field.kind, field.name, esc(field.value))
	}
	p.printf("<button type=\"submit\">Add</button>\n</form>\n")
}

func repoTable(p *printer, repos []vm.RepoViewModel) {
	if len(repos) == 0 {
		return
	}
	p.printf("<h2>Repositories</h2>\n<table>\n<thead><tr><th>Repository</th><th>Identity</th></tr></thead>\n<tbody>\n")
	for _, r := range repos {
		class := ""
		if r.Mismatch {
			class = ` class="mismatch"`
		}
		p.printf("<tr title=\"%s\"><td>%s</td><td%s>%s</td></tr>\n", esc(r.Tooltip), esc(r.Name), class, esc(r.Description))
	}
	p.printf("</tbody>\n</table>\n")
}

func decisionList(p *printer, decisions []vm.DecisionViewModel) {
	if len(decisions) == 0 {
		return
	}
	p.printf("<h2>Pending mismatches</h2>\n<ul>\n")
	for _, d := range decisions {
		p.printf("<li><strong>%s</strong> %s</li>\n", esc(d.RepoPath), esc(d.Message))
	}
	p.printf("</ul>\n<p class=\"muted\">Resolve with <code>gitswitch scan</code> or POST /api/v1/decisions/resolve.</p>\n")
}

func csrfInput(token string) string {
	return fmt.Sprintf(`<input type="hidden" name="%s" value="%s">`, csrfFormField, esc(token))
}

// printer keeps the first write error so components can print freely.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
