package view

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/Makepad-fr/tada/internal/model"
)

// Every action element carries the id twice: as a class token and as
// data-id. ParseID reads the latter.
const fragmentsTmpl = `
{{- define "list" -}}
{{- range .Rows -}}
{{- $id := .ID -}}
<li class="todo"><input class="edit-input {{$id}}" data-id="{{$id}}" value="{{.Content}}" readonly />
{{- range .Actions}}
<button class="{{.Class}} {{$id}}" data-id="{{$id}}">{{.Label}}</button>
{{- end}}</li>
{{else -}}
<h4>{{.Placeholder}}</h4>
{{- end -}}
{{- end -}}

{{- define "page" -}}
<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Todos</title>
</head>
<body>
<section class="todo-app">
<input class="input" type="text" placeholder="What needs to be done?" />
<button class="submit-btn">Submit</button>
<h3>Pending Tasks</h3>
<ul class="todo-list">{{.Pending}}</ul>
<h3>Completed Tasks</h3>
<ul class="completed-tasks">{{.Completed}}</ul>
</section>
</body>
</html>
{{end -}}
`

var tmpl = template.Must(template.New("todos").Parse(fragmentsTmpl))

// HTMLFragments is the markup for the two list containers.
type HTMLFragments struct {
	Pending   template.HTML
	Completed template.HTML
}

// RenderHTML builds the list markup for items.
func RenderHTML(items []model.Item) (HTMLFragments, error) {
	pending, completed := Containers(items)
	p, err := renderList(pending)
	if err != nil {
		return HTMLFragments{}, err
	}
	c, err := renderList(completed)
	if err != nil {
		return HTMLFragments{}, err
	}
	return HTMLFragments{Pending: p, Completed: c}, nil
}

func renderList(ctr Container) (template.HTML, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "list", ctr); err != nil {
		return "", fmt.Errorf("render list: %w", err)
	}
	// Output of html/template is already escaped.
	return template.HTML(buf.String()), nil
}

// RenderPage wraps the fragments in a standalone document.
func RenderPage(items []model.Item) ([]byte, error) {
	frags, err := RenderHTML(items)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "page", frags); err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return buf.Bytes(), nil
}
