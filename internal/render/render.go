// Package render formats an ordered digest item list into the display
// artifacts that leave the system: a plain-text body and an HTML body.
package render

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"daily-digest/internal/domain/entity"
)

// emptyNotice is shown in both bodies when the digest has no items.
const emptyNotice = "No new items found for the selected time window."

const timeLayout = "2006-01-02 15:04"

var htmlTemplate = template.Must(template.New("digest").Parse(`<html>
  <body style="font-family: system-ui, -apple-system, Segoe UI, Roboto, Arial; line-height:1.5;">
    <h2 style="margin:0 0 12px;">{{.Heading}}</h2>
    <p style="color:#555; margin:0 0 16px;">Top updates from your selected feeds.</p>
    <ol style="padding-left:20px;">
{{- if not .Items}}
      <li>{{.EmptyNotice}}</li>
{{- end}}
{{- range .Items}}
      <li style="margin-bottom:12px;">
        <div style="font-weight:600;"><a href="{{.Link}}" target="_blank" rel="noopener noreferrer">{{.Title}}</a></div>
        <div style="color:#666; font-size:13px;">{{.Source}} &#8226; {{.When}}</div>
      </li>
{{- end}}
    </ol>
    <hr style="border:none; border-top:1px solid #eee; margin:16px 0;"/>
    <div style="color:#777; font-size:12px;">You received this digest because you (or a schedule) asked for it.</div>
  </body>
</html>
`))

// htmlItem is the template view of one digest entry.
type htmlItem struct {
	Title  string
	Link   string
	Source string
	When   string
}

// Plain renders the digest as a numbered plain-text list.
// Timestamps are shown in loc; a nil loc means the local time zone. Items
// with an unknown publish time render with an empty timestamp column.
func Plain(items []entity.Item, loc *time.Location) string {
	if len(items) == 0 {
		return emptyNotice + "\n"
	}
	if loc == nil {
		loc = time.Local
	}

	var b strings.Builder
	for i, it := range items {
		ts := ""
		if it.Published != nil {
			ts = it.Published.In(loc).Format(timeLayout)
		}
		fmt.Fprintf(&b, "%d. %s\n   %s | %s\n   %s\n\n", i+1, it.Title, it.Source, ts, it.Link)
	}
	return b.String()
}

// HTML renders the digest as a self-contained HTML body. Item fields are
// escaped by the template engine. An empty item list renders the same
// placeholder notice as the plain body.
func HTML(items []entity.Item, heading string, loc *time.Location) (string, error) {
	if loc == nil {
		loc = time.Local
	}
	if heading == "" {
		heading = "Your News Digest"
	}

	view := struct {
		Heading     string
		EmptyNotice string
		Items       []htmlItem
	}{Heading: heading, EmptyNotice: emptyNotice}

	for _, it := range items {
		when := ""
		if it.Published != nil {
			when = it.Published.In(loc).Format(timeLayout)
		}
		view.Items = append(view.Items, htmlItem{
			Title:  it.Title,
			Link:   it.Link,
			Source: it.Source,
			When:   when,
		})
	}

	var b strings.Builder
	if err := htmlTemplate.Execute(&b, view); err != nil {
		return "", fmt.Errorf("execute digest template: %w", err)
	}
	return b.String(), nil
}
