package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strconv"

	"pmp-reports/internal/slides"
)

// DeckPage one HTML page of the on-screen deck
type DeckPage struct {
	ReportTitle string
	View        View
	Index       int
	Total       int
	Kinds       []slides.Kind
	// BaseURL page URL without the slide parameter
	BaseURL string
	// CloseURL where Esc / Close leads; empty hides the control
	CloseURL string
}

// NewDeckPage page for the navigator's current slide
func NewDeckPage(reportTitle string, nav *Navigator, deck []slides.Slide, baseURL, closeURL string) DeckPage {
	page := DeckPage{
		ReportTitle: reportTitle,
		Index:       nav.Index(),
		Total:       nav.Len(),
		Kinds:       slides.Kinds(deck),
		BaseURL:     baseURL,
		CloseURL:    closeURL,
	}
	if cur := nav.Current(); cur != nil {
		page.View = Layout(cur)
	}
	return page
}

// SlideURL link to slide i
func (p DeckPage) SlideURL(i int) string {
	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return "?slide=" + strconv.Itoa(i)
	}
	q := u.Query()
	q.Set("slide", strconv.Itoa(i))
	u.RawQuery = q.Encode()
	return u.String()
}

func (p DeckPage) HasPrev() bool { return p.Index > 0 }
func (p DeckPage) HasNext() bool { return p.Index < p.Total-1 }
func (p DeckPage) PrevURL() string {
	if !p.HasPrev() {
		return p.SlideURL(p.Index)
	}
	return p.SlideURL(p.Index - 1)
}
func (p DeckPage) NextURL() string {
	if !p.HasNext() {
		return p.SlideURL(p.Index)
	}
	return p.SlideURL(p.Index + 1)
}
func (p DeckPage) LastURL() string { return p.SlideURL(p.Total - 1) }

var deckTemplate = template.Must(template.New("deck").Funcs(template.FuncMap{
	"inc":   func(i int) int { return i + 1 },
	"title": func(k slides.Kind) string { return k.DefaultTitle() },
}).Parse(deckHTML))

// RenderHTML writes the page; nothing is written when rendering fails
func RenderHTML(w io.Writer, page DeckPage) error {
	var buf bytes.Buffer
	if err := deckTemplate.Execute(&buf, page); err != nil {
		return fmt.Errorf("failed to render deck page: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

const deckHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.View.Title}} - {{.ReportTitle}}</title>
<style>
body{margin:0;font-family:system-ui,sans-serif;background:#0f172a;color:#0f172a}
.slide{max-width:1100px;margin:24px auto;background:#fff;border-radius:12px;padding:32px;min-height:560px;box-sizing:border-box}
.slide h1{margin:0 0 4px}.sub{color:#475569;margin:0 0 20px}
.hero img{width:100%;max-height:360px;object-fit:cover;border-radius:8px}
.footer{display:grid;grid-template-columns:1fr 1fr;gap:16px;margin-top:24px}
.summary{display:grid;grid-template-columns:repeat(auto-fill,minmax(220px,1fr));gap:8px;margin-bottom:16px}
.cards{display:grid;grid-template-columns:repeat(auto-fill,minmax(300px,1fr));gap:12px}
.card{border:1px solid #e2e8f0;border-radius:8px;padding:12px}
.card img{width:100%;border-radius:6px}
.label{color:#64748b;font-size:12px;text-transform:uppercase}
.badge{float:right;border-radius:999px;padding:2px 10px;font-size:12px}
.badge.danger{background:#fee2e2;color:#991b1b}.badge.warning{background:#fef3c7;color:#92400e}
.badge.success{background:#dcfce7;color:#166534}.badge.neutral{background:#e2e8f0;color:#334155}
nav{max-width:1100px;margin:0 auto;display:flex;gap:8px;align-items:center;color:#e2e8f0}
nav a{color:#e2e8f0}.dots a{display:inline-block;width:10px;height:10px;border-radius:50%;background:#475569;margin:0 3px}
.dots a.current{background:#38bdf8}
</style>
</head>
<body data-prev="{{.PrevURL}}" data-next="{{.NextURL}}" data-first="{{.SlideURL 0}}" data-last="{{.LastURL}}" data-close="{{.CloseURL}}">
<section class="slide slide-{{.View.Kind}}">
  {{with .View.Hero}}<div class="hero"><img src="{{.ImageURL}}" alt="{{.Caption}}"></div>{{end}}
  <h1>{{.View.Title}}</h1>
  {{with .View.Subtitle}}<p class="sub">{{.}}</p>{{end}}
  {{with .View.Summary}}<div class="summary">{{range .}}<div><div class="label">{{.Label}}</div><div>{{.Value}}</div></div>{{end}}</div>{{end}}
  {{with .View.Cards}}<div class="cards">{{range .}}<div class="card">
    {{with .Badge}}<span class="badge {{.Tone}}">{{.Text}}</span>{{end}}
    {{with .ImageURL}}<img src="{{.}}" alt="">{{end}}
    <strong>{{.Title}}</strong>{{with .Subtitle}}<div class="sub">{{.}}</div>{{end}}
    {{range .Fields}}<div><span class="label">{{.Label}}</span> {{.Value}}</div>{{end}}
  </div>{{end}}</div>{{end}}
  {{with .View.Empty}}<p class="sub">{{.}}</p>{{end}}
  {{with .View.Footer}}<div class="footer">{{range .}}<div><div class="label">{{.Label}}</div><div>{{.Value}}</div></div>{{end}}</div>{{end}}
</section>
<nav>
  {{if .HasPrev}}<a href="{{.PrevURL}}" rel="prev">&larr; Previous</a>{{end}}
  <span class="dots">{{$cur := .Index}}{{$page := .}}{{range $i, $k := .Kinds}}<a href="{{$page.SlideURL $i}}" title="{{title $k}}"{{if eq $i $cur}} class="current"{{end}}></a>{{end}}</span>
  <span class="indicator">{{inc .Index}} / {{.Total}}</span>
  {{if .HasNext}}<a href="{{.NextURL}}" rel="next">Next &rarr;</a>{{end}}
  {{with .CloseURL}}<a href="{{.}}" class="close">Close</a>{{end}}
</nav>
<script>
(function(){
  var d=document.body.dataset;
  var go=function(u){if(u&&u!==location.pathname+location.search){location.href=u;}};
  document.addEventListener('keydown',function(e){
    switch(e.key){
    case 'ArrowRight':case 'PageDown':case ' ':e.preventDefault();go(d.next);break;
    case 'ArrowLeft':case 'PageUp':e.preventDefault();go(d.prev);break;
    case 'Home':go(d.first);break;
    case 'End':go(d.last);break;
    case 'Escape':if(d.close){location.href=d.close;}break;
    }
  });
})();
</script>
</body>
</html>
`
