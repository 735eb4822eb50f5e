package site

import "html/template"

// The list page carries one card per post with the data attributes the
// reader runtime parses, plus the highlight slot, counters and pagination
// controls it drives. Selector names are shared with internal/render.
const listTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<link rel="stylesheet" href="/assets/gazette.css">
</head>
<body>
<header>
  <h1>{{.Title}}</h1>
  <input id="search-box" type="search" placeholder="Search stories" autocomplete="off">
  <ul id="search-results" class="hidden"></ul>
  <nav id="filters">
    <select id="lang-select">
      <option value="all">All languages</option>
      <option value="en">English</option>
      <option value="pt">Português</option>
      <option value="es">Español</option>
    </select>
    {{range .Tags}}<button class="tag-chip" data-tag="{{.}}">{{.}}</button>{{end}}
    <button id="clear-filters">Clear</button>
  </nav>
</header>
<main>
{{if .Pinned}}<section id="highlight">
  <article class="card" data-slug="{{.Pinned.Slug}}" data-title="{{.Pinned.Title}}" data-tags="{{.Pinned.TagList}}" data-lang="{{.Pinned.Lang}}" data-pinned="true">
    <h2><a href="/posts/{{.Pinned.Slug}}/">{{.Pinned.Title}}</a></h2>
    <p>{{.Pinned.Snippet}}</p>
  </article>
</section>{{end}}
<p id="result-count"></p>
<div id="cards">
{{if .Pinned}}  <article class="card" data-slug="{{.Pinned.Slug}}" data-title="{{.Pinned.Title}}" data-tags="{{.Pinned.TagList}}" data-lang="{{.Pinned.Lang}}" data-pinned="true">
    <h2><a href="/posts/{{.Pinned.Slug}}/">{{.Pinned.Title}}</a></h2>
  </article>
{{end}}{{range .Posts}}  <article class="card" data-slug="{{.Slug}}" data-title="{{.Title}}" data-tags="{{.TagList}}" data-lang="{{.Lang}}">
    <h2><a href="/posts/{{.Slug}}/">{{.Title}}</a></h2>
    <p class="meta">{{.PublishedAt.Format "2 Jan 2006"}}{{if .SourceName}} · {{.SourceName}}{{end}}</p>
    <p>{{.Snippet}}</p>
  </article>
{{end}}</div>
<p id="empty-note" class="hidden">Nothing matches.</p>
<nav id="pagination">
  <button id="prev-page">Previous</button>
  <span id="page-label"></span>
  <button id="next-page">Next</button>
</nav>
</main>
</body>
</html>
`

// Detail pages have no URL filter state and no filtering UI of their own;
// tag links point back at the filtered list page.
const detailTemplate = `<!DOCTYPE html>
<html lang="{{.Post.Lang}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Post.Title}} · {{.SiteTitle}}</title>
<link rel="stylesheet" href="/assets/gazette.css">
</head>
<body>
<header><a href="/">{{.SiteTitle}}</a></header>
<main>
<article>
  <h1>{{.Post.Title}}</h1>
  <p class="meta">{{.Post.PublishedAt.Format "2 Jan 2006"}}{{if .Post.SourceName}} · {{.Post.SourceName}}{{end}}</p>
  {{.Body}}
  <nav class="tags">
    {{range .Post.Tags}}<a href="/?tag={{.}}" class="tag-chip">{{.}}</a>{{end}}
  </nav>
</article>
</main>
</body>
</html>
`

var (
	listTmpl   = template.Must(template.New("list").Parse(listTemplate))
	detailTmpl = template.Must(template.New("detail").Parse(detailTemplate))
)
