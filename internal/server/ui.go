package server

import (
	"html"
	"net/http"
	"strings"

	"github.com/sheetfold/sheetfold/internal/version"
)

func (s *Server) uiHandler(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(s.pageHTML()))
	case "/ui/accordion.js":
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		_, _ = w.Write([]byte(uiAccordionJS))
	case "/ui/accordion.css":
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		_, _ = w.Write([]byte(uiAccordionCSS))
	default:
		http.NotFound(w, r)
	}
}

// pageHTML renders one wrapper per mounted accordion in mount order. Font
// links cover every family the normalizer has seen so far.
func (s *Server) pageHTML() string {
	title := s.opts.Title
	if title == "" {
		title = "sheetfold"
	}
	suffix := version.AssetSuffix()

	var b strings.Builder
	b.WriteString("<!doctype html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("  <meta charset=\"UTF-8\" />\n")
	b.WriteString("  <meta name=\"viewport\" content=\"width=device-width, initial-scale=1\" />\n")
	b.WriteString("  <title>" + html.EscapeString(title) + "</title>\n")
	b.WriteString("  <link rel=\"stylesheet\" href=\"/ui/accordion.css" + suffix + "\" />\n")
	for _, href := range s.fonts.Stylesheets() {
		b.WriteString("  <link rel=\"stylesheet\" href=\"" + html.EscapeString(href) + "\" />\n")
	}
	b.WriteString("</head>\n<body>\n  <main>\n")
	b.WriteString("    <h1>" + html.EscapeString(title) + "</h1>\n")
	for _, in := range s.registry.Instances() {
		b.WriteString("    <div id=\"" + html.EscapeString(in.Anchor) + "\" class=\"accordion-anchor\">")
		b.WriteString(in.WrapperHTML())
		b.WriteString("</div>\n")
	}
	b.WriteString("  </main>\n")
	b.WriteString("  <script src=\"/ui/accordion.js" + suffix + "\"></script>\n")
	b.WriteString("</body>\n</html>\n")
	return b.String()
}
