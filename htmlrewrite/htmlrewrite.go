// Package htmlrewrite replaces PlantUML source blocks in HTML documents with
// <img> elements.
package htmlrewrite

import (
	"io"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"golang.org/x/net/html"

	"github.com/maocatooo/plantimg"
)

// Selector matches the elements holding PlantUML source.
const Selector = "pre.plantuml, code.language-plantuml, code.language-puml"

// Rewriter rewrites documents with a fixed renderer and request options.
type Rewriter struct {
	Renderer *plantimg.Renderer
	Options  []plantimg.Option
	// Selector defaults to the package Selector.
	Selector string
}

// Rewrite parses r, replaces every PlantUML block, and returns the resulting
// document along with the number of diagrams replaced.
func (rw *Rewriter) Rewrite(r io.Reader) (string, int, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", 0, errors.Wrap(err, "failed to parse html")
	}

	n, err := rw.rewrite(doc)
	if err != nil {
		return "", 0, err
	}

	out, err := doc.Html()
	if err != nil {
		return "", 0, errors.Wrap(err, "failed to render html")
	}
	return out, n, nil
}

func (rw *Rewriter) rewrite(doc *goquery.Document) (int, error) {
	rend := rw.Renderer
	if rend == nil {
		rend = plantimg.New(nil)
	}
	sel := rw.Selector
	if sel == "" {
		sel = Selector
	}

	// <pre class="plantuml"><code class="language-plantuml"> matches twice
	seen := make(map[*html.Node]bool)
	var (
		n       int
		lastErr error
	)
	doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		target := s
		if goquery.NodeName(s) == "code" && goquery.NodeName(s.Parent()) == "pre" {
			target = s.Parent()
		}
		node := target.Get(0)
		if seen[node] {
			return true
		}
		seen[node] = true

		img, err := rend.Render(plantimg.NewRequest(target.Text(), rw.Options...))
		if err != nil {
			lastErr = err
			return false
		}
		h, err := img.HTML()
		if err != nil {
			lastErr = errors.Wrap(err, "failed to render img")
			return false
		}
		target.ReplaceWithHtml(string(h))
		n++
		return true
	})
	return n, lastErr
}

// Rewrite rewrites r with the default renderer.
func Rewrite(r io.Reader, opts ...plantimg.Option) (string, int, error) {
	rw := &Rewriter{Options: opts}
	return rw.Rewrite(r)
}
