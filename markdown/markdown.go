// Package markdown is a goldmark extension rendering PlantUML fenced code
// blocks as images hosted by a PlantUML server.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/maocatooo/plantimg"
)

// DefaultLanguages are the fence info strings treated as PlantUML.
var DefaultLanguages = []string{"plantuml", "puml", "uml"}

// KindDiagram is the node kind of Diagram.
var KindDiagram = ast.NewNodeKind("PlantUMLDiagram")

// Diagram replaces a PlantUML fenced code block.
type Diagram struct {
	ast.BaseBlock
	Source []byte
}

func (n *Diagram) Kind() ast.NodeKind {
	return KindDiagram
}

func (n *Diagram) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Source": string(n.Source)}, nil)
}

// Transformer swaps matching fenced code blocks for Diagram nodes.
type Transformer struct {
	Languages []string
}

func (t *Transformer) matches(lang string) bool {
	for _, l := range t.Languages {
		if strings.EqualFold(l, lang) {
			return true
		}
	}
	return false
}

func (t *Transformer) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	source := reader.Source()

	var blocks []*ast.FencedCodeBlock
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		cb, ok := node.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		if t.matches(string(cb.Language(source))) {
			blocks = append(blocks, cb)
		}
		return ast.WalkSkipChildren, nil
	})

	for _, cb := range blocks {
		var buf bytes.Buffer
		lines := cb.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(source))
		}
		parent := cb.Parent()
		parent.ReplaceChild(parent, cb, &Diagram{Source: buf.Bytes()})
	}
}

// HTMLRenderer writes Diagram nodes as <img> elements.
type HTMLRenderer struct {
	Renderer *plantimg.Renderer
	Options  []plantimg.Option
}

func (r *HTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindDiagram, r.renderDiagram)
}

func (r *HTMLRenderer) renderDiagram(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*Diagram)

	img, err := r.Renderer.Render(plantimg.NewRequest(n.Source, r.Options...))
	if err != nil {
		return ast.WalkStop, err
	}
	if err := img.WriteHTML(w); err != nil {
		return ast.WalkStop, err
	}
	_ = w.WriteByte('\n')
	return ast.WalkContinue, nil
}

// Extender registers the transformer and renderer with a goldmark.Markdown.
type Extender struct {
	// Renderer defaults to plantimg.New(nil).
	Renderer *plantimg.Renderer
	Options  []plantimg.Option
	// Languages defaults to DefaultLanguages.
	Languages []string
}

func (e *Extender) Extend(m goldmark.Markdown) {
	rend := e.Renderer
	if rend == nil {
		rend = plantimg.New(nil)
	}
	langs := e.Languages
	if len(langs) == 0 {
		langs = DefaultLanguages
	}

	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(&Transformer{Languages: langs}, 100),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&HTMLRenderer{Renderer: rend, Options: e.Options}, 0),
	))
}

// New returns a GitHub flavored goldmark.Markdown with ext installed.
func New(ext *Extender) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM, ext),
	)
}
