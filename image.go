package plantimg

import (
	"bytes"
	"html/template"
	"io"
)

// Image is a rendered image reference.
type Image struct {
	Src       string
	Alt       string
	ClassName string
}

var imgTmpl = template.Must(template.New("img").Parse(
	`<img src="{{.Src}}" alt="{{.Alt}}"{{with .ClassName}} class="{{.}}"{{end}}>`))

// WriteHTML writes the <img> element for i to w.
func (i *Image) WriteHTML(w io.Writer) error {
	return imgTmpl.Execute(w, i)
}

// HTML returns the <img> element for i.
func (i *Image) HTML() (template.HTML, error) {
	buf := new(bytes.Buffer)
	if err := i.WriteHTML(buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func (i *Image) String() string {
	return i.Src
}
