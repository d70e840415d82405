package main

import (
	"bytes"
	"context"
	"io"
	"os"

	"cdr.dev/slog"
	"github.com/pkg/errors"

	"github.com/maocatooo/plantimg"
	"github.com/maocatooo/plantimg/fetch"
	"github.com/maocatooo/plantimg/htmlrewrite"
	"github.com/maocatooo/plantimg/internal/log"
	"github.com/maocatooo/plantimg/markdown"
	"github.com/maocatooo/plantimg/schema"
	"github.com/maocatooo/plantimg/urlenc"
)

// options are the global flags.
type options struct {
	server    string
	format    string
	className string
	hex       bool
	fetch     bool
	retries   int
}

func (o options) renderer() *plantimg.Renderer {
	if o.hex {
		return plantimg.New(plantimg.HexEncoder)
	}
	return plantimg.New(nil)
}

func (o options) requestOptions() []plantimg.Option {
	return []plantimg.Option{
		plantimg.WithServer(o.server),
		plantimg.WithFormat(o.format),
		plantimg.WithClassName(o.className),
	}
}

type erOptions struct {
	driver  string
	conn    string
	schema  string
	include []string
	exclude []string
	title   string
	inferFK bool
	source  bool
}

func run(ctx context.Context, cmd string) error {
	opts := options{
		server:    *server,
		format:    *format,
		className: *className,
		hex:       *hexForm,
		fetch:     *fetchImg,
		retries:   *retries,
	}

	return writeOutput(ctx, *outFile, func(out io.Writer) error {
		return dispatch(ctx, out, cmd, opts)
	})
}

// writeOutput runs fn against path, or stdout when path is empty. The file
// close error is reported when fn succeeded.
func writeOutput(ctx context.Context, path string, fn func(io.Writer) error) (err error) {
	if path == "" {
		return fn(os.Stdout)
	}

	f, cerr := os.Create(path)
	if cerr != nil {
		return errors.Wrapf(cerr, "failed to create output file %s", path)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "failed to close output file %s", path)
		}
		if err == nil {
			log.Info(ctx, "wrote output", slog.F("path", path))
		}
	}()
	return fn(f)
}

func dispatch(ctx context.Context, out io.Writer, cmd string, opts options) error {
	switch cmd {
	case urlCmd.FullCommand(), imgCmd.FullCommand():
		files := *urlFiles
		if cmd == imgCmd.FullCommand() {
			files = *imgFiles
		}
		content, err := readFragments(files, os.Stdin)
		if err != nil {
			return err
		}
		return writeDiagram(ctx, out, opts, content, cmd == imgCmd.FullCommand())
	case decodeCmd.FullCommand():
		return decode(out, *decodeArg)
	case mdCmd.FullCommand():
		src, err := readInput(*mdFile, os.Stdin)
		if err != nil {
			return err
		}
		return renderMarkdown(out, src, opts)
	case htmlCmd.FullCommand():
		src, err := readInput(*htmlFile, os.Stdin)
		if err != nil {
			return err
		}
		return rewriteHTML(ctx, out, src, opts)
	case erCmd.FullCommand():
		return renderER(ctx, out, opts, erOptions{
			driver:  *driver,
			conn:    *connStr,
			schema:  *postgresSchema,
			include: *targetTbls,
			exclude: *xTargetTbls,
			title:   *title,
			inferFK: *inferFK,
			source:  *sourceOnly,
		})
	}
	return errors.Errorf("unknown command %q", cmd)
}

// readFragments returns the contents of files in order, or stdin when no
// file is given.
func readFragments(files []string, stdin io.Reader) ([]string, error) {
	if len(files) == 0 {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read stdin")
		}
		return []string{string(b)}, nil
	}
	var fragments []string
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", f)
		}
		fragments = append(fragments, string(b))
	}
	return fragments, nil
}

func readInput(file string, stdin io.Reader) ([]byte, error) {
	if file == "" {
		b, err := io.ReadAll(stdin)
		return b, errors.Wrap(err, "failed to read stdin")
	}
	b, err := os.ReadFile(file)
	return b, errors.Wrapf(err, "failed to read %s", file)
}

// writeDiagram writes the reference of content, its <img> element when
// asHTML is set, or the downloaded image with --fetch.
func writeDiagram(ctx context.Context, w io.Writer, o options, content interface{}, asHTML bool) error {
	req := plantimg.NewRequest(content, o.requestOptions()...)
	img, err := o.renderer().Render(req)
	if err != nil {
		return err
	}
	log.Debug(ctx, "rendered diagram",
		slog.F("server", req.Server),
		slog.F("format", req.Format),
		slog.F("src", img.Src),
	)

	if o.fetch {
		data, err := fetch.NewClient(o.retries).Fetch(ctx, img.Src)
		if err != nil {
			return err
		}
		log.Debug(ctx, "fetched diagram", slog.F("content_type", data.ContentType), slog.F("bytes", len(data.Data)))
		_, err = w.Write(data.Data)
		return err
	}

	if asHTML {
		if err := img.WriteHTML(w); err != nil {
			return err
		}
	} else if _, err := io.WriteString(w, img.Src); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

func decode(w io.Writer, arg string) error {
	text, err := urlenc.Decode(urlenc.FromURL(arg))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, text+"\n")
	return err
}

func renderMarkdown(w io.Writer, src []byte, o options) error {
	md := markdown.New(&markdown.Extender{
		Renderer: o.renderer(),
		Options:  o.requestOptions(),
	})
	return errors.Wrap(md.Convert(src, w), "failed to render markdown")
}

func rewriteHTML(ctx context.Context, w io.Writer, src []byte, o options) error {
	rw := &htmlrewrite.Rewriter{
		Renderer: o.renderer(),
		Options:  o.requestOptions(),
	}
	doc, n, err := rw.Rewrite(bytes.NewReader(src))
	if err != nil {
		return err
	}
	log.Debug(ctx, "rewrote html", slog.F("diagrams", n))
	_, err = io.WriteString(w, doc)
	return err
}

func renderER(ctx context.Context, w io.Writer, o options, er erOptions) error {
	loader, db, err := schema.Open(er.driver, er.conn, er.schema)
	if err != nil {
		return err
	}
	defer db.Close()

	tbls, err := loader.LoadTables(ctx)
	if err != nil {
		return err
	}
	src, err := erSource(ctx, tbls, er)
	if err != nil {
		return err
	}
	if er.source {
		_, err = w.Write(src)
		return err
	}
	return writeDiagram(ctx, w, o, src, false)
}

func erSource(ctx context.Context, tbls []*schema.Table, er erOptions) ([]byte, error) {
	if er.inferFK && schema.InferForeignKeys(tbls) {
		log.Debug(ctx, "inferred foreign keys from column names")
	}

	var err error
	if len(er.include) != 0 {
		if tbls, err = schema.Filter(tbls, er.include, true); err != nil {
			return nil, err
		}
	}
	if len(er.exclude) != 0 {
		if tbls, err = schema.Filter(tbls, er.exclude, false); err != nil {
			return nil, err
		}
	}
	if len(tbls) == 0 {
		log.Warn(ctx, "no tables left to draw")
	}
	return schema.Source(tbls, er.title)
}
