package main

import (
	"context"
	"os"
	"os/signal"

	"cdr.dev/slog"
	"github.com/alecthomas/kingpin"

	"github.com/maocatooo/plantimg"
	"github.com/maocatooo/plantimg/internal/log"
)

var (
	app = kingpin.New("plantimg", "Build image references for PlantUML diagrams served by a PlantUML server.")

	server = app.Flag("server", "PlantUML server base URL").
		Envar("PLANTUML_SERVER").Default(plantimg.DefaultServer).String()
	format = app.Flag("format", "output format: svg, png, txt, ...").
		Envar("PLANTUML_FORMAT").Default(plantimg.DefaultFormat).Short('f').String()
	className = app.Flag("class", "class attribute of generated <img> elements").
		Envar("PLANTUML_CLASS").String()
	hexForm  = app.Flag("hex", "use the uncompressed ~h encoding").Bool()
	outFile  = app.Flag("output", "output file path").Short('o').String()
	fetchImg = app.Flag("fetch", "download the rendered image instead of printing its reference").Bool()
	retries  = app.Flag("retries", "retries for --fetch").Default("3").Int()
	debug    = app.Flag("debug", "debug logging").Envar("PLANTIMG_DEBUG").Bool()

	urlCmd   = app.Command("url", "Print the image URL of a diagram read from files or stdin.").Default()
	urlFiles = urlCmd.Arg("files", "diagram files, concatenated in order").ExistingFiles()

	imgCmd   = app.Command("img", "Print the <img> element of a diagram read from files or stdin.")
	imgFiles = imgCmd.Arg("files", "diagram files, concatenated in order").ExistingFiles()

	decodeCmd = app.Command("decode", "Print the diagram source behind an image URL or encoded text.")
	decodeArg = decodeCmd.Arg("url", "image URL or encoded text").Required().String()

	mdCmd  = app.Command("markdown", "Render Markdown to HTML, PlantUML code blocks as images.")
	mdFile = mdCmd.Arg("file", "markdown file, stdin when omitted").ExistingFile()

	htmlCmd  = app.Command("html", "Replace PlantUML blocks of an HTML document with images.")
	htmlFile = htmlCmd.Arg("file", "html file, stdin when omitted").ExistingFile()

	erCmd   = app.Command("er", "Render the ER diagram of a MySQL/PostgreSQL database.")
	connStr = erCmd.Arg(
		"conn", "MySQL/PostgreSQL connection string in URL format").Required().String()
	driver         = erCmd.Flag("driver", "driver mysql/postgres").Default("mysql").Short('d').Enum("mysql", "postgres")
	postgresSchema = erCmd.Flag("schema", "PostgreSQL schema name").Default("public").Short('s').String()
	targetTbls     = erCmd.Flag("table", "target tables (regexp)").Short('t').Strings()
	xTargetTbls    = erCmd.Flag("exclude", "excluded tables (regexp)").Short('x').Strings()
	title          = erCmd.Flag("title", "diagram title").Short('T').String()
	inferFK        = erCmd.Flag("infer-fk", "infer foreign keys from column names when none are declared").Default("true").Bool()
	sourceOnly     = erCmd.Flag("source", "print the PlantUML source instead of its reference").Bool()
)

func main() {
	if err := loadEnv(os.Getenv("PLANTIMG_ENV_FILE")); err != nil {
		app.Fatalf("%s", err)
	}

	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = log.With(ctx, log.Make(*debug))

	if err := run(ctx, cmd); err != nil {
		log.Fatal(ctx, "plantimg failed", slog.Error(err))
	}
}
