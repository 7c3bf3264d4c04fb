package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	typeschema "github.com/reoring/typeschema"
	"github.com/reoring/typeschema/decl"
	"github.com/reoring/typeschema/i18n"
	"github.com/reoring/typeschema/jsonschema"
	"github.com/reoring/typeschema/openapi"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 2
	}
	switch args[0] {
	case "gen":
		return genCmd(args[1:], stdout, stderr)
	case "openapi":
		return openapiCmd(args[1:], stdout, stderr)
	default:
		usage(stderr)
		return 2
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "typeschema CLI\n\nUsage:\n  typeschema gen -f types.yaml [-type A,B] [-ref-template T] [-format json|yaml] [-o out]\n  typeschema openapi -f types.yaml [-type A,B] [-title T] [-version V] [-validate] [-format json|yaml] [-o out]\n\nNotes:\n  - Without -type every declared type is a root.\n  - -v prints diagnostics to stderr.")
}

// common holds the flags shared by both subcommands.
type common struct {
	file     string
	typesCSV string
	scope    string
	format   string
	out      string
	lang     string
	verbose  bool
}

func (c *common) register(fs *flag.FlagSet) {
	fs.StringVar(&c.file, "f", "", "declaration file (YAML or JSON)")
	fs.StringVar(&c.typesCSV, "type", "", "comma-separated root type names (default: all)")
	fs.StringVar(&c.scope, "scope", "", "scope used to qualify colliding names")
	fs.StringVar(&c.format, "format", "json", "output format: json or yaml")
	fs.StringVar(&c.out, "o", "", "output filename (default: stdout)")
	fs.StringVar(&c.lang, "lang", "en", "message language: en or ja")
	fs.BoolVar(&c.verbose, "v", false, "enable verbose logs")
}

func (c *common) load() ([]typeschema.Type, error) {
	set, err := decl.LoadFile(c.file, decl.Options{Scope: c.scope})
	if err != nil {
		return nil, err
	}
	names := splitCSV(c.typesCSV)
	if len(names) == 0 {
		names = set.Names()
	}
	return set.Select(names...)
}

func genCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("gen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c common
	var refTemplate string
	c.register(fs)
	fs.StringVar(&refTemplate, "ref-template", "", "reference template containing {name} (default: #/$defs/{name})")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if c.file == "" || (c.format != "json" && c.format != "yaml") {
		fs.Usage()
		return 2
	}
	i18n.SetLanguage(c.lang)
	logf := logger(stderr, c.verbose)

	types, err := c.load()
	if err != nil {
		return fail(stderr, err)
	}
	logf("gen: file=%s roots=%d format=%s", c.file, len(types), c.format)
	doc, diag, err := jsonschema.Generate(types, jsonschema.Options{RefTemplate: refTemplate})
	if err != nil {
		return fail(stderr, err)
	}
	report(logf, diag)

	var payload any
	if len(doc.Roots) == 1 && refTemplate == "" {
		root := doc.Roots[0]
		if len(doc.Components) > 0 {
			root["$defs"] = doc.Components
		}
		payload = root
	} else {
		payload = map[string]any{"roots": doc.Roots, "components": doc.Components}
	}
	return write(stderr, stdout, c, payload, logf)
}

func openapiCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("openapi", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var c common
	var info openapi.Info
	var validate bool
	c.register(fs)
	fs.StringVar(&info.Title, "title", "", "document title")
	fs.StringVar(&info.Version, "version", "", "document version")
	fs.StringVar(&info.Description, "description", "", "document description")
	fs.BoolVar(&validate, "validate", false, "validate the document with kin-openapi")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if c.file == "" || (c.format != "json" && c.format != "yaml") {
		fs.Usage()
		return 2
	}
	i18n.SetLanguage(c.lang)
	logf := logger(stderr, c.verbose)

	types, err := c.load()
	if err != nil {
		return fail(stderr, err)
	}
	logf("openapi: file=%s roots=%d validate=%v", c.file, len(types), validate)
	spec, err := openapi.Build(context.Background(), types, openapi.Options{Info: info, Validate: validate})
	if err != nil {
		return fail(stderr, err)
	}
	report(logf, spec.Diag)
	return write(stderr, stdout, c, spec.Doc, logf)
}

func logger(w io.Writer, verbose bool) func(string, ...any) {
	return func(format string, a ...any) {
		if verbose {
			fmt.Fprintf(w, format+"\n", a...)
		}
	}
}

func report(logf func(string, ...any), diag typeschema.Diag) {
	if diag == nil || !diag.HasWarnings() {
		return
	}
	d, ok := diag.(*typeschema.Diagnostics)
	if !ok {
		for _, w := range diag.Warnings() {
			logf("warning: %s", w)
		}
		return
	}
	for _, w := range d.Entries() {
		logf("warning: %s: %s", i18n.T(w.Code, map[string]string{"path": w.Path}), w.Message)
	}
}

// write encodes payload and sends it to -o or stdout. YAML output is converted
// from the JSON encoding so that openapi3 types keep their wire shape.
func write(stderr, stdout io.Writer, c common, payload any, logf func(string, ...any)) int {
	data, err := jsonschema.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fail(stderr, err)
	}
	if c.format == "yaml" {
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return fail(stderr, err)
		}
		if data, err = jsonschema.MarshalYAML(generic); err != nil {
			return fail(stderr, err)
		}
	} else {
		data = append(data, '\n')
	}
	if c.out == "" {
		_, _ = stdout.Write(data)
		return 0
	}
	if err := os.MkdirAll(filepath.Dir(c.out), 0o755); err != nil {
		return fail(stderr, fmt.Errorf("creating output dir: %w", err))
	}
	if err := os.WriteFile(c.out, data, 0o644); err != nil {
		return fail(stderr, fmt.Errorf("writing output: %w", err))
	}
	logf("wrote %s (%d bytes)", c.out, len(data))
	return 0
}

func fail(w io.Writer, err error) int {
	if e, ok := typeschema.AsError(err); ok {
		fmt.Fprintf(w, "%s\n  %v\n", i18n.T(e.Code, map[string]string{"path": e.Path}), err)
		return 1
	}
	fmt.Fprintln(w, err)
	return 1
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
