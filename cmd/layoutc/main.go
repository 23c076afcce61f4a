package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/binlayout"
	"github.com/wippyai/binlayout/codec"
	"github.com/wippyai/binlayout/layout"
	"github.com/wippyai/binlayout/schema"
	"github.com/wippyai/binlayout/schemafile"
	"github.com/wippyai/binlayout/witimport"
)

type options struct {
	schemaFile string
	witFile    string
	typeName   string
	dataFile   string
	policy     codec.TruncatePolicy
	capacity   uint32
	index      int
	asJSON     bool
}

func main() {
	var (
		schemaFile  = flag.String("schema", "", "Path to YAML schema file")
		witFile     = flag.String("wit", "", "Path to WIT JSON (wasm-tools component wit --json)")
		typeName    = flag.String("type", "", "Type to show (default: all types)")
		dataFile    = flag.String("data", "", "Binary file to decode as an array of -type")
		index       = flag.Int("index", 0, "Element index to decode from -data")
		policy      = flag.String("policy", "truncate", "String policy: truncate or reject")
		capacity    = flag.Uint("string-capacity", 0, "Payload octets for WIT strings (0 rejects strings)")
		asJSON      = flag.Bool("json", false, "Dump compiled contracts as JSON")
		verbose     = flag.Bool("v", false, "Log compilation steps to stderr")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if (*schemaFile == "") == (*witFile == "") {
		fmt.Fprintln(os.Stderr, "Usage: layoutc -schema <file.yaml> [-type name] [-json]")
		fmt.Fprintln(os.Stderr, "       layoutc -wit <file.json> [-string-capacity n] [-type name] [-json]")
		fmt.Fprintln(os.Stderr, "       layoutc -schema <file.yaml> -type name -data <file.bin> [-index n]")
		fmt.Fprintln(os.Stderr, "       layoutc -schema <file.yaml> -type name -data <file.bin> -i  (interactive mode)")
		os.Exit(1)
	}

	pol, ok := codec.ParsePolicy(*policy)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown string policy %q\n", *policy)
		os.Exit(1)
	}

	if *verbose {
		if err := enableLogging(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	opts := options{
		schemaFile: *schemaFile,
		witFile:    *witFile,
		typeName:   *typeName,
		dataFile:   *dataFile,
		index:      *index,
		policy:     pol,
		capacity:   uint32(*capacity),
		asJSON:     *asJSON,
	}

	if *interactive {
		if err := runInteractive(opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func enableLogging() error {
	l, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	binlayout.SetLogger(l)
	layout.SetLogger(l)
	codec.SetLogger(l)
	schemafile.SetLogger(l)
	witimport.SetLogger(l)
	return nil
}

// loadTypes reads the schema from whichever source was given.
func loadTypes(opts options) ([]schema.Type, error) {
	if opts.schemaFile != "" {
		s, err := schemafile.Load(opts.schemaFile)
		if err != nil {
			return nil, err
		}
		return s.Types, nil
	}

	f, err := os.Open(opts.witFile)
	if err != nil {
		return nil, fmt.Errorf("open wit: %w", err)
	}
	defer f.Close()
	return witimport.Decode(f, &witimport.Config{StringCapacity: opts.capacity})
}

func compileTypes(opts options) (*binlayout.Compiled, error) {
	types, err := loadTypes(opts)
	if err != nil {
		return nil, err
	}
	return binlayout.Compile(types, &binlayout.Config{StringPolicy: opts.policy})
}

// selectTypes returns the named type, or every type when name is empty.
func selectTypes(c *binlayout.Compiled, name string) ([]*codec.Field, error) {
	if name == "" {
		return c.Types, nil
	}
	f, err := c.Type(name)
	if err != nil {
		return nil, err
	}
	return []*codec.Field{f}, nil
}

func run(opts options) error {
	compiled, err := compileTypes(opts)
	if err != nil {
		return err
	}

	fields, err := selectTypes(compiled, opts.typeName)
	if err != nil {
		return err
	}

	if opts.asJSON {
		return writeJSON(os.Stdout, fields)
	}

	styled := term.IsTerminal(int(os.Stdout.Fd()))

	if opts.dataFile == "" {
		for i, f := range fields {
			if i > 0 {
				fmt.Println()
			}
			fmt.Print(renderLayout(f, styled))
		}
		return nil
	}

	if opts.typeName == "" {
		return fmt.Errorf("-data requires -type")
	}
	data, err := os.ReadFile(opts.dataFile)
	if err != nil {
		return fmt.Errorf("read data: %w", err)
	}
	cur, root, err := compiled.Cursor(opts.typeName, data)
	if err != nil {
		return err
	}
	if err := cur.SetIndex(opts.index); err != nil {
		return err
	}

	fmt.Printf("%s[%d] of %d at offset %d\n\n", opts.typeName, cur.Index(), cur.Len(), cur.Base())
	fmt.Print(renderValues(root, styled))
	return nil
}
