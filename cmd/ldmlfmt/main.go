// The ldmlfmt command rewrites an LDML writing system definition in canonical
// form.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"

	"github.com/writingsystems/ldmlfile"
	"github.com/writingsystems/ldmlfile/internal/config"
	"github.com/writingsystems/ldmlfile/ldml"
)

const usage = `usage: ldmlfmt [FLAGS] [INPUT] [OUTPUT]

Reads an LDML file from INPUT, and writes to OUTPUT the same definition in
canonical form. Content that is not understood is preserved.

INPUT and OUTPUT are paths to files. If INPUT is "-" or unspecified, then stdin
is used. If OUTPUT is "-" or unspecified, then stdout is used. Warnings and
errors are written to stderr.

FLAGS:
	-w        Rewrite INPUT in place. OUTPUT must not be given.
	-check    Decode INPUT and report problems without writing anything.
	-dump     Write a dump of the decoded definition instead of LDML.
	-json     Write the decoded definition as JSON instead of LDML.
	-config   Path to a YAML configuration file.
	-compat   Compatibility mode: "strict" or "flex7v0".
	-v        Log debugging information.
`

type options struct {
	write   bool
	check   bool
	dump    bool
	json    bool
	config  string
	compat  string
	verbose bool
	args    []string
}

func main() {
	var opt options
	flag.Usage = func() { fmt.Fprintf(flag.CommandLine.Output(), usage) }
	flag.BoolVar(&opt.write, "w", false, "")
	flag.BoolVar(&opt.check, "check", false, "")
	flag.BoolVar(&opt.dump, "dump", false, "")
	flag.BoolVar(&opt.json, "json", false, "")
	flag.StringVar(&opt.config, "config", "", "")
	flag.StringVar(&opt.compat, "compat", "", "")
	flag.BoolVar(&opt.verbose, "v", false, "")
	flag.Parse()
	opt.args = flag.Args()

	if err := run(opt); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(opt options) (config.Config, error) {
	cfg, err := config.Load(opt.config)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if opt.compat != "" {
		cfg.Compatibility = opt.compat
	}
	if opt.verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.DisableStacktrace = true
	return zc.Build()
}

func run(opt options) error {
	cfg, err := loadConfig(opt)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	if opt.write && (len(opt.args) != 1 || opt.args[0] == "-") {
		return errors.New("-w requires a single INPUT file")
	}

	var input io.Reader = os.Stdin
	if len(opt.args) >= 1 && opt.args[0] != "-" {
		in, err := os.Open(opt.args[0])
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer in.Close()
		input = in
	}
	data, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	ws, warn, err := ldml.Decoder{Logger: log}.Decode(bytes.NewReader(data), nil)
	if warn != nil {
		log.Warn("decode warning", zap.Error(warn))
	}
	if err != nil {
		return fmt.Errorf("decode error: %w", err)
	}
	if opt.check {
		return ws.Validate()
	}

	enc := ldml.Encoder{
		Compatibility: cfg.CompatibilityMode(),
		Indent:        cfg.Indent,
		Logger:        log,
	}
	if opt.write {
		return rewrite(opt.args[0], ws, data, enc, cfg.BackupEnabled())
	}

	var output io.Writer = os.Stdout
	if len(opt.args) >= 2 && opt.args[1] != "-" {
		out, err := os.Create(opt.args[1])
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer out.Close()
		defer func() {
			if err := out.Sync(); err != nil {
				log.Error("sync output", zap.Error(err))
			}
		}()
		output = out
	}

	switch {
	case opt.dump:
		spew.Config.Indent = "\t"
		spew.Fdump(output, ws)
	case opt.json:
		je := json.NewEncoder(output)
		je.SetEscapeHTML(false)
		je.SetIndent("", "\t")
		if err := je.Encode(ws); err != nil {
			return fmt.Errorf("write error: %w", err)
		}
	default:
		warn, err := enc.Encode(output, ws, bytes.NewReader(data))
		if warn != nil {
			log.Warn("encode warning", zap.Error(warn))
		}
		if err != nil {
			return fmt.Errorf("encode error: %w", err)
		}
	}
	return nil
}

func rewrite(path string, ws *ldmlfile.Definition, old []byte, enc ldml.Encoder, backup bool) error {
	var warn, err error
	if backup {
		warn, err = ldml.WriteFile(path, ws, bytes.NewReader(old), enc)
	} else {
		var out *os.File
		if out, err = os.Create(path); err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		warn, err = enc.Encode(out, ws, bytes.NewReader(old))
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}
	if warn != nil {
		enc.Logger.Warn("encode warning", zap.Error(warn))
	}
	if err != nil {
		return fmt.Errorf("encode error: %w", err)
	}
	return nil
}
