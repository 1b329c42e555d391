package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-codegen/driver"
	"github.com/wippyai/wasm-codegen/gen"
	"github.com/wippyai/wasm-codegen/manifest"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:     "wasmgen",
		Short:   "wasmgen - binary module generator for the prototype wasm VM",
		Version: version,
	}

	rootCmd.AddCommand(newEncodeCommand())
	rootCmd.AddCommand(newViewCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type encodeOptions struct {
	outPath string
	verbose bool
	dump    bool
	multi   bool
	watch   bool
}

func newEncodeCommand() *cobra.Command {
	var opts encodeOptions

	cmd := &cobra.Command{
		Use:   "encode <manifest.yaml>",
		Short: "Encode a module manifest to the binary module format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.verbose {
				logger, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				gen.SetLogger(logger)
			}
			if opts.watch {
				return watchEncode(args[0], opts)
			}
			return encodeOnce(args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outPath, "output", "o", "", `output file ("-" for stdout; omit to skip writing)`)
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "annotated per-write trace on stderr")
	cmd.Flags().BoolVar(&opts.dump, "dump", false, "print a full annotated hex listing after encoding")
	cmd.Flags().BoolVar(&opts.multi, "multi", false, "encode every document of a multi-module stream, writing nothing")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "re-encode whenever the manifest changes")
	return cmd
}

func encodeOnce(path string, opts encodeOptions) error {
	enc := gen.New()
	if opts.verbose {
		enc.Trace = os.Stderr
	}

	if opts.multi {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read manifest: %w", err)
		}
		mods, err := manifest.DecodeAll(data)
		if err != nil {
			return err
		}
		// Multi-module mode encodes for diagnostics only; the buffer
		// is reused across modules and nothing is written out.
		for _, mod := range mods {
			if err := driver.Walk(mod, enc); err != nil {
				return err
			}
			if opts.dump {
				enc.Dump(os.Stdout)
			}
		}
		return nil
	}

	mod, err := manifest.Load(path)
	if err != nil {
		return err
	}
	if err := driver.Walk(mod, enc); err != nil {
		return err
	}
	if opts.dump {
		enc.Dump(os.Stdout)
	}
	return writeOutput(enc, opts.outPath)
}

func writeOutput(enc *gen.Encoder, outPath string) error {
	switch outPath {
	case "":
		return nil
	case "-":
		_, err := enc.WriteTo(os.Stdout)
		return err
	default:
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("open %s: %w", outPath, err)
		}
		if _, err := enc.WriteTo(f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}
}

// watchEncode re-runs the encode every time the manifest changes, until
// interrupted. Errors are reported and watching continues.
func watchEncode(path string, opts encodeOptions) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report := func() {
		if err := encodeOnce(path, opts); err != nil {
			fmt.Fprintf(os.Stderr, "encode failed: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "encoded %s\n", path)
		}
	}
	report()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				report()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		}
	}
}
