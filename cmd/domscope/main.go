// CLAUDE:SUMMARY CLI entry point for domscope — one-shot inspection, HTTP API and MCP stdio server.
// Command domscope reports the scope tree of HTML markup.
//
// Usage:
//
//	domscope page.html                      # inspect a file, JSON report on stdout
//	cat page.html | domscope -format yaml   # inspect stdin
//	domscope -http :8080                    # serve POST /inspect
//	domscope -mcp                           # serve the domscope_inspect tool on stdio
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/domscope/domscope"
	"github.com/hazyhaar/domscope/guard"
	"github.com/hazyhaar/domscope/inspect"
)

const version = "0.1.0"

type options struct {
	configPath  string
	dataAttrs   bool
	includeRoot bool
	prefix      string
	sanitize    bool
	markdown    bool
	format      string
	httpAddr    string
	mcp         bool
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "path to a YAML config file")
	flag.BoolVar(&o.dataAttrs, "data-attrs", false, "use data-ref / data-scope-ref attributes")
	flag.BoolVar(&o.includeRoot, "include-root", false, "expose the root element as the \"root\" reference")
	flag.StringVar(&o.prefix, "prefix", "", "prefix of generated scope names")
	flag.BoolVar(&o.sanitize, "sanitize", false, "sanitize markup before parsing")
	flag.BoolVar(&o.markdown, "markdown", false, "render references as Markdown")
	flag.StringVar(&o.format, "format", "json", "output format: json, yaml")
	flag.StringVar(&o.httpAddr, "http", "", "serve the HTTP API on this address")
	flag.BoolVar(&o.mcp, "mcp", false, "serve MCP on stdio")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, o, flag.Args()); err != nil {
		logger.Error("domscope: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, o options, args []string) error {
	if err := configure(o); err != nil {
		return err
	}
	svc := inspect.New(logger)

	switch {
	case o.mcp:
		srv := mcp.NewServer(&mcp.Implementation{Name: "domscope", Version: version}, nil)
		svc.RegisterMCP(srv)
		logger.Info("mcp: serving on stdio")
		return srv.Run(ctx, &mcp.StdioTransport{})
	case o.httpAddr != "":
		return serveHTTP(ctx, logger, o.httpAddr, svc.Routes())
	}

	text, err := readInput(args)
	if err != nil {
		return err
	}
	rep, err := svc.Inspect(ctx, &inspect.Request{
		HTML:           text,
		IncludeRoot:    o.includeRoot,
		AutoNamePrefix: o.prefix,
		Sanitize:       o.sanitize,
		Markdown:       o.markdown,
	})
	if err != nil {
		return err
	}
	return writeReport(os.Stdout, o.format, rep)
}

// configure installs the process-wide default configuration.
func configure(o options) error {
	if o.configPath != "" {
		fc, err := domscope.LoadConfigFile(o.configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		domscope.SetDefault(fc.Options()...)
	}
	if o.dataAttrs {
		domscope.UseDataAttributes(true)
	}
	return nil
}

func readInput(args []string) (string, error) {
	var r io.Reader
	switch len(args) {
	case 0:
		r = os.Stdin
	case 1:
		f, err := os.Open(args[0])
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	default:
		return "", errors.New("usage: domscope [flags] [file.html]")
	}
	data, err := guard.LimitedReadAll(r, guard.MaxInput)
	return string(data), err
}

func writeReport(w io.Writer, format string, rep *inspect.Report) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q", format)
}

func serveHTTP(ctx context.Context, logger *slog.Logger, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("http: listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
