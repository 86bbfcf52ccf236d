// Command talon analyzes a domain's email-authentication posture (SPF,
// DKIM, DMARC) and prints a scored report, or serves the analysis over HTTP.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/synqronlabs/talon"
	"github.com/synqronlabs/talon/dns"
)

func main() {
	var (
		aggressiveDKIM = flag.Bool("aggressive-dkim", false, "probe the extended DKIM selector list")
		jsonOut        = flag.String("json-out", "", "write the JSON report to this file")
		quiet          = flag.Bool("quiet", false, "print compact JSON to stdout instead of the human report")
		nameserver     = flag.String("nameserver", "", "nameserver to query (host or host:port; default: system resolvers)")
		timeout        = flag.Duration("timeout", talon.DefaultTimeout, "per-query DNS timeout")
		dnssec         = flag.Bool("dnssec", false, "request DNSSEC validation and report the authentic bit")
		listen         = flag.String("listen", "", "serve the HTTP API on this address instead of analyzing one domain")
		verbose        = flag.Bool("v", false, "enable debug logging")
	)
	flag.Usage = usage
	flag.Parse()

	log.SetFlags(0)

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	var nameservers []string
	if *nameserver != "" {
		ns := *nameserver
		if !strings.Contains(ns, ":") {
			ns += ":53"
		}
		nameservers = []string{ns}
	}

	analyzer := talon.NewAnalyzer(talon.AnalyzerConfig{
		Resolver: dns.NewResolver(dns.ResolverConfig{
			Nameservers: nameservers,
			DNSSEC:      *dnssec,
			Timeout:     *timeout,
		}),
		Timeout: *timeout,
		Logger:  logger,
	})

	if *listen != "" {
		serve(*listen, analyzer, logger)
		return
	}

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	domain := flag.Arg(0)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	report, err := analyzer.AnalyzeDomain(ctx, domain, *aggressiveDKIM)
	if err != nil {
		log.Printf("talon: %v", err)
		os.Exit(2)
	}

	if *jsonOut != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			log.Printf("talon: encoding report: %v", err)
			os.Exit(2)
		}
		if err := os.WriteFile(*jsonOut, data, 0o644); err != nil {
			log.Printf("talon: writing %s: %v", *jsonOut, err)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "wrote JSON report to %s\n", *jsonOut)
	}

	if *quiet {
		data, err := json.Marshal(report)
		if err != nil {
			log.Printf("talon: encoding report: %v", err)
			os.Exit(2)
		}
		fmt.Println(string(data))
		return
	}

	fmt.Print(talon.RenderHuman(report))
}

func serve(addr string, analyzer *talon.Analyzer, logger *slog.Logger) {
	srv := talon.NewServer(talon.ServerConfig{
		Addr:     addr,
		Analyzer: analyzer,
		Logger:   logger,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		log.Printf("talon: %v", err)
		os.Exit(2)
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("talon: shutdown: %v", err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage:
  talon [flags] <domain>
  talon -listen <addr> [flags]

Flags:
`)
	flag.PrintDefaults()
}
