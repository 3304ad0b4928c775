// File: backend/cmd/urlcheck/main.go
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"

	"github.com/statusflowhq/statusflow/backend/internal/config"
	"github.com/statusflowhq/statusflow/backend/internal/dnschecker"
	"github.com/statusflowhq/statusflow/backend/internal/exporter"
	"github.com/statusflowhq/statusflow/backend/internal/urlchecker"
)

var cli struct {
	URLs []string `arg:"" optional:"" name:"url" help:"URLs to check."`

	File         string  `short:"f" help:"Read URLs from a file, one per line ('-' for stdin). Blank lines and # comments are skipped."`
	Output       string  `short:"o" enum:"text,json,csv" default:"text" help:"Output format (text, json, csv)."`
	Timeout      int     `help:"Per-attempt timeout in seconds (default 8)."`
	MaxRedirects int     `help:"Redirects to follow per attempt."`
	Insecure     bool    `help:"Skip TLS certificate verification."`
	Rate         float64 `help:"Max probe requests per second (0 disables limiting)."`
	NoDNS        bool    `name:"no-dns" help:"Skip DNS diagnosis for unreachable URLs."`
	Quiet        bool    `short:"q" help:"Suppress progress output."`
	Verbose      bool    `short:"v" help:"Log internal checker activity to stderr."`
	NoFail       bool    `name:"no-fail" help:"Exit 0 even when some URLs are not live."`
	Config       string  `short:"c" type:"path" help:"YAML profile with checker settings."`
}

// profile mirrors the YAML file accepted via --config. Flags win over
// profile values, which win over built-in defaults.
type profile struct {
	TimeoutSeconds int               `yaml:"timeoutSeconds"`
	MaxRedirects   int               `yaml:"maxRedirects"`
	Insecure       bool              `yaml:"insecure"`
	Rate           float64           `yaml:"rate"`
	UserAgents     []string          `yaml:"userAgents"`
	Headers        map[string]string `yaml:"headers"`
	Resolvers      []string          `yaml:"resolvers"`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("urlcheck"),
		kong.Description("Check the status of URLs in resilient batches."),
		kong.UsageOnError(),
	)

	urls, err := collectURLs()
	kctx.FatalIfErrorf(err)
	if len(urls) == 0 {
		kctx.Fatalf("no URLs given; pass them as arguments or via --file")
	}

	checkerCfg, dnsCfg, err := buildConfigs()
	kctx.FatalIfErrorf(err)

	if !cli.Verbose {
		log.SetOutput(io.Discard)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var dnsChecker *dnschecker.Checker
	if dnsCfg.Enabled {
		dnsChecker = dnschecker.New(dnsCfg)
	}
	prober := urlchecker.NewProber(checkerCfg, dnsChecker, nil)
	scheduler := urlchecker.NewScheduler(prober, urlchecker.Options{Limiter: urlchecker.NewLimiter(checkerCfg)})

	var onProgress urlchecker.ProgressFunc
	if !cli.Quiet {
		onProgress = func(p urlchecker.BatchProgress) {
			fmt.Fprintf(os.Stderr, "checked %d/%d (%d%%)\n", p.Done, p.Total, p.Percent)
		}
	}

	results, runErr := scheduler.Run(ctx, urls, onProgress)
	if runErr != nil && !cli.Quiet {
		fmt.Fprintf(os.Stderr, "interrupted after %d of %d URLs\n", len(results), len(urls))
	}

	kctx.FatalIfErrorf(writeOutput(os.Stdout, results))

	summary := urlchecker.Summarize(results)
	if (summary.ClientError+summary.ServerError > 0 || runErr != nil) && !cli.NoFail {
		os.Exit(1)
	}
}

func collectURLs() ([]string, error) {
	urls := append([]string(nil), cli.URLs...)
	if cli.File == "" {
		return urls, nil
	}

	var reader io.Reader
	if cli.File == "-" {
		reader = os.Stdin
	} else {
		f, err := os.Open(cli.File)
		if err != nil {
			return nil, fmt.Errorf("opening URL file: %w", err)
		}
		defer f.Close()
		reader = f
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading URL file: %w", err)
	}
	return urls, nil
}

func buildConfigs() (config.CheckerConfig, config.DNSCheckerConfig, error) {
	appCfg := config.DefaultConfig()
	checkerCfg := appCfg.Checker
	dnsCfg := appCfg.DNS

	if cli.Config != "" {
		var p profile
		data, err := os.ReadFile(cli.Config)
		if err != nil {
			return checkerCfg, dnsCfg, fmt.Errorf("reading profile: %w", err)
		}
		if err := yaml.Unmarshal(data, &p); err != nil {
			return checkerCfg, dnsCfg, fmt.Errorf("parsing profile %s: %w", cli.Config, err)
		}
		if p.TimeoutSeconds > 0 {
			checkerCfg.AttemptTimeout = time.Duration(p.TimeoutSeconds) * time.Second
			checkerCfg.AttemptTimeoutSeconds = p.TimeoutSeconds
		}
		if p.MaxRedirects > 0 {
			checkerCfg.MaxRedirects = p.MaxRedirects
		}
		if p.Insecure {
			checkerCfg.AllowInsecureTLS = true
		}
		if p.Rate > 0 {
			checkerCfg.RateLimitRPS = p.Rate
		}
		if len(p.UserAgents) > 0 {
			checkerCfg.UserAgents = p.UserAgents
		}
		if len(p.Headers) > 0 {
			checkerCfg.DefaultHeaders = p.Headers
		}
		if len(p.Resolvers) > 0 {
			dnsCfg.Resolvers = p.Resolvers
		}
	}

	if cli.Timeout > 0 {
		checkerCfg.AttemptTimeout = time.Duration(cli.Timeout) * time.Second
		checkerCfg.AttemptTimeoutSeconds = cli.Timeout
	}
	if cli.MaxRedirects > 0 {
		checkerCfg.MaxRedirects = cli.MaxRedirects
	}
	if cli.Insecure {
		checkerCfg.AllowInsecureTLS = true
	}
	if cli.Rate > 0 {
		checkerCfg.RateLimitRPS = cli.Rate
		if checkerCfg.RateLimitBurst <= 0 {
			checkerCfg.RateLimitBurst = config.DefaultRateLimitBurst
		}
	}
	dnsCfg.Enabled = !cli.NoDNS
	return checkerCfg, dnsCfg, nil
}

func writeOutput(w io.Writer, results []urlchecker.StatusResult) error {
	switch cli.Output {
	case "json":
		return exporter.WriteJSON(w, results)
	case "csv":
		return exporter.WriteCSV(w, results)
	default:
		printText(w, results)
		return nil
	}
}

func printText(w io.Writer, results []urlchecker.StatusResult) {
	for _, r := range results {
		line := fmt.Sprintf("%-12s %s", urlchecker.Classify(r), r.OriginalURL)
		if r.FinalURL != "" && r.FinalURL != r.OriginalURL {
			line += " -> " + r.FinalURL
		}
		line += fmt.Sprintf(" [%d %s] %dms (%s)", r.Status, r.StatusText, r.ResponseTimeMs, r.MethodUsed)
		if r.Error != "" {
			line += ": " + r.Error
		}
		fmt.Fprintln(w, line)
	}

	s := urlchecker.Summarize(results)
	fmt.Fprintf(w, "\n%d checked: %d live, %d redirect, %d client error, %d server error, avg %dms, %.0f%% live\n",
		s.Total, s.Live, s.Redirect, s.ClientError, s.ServerError, s.AvgResponseTimeMs, s.SuccessRate*100)
}
