// Package main provides a command-line interface for the optillm engine.
// It sends a single prompt through the optimization layer to an HTTP
// completion backend and prints the processed result.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/optillm/optillm"
	"github.com/optillm/optillm/backend"
	"github.com/optillm/optillm/config"
)

type cmdFlags struct {
	endpoint    string
	apiKey      string
	configFile  string
	level       string
	cacheStrat  string
	maxRetries  int
	retryDelay  time.Duration
	timeout     time.Duration
	breaker     bool
	showReport  bool
	showSchema  bool
	jsonOutput  bool
	temperature float64
	maxLength   int
	taskType    string
}

func parseFlags() *cmdFlags {
	flags := &cmdFlags{}
	flag.StringVar(&flags.endpoint, "endpoint", "", "HTTP completion endpoint URL")
	flag.StringVar(&flags.apiKey, "api-key", "", "Bearer token for the backend")
	flag.StringVar(&flags.configFile, "config", "", "YAML config file (overrides environment)")
	flag.StringVar(&flags.level, "level", "", "Optimization level (basic, standard, advanced, expert)")
	flag.StringVar(&flags.cacheStrat, "cache", "", "Cache strategy (none, basic, smart, aggressive)")
	flag.IntVar(&flags.maxRetries, "max-retries", -1, "Maximum number of retries for backend calls")
	flag.DurationVar(&flags.retryDelay, "retry-delay", 0, "Base delay between retries")
	flag.DurationVar(&flags.timeout, "timeout", 30*time.Second, "HTTP request timeout")
	flag.BoolVar(&flags.breaker, "breaker", false, "Wrap the backend with a circuit breaker")
	flag.BoolVar(&flags.showReport, "report", false, "Print the engine report after the call")
	flag.BoolVar(&flags.showSchema, "schema", false, "Print the result JSON schema and exit")
	flag.BoolVar(&flags.jsonOutput, "json", false, "Print the full result as JSON")
	flag.Float64Var(&flags.temperature, "temperature", -1, "Generation temperature")
	flag.IntVar(&flags.maxLength, "max-length", 0, "Maximum response length")
	flag.StringVar(&flags.taskType, "task-type", "", "Task type hint (analysis, generation, review)")
	flag.Parse()
	return flags
}

func main() {
	flags := parseFlags()

	if flags.showSchema {
		schema, err := optillm.ResultSchema()
		if err != nil {
			exitWithError("Error building result schema: %v\n", err)
		}
		fmt.Println(string(schema))
		return
	}

	if flags.endpoint == "" {
		exitWithError("The -endpoint flag is required\n")
	}

	engine, err := buildEngine(flags)
	if err != nil {
		exitWithError("Error creating engine: %v\n", err)
	}

	prompt := getPrompt()
	result, err := engine.Generate(context.Background(), prompt, buildParams(flags))
	if err != nil {
		exitWithError("Error generating response: %v\n", err)
	}

	printResult(result, flags.jsonOutput)
	if flags.showReport {
		printReport(engine.Report())
	}
}

func exitWithError(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

func getPrompt() string {
	if len(flag.Args()) < 1 {
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [flags] <prompt>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	return strings.Join(flag.Args(), " ")
}

func buildEngine(flags *cmdFlags) (*optillm.Engine, error) {
	httpOpts := []backend.HTTPOption{backend.WithTimeout(flags.timeout)}
	if flags.apiKey != "" {
		httpOpts = append(httpOpts, backend.WithHeaders(map[string]string{
			"Authorization": "Bearer " + flags.apiKey,
		}))
	}

	var client optillm.Client = backend.NewHTTPClient(flags.endpoint, httpOpts...)
	if flags.breaker {
		client = optillm.WrapWithBreaker(client, backend.BreakerSettings{Name: "optillm-cli"})
	}

	if flags.configFile != "" {
		cfg, err := config.LoadConfigFile(flags.configFile)
		if err != nil {
			return nil, err
		}
		config.ApplyOptions(cfg, configOptions(flags)...)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return optillm.NewWithConfig(client, cfg)
	}
	return optillm.New(client, configOptions(flags)...)
}

func configOptions(flags *cmdFlags) []optillm.ConfigOption {
	var opts []optillm.ConfigOption
	if flags.level != "" {
		var level optillm.OptimizationLevel
		if err := level.UnmarshalText([]byte(flags.level)); err != nil {
			exitWithError("Invalid level: %v\n", err)
		}
		opts = append(opts, optillm.SetLevel(level))
	}
	if flags.cacheStrat != "" {
		var strategy optillm.CacheStrategy
		if err := strategy.UnmarshalText([]byte(flags.cacheStrat)); err != nil {
			exitWithError("Invalid cache strategy: %v\n", err)
		}
		opts = append(opts, optillm.SetCacheStrategy(strategy))
	}
	if flags.maxRetries >= 0 {
		opts = append(opts, optillm.SetMaxRetries(flags.maxRetries))
	}
	if flags.retryDelay > 0 {
		opts = append(opts, optillm.SetRetryDelay(flags.retryDelay))
	}
	return opts
}

func buildParams(flags *cmdFlags) map[string]any {
	params := map[string]any{}
	if flags.temperature != -1 {
		params["temperature"] = flags.temperature
	}
	if flags.maxLength != 0 {
		params["maxLength"] = flags.maxLength
	}
	if flags.taskType != "" {
		params["taskType"] = flags.taskType
	}
	return params
}

func printResult(result optillm.Result, asJSON bool) {
	if asJSON {
		printJSON(result)
		return
	}

	switch content := result.Content.(type) {
	case string:
		fmt.Println(content)
	default:
		printJSON(content)
	}
	if result.Assessment != nil {
		fmt.Fprintf(os.Stderr, "quality: %.2f\n", result.Assessment.Overall)
	}
}

func printReport(report optillm.Report) {
	fmt.Fprintf(os.Stderr, "level: %s, cache: %s, components: %s\n",
		report.Level, report.CacheStrategy, strings.Join(report.ActiveComponents, ", "))
	fmt.Fprintf(os.Stderr, "requests: %d (ok %d, failed %d), avg: %s, hit rate: %.2f\n",
		report.Metrics.TotalRequests,
		report.Metrics.SuccessfulRequests,
		report.Metrics.FailedRequests,
		report.Metrics.AverageResponseTime,
		report.Metrics.CacheHitRate)
}

func printJSON(v any) {
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		exitWithError("Error formatting output: %v\n", err)
	}
	fmt.Println(string(pretty))
}
