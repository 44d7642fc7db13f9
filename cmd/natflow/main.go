package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"nat-flow-resolver/internal/config"
	"nat-flow-resolver/internal/engine"
	"nat-flow-resolver/internal/model"
	"nat-flow-resolver/internal/parser"
	"nat-flow-resolver/internal/report"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"
)

const successMessage = "Generated output successfully!"

var configFile string

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "natflow",
		Short: "Resolve observed flows against a static NAT table",
		Long: `natflow reads address-translation rules and a list of observed flow
endpoints, and reports the translated address of each endpoint, or that no
rule matched. Rules are tried in order and the first match wins.`,
		SilenceUsage: true,
		RunE:         run,
	}

	config.RegisterFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: natflow.yaml in ., $HOME/.natflow or /etc/natflow)")

	rootCmd.AddCommand(newCheckCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags(), configFile)
	if err != nil {
		return err
	}

	// --- 1. Setup Logging ---
	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	slog.Info("Starting NAT flow resolver", "provider", cfg.Provider, "workers", cfg.Workers)
	startTime := time.Now()

	// --- 2. Build Translation Table ---
	table, err := loadTable(cfg)
	if err != nil {
		slog.Error("Failed to load translation rules", "error", err)
		return err
	}
	slog.Info("Translation table built", "rules", table.Len())
	for _, s := range table.Shadowed() {
		slog.Warn("Rule can never match", "rule", s.Index+1, "input", s.Rule.Input.String(), "shadowed_by", s.ByIndex+1, "shadowed_by_input", s.ByRule.Input.String())
	}

	// --- 3. Open Flow and Output Files ---
	flowF, err := os.Open(cfg.FlowsPath)
	if err != nil {
		slog.Error("Failed to open flow file", "path", cfg.FlowsPath, "error", err)
		return err
	}
	defer flowF.Close()

	outF, err := os.Create(cfg.OutPath)
	if err != nil {
		slog.Error("Failed to create output file", "path", cfg.OutPath, "error", err)
		return err
	}
	defer outF.Close()

	// --- 4. Resolve Flows ---
	stats, err := processFlows(table, flowF, outF, cfg.Workers, cfg.KeepGoing)
	slog.Info("Flow resolution finished",
		"matched", stats.Matched,
		"unmatched", stats.Unmatched,
		"skipped", stats.Skipped,
		"duration", time.Since(startTime))
	if err != nil {
		slog.Error("Failed to process flows", "path", cfg.FlowsPath, "error", err)
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), successMessage)
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var logWriter io.Writer = os.Stderr
	if cfg.File != "" {
		logWriter = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
	}

	var lvl slog.Level
	switch strings.ToUpper(cfg.Level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "INFO":
		lvl = slog.LevelInfo
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(logWriter, &slog.HandlerOptions{Level: lvl}))
}

func loadRules(provider, rulesPath, dbConnStr string) ([]model.RuleEntry, error) {
	switch provider {
	case "text", "yaml":
		if rulesPath == "" {
			return nil, fmt.Errorf("rules file path must be provided for %s provider", provider)
		}
		file, err := os.Open(rulesPath)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		if provider == "yaml" {
			return parser.ParseYAMLRuleEntries(file)
		}
		return parser.ParseRuleEntries(file)
	case "mariadb":
		if dbConnStr == "" {
			return nil, fmt.Errorf("database connection string must be provided for mariadb provider")
		}
		l, err := parser.NewMariaDBLoader(dbConnStr)
		if err != nil {
			return nil, err
		}
		defer l.Close()
		return l.Load()
	default:
		return nil, fmt.Errorf("unknown rule provider: %s", provider)
	}
}

func loadTable(cfg *config.Config) (*engine.Table, error) {
	entries, err := loadRules(cfg.Provider, cfg.RulesPath, cfg.DB)
	if err != nil {
		return nil, err
	}
	slog.Debug("Rule entries read", "count", len(entries))
	return engine.BuildTable(entries)
}

type flowTask struct {
	seq      int
	line     int
	endpoint model.Address
}

type flowResult struct {
	seq    int
	result model.Result
}

type flowStats struct {
	Matched   uint64
	Unmatched uint64
	Skipped   int
}

// processFlows resolves every flow line read from r and writes the report to
// w in input order. Without keepGoing the first malformed line stops the run;
// lines before it are still written. With keepGoing malformed lines are
// skipped and returned together as a multierror.
func processFlows(table *engine.Table, r io.Reader, w io.Writer, workers int, keepGoing bool) (flowStats, error) {
	if workers < 1 {
		workers = 1
	}
	tasks := make(chan flowTask, workers*100)
	results := make(chan flowResult, workers*100)

	var stats flowStats
	var g errgroup.Group

	// Producer
	g.Go(func() error {
		defer close(tasks)
		scanner := parser.NewFlowScanner(r)
		var skipped *multierror.Error
		seq := 0
		for {
			line, ok := scanner.Next()
			if !ok {
				break
			}
			endpoint, err := model.ParseAddress(line.Text)
			if err != nil {
				err = fmt.Errorf("flow line %d: %w", line.Line, err)
				if !keepGoing {
					return err
				}
				slog.Warn("Skipping malformed flow", "line", line.Line, "error", err)
				skipped = multierror.Append(skipped, err)
				continue
			}
			tasks <- flowTask{seq: seq, line: line.Line, endpoint: endpoint}
			seq++
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("error reading flows: %w", err)
		}
		if skipped != nil {
			stats.Skipped = skipped.Len()
		}
		return skipped.ErrorOrNil()
	})

	// Workers share the read-only table.
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go worker(&wg, i+1, table, tasks, results)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	// Writer
	g.Go(func() error {
		rw := report.NewWriter(w)
		var writeErr error
		for res := range results {
			if writeErr != nil {
				continue // drain so workers can exit
			}
			writeErr = rw.Write(res.seq, res.result)
		}
		if writeErr == nil {
			writeErr = rw.Flush()
		}
		stats.Matched = rw.Matched()
		stats.Unmatched = rw.Unmatched()
		if writeErr != nil {
			return fmt.Errorf("error writing report: %w", writeErr)
		}
		return nil
	})

	err := g.Wait()
	return stats, err
}

func worker(wg *sync.WaitGroup, id int, table *engine.Table, tasks <-chan flowTask, results chan<- flowResult) {
	defer wg.Done()
	slog.Debug("Worker started", "id", id)
	for task := range tasks {
		result := engine.Resolve(task.endpoint, table)
		if result.Matched {
			slog.Debug("Flow matched", "line", task.line, "endpoint", task.endpoint.String(), "rule", result.RuleIndex+1)
		}
		results <- flowResult{seq: task.seq, result: result}
	}
	slog.Debug("Worker finished", "id", id)
}

