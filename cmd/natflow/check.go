package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"nat-flow-resolver/internal/config"
	"nat-flow-resolver/internal/engine"
	"nat-flow-resolver/internal/model"
	"nat-flow-resolver/pkg/wellknown"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
)

var listRules bool

func newCheckCmd() *cobra.Command {
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the rule table without resolving flows",
		Long: `check parses every rule and reports all problems at once: malformed
addresses, rules that can never match because an earlier rule covers them,
and input ports written as service names, which never equal the numeric
ports seen in flows.`,
		SilenceUsage: true,
		RunE:         runCheck,
	}
	checkCmd.Flags().BoolVar(&listRules, "list", false, "Print the parsed rule table")
	return checkCmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags(), configFile)
	if err != nil {
		return err
	}
	slog.SetDefault(setupLogger(cfg.Log))

	entries, err := loadRules(cfg.Provider, cfg.RulesPath, cfg.DB)
	if err != nil {
		slog.Error("Failed to load translation rules", "error", err)
		return err
	}

	table, err := checkRules(entries)
	if listRules {
		printRules(cmd.OutOrStdout(), table)
	}
	if err != nil {
		slog.Error("Rule check failed", "error", err)
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d rules OK\n", table.Len())
	return nil
}

// checkRules validates every entry instead of stopping at the first bad one.
// The returned table holds the well-formed rules; the error, if any, is a
// *multierror.Error listing every finding.
func checkRules(entries []model.RuleEntry) (*engine.Table, error) {
	var errs *multierror.Error
	var rules []model.Rule
	var positions []string

	for i, entry := range entries {
		rule, err := engine.ParseRule(entry)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("rule %s: %w", entry.Position(i), err))
			continue
		}
		rules = append(rules, rule)
		positions = append(positions, entry.Position(i))

		if name := rule.Input.Port; !rule.Input.PortIsWildcard() && !isNumeric(name) {
			if ports := wellknown.PortNumbers(name); len(ports) > 0 {
				errs = multierror.Append(errs, fmt.Errorf("rule %s: input port %q is a service name and will not match numeric port %s",
					entry.Position(i), name, strings.Join(ports, "/")))
			}
		}
	}

	table := engine.NewTable(rules)
	for _, s := range table.Shadowed() {
		errs = multierror.Append(errs, fmt.Errorf("rule %s (%s) is shadowed by rule %s (%s)",
			positions[s.Index], s.Rule.Input, positions[s.ByIndex], s.ByRule.Input))
	}
	return table, errs.ErrorOrNil()
}

func isNumeric(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

func printRules(w io.Writer, table *engine.Table) {
	for _, rule := range table.Rules() {
		fmt.Fprintf(w, "%s %s\n", rule.Input, rule.Output)
	}
}
