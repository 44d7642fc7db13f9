package parser

import (
	"database/sql"
	"fmt"
	"strings"

	"nat-flow-resolver/internal/model"

	_ "github.com/go-sql-driver/mysql"
)

const ruleQuery = "SELECT id, input_addr, output_addr FROM nat_rule WHERE is_enabled = 'enable' ORDER BY priority ASC, id ASC"

// MariaDBLoader reads translation rules from the nat_rule table.
// Rows are returned in priority order, which becomes match order.
type MariaDBLoader struct {
	db *sql.DB
}

func NewMariaDBLoader(dsn string) (*MariaDBLoader, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return &MariaDBLoader{db: db}, nil
}

func (l *MariaDBLoader) Close() {
	l.db.Close()
}

// Load returns every enabled rule.
func (l *MariaDBLoader) Load() ([]model.RuleEntry, error) {
	rows, err := l.db.Query(ruleQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query nat rules: %w", err)
	}
	defer rows.Close()

	var entries []model.RuleEntry
	for rows.Next() {
		var id int
		var input, output string
		if err := rows.Scan(&id, &input, &output); err != nil {
			return nil, err
		}
		entries = append(entries, model.RuleEntry{
			Input:  strings.TrimSpace(input),
			Output: strings.TrimSpace(output),
			Origin: fmt.Sprintf("nat_rule id %d", id),
		})
	}
	return entries, rows.Err()
}
