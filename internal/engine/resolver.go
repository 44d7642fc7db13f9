package engine

import "nat-flow-resolver/internal/model"

// Resolve looks endpoint up in t. An endpoint no rule matches yields an
// unmatched result; that is a normal outcome, not an error.
func Resolve(endpoint model.Address, t *Table) model.Result {
	i, ok := t.Match(endpoint)
	if !ok {
		return model.Result{Endpoint: endpoint, RuleIndex: -1}
	}
	return model.Result{
		Endpoint:  endpoint,
		Output:    t.rules[i].Output,
		Matched:   true,
		RuleIndex: i,
	}
}

// ResolveText parses a raw "host:port" flow endpoint and resolves it.
func ResolveText(raw string, t *Table) (model.Result, error) {
	endpoint, err := model.ParseAddress(raw)
	if err != nil {
		return model.Result{}, err
	}
	return Resolve(endpoint, t), nil
}
