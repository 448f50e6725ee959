package cypher

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/ontodsl/ontoc/ast"
)

// load generates the bulk-ingest block for a LOAD_CSV statement: one node
// per CSV row under the declared label, plus a factory dimension node and an
// AT_FACTORY edge when the row schema carries a factory column.
func (g *generator) load(stmt *ast.LoadStatement) (string, error) {
	columns := stmt.Columns
	if len(columns) == 0 {
		// No MAP_COLUMNS clause: emit a pass-through mapping over the
		// fields later statements are known to reference on this alias.
		if entry, ok := g.symbols.Resolve(stmt.Alias); ok {
			columns = lo.Map(entry.Fields(), func(field string, _ int) ast.ColumnMapping {
				return ast.ColumnMapping{Source: field, Target: field}
			})
		}
	}

	hasFactory := lo.SomeBy(columns, func(c ast.ColumnMapping) bool {
		return c.Source == "factory" || c.Target == "factory_id"
	})

	lines := []string{fmt.Sprintf("// LOAD_CSV: %s AS %s", stmt.Path, stmt.Alias)}
	lines = append(lines, fmt.Sprintf("LOAD CSV WITH HEADERS FROM \"file:///%s\" AS row", stmt.Path))
	lines = append(lines, "WITH row")

	if hasFactory {
		lines = append(lines, "MERGE (f:factory { id: row.factory })")
	}

	fields := lo.Map(columns, func(c ast.ColumnMapping, _ int) string {
		return fmt.Sprintf("  %s: row.%s", c.Target, c.Source)
	})
	lines = append(lines, fmt.Sprintf("CREATE (m:%s {", stmt.Alias))
	lines = append(lines, strings.Join(fields, ",\n"))
	lines = append(lines, "})")

	if hasFactory {
		lines = append(lines, "MERGE (m)-[:AT_FACTORY]->(f);")
	} else {
		lines = append(lines, ";")
	}

	return strings.Join(lines, "\n"), nil
}

// normalize generates one match-and-update statement per (field, old value)
// pair, rewriting the field to its new value in place.
func (g *generator) normalize(stmt *ast.NormalizeStatement) (string, error) {
	if len(stmt.Rules) == 0 {
		return "", fmt.Errorf("%w: NORMALIZE %s has no field rules", ErrInvalidAST, stmt.Alias)
	}

	lines := []string{fmt.Sprintf("// NORMALIZE: %s", stmt.Alias)}
	for _, rule := range stmt.Rules {
		for _, m := range rule.Mappings {
			lines = append(lines, fmt.Sprintf("MATCH (n:%s)", stmt.Alias))
			lines = append(lines, fmt.Sprintf("WHERE n.%s = %s", rule.Field, quote(m.Old)))
			lines = append(lines, fmt.Sprintf("SET n.%s = %s;", rule.Field, quote(m.New)))
		}
	}

	return strings.TrimRight(strings.Join(lines, "\n"), "\n"), nil
}

// aggregate generates a grouped WITH over the source label followed by a
// CREATE of one target node per group, and a MERGE back to the factory
// dimension when the grouping key carries one.
func (g *generator) aggregate(stmt *ast.AggregateStatement) (string, error) {
	if len(stmt.GroupBy) == 0 {
		return "", fmt.Errorf("%w: AGGREGATE %s has an empty grouping key list", ErrInvalidAST, stmt.Source)
	}
	if len(stmt.Clauses) == 0 {
		return "", fmt.Errorf("%w: AGGREGATE %s has no aggregation clauses", ErrInvalidAST, stmt.Source)
	}

	lines := []string{fmt.Sprintf("// AGGREGATE: %s -> %s", stmt.Source, stmt.Target)}
	lines = append(lines, fmt.Sprintf("MATCH (m:%s)", stmt.Source))

	withParts := lo.Map(stmt.GroupBy, func(key string, _ int) string {
		return fmt.Sprintf("  m.%s AS %s", key, key)
	})
	if stmt.Window != nil {
		withParts = append(withParts, fmt.Sprintf("  %s AS %s",
			timeWindowExpr(stmt.Window.Mode, "m."+stmt.Window.Source), stmt.Window.Alias))
	}
	for _, clause := range stmt.Clauses {
		agg, err := aggregationExpr(clause)
		if err != nil {
			return "", err
		}
		withParts = append(withParts, fmt.Sprintf("  %s AS %s", agg, clause.Alias))
	}
	lines = append(lines, "WITH")
	lines = append(lines, strings.Join(withParts, ",\n"))

	createFields := lo.Map(stmt.GroupBy, func(key string, _ int) string {
		return fmt.Sprintf("  %s: %s", key, key)
	})
	for _, clause := range stmt.Clauses {
		createFields = append(createFields, fmt.Sprintf("  %s: %s", clause.Alias, clause.Alias))
	}
	if stmt.Window != nil {
		createFields = append(createFields, fmt.Sprintf("  %s: %s", stmt.Window.Alias, stmt.Window.Alias))
	}
	lines = append(lines, fmt.Sprintf("CREATE (a:%s {", stmt.Target))
	lines = append(lines, strings.Join(createFields, ",\n"))
	lines = append(lines, "})")

	if lo.Contains(stmt.GroupBy, "factory_id") {
		lines = append(lines, "WITH a")
		lines = append(lines, "MATCH (f:factory { id: a.factory_id })")
		lines = append(lines, "MERGE (a)-[:AT_FACTORY]->(f);")
	} else {
		lines = append(lines, ";")
	}

	return strings.Join(lines, "\n"), nil
}

func aggregationExpr(clause ast.AggregationClause) (string, error) {
	switch clause.Func {
	case ast.AggSum:
		return fmt.Sprintf("SUM(m.%s)", clause.Field), nil
	case ast.AggCount:
		if clause.Field == "" {
			return "COUNT(*)", nil
		}
		return fmt.Sprintf("COUNT(m.%s)", clause.Field), nil
	case ast.AggFirst:
		return fmt.Sprintf("COLLECT(m.%s)[0]", clause.Field), nil
	default:
		return "", fmt.Errorf("%w: unknown aggregation function %q", ErrInvalidAST, clause.Func)
	}
}

// timeWindowExpr maps a window mode to the Cypher truncation of the given
// datetime field. Unknown modes fall back to monthly.
func timeWindowExpr(mode, field string) string {
	switch strings.ToLower(mode) {
	case "daily", "day":
		return fmt.Sprintf("date.truncate('day', datetime(%s))", field)
	case "weekly", "week":
		return fmt.Sprintf("date.truncate('week', datetime(%s))", field)
	case "yearly", "year":
		return fmt.Sprintf("date.truncate('year', datetime(%s))", field)
	case "hourly", "hour":
		return fmt.Sprintf("datetime.truncate('hour', datetime(%s))", field)
	default:
		return fmt.Sprintf("date.truncate('month', datetime(%s))", field)
	}
}

// unitConvert generates the in-place field rewrite for a UNIT_CONVERT
// statement. Loading the conversion table is left to the query engine; the
// generated text documents the factor lookup as a placeholder.
func (g *generator) unitConvert(stmt *ast.UnitConvertStatement) (string, error) {
	lines := []string{
		fmt.Sprintf("// UNIT_CONVERT: %s.%s FROM %s TO %s", stmt.Alias, stmt.Field, stmt.FromUnit, stmt.ToUnit),
		fmt.Sprintf("// Conversion factors come from %s", stmt.Table),
		fmt.Sprintf("MATCH (n:%s)", stmt.Alias),
		fmt.Sprintf("WHERE n.unit = %s", quote(stmt.FromUnit)),
		"// Placeholder: multiply by the factor loaded from the conversion table",
		fmt.Sprintf("// SET n.%s = n.%s * conversion_factor", stmt.Field, stmt.Field),
		fmt.Sprintf("SET n.unit = %s;", quote(stmt.ToUnit)),
	}
	return strings.Join(lines, "\n"), nil
}

// enrich generates the cross-reference between source nodes and factor-table
// rows matched on the declared key, creating one target node per pair and an
// edge back to its source node.
func (g *generator) enrich(stmt *ast.EnrichStatement) (string, error) {
	if len(stmt.Outputs) == 0 {
		return "", fmt.Errorf("%w: ENRICH %s has an empty output block", ErrInvalidAST, stmt.Target)
	}

	scope := exprScope{
		sourceAlias: stmt.Source,
		sourceVar:   "a",
		factorAlias: stmt.FactorTable,
		factorVar:   "ef",
	}

	lines := []string{fmt.Sprintf("// ENRICH: %s WITH %s", stmt.Source, stmt.FactorTable)}
	lines = append(lines, fmt.Sprintf("MATCH (a:%s), (ef:%s)", stmt.Source, stmt.FactorTable))
	lines = append(lines, fmt.Sprintf("WHERE a.%s = ef.%s", stmt.MatchKey, stmt.MatchKey))

	fields := make([]string, 0, len(stmt.Outputs))
	for _, out := range stmt.Outputs {
		rendered, err := g.expression(out.Expr, scope)
		if err != nil {
			return "", err
		}
		fields = append(fields, fmt.Sprintf("  %s: %s", out.Name, rendered))
	}
	lines = append(lines, fmt.Sprintf("CREATE (e:%s {", stmt.Target))
	lines = append(lines, strings.Join(fields, ",\n"))
	lines = append(lines, "})")
	lines = append(lines, "MERGE (e)-[:FROM_SOURCE]->(a);")

	return strings.Join(lines, "\n"), nil
}

// compute generates a grouped aggregation over the source label and a MERGE
// of one result node per group carrying the computed value.
func (g *generator) compute(stmt *ast.ComputeStatement) (string, error) {
	if len(stmt.GroupBy) == 0 {
		return "", fmt.Errorf("%w: COMPUTE %s has an empty grouping key list", ErrInvalidAST, stmt.Result)
	}

	scope := exprScope{sourceAlias: stmt.Source, sourceVar: "e", contextVar: "e"}
	value, err := g.expression(stmt.Expr, scope)
	if err != nil {
		return "", err
	}

	lines := []string{fmt.Sprintf("// COMPUTE: %s FOR %s", stmt.Result, stmt.Source)}
	lines = append(lines, fmt.Sprintf("MATCH (e:%s)", stmt.Source))

	keys := lo.Map(stmt.GroupBy, func(key string, _ int) string {
		return fmt.Sprintf("e.%s AS %s", key, key)
	})
	lines = append(lines, fmt.Sprintf("WITH %s, %s AS %s", strings.Join(keys, ", "), value, stmt.Result))

	mergeKeys := lo.Map(stmt.GroupBy, func(key string, _ int) string {
		return fmt.Sprintf("%s: %s", key, key)
	})
	lines = append(lines, fmt.Sprintf("MERGE (g:%s { %s })", stmt.Target, strings.Join(mergeKeys, ", ")))
	lines = append(lines, fmt.Sprintf("SET g.%s = %s;", stmt.Result, stmt.Result))

	return strings.Join(lines, "\n"), nil
}

// validate generates the structural placeholder for a VALIDATE statement:
// match the target label and return it, annotated with the rule name. Rule
// enforcement is a hook point, not generated logic.
func (g *generator) validate(stmt *ast.ValidateStatement) (string, error) {
	lines := []string{
		fmt.Sprintf("// VALIDATE: %s WITH %s", stmt.Alias, stmt.Rule),
		fmt.Sprintf("// Validation rule: %s", stmt.Rule),
		fmt.Sprintf("MATCH (n:%s)", stmt.Alias),
		fmt.Sprintf("// Rule enforcement for %q is not generated", stmt.Rule),
		"RETURN n;",
	}
	return strings.Join(lines, "\n"), nil
}
