package ra

import (
	"fmt"
	"strings"
)

// Planner is the cost-based half of the expression pipeline: Rewriter
// decides what shape a rewritten Expression takes, Planner decides how
// expensive that shape is to execute, using table/index statistics the
// way a conventional cost-based optimizer would. It operates directly on
// Expression tokens — there is no SQL-shaped intermediate struct between
// the rewriter's output and the plan.
type Planner struct {
	statistics *Statistics
	config     PlannerConfig
}

// PlannerConfig toggles which cost-based behaviors Planner applies.
type PlannerConfig struct {
	EnableIndexHints        bool
	EnableJoinReordering    bool
	EnablePredicatePushdown bool
	CostThreshold           float64
}

// Statistics holds table and index statistics used for cost estimation.
type Statistics struct {
	TableStats map[string]*TableStats
	IndexStats map[string]*IndexStats
}

// TableStats holds statistics for a table.
type TableStats struct {
	RowCount    int64
	ColumnStats map[string]*ColumnStats
}

// ColumnStats holds statistics for a column.
type ColumnStats struct {
	Cardinality int64
	MinValue    interface{}
	MaxValue    interface{}
	NullCount   int64
}

// IndexStats holds statistics for an index.
type IndexStats struct {
	Name        string
	Table       string
	Columns     []string
	Cardinality int64
	Height      int
	LeafPages   int64
}

// Plan is the cost-estimated execution plan for a rewritten Expression.
type Plan struct {
	Expression    Expression
	Operations    []Operation
	Optimizations []string
	EstimatedCost float64
}

// Operation is one step of a Plan.
type Operation struct {
	Type          OperationType
	Table         string
	Index         string
	Predicates    []string
	EstimatedRows int64
	Cost          float64
}

// OperationType identifies the kind of plan step.
type OperationType int

const (
	OpTableScan OperationType = iota
	OpIndexScan
	OpProject
	OpHashJoin
	OpNestedLoopJoin
	OpSetOp
)

func (t OperationType) String() string {
	switch t {
	case OpTableScan:
		return "Table Scan"
	case OpIndexScan:
		return "Index Scan"
	case OpProject:
		return "Project"
	case OpHashJoin:
		return "Hash Join"
	case OpNestedLoopJoin:
		return "Nested Loop Join"
	case OpSetOp:
		return "Set Operation"
	default:
		return "Unknown"
	}
}

// NewPlanner builds a Planner with empty statistics; populate them via
// UpdateStatistics/AddIndexStatistics before planning.
func NewPlanner(config PlannerConfig) *Planner {
	return &Planner{
		statistics: &Statistics{
			TableStats: make(map[string]*TableStats),
			IndexStats: make(map[string]*IndexStats),
		},
		config: config,
	}
}

// UpdateStatistics replaces the row/column statistics for table.
func (p *Planner) UpdateStatistics(table string, stats *TableStats) {
	p.statistics.TableStats[table] = stats
}

// AddIndexStatistics registers an index available for cost estimation.
func (p *Planner) AddIndexStatistics(indexName string, stats *IndexStats) {
	p.statistics.IndexStats[indexName] = stats
}

// Plan walks expr left to right and builds a cost-estimated execution
// plan. A Selection's condition and a Projection's attribute list each
// attach to the nearest Operand that follows them; a ThetaJoin or
// NaturalJoin over two directly-following bare Operand tokens contributes
// one join step whose strategy is chosen from the two sides' estimated
// row counts when EnableJoinReordering is set. As in Rewriter, only this
// flattened bare-operand shape is recognized — a nested operand subtree
// is planned independently on its own terms by the same pass.
func (p *Planner) Plan(expr Expression) (*Plan, error) {
	plan := &Plan{Expression: expr}

	var pendingPredicates []string
	var pendingFields []string

	emitScan := func(table string) Operation {
		scan := p.scanOperation(table, pendingPredicates)
		if p.config.EnablePredicatePushdown && len(pendingPredicates) > 0 {
			plan.Optimizations = append(plan.Optimizations, "predicate_pushdown:"+table)
		}
		pendingPredicates = nil
		plan.Operations = append(plan.Operations, scan)
		if len(pendingFields) > 0 {
			plan.Operations = append(plan.Operations, Operation{
				Type:          OpProject,
				Table:         table,
				EstimatedRows: scan.EstimatedRows,
				Cost:          0.1,
			})
			plan.Optimizations = append(plan.Optimizations, "projection:"+table)
			pendingFields = nil
		}
		return scan
	}

	for i := 0; i < len(expr); {
		tok := expr[i]

		if tok.Kind != TokOperator {
			if tok.Kind == TokOperand {
				emitScan(tok.Operand)
			}
			i++
			continue
		}

		switch tok.Op {
		case Projection:
			if i+1 < len(expr) && expr[i+1].Kind == TokAttributeList {
				pendingFields = append(pendingFields, Tokenize(expr[i+1].Attrs, ";")...)
				i += 2
				continue
			}
			i++

		case Selection:
			if i+1 < len(expr) && expr[i+1].Kind == TokCondition {
				pendingPredicates = append(pendingPredicates, expr[i+1].Condition)
				i += 2
				continue
			}
			i++

		case ThetaJoin:
			if i+3 < len(expr) && expr[i+1].Kind == TokCondition && expr[i+2].Kind == TokOperand && expr[i+3].Kind == TokOperand {
				cond := expr[i+1].Condition
				left := emitScan(expr[i+2].Operand)
				right := emitScan(expr[i+3].Operand)
				plan.Operations = append(plan.Operations, p.joinOperation(cond, left, right))
				plan.Optimizations = append(plan.Optimizations, "join:"+string(ThetaJoin))
				i += 4
				continue
			}
			i++

		case NaturalJoin:
			if i+2 < len(expr) && expr[i+1].Kind == TokOperand && expr[i+2].Kind == TokOperand {
				left := emitScan(expr[i+1].Operand)
				right := emitScan(expr[i+2].Operand)
				plan.Operations = append(plan.Operations, p.joinOperation("", left, right))
				plan.Optimizations = append(plan.Optimizations, "join:"+string(NaturalJoin))
				i += 3
				continue
			}
			i++

		case Union, Intersect, Except:
			if i+2 < len(expr) && expr[i+1].Kind == TokOperand && expr[i+2].Kind == TokOperand {
				left := emitScan(expr[i+1].Operand)
				right := emitScan(expr[i+2].Operand)
				plan.Operations = append(plan.Operations, Operation{
					Type:          OpSetOp,
					EstimatedRows: left.EstimatedRows + right.EstimatedRows,
					Cost:          1.0,
				})
				plan.Optimizations = append(plan.Optimizations, "setop:"+string(tok.Op))
				i += 3
				continue
			}
			i++

		default:
			i++
		}
	}

	plan.EstimatedCost = p.totalCost(plan.Operations)
	return plan, nil
}

func (p *Planner) scanOperation(table string, predicates []string) Operation {
	if p.config.EnableIndexHints {
		if idx := p.selectBestIndex(table, predicates); idx != "" {
			return Operation{
				Type:          OpIndexScan,
				Table:         table,
				Index:         idx,
				Predicates:    predicates,
				EstimatedRows: p.estimateRows(table, predicates),
				Cost:          p.calculateIndexScanCost(idx, table, predicates),
			}
		}
	}
	return Operation{
		Type:          OpTableScan,
		Table:         table,
		Predicates:    predicates,
		EstimatedRows: p.estimateRows(table, predicates),
		Cost:          p.calculateTableScanCost(table),
	}
}

func (p *Planner) joinOperation(cond string, left, right Operation) Operation {
	opType := OpHashJoin
	if p.config.EnableJoinReordering && (left.EstimatedRows < 100 || right.EstimatedRows < 100) {
		opType = OpNestedLoopJoin
	}

	rows := left.EstimatedRows
	if right.EstimatedRows < rows {
		rows = right.EstimatedRows
	}

	cost := float64(left.EstimatedRows+right.EstimatedRows) * 0.01
	if opType == OpNestedLoopJoin {
		cost = float64(left.EstimatedRows) * float64(right.EstimatedRows) * 0.0001
	}

	var predicates []string
	if cond != "" {
		predicates = []string{cond}
	}

	return Operation{Type: opType, Predicates: predicates, EstimatedRows: rows, Cost: cost}
}

func (p *Planner) selectBestIndex(table string, predicates []string) string {
	if len(predicates) == 0 {
		return ""
	}

	var fields []string
	for _, pred := range predicates {
		fields = append(fields, ConditionAttrs(pred, "`")...)
	}

	best, bestScore := "", 0.0
	for name, stats := range p.statistics.IndexStats {
		if stats.Table != table {
			continue
		}
		if score := p.calculateIndexScore(stats, fields); score > bestScore {
			bestScore, best = score, name
		}
	}
	return best
}

func (p *Planner) calculateIndexScore(stats *IndexStats, fields []string) float64 {
	score := 0.0
	for _, field := range fields {
		for _, column := range stats.Columns {
			if strings.EqualFold(field, column) {
				score += 10.0
			}
		}
	}
	if stats.Cardinality > 0 {
		score *= float64(stats.Cardinality) / 1000.0
	}
	return score
}

func (p *Planner) estimateRows(table string, predicates []string) int64 {
	stats, ok := p.statistics.TableStats[table]
	if !ok {
		return 1000
	}

	rows := stats.RowCount
	for _, pred := range predicates {
		rows = int64(float64(rows) * p.selectivity(stats, pred))
	}
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (p *Planner) selectivity(stats *TableStats, pred string) float64 {
	attrs := ConditionAttrs(pred, "`")
	if len(attrs) == 0 {
		return 0.1
	}

	col, ok := stats.ColumnStats[attrs[0]]
	if !ok {
		return 0.1
	}

	switch conditionOperator(pred) {
	case "=":
		if col.Cardinality > 0 {
			return 1.0 / float64(col.Cardinality)
		}
		return 0.1
	case "<", ">", "<=", ">=":
		return 0.33
	default:
		return 0.1
	}
}

// conditionOperator extracts the comparison operator from a raw
// backtick-delimited condition string such as "`a`>10" or "`a`=`c`".
func conditionOperator(cond string) string {
	for _, op := range []string{">=", "<=", "<>", "=", "<", ">"} {
		if strings.Contains(cond, op) {
			return op
		}
	}
	return ""
}

func (p *Planner) calculateTableScanCost(table string) float64 {
	stats, ok := p.statistics.TableStats[table]
	if !ok {
		return 100.0
	}
	return float64(stats.RowCount) * 0.01
}

func (p *Planner) calculateIndexScanCost(indexName, table string, predicates []string) float64 {
	stats, ok := p.statistics.IndexStats[indexName]
	if !ok {
		return 10.0
	}

	baseCost := float64(stats.Height) * 2.0

	selectivity := 1.0
	if tableStats, ok := p.statistics.TableStats[table]; ok {
		for _, pred := range predicates {
			selectivity *= p.selectivity(tableStats, pred)
		}
	}

	return baseCost + float64(stats.LeafPages)*selectivity*0.1
}

func (p *Planner) totalCost(ops []Operation) float64 {
	total := 0.0
	for _, op := range ops {
		total += op.Cost
	}
	return total
}

// String renders the plan for logs/diagnostics.
func (plan *Plan) String() string {
	var b strings.Builder
	b.WriteString("Execution Plan:\n")
	for i, op := range plan.Operations {
		fmt.Fprintf(&b, "%d. %s", i+1, op.Type)
		if op.Table != "" {
			fmt.Fprintf(&b, " on %s", op.Table)
		}
		if op.Index != "" {
			fmt.Fprintf(&b, " using index %s", op.Index)
		}
		fmt.Fprintf(&b, " (cost: %.2f, rows: %d)\n", op.Cost, op.EstimatedRows)
	}
	return b.String()
}
