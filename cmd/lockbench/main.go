// Command lockbench drives a TransactionSystem with synthetic batches
// and prints the resulting activity stats; it also runs a sample
// relational-algebra rewrite to exercise the ra package from the same
// binary.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"mantisDB/config"
	"mantisDB/ra"
	"mantisDB/transaction"
)

var (
	configPath  = flag.String("config", "", "path to a YAML config file (optional)")
	numBatches  = flag.Int("batches", 20, "number of synthetic command batches to submit")
	tableName   = flag.String("table", "accounts", "table name every synthetic batch touches")
	showVersion = flag.Bool("version", false, "print version information and exit")
)

// Version is set during build time.
var Version = "dev"

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("lockbench %s\n", Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("lockbench: failed to load config: %v", err)
	}

	resolver := transaction.NewMapBlockResolver(map[string][]transaction.BlockAddress{
		*tableName: {100, 101, 102},
	})
	executor := transaction.FuncExecutor(func(batch []transaction.Command) error {
		time.Sleep(time.Millisecond)
		return nil
	})

	sys, err := transaction.NewTransactionSystem(&cfg.Lock, resolver, executor)
	if err != nil {
		log.Fatalf("lockbench: failed to build transaction system: %v", err)
	}
	defer sys.Stop()

	submissions := make([]*transaction.Submission, 0, *numBatches)
	for i := 0; i < *numBatches; i++ {
		kind := transaction.CmdSelect
		if i%3 == 0 {
			kind = transaction.CmdUpdate
		}
		submission, err := sys.Submit([]transaction.Command{{Table: *tableName, Kind: kind}})
		if err != nil {
			log.Printf("lockbench: submit %d failed: %v", i, err)
			continue
		}
		submissions = append(submissions, submission)
	}

	for _, s := range submissions {
		if _, err := s.Wait(); err != nil {
			log.Printf("lockbench: transaction %d aborted: %v", s.TxnID, err)
		}
	}

	sys.Manager.AwaitQuiescence()
	stats := sys.GetSystemStats()
	fmt.Printf("active=%d lock_table_empty=%v audit_records=%d\n", stats.ActiveTransactions, stats.LockTableEmpty, stats.AuditRecordCount)

	runRewriteDemo()
}

func runRewriteDemo() {
	catalog := ra.MapSchemaCatalog{
		"R": {"a", "b"},
		"S": {"c", "d"},
	}
	rewriter := ra.NewRewriter(config.DefaultRewriterConfig(), catalog, nil)

	expr := ra.Expression{}
	expr = append(expr, ra.Proj("a;c")...)
	expr = append(expr, ra.ThetaJoinOn("`a`=`c`")...)
	expr = append(expr, ra.OperandTok("R"), ra.OperandTok("S"))

	rewritten := rewriter.Rewrite(expr)
	fmt.Fprintf(os.Stdout, "rewrite: %s -> %s\n", expr, rewritten)

	planner := ra.NewPlanner(ra.PlannerConfig{EnablePredicatePushdown: true, EnableJoinReordering: true})
	planner.UpdateStatistics("R", &ra.TableStats{RowCount: 200})
	planner.UpdateStatistics("S", &ra.TableStats{RowCount: 2000000})

	plan, err := planner.Plan(rewritten)
	if err != nil {
		log.Fatalf("lockbench: planning rewritten expression failed: %v", err)
	}
	fmt.Fprint(os.Stdout, plan)
}
