package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"sort"

	"github.com/sbrown5x/Final-Project/pkg/ingest"
	"github.com/sbrown5x/Final-Project/pkg/logging"
	"github.com/sbrown5x/Final-Project/pkg/model"
	"github.com/sbrown5x/Final-Project/pkg/pipeline"
	"github.com/sbrown5x/Final-Project/pkg/store"
)

func main() {
	configPath := flag.String("config", "configs/example.yaml", "path to run configuration")
	dataPath := flag.String("data", "", "path to the CSV survey extract")
	dbPath := flag.String("db", "", "optional SQLite path for persisting artifacts and reports")
	flag.Parse()

	if *dataPath == "" {
		log.Fatal("the -data flag is required")
	}

	cfg, err := pipeline.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(logging.ParseLevel(cfg.LogLevel), os.Stderr)

	raws, err := ingest.ReadCSVFile(*dataPath)
	if err != nil {
		log.Fatalf("Failed to read extract: %v", err)
	}
	logger.Info("extract loaded", map[string]any{"path": *dataPath, "records": len(raws)})

	result, err := pipeline.Run(cfg, raws, logger)
	if err != nil {
		log.Fatalf("Run failed: %v", err)
	}

	if *dbPath != "" {
		if err := persist(*dbPath, result); err != nil {
			log.Fatalf("Failed to persist run: %v", err)
		}
		logger.Info("run persisted", map[string]any{"db": *dbPath, "run_id": result.RunID})
	}

	printSummary(result)
}

func persist(dbPath string, result *pipeline.Result) error {
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	for _, artifact := range result.Artifacts {
		if err := s.SaveArtifact(result.RunID, artifact); err != nil {
			return err
		}
	}
	winnerID := result.Artifacts[result.Winner].ID
	for name, report := range result.Evaluations {
		if err := s.SaveEvaluation(result.RunID, name, winnerID, report); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(result *pipeline.Result) {
	fmt.Printf("run %s\n", result.RunID)
	fmt.Printf("rows: %d train, %d test, %d dropped incomplete\n",
		result.TrainRows, result.TestRows, result.DroppedIncomplete)

	for family, tr := range result.TuneResults {
		best := tr.Points[tr.Best]
		fmt.Printf("%s: best %v (mean cv auc %.4f, sd %.4f, %d/%d folds scored)\n",
			family, best.Point, best.MeanAUC, best.StdAUC, best.Scored, len(best.FoldAUCs))
	}

	fmt.Printf("winner: %s\n", result.Winner)
	for _, name := range evaluationOrder(result) {
		r := result.Evaluations[name]
		fmt.Printf("  %-24s n=%-6d acc=%.4f sens=%.4f spec=%.4f auc=%s\n",
			name, r.Count, r.Accuracy, r.Sensitivity, r.Specificity, formatAUC(r.AUC))
	}

	if forest, ok := result.Artifacts[result.Winner].Model().(*model.Forest); ok {
		fmt.Println("top features by split importance:")
		for _, f := range topFeatures(forest.FeatureImportance(), 5) {
			fmt.Printf("  %-32s %.4f\n", f.name, f.importance)
		}
	}

	for _, w := range result.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
}

type rankedFeature struct {
	name       string
	importance float64
}

func topFeatures(importance map[string]float64, n int) []rankedFeature {
	ranked := make([]rankedFeature, 0, len(importance))
	for name, v := range importance {
		ranked = append(ranked, rankedFeature{name, v})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].importance != ranked[j].importance {
			return ranked[i].importance > ranked[j].importance
		}
		return ranked[i].name < ranked[j].name
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func evaluationOrder(result *pipeline.Result) []string {
	order := []string{"test/" + model.FamilyLogistic, "test/" + model.FamilyForest}
	var rest []string
	for name := range result.Evaluations {
		if name != order[0] && name != order[1] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

func formatAUC(auc float64) string {
	if math.IsNaN(auc) {
		return "undefined"
	}
	return fmt.Sprintf("%.4f", auc)
}
