// Package pipeline orchestrates a full modeling run: normalize, select,
// encode, split, tune both model families, pick a winner by held-out
// ROC-AUC, and transfer the winner to out-of-sample years and the immigrant
// subpopulation.
package pipeline

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/sbrown5x/Final-Project/pkg/asec"
	"github.com/sbrown5x/Final-Project/pkg/dataset"
	"github.com/sbrown5x/Final-Project/pkg/logging"
	"github.com/sbrown5x/Final-Project/pkg/model"
	"github.com/sbrown5x/Final-Project/pkg/recipe"
)

// Result is the outcome of one run.
type Result struct {
	RunID  string `json:"run_id"`
	Winner string `json:"winner"`

	Artifacts   map[string]*model.Artifact   `json:"-"`
	TuneResults map[string]*model.TuneResult `json:"tune_results"`
	Evaluations map[string]*model.Report     `json:"evaluations"`

	TrainRows         int      `json:"train_rows"`
	TestRows          int      `json:"test_rows"`
	DroppedIncomplete int      `json:"dropped_incomplete"`
	Warnings          []string `json:"warnings"`
}

// Run executes the configured pipeline over raw records. It is a sequential
// batch computation; the only internal parallelism is the tuner's
// per-(fold, grid-point) fan-out.
func Run(cfg *Config, raws []asec.RawRecord, logger *logging.Logger) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:       uuid.New().String(),
		Artifacts:   make(map[string]*model.Artifact),
		TuneResults: make(map[string]*model.TuneResult),
		Evaluations: make(map[string]*model.Report),
	}

	records := asec.Select(asec.NormalizeAll(raws))
	trainYear := asec.Labeled(asec.Year(records, cfg.TrainYear))
	if len(trainYear) == 0 {
		return nil, &ConfigError{Param: "train_year", Detail: fmt.Sprintf("no labeled records for year %d", cfg.TrainYear)}
	}
	logger.Info("analysis population selected", map[string]any{
		"raw": len(raws), "selected": len(records), "train_year_labeled": len(trainYear),
	})

	plain, err := dataset.Encode(trainYear, cfg.Encoder, dataset.Plain)
	if err != nil {
		return nil, err
	}
	weighted, err := dataset.Encode(trainYear, cfg.Encoder, dataset.VarianceWeighted)
	if err != nil {
		return nil, err
	}

	// Both encodings share a missingness pattern, so one complete-case mask
	// keeps the two families on identical record sets and partitions.
	keep := plain.CompleteCaseIndices()
	result.DroppedIncomplete = plain.NumRows() - len(keep)
	plain = plain.Take(keep)
	weighted = weighted.Take(keep)
	if result.DroppedIncomplete > 0 {
		warn(result, logger, fmt.Sprintf("dropped %d records with missing feature values", result.DroppedIncomplete))
	}
	if plain.NumRows() == 0 {
		return nil, fmt.Errorf("no complete records in training year %d", cfg.TrainYear)
	}

	trainIdx, testIdx, err := dataset.Split(plain.NumRows(), cfg.TrainFraction, cfg.SplitSeed)
	if err != nil {
		return nil, err
	}
	result.TrainRows, result.TestRows = len(trainIdx), len(testIdx)

	foldBase := make([]int, len(trainIdx))
	for i := range foldBase {
		foldBase[i] = i
	}
	folds, err := dataset.Folds(foldBase, cfg.FoldCount, cfg.FoldSeed)
	if err != nil {
		return nil, err
	}

	tuner := &model.Tuner{Workers: cfg.Workers, Logger: logger.WithComponent("tuner")}

	type path struct {
		family model.Family
		rec    recipe.Recipe
		data   *dataset.Matrix
	}
	paths := []path{
		{
			family: logisticFamily(cfg),
			rec: recipe.New(
				recipe.Center{},
				recipe.Scale{},
				recipe.NearZeroVar{},
				recipe.PCA{K: cfg.ComponentCount},
				recipe.Downsample{Seed: cfg.DownsampleSeed},
			),
			data: weighted,
		},
		{
			family: forestFamily(cfg),
			rec: recipe.New(
				recipe.CollapseRare{},
				recipe.Downsample{Seed: cfg.DownsampleSeed},
			),
			data: plain,
		},
	}

	for _, p := range paths {
		artifact, tuneResult, err := tuner.Tune(p.data.Take(trainIdx), folds, p.rec, p.family)
		if tuneResult != nil {
			result.TuneResults[p.family.Name] = tuneResult
			result.Warnings = append(result.Warnings, tuneResult.Warnings...)
		}
		if err != nil {
			return nil, fmt.Errorf("train %s: %w", p.family.Name, err)
		}
		result.Artifacts[p.family.Name] = artifact

		report, err := model.Evaluate(artifact, p.data.Take(testIdx))
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", p.family.Name, err)
		}
		result.Evaluations["test/"+p.family.Name] = report
	}

	result.Winner = pickWinner(result)
	logger.Info("winner selected", map[string]any{
		"family": result.Winner,
		"auc":    result.Evaluations["test/"+result.Winner].AUC,
	})

	// Transfer the winning model out of sample. Each external dataset is
	// encoded with the winner's mode and aligned to its training schema.
	winner := result.Artifacts[result.Winner]
	mode := dataset.Plain
	if result.Winner == model.FamilyLogistic {
		mode = dataset.VarianceWeighted
	}

	for _, year := range cfg.EvaluateYears {
		yearRecords := asec.Labeled(asec.Year(records, year))
		if len(yearRecords) == 0 {
			warn(result, logger, fmt.Sprintf("no labeled records for evaluation year %d", year))
			continue
		}
		report, err := evaluateExternal(winner, yearRecords, cfg.Encoder, mode)
		if err != nil {
			warn(result, logger, fmt.Sprintf("year %d evaluation failed: %v", year, err))
			continue
		}
		result.Evaluations[fmt.Sprintf("year/%d", year)] = report
	}

	if cfg.EvaluateImmigrants {
		// Immigrants drawn from the held-out test partition only, so the
		// subgroup numbers stay out of sample.
		testRecords := make([]asec.Record, len(testIdx))
		for i, idx := range testIdx {
			testRecords[i] = trainYear[keep[idx]]
		}
		subgroup := asec.Immigrants(testRecords)
		if len(subgroup) == 0 {
			warn(result, logger, "no immigrant records in the held-out test partition")
		} else {
			report, err := evaluateExternal(winner, subgroup, cfg.Encoder, mode)
			if err != nil {
				warn(result, logger, fmt.Sprintf("immigrant subgroup evaluation failed: %v", err))
			} else {
				result.Evaluations["subgroup/immigrant"] = report
			}
		}
	}

	return result, nil
}

func evaluateExternal(artifact *model.Artifact, records []asec.Record, spec dataset.Spec, mode dataset.Mode) (*model.Report, error) {
	m, err := dataset.Encode(records, spec, mode)
	if err != nil {
		return nil, err
	}
	m, _ = m.CompleteCases()
	if m.NumRows() == 0 {
		return nil, fmt.Errorf("no complete records to evaluate")
	}
	return model.Evaluate(artifact, m)
}

// pickWinner compares the families on held-out test ROC-AUC. An undefined
// AUC loses to a defined one; an exact tie goes to the forest.
func pickWinner(result *Result) string {
	logistic := result.Evaluations["test/"+model.FamilyLogistic]
	forest := result.Evaluations["test/"+model.FamilyForest]
	switch {
	case math.IsNaN(forest.AUC) && !math.IsNaN(logistic.AUC):
		return model.FamilyLogistic
	case forest.AUC >= logistic.AUC:
		return model.FamilyForest
	default:
		return model.FamilyLogistic
	}
}

func logisticFamily(cfg *Config) model.Family {
	grid := make([]model.GridPoint, len(cfg.Logistic.Lambda))
	for i, lambda := range cfg.Logistic.Lambda {
		grid[i] = model.GridPoint{"lambda": lambda}
	}
	return model.Family{
		Name: model.FamilyLogistic,
		Grid: grid,
		New:  func(p model.GridPoint) model.Classifier { return model.NewLogistic(p["lambda"]) },
	}
}

func forestFamily(cfg *Config) model.Family {
	grid := make([]model.GridPoint, len(cfg.Forest.MinLeaf))
	for i, minLeaf := range cfg.Forest.MinLeaf {
		grid[i] = model.GridPoint{"min_leaf": float64(minLeaf)}
	}
	return model.Family{
		Name: model.FamilyForest,
		Grid: grid,
		New: func(p model.GridPoint) model.Classifier {
			return model.NewForest(cfg.Forest.Trees, cfg.Forest.MTry, int(p["min_leaf"]), cfg.Forest.TreeSeed)
		},
	}
}

func warn(result *Result, logger *logging.Logger, msg string) {
	result.Warnings = append(result.Warnings, msg)
	logger.Warn(msg, nil)
}
