// Package ml scores URLs with a gradient-boosted tree model over lexical
// URL features and explains each prediction with per-feature attribution.
// The model is optional: without one the predictor answers a neutral 0.5
// so the rest of the pipeline still functions.
package ml

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/rs/zerolog"

	"github.com/Alcary/QR-Code-Analyzer/internal/features"
)

const (
	modelFile    = "xgb_model.json"
	manifestFile = "feature_names.json"

	topContributions = 8

	// NeutralScore is returned when no model is loaded.
	NeutralScore = 0.5
)

// Contribution is one feature's share of the prediction shift.
type Contribution struct {
	Feature      string  `json:"feature"`
	Value        float64 `json:"value"`
	Contribution float64 `json:"contribution"`
	Direction    string  `json:"direction"`
}

// Attribution explains a single prediction. BaseValue plus the sum of all
// per-feature contributions reproduces the raw margin before the sigmoid.
type Attribution struct {
	BaseValue  float64        `json:"base_value"`
	TotalShift float64        `json:"total_shift"`
	Top        []Contribution `json:"top_features"`
}

// Prediction is the predictor's output for one URL.
type Prediction struct {
	Score       float64      `json:"score"`
	ModelLoaded bool         `json:"model_loaded"`
	Attribution *Attribution `json:"attribution,omitempty"`
}

// Predictor holds the loaded model and a bounded worker pool for the
// CPU-side work so a burst of scans cannot monopolise the scheduler.
type Predictor struct {
	trees     []treeNode
	baseScore float64
	loaded    bool
	sem       chan struct{}
	log       zerolog.Logger
}

// Unloaded returns a predictor with no model; every prediction is the
// neutral score and carries no attribution.
func Unloaded(log zerolog.Logger) *Predictor {
	return &Predictor{
		sem: make(chan struct{}, runtime.GOMAXPROCS(0)),
		log: log.With().Str("component", "ml").Logger(),
	}
}

// New loads the model dump and feature manifest from dir. A missing model
// directory or model file is not an error; a manifest that disagrees with
// the extractor is, since predictions would be garbage.
func New(dir string, log zerolog.Logger) (*Predictor, error) {
	p := Unloaded(log)

	data, err := os.ReadFile(filepath.Join(dir, modelFile))
	if err != nil {
		if os.IsNotExist(err) {
			p.log.Warn().Str("dir", dir).Msg("no model found, predictions will be neutral")
			return p, nil
		}
		return nil, fmt.Errorf("read model: %w", err)
	}

	dump, err := parseModel(data)
	if err != nil {
		return nil, err
	}

	if err := verifyManifest(filepath.Join(dir, manifestFile)); err != nil {
		return nil, err
	}

	p.trees = dump.Trees
	for i := range p.trees {
		p.trees[i].prepare()
	}
	p.baseScore = dump.BaseScore
	p.loaded = true
	p.log.Info().Int("trees", len(p.trees)).Msg("model loaded")
	return p, nil
}

// verifyManifest requires the on-disk feature list to match the extractor
// name for name, in order. Any divergence means the model was trained
// against a different feature set.
func verifyManifest(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read feature manifest: %w", err)
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("parse feature manifest: %w", err)
	}
	if len(names) != len(features.FeatureNames) {
		return fmt.Errorf("feature manifest: have %d features, extractor produces %d",
			len(names), len(features.FeatureNames))
	}
	for i, name := range names {
		if name != features.FeatureNames[i] {
			return fmt.Errorf("feature manifest: position %d is %q, extractor has %q",
				i, name, features.FeatureNames[i])
		}
	}
	return nil
}

func (p *Predictor) Loaded() bool { return p.loaded }

func (p *Predictor) FeatureCount() int { return len(features.FeatureNames) }

// Components lists the loaded model parts for the health endpoint.
func (p *Predictor) Components() []string {
	if !p.loaded {
		return []string{}
	}
	return []string{"xgboost_model", "feature_manifest"}
}

// Predict extracts features and scores the URL on the worker pool.
func (p *Predictor) Predict(ctx context.Context, rawURL string) (Prediction, error) {
	if !p.loaded {
		return Prediction{Score: NeutralScore}, nil
	}

	select {
	case p.sem <- struct{}{}:
		defer func() { <-p.sem }()
	case <-ctx.Done():
		return Prediction{Score: NeutralScore}, ctx.Err()
	}

	feats := features.Extract(rawURL)

	margin := p.baseScore
	for i := range p.trees {
		margin += traverse(&p.trees[i], feats)
	}
	pred := Prediction{
		Score:       sigmoid(margin),
		ModelLoaded: true,
	}
	pred.Attribution = p.attribute(feats, margin)
	return pred, nil
}

// attribute computes cover-weighted path attributions per tree and keeps
// the strongest movers. A failure here only drops the explanation.
func (p *Predictor) attribute(feats map[string]float64, margin float64) (att *Attribution) {
	defer func() {
		if r := recover(); r != nil {
			att = nil
			p.log.Warn().Interface("panic", r).Msg("attribution failed")
		}
	}()

	contribs := make(map[string]float64)
	base := p.baseScore
	for i := range p.trees {
		base += pathContributions(&p.trees[i], feats, contribs)
	}

	type kv struct {
		name string
		c    float64
	}
	sorted := make([]kv, 0, len(contribs))
	for name, c := range contribs {
		sorted = append(sorted, kv{name, c})
	}
	sort.Slice(sorted, func(i, j int) bool {
		ai, aj := sorted[i].c, sorted[j].c
		if ai < 0 {
			ai = -ai
		}
		if aj < 0 {
			aj = -aj
		}
		return ai > aj
	})
	if len(sorted) > topContributions {
		sorted = sorted[:topContributions]
	}

	top := make([]Contribution, 0, len(sorted))
	for _, e := range sorted {
		dir := "safe"
		if e.c > 0 {
			dir = "risk"
		}
		top = append(top, Contribution{
			Feature:      e.name,
			Value:        feats[e.name],
			Contribution: e.c,
			Direction:    dir,
		})
	}

	return &Attribution{
		BaseValue:  base,
		TotalShift: margin - base,
		Top:        top,
	}
}
