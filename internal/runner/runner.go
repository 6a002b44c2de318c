// Package runner coordinates a full optimization run: it loads the
// Reference Catalog once, drives the PSO Driver for the configured
// number of generations, feeds the PSO archive's min/median/max cost
// members into the ε-Constraint Driver, and hands the combined result
// set to the Result Aggregator (spec.md §2).
package runner

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/sirupsen/logrus"

	"github.com/msucast/bmpopt/internal/aggregate"
	"github.com/msucast/bmpopt/internal/catalog"
	"github.com/msucast/bmpopt/internal/config"
	"github.com/msucast/bmpopt/internal/dispatch"
	"github.com/msucast/bmpopt/internal/encoding"
	"github.com/msucast/bmpopt/internal/epsilon"
	"github.com/msucast/bmpopt/internal/model"
	"github.com/msucast/bmpopt/internal/pso"
	"github.com/msucast/bmpopt/internal/scenario"
)

// Runner owns the full lifecycle of one optimization run.
type Runner struct {
	Cfg config.Run
	Log logrus.FieldLogger

	Catalog *catalog.Catalog
	Layout  *encoding.Layout
	Writer  *scenario.Writer
	Client  *dispatch.Client
}

// New loads the Reference Catalog and wires the run's dispatch client
// against the configured AMQP bus and DynamoDB mailbox table.
func New(ctx context.Context, cfg config.Run, log logrus.FieldLogger) (*Runner, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	cat, err := catalog.Load(cfg.BaseScenario, cfg.ScenarioSelect, cfg.CountyAdjacency, cfg.ManureNutrients, cfg.ManureEnabled)
	if err != nil {
		return nil, fmt.Errorf("runner: loading catalog: %w", err)
	}

	layout := encoding.NewLayout(cat, true, true, true, cfg.ManureEnabled)
	writer := &scenario.Writer{Dir: cfg.WorkDir, Cat: cat}

	bus, err := dispatch.DialAMQPBus(cfg.AMQPURL)
	if err != nil {
		return nil, fmt.Errorf("runner: dialing AMQP bus: %w", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("runner: loading AWS config: %w", err)
	}
	kv := dispatch.NewDynamoKV(dynamodb.NewFromConfig(awsCfg), cfg.DynamoDBTable)

	runUUID := model.NewUUID()
	client := dispatch.NewClient(bus, kv, runUUID, log.WithField("run_uuid", runUUID), cfg.NParts)

	return &Runner{Cfg: cfg, Log: log, Catalog: cat, Layout: layout, Writer: writer, Client: client}, nil
}

// Run executes the full control flow of spec.md §2: PSO, then the
// ε-constraint sweep atop the archive's min/median/max parents, then
// aggregation into the final Pareto front.
func (r *Runner) Run(ctx context.Context) error {
	timeout := time.Duration(r.Cfg.DispatchTimeoutSeconds) * time.Second

	archive, err := r.runPSO(ctx, timeout)
	if err != nil {
		return err
	}
	if archive.Len() == 0 {
		return fmt.Errorf("runner: PSO archive empty, nothing to refine")
	}
	r.Log.WithField("archive_size", archive.Len()).Info("runner: PSO complete")

	candidates, err := r.runEpsilon(ctx, archive, timeout)
	if err != nil {
		return err
	}
	r.Log.WithField("epsilon_candidates", len(candidates)).Info("runner: epsilon sweep complete")

	for i, e := range archive.Entries() {
		if e.Candidate.Failed {
			continue
		}
		candidates = append(candidates, aggregate.Candidate{Index: len(candidates) + i, UUID: e.Candidate.UUID})
	}

	agg := aggregate.NewAggregator(r.Cfg.WorkDir, []string{"cost", "EoS-" + r.Catalog.SelPollutant}, r.Log)
	if err := agg.Run(candidates); err != nil {
		return fmt.Errorf("runner: aggregation failed: %w", err)
	}
	return nil
}

func (r *Runner) runPSO(ctx context.Context, timeout time.Duration) (*pso.Archive, error) {
	params := pso.Params{
		NParts:  r.Cfg.NParts,
		NObjs:   r.Cfg.NObjs,
		MaxIter: r.Cfg.MaxIter,
		W:       r.Cfg.W,
		C1:      r.Cfg.C1,
		C2:      r.Cfg.C2,
		LB:      r.Cfg.LB,
		UB:      r.Cfg.UB,
	}

	eval := &pso.Evaluator{
		Layout:              r.Layout,
		Catalog:             r.Catalog,
		Writer:              r.Writer,
		Client:              r.Client,
		Timeout:             timeout,
		ResidualLoadIndices: residualLoadIndices(r.Cfg.NObjs),
	}

	rng := rand.New(rand.NewSource(r.Cfg.Seed))
	swarm := pso.NewSwarm(params, r.Layout.N(), eval, rng, r.Log.WithField("component", "pso"))
	swarm.Run(ctx, r.Layout.Initialize)
	return swarm.Archive(), nil
}

// residualLoadIndices expands the configured objective count into the
// simulator load-vector indices 0..nObjs-2 that fill objectives 1..N,
// generalizing the classical (cost, loadN) pair to nObjs objectives
// per spec.md §9's "parameterize nobjs throughout" note. nObjs<2 falls
// back to the classical single-residual default.
func residualLoadIndices(nObjs int) []int {
	if nObjs < 2 {
		return pso.DefaultResidualLoadIndices
	}
	indices := make([]int, nObjs-1)
	for i := range indices {
		indices[i] = i
	}
	return indices
}

func (r *Runner) runEpsilon(ctx context.Context, archive *pso.Archive, timeout time.Duration) ([]aggregate.Candidate, error) {
	em := epsilon.NewModel(r.Layout, r.Catalog, r.Catalog.SelPollutant)
	parents := epsilon.SelectParents(archive.Entries())

	var candidates []aggregate.Candidate
	index := 0
	for _, parent := range []model.ArchiveEntry{parents.Min, parents.Median, parents.Max} {
		logDir := filepath.Join(r.Cfg.WorkDir, "eps_logs_"+parent.Candidate.UUID)
		results := epsilon.Sweep(ctx, em, r.Writer, r.Cfg.WorkDir, parent.Candidate.UUID, r.Cfg.EpsilonRho, r.Cfg.EpsilonSteps, r.Catalog.SumLoadValid[r.Catalog.SelPollutant], logDir)
		results = epsilon.Dispatch(ctx, r.Client, results, timeout)

		for _, res := range results {
			if res.Err != nil {
				r.Log.WithFields(logrus.Fields{"uuid": res.UUID, "err": res.Err}).Warn("runner: epsilon step failed, excluding from aggregation")
				continue
			}
			candidates = append(candidates, aggregate.Candidate{Index: index, UUID: res.UUID})
			index++
		}
	}
	return candidates, nil
}
