package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dvloznov/ecommerce-pipeline/internal/config"
	"github.com/dvloznov/ecommerce-pipeline/internal/domain"
)

// State is the orchestrator's position in the run.
type State int

const (
	StateNotStarted State = iota
	StateValidating
	StateCleaning
	StateAggregating
	StatePublishing
	StateReporting
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateValidating:
		return "validating"
	case StateCleaning:
		return "cleaning"
	case StateAggregating:
		return "aggregating"
	case StatePublishing:
		return "publishing"
	case StateReporting:
		return "reporting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Pipeline sequences the cleaning, aggregation and publish stages over the
// medallion buckets. Each stage is a checkpoint: its failure halts the run
// and tags the report with the stage name. One Pipeline runs one flow at a
// time; concurrent runs against the same collections are the caller's
// responsibility to prevent.
type Pipeline struct {
	buckets config.BucketConfig
	store   BlobStore
	docs    DocumentStore
	log     zerolog.Logger

	state State
	now   func() time.Time
}

// New wires a pipeline from explicitly constructed store handles.
func New(buckets config.BucketConfig, store BlobStore, docs DocumentStore, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		buckets: buckets,
		store:   store,
		docs:    docs,
		log:     log,
		state:   StateNotStarted,
		now:     time.Now,
	}
}

// State returns the orchestrator's current state.
func (p *Pipeline) State() State { return p.state }

// Run executes the full flow: preflight validation, cleaning, aggregation,
// publish, report. It always returns a report; on failure the report carries
// the failing stage and reason. Cancellation is honored at stage boundaries
// only.
func (p *Pipeline) Run(ctx context.Context) *RunReport {
	start := time.Now()
	report := &RunReport{
		RunID:     uuid.NewString(),
		Timestamp: p.now().UTC(),
		Status:    StatusSuccess,
	}
	p.log.Info().Str("run_id", report.RunID).Msg("pipeline run starting")

	p.transition(StateValidating)
	if err := p.validateSources(ctx); err != nil {
		return p.fail(report, start, err)
	}

	if err := p.checkpoint(ctx, StateCleaning); err != nil {
		return p.fail(report, start, err)
	}
	if err := p.runCleaning(ctx, report); err != nil {
		return p.fail(report, start, err)
	}

	if err := p.checkpoint(ctx, StateAggregating); err != nil {
		return p.fail(report, start, err)
	}
	if err := p.runAggregation(ctx, report); err != nil {
		return p.fail(report, start, err)
	}

	if err := p.checkpoint(ctx, StatePublishing); err != nil {
		return p.fail(report, start, err)
	}
	if err := p.runPublish(ctx, report); err != nil {
		return p.fail(report, start, err)
	}

	p.transition(StateReporting)
	report.DurationSeconds = round3(time.Since(start).Seconds())

	p.transition(StateDone)
	p.log.Info().
		Str("run_id", report.RunID).
		Float64("duration_s", report.DurationSeconds).
		Msg("pipeline run complete")
	return report
}

// validateSources is the preflight check: both raw objects must exist in the
// landing bucket before any side effect happens.
func (p *Pipeline) validateSources(ctx context.Context) error {
	for _, object := range []string{ObjectClients, ObjectPurchases} {
		ok, err := p.store.Exists(ctx, p.buckets.Landing, object)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: object %s/%s not found", ErrPrecondition, p.buckets.Landing, object)
		}
	}
	p.log.Info().Str("bucket", p.buckets.Landing).Msg("source objects validated")
	return nil
}

// runCleaning reads the raw CSVs from the landing bucket, validates them
// into the two silver tables and writes those as parquet. Clients are
// cleaned first; the purchase referential filter needs their id set.
func (p *Pipeline) runCleaning(ctx context.Context, report *RunReport) error {
	now := p.now().UTC()

	rawClientsData, err := p.store.Get(ctx, p.buckets.Landing, ObjectClients)
	if err != nil {
		return err
	}
	rawClients, err := DecodeClients(rawClientsData)
	if err != nil {
		return err
	}

	rawPurchasesData, err := p.store.Get(ctx, p.buckets.Landing, ObjectPurchases)
	if err != nil {
		return err
	}
	rawPurchases, err := DecodePurchases(rawPurchasesData)
	if err != nil {
		return err
	}

	clients, clientStats := CleanClients(rawClients, now)
	purchases, purchaseStats := CleanPurchases(rawPurchases, ClientIDSet(clients), now)

	p.log.Info().
		Int("clients_in", clientStats.RowsIn).Int("clients_out", clientStats.RowsOut).
		Int("purchases_in", purchaseStats.RowsIn).Int("purchases_out", purchaseStats.RowsOut).
		Int("duplicates", clientStats.Duplicates+purchaseStats.Duplicates).
		Int("invalid_amounts", purchaseStats.InvalidAmounts).
		Int("orphans", purchaseStats.Orphans).
		Msg("cleaning complete")

	if _, err := WriteTable(ctx, p.store, p.buckets.Validated, TableClients, clients); err != nil {
		return err
	}
	if _, err := WriteTable(ctx, p.store, p.buckets.Validated, TablePurchases, purchases); err != nil {
		return err
	}

	report.Silver = &SilverReport{
		Clients:   stageRows(clientStats),
		Purchases: stageRows(purchaseStats),
	}
	return nil
}

// runAggregation reads the silver tables back from the validated bucket,
// derives the four gold tables and writes them as parquet.
func (p *Pipeline) runAggregation(ctx context.Context, report *RunReport) error {
	now := p.now().UTC()

	clients, err := ReadTable[domain.CleanClient](ctx, p.store, p.buckets.Validated, TableClients)
	if err != nil {
		return err
	}
	purchases, err := ReadTable[domain.CleanPurchase](ctx, p.store, p.buckets.Validated, TablePurchases)
	if err != nil {
		return err
	}

	summary := BuildClientSummary(clients, purchases, now)
	products := BuildProductAnalytics(purchases, now)
	monthly := BuildMonthlySales(purchases, now)
	countries := BuildCountryAnalytics(clients, purchases, now)

	if _, err := WriteTable(ctx, p.store, p.buckets.Derived, TableClientSummary, summary); err != nil {
		return err
	}
	if _, err := WriteTable(ctx, p.store, p.buckets.Derived, TableProductAnalytics, products); err != nil {
		return err
	}
	if _, err := WriteTable(ctx, p.store, p.buckets.Derived, TableMonthlySales, monthly); err != nil {
		return err
	}
	if _, err := WriteTable(ctx, p.store, p.buckets.Derived, TableCountryAnalytics, countries); err != nil {
		return err
	}

	report.Gold = map[string]int{
		TableClientSummary:    len(summary),
		TableProductAnalytics: len(products),
		TableMonthlySales:     len(monthly),
		TableCountryAnalytics: len(countries),
	}
	p.log.Info().Interface("tables", report.Gold).Msg("aggregation complete")
	return nil
}

// runPublish replace-loads the gold tables into the operational store.
func (p *Pipeline) runPublish(ctx context.Context, report *RunReport) error {
	load, err := Publish(ctx, p.store, p.buckets.Derived, p.docs, p.log)
	if err != nil {
		return err
	}
	report.Load = load
	return nil
}

// checkpoint transitions to the next stage unless the run was cancelled;
// cancellation is only honored between stages, never mid-stage.
func (p *Pipeline) checkpoint(ctx context.Context, next State) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("cancelled before %s: %w", next, err)
	}
	p.transition(next)
	return nil
}

func (p *Pipeline) transition(next State) {
	p.log.Info().Stringer("from", p.state).Stringer("to", next).Msg("stage transition")
	p.state = next
}

func (p *Pipeline) fail(report *RunReport, start time.Time, err error) *RunReport {
	stage := p.state
	p.transition(StateFailed)

	report.Status = StatusFailed
	report.FailedStage = stage.String()
	report.Error = err.Error()
	report.DurationSeconds = round3(time.Since(start).Seconds())

	p.log.Error().Err(err).Stringer("stage", stage).Msg("pipeline run failed")
	return report
}
