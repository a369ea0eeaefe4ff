package cli

import (
	"context"
	"fmt"
	"time"

	service "github.com/okian/houseprice/internal/app"
	"github.com/okian/houseprice/internal/client"
	"github.com/okian/houseprice/internal/domain/model"
	"github.com/okian/houseprice/internal/domain/pricing"
	"github.com/okian/houseprice/internal/domain/types"
)

// Backend answers the CLI commands either in process or through a server.
type Backend interface {
	Predict(ctx context.Context, f pricing.Features) (types.Prediction, error)
	Report(ctx context.Context, f pricing.Features) (report, filename string, err error)
	Importance(ctx context.Context) ([]types.RankedImportance, error)
	Batch(ctx context.Context, rows []pricing.Features) (types.Valuation, error)
}

// localBackend prices with the built-in model.
type localBackend struct {
	svc *service.Service
	now func() time.Time
}

func newLocalBackend(enforceLimits bool, now func() time.Time) *localBackend {
	return &localBackend{
		svc: service.New(service.WithEnforceLimits(enforceLimits)),
		now: now,
	}
}

func (b *localBackend) Predict(ctx context.Context, f pricing.Features) (types.Prediction, error) {
	p, err := b.svc.Predict(ctx, f)
	if err != nil {
		return types.Prediction{}, err
	}
	return types.NewPrediction(p), nil
}

func (b *localBackend) Report(ctx context.Context, f pricing.Features) (string, string, error) {
	p, err := b.svc.Predict(ctx, f)
	if err != nil {
		return "", "", err
	}
	return b.svc.Report(ctx, p), pricing.ReportFileName(b.now()), nil
}

func (b *localBackend) Importance(ctx context.Context) ([]types.RankedImportance, error) {
	return types.NewRanking(b.svc.Importance(ctx)), nil
}

// Batch values every row in order; a row that fails keeps its error.
func (b *localBackend) Batch(ctx context.Context, rows []pricing.Features) (types.Valuation, error) {
	job := model.Job{ID: "local", CreatedAt: b.now().UTC(), Items: make([]model.Item, len(rows))}
	for i, f := range rows {
		p, err := b.svc.Predict(ctx, f)
		if err != nil {
			job.Items[i] = model.Item{State: model.ItemFailed, Err: err.Error()}
			job.Failed++
			continue
		}
		job.Items[i] = model.Item{State: model.ItemDone, Price: p.Price, Clamped: p.Clamped()}
		job.Completed++
	}
	return types.NewValuation(job), nil
}

// remoteBackend delegates to a running server.
type remoteBackend struct {
	c            *client.Client
	pollInterval time.Duration
	requestID    string
}

func newRemoteBackend(baseURL, requestID string, timeout, poll time.Duration) (*remoteBackend, error) {
	c, err := client.New(baseURL, client.WithTimeout(timeout), client.WithRetries(3, 250*time.Millisecond))
	if err != nil {
		return nil, err
	}
	return &remoteBackend{c: c, pollInterval: poll, requestID: requestID}, nil
}

func (b *remoteBackend) Predict(ctx context.Context, f pricing.Features) (types.Prediction, error) {
	return b.c.Predict(ctx, f)
}

func (b *remoteBackend) Report(ctx context.Context, f pricing.Features) (string, string, error) {
	return b.c.Report(ctx, f)
}

func (b *remoteBackend) Importance(ctx context.Context) ([]types.RankedImportance, error) {
	return b.c.Importance(ctx)
}

func (b *remoteBackend) Batch(ctx context.Context, rows []pricing.Features) (types.Valuation, error) {
	ack, err := b.c.SubmitValuation(ctx, b.requestID, rows)
	if err != nil {
		return types.Valuation{}, fmt.Errorf("submit batch: %w", err)
	}
	return b.c.WaitValuation(ctx, ack.JobID, b.pollInterval)
}
