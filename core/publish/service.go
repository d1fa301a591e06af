package publish

import (
	"context"

	"packvault/model"
)

// Runner is the orchestrator as the publisher sees it.
type Runner interface {
	Run(ctx context.Context, sub *PackSubmission, prog *Progress) (*UploadedAssets, error)
}

// Writer is the aggregate writer as the publisher sees it.
type Writer interface {
	Create(ctx context.Context, sub *PackSubmission, assets *UploadedAssets, status model.PackStatus) (*model.Pack, error)
	Edit(ctx context.Context, packID int64, edit *EditSubmission, assets *UploadedAssets) (*model.Pack, error)
}

// Publisher drives one pipeline run end to end: uploads first, then
// the aggregate write, with the final write reported as the last
// progress step. If any upload fails the writer is never invoked.
type Publisher struct {
	orch   Runner
	writer Writer
}

// NewPublisher composes the orchestrator and writer.
func NewPublisher(orch Runner, writer Writer) *Publisher {
	return &Publisher{orch: orch, writer: writer}
}

// CreatePack ingests a new pack with the requested initial status.
func (p *Publisher) CreatePack(ctx context.Context, sub *PackSubmission, status model.PackStatus, fn ProgressFunc) (*model.Pack, error) {
	prog := NewProgress(sub, fn)

	assets, err := p.orch.Run(ctx, sub, prog)
	if err != nil {
		return nil, err
	}

	pack, err := p.writer.Create(ctx, sub, assets, status)
	if err != nil {
		return nil, err
	}

	prog.Step() // final write done, 100%
	return pack, nil
}

// EditPack applies an edit submission to an existing pack. Only new
// samples and a replacement cover go through the upload phases.
func (p *Publisher) EditPack(ctx context.Context, packID int64, edit *EditSubmission, fn ProgressFunc) (*model.Pack, error) {
	prog := NewProgress(&edit.Pack, fn)

	assets, err := p.orch.Run(ctx, &edit.Pack, prog)
	if err != nil {
		return nil, err
	}

	pack, err := p.writer.Edit(ctx, packID, edit, assets)
	if err != nil {
		return nil, err
	}

	prog.Step()
	return pack, nil
}
