package export

import (
	"context"
	"io"
	"log/slog"

	"github.com/edutools/lms-export/internal"
)

// Serializer renders a column plan and a record set into a Document. The
// csv and spreadsheet variants share this contract.
type Serializer interface {
	RenderCourses(plan FieldPlan, records []*Record) (Document, error)
	RenderUsers(base FieldPlan, records []*Record, roles []string, separate bool) (Document, error)
}

// Processor is the single entry point of an export run. It is request
// scoped: construct, Prepare once, then read the document any number of
// times. A second Prepare fails; reading before Prepare fails.
type Processor struct {
	opts    Options
	store   Store
	logger  *slog.Logger
	builder *RecordBuilder

	started bool
	doc     Document
}

// NewProcessor validates the configuration eagerly, before any host data is
// touched.
func NewProcessor(store Store, logger *slog.Logger, opts Options) (*Processor, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Processor{
		opts:    opts,
		store:   store,
		logger:  logger,
		builder: NewRecordBuilder(store, logger),
	}, nil
}

// Prepare builds the records, computes the column plan and renders the
// document. It runs at most once per processor; a failed run produces no
// document and leaves the processor idle.
func (p *Processor) Prepare(ctx context.Context) error {
	if p.started {
		return internal.ErrProcessStarted
	}

	doc, err := p.render(ctx)
	if err != nil {
		p.logger.Error("export prepare failed", "data", p.opts.Data, "format", p.opts.Format, "error", err)
		return err
	}

	p.started = true
	p.doc = doc
	p.logger.Info("export prepared", "data", p.opts.Data, "format", p.opts.Format, "filename", doc.Filename())
	return nil
}

func (p *Processor) render(ctx context.Context) (Document, error) {
	serializer := p.serializer()

	if p.opts.Data == DataCourses {
		records, err := p.builder.CourseRecords(ctx, p.opts)
		if err != nil {
			return nil, err
		}
		plan := BuildFieldPlan(p.opts.Fields, p.opts.Overrides, p.opts.UseOverrides)
		return serializer.RenderCourses(plan, records)
	}

	roles, err := ResolveRoles(ctx, p.store, p.opts.Roles)
	if err != nil {
		return nil, err
	}
	records, err := p.builder.UserRecords(ctx, p.opts, roles)
	if err != nil {
		return nil, err
	}
	base := BuildFieldPlan(p.opts.Fields, p.opts.Overrides, p.opts.UseOverrides)
	return serializer.RenderUsers(base, records, roles.Requested(), p.opts.SeparateSheets)
}

func (p *Processor) serializer() Serializer {
	if p.opts.Format == FormatXLS {
		return NewXLSSerializer()
	}
	return NewCSVSerializer(p.opts.Delimiter, p.opts.Encoding)
}

// Document returns the prepared document.
func (p *Processor) Document() (Document, error) {
	if p.doc == nil {
		return nil, internal.ErrFileNotPrepared
	}
	return p.doc, nil
}

// Download streams the prepared document to w. It may be called repeatedly;
// every call writes the same content.
func (p *Processor) Download(w io.Writer) (int64, error) {
	if p.doc == nil {
		return 0, internal.ErrFileNotPrepared
	}
	return p.doc.WriteTo(w)
}
