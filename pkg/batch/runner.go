package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ledgerbook/ledger-in-go/pkg/audit"
	"github.com/ledgerbook/ledger-in-go/pkg/identity"
	"github.com/ledgerbook/ledger-in-go/pkg/model"
	"github.com/ledgerbook/ledger-in-go/pkg/mutation"
	"github.com/ledgerbook/ledger-in-go/pkg/outcome"
)

// Mutator is the subset of the mutation engine a batch needs.
type Mutator interface {
	AttemptCreate(ctx context.Context, who identity.Identity, p mutation.Payload) outcome.Outcome
	AttemptUpdate(ctx context.Context, who identity.Identity, id int64, p mutation.Patch) outcome.Outcome
	AttemptDelete(ctx context.Context, kind model.Kind, who identity.Identity, id int64) outcome.Outcome
}

var _ Mutator = (*mutation.Engine)(nil)

// Result pairs a step with what happened to it.
type Result struct {
	Index   int
	Step    Step
	Outcome outcome.Outcome
}

func (r Result) String() string {
	return fmt.Sprintf("%d %s: %s", r.Index+1, r.Step, r.Outcome)
}

// Runner applies documents through a Mutator.
type Runner struct {
	engine  Mutator
	auditor audit.Auditor
	log     *slog.Logger
	as      *int64
}

// NewRunner creates a runner on the given engine.
func NewRunner(engine Mutator) *Runner {
	return &Runner{
		engine:  engine,
		auditor: audit.Default(),
		log:     slog.Default(),
	}
}

// WithAuditor sets where the per-batch audit event goes.
func (r *Runner) WithAuditor(a audit.Auditor) *Runner {
	r.auditor = a
	return r
}

// WithLogger sets the logger for step progress.
func (r *Runner) WithLogger(l *slog.Logger) *Runner {
	r.log = l
	return r
}

// WithCaller overrides the document's default caller. Steps that name
// their own caller still use it.
func (r *Runner) WithCaller(userID int64) *Runner {
	r.as = &userID
	return r
}

// Run applies every step in order and returns one result per step.
func (r *Runner) Run(ctx context.Context, doc *Document) []Result {
	results := make([]Result, 0, len(doc.Steps))
	for i, step := range doc.Steps {
		who := r.caller(doc, step)
		var o outcome.Outcome
		switch step.action {
		case audit.ActionCreate:
			o = r.engine.AttemptCreate(ctx, who, step.payload)
		case audit.ActionUpdate:
			o = r.engine.AttemptUpdate(ctx, who, step.ID, step.patch)
		case audit.ActionDelete:
			o = r.engine.AttemptDelete(ctx, step.kind, who, step.ID)
		}
		r.log.DebugContext(ctx, "batch step applied", "step", i+1, "op", step.String(), "status", o.Status.String())
		results = append(results, Result{Index: i, Step: step, Outcome: o})
	}
	return results
}

func (r *Runner) caller(doc *Document, step Step) identity.Identity {
	switch {
	case step.As != nil:
		return identity.ForUser(*step.As)
	case r.as != nil:
		return identity.ForUser(*r.as)
	default:
		return identity.ForUser(doc.As)
	}
}

// Apply parses a document from in and runs it, recording one audit event
// for the whole batch under source.
func (r *Runner) Apply(ctx context.Context, source string, in io.Reader) ([]Result, error) {
	event := audit.BatchEvent{Source: source, ClientIP: "-"}
	if r.as != nil {
		event.UserID = identity.ForUser(*r.as).String()
	}

	doc, err := Parse(in)
	if err != nil {
		event.Error = err.Error()
		r.auditor.Log(ctx, event)
		return nil, err
	}
	if event.UserID == "" {
		event.UserID = identity.ForUser(doc.As).String()
	}

	results := r.Run(ctx, doc)
	event.Steps = len(results)
	event.Succeeded = Succeeded(results)
	r.auditor.Log(ctx, event)
	return results, nil
}

// ApplyFile is Apply on the named file.
func (r *Runner) ApplyFile(ctx context.Context, path string) ([]Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return r.Apply(ctx, path, f)
}

// Succeeded counts the results whose outcome is Success.
func Succeeded(results []Result) int {
	n := 0
	for _, res := range results {
		if res.Outcome.OK() {
			n++
		}
	}
	return n
}
