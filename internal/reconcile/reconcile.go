// =============================================================================
// internal/reconcile/reconcile.go - Reconciler core and write gating
// =============================================================================
package reconcile

import (
	"context"

	"github.com/AndrewSav/mktool/internal/failure"
	"github.com/AndrewSav/mktool/internal/mikrotik"
	"github.com/AndrewSav/mktool/internal/report"
	"github.com/rs/zerolog"
)

// Options controls how decisions turn into router writes
type Options struct {
	// Execute sends writes to the router. Without it the run is a dry run.
	Execute bool
	// ContinueOnErrors reports and skips a write the router rejects
	// instead of aborting the batch.
	ContinueOnErrors bool
	// SkipExisting suppresses "already exists" report lines.
	SkipExisting bool
}

// Kind names the record facet a decision applies to
type Kind string

const (
	KindDHCP Kind = "dhcp"
	KindDNS  Kind = "dns"
	KindWiFi Kind = "wifi"
)

// Action is the outcome decided for one record
type Action string

const (
	ActionCreate    Action = "create"
	ActionUpdate    Action = "update"
	ActionExists    Action = "exists"
	ActionConflict  Action = "conflict"
	ActionAmbiguous Action = "ambiguous"
	ActionDelete    Action = "delete"
	ActionDisable   Action = "disable"
)

// Decision records what was decided for one record and the sentence that
// carries it out, if any
type Decision struct {
	Kind        Kind     `json:"kind"`
	Action      Action   `json:"action"`
	Description string   `json:"description"`
	Sentence    []string `json:"sentence,omitempty"`
	Skipped     bool     `json:"skipped,omitempty"`
}

// Reconciler decides and applies changes against one router
type Reconciler struct {
	router mikrotik.Router
	opts   Options
	report *report.Reporter
	log    zerolog.Logger
}

// New creates a reconciler. A nil reporter prints nothing.
func New(router mikrotik.Router, opts Options, rep *report.Reporter, log zerolog.Logger) *Reconciler {
	if rep == nil {
		rep = report.Discard()
	}
	return &Reconciler{router: router, opts: opts, report: rep, log: log}
}

// Options returns the reconciler's write options
func (r *Reconciler) Options() Options {
	return r.opts
}

// submit sends a write sentence when executing. A rejected write is
// reported; it aborts the batch unless ContinueOnErrors is set. The
// returned flag tells whether the write was skipped after a rejection.
func (r *Reconciler) submit(sentence []string) (bool, error) {
	if !r.opts.Execute {
		return false, nil
	}
	_, err := r.router.Execute(sentence...)
	if err == nil {
		return false, nil
	}
	if !failure.Is(err, failure.RemoteWrite) {
		return false, err
	}

	r.report.Error("%s", err.Error())
	r.log.Error().Err(err).Strs("request", sentence).Msg("Router rejected command")
	if r.opts.ContinueOnErrors {
		return true, nil
	}
	return false, err
}

// apply submits the sentence of d and fills in its outcome
func (r *Reconciler) apply(d Decision) (Decision, error) {
	skipped, err := r.submit(d.Sentence)
	d.Skipped = skipped
	return d, err
}

// exists reports an entry that needs no write, honoring SkipExisting
func (r *Reconciler) exists(format string, args ...any) {
	if !r.opts.SkipExisting {
		r.report.Exists(format, args...)
	}
}

func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return failure.Wrapf(failure.Unhandled, err, "reconciliation interrupted")
	}
	return nil
}
