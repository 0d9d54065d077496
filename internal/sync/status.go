package sync

import (
	"errors"

	"github.com/merginmaps/mergin-go/internal/mergin"
)

// FailedProgressSentinel is the progress value reported with a failed or
// cancelled sync, distinguishable from any real byte count.
const FailedProgressSentinel = -1

// ProgressFunc receives transfer progress for a project. transferred counts
// bytes moved so far out of total; a finished failed sync reports the
// sentinel value instead.
type ProgressFunc func(project ProjectID, transferred, total int64)

// Result is the terminal outcome of one sync run.
type Result struct {
	Project ProjectID
	Kind    TransactionKind
	Version int
	Err     error

	// ShowAsDialog marks failures the server wants surfaced modally, such
	// as exceeding the storage quota.
	ShowAsDialog bool
}

func (r *Result) Success() bool {
	return r.Err == nil
}

// ResultFunc receives the terminal outcome of each sync.
type ResultFunc func(Result)

// Events are the coordinator's outbound signals. Nil callbacks are skipped.
type Events struct {
	OnProgress ProgressFunc
	OnFinished ResultFunc
}

func (e *Events) progress(project ProjectID, transferred, total int64) {
	if e != nil && e.OnProgress != nil {
		e.OnProgress(project, transferred, total)
	}
}

func (e *Events) finished(result Result) {
	if e != nil && e.OnFinished != nil {
		e.OnFinished(result)
	}
}

func newResult(tx *Transaction, err error) Result {
	result := Result{
		Project: tx.Project,
		Kind:    tx.Kind,
		Version: tx.TargetVersion,
		Err:     err,
	}

	var serverErr *mergin.ServerError
	if errors.As(err, &serverErr) {
		result.ShowAsDialog = serverErr.ShowAsDialog
	}

	return result
}
