package paramsync

import (
	"github.com/go-i2p/logger"
	"github.com/qdu-future/paramtune/lib/params"
)

// Change is a leaf whose document value PullAll rewrote.
type Change struct {
	Tag  string
	Path params.Path
	Old  params.Value
	New  params.Value
}

// Skip is a leaf PullAll left untouched because of Err.
type Skip struct {
	Tag  string
	Path params.Path
	Text string
	Err  error
}

// PullReport summarizes one PullAll.
type PullReport struct {
	Changed   []Change
	Unchanged int
	Skipped   []Skip
}

// PullAll writes the current text of every binding into its module subtree,
// in registration order. A leaf whose text does not parse is logged, listed
// in Skipped, and keeps its previous document value; the other leaves are
// still written. A leaf whose canonical value already matches the document
// is not rewritten.
func (e *Engine) PullAll() PullReport {
	var report PullReport
	for _, b := range e.Bindings() {
		text := b.Text()
		v, err := params.ParseValue(b.Type(), text)
		if err != nil {
			log.WithFields(logger.Fields{
				"at":     "paramsync.Engine.PullAll",
				"module": b.Tag,
				"path":   b.Path().String(),
				"text":   text,
			}).Warn("pull_skipped_invalid_value")
			report.Skipped = append(report.Skipped, Skip{Tag: b.Tag, Path: b.Path(), Text: text, Err: err})
			continue
		}

		if b.subtree == nil {
			report.Skipped = append(report.Skipped, Skip{Tag: b.Tag, Path: b.Path(), Text: text, Err: params.ErrPathNotFound})
			continue
		}

		old, err := b.subtree.Get(b.Path())
		if err == nil && old.String() == v.String() {
			report.Unchanged++
			continue
		}
		if err := b.subtree.Set(b.Path(), v); err != nil {
			log.WithFields(logger.Fields{
				"at":     "paramsync.Engine.PullAll",
				"module": b.Tag,
				"path":   b.Path().String(),
			}).WithError(err).Warn("pull_skipped_unwritable")
			report.Skipped = append(report.Skipped, Skip{Tag: b.Tag, Path: b.Path(), Text: text, Err: err})
			continue
		}
		report.Changed = append(report.Changed, Change{Tag: b.Tag, Path: b.Path(), Old: old, New: v})
	}

	log.WithFields(logger.Fields{
		"at":        "paramsync.Engine.PullAll",
		"changed":   len(report.Changed),
		"unchanged": report.Unchanged,
		"skipped":   len(report.Skipped),
	}).Debug("pull_complete")
	return report
}
