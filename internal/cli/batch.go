package cli

import (
	"context"
	"log/slog"

	"github.com/Veraticus/autocategorize/internal/llm"
	"github.com/Veraticus/autocategorize/internal/model"
)

// BatchRow is the outcome for one transaction in a batch.
type BatchRow struct {
	Err         error
	Result      model.ClassificationResult
	Transaction model.Transaction
}

// Outcome classifies the row the same way the journal does.
func (r BatchRow) Outcome() model.JournalOutcome {
	switch {
	case r.Err != nil:
		return model.OutcomeFailed
	case r.Result.Matched():
		return model.OutcomeMatched
	default:
		return model.OutcomeNoMatch
	}
}

// RecordFunc is called after each transaction is classified.
type RecordFunc func(ctx context.Context, row BatchRow)

// RunBatch classifies transactions one at a time, in order. A backend
// failure is kept on its row and the batch continues. It stops early when
// ctx is canceled and returns the rows finished so far.
func RunBatch(ctx context.Context, classifier llm.Classifier, categories []string, txs []model.Transaction, progress *Progress, record RecordFunc) []BatchRow {
	rows := make([]BatchRow, 0, len(txs))

	for _, tx := range txs {
		if ctx.Err() != nil {
			slog.Info("Batch stopped early", "completed", len(rows), "total", len(txs))
			break
		}

		result, err := classifier.Classify(ctx, categories, tx)
		if err != nil && ctx.Err() != nil {
			// The call was cut short by cancellation rather than failing.
			break
		}

		row := BatchRow{Transaction: tx, Result: result, Err: err}
		rows = append(rows, row)
		if record != nil {
			record(ctx, row)
		}
		progress.Increment()
	}

	if len(rows) == len(txs) {
		progress.Finish()
	}
	return rows
}
