package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/libroteka/recommendation-service/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	calls   int
	runID   string
	updated int
	err     error
}

func (n *recordingNotifier) NotifyTrainingComplete(_ context.Context, runID string, updated int) error {
	n.calls++
	n.runID = runID
	n.updated = updated
	return n.err
}

func newTestTrainer(f *fakeStore, n Notifier) *Trainer {
	tr := NewTrainer(f, n, DefaultTrainTopN, zerolog.Nop())
	tr.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return tr
}

func TestTrainGlobalModelCountsLoans(t *testing.T) {
	f := newFakeStore()
	addLoan(f, "u1", "bookA", models.LoanStatusReturned)
	addLoan(f, "u2", "bookA", models.LoanStatusActive)
	addLoan(f, "u3", "bookB", models.LoanStatusReturned)
	addLoan(f, "u4", "bookC", "lost") // irrelevant status
	tr := newTestTrainer(f, nil)

	res, err := tr.TrainGlobalModel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Updated)
	assert.NotEmpty(t, res.RunID)

	assert.Equal(t, 2.0, f.scores["bookA"].Score)
	assert.Equal(t, 1.0, f.scores["bookB"].Score)
	_, ok := f.scores["bookC"]
	assert.False(t, ok, "loans outside relevant statuses contribute nothing")
}

func TestTrainGlobalModelIsIdempotent(t *testing.T) {
	f := newFakeStore()
	addLoan(f, "u1", "bookA", models.LoanStatusReturned)
	addLoan(f, "u2", "bookA", models.LoanStatusReturned)
	addLoan(f, "u3", "bookB", models.LoanStatusActive)
	tr := newTestTrainer(f, nil)

	_, err := tr.TrainGlobalModel(context.Background())
	require.NoError(t, err)
	first := map[string]models.GlobalScore{}
	for k, v := range f.scores {
		first[k] = v
	}

	_, err = tr.TrainGlobalModel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, f.scores, "unchanged loan data must produce identical scores")
}

func TestTrainGlobalModelReplacesDoesNotAccumulate(t *testing.T) {
	f := newFakeStore()
	f.addScore("bookA", 99)
	f.addScore("untouched", 4)
	addLoan(f, "u1", "bookA", models.LoanStatusReturned)
	tr := newTestTrainer(f, nil)

	_, err := tr.TrainGlobalModel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.0, f.scores["bookA"].Score, "score is recomputed from scratch, not accumulated")
	assert.Equal(t, 4.0, f.scores["untouched"].Score, "books outside the run keep their score")
}

func TestTrainGlobalModelTieBreakByBookID(t *testing.T) {
	f := newFakeStore()
	addLoan(f, "u1", "bbb", models.LoanStatusReturned)
	addLoan(f, "u2", "aaa", models.LoanStatusReturned)

	counts, err := f.CountLoansByBook(context.Background(), models.RelevantLoanStatuses, 20)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, "aaa", counts[0].BookID)
	assert.Equal(t, "bbb", counts[1].BookID)
}

func TestTrainGlobalModelSkipsFailingUpserts(t *testing.T) {
	f := newFakeStore()
	addLoan(f, "u1", "bookA", models.LoanStatusReturned)
	addLoan(f, "u2", "bookA", models.LoanStatusReturned)
	addLoan(f, "u3", "bookB", models.LoanStatusActive)
	f.upsertErrs["bookA"] = errors.New("write failed")
	tr := newTestTrainer(f, nil)

	res, err := tr.TrainGlobalModel(context.Background())
	require.NoError(t, err, "a per-record failure must not abort the batch")
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1.0, f.scores["bookB"].Score)
}

func TestTrainGlobalModelNotifiesBestEffort(t *testing.T) {
	f := newFakeStore()
	addLoan(f, "u1", "bookA", models.LoanStatusReturned)
	notifier := &recordingNotifier{}
	tr := newTestTrainer(f, notifier)

	res, err := tr.TrainGlobalModel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, res.RunID, notifier.runID)
	assert.Equal(t, 1, notifier.updated)
}

func TestTrainGlobalModelSwallowsNotifierFailure(t *testing.T) {
	f := newFakeStore()
	addLoan(f, "u1", "bookA", models.LoanStatusReturned)
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	tr := newTestTrainer(f, notifier)

	res, err := tr.TrainGlobalModel(context.Background())
	require.NoError(t, err, "notifier failure never fails training")
	assert.Equal(t, 1, res.Updated)
}

func TestTrainGlobalModelIncrementsRunCounter(t *testing.T) {
	f := newFakeStore()
	addLoan(f, "u1", "bookA", models.LoanStatusReturned)
	tr := newTestTrainer(f, nil)

	_, err := tr.TrainGlobalModel(context.Background())
	require.NoError(t, err)
	_, err = tr.TrainGlobalModel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), f.counters[CounterTrainingRuns])
}

func TestPruneObsolete(t *testing.T) {
	f := newFakeStore()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	recent := now.AddDate(0, 0, -30)
	stale := now.AddDate(0, 0, -400)
	f.loans = append(f.loans,
		models.Loan{UserID: "u1", BookID: "fresh", Status: models.LoanStatusReturned, LoanDate: recent},
		models.Loan{UserID: "u2", BookID: "old", Status: models.LoanStatusReturned, LoanDate: stale},
	)
	f.addScore("fresh", 5)
	f.addScore("old", 9)
	f.addScore("never-loaned", 2)
	tr := newTestTrainer(f, nil)

	deleted, err := tr.PruneObsolete(context.Background(), 365)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	_, ok := f.scores["fresh"]
	assert.True(t, ok)
	_, ok = f.scores["old"]
	assert.False(t, ok)
	_, ok = f.scores["never-loaned"]
	assert.False(t, ok)
}

func TestPruneObsoleteRejectsNonPositiveWindow(t *testing.T) {
	tr := newTestTrainer(newFakeStore(), nil)
	_, err := tr.PruneObsolete(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
