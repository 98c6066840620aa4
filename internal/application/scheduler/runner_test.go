package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mayorista-api/internal/application/dto"
)

type jobRecorder struct {
	mu   sync.Mutex
	runs map[string][]error
	gens map[string]int
}

func newJobRecorder() *jobRecorder {
	return &jobRecorder{runs: map[string][]error{}, gens: map[string]int{}}
}

func (r *jobRecorder) JobRun(job string, err error) {
	r.mu.Lock()
	r.runs[job] = append(r.runs[job], err)
	r.mu.Unlock()
}

func (r *jobRecorder) GenerationRecorded(status string) {
	r.mu.Lock()
	r.gens[status]++
	r.mu.Unlock()
}

func TestRunOnce_ContinuesAfterFailure(t *testing.T) {
	rec := newJobRecorder()
	var order []string
	r := NewRunner(time.Minute, rec, zerolog.Nop(),
		Job{Name: "a", Run: func(context.Context) error { order = append(order, "a"); return errors.New("boom") }},
		Job{Name: "b", Run: func(context.Context) error { order = append(order, "b"); return nil }},
		Job{Name: "c", Run: func(context.Context) error { panic("kaput") }},
	)

	err := r.RunOnce(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "a: boom")
	assert.Contains(t, err.Error(), "c: pánico")
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Len(t, rec.runs["b"], 1)
	assert.NoError(t, rec.runs["b"][0])
}

func TestStartStop_RunsImmediately(t *testing.T) {
	ran := make(chan struct{}, 1)
	r := NewRunner(time.Hour, nil, zerolog.Nop(), Job{Name: "x", Run: func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}})

	r.Start(context.Background())
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("la tarea no corrió al iniciar")
	}
	r.Stop()
	r.Stop()
}

type fakeStanding struct{ res *dto.RunDueResponse }

func (f fakeStanding) RunDue(context.Context) (*dto.RunDueResponse, error) { return f.res, nil }

func TestStandingJob_RecordsGenerations(t *testing.T) {
	rec := newJobRecorder()
	job := StandingJob(fakeStanding{res: &dto.RunDueResponse{Processed: 4, Generated: 2, Pending: 1, Failed: 1}}, rec)

	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, JobStandingOrders, job.Name)
	assert.Equal(t, 2, rec.gens["generated"])
	assert.Equal(t, 1, rec.gens["pending_approval"])
	assert.Equal(t, 1, rec.gens["failed"])
	assert.Zero(t, rec.gens["credit_hold"])
}

type fakeCount struct {
	n   int
	err error
}

func (f fakeCount) ExpireDue(context.Context) (int, error)   { return f.n, f.err }
func (f fakeCount) ScanOverdue(context.Context) (int, error) { return f.n, f.err }

func TestCountJobs_PropagateErrors(t *testing.T) {
	assert.NoError(t, ExpireQuotesJob(fakeCount{n: 3}).Run(context.Background()))
	assert.Error(t, CreditOverdueJob(fakeCount{err: errors.New("db")}).Run(context.Background()))
}
