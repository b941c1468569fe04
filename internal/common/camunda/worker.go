package camunda

import (
	"context"
	"encoding/json"
	"time"

	"laundry-workers/internal/common/config"
	"laundry-workers/internal/common/errors"
	"laundry-workers/internal/common/logger"
	"laundry-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// Executor runs one operation over decoded job variables.
type Executor[In any, Out any] func(ctx context.Context, input *In) (*Out, error)

// StartWorker opens a job worker for taskType unless it is disabled in config.
func StartWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), log *zap.Logger) worker.JobWorker {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return nil
	}

	w := client.NewJobWorker().
		JobType(taskType).
		Handler(handlerFunc).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
	return w
}

// reportTimeout bounds the complete/fail/throw command. It runs on its own context so a job
// that used its whole budget can still be reported instead of timing out and running again.
const reportTimeout = 10 * time.Second

// jobReporter tells the engine how a job ended.
type jobReporter interface {
	Complete(ctx context.Context, job entities.Job, output interface{}) error
	Fail(ctx context.Context, job entities.Job, err error)
}

type zeebeReporter struct {
	client worker.JobClient
	errs   *errors.ErrorHandler
}

func (r zeebeReporter) Complete(ctx context.Context, job entities.Job, output interface{}) error {
	cmd, err := r.client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		return err
	}
	_, err = cmd.Send(ctx)
	return err
}

func (r zeebeReporter) Fail(ctx context.Context, job entities.Job, err error) {
	r.errs.HandleJobError(ctx, r.client, job, err)
}

// HandleJob decodes the job variables, runs exec and completes the job with its output.
// Errors are routed through the ErrorHandler so business outcomes become BPMN errors and
// technical failures are retried by the engine.
func HandleJob[In any, Out any](
	client worker.JobClient,
	job entities.Job,
	timeout time.Duration,
	log logger.Logger,
	exec Executor[In, Out],
) {
	runJob(zeebeReporter{client: client, errs: errors.NewErrorHandler(log)}, job, timeout, log, exec)
}

func runJob[In any, Out any](
	reporter jobReporter,
	job entities.Job,
	timeout time.Duration,
	log logger.Logger,
	exec Executor[In, Out],
) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(job.Type).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(job.Type).Dec()

	log.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input In
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(job.Type, string(errors.ErrCodeValidationFailed)).Inc()
		reportCtx, cancel := context.WithTimeout(context.Background(), reportTimeout)
		defer cancel()
		reporter.Fail(reportCtx, job, errors.NewValidationError("parse input: "+err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	output, err := exec(ctx, &input)
	cancel()
	metrics.WorkerJobDuration.WithLabelValues(job.Type).Observe(time.Since(start).Seconds())

	reportCtx, cancelReport := context.WithTimeout(context.Background(), reportTimeout)
	defer cancelReport()

	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(job.Type, string(errors.AsStandardError(err).Code)).Inc()
		reporter.Fail(reportCtx, job, err)
		return
	}

	if err := reporter.Complete(reportCtx, job, output); err != nil {
		log.Error("failed to complete job", map[string]interface{}{"jobKey": job.Key, "error": err})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(job.Type).Inc()
	log.Info("job completed", map[string]interface{}{
		"jobKey":   job.Key,
		"duration": time.Since(start).String(),
	})
}
