// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler reports a failed job back to the engine.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// JobOutcome is what the engine is told about a failed job.
type JobOutcome struct {
	// Throw routes the failure into the process model as a BPMN error. When false the job is
	// failed and the engine retries it Retries more times.
	Throw   bool
	Retries int32
	BPMN    *BPMNError
}

// ResolveJobFailure decides between a retried failure and a BPMN error. remaining is the
// job's retry budget as reported by the engine; the result never exceeds it.
func ResolveJobFailure(err error, remaining int32) JobOutcome {
	stdErr := AsStandardError(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	want := int32(GetRetryCount(stdErr.Code))
	if !stdErr.Retryable || want == 0 || remaining <= 0 {
		return JobOutcome{Throw: true, BPMN: bpmnErr}
	}
	if remaining <= want {
		want = remaining - 1
	}
	return JobOutcome{Retries: want, BPMN: bpmnErr}
}

func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	outcome := ResolveJobFailure(err, job.Retries)
	stdErr := AsStandardError(err)

	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        string(stdErr.Code),
		"bpmnErrorCode":    outcome.BPMN.Code,
		"details":          stdErr.Details,
		"thrown":           outcome.Throw,
		"retries":          outcome.Retries,
		"errorCategory":    GetErrorCategory(stdErr.Code),
		"workflowInstance": job.ProcessInstanceKey,
	})

	vars := outcome.BPMN.ToErrorVariables()
	if outcome.Throw {
		cmd := client.NewThrowErrorCommand().
			JobKey(job.Key).
			ErrorCode(outcome.BPMN.Code).
			ErrorMessage(outcome.BPMN.Message)
		raw, _ := json.Marshal(vars)
		if withVars, verr := cmd.VariablesFromString(string(raw)); verr == nil {
			_, err = withVars.Send(ctx)
		} else {
			_, err = cmd.Send(ctx)
		}
	} else {
		cmd := client.NewFailJobCommand().
			JobKey(job.Key).
			Retries(outcome.Retries).
			ErrorMessage(outcome.BPMN.Message)
		if withVars, verr := cmd.VariablesFromMap(vars); verr == nil {
			_, err = withVars.Send(ctx)
		} else {
			_, err = cmd.Send(ctx)
		}
	}
	if err != nil {
		h.logger.Error("failed to report job failure", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}
