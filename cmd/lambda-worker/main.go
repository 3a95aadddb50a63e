package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"resume-importer/internal/bootstrap"
	"resume-importer/internal/shared/config"
	"resume-importer/internal/shared/metrics"
	"resume-importer/internal/shared/telemetry"
	"resume-importer/internal/workerproc"
)

// batchHandler builds the import service once per cold start and runs SQS batches.
type batchHandler struct {
	build func() (workerproc.Processor, error)
	now   func() time.Time

	once sync.Once
	proc workerproc.Processor
	err  error
}

func newBatchHandler() *batchHandler {
	return &batchHandler{
		build: func() (workerproc.Processor, error) {
			app, err := bootstrap.Build(config.Load())
			if err != nil {
				return nil, err
			}
			if app.ImportsService == nil {
				return nil, errors.New("import service not configured")
			}
			return app.ImportsService, nil
		},
		now: time.Now,
	}
}

// Handle reports every record as failed when bootstrap fails so SQS redelivers them.
func (h *batchHandler) Handle(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	h.once.Do(func() { h.proc, h.err = h.build() })
	if h.err != nil {
		telemetry.Error("lambda_worker.bootstrap_failed", map[string]any{
			"error":   h.err.Error(),
			"records": len(event.Records),
		})
		failures := make([]events.SQSBatchItemFailure, 0, len(event.Records))
		for _, record := range event.Records {
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		}
		return events.SQSEventResponse{BatchItemFailures: failures}, nil
	}
	return h.run(ctx, event), nil
}

// run reports retryable failures only. Bodies that can never be processed are dropped.
func (h *batchHandler) run(ctx context.Context, event events.SQSEvent) events.SQSEventResponse {
	var failures []events.SQSBatchItemFailure
	for _, record := range event.Records {
		metrics.IncJob(metrics.JobReceived)

		job, err := workerproc.Parse(record.Body)
		if err != nil {
			fields := map[string]any{"sqs_message_id": record.MessageId, "error": err.Error()}
			var msgErr *workerproc.MessageError
			if errors.As(err, &msgErr) {
				for k, v := range msgErr.Fields() {
					fields[k] = v
				}
			}
			telemetry.Error("lambda_worker.import.dropped", fields)
			metrics.IncJob(metrics.JobDeletedUnrecoverable)
			continue
		}

		fields := job.Fields(h.now())
		fields["sqs_message_id"] = record.MessageId
		if err := job.Run(ctx, h.proc); err != nil {
			fields["error"] = err.Error()
			telemetry.Error("lambda_worker.import.failed", fields)
			metrics.IncJob(metrics.JobFailed)
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
			continue
		}
		telemetry.Info("lambda_worker.import.completed", fields)
		metrics.IncJob(metrics.JobCompleted)
	}
	return events.SQSEventResponse{BatchItemFailures: failures}
}

func main() {
	lambda.Start(newBatchHandler().Handle)
}
