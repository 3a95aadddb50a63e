package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"resume-importer/internal/bootstrap"
	"resume-importer/internal/shared/config"
	"resume-importer/internal/shared/metrics"
	"resume-importer/internal/shared/telemetry"
	"resume-importer/internal/workerproc"
)

const (
	defaultRegion   = "us-east-1"
	shutdownTimeout = 30 * time.Second
	receiveBatch    = 10
	longPollSeconds = 20
	receiveBackoff  = 2 * time.Second
)

type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// worker long-polls the import queue and runs jobs on a bounded pool.
type worker struct {
	client     sqsAPI
	queueURL   string
	proc       workerproc.Processor
	visibility int32
	now        func() time.Time
}

func main() {
	cfg := config.Load()

	queueURL := strings.TrimSpace(cfg.ImportQueueURL)
	if queueURL == "" {
		log.Fatal("IMPORT_QUEUE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	region := cfg.AWSRegion
	if region == "" {
		region = defaultRegion
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		log.Fatalf("load aws config: %v", err)
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}
	if app.ImportsService == nil {
		log.Fatal("import service not configured")
	}

	w := &worker{
		client:     sqs.NewFromConfig(awsCfg),
		queueURL:   queueURL,
		proc:       app.ImportsService,
		visibility: int32(cfg.VisibilitySeconds),
		now:        time.Now,
	}
	w.run(ctx, max(1, cfg.WorkerConcurrency))
}

// run polls until ctx is cancelled, then waits for in-flight jobs up to shutdownTimeout.
func (w *worker) run(ctx context.Context, concurrency int) {
	telemetry.Info("worker.started", map[string]any{
		"queue":       w.queueURL,
		"concurrency": concurrency,
		"visibility":  w.visibility,
	})

	slots := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	for ctx.Err() == nil {
		msgs, err := w.receive(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				break
			}
			telemetry.Warn("worker.receive_failed", map[string]any{"error": err.Error()})
			select {
			case <-ctx.Done():
			case <-time.After(receiveBackoff):
			}
			continue
		}
		for _, msg := range msgs {
			select {
			case <-ctx.Done():
			case slots <- struct{}{}:
				metrics.IncJob(metrics.JobReceived)
				wg.Add(1)
				go func(m sqstypes.Message) {
					defer wg.Done()
					defer func() { <-slots }()
					// in-flight jobs finish even after shutdown is requested
					w.handle(context.WithoutCancel(ctx), m)
				}(msg)
			}
		}
	}

	telemetry.Info("worker.shutdown", map[string]any{"timeout": shutdownTimeout.String()})
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		telemetry.Warn("worker.shutdown_timeout", map[string]any{"timeout": shutdownTimeout.String()})
	}
}

func (w *worker) receive(ctx context.Context) ([]sqstypes.Message, error) {
	resp, err := w.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(w.queueURL),
		MaxNumberOfMessages: receiveBatch,
		WaitTimeSeconds:     longPollSeconds,
		VisibilityTimeout:   w.visibility,
		AttributeNames:      []sqstypes.QueueAttributeName{sqstypes.QueueAttributeName("ApproximateReceiveCount")},
	})
	if err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// handle runs one message. Bad bodies are deleted, failed imports stay on the
// queue for redelivery and completed ones are deleted.
func (w *worker) handle(ctx context.Context, msg sqstypes.Message) {
	job, err := workerproc.Parse(aws.ToString(msg.Body))
	if err != nil {
		fields := sqsFields(msg)
		var msgErr *workerproc.MessageError
		if errors.As(err, &msgErr) {
			for k, v := range msgErr.Fields() {
				fields[k] = v
			}
		}
		telemetry.Error("worker.import.rejected", fields)
		if w.delete(ctx, msg, fields) {
			metrics.IncJob(metrics.JobDeletedUnrecoverable)
		}
		return
	}

	fields := job.Fields(w.now())
	for k, v := range sqsFields(msg) {
		fields[k] = v
	}
	telemetry.Info("worker.import.received", fields)

	if err := job.Run(ctx, w.proc); err != nil {
		fields["error"] = err.Error()
		var procErr *workerproc.ProcessError
		if errors.As(err, &procErr) {
			fields["error"] = procErr.Err.Error()
		}
		telemetry.Error("worker.import.failed", fields)
		metrics.IncJob(metrics.JobFailed)
		return
	}
	if w.delete(ctx, msg, fields) {
		telemetry.Info("worker.import.completed", fields)
		metrics.IncJob(metrics.JobCompleted)
	}
}

func (w *worker) delete(ctx context.Context, msg sqstypes.Message, fields map[string]any) bool {
	receipt := aws.ToString(msg.ReceiptHandle)
	if receipt == "" {
		telemetry.Error("worker.import.delete_failed", withError(fields, "missing receipt handle"))
		return false
	}
	_, err := w.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(w.queueURL),
		ReceiptHandle: aws.String(receipt),
	})
	if err != nil {
		telemetry.Error("worker.import.delete_failed", withError(fields, err.Error()))
		return false
	}
	return true
}

func withError(fields map[string]any, msg string) map[string]any {
	out := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out["error"] = msg
	return out
}

func sqsFields(msg sqstypes.Message) map[string]any {
	return map[string]any{
		"sqs_message_id": aws.ToString(msg.MessageId),
		"receive_count":  receiveCount(msg),
	}
}

func receiveCount(msg sqstypes.Message) int {
	n, err := strconv.Atoi(msg.Attributes["ApproximateReceiveCount"])
	if err != nil {
		return 0
	}
	return n
}
