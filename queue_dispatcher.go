package renderdoc

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cordata-io/renderdoc/internal/config"
	"github.com/cordata-io/renderdoc/internal/hints"
)

// Delivery is a single envelope handed to the dispatcher by a Queue
// transport, along with the attempt count the transport has tracked for
// it so far (0 on first delivery).
type Delivery struct {
	Envelope RenderEnvelope
	Attempt  int
}

// Queue is the transport contract. The dispatcher is transport-
// agnostic: it receives deliveries, executes the pipeline, and tells the
// transport whether to ack, retry, or dead-letter — the transport owns
// the broker-specific mechanics (partitioning, offsets, redelivery).
type Queue interface {
	// Receive blocks until a delivery is available or ctx is done.
	Receive(ctx context.Context) (Delivery, error)
	// Ack confirms successful processing of a delivery.
	Ack(ctx context.Context, d Delivery) error
	// Retry schedules redelivery of d after delay.
	Retry(ctx context.Context, d Delivery, delay time.Duration) error
	// DeadLetter routes a delivery that exhausted its retry budget.
	DeadLetter(ctx context.Context, d Delivery) error
	// Publish sends a reply envelope back on the transport's return
	// route for the delivery it answers.
	Publish(ctx context.Context, reply ReplyEnvelope) error
}

// QueueDispatcher is the queue-mode dispatcher: for each correlated
// envelope it runs the pipeline, forms a reply, and records a metric,
// bounding its in-flight work to cfg.MaxConcurrentRenders.
type QueueDispatcher struct {
	pipeline *Pipeline
	queue    Queue
	cfg      config.QueueConfig
	metrics  *Metrics
	logger   *slog.Logger
}

// NewQueueDispatcher builds a QueueDispatcher. It logs a warning when
// cfg.MaxConcurrentRenders exceeds the pool's maxSize, but does not
// refuse to start — the invariant violation degrades to POOL_TIMEOUT
// under load rather than being fatal.
func NewQueueDispatcher(pipeline *Pipeline, queue Queue, cfg config.QueueConfig, poolMaxSize int, metrics *Metrics, logger *slog.Logger) *QueueDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxConcurrentRenders > poolMaxSize {
		logger.Warn("queue.maxConcurrentRenders exceeds browserPool.maxSize; expect POOL_TIMEOUT under load",
			"maxConcurrentRenders", cfg.MaxConcurrentRenders, "poolMaxSize", poolMaxSize)
	}
	return &QueueDispatcher{
		pipeline: pipeline,
		queue:    queue,
		cfg:      cfg,
		metrics:  metrics,
		logger:   logger.With("component", "queue_dispatcher"),
	}
}

// Run consumes deliveries until ctx is cancelled, dispatching each one
// to a bounded pool of concurrent handlers.
func (d *QueueDispatcher) Run(ctx context.Context) error {
	limit := d.cfg.MaxConcurrentRenders
	if limit <= 0 {
		limit = 1
	}

	var g errgroup.Group
	g.SetLimit(limit)

	for {
		select {
		case <-ctx.Done():
			return g.Wait()
		default:
		}

		delivery, err := d.queue.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return g.Wait()
			}
			d.logger.Error("receive failed", "error", err)
			continue
		}

		g.Go(func() error {
			d.handle(ctx, delivery)
			return nil
		})
	}
}

// handle executes the pipeline for one delivery and tells the transport
// whether to ack, retry, or dead-letter it.
func (d *QueueDispatcher) handle(ctx context.Context, delivery Delivery) {
	env := delivery.Envelope
	logger := d.logger.With("correlationId", env.CorrelationID, "documentType", env.Template.DocumentType)

	req := NewRenderRequest(env.CorrelationID, env.Template, env.RequestedAt)
	result, err := d.pipeline.Execute(ctx, req)

	if err != nil {
		d.recordOutcome("failure", 0, err)
		d.retryOrDeadLetter(ctx, delivery, err, logger)
		return
	}

	reply, err := d.formSuccessReply(env, result)
	if err != nil {
		// The render itself succeeded but the reply couldn't be formed
		// (e.g. writePdfToDisk hit a disk error): this is IO_OUTPUT, and
		// per the error taxonomy it goes through the same retry/backoff/
		// dead-letter path as a pipeline failure, not a silent Ack.
		logger.Error("forming success reply", "error", err)
		d.recordOutcome("failure", result.ElapsedTime, err)
		d.retryOrDeadLetter(ctx, delivery, err, logger)
		return
	}

	d.recordOutcome("success", result.ElapsedTime, nil)

	if err := d.queue.Publish(ctx, reply); err != nil {
		logger.Error("publishing reply", "error", err)
	}
	if err := d.queue.Ack(ctx, delivery); err != nil {
		logger.Error("acking delivery", "error", err)
	}
}

// retryOrDeadLetter implements the retry and dead-letter policy:
// retryable failures within budget are handed back to the transport for
// redelivery with exponential backoff; everything else gets a failure
// reply and goes to the dead-letter route.
func (d *QueueDispatcher) retryOrDeadLetter(ctx context.Context, delivery Delivery, cause error, logger *slog.Logger) {
	kind := KindOf(cause)
	nextAttempt := delivery.Attempt + 1

	if kind.IsRetryable() && nextAttempt <= d.cfg.MaxRetries {
		backoff := calculateBackoff(d.cfg.RetryDelay, nextAttempt)
		logger.Warn("render failed, scheduling retry", "attempt", nextAttempt, "backoff", backoff, "error", cause)
		if d.metrics != nil {
			d.metrics.QueueRetriesTotal.Inc()
		}
		if err := d.queue.Retry(ctx, Delivery{Envelope: delivery.Envelope, Attempt: nextAttempt}, backoff); err != nil {
			logger.Error("scheduling retry", "error", err)
		}
		return
	}

	logger.Error("render failed permanently", "attempt", nextAttempt, "error", cause)
	if d.metrics != nil {
		d.metrics.QueueDeadLetters.Inc()
	}
	reply := failureReply(delivery.Envelope, cause)
	if err := d.queue.Publish(ctx, reply); err != nil {
		logger.Error("publishing failure reply", "error", err)
	}
	if err := d.queue.DeadLetter(ctx, delivery); err != nil {
		logger.Error("dead-lettering delivery", "error", err)
	}
}

// calculateBackoff computes the exponential backoff formula exactly:
// retryDelay × 2^(attempt-1).
func calculateBackoff(retryDelay time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	shift := attempt - 1
	if shift > 20 {
		shift = 20 // guards against time.Duration overflow on pathological attempt counts.
	}
	return retryDelay << shift
}

// formSuccessReply builds the success reply: inline base64 when
// requested, otherwise an on-disk path under PdfOutputPath.
func (d *QueueDispatcher) formSuccessReply(env RenderEnvelope, result RenderResult) (ReplyEnvelope, error) {
	reply := ReplyEnvelope{
		CorrelationID: env.CorrelationID,
		DeviceID:      env.DeviceID,
		SessionID:     env.SessionID,
		DocumentType:  result.DocumentType,
		Success:       true,
		ElapsedTime:   result.ElapsedTime,
		CompletedAt:   time.Now().UTC(),
	}

	if env.InlineReply() {
		reply.PDFBase64 = base64.StdEncoding.EncodeToString(result.PDFBytes)
		return reply, nil
	}

	path, err := d.writePdfToDisk(result)
	if err != nil {
		return ReplyEnvelope{}, NewRenderError(KindIOOutput, fmt.Errorf("%w: %v", ErrIOOutput, err))
	}
	reply.PDFPath = path
	return reply, nil
}

// writePdfToDisk writes result's PDF bytes to
// <pdfOutputPath>/<documentType>_<correlationId hex>.pdf, creating
// parent directories as needed. Overwrite semantics are intentional:
// the retry/dead-letter policy allows re-execution of the same
// correlation id.
func (d *QueueDispatcher) writePdfToDisk(result RenderResult) (string, error) {
	if err := os.MkdirAll(d.cfg.PdfOutputPath, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w%s", err, hints.ForOutputDirectory())
	}

	name := outputFileName(result.DocumentType, result.JobID)
	path := filepath.Join(d.cfg.PdfOutputPath, name)
	if err := os.WriteFile(path, result.PDFBytes, 0o644); err != nil {
		return "", fmt.Errorf("writing PDF: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}

// outputFileName builds the output filename:
// <documentType>_<id-without-dashes>.pdf.
func outputFileName(documentType, id string) string {
	return fmt.Sprintf("%s_%s.pdf", sanitizeFileComponent(documentType), strings.ReplaceAll(id, "-", ""))
}

func sanitizeFileComponent(s string) string {
	if s == "" {
		return "document"
	}
	return s
}

// failureReply builds a failure reply: it carries no PDF, only the
// cause's message.
func failureReply(env RenderEnvelope, cause error) ReplyEnvelope {
	return ReplyEnvelope{
		CorrelationID: env.CorrelationID,
		DeviceID:      env.DeviceID,
		SessionID:     env.SessionID,
		DocumentType:  env.Template.DocumentType,
		Success:       false,
		ErrorMessage:  cause.Error(),
		CompletedAt:   time.Now().UTC(),
	}
}

func (d *QueueDispatcher) recordOutcome(outcome string, elapsed time.Duration, err error) {
	if d.metrics == nil {
		return
	}
	kind := string(KindOf(err))
	if kind == "" {
		kind = "none"
	}
	d.metrics.observeRender(kind, outcome, elapsed.Seconds())
}
