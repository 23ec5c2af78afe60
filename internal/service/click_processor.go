package service

import (
	"context"
	"sync"
	"time"

	"github.com/Muntazir86/short-it/internal/geoip"
	"github.com/Muntazir86/short-it/internal/metrics"
	"github.com/Muntazir86/short-it/internal/models"
	"github.com/Muntazir86/short-it/internal/repository"
	"github.com/Muntazir86/short-it/internal/useragent"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

const (
	defaultWorkerCount   = 3
	defaultChannelBuffer = 1000
	insertMaxRetries     = 3
	insertBackoff        = 100 * time.Millisecond
	processTimeout       = 5 * time.Second
)

// ClickProcessor consumes redirect click events off the request path.
// Enqueue never blocks; a full buffer drops the event.
type ClickProcessor interface {
	Start()
	Stop()
	Enqueue(ctx context.Context, event *models.ClickEvent) error
}

type clickProcessor struct {
	clickRepo   repository.ClickRepository
	urlRepo     repository.URLRepository
	locator     geoip.Locator
	logger      *zap.Logger
	events      chan *models.ClickEvent
	workerCount int
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

func NewClickProcessor(
	clickRepo repository.ClickRepository,
	urlRepo repository.URLRepository,
	locator geoip.Locator,
	logger *zap.Logger,
) ClickProcessor {
	return &clickProcessor{
		clickRepo:   clickRepo,
		urlRepo:     urlRepo,
		locator:     locator,
		logger:      logger,
		events:      make(chan *models.ClickEvent, defaultChannelBuffer),
		workerCount: defaultWorkerCount,
	}
}

func (p *clickProcessor) Start() {
	p.ctx, p.cancel = context.WithCancel(context.Background())

	p.logger.Info("starting click workers", zap.Int("count", p.workerCount))

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

func (p *clickProcessor) Stop() {
	p.logger.Info("stopping click processor")
	p.cancel()
	p.wg.Wait()
	p.logger.Info("click processor stopped")
}

func (p *clickProcessor) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("click worker started", zap.Int("id", id))

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("click worker stopped", zap.Int("id", id))
			return

		case event, ok := <-p.events:
			if !ok {
				return
			}
			metrics.QueueDepth.Set(float64(len(p.events)))
			p.process(event)
		}
	}
}

// process performs the two independent writes for one click. Each
// failure is logged and counted, never surfaced: the redirect already
// happened. The counter and the click rows may diverge.
func (p *clickProcessor) process(event *models.ClickEvent) {
	ctx, cancel := context.WithTimeout(p.ctx, processTimeout)
	defer cancel()

	ua := useragent.Parse(event.UserAgent)

	loc, err := p.locator.Locate(ctx, event.IPAddress)
	if err != nil {
		p.logger.Warn("geolocation failed",
			zap.String("short_code", event.ShortCode),
			zap.Error(err),
		)
	}

	referrer := event.Referrer
	if referrer == "" {
		referrer = "direct"
	}

	click := &models.Click{
		URLID:      event.URLID,
		ClickedAt:  event.OccurredAt,
		IPAddress:  event.IPAddress,
		Country:    loc.Country,
		City:       loc.City,
		Referrer:   referrer,
		Browser:    ua.Browser,
		OS:         ua.OS,
		DeviceType: ua.DeviceType,
	}

	backoff := retry.WithMaxRetries(insertMaxRetries, retry.NewConstant(insertBackoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := p.clickRepo.Record(ctx, click); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		metrics.ClickInsertFailures.Inc()
		p.logger.Error("failed to record click",
			zap.String("short_code", event.ShortCode),
			zap.Error(err),
		)
	} else {
		metrics.ClicksProcessed.Inc()
	}

	if err := p.urlRepo.IncrementClicks(ctx, event.URLID); err != nil {
		metrics.CounterIncrementFailures.Inc()
		p.logger.Error("failed to increment click counter",
			zap.String("short_code", event.ShortCode),
			zap.Error(err),
		)
	}
}

// Enqueue hands a click event to the worker pool without blocking the
// redirect response.
func (p *clickProcessor) Enqueue(ctx context.Context, event *models.ClickEvent) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case p.events <- event:
		metrics.ClicksEnqueued.Inc()
		metrics.QueueDepth.Set(float64(len(p.events)))
		return nil
	default:
		metrics.ClicksDropped.Inc()
		p.logger.Warn("click buffer full, event dropped",
			zap.String("short_code", event.ShortCode),
		)
		return nil
	}
}
