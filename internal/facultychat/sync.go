package facultychat

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Значения по умолчанию для опроса переписки
const (
	DefaultPollInterval   = 3 * time.Second
	DefaultRequestTimeout = 10 * time.Second
)

// Poller вызывает fetch сразу и затем на каждом тике до остановки.
// Медленный fetch откладывает следующий, тики не копятся.
type Poller struct {
	interval time.Duration
	fetch    func(ctx context.Context)
	logger   *zap.Logger

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewPoller создаёт новый поллер
func NewPoller(interval time.Duration, fetch func(ctx context.Context), logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		interval: interval,
		fetch:    fetch,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start запускает цикл в отдельной горутине
func (p *Poller) Start(ctx context.Context) {
	go p.run(ctx)
}

// Stop останавливает цикл. Уже начатый запрос не отменяется.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopChan)
	})
}

func (p *Poller) run(ctx context.Context) {
	// Первый запрос сразу при старте
	p.fetch(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// Stop мог случиться, пока ждали тик
			select {
			case <-p.stopChan:
				return
			default:
			}
			p.fetch(ctx)
		case <-p.stopChan:
			p.logger.Debug("Poller stopped")
			return
		case <-ctx.Done():
			p.logger.Debug("Poller cancelled")
			return
		}
	}
}
