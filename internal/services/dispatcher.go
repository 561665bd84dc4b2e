package services

import (
	"context"
	"log"
	"sync"
	"time"

	"authway/internal/models"
)

const (
	dispatchBuffer     = 64
	dispatchAttempts   = 3
	dispatchRetryDelay = 2 * time.Second
)

// NotificationJob — задание на доставку кода. Кладётся в очередь из
// request-пути и доставляется воркером в фоне.
type NotificationJob struct {
	Channel     models.AuthType
	Destination string
	Code        string
	ExpiresAt   time.Time
}

// CodeSender — одна нога доставки (email или SMS).
type CodeSender interface {
	SendCode(destination, code string, expiresAt time.Time) error
}

// Dispatcher — фоновая очередь уведомлений: request-путь только кладёт
// job и возвращается, сбой доставки никогда не валит запрос.
type Dispatcher struct {
	jobs  chan NotificationJob
	email CodeSender
	sms   CodeSender
	wg    sync.WaitGroup

	attempts   int
	retryDelay time.Duration
}

func NewDispatcher(email, sms CodeSender) *Dispatcher {
	return &Dispatcher{
		jobs:       make(chan NotificationJob, dispatchBuffer),
		email:      email,
		sms:        sms,
		attempts:   dispatchAttempts,
		retryDelay: dispatchRetryDelay,
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case job, ok := <-d.jobs:
				if !ok {
					return
				}
				d.deliver(job)
			}
		}
	}()
}

// Enqueue — неблокирующая постановка. Переполненная очередь — дроп с логом,
// не ожидание: доставка best-effort.
func (d *Dispatcher) Enqueue(job NotificationJob) {
	select {
	case d.jobs <- job:
	default:
		log.Printf("[notify][enqueue] queue full, dropping job: channel=%s dest=%s", job.Channel, job.Destination)
	}
}

// Stop — дорабатываем очередь и останавливаем воркер.
func (d *Dispatcher) Stop() {
	close(d.jobs)
	d.wg.Wait()
}

func (d *Dispatcher) deliver(job NotificationJob) {
	sender := d.email
	if job.Channel == models.AuthTypePhone {
		sender = d.sms
	}
	if sender == nil {
		log.Printf("[notify][deliver] no sender for channel=%s, dropping", job.Channel)
		return
	}

	var err error
	for attempt := 1; attempt <= d.attempts; attempt++ {
		if err = sender.SendCode(job.Destination, job.Code, job.ExpiresAt); err == nil {
			log.Printf("[notify][deliver] ok: channel=%s dest=%s attempt=%d", job.Channel, job.Destination, attempt)
			return
		}
		log.Printf("[notify][deliver] failed: channel=%s dest=%s attempt=%d err=%v", job.Channel, job.Destination, attempt, err)
		if attempt < d.attempts {
			time.Sleep(d.retryDelay)
		}
	}
	log.Printf("[notify][deliver] giving up: channel=%s dest=%s err=%v", job.Channel, job.Destination, err)
}
