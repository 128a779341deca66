package bus

import (
	"context"
	"log"
	"time"

	"github.com/hcm-console/project-factory/internal/domain"
	"github.com/hcm-console/project-factory/internal/repository"
)

// Topics routed by the row sink.
const (
	TopicSaveResourceData   = "save-resource-data"
	TopicUpdateResourceData = "update-resource-data"
	TopicSaveMappingData    = "save-mapping-data"
	TopicUpdateMappingData  = "update-mapping-data"
)

// Message is one batch of row or mapping upserts.
type Message struct {
	Rows     []domain.CampaignRow
	Mappings []domain.CampaignMappingRow
}

// Producer is the fire-and-forget row sink. Delivery is asynchronous and
// at-least-once; no ack is surfaced to the caller. Callers that read their
// own writes must wait out the settle delay first.
type Producer interface {
	Push(topic string, msg Message)
}

type envelope struct {
	topic string
	msg   Message
}

// StoreProducer applies pushed messages to the row and mapping stores from a
// single background worker, preserving push order.
type StoreProducer struct {
	rows     repository.RowRepository
	mappings repository.MappingRepository
	queue    chan envelope
	done     chan struct{}
}

// NewStoreProducer starts the background worker. Close must be called to
// drain the queue on shutdown.
func NewStoreProducer(rows repository.RowRepository, mappings repository.MappingRepository, buffer int) *StoreProducer {
	if buffer <= 0 {
		buffer = 1024
	}
	p := &StoreProducer{
		rows:     rows,
		mappings: mappings,
		queue:    make(chan envelope, buffer),
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

// Push enqueues a batch. It blocks only when the buffer is full.
func (p *StoreProducer) Push(topic string, msg Message) {
	p.queue <- envelope{topic: topic, msg: msg}
}

// Close stops accepting messages and drains everything already queued.
func (p *StoreProducer) Close() {
	close(p.queue)
	<-p.done
}

func (p *StoreProducer) run() {
	defer close(p.done)
	for env := range p.queue {
		p.apply(env)
	}
}

func (p *StoreProducer) apply(env envelope) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var err error
	switch env.topic {
	case TopicSaveResourceData, TopicUpdateResourceData:
		err = p.rows.Upsert(ctx, env.msg.Rows)
	case TopicSaveMappingData, TopicUpdateMappingData:
		err = p.mappings.Upsert(ctx, env.msg.Mappings)
	default:
		log.Printf("[BUS] dropping message for unknown topic %q", env.topic)
		return
	}

	if err != nil {
		// One retry, then log and move on. The reconciliation pass picks
		// missing rows back up on the next upload.
		if retryErr := p.retry(env); retryErr != nil {
			log.Printf("[BUS] failed to apply %s message after retry: %v", env.topic, retryErr)
		}
	}
}

func (p *StoreProducer) retry(env envelope) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch env.topic {
	case TopicSaveResourceData, TopicUpdateResourceData:
		return p.rows.Upsert(ctx, env.msg.Rows)
	case TopicSaveMappingData, TopicUpdateMappingData:
		return p.mappings.Upsert(ctx, env.msg.Mappings)
	}
	return nil
}
