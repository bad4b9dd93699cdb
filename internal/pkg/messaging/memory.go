package messaging

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/atomic"
)

const (
	memoryBuffer          = 256
	memoryMaxRedeliveries = 3
)

// Memory is an in-process broker. Every consumer group on a topic receives
// each message once. Messages published before any group exists are held
// and handed to the first group that subscribes.
type Memory struct {
	mu      sync.Mutex
	topics  map[string]map[string]chan *memoryMessage
	backlog map[string][]*memoryMessage

	seq    *atomic.Uint64
	closed *atomic.Bool
	done   chan struct{}
}

// NewMemory returns an empty in-process broker.
func NewMemory() *Memory {
	return &Memory{
		topics:  map[string]map[string]chan *memoryMessage{},
		backlog: map[string][]*memoryMessage{},
		seq:     atomic.NewUint64(0),
		closed:  atomic.NewBool(false),
		done:    make(chan struct{}),
	}
}

// Close stops every running Consume.
func (m *Memory) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	close(m.done)
	return nil
}

// Publish fans msg out to every consumer group of topic.
func (m *Memory) Publish(ctx context.Context, topic string, msg OutgoingMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if topic == "" {
		return ErrTopicRequired
	}
	if m.closed.Load() {
		return ErrClosed
	}

	id := strconv.FormatUint(m.seq.Inc(), 10)

	m.mu.Lock()
	groups := m.topics[topic]
	if len(groups) == 0 {
		m.backlog[topic] = append(m.backlog[topic], m.newMessage(id, topic, msg, nil))
		m.mu.Unlock()
		return nil
	}
	queues := make([]chan *memoryMessage, 0, len(groups))
	for _, q := range groups {
		queues = append(queues, q)
	}
	m.mu.Unlock()

	for _, q := range queues {
		select {
		case q <- m.newMessage(id, topic, msg, q):
		case <-ctx.Done():
			return ctx.Err()
		case <-m.done:
			return ErrClosed
		}
	}
	return nil
}

// Consume delivers messages of topic to handler until ctx is done or the broker closes.
func (m *Memory) Consume(ctx context.Context, topic string, handler Handler, opts ...ConsumeOption) error {
	if topic == "" {
		return ErrTopicRequired
	}
	if handler == nil {
		return ErrHandlerRequired
	}
	if m.closed.Load() {
		return ErrClosed
	}

	co := newConsumeOptions(opts...)
	queue := m.subscribe(topic, co.group)

	var wg sync.WaitGroup
	for range co.concurrency {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-m.done:
					return
				case msg := <-queue:
					//nolint:errcheck // the handler error is already reported through Nack
					_ = deliver(ctx, DriverMemory, msg, handler, co.autoAck)
				}
			}
		})
	}
	wg.Wait()

	if m.closed.Load() {
		return nil
	}
	return ctx.Err()
}

func (m *Memory) subscribe(topic, group string) chan *memoryMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	groups, ok := m.topics[topic]
	if !ok {
		groups = map[string]chan *memoryMessage{}
		m.topics[topic] = groups
	}
	if q, ok := groups[group]; ok {
		return q
	}

	q := make(chan *memoryMessage, memoryBuffer)
	groups[group] = q

	pending := m.backlog[topic]
	delete(m.backlog, topic)
	go func() {
		for _, msg := range pending {
			msg.queue = q
			select {
			case q <- msg:
			case <-m.done:
				return
			}
		}
	}()

	return q
}

func (m *Memory) newMessage(id, topic string, msg OutgoingMessage, q chan *memoryMessage) *memoryMessage {
	return &memoryMessage{
		responder: newResponder(),
		id:        id,
		topic:     topic,
		body:      msg.Body,
		headers:   msg.Headers,
		queue:     q,
		attempts:  atomic.NewInt32(1),
		done:      m.done,
	}
}

type memoryMessage struct {
	responder

	id       string
	topic    string
	body     []byte
	headers  map[string]string
	queue    chan *memoryMessage
	attempts *atomic.Int32
	done     <-chan struct{}
}

func (m *memoryMessage) ID() string    { return m.id }
func (m *memoryMessage) Topic() string { return m.topic }
func (m *memoryMessage) Body() []byte  { return m.body }

func (m *memoryMessage) Header(key string) string { return m.headers[key] }

func (m *memoryMessage) Ack(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.claim()
	return nil
}

// Nack puts the message back on its group queue until the redelivery limit.
func (m *memoryMessage) Nack(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !m.claim() || m.attempts.Load() >= memoryMaxRedeliveries {
		return nil
	}

	retry := *m
	retry.responder = newResponder()
	retry.attempts = atomic.NewInt32(m.attempts.Inc())
	go func() {
		select {
		case m.queue <- &retry:
		case <-m.done:
		}
	}()
	return nil
}
