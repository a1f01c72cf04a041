package natsstan

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/example/storefront-console/internal/domain"
	stan "github.com/nats-io/stan.go"
)

// Transport — транспорт каналов событий поверх NATS Streaming.
// Каждый Subscribe открывает отдельное соединение, закрываемое вместе
// с каналом.
type Transport struct {
	ClusterID string
	ClientID  string
	URL       string
}

// Subscribe открывает подписку на топик. Возврат без ошибки означает,
// что сервер подтвердил подписку; до этого событиям доверять нельзя.
func (t *Transport) Subscribe(ctx context.Context, topic string) (domain.Channel, error) {
	clientID := t.ClientID
	if clientID == "" {
		clientID = fmt.Sprintf("console-%d", time.Now().UnixNano())
	}

	ch := &channel{
		events:  make(chan domain.BroadcastEvent),
		pending: make(chan domain.BroadcastEvent, 64),
		done:    make(chan struct{}),
	}

	sc, err := stan.Connect(t.ClusterID, clientID, stan.NatsURL(t.URL),
		stan.SetConnectionLostHandler(func(_ stan.Conn, reason error) {
			// потеря транспорта: событий больше не будет, новую
			// подписку откроет следующее переключение витрины
			log.Printf("stan connection lost: %v", reason)
			_ = ch.Close()
		}))
	if err != nil {
		return nil, err
	}
	ch.conn = sc

	sub, err := sc.Subscribe(topic, func(m *stan.Msg) {
		var ev domain.BroadcastEvent
		if err := json.Unmarshal(m.Data, &ev); err != nil {
			log.Printf("broadcast decode: %v", err)
			return
		}
		select {
		case ch.pending <- ev:
		case <-ch.done:
		}
	})
	if err != nil {
		sc.Close()
		return nil, err
	}
	ch.sub = sub

	go ch.forward()
	go func() {
		select {
		case <-ctx.Done():
			_ = ch.Close()
		case <-ch.done:
		}
	}()
	return ch, nil
}

var _ domain.ChannelTransport = (*Transport)(nil)

// channel — одна живая подписка.
type channel struct {
	conn    stan.Conn
	sub     stan.Subscription
	events  chan domain.BroadcastEvent
	pending chan domain.BroadcastEvent
	done    chan struct{}
	once    sync.Once
}

// forward переливает события подписки потребителю, сохраняя порядок;
// только он закрывает events.
func (c *channel) forward() {
	defer close(c.events)
	for {
		select {
		case ev := <-c.pending:
			select {
			case c.events <- ev:
			case <-c.done:
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *channel) Events() <-chan domain.BroadcastEvent {
	return c.events
}

func (c *channel) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		if c.sub != nil {
			if e := c.sub.Close(); e != nil {
				err = e
			}
		}
		if e := c.conn.Close(); e != nil && err == nil {
			err = e
		}
	})
	return err
}

var _ domain.Channel = (*channel)(nil)
