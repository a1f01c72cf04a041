package bus

import (
	"sync"

	"github.com/example/storefront-console/internal/domain"
)

// Имена событий консоли.
const (
	EventStorefrontChanged = "storefront.changed"
	EventOrderIncoming     = "order.incoming"
	EventOrderBroadcasted  = "order.broadcasted"
	EventOrderAccepted     = "order.accepted"
)

// OrderIncoming — полезная нагрузка события order.incoming.
type OrderIncoming struct {
	Order      domain.Order
	Storefront domain.Storefront
}

// OrderBroadcast — полезная нагрузка события order.broadcasted.
type OrderBroadcast struct {
	Storefront domain.Storefront
	Event      domain.BroadcastEvent
}

// Handler — обработчик события шины.
type Handler func(payload any)

// Bus — синхронная внутрипроцессная шина публикации/подписки по
// имени события. Доставка в порядке регистрации, не более одного
// вызова обработчика на публикацию, без персистентности.
type Bus struct {
	mu       sync.Mutex
	nextID   int
	handlers map[string][]subscription
}

type subscription struct {
	id int
	fn Handler
}

func New() *Bus {
	return &Bus{handlers: make(map[string][]subscription)}
}

// Subscribe регистрирует обработчик и возвращает функцию отписки.
func (b *Bus) Subscribe(event string, fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.handlers[event] = append(b.handlers[event], subscription{id: id, fn: fn})
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.handlers[event]
		for i, s := range subs {
			if s.id == id {
				b.handlers[event] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish синхронно доставляет payload всем зарегистрированным на
// момент вызова обработчикам.
func (b *Bus) Publish(event string, payload any) {
	b.mu.Lock()
	subs := make([]subscription, len(b.handlers[event]))
	copy(subs, b.handlers[event])
	b.mu.Unlock()
	for _, s := range subs {
		s.fn(payload)
	}
}
