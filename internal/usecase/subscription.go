package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/example/storefront-console/internal/bus"
	"github.com/example/storefront-console/internal/domain"
)

// SubscriptionState — состояние жизненного цикла подписки.
type SubscriptionState int

const (
	SubscriptionIdle SubscriptionState = iota
	SubscriptionOpening
	SubscriptionListening
	SubscriptionClosed
)

// SubscriptionManager — владеет не более чем одним живым каналом
// событий, привязанным к активной витрине. Переподключение при потере
// транспорта не выполняется: новая подписка открывается следующим
// Start после переключения витрины.
type SubscriptionManager struct {
	Resolver  *ActiveStoreResolver
	Transport domain.ChannelTransport
	Workflow  *OrderAlertWorkflow
	Bus       *bus.Bus

	// startMu сериализует весь цикл Start/Stop: между закрытием
	// старого канала и сохранением нового не должен вклиниться
	// конкурентный запуск, иначе открытых подписок станет две.
	startMu sync.Mutex

	mu       sync.Mutex
	state    SubscriptionState
	channel  domain.Channel
	inFlight map[string]struct{}
}

// State возвращает текущее состояние жизненного цикла.
func (m *SubscriptionManager) State() SubscriptionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Start открывает подписку для текущей активной витрины. Если витрина
// не разрешилась — no-op. Уже открытый канал закрывается до открытия
// нового: одновременно живёт не более одной подписки. Переданный ctx
// ограничивает сессию оператора, а не один канал; закрытие канала
// выполняется через Stop.
func (m *SubscriptionManager) Start(ctx context.Context) error {
	m.startMu.Lock()
	defer m.startMu.Unlock()

	m.mu.Lock()
	if m.channel != nil {
		_ = m.channel.Close()
		m.channel = nil
	}
	m.state = SubscriptionIdle
	m.mu.Unlock()

	sf, ok, err := m.Resolver.Resolve(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	m.mu.Lock()
	m.state = SubscriptionOpening
	m.mu.Unlock()

	ch, err := m.Transport.Subscribe(ctx, sf.Topic())
	if err != nil {
		// неудачная подписка оставляет менеджер в Idle, не в
		// полумёртвом Listening
		m.mu.Lock()
		m.state = SubscriptionIdle
		m.mu.Unlock()
		return fmt.Errorf("subscribe %s: %w", sf.Topic(), err)
	}

	m.mu.Lock()
	m.channel = ch
	m.state = SubscriptionListening
	if m.inFlight == nil {
		m.inFlight = make(map[string]struct{})
	}
	m.mu.Unlock()

	go m.listen(ctx, ch, sf)
	return nil
}

// Stop закрывает открытый канал; дальнейшие события не обрабатываются.
// Уже запущенные циклы обработки заказов доводятся до конца.
func (m *SubscriptionManager) Stop() {
	m.startMu.Lock()
	defer m.startMu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.channel != nil {
		_ = m.channel.Close()
		m.channel = nil
	}
	m.state = SubscriptionClosed
}

// listen потребляет события канала до его закрытия. Цикл не ждёт
// завершения обработки заказа: для каждого нового заказа запускается
// независимая задача.
func (m *SubscriptionManager) listen(ctx context.Context, ch domain.Channel, sf domain.Storefront) {
	for ev := range ch.Events() {
		if ev.Event != domain.EventOrderCreated {
			continue
		}
		var ref domain.OrderRef
		if err := json.Unmarshal(ev.Data, &ref); err != nil || ref.ID == "" {
			log.Printf("broadcast %s: bad order reference", ev.Event)
			continue
		}
		m.Bus.Publish(bus.EventOrderBroadcasted, bus.OrderBroadcast{Storefront: sf, Event: ev})
		if !m.begin(ref.ID) {
			// заказ уже в обработке, второго предъявления не будет
			continue
		}
		go func(id string) {
			defer m.end(id)
			if err := m.Workflow.Handle(ctx, id, sf); err != nil {
				log.Printf("order workflow %s: %v", id, err)
			}
		}(ref.ID)
	}
	m.mu.Lock()
	if m.channel == ch {
		m.channel = nil
		m.state = SubscriptionClosed
	}
	m.mu.Unlock()
}

func (m *SubscriptionManager) begin(orderID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, busy := m.inFlight[orderID]; busy {
		return false
	}
	m.inFlight[orderID] = struct{}{}
	return true
}

func (m *SubscriptionManager) end(orderID string) {
	m.mu.Lock()
	delete(m.inFlight, orderID)
	m.mu.Unlock()
}
