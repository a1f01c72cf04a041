package domain

import "context"

// PrefActiveStorefront — ключ настройки активной витрины.
const PrefActiveStorefront = "activeStorefront"

// PreferenceStore — порт долговременных настроек оператора.
type PreferenceStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// StorefrontCache — порт локального представления известных витрин.
// All возвращает витрины в порядке добавления.
type StorefrontCache interface {
	All() []Storefront
	ByID(id string) (Storefront, bool)
	Put(s Storefront)
}

// StorefrontRepository — порт персистентности витрин.
type StorefrontRepository interface {
	Upsert(ctx context.Context, id string, raw []byte) error
	LoadAll(ctx context.Context, fn func(id string, raw []byte) error) error
}

// Channel — живая подписка на топик широковещательных событий.
type Channel interface {
	// Events — упорядоченная последовательность событий; канал
	// закрывается после Close либо при потере транспорта.
	Events() <-chan BroadcastEvent
	Close() error
}

// ChannelTransport — порт открытия подписок на именованные топики.
// Subscribe возвращает Channel только после подтверждения подписки
// сервером.
type ChannelTransport interface {
	Subscribe(ctx context.Context, topic string) (Channel, error)
}

// OrderGateway — порт сетевых операций над заказами.
type OrderGateway interface {
	// Fetch запрашивает полный заказ по публичному идентификатору
	// вместе со связанными customer, payload и trackingNumber.
	Fetch(ctx context.Context, publicID string) (Order, error)
	// Accept запрашивает принятие заказа. Не более одного
	// одновременного вызова на заказ обеспечивает вызывающий.
	Accept(ctx context.Context, orderID string) error
}

// Decision — решение оператора по предъявленному заказу.
type Decision int

const (
	DecisionAccept Decision = iota + 1
	DecisionDecline
)

// Alert — данные, предъявляемые оператору для решения.
type Alert struct {
	Order      Order
	Storefront Storefront
}

// Presentation — открытое предъявление заказа оператору.
type Presentation interface {
	// Decisions — решения оператора; канал закрывается, когда
	// предъявление закрыто.
	Decisions() <-chan Decision
	SetBusy(busy bool)
	NotifyError(msg string)
	Close()
}

// AlertPresenter — порт поверхности подтверждения заказа.
type AlertPresenter interface {
	Show(ctx context.Context, a Alert) (Presentation, error)
}

// Chime — порт звукового оповещения; ошибки воспроизведения
// вызывающий игнорирует.
type Chime interface {
	Play() error
}

// Общие доменные ошибки
var (
	ErrNotFound   = notFoundError("not found")
	ErrValidation = validationError("invalid data")
)

type notFoundError string

func (e notFoundError) Error() string { return string(e) }

type validationError string

func (e validationError) Error() string { return string(e) }
