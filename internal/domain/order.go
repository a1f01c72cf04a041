package domain

import "encoding/json"

// Статусы заказа; переходы назначает сервер, ядро консоли лишь
// запрашивает их.
const (
	OrderStatusPending  = "pending"
	OrderStatusAccepted = "accepted"
	OrderStatusDeclined = "declined"
)

// Order — доменная сущность заказа.
type Order struct {
	ID             string          `json:"id"`
	PublicID       string          `json:"public_id"`
	Customer       json.RawMessage `json:"customer"`
	Payload        json.RawMessage `json:"payload"`
	TrackingNumber string          `json:"tracking_number"`
	Status         string          `json:"status"`
}

// EventOrderCreated — вид широковещательного события о новом заказе.
const EventOrderCreated = "order.created"

// BroadcastEvent — событие, полученное по каналу подписки.
type BroadcastEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// OrderRef — ссылка на заказ внутри данных события.
type OrderRef struct {
	ID string `json:"id"`
}
