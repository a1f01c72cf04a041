package httpapi

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/example/storefront-console/internal/domain"
	"github.com/gorilla/websocket"
)

// Типы кадров websocket-протокола предъявлений.
const (
	frameOrderAlert = "order.alert"
	frameAlertBusy  = "alert.busy"
	frameAlertError = "alert.error"
	frameAlertClose = "alert.close"
	frameDecision   = "decision"
)

// frame — кадр обмена с интерфейсом оператора.
type frame struct {
	Type       string             `json:"type"`
	Alert      string             `json:"alert,omitempty"`
	Order      *domain.Order      `json:"order,omitempty"`
	Storefront *domain.Storefront `json:"storefront,omitempty"`
	Busy       bool               `json:"busy,omitempty"`
	Message    string             `json:"message,omitempty"`
	Action     string             `json:"action,omitempty"`
}

// AlertPresenter — поверхность подтверждения заказа поверх websocket.
// Подключённые интерфейсы оператора получают кадры предъявлений и
// отвечают кадрами решений; пока ни один интерфейс не подключён,
// предъявление остаётся в ожидании.
type AlertPresenter struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	nextID  int
	conns   map[*wsConn]struct{}
	pending map[string]*wsPresentation
}

func NewAlertPresenter() *AlertPresenter {
	return &AlertPresenter{
		conns:   make(map[*wsConn]struct{}),
		pending: make(map[string]*wsPresentation),
	}
}

// Show рассылает предъявление подключённым интерфейсам и возвращает
// его ручку. Решение может прийти с любого подключённого сокета.
func (p *AlertPresenter) Show(_ context.Context, a domain.Alert) (domain.Presentation, error) {
	p.mu.Lock()
	p.nextID++
	pres := &wsPresentation{
		p:     p,
		id:    fmt.Sprintf("alert-%d", p.nextID),
		alert: a,
		// в очереди держится не более одного решения: повторные
		// клики до реакции цикла обработки отбрасываются
		decisions: make(chan domain.Decision, 1),
	}
	p.pending[pres.id] = pres
	p.mu.Unlock()

	p.broadcast(pres.alertFrame())
	return pres, nil
}

var _ domain.AlertPresenter = (*AlertPresenter)(nil)

// HandleWS обслуживает подключение интерфейса оператора.
func (p *AlertPresenter) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := p.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade: %v", err)
		return
	}
	c := &wsConn{conn: conn}

	p.mu.Lock()
	p.conns[c] = struct{}{}
	replay := make([]frame, 0, len(p.pending))
	for _, pres := range p.pending {
		replay = append(replay, pres.alertFrame())
	}
	p.mu.Unlock()

	// новый интерфейс догоняет ожидающие предъявления
	for _, f := range replay {
		if err := c.writeJSON(f); err != nil {
			break
		}
	}

	p.readLoop(c)
}

func (p *AlertPresenter) readLoop(c *wsConn) {
	defer func() {
		p.mu.Lock()
		delete(p.conns, c)
		p.mu.Unlock()
		_ = c.conn.Close()
	}()
	for {
		var f frame
		if err := c.conn.ReadJSON(&f); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure) {
				log.Printf("ws read: %v", err)
			}
			return
		}
		if f.Type != frameDecision {
			continue
		}
		p.deliver(f.Alert, f.Action)
	}
}

// deliver направляет решение оператора ожидающему предъявлению.
func (p *AlertPresenter) deliver(alertID, action string) {
	var d domain.Decision
	switch action {
	case "accept":
		d = domain.DecisionAccept
	case "decline":
		d = domain.DecisionDecline
	default:
		log.Printf("ws decision: unknown action %q", action)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	pres, ok := p.pending[alertID]
	if !ok || pres.closed {
		return
	}
	select {
	case pres.decisions <- d:
	default:
		// решение уже ждёт обработки, дубликат отбрасывается
	}
}

// broadcast рассылает кадр всем подключённым интерфейсам.
func (p *AlertPresenter) broadcast(f frame) {
	p.mu.Lock()
	conns := make([]*wsConn, 0, len(p.conns))
	for c := range p.conns {
		conns = append(conns, c)
	}
	p.mu.Unlock()
	for _, c := range conns {
		if err := c.writeJSON(f); err != nil {
			log.Printf("ws write: %v", err)
		}
	}
}

// wsConn — подключение с сериализацией записи: у gorilla ровно один
// писатель на соединение.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// wsPresentation — одно открытое предъявление.
type wsPresentation struct {
	p         *AlertPresenter
	id        string
	alert     domain.Alert
	decisions chan domain.Decision
	closed    bool
}

func (w *wsPresentation) alertFrame() frame {
	return frame{
		Type:       frameOrderAlert,
		Alert:      w.id,
		Order:      &w.alert.Order,
		Storefront: &w.alert.Storefront,
	}
}

func (w *wsPresentation) Decisions() <-chan domain.Decision {
	return w.decisions
}

func (w *wsPresentation) SetBusy(busy bool) {
	w.p.broadcast(frame{Type: frameAlertBusy, Alert: w.id, Busy: busy})
}

func (w *wsPresentation) NotifyError(msg string) {
	w.p.broadcast(frame{Type: frameAlertError, Alert: w.id, Message: msg})
}

func (w *wsPresentation) Close() {
	w.p.mu.Lock()
	if w.closed {
		w.p.mu.Unlock()
		return
	}
	w.closed = true
	delete(w.p.pending, w.id)
	close(w.decisions)
	w.p.mu.Unlock()

	w.p.broadcast(frame{Type: frameAlertClose, Alert: w.id})
}

var _ domain.Presentation = (*wsPresentation)(nil)
