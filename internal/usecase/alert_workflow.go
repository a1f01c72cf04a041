package usecase

import (
	"context"
	"log"

	"github.com/example/storefront-console/internal/bus"
	"github.com/example/storefront-console/internal/domain"
)

// OrderAlertWorkflow — цикл обработки одного входящего заказа:
// получить → оповестить → предъявить → исполнить решение оператора.
type OrderAlertWorkflow struct {
	Orders    domain.OrderGateway
	Presenter domain.AlertPresenter
	Chime     domain.Chime
	Bus       *bus.Bus
}

// Handle выполняет весь цикл для заказа orderID на витрине sf.
// Ошибка получения возвращается вызывающему; частично загруженный
// заказ оператору не предъявляется.
func (w *OrderAlertWorkflow) Handle(ctx context.Context, orderID string, sf domain.Storefront) error {
	order, err := w.Orders.Fetch(ctx, orderID)
	if err != nil {
		return err
	}

	if w.Chime != nil {
		if err := w.Chime.Play(); err != nil {
			// звук — best effort
			log.Printf("chime: %v", err)
		}
	}
	w.Bus.Publish(bus.EventOrderIncoming, bus.OrderIncoming{Order: order, Storefront: sf})

	pres, err := w.Presenter.Show(ctx, domain.Alert{Order: order, Storefront: sf})
	if err != nil {
		return err
	}
	return w.await(ctx, order, pres)
}

// await обслуживает решения оператора по открытому предъявлению.
// Не более одного сетевого запроса принятия в полёте на заказ; отказ
// закрывает предъявление без сетевого вызова; неудачное принятие
// оставляет предъявление открытым для повтора.
func (w *OrderAlertWorkflow) await(ctx context.Context, order domain.Order, pres domain.Presentation) error {
	accepted := make(chan error, 1)
	inFlight := false
	for {
		select {
		case d, ok := <-pres.Decisions():
			if !ok {
				// предъявление закрыто извне
				return nil
			}
			switch d {
			case domain.DecisionAccept:
				if inFlight {
					continue
				}
				inFlight = true
				pres.SetBusy(true)
				go func() { accepted <- w.Orders.Accept(ctx, order.ID) }()
			case domain.DecisionDecline:
				if inFlight {
					continue
				}
				pres.Close()
				return nil
			}
		case err := <-accepted:
			inFlight = false
			pres.SetBusy(false)
			if err != nil {
				log.Printf("order accept %s: %v", order.ID, err)
				pres.NotifyError("accept failed: " + err.Error())
				continue
			}
			w.Bus.Publish(bus.EventOrderAccepted, order)
			pres.Close()
			return nil
		case <-ctx.Done():
			pres.Close()
			return ctx.Err()
		}
	}
}
