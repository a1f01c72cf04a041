package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/example/storefront-console/internal/adapter/prefs"
	"github.com/example/storefront-console/internal/adapter/storecache"
	"github.com/example/storefront-console/internal/bus"
	"github.com/example/storefront-console/internal/domain"
)

// Полный сценарий: разрешение витрины по умолчанию, подписка на её
// топик, входящий заказ, предъявление, принятие, публикация
// order.accepted ровно один раз.
func TestIncomingOrderEndToEnd(t *testing.T) {
	ctx := context.Background()
	nbus := bus.New()
	store := prefs.NewMemoryPreferenceStore()
	cache := storecache.NewMemoryStorefrontCache()
	cache.Put(domain.Storefront{ID: "s1", PublicID: "pub1"})

	resolver := &ActiveStoreResolver{Prefs: store, Stores: cache, Bus: nbus}
	gw := &fakeGateway{}
	pr := newFakePresenter()
	tr := &fakeTransport{}
	manager := &SubscriptionManager{
		Resolver:  resolver,
		Transport: tr,
		Workflow:  &OrderAlertWorkflow{Orders: gw, Presenter: pr, Chime: &fakeChime{}, Bus: nbus},
		Bus:       nbus,
	}

	var mu sync.Mutex
	var accepted []domain.Order
	nbus.Subscribe(bus.EventOrderAccepted, func(p any) {
		mu.Lock()
		accepted = append(accepted, p.(domain.Order))
		mu.Unlock()
	})

	if err := manager.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if v, ok, _ := store.Get(ctx, domain.PrefActiveStorefront); !ok || v != "s1" {
		t.Errorf("preference = %q, %v, want adopted s1", v, ok)
	}
	if len(tr.topics) != 1 || tr.topics[0] != "storefront.pub1" {
		t.Fatalf("topics = %v, want [storefront.pub1]", tr.topics)
	}

	tr.last.emit(orderCreated("o1"))

	pres := pr.waitShown(t)
	if pres.alert.Order.ID != "o1" || pres.alert.Storefront.PublicID != "pub1" {
		t.Errorf("alert = %+v, want o1 on pub1", pres.alert)
	}
	if got := gw.fetched(); len(got) != 1 || got[0] != "o1" {
		t.Errorf("fetch calls = %v, want [o1]", got)
	}

	pres.decide(domain.DecisionAccept)
	pres.waitClosed(t)

	if got := gw.accepted(); len(got) != 1 || got[0] != "o1" {
		t.Errorf("accept calls = %v, want [o1]", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(accepted) != 1 || accepted[0].ID != "o1" {
		t.Errorf("order.accepted payloads = %+v, want one o1", accepted)
	}
}
