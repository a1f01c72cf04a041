package usecase

import (
	"context"

	"github.com/example/storefront-console/internal/bus"
	"github.com/example/storefront-console/internal/domain"
)

// maxRepairAttempts ограничивает повторы при протухшей ссылке на
// витрину, чтобы исключить бесконечный цикл при патологическом
// состоянии хранилищ.
const maxRepairAttempts = 1

// ActiveStoreResolver — вычисляет текущую активную витрину по
// настройке оператора и кэшу витрин, самостоятельно исправляя
// протухшие ссылки.
type ActiveStoreResolver struct {
	Prefs  domain.PreferenceStore
	Stores domain.StorefrontCache
	Bus    *bus.Bus
}

// Resolve возвращает активную витрину либо ok=false, если витрин нет.
// После завершения настройка никогда не указывает на витрину,
// отсутствующую в кэше.
func (r *ActiveStoreResolver) Resolve(ctx context.Context) (domain.Storefront, bool, error) {
	for attempt := 0; attempt <= maxRepairAttempts; attempt++ {
		id, ok, err := r.Prefs.Get(ctx, domain.PrefActiveStorefront)
		if err != nil {
			return domain.Storefront{}, false, err
		}
		if !ok {
			return r.adoptFirst(ctx)
		}
		if sf, found := r.Stores.ByID(id); found {
			return sf, true, nil
		}
		// протухшая ссылка: чистим настройку и перечитываем
		if err := r.Prefs.Delete(ctx, domain.PrefActiveStorefront); err != nil {
			return domain.Storefront{}, false, err
		}
	}
	return r.adoptFirst(ctx)
}

// adoptFirst принимает первую витрину кэша как активную по умолчанию.
func (r *ActiveStoreResolver) adoptFirst(ctx context.Context) (domain.Storefront, bool, error) {
	all := r.Stores.All()
	if len(all) == 0 {
		return domain.Storefront{}, false, nil
	}
	first := all[0]
	if err := r.Prefs.Set(ctx, domain.PrefActiveStorefront, first.ID); err != nil {
		return domain.Storefront{}, false, err
	}
	return first, true, nil
}

// SetActive записывает выбор оператора и публикует storefront.changed.
// Открытую подписку вызывающий останавливает до запуска новой.
func (r *ActiveStoreResolver) SetActive(ctx context.Context, sf domain.Storefront) error {
	if err := r.Prefs.Set(ctx, domain.PrefActiveStorefront, sf.ID); err != nil {
		return err
	}
	r.Bus.Publish(bus.EventStorefrontChanged, sf)
	return nil
}
