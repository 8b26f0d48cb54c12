package service

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/mmeshcher/choreledger/internal/model"
)

// kidCache кэширует чтение профилей детей. Источник истины всегда БД:
// записи только удаляются после изменений и никогда не правятся на месте.
//
// Каждое удаление увеличивает поколение кэша. Чтение из БД, начатое до
// удаления, не попадает в кэш: put отбрасывает запись со старым поколением.
type kidCache struct {
	mu  sync.Mutex
	gen uint64
	lru *expirable.LRU[string, model.Kid]
}

func newKidCache(size int, ttl time.Duration) *kidCache {
	if size <= 0 {
		return nil
	}
	return &kidCache{lru: expirable.NewLRU[string, model.Kid](size, nil, ttl)}
}

func kidKey(familyID, kidID string) string {
	return familyID + "/" + kidID
}

func (c *kidCache) get(familyID, kidID string) (model.Kid, bool) {
	if c == nil {
		return model.Kid{}, false
	}
	return c.lru.Get(kidKey(familyID, kidID))
}

// generation возвращает текущее поколение. Его нужно получить до чтения из БД
// и передать в put.
func (c *kidCache) generation() uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

func (c *kidCache) put(kid model.Kid, gen uint64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return
	}
	c.lru.Add(kidKey(kid.FamilyID, kid.ID), kid)
}

func (c *kidCache) invalidate(familyID, kidID string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.lru.Remove(kidKey(familyID, kidID))
}

func (c *kidCache) purge() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.lru.Purge()
}
