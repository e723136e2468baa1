// Package cache реализует процессный кеш каталога в виде явных ячеек (слотов).
//
// Ячейка бывает двух видов: одиночный Slot для списка всех сущностей и Map
// слотов по ID. Ячейка находится в состоянии Empty или Populated; чтение
// промахивается на Empty, запись (Put) переводит в Populated, вытеснение
// (Evict) возвращает в Empty и идемпотентно. Блокировка берется на уровне
// одной ячейки, а не всего кеша.
package cache

import (
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// Slot - одна ячейка кеша с собственной блокировкой и TTL.
// Нулевой TTL означает отсутствие истечения по времени.
type Slot[T any] struct {
	mu        sync.RWMutex
	value     T
	populated bool
	expiresAt time.Time
	ttl       time.Duration
}

// NewSlot создает пустую ячейку с заданным TTL
func NewSlot[T any](ttl time.Duration) *Slot[T] {
	return &Slot[T]{ttl: ttl}
}

// Get возвращает содержимое ячейки и признак попадания.
// Истекшая ячейка читается как пустая.
func (s *Slot[T]) Get() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.populated || s.expired(time.Now()) {
		var zero T
		return zero, false
	}
	return s.value, true
}

// Put заполняет ячейку новым значением (populate или write-through)
func (s *Slot[T]) Put(value T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.value = value
	s.populated = true
	if s.ttl > 0 {
		s.expiresAt = time.Now().Add(s.ttl)
	}
}

// Evict очищает ячейку. Вытеснение пустой ячейки - no-op.
func (s *Slot[T]) Evict() {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	s.value = zero
	s.populated = false
	s.expiresAt = time.Time{}
}

// PurgeExpired очищает ячейку, если ее TTL истек
func (s *Slot[T]) PurgeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.populated && s.expired(time.Now()) {
		var zero T
		s.value = zero
		s.populated = false
	}
}

func (s *Slot[T]) expired(now time.Time) bool {
	return s.ttl > 0 && now.After(s.expiresAt)
}

// Map - набор ячеек, ключом служит ID сущности.
// Конкурентный доступ к разным ключам не конкурирует за общую блокировку.
type Map[K comparable, V any] struct {
	slots *xsync.MapOf[K, *Slot[V]]
	ttl   time.Duration
}

// NewMap создает пустой набор ячеек с заданным TTL на ячейку
func NewMap[K comparable, V any](ttl time.Duration) *Map[K, V] {
	return &Map[K, V]{
		slots: xsync.NewMapOf[K, *Slot[V]](),
		ttl:   ttl,
	}
}

// Get возвращает содержимое ячейки по ключу и признак попадания
func (m *Map[K, V]) Get(key K) (V, bool) {
	slot, ok := m.slots.Load(key)
	if !ok {
		var zero V
		return zero, false
	}
	return slot.Get()
}

// Put заполняет ячейку по ключу, создавая ее при необходимости
func (m *Map[K, V]) Put(key K, value V) {
	slot, _ := m.slots.LoadOrCompute(key, func() *Slot[V] {
		return NewSlot[V](m.ttl)
	})
	slot.Put(value)
}

// Evict удаляет ячейку по ключу. Отсутствующий ключ - no-op.
func (m *Map[K, V]) Evict(key K) {
	m.slots.Delete(key)
}

// PurgeExpired удаляет все ячейки с истекшим TTL
func (m *Map[K, V]) PurgeExpired() {
	now := time.Now()
	m.slots.Range(func(key K, slot *Slot[V]) bool {
		slot.mu.RLock()
		drop := slot.populated && slot.expired(now)
		slot.mu.RUnlock()
		if drop {
			m.slots.Delete(key)
		}
		return true
	})
}

// Len возвращает количество ячеек, включая истекшие
func (m *Map[K, V]) Len() int {
	return m.slots.Size()
}
