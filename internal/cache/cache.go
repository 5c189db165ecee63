// Package cache es un caché en memoria con TTL para las respuestas del
// servicio de catálogo. Se inyecta donde se necesita; no hay instancia global.
package cache

import (
	"strings"
	"sync"
	"time"
)

type item struct {
	valor      any
	expiracion int64
}

type Cache struct {
	mu    sync.RWMutex
	items map[string]item
	ttl   time.Duration
	done  chan struct{}
}

// New crea un caché con el TTL por defecto indicado y arranca la limpieza
// periódica de entradas vencidas.
func New(ttl time.Duration) *Cache {
	c := &Cache{
		items: make(map[string]item),
		ttl:   ttl,
		done:  make(chan struct{}),
	}
	go c.limpiar()
	return c
}

// Close detiene la limpieza periódica.
func (c *Cache) Close() {
	close(c.done)
}

// Set guarda un valor con el TTL por defecto.
func (c *Cache) Set(clave string, valor any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[clave] = item{
		valor:      valor,
		expiracion: time.Now().Add(c.ttl).UnixNano(),
	}
}

// Get devuelve el valor si existe y no venció.
func (c *Cache) Get(clave string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	it, ok := c.items[clave]
	if !ok || time.Now().UnixNano() > it.expiracion {
		return nil, false
	}
	return it.valor, true
}

// Delete elimina una clave puntual.
func (c *Cache) Delete(clave string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, clave)
}

// DeletePrefix invalida todas las claves con el prefijo dado. Se usa tras
// cada mutación del catálogo para que los listados no queden desfasados.
func (c *Cache) DeletePrefix(prefijo string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for clave := range c.items {
		if strings.HasPrefix(clave, prefijo) {
			delete(c.items, clave)
		}
	}
}

// Len devuelve la cantidad de entradas, vencidas incluidas.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache) limpiar() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			ahora := time.Now().UnixNano()
			for clave, it := range c.items {
				if ahora > it.expiracion {
					delete(c.items, clave)
				}
			}
			c.mu.Unlock()
		}
	}
}
