package infra

import (
	"errors"
	"sync"
	"time"
)

// ── Breaker ───────────────────────────────────────────────────────────────────
// Closed → Open after Umbral consecutive failures; Open → HalfOpen once Espera
// has elapsed; a HalfOpen trial call either closes the breaker or reopens it.

type EstadoBreaker int

const (
	BreakerCerrado EstadoBreaker = iota
	BreakerAbierto
	BreakerSemiAbierto
)

func (e EstadoBreaker) String() string {
	switch e {
	case BreakerCerrado:
		return "closed"
	case BreakerAbierto:
		return "open"
	case BreakerSemiAbierto:
		return "half-open"
	}
	return "unknown"
}

// ErrBreakerAbierto is returned without calling fn while the breaker is open.
var ErrBreakerAbierto = errors.New("circuit breaker is open")

type Breaker struct {
	mu     sync.Mutex
	estado EstadoBreaker
	fallos int
	ultimo time.Time
	umbral int
	espera time.Duration
	now    func() time.Time
}

// NewBreaker defaults to 5 failures and a 60s wait when given zero values.
func NewBreaker(umbral int, espera time.Duration) *Breaker {
	if umbral <= 0 {
		umbral = 5
	}
	if espera <= 0 {
		espera = 60 * time.Second
	}
	return &Breaker{umbral: umbral, espera: espera, now: time.Now}
}

func (b *Breaker) Estado() EstadoBreaker {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.estadoLocked()
}

func (b *Breaker) estadoLocked() EstadoBreaker {
	if b.estado == BreakerAbierto && b.now().Sub(b.ultimo) >= b.espera {
		b.estado = BreakerSemiAbierto
	}
	return b.estado
}

// Ejecutar runs fn unless the breaker is open. Only one trial call is let through
// while half-open; concurrent callers get ErrBreakerAbierto.
func (b *Breaker) Ejecutar(fn func() error) error {
	b.mu.Lock()
	switch b.estadoLocked() {
	case BreakerAbierto:
		b.mu.Unlock()
		return ErrBreakerAbierto
	case BreakerSemiAbierto:
		// park the breaker open while the trial call runs
		b.estado = BreakerAbierto
		b.ultimo = b.now()
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.fallos++
		b.ultimo = b.now()
		if b.fallos >= b.umbral || b.estado == BreakerAbierto {
			b.estado = BreakerAbierto
		}
		return err
	}
	b.fallos = 0
	b.estado = BreakerCerrado
	return nil
}
