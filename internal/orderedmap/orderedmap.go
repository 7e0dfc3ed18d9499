// orderedmap.go - Generische Map mit stabiler Einfuege-Reihenfolge
// Duenner Wrapper um github.com/wk8/go-ordered-map/v2, dessen
// JSON-Marshalling die Dokument-Reihenfolge der Keys erhaelt.
package orderedmap

import (
	"iter"

	wk8 "github.com/wk8/go-ordered-map/v2"
)

// Map erhaelt die Einfuege-Reihenfolge ihrer Schluessel. encoding/json
// wuerde Map-Keys alphabetisch sortieren, hier bleibt beim Marshalling
// die Reihenfolge der Set-Aufrufe bzw. des Quell-Dokuments erhalten.
type Map[K comparable, V any] struct {
	om *wk8.OrderedMap[K, V]
}

// New erstellt eine leere Map.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{om: wk8.New[K, V]()}
}

// Set setzt einen Wert. Ein bereits vorhandener Schluessel behaelt
// seine Position, neue Schluessel werden hinten angefuegt.
func (m *Map[K, V]) Set(key K, value V) {
	if m.om == nil {
		m.om = wk8.New[K, V]()
	}
	m.om.Set(key, value)
}

// Get liefert den Wert zu einem Schluessel.
func (m *Map[K, V]) Get(key K) (V, bool) {
	if m.om == nil {
		var zero V
		return zero, false
	}
	return m.om.Get(key)
}

// Delete entfernt einen Schluessel und meldet, ob er vorhanden war.
func (m *Map[K, V]) Delete(key K) bool {
	if m.om == nil {
		return false
	}
	_, present := m.om.Delete(key)
	return present
}

// Len gibt die Anzahl der Eintraege zurueck.
func (m *Map[K, V]) Len() int {
	if m.om == nil {
		return 0
	}
	return m.om.Len()
}

// All iteriert ueber alle Paare in Einfuege-Reihenfolge.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		if m.om == nil {
			return
		}
		for pair := m.om.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// ToMap kopiert die Eintraege in eine gewoehnliche Map.
// Die Reihenfolge geht dabei verloren.
func (m *Map[K, V]) ToMap() map[K]V {
	if m.om == nil {
		return nil
	}
	out := make(map[K]V, m.om.Len())
	for pair := m.om.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = pair.Value
	}
	return out
}

func (m *Map[K, V]) MarshalJSON() ([]byte, error) {
	if m.om == nil {
		return []byte("{}"), nil
	}
	return m.om.MarshalJSON()
}

func (m *Map[K, V]) UnmarshalJSON(data []byte) error {
	if m.om == nil {
		m.om = wk8.New[K, V]()
	}
	return m.om.UnmarshalJSON(data)
}
