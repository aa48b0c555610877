package services

import (
	"sort"

	"art-seeder/models"
)

// Resolver hält die Querverweise Quell-ID -> Ziel-ID pro Entitätsart für genau einen Lauf.
// Nicht für nebenläufige Nutzung gedacht; jeder Lauf besitzt seinen eigenen Resolver.
type Resolver struct {
	tables map[models.EntityKind]map[string]string
}

func NewResolver() *Resolver {
	return &Resolver{tables: make(map[models.EntityKind]map[string]string)}
}

// Resolve liefert die Ziel-ID zu einer Quell-ID, falls sie in diesem Lauf bereits angelegt wurde.
func (r *Resolver) Resolve(kind models.EntityKind, sourceID string) (string, bool) {
	id, ok := r.tables[kind][sourceID]
	return id, ok
}

// Bind merkt sich eine neue Zuordnung. Ist die Quell-ID schon gebunden, passiert nichts (false).
func (r *Resolver) Bind(kind models.EntityKind, sourceID, targetID string) bool {
	table, ok := r.tables[kind]
	if !ok {
		table = make(map[string]string)
		r.tables[kind] = table
	}
	if _, exists := table[sourceID]; exists {
		return false
	}
	table[sourceID] = targetID
	return true
}

// Count gibt die Anzahl gebundener Quell-IDs einer Art zurück.
func (r *Resolver) Count(kind models.EntityKind) int {
	return len(r.tables[kind])
}

// TargetIDs liefert alle Ziel-IDs einer Art, sortiert für reproduzierbare Stichproben.
func (r *Resolver) TargetIDs(kind models.EntityKind) []string {
	ids := make([]string, 0, len(r.tables[kind]))
	for _, id := range r.tables[kind] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
