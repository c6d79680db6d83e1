// Package components defines ECS components for the simulation.
package components

// Kind distinguishes the two entity variants. Interaction rules switch on pairs of kinds.
type Kind uint8

const (
	KindBlob Kind = iota
	KindFood
	numKinds
)

// NumKinds is the number of entity kinds.
const NumKinds = int(numKinds)

// Identity carries the stable simulation id. Ark recycles entity slots,
// so this id, not the ecs.Entity, is what outlives removal.
type Identity struct {
	ID   uint64
	Kind Kind
}

// Nutrition is the energy a food particle grants when eaten.
type Nutrition struct {
	Value float64
}
