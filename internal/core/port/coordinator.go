package port

import "github.com/berfenger/econet2mqtt/pkg/econet300"

// DataCoordinator is the read side of the polling coordinator, as seen by
// entities. Implementations are confined to a single actor.
type DataCoordinator interface {
	Data() econet300.Params
	HasData(key string) bool
	LastUpdateSuccess() bool
	AddListener(fn func()) (remove func())
}
