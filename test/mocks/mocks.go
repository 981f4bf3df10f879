// test/mocks/mocks.go

// Package mocks contains generated mocks for the application's interfaces.
// To regenerate mocks, run `make mocks` from the root directory.
package mocks

//go:generate mockgen -source=../../internal/core/ports/slot.go -destination=slot_store_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/catalog.go -destination=catalog_repository_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/orders.go -destination=order_placer_mock.go -package=mocks
//go:generate mockgen -source=../../internal/core/ports/tasks.go -destination=task_enqueuer_mock.go -package=mocks
