// Package sim provides the concurrency core of the farm simulation.
//
// # Reading Guide
//
// Start with these files to understand the core:
//   - clock.go: VirtualClock ticking routine and tick-based waits
//   - intake.go, pen.go: the shared stores and their synchronization
//   - transfer.go, withdrawal.go, delivery.go: the long-running workers
//   - simulation.go: wiring, lifecycle and the final Report
//
// # Data Flow
//
//	DeliveryProducer -> IntakeBuffer -> TransferAgent -> Pen -> WithdrawalAgent
//
// Every delay is a wait on the Clock expressed in ticks. Each store owns its
// own mutex and wakes waiters by broadcast; no goroutine ever holds more than
// one store's lock, and a TransferAgent never holds more than one pen's
// stocking exclusivity.
//
// # Cancellation
//
// All blocking operations accept a context.Context. Workers treat context
// cancellation and ErrClockStopped as a clean exit and return nil from Run.
package sim
