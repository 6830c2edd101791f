// Package ucdef defines use case definitions that is used across the application.
package ucdef

import "context"

// UserAction represents a synchronous business operation triggered by user interaction.
// It handles user-initiated requests through HTTP and returns an immediate response.
//
// Type parameters:
//   - I: Input data type (request payload)
//   - O: Output data type (response, result of the operation)
//
// Examples: QuerySpells, CreateGameSession, JoinGameSession, BulkLoadClasses
//
// Characteristics:
//   - Synchronous execution with immediate response
//   - Requires input validation; writes require an authenticated caller
//   - Errors are returned directly to the user as HTTP response
type UserAction[I, O any] interface {
	// OperationID returns a unique identifier for the use case.
	OperationID() string

	// Execute executes the use case.
	Execute(ctx context.Context, in I) (O, error)
}

// ManualCommand represents an administrative operation executed manually via CLI.
// Success or failure is indicated via the returned error and logs.
//
// Type parameters:
//   - I: Input parameters (command arguments, flags)
//
// Examples: MigrateSchemas, SeedCatalog
type ManualCommand[I any] interface {
	// OperationID returns a unique identifier for the use case.
	OperationID() string

	// Execute executes the manual command.
	Execute(ctx context.Context, in I) error
}

// NewUserAction adapts fn into a UserAction identified by operationID.
func NewUserAction[I, O any](operationID string, fn func(ctx context.Context, in I) (O, error)) UserAction[I, O] {
	return userAction[I, O]{id: operationID, fn: fn}
}

type userAction[I, O any] struct {
	id string
	fn func(ctx context.Context, in I) (O, error)
}

func (a userAction[I, O]) OperationID() string { return a.id }

func (a userAction[I, O]) Execute(ctx context.Context, in I) (O, error) { return a.fn(ctx, in) }

// NewManualCommand adapts fn into a ManualCommand identified by operationID.
func NewManualCommand[I any](operationID string, fn func(ctx context.Context, in I) error) ManualCommand[I] {
	return manualCommand[I]{id: operationID, fn: fn}
}

type manualCommand[I any] struct {
	id string
	fn func(ctx context.Context, in I) error
}

func (c manualCommand[I]) OperationID() string { return c.id }

func (c manualCommand[I]) Execute(ctx context.Context, in I) error { return c.fn(ctx, in) }
