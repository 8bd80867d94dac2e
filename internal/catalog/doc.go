// Package catalog defines the vehicle catalog entities and the DataSource
// boundary the state layer fetches through.
//
// # Entities
//
// The catalog is two levels deep:
//
//   - Make: top-level entry, e.g. a manufacturer
//   - VehicleType: classification scoped to one make
//   - VehicleModel: model scoped to one make, carrying its MakeID
//
// The make ID is the key every per-make cache is indexed by.
//
// # Errors
//
// Two error types cross the DataSource boundary:
//
//   - ValidationError: a non-positive key. Raised synchronously, before any
//     request is made and before any action is dispatched.
//   - NetworkError: transport, HTTP status or decode failure. Retryable by the
//     caller; the state layer surfaces it as a *Failed action.
//
// Use IsValidation and IsNetwork rather than type assertions so wrapped
// errors are recognised.
package catalog
