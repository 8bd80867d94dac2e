// Package vpic provides an HTTP client for the NHTSA vPIC vehicle API.
//
// # Overview
//
// Client implements catalog.DataSource over three read-only endpoints:
//
//   - GET /vehicles/getallmakes?format=json
//   - GET /vehicles/GetVehicleTypesForMakeId/{id}?format=json
//   - GET /vehicles/GetModelsForMakeId/{id}?format=json
//
// Each returns the envelope {Count, Message, SearchCriteria, Results}; only
// Results is used. Models are stamped with the requested make id.
//
// # Client Usage
//
//	client, err := vpic.NewClient(vpic.Options{RateLimit: 5, MaxRetries: 2})
//	if err != nil {
//		return err
//	}
//	makes, err := client.FetchMakes(ctx)
//
// # Request Handling
//
// All requests:
//   - Validate the make id before any I/O (*catalog.ValidationError)
//   - Wait on a token-bucket limiter (golang.org/x/time/rate)
//   - Set Accept: application/json and User-Agent: vpick/0.1
//   - Retry 429, 5xx and transport failures with exponential backoff, up to
//     MaxRetries extra attempts
//
// # Error Handling
//
// Every failure after validation is a *catalog.NetworkError whose Op names
// the collection ("makes", "types", "models"). Status failures unwrap to
// *StatusError. Decode failures and 4xx statuses other than 429 are not
// retried.
package vpic
