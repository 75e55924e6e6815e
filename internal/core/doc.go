// Package core provides the business logic for contact searches.
//
// This package is independent of any UI or transport layer. The web server
// and the CLI both drive it through [Service].
//
// # Search Flow
//
// A search takes a domain and a company name and runs a fixed pipeline:
//
//  1. Validate the [SearchRequest] (both fields required, domain must be a FQDN)
//  2. Acquire a slot from the [SearchLimiter]
//  3. Query the domain-search API through a [Searcher]
//  4. Project the raw emails into [Record] rows with [Project]
//  5. Write the CSV through an [ArtifactStore]
//  6. Index the artifact in the catalog
//
// Any step may short-circuit with an error; nothing is written unless the API
// returned at least one email.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - CFG001: API key not configured
//   - VAL001-VAL003: missing or invalid form input
//   - API001-API004: upstream rejected or unreachable
//   - RES001: no emails found
//   - FILE001-FILE002: artifact lookup and write failures
//   - RATE001-RATE002, REQ001-REQ002: throttling, cancellation, timeouts
package core
