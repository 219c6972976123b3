// Package graph provides the Microsoft Graph gateway core: token
// acquisition, request dispatch, and response classification.
//
// This package provides:
//   - TokenManager: OAuth2 client-credentials token lifecycle with caching
//   - Client: URL construction, bearer auth, and response classification
//   - Typed errors for every failure the gateway can raise
//
// # Authentication
//
// The gateway authenticates as a confidential client (no end-user
// interaction) against the Microsoft identity platform:
//   - Token URL: https://login.microsoftonline.com/{tenant}/oauth2/v2.0/token
//   - Scope: https://graph.microsoft.com/.default
//
// Tokens are cached in memory for their reported lifetime and refreshed
// when less than 60 seconds of validity remain. Concurrent refreshes are
// not serialised; bearer tokens are interchangeable, so last writer wins.
//
// # Surfaces
//
// Two fixed origins are supported:
//   - Stable:  https://graph.microsoft.com/v1.0
//   - Preview: https://graph.microsoft.com/beta
//
// List responses follow the Graph collection convention ({"value": [...],
// "@odata.nextLink": ...}). The next-page link is surfaced to callers but
// never followed here.
package graph
