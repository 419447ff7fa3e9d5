// Package api implements the HTTP handlers of the caption service: user
// registration and login, account management, caption request submission,
// status queries, and history retrieval.
//
// Handlers validate and reject malformed or unauthenticated input before it
// reaches the job pipeline; the pipeline itself only ever sees well-formed
// requests from authenticated users.
package api
