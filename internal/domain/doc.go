// Package domain defines the core business entities of the caption service:
// users, caption requests, caption results, and the transient status query
// result exchanged between the job pipeline and the API layer.
package domain
