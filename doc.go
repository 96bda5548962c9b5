// Package marl is the Composition Root for the marl data-access layer.
//
// It connects the core domain contracts (documents, filters, the store
// gateway) with the infrastructure adapters (memory, Redis, MongoDB) using
// the Hexagonal Architecture pattern.
//
// Philosophy:
//
// Marl treats a schema-less document store as a set of typed collections.
// A generic repository performs field-keyed CRUD against one collection
// through an explicit field-name registry, and an aggregation engine
// reduces a collection into grouped numeric summaries. The store itself is
// an external collaborator behind core.Store; marl never reimplements it.
//
// Features:
//
//   - **Hexagonal Architecture**: Core domain is isolated from persistence details.
//   - **Typed Repositories**: Generic Repository[T] with a compile-time
//     field-name mapping, validated at construction.
//   - **Field Queries**: GetByField/UpdateField resolve external field
//     names through the registry and fail fast on unknown names.
//   - **Aggregation**: map/reduce jobs with an order-independence
//     self-check, plus single-pass grouped count/sum/average/min/max.
//   - **Adapters**: in-memory (default), Redis and MongoDB backends behind
//     one gateway contract.
//
// Usage:
//
//	// Connect the process-wide session
//	session, err := marl.Connect(ctx, "memory://")
//	defer session.Close(ctx)
//
//	// Bind a typed repository to a collection
//	users, err := marl.NewRepository[User](session, "users", userMapping)
//
//	// Field-keyed query
//	matches, err := users.GetByField(ctx, "blog", "index.hu")
package marl
