// Package flagkit is the server-side core of a feature flag delivery
// platform: SDK connection management with capability negotiation, and
// compilation of organization feature data into the payload each SDK
// consumes.
//
// Client SDKs across many languages evolve at different speeds, so the
// server must know what each connected SDK can handle. A versioned
// capability registry (pkg/sdkversion) records which capabilities each SDK
// language gains at which release. SDK connections (pkg/sdkconnection) are
// validated against that registry: a connection can only enable payload
// encryption, remote evaluation, or secure attribute hashing when the
// declared SDK version supports it and the organization's plan includes it.
//
// Payload compilation (pkg/payload) turns raw feature definitions into the
// exact document a given connection should receive: project-scoped,
// capability-filtered, with secure attributes salted and hashed, optionally
// encrypted, and byte-identical across repeated runs so responses cache
// cleanly.
//
// Supporting packages: pkg/feature holds the definition model and the pure
// evaluation engine, pkg/archetype previews flag behavior for synthetic
// users, pkg/async provides bounded fan-out primitives, and pkg/jobs with
// pkg/facttable cover the background task contract and the column refresh
// job built on it.
//
// Basic Usage:
//
//	registry := sdkversion.Default()
//	store := sdkconnection.NewMemoryStore()
//	connections := sdkconnection.NewService(store, sdkconnection.WithRegistry(registry))
//
//	conn, err := connections.Create(ctx, "org_1", &sdkconnection.ConnectionRequest{
//		Name:        "production web",
//		Environment: "production",
//		Languages:   []string{"javascript"},
//	}, org)
//
//	compiler := payload.New(payload.NewConnectionResolver(store, registry), featureSource)
//	compiled, err := compiler.Compile(ctx, conn.Key, nil)
//
// Each package carries its own documentation with the full contract.
package flagkit
