// Package lib provides a Go SDK for the dothis task randomizer.
//
// It allows applications to manage tasks and the active task without
// shelling out to the dothis CLI binary, sharing the same data.
//
// # Quick Start
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.AddTask(ctx, lib.AddTaskOpts{Text: "Water the plants", Type: lib.TaskTypeRepeatable, Cooldown: lib.CooldownDaily})
//
//	// Pick a random task and commit to it.
//	at, err := client.RandomizeAndAccept(ctx)
//
//	// Later...
//	client.CompleteActiveTask(ctx)
//
// # Storage
//
// The SQLite database at ~/.dothis/dothis.db is used by default, the same one
// the CLI uses. Set [Config].Storage to [StorageMemory] for tests.
//
// # Errors
//
// All the errors returned can be checked with errors.Is against the
// sentinel errors of this package, like [ErrNotFound] or [ErrTaskActive].
package lib
