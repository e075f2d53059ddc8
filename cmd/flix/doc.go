// Package main hosts the flix CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into signed
// HTTP calls against a Flix server: browsing shows and sequences, driving
// per-shot quicktime export runs, downloading media objects, and inspecting
// run history. It centralizes configuration resolution and client login so
// subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
