// Package application provides application initialization and dependency wiring.
// It loads the initial item set, builds the solvers, comparison harness,
// handlers, routers, metrics registry and HTTP server, keeping the main
// packages focused on CLI parsing and orchestration.
package application
