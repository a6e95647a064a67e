// Package application provides application initialization and dependency wiring.
// It loads the course metadata record once at startup and builds the handlers,
// routers, metrics collector, and HTTP server around it, keeping the main
// package focused on CLI parsing and orchestration.
package application
