// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ResourceClient: Issues one request against the remote support API
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - RenderSpec / RenderHandle: Builds visualizations from cached data.
//     Without a RenderSpec the dashboard shows tables instead of charts.
package driven
