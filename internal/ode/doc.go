// Package ode provides the primitives for integrating first-order ordinary
// differential equations with fixed-step explicit methods.
//
// The package defines:
//
//   - [State]: vector representing the integrated quantities
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: single-step numerical integrator
//
// Integrators live in the sibling integrators package.
//
// # Thread Safety
//
// Integrators may keep scratch buffers and are NOT safe for concurrent use.
// Give every goroutine its own integrator.
package ode
