// Package events provides pipeline.Observer implementations: a structured
// log observer, a socket.io publisher for live progress and a fan-out that
// combines several observers.
package events
