/*
Package session manages persisted traversal sessions.

A Manager pairs an engine with a ports.SessionStore. It serializes access to each
session id with a reference-counted in-process mutex and, when configured, a
ports.DistributedLocker so that several replicas can share one store. Sessions
loaded from the store are re-validated against the current content before use.
*/
package session
