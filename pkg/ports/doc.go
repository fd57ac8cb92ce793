/*
Package ports defines the driven ports (interfaces) of the consult engine.

These interfaces decouple the traversal core from concrete content sources, session
persistence backends and cross-replica locking.

# Key Interfaces

  - ContentStore: read-only lookup of trees, nodes, drugs and info pages.
  - Watchable: content sources that can signal a reload (validate --watch, serve --watch).
  - SessionStore: persists TreeSession values between requests.
  - DistributedLocker: serializes access to one session across replicas.
*/
package ports
