// Package registry implements the concurrent service registry: the
// authoritative mapping from service name to active handler. The map is
// sharded by name hash so registrations of independent services do not
// contend with each other.
package registry
