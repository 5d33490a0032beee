/*
Package observability turns editor lifecycle hooks into Prometheus metrics.

Metrics.Hooks returns a domain.LifecycleHooks value that can be merged with
any other hooks and handed to the store, the mutation engine, the renderer
and the exporter. Every accepted patch, rejected patch, structural edit and
skipped block increments a labelled counter.
*/
package observability
