// Package events provides the publish/subscribe abstraction the registry
// and permission-layer callers use to announce lifecycle transitions without
// coupling to a transport. The Bus is a strategy: LocalBus dispatches
// in-process, RedisBus fans out over redis pub/sub, and publishers never
// know which one they hold.
package events
