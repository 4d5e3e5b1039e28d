package agentfront

import "sync"

type routeEntry struct {
	content     []byte
	contentType string
	transient   bool
}

// routeTable is the in-process registry of virtually served paths. It holds
// both permanently installed dynamic endpoints and short-lived probe routes.
// Last registration for a path wins.
type routeTable struct {
	mu     sync.Mutex
	routes map[string]routeEntry
}

func newRouteTable() *routeTable {
	return &routeTable{routes: map[string]routeEntry{}}
}

func (rt *routeTable) Register(path string, content []byte, contentType string, transient bool) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.routes[path] = routeEntry{content: content, contentType: contentType, transient: transient}
}

func (rt *routeTable) Unregister(path string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	delete(rt.routes, path)
}

func (rt *routeTable) Lookup(path string) (routeEntry, bool) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	e, ok := rt.routes[path]
	return e, ok
}

func (rt *routeTable) Len() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return len(rt.routes)
}
