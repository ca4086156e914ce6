package action

import "strings"

// EntityKind is the kind of entity an id refers to.
type EntityKind string

const (
	EntityBinder EntityKind = "binder"
	EntityCharge EntityKind = "charge"
	EntityClient EntityKind = "client"
)

// entityPathKinds maps the leading path segment of an entity list/page to
// the id kind its row ids carry. No other path implies an id.
var entityPathKinds = map[string]EntityKind{
	"/binders": EntityBinder,
	"/charges": EntityCharge,
	"/clients": EntityClient,
}

// ResolvedIDs holds the per-kind effective entity ids for one descriptor.
// Zero means the id could not be resolved.
type ResolvedIDs struct {
	BinderID int64
	ChargeID int64
	ClientID int64
}

// PathKind returns the entity kind implied by a context entity path, or ""
// when the path implies none. Only the leading segment matters:
// "/binders/overview" still implies binder ids.
func PathKind(entityPath string) EntityKind {
	p := strings.TrimSpace(entityPath)
	if p == "" || p == "/" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if i := strings.Index(p[1:], "/"); i >= 0 {
		p = p[:i+1]
	}
	kind, ok := entityPathKinds[p]
	if !ok {
		return ""
	}
	return kind
}

// ResolveEntityIDs resolves the effective binder/charge/client ids for one
// descriptor. Precedence is applied per id kind, not globally:
// descriptor-embedded id, then context-supplied id of that kind, then the
// context entity id — the last only when the context path implies that kind.
// A timeline event on a binder page may therefore still carry a charge id.
func ResolveEntityIDs(d *RawDescriptor, ctx EntityContext) ResolvedIDs {
	kind := PathKind(ctx.EntityPath)
	return ResolvedIDs{
		BinderID: pickID(d.BinderID, ctx.BinderID, inferredID(kind, EntityBinder, ctx.EntityID)),
		ChargeID: pickID(d.ChargeID, ctx.ChargeID, inferredID(kind, EntityCharge, ctx.EntityID)),
		ClientID: pickID(d.ClientID, ctx.ClientID, inferredID(kind, EntityClient, ctx.EntityID)),
	}
}

// pickID returns the first positive id in precedence order.
func pickID(ids ...int64) int64 {
	for _, id := range ids {
		if id > 0 {
			return id
		}
	}
	return 0
}

// inferredID returns the context entity id only when the context path kind
// matches the wanted kind.
func inferredID(pathKind, want EntityKind, entityID int64) int64 {
	if pathKind != "" && pathKind == want {
		return entityID
	}
	return 0
}
