package core

// TenantContext is the isolation boundary for tool invocation. It is supplied
// per SendMessage call, never stored on the conversation and never mutated by
// the engine.
type TenantContext struct {
	TenantID     string
	AllowedTools []string
	Permissions  []string
}

// Allows reports whether the tenant may invoke the named tool.
func (t *TenantContext) Allows(toolName string) bool {
	for _, name := range t.AllowedTools {
		if name == toolName {
			return true
		}
	}
	return false
}

// HasPermission reports whether the tenant holds the named permission.
func (t *TenantContext) HasPermission(perm string) bool {
	for _, p := range t.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// TenantProvider resolves tenant identities to their tool grants. External
// systems (config stores, IAM) implement this; StaticTenantProvider covers
// tests and single-binary deployments.
type TenantProvider interface {
	GetTenant(tenantID string) (*TenantContext, bool)
}

// StaticTenantProvider serves a fixed tenant set from memory.
type StaticTenantProvider struct {
	tenants map[string]*TenantContext
}

// NewStaticTenantProvider builds a provider from the given tenants, keyed by
// TenantID.
func NewStaticTenantProvider(tenants ...*TenantContext) *StaticTenantProvider {
	m := make(map[string]*TenantContext, len(tenants))
	for _, t := range tenants {
		m[t.TenantID] = t
	}
	return &StaticTenantProvider{tenants: m}
}

// GetTenant implements TenantProvider.
func (p *StaticTenantProvider) GetTenant(tenantID string) (*TenantContext, bool) {
	t, ok := p.tenants[tenantID]
	return t, ok
}
