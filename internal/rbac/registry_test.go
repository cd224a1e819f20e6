package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hintwise/hintgate/internal/config"
)

func testRolesConfig() config.RolesConfig {
	return config.RolesConfig{
		PrincipalRoles: map[string]string{
			"niconoguez": "admin",
			"kiymet":     "editor",
		},
		DefaultRole: "viewer",
		Permissions: map[string][]string{
			"viewer": {"GET"},
			"editor": {"GET", "PUT"},
			"admin":  {"GET", "POST", "PUT", "DELETE"},
		},
	}
}

func TestRegistry_Resolve(t *testing.T) {
	registry, err := NewRegistry(testRolesConfig())
	require.NoError(t, err)

	assert.Equal(t, "admin", registry.Resolve("niconoguez"))
	assert.Equal(t, "editor", registry.Resolve("kiymet"))
	assert.Equal(t, "viewer", registry.Resolve("anyone-else"))
	assert.Equal(t, "viewer", registry.Resolve(""))
}

func TestRegistry_Allowed(t *testing.T) {
	registry, err := NewRegistry(testRolesConfig())
	require.NoError(t, err)

	// Allow exactly when the method is in the role's permitted set.
	tests := []struct {
		role    string
		method  string
		allowed bool
	}{
		{"viewer", "GET", true},
		{"viewer", "POST", false},
		{"viewer", "PUT", false},
		{"viewer", "DELETE", false},
		{"editor", "GET", true},
		{"editor", "PUT", true},
		{"editor", "POST", false},
		{"editor", "DELETE", false},
		{"admin", "GET", true},
		{"admin", "POST", true},
		{"admin", "PUT", true},
		{"admin", "DELETE", true},
		{"unknown-role", "GET", false},
	}

	for _, tt := range tests {
		t.Run(tt.role+" "+tt.method, func(t *testing.T) {
			allowed, err := registry.Allowed(tt.role, tt.method)
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, allowed)
		})
	}
}

func TestRegistry_AllowedMethods(t *testing.T) {
	registry, err := NewRegistry(testRolesConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{"GET"}, registry.AllowedMethods("viewer"))
	assert.Equal(t, []string{"GET", "PUT"}, registry.AllowedMethods("editor"))
	assert.Equal(t, []string{"GET", "POST", "PUT", "DELETE"}, registry.AllowedMethods("admin"))
	assert.Empty(t, registry.AllowedMethods("unknown-role"))
}
