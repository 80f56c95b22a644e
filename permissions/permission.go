package permissions

import (
	_ "embed"
	"encoding/json"
	"slices"

	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var permissionsData []byte

// Permission gates one route pattern. A caller passes when its role is listed
// in Permissions (if any are listed) and it holds every capability in
// Capabilities.
type Permission struct {
	Permissions  []string     `json:"permissions"`
	Capabilities []Capability `json:"capabilities"`
	Path         string       `json:"path"`
	Method       string       `json:"method"`
	Skip         bool         `json:"skip"`
}

func (p Permission) Authorize(role string) bool {
	if len(p.Permissions) > 0 && !slices.Contains(p.Permissions, role) {
		return false
	}

	if len(p.Capabilities) > 0 && !Allows(role, p.Capabilities...) {
		return false
	}

	return true
}

type PermissionData struct {
	Endpoints []Permission `json:"endpoints"`
	Skip      bool         `json:"skip"`
}

func (r *PermissionData) FindPermissions(path, method string) Permission {
	idx := slices.IndexFunc(r.Endpoints, func(rp Permission) bool {
		return rp.Path == path && rp.Method == method
	})

	if idx == -1 {
		return Permission{}
	}

	return r.Endpoints[idx]
}

func Get() *PermissionData {
	permissions, err := parse(permissionsData)
	if err != nil {
		log.Err(err).Msg("Failed to decode embedded permissions")

		return nil
	}

	log.Info().Int("endpoints", len(permissions.Endpoints)).Msg("Successfully loaded embedded permissions")

	return permissions
}

func parse(data []byte) (*PermissionData, error) {
	var permissions PermissionData

	if err := json.Unmarshal(data, &permissions); err != nil {
		return nil, err //nolint:wrapcheck
	}

	return &permissions, nil
}
