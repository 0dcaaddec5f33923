package auth

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// policyFile is the on-disk shape of a permission table:
//
//	roles:
//	  admin: [READ, WRITE, DELETE, MANAGE_USERS]
//	  user: [READ]
type policyFile struct {
	Roles map[string][]string `yaml:"roles"`
}

// LoadPermissionTable reads a YAML permission table from path.
func LoadPermissionTable(path string) (*PermissionTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read permission table: %w", err)
	}
	return ParsePermissionTable(data)
}

// ParsePermissionTable decodes a YAML permission table.
func ParsePermissionTable(data []byte) (*PermissionTable, error) {
	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse permission table: %w", err)
	}

	mapping := make(map[Role][]Permission, len(file.Roles))
	for role, perms := range file.Roles {
		converted := make([]Permission, 0, len(perms))
		for _, p := range perms {
			converted = append(converted, Permission(p))
		}
		mapping[Role(role)] = converted
	}

	return NewPermissionTable(mapping)
}
