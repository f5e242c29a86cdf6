package conf

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mailwatch/mailwatch/internal/biz/domain"
)

// senderGroupsFile is the YAML shape of the sender groups source
type senderGroupsFile struct {
	Groups map[string][]string `yaml:"groups"`
}

// LoadSenderGroups loads the sender group mapping from a YAML file.
// A missing or unreadable file yields an empty registry, never an
// error at startup: every address then resolves to the default group.
func LoadSenderGroups(configPath string) (*domain.GroupRegistry, error) {
	// Try multiple paths
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"config/sender_groups.yaml",
			"./config/sender_groups.yaml",
			"/etc/mailwatch/sender_groups.yaml",
		}
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "config", "sender_groups.yaml"))
		}
		if wd, err := os.Getwd(); err == nil {
			paths = append(paths, filepath.Join(wd, "config", "sender_groups.yaml"))
		}
	}

	var data []byte
	var err error

	for _, p := range paths {
		if p == "" {
			continue
		}
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}

	if data == nil {
		return domain.NewGroupRegistry(nil), fmt.Errorf("no sender groups file found")
	}

	var parsed senderGroupsFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return domain.NewGroupRegistry(nil), fmt.Errorf("failed to parse sender groups: %w", err)
	}

	return domain.NewGroupRegistry(parsed.Groups), nil
}
