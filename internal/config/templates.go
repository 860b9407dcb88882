package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(kind string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "part":
		return partTemplate, nil
	case "pip":
		return pipTemplate, nil
	default:
		return "", fmt.Errorf("unknown config kind: %s", kind)
	}
}

func WriteTemplate(path, kind string, overwrite bool) error {
	template, err := Template(kind)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const partTemplate = `[part]
name = "ros-workspace"
source_dir = "src"
part_dir = "parts/ros-workspace"
stage_dir = "stage"
target_arch = "amd64"
base = "ubuntu"
parallel_build_count = 4
stage_packages_dir = "stage-packages"

[wstool]
tool_dir = "parts/ros-workspace/wstool"

[pip]
python_major_version = "3"
host_root = "/"
`

const pipTemplate = `[part]
name = "python-app"
source_dir = "src"
stage_dir = "stage"

[pip]
python_major_version = "3"
`
