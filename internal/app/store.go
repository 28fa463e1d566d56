package app

import "github.com/powerplanchanger/ppc/internal/config"

// FileServiceStore keeps the selection in a ServiceList.txt file.
type FileServiceStore string

// Load reads the file; a missing file is an empty selection.
func (p FileServiceStore) Load() ([]string, error) {
	return config.LoadServiceList(string(p))
}

// Save rewrites the file.
func (p FileServiceStore) Save(names []string) error {
	return config.SaveServiceList(string(p), names)
}
