package snapshot

import (
	"encoding/json"
	"os"
)

// ManifestEntry represents one frame in the output manifest.
type ManifestEntry struct {
	Index   int        `json:"index"`
	Image   string     `json:"image"`
	Player  [3]float64 `json:"player"`
	Yaw     float64    `json:"yaw"`
	Portals []string   `json:"portals"`
	Error   string     `json:"error,omitempty"`
}

// WriteManifest writes manifest.json listing every result, failed ones with
// their error and no image.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		entries[i] = ManifestEntry{
			Index:   r.Index,
			Image:   r.Image,
			Player:  r.Player,
			Yaw:     r.Yaw,
			Portals: r.Portals,
			Error:   r.Error,
		}
		if !r.Success {
			entries[i].Image = ""
		}
		if entries[i].Portals == nil {
			entries[i].Portals = []string{}
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
