package hyp3

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const ursHost = "urs.earthdata.nasa.gov"

// WriteNetrc records Earthdata URS credentials in the given netrc file so
// follow-up tools (wget, curl, GDAL vsicurl) can authenticate without
// prompting. An existing entry for the URS host is replaced; other entries
// are preserved.
func WriteNetrc(path, username, password string) error {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("hyp3: locate home directory: %w", err)
		}
		path = filepath.Join(home, ".netrc")
	}
	if username == "" {
		return fmt.Errorf("hyp3: netrc username required")
	}

	var kept []string
	if data, err := os.ReadFile(path); err == nil {
		for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
			if strings.Contains(line, "machine "+ursHost) {
				continue
			}
			kept = append(kept, line)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("hyp3: read netrc: %w", err)
	}

	kept = append(kept, fmt.Sprintf("machine %s login %s password %s", ursHost, username, password))
	content := strings.Join(kept, "\n") + "\n"

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("hyp3: write netrc: %w", err)
	}
	return nil
}
