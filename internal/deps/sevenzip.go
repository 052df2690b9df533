package deps

import "strings"

// SevenZipCandidates is the search order used when no binary is configured.
var SevenZipCandidates = []string{"7z", "7zz", "7za", "/usr/local/bin/7z", "/opt/local/bin/7z"}

// ResolveSevenZip returns the 7-Zip executable that builds cb7 archives.
func ResolveSevenZip(configured string) (string, error) {
	return Resolve(configured, SevenZipCandidates)
}

// CheckSevenZip reports the 7-Zip binary as a Status. It is required only
// when the configured format can produce cb7 archives.
func CheckSevenZip(configured string, required bool) Status {
	status := Status{
		Name:        "7-Zip",
		Command:     strings.TrimSpace(configured),
		Description: "Builds cb7 archives",
		Optional:    !required,
	}
	path, err := ResolveSevenZip(configured)
	if err != nil {
		status.Detail = "7-Zip " + err.Error()
		return status
	}
	status.Command = path
	status.Available = true
	return status
}
