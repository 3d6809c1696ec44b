// Package version holds build-time version information, populated via
// -ldflags at release time.
package version

var (
	version = "0.0.0-dev"
	commit  = ""
	date    = ""
)

type Info struct {
	Version string
	Commit  string
	Date    string
}

func GetInfo() Info {
	return Info{
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}
