// Package build holds version metadata set with -ldflags "-X".
package build

import (
	"fmt"
	"time"
)

var (
	commit  = ""
	date    = ""
	version = "dev"
	repoURL = ""
)

func init() {
	date, _ := time.Parse(time.RFC3339, date)
	Current = New(version, commit, date, repoURL)
}

var Current Build

type Build struct {
	Commit     string
	Version    string
	Date       time.Time
	RepoURL    string
	CommitURL  string
	ReleaseURL string
}

func New(version, commit string, date time.Time, repoURL string) Build {
	b := Build{
		Commit:     commit,
		Version:    version,
		Date:       date,
		RepoURL:    repoURL,
		CommitURL:  repoURL + "/tree/" + commit,
		ReleaseURL: repoURL + "/releases/tag/" + version,
	}
	if repoURL == "" {
		b.CommitURL = ""
		b.ReleaseURL = ""
	}
	return b
}

// String is the version shown by --version.
func (b Build) String() string {
	if b.Commit == "" {
		return b.Version
	}
	commit := b.Commit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	if b.Date.IsZero() {
		return fmt.Sprintf("%s (%s)", b.Version, commit)
	}
	return fmt.Sprintf("%s (%s, %s)", b.Version, commit, b.Date.Format(time.DateOnly))
}
