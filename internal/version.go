package internal

import "fmt"

var (
	// These variables are here only to show current version. They are set in makefile during build process
	TimeserverVersion         = "devel"
	GitRevision               = "devel"
	TimeserverVersionRevision = fmt.Sprintf("%s-%s", TimeserverVersion, GitRevision)
)
