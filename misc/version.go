// Package misc keeps program identity shared by all packages.
package misc

// Set at link time with -ldflags "-X bookview/misc.version=..."
var (
	appName = "bookview"
	version = "dev"
	gitHash = "unknown"
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
