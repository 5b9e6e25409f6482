package version

// Version is overridden at build time with -ldflags "-X extwing/pkg/version.Version=...".
var Version = "v0.3.0"
