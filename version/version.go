// version.go - Versions-Information fuer maskform
// Wird beim Release-Build via -ldflags ueberschrieben
package version

var Version string = "0.0.0"
