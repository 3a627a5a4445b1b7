// Package config provides configuration types and loading for DarkHound.
//
// Configuration comes from a YAML file (explicit path, current
// directory, or the XDG config directory, in that order), with
// credentials supplied only through environment variables so they
// never land in files that get committed or shared.
package config
