// Package appfs embeds the files the binaries need at runtime.
package appfs

import "embed"

//go:embed migrations/*.sql assets/common-passwords.txt assets/templates/email/*
var FS embed.FS
