// Package rules holds the keyword and alias tables that drive correlation,
// attribution, and inference. The tables are data, not logic: they can be
// replaced from a JSON file to retarget the engines at a different artifact
// taxonomy without touching code.
package rules

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed rules.schema.json
var schemaJSON []byte

// Alias maps a substring of a normalized program name to its canonical form.
// Order matters: the first matching alias wins.
type Alias struct {
	Match     string `json:"match"`
	Canonical string `json:"canonical"`
}

// Set is the complete rule table consumed by the analysis engines.
type Set struct {
	// Aliases canonicalize program names across sources.
	Aliases []Alias `json:"aliases"`

	// SystemPaths are path fragments that mark an event as OS activity.
	SystemPaths []string `json:"system_paths"`

	// SystemProcesses are process names that mark an event as OS activity.
	SystemProcesses []string `json:"system_processes"`

	// BrowserDownloadSources are collector source labels whose events count
	// as direct browser-download evidence.
	BrowserDownloadSources []string `json:"browser_download_sources"`

	// DownloadDirs are path fragments identifying likely download locations.
	DownloadDirs []string `json:"download_dirs"`

	// AppKeywords name messaging and cloud applications whose execution near
	// a file creation supports a non-browser acquisition inference.
	AppKeywords []string `json:"app_keywords"`

	// FileMetadataSource is the source label of the file-metadata collector,
	// the only producer of inference candidate files.
	FileMetadataSource string `json:"file_metadata_source"`
}

// Default returns the built-in rule tables.
func Default() Set {
	return Set{
		Aliases: []Alias{
			{Match: "microsoftedge", Canonical: "msedge"},
			{Match: "microsoft.windows.explorer", Canonical: "explorer"},
			{Match: "code", Canonical: "visual studio code"},
			{Match: "chrome", Canonical: "google chrome"},
			{Match: "firefox", Canonical: "mozilla firefox"},
		},
		SystemPaths: []string{
			"system32", "syswow64", `windows\system`,
			"windowsapps", `program files\windowsapps`,
			`windows\winsxs`, `windows\servicing`,
		},
		SystemProcesses: []string{
			"svchost", "services", "lsass", "winlogon", "csrss",
			"smss", "system", "idle", "system idle process",
		},
		BrowserDownloadSources: []string{
			"Chrome Downloads", "Edge Downloads", "Brave Downloads", "Firefox Downloads",
		},
		DownloadDirs: []string{`\downloads\`, `\desktop\`},
		AppKeywords: []string{
			"whatsapp", "telegram", "skype", "teams", "discord", "slack", "zoom",
			"onedrive", "dropbox", "googledrive", "icloud",
		},
		FileMetadataSource: "NTFS Metadata",
	}
}

// Load reads a rule file, validates it against the embedded schema, and
// overlays it on the defaults: fields absent from the file keep their
// built-in values.
func Load(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("read rules file: %w", err)
	}
	return Parse(data)
}

// Parse validates and decodes a JSON rule document.
func Parse(data []byte) (Set, error) {
	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return Set{}, fmt.Errorf("decode rules JSON: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("rules.schema.json", bytes.NewReader(schemaJSON)); err != nil {
		return Set{}, fmt.Errorf("load rules schema: %w", err)
	}
	schema, err := compiler.Compile("rules.schema.json")
	if err != nil {
		return Set{}, fmt.Errorf("compile rules schema: %w", err)
	}
	if err := schema.Validate(instance); err != nil {
		return Set{}, fmt.Errorf("validate rules: %w", err)
	}

	var loaded Set
	if err := json.Unmarshal(data, &loaded); err != nil {
		return Set{}, fmt.Errorf("decode rules: %w", err)
	}

	out := Default()
	if loaded.Aliases != nil {
		out.Aliases = loaded.Aliases
	}
	if loaded.SystemPaths != nil {
		out.SystemPaths = loaded.SystemPaths
	}
	if loaded.SystemProcesses != nil {
		out.SystemProcesses = loaded.SystemProcesses
	}
	if loaded.BrowserDownloadSources != nil {
		out.BrowserDownloadSources = loaded.BrowserDownloadSources
	}
	if loaded.DownloadDirs != nil {
		out.DownloadDirs = loaded.DownloadDirs
	}
	if loaded.AppKeywords != nil {
		out.AppKeywords = loaded.AppKeywords
	}
	if loaded.FileMetadataSource != "" {
		out.FileMetadataSource = loaded.FileMetadataSource
	}
	return out, nil
}
