package ioscfg

// Operations describes what the IOS configuration layer supports.
type Operations struct {
	SupportsDiffReplace        bool `json:"supports_diff_replace"`
	SupportsCommit             bool `json:"supports_commit"`
	SupportsRollback           bool `json:"supports_rollback"`
	SupportsDefaults           bool `json:"supports_defaults"`
	SupportsOnboxDiff          bool `json:"supports_onbox_diff"`
	SupportsCommitComment      bool `json:"supports_commit_comment"`
	SupportsMultilineDelimiter bool `json:"supports_multiline_delimiter"`
	SupportsDiffMatch          bool `json:"supports_diff_match"`
	SupportsDiffIgnoreLines    bool `json:"supports_diff_ignore_lines"`
	SupportsGenerateDiff       bool `json:"supports_generate_diff"`
	SupportsReplace            bool `json:"supports_replace"`
}

// OptionValues lists the accepted values of each diff option.
type OptionValues struct {
	Format      []string `json:"format"`
	DiffMatch   []string `json:"diff_match"`
	DiffReplace []string `json:"diff_replace"`
	Output      []string `json:"output"`
}

// Capabilities combines the operation flags and option values.
type Capabilities struct {
	NetworkOS        string       `json:"network_os"`
	DeviceOperations Operations   `json:"device_operations"`
	OptionValues     OptionValues `json:"option_values"`
}

// DeviceOperations reports the supported operations. Commits and rollback are
// not available on IOS; diffs are generated locally.
func DeviceOperations() Operations {
	return Operations{
		SupportsDiffReplace:        true,
		SupportsDefaults:           true,
		SupportsMultilineDelimiter: true,
		SupportsDiffMatch:          true,
		SupportsDiffIgnoreLines:    true,
		SupportsGenerateDiff:       true,
	}
}

// SupportedOptions reports the accepted diff option values.
func SupportedOptions() OptionValues {
	return OptionValues{
		Format:      []string{"text"},
		DiffMatch:   []string{string(MatchLine), string(MatchStrict), string(MatchExact), string(MatchNone)},
		DiffReplace: []string{string(ReplaceLine), string(ReplaceBlock)},
		Output:      []string{},
	}
}

// GetCapabilities returns the full capability report.
func GetCapabilities() Capabilities {
	return Capabilities{
		NetworkOS:        "ios",
		DeviceOperations: DeviceOperations(),
		OptionValues:     SupportedOptions(),
	}
}
