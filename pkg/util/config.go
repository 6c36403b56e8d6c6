package util

// PrefixConfig joins a flag prefix and an option name with a dot. An empty prefix leaves the
// option unchanged.
func PrefixConfig(prefix, option string) string {
	if prefix == "" {
		return option
	}
	return prefix + "." + option
}
