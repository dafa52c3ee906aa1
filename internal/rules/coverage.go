package rules

// Unmatched returns the files that every decision left non-matching, that is
// the files no configured label accepted. With no decisions every file is
// unmatched.
func Unmatched(files []string, decisions []Decision) []string {
	out := intersect(files, files)
	for _, d := range decisions {
		out = intersect(out, d.NonMatching)
	}
	return out
}
