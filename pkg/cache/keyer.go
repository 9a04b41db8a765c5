package cache

import "strings"

const (
	strikePrefix   = "strike:"
	artifactPrefix = "artifact:"
)

// Keyer derives cache keys.
type Keyer interface {
	// StrikeKey identifies one strike by its canvas, seed and generator parameters.
	StrikeKey(opts StrikeKeyOpts) string

	// ArtifactKey identifies one encoded output of a strike.
	ArtifactKey(strikeKey string, opts ArtifactKeyOpts) string
}

// StrikeKeyOpts are the inputs that determine a strike's geometry.
type StrikeKeyOpts struct {
	Width      int
	Height     int
	Seed       uint64
	ParamsHash string
}

// ArtifactKeyOpts are the inputs that determine how a strike is encoded.
type ArtifactKeyOpts struct {
	Format    string
	Scale     float64
	StyleHash string
	Detailed  bool
}

// DefaultKeyer hashes key inputs with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// StrikeKey implements Keyer.
func (DefaultKeyer) StrikeKey(opts StrikeKeyOpts) string {
	return strikePrefix + digest(opts.Width, opts.Height, opts.Seed, opts.ParamsHash)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(strikeKey string, opts ArtifactKeyOpts) string {
	return artifactPrefix + opts.Format + ":" + digest(strikeKey, opts.Scale, opts.StyleHash, opts.Detailed)
}

// KeyFormat returns the artifact format a key was built for, "strike" for
// strike keys and "other" for anything else. Scope prefixes are ignored.
func KeyFormat(key string) string {
	if i := strings.LastIndex(key, artifactPrefix); i >= 0 {
		format, _, ok := strings.Cut(key[i+len(artifactPrefix):], ":")
		if ok && validFormatName(format) {
			return format
		}
	}
	if strings.Contains(key, strikePrefix) {
		return "strike"
	}
	return "other"
}

// validFormatName accepts names that are safe as a directory name.
func validFormatName(s string) bool {
	if s == "" || len(s) > 16 {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
