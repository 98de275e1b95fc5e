package config

// Feature identifies an opt-in capability of the filesystem or OS under
// test. Features are enabled by declaring an entry for them in the
// [features] table of the configuration file.
type Feature string

const (
	// FeatureChflags marks support for the chflags family of calls.
	FeatureChflags Feature = "chflags"
	// FeatureChflagsSfSnapshot marks support for the SF_SNAPSHOT flag.
	FeatureChflagsSfSnapshot Feature = "chflags_sf_snapshot"
	// FeaturePosixFallocate marks support for posix_fallocate.
	FeaturePosixFallocate Feature = "posix_fallocate"
	// FeatureRenameCtime marks filesystems where rename updates ctime.
	FeatureRenameCtime Feature = "rename_ctime"
	// FeatureStatStBirthtime marks support for st_birthtime in stat.
	FeatureStatStBirthtime Feature = "stat_st_birthtime"
	// FeatureUtimeNow marks support for the UTIME_NOW special value.
	FeatureUtimeNow Feature = "utime_now"
)

// FeatureInfo pairs a feature with its user-facing documentation, printed
// by --list-features.
type FeatureInfo struct {
	Name Feature
	Doc  string
}

// KnownFeatures lists every feature identifier the harness understands, in
// display order.
var KnownFeatures = []FeatureInfo{
	{FeatureChflags, "file flags can be modified with chflags(2)"},
	{FeatureChflagsSfSnapshot, "the SF_SNAPSHOT file flag is supported"},
	{FeaturePosixFallocate, "posix_fallocate(2) is supported"},
	{FeatureRenameCtime, "rename(2) updates the ctime of the renamed file"},
	{FeatureStatStBirthtime, "stat(2) reports a file creation time"},
	{FeatureUtimeNow, "utimensat(2) accepts the UTIME_NOW special value"},
}

// IsKnownFeature reports whether the identifier is one the harness
// understands.
func IsKnownFeature(f Feature) bool {
	for _, info := range KnownFeatures {
		if info.Name == f {
			return true
		}
	}
	return false
}

// FeaturesConfig describes the capabilities of the filesystem under test.
type FeaturesConfig struct {
	// FileFlags lists the file flags (UF_IMMUTABLE, ...) settable on the
	// filesystem under test.
	FileFlags []string

	// SecondaryFS is a path on a different filesystem, used by
	// cross-filesystem tests (EXDEV and friends). Empty disables them.
	SecondaryFS string

	// Enabled is the set of opt-in features declared in the
	// configuration.
	Enabled map[Feature]struct{}
}

func (f FeaturesConfig) IsEnabled(feature Feature) bool {
	_, ok := f.Enabled[feature]
	return ok
}

func (f FeaturesConfig) HasFileFlag(flag string) bool {
	for _, have := range f.FileFlags {
		if have == flag {
			return true
		}
	}
	return false
}
