package classify

import (
	"math/rand"
	"testing"

	"github.com/jgivc/libmvbundle/internal/entity"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

func primary(paths ...string) []entity.DiscoveredPath {
	return discovered(entity.RootPrimary, paths...)
}

func thirdParty(paths ...string) []entity.DiscoveredPath {
	return discovered(entity.RootThirdParty, paths...)
}

func discovered(root entity.Root, paths ...string) []entity.DiscoveredPath {
	res := make([]entity.DiscoveredPath, 0, len(paths))
	for _, p := range paths {
		res = append(res, entity.DiscoveredPath{Path: p, Root: root})
	}

	return res
}

func newClassifier() *Classifier {
	return New(language.AmericanEnglish, []string{"test_data_sets"})
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		paths    []entity.DiscoveredPath
		expected *entity.Classification
	}{
		{
			name:  "Empty roots",
			paths: nil,
			expected: &entity.Classification{
				Sources:           []string{},
				Headers:           []string{},
				ThirdPartySources: []string{},
				ThirdPartyHeaders: []string{},
				Tests:             []entity.TestDescriptor{},
			},
		},
		{
			name:  "Single source and header",
			paths: primary("libmv/foo.cc", "libmv/foo.h"),
			expected: &entity.Classification{
				Sources:           []string{"libmv/foo.cc"},
				Headers:           []string{"libmv/foo.h"},
				ThirdPartySources: []string{},
				ThirdPartyHeaders: []string{},
				Tests:             []entity.TestDescriptor{},
			},
		},
		{
			name: "Tests are redirected",
			paths: primary(
				"libmv/tracking/klt.cc",
				"libmv/tracking/klt_test.cc",
				"libmv/tracking/klt.h",
			),
			expected: &entity.Classification{
				Sources:           []string{"libmv/tracking/klt.cc"},
				Headers:           []string{"libmv/tracking/klt.h"},
				ThirdPartySources: []string{},
				ThirdPartyHeaders: []string{},
				Tests: []entity.TestDescriptor{
					{Name: "klt", Path: "libmv/tracking/klt_test.cc"},
				},
			},
		},
		{
			name: "Both roots, mixed extensions, descending order",
			paths: append(
				primary(
					"libmv/base/vector.cc",
					"libmv/autotrack/autotrack.cc",
					"libmv/image/convolve.CPP",
					"libmv/simple_pipeline/bundle.c",
					"libmv/base/vector.h",
					"libmv/README",
					"libmv/CMakeLists.txt",
				),
				thirdParty(
					"third_party/gflags/gflags.cc",
					"third_party/glog/src/logging.cc",
					"third_party/glog/src/utilities.h",
					"third_party/gflags/config.h",
					"third_party/gflags/README.libmv",
				)...,
			),
			expected: &entity.Classification{
				Sources: []string{
					"libmv/simple_pipeline/bundle.c",
					"libmv/image/convolve.CPP",
					"libmv/base/vector.cc",
					"libmv/autotrack/autotrack.cc",
				},
				Headers: []string{"libmv/base/vector.h"},
				ThirdPartySources: []string{
					"third_party/glog/src/logging.cc",
					"third_party/gflags/gflags.cc",
				},
				ThirdPartyHeaders: []string{
					"third_party/glog/src/utilities.h",
					"third_party/gflags/config.h",
				},
				Tests: []entity.TestDescriptor{},
			},
		},
		{
			name: "Fixture data is excluded everywhere",
			paths: append(
				primary(
					"libmv/multiview/test_data_sets.cc",
					"libmv/multiview/test_data_sets.h",
					"libmv/multiview/test_data_sets/points.h",
					"libmv/multiview/test_data_sets/solver_test.cc",
					"libmv/multiview/fundamental.cc",
				),
				thirdParty(
					"third_party/ceres/test_data_sets/data.cc",
				)...,
			),
			expected: &entity.Classification{
				Sources:           []string{"libmv/multiview/fundamental.cc"},
				Headers:           []string{},
				ThirdPartySources: []string{},
				ThirdPartyHeaders: []string{},
				Tests:             []entity.TestDescriptor{},
			},
		},
		{
			name: "Third party tests are redirected too",
			paths: thirdParty(
				"third_party/msinttypes/stdint.h",
				"third_party/gflags/gflags_test.cc",
			),
			expected: &entity.Classification{
				Sources:           []string{},
				Headers:           []string{},
				ThirdPartySources: []string{},
				ThirdPartyHeaders: []string{"third_party/msinttypes/stdint.h"},
				Tests: []entity.TestDescriptor{
					{Name: "gflags", Path: "third_party/gflags/gflags_test.cc"},
				},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, newClassifier().Classify(tc.paths))
		})
	}
}

func TestClassifyTestsOrder(t *testing.T) {
	res := newClassifier().Classify(primary(
		"libmv/tracking/klt_test.cc",
		"libmv/base/vector_test.cc",
		"libmv/multiview/homography_test.cc",
		"libmv/image/image_test.cc",
	))

	require.Equal(t, []entity.TestDescriptor{
		{Name: "klt", Path: "libmv/tracking/klt_test.cc"},
		{Name: "homography", Path: "libmv/multiview/homography_test.cc"},
		{Name: "image", Path: "libmv/image/image_test.cc"},
		{Name: "vector", Path: "libmv/base/vector_test.cc"},
	}, res.Tests)
	require.Empty(t, res.Sources)
}

func TestClassifyLocaleAware(t *testing.T) {
	// Byte order would put "alpha" before "Beta" in a descending list.
	res := newClassifier().Classify(primary("libmv/alpha.cc", "libmv/Beta.cc", "libmv/gamma.cc"))

	require.Equal(t, []string{"libmv/gamma.cc", "libmv/Beta.cc", "libmv/alpha.cc"}, res.Sources)
}

func TestClassifyDeterministic(t *testing.T) {
	paths := append(
		primary(
			"libmv/numeric/numeric.cc",
			"libmv/numeric/numeric.h",
			"libmv/numeric/numeric_test.cc",
			"libmv/numeric/poly.h",
			"libmv/numeric/levenberg_marquardt.h",
			"libmv/tracking/track_region.cc",
			"libmv/tracking/brute_region_tracker.cc",
			"libmv/tracking/Brute_region_tracker.cc",
			"libmv/tracking/pyramid_region_tracker_test.cc",
			"libmv/base/scoped_ptr_test.cc",
		),
		thirdParty(
			"third_party/glog/src/logging.cc",
			"third_party/glog/src/raw_logging.cc",
			"third_party/glog/src/glog/logging.h",
		)...,
	)

	c := newClassifier()
	expected := c.Classify(paths)

	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := append([]entity.DiscoveredPath(nil), paths...)
		rnd.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

		require.Equal(t, expected, c.Classify(shuffled))
	}
}

func TestClassifyOrderingInvariant(t *testing.T) {
	paths := primary(
		"libmv/a.cc", "libmv/A.cc", "libmv/b/c.cc", "libmv/b_c.cc", "libmv/b.c.cc",
		"libmv/z.cc", "libmv/Z.cc", "libmv/10.cc", "libmv/9.cc", "libmv/a-b.cc",
	)

	res := newClassifier().Classify(paths)
	require.Len(t, res.Sources, len(paths))

	col := collate.New(language.AmericanEnglish)
	for i := 1; i < len(res.Sources); i++ {
		prev, cur := res.Sources[i-1], res.Sources[i]
		require.GreaterOrEqual(t, col.CompareString(prev, cur), 0, "%s must not sort before %s", prev, cur)
		require.NotEqual(t, prev, cur)
	}
}

func TestClassifyDuplicates(t *testing.T) {
	res := newClassifier().Classify(primary("libmv/foo.cc", "libmv/foo.cc"))
	require.Equal(t, []string{"libmv/foo.cc"}, res.Sources)
}

func TestClassifyTestWithoutName(t *testing.T) {
	res := newClassifier().Classify(primary("libmv/image/2_test.cc", "libmv/image/3_test.cc", "libmv/image/image_test.cc"))

	require.Equal(t, []entity.TestDescriptor{{Name: "image", Path: "libmv/image/image_test.cc"}}, res.Tests)
	require.Equal(t, []string{"libmv/image/3_test.cc", "libmv/image/2_test.cc"}, res.Sources)
}

func TestTestName(t *testing.T) {
	testCases := []struct {
		path     string
		expected string
		ok       bool
	}{
		{path: "libmv/tracking/klt_test.cc", expected: "klt", ok: true},
		{path: "libmv/simple_pipeline/camera_intrinsics_test.cc", expected: "camera_intrinsics", ok: true},
		{path: "libmv/image/image2_test.cpp", expected: "image", ok: true},
		{path: "libmv/image/Sample_test.C", expected: "Sample", ok: true},
		{path: "libmv/image/sample_test.h"},
		{path: "libmv/image/sample.cc"},
		{path: "libmv/image/_test.cc"},
		{path: "libmv/image/2_test.cc"},
		{path: "libmv/image/3-4_test.cpp"},
		{path: "libmv/image/test_sample.cc"},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			name, ok := TestName(tc.path)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.expected, name)
		})
	}
}

func TestCategory(t *testing.T) {
	require.Equal(t, entity.CategorySource, Category("libmv/foo.cc"))
	require.Equal(t, entity.CategorySource, Category("libmv/foo.CPP"))
	require.Equal(t, entity.CategorySource, Category("libmv/foo.c"))
	require.Equal(t, entity.CategoryHeader, Category("libmv/foo.H"))
	require.Equal(t, entity.CategoryOther, Category("libmv/foo.hpp"))
	require.Equal(t, entity.CategoryOther, Category("libmv/README"))
}
