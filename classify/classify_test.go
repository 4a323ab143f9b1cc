package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relenghq/shipit/model"
)

func firefoxCtx() Context {
	return Context{
		Product:         model.ProductFirefox,
		CurrentESRMajor: "45",
		NextESRMajor:    "52",
		SpecialMajors:   []string{"14.0.1", "38.0.1"},
	}
}

func TestMatches_Major(t *testing.T) {
	ctx := firefoxCtx()

	assert.True(t, Matches("46.0", CategoryMajor, ctx))
	assert.True(t, Matches("46.0esr", CategoryMajor, ctx))
	assert.False(t, Matches("46.0b3", CategoryMajor, ctx))

	// End-only anchoring: point releases also carry an X.Y tail.
	assert.True(t, Matches("46.0.1", CategoryMajor, ctx))
	assert.True(t, Matches("14.0.2", CategoryMajor, ctx))

	// Legacy numbering oddities are majors by exception.
	assert.True(t, Matches("14.0.1", CategoryMajor, ctx))
	assert.True(t, Matches("38.0.1", CategoryMajor, ctx))
}

func TestMatches_MajorTailOfFourPartVersion(t *testing.T) {
	ctx := firefoxCtx()

	// 1.x-era versions have four components; the trailing 0.14 makes them
	// majors even though the full string is not X.Y.
	assert.True(t, Matches("1.5.0.14", CategoryMajor, ctx))
	assert.True(t, Matches("1.5.0.14", CategoryStability, ctx))
}

func TestMatches_MajorExcludeESR(t *testing.T) {
	ctx := firefoxCtx()
	ctx.ExcludeESR = true

	assert.True(t, Matches("46.0", CategoryMajor, ctx))
	assert.False(t, Matches("46.0esr", CategoryMajor, ctx))
}

func TestMatches_Stability(t *testing.T) {
	ctx := firefoxCtx()

	assert.True(t, Matches("46.0.1", CategoryStability, ctx))
	assert.True(t, Matches("1.5.0.8", CategoryStability, ctx))
	assert.True(t, Matches("45.2.0esr", CategoryStability, ctx))
	assert.False(t, Matches("46.0", CategoryStability, ctx))
	assert.False(t, Matches("46.0.1b1", CategoryStability, ctx))
}

func TestMatches_Dev(t *testing.T) {
	ctx := firefoxCtx()

	assert.True(t, Matches("23.0b2", CategoryDev, ctx))
	assert.True(t, Matches("1.0rc2", CategoryDev, ctx))
	assert.True(t, Matches("3.6.3plugin1", CategoryDev, ctx))
	assert.True(t, Matches("3.6.4build7", CategoryDev, ctx))
	assert.True(t, Matches("38.0.5b2", CategoryDev, ctx))
	assert.False(t, Matches("46.0", CategoryDev, ctx))
	assert.False(t, Matches("46.0.1", CategoryDev, ctx))
}

func TestMatches_ESR(t *testing.T) {
	ctx := firefoxCtx()

	assert.True(t, Matches("45.2.0esr", CategoryESR, ctx))
	assert.True(t, Matches("45.0esr", CategoryESR, ctx))
	assert.False(t, Matches("52.0esr", CategoryESR, ctx))
	assert.False(t, Matches("45.2.0", CategoryESR, ctx))

	assert.True(t, Matches("52.0esr", CategoryESRNext, ctx))
	assert.True(t, Matches("52.1.0esr", CategoryESRNext, ctx))
	assert.False(t, Matches("45.2.0esr", CategoryESRNext, ctx))
}

func TestMatches_ESRNextUnconfigured(t *testing.T) {
	ctx := firefoxCtx()
	ctx.NextESRMajor = ""

	// Single-ESR mode: no match, not an error.
	assert.False(t, Matches("52.0esr", CategoryESRNext, ctx))
}

func TestClassify_CallerOrderPreserved(t *testing.T) {
	ctx := firefoxCtx()
	categories := []Category{CategoryDev, CategoryStability, CategoryMajor}

	matches := Classify("46.0", categories, ctx)
	require.Len(t, matches, 3)
	assert.Equal(t, CategoryDev, matches[0].Category)
	assert.False(t, matches[0].Matched)
	assert.Equal(t, CategoryStability, matches[1].Category)
	assert.False(t, matches[1].Matched)
	assert.Equal(t, CategoryMajor, matches[2].Category)
	assert.True(t, matches[2].Matched)
}

func TestClassify_Idempotent(t *testing.T) {
	ctx := firefoxCtx()
	for i := 0; i < 2; i++ {
		assert.True(t, Matches("45.2.0esr", CategoryESR, ctx))
	}
}

func TestFirst(t *testing.T) {
	ctx := firefoxCtx()

	cat, ok := First("45.2.0esr", []Category{CategoryESR, CategoryStability}, ctx)
	require.True(t, ok)
	assert.Equal(t, CategoryESR, cat)

	// Same version, opposite order: first match in caller order wins.
	cat, ok = First("45.2.0esr", []Category{CategoryStability, CategoryESR}, ctx)
	require.True(t, ok)
	assert.Equal(t, CategoryStability, cat)

	_, ok = First("46.0b1", []Category{CategoryMajor, CategoryStability}, ctx)
	assert.False(t, ok)
}

func TestDisplayVersion(t *testing.T) {
	assert.Equal(t, "45.2.0", DisplayVersion("45.2.0esr"))
	assert.Equal(t, "46.0", DisplayVersion("46.0"))
}
