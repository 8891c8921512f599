package permissions

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePartitionsSectionsAndAreas(t *testing.T) {
	r := Default()

	sel, err := r.Encode([]string{
		"Sales orders edition",
		"Sales Transactions",
		"Sales quotations",
		"Company Setup",
		"Sales orders edition",
	})
	require.NoError(t, err)
	assert.Equal(t, "512;3072", sel.Sections)
	assert.Equal(t, "3075;3082", sel.Areas)
}

func TestEncodeEmpty(t *testing.T) {
	sel, err := Default().Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, Selection{}, sel)
}

func TestEncodeRejectsUnknownName(t *testing.T) {
	_, err := Default().Encode([]string{"Sales Transactions", "Sales ordes edition"})
	require.Error(t, err)

	var unknown *UnknownPermissionError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, []string{"Sales ordes edition"}, unknown.Names)
	assert.Contains(t, err.Error(), `"Sales ordes edition"`)
}

func TestEncodeLenientDropsUnknownName(t *testing.T) {
	sel, dropped := Default().EncodeLenient([]string{"Sales Transactions", "Typo"})
	assert.Equal(t, "3072", sel.Sections)
	assert.Empty(t, sel.Areas)
	assert.Equal(t, []string{"Typo"}, dropped)
}

func TestDecode(t *testing.T) {
	names, err := Default().Decode("3072; 512", "3082;;3075")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Company Setup",
		"Sales Transactions",
		"Sales orders edition",
		"Sales quotations",
	}, names)
}

func TestDecodeEmpty(t *testing.T) {
	names, err := Default().Decode("", "  ")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestDecodeErrors(t *testing.T) {
	r := Default()

	_, err := r.Decode("abc", "")
	assert.ErrorContains(t, err, "invalid permission id")

	_, err = r.Decode("3072", "99999")
	var unknown *UnknownPermissionError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, []int{99999}, unknown.IDs)

	_, err = r.Decode("3075", "")
	assert.ErrorContains(t, err, "is not a section")
}

func TestSelectionRoundTrip(t *testing.T) {
	r := Default()

	// Every section with every area is the widest possible role.
	var names []string
	for _, p := range r.All() {
		names = append(names, p.Name)
	}

	sel, err := r.Encode(names)
	require.NoError(t, err)

	decoded, err := r.Decode(sel.Sections, sel.Areas)
	require.NoError(t, err)
	sort.Strings(names)
	sort.Strings(decoded)
	assert.Equal(t, names, decoded)

	again, err := r.Encode(decoded)
	require.NoError(t, err)
	assert.Equal(t, sel, again)
}

func TestStoredSelectionRoundTripIsOrderIndependent(t *testing.T) {
	r := Default()

	names, err := r.Decode("3072;256", "3082;3075;257")
	require.NoError(t, err)

	sel, err := r.Encode(names)
	require.NoError(t, err)
	assert.Equal(t, "256;3072", sel.Sections)
	assert.Equal(t, "257;3075;3082", sel.Areas)
}

func TestCodesFor(t *testing.T) {
	set, err := Default().CodesFor("3072", "3075")
	require.NoError(t, err)
	assert.Equal(t, SetOf("SS_SALES", "SA_SALESORDER"), set)

	set, err = Default().CodesFor("", "")
	require.NoError(t, err)
	assert.Empty(t, set)
}
