package foundation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pipemerge/internal/foundation/errors"
)

func TestValidatorChain(t *testing.T) {
	chain := NewValidatorChain(Required("build.help_format")).
		Add(OneOf("build.help_format", []string{"Website", "HtmlHelp1"}))

	require.True(t, chain.Validate("Website").Valid)

	res := chain.Validate("")
	require.False(t, res.Valid)
	require.Len(t, res.Errors, 2)
	require.Equal(t, "required", res.Errors[0].Code)
}

func TestValidationResult_ToError(t *testing.T) {
	require.NoError(t, Valid().ToError())

	var res ValidationResult
	res.Valid = true
	res.Add("output.directory", "required", "must be set for %s", "merge")
	err := res.ToError()
	require.Error(t, err)
	require.True(t, errors.HasCategory(err, errors.CategoryConfig))
	require.Contains(t, err.Error(), "output.directory: must be set for merge")
}
