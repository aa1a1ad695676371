package validation_test

import (
	"strings"
	"testing"

	"todoapi/internal/apperr"
	"todoapi/internal/models"
	"todoapi/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestValidPassword(t *testing.T) {
	cases := map[string]bool{
		"abc12345":                     true,
		"abcdefgh":                     false, // no digit
		"12345678":                     false, // no letter
		"ab1":                          false, // too short
		" abc12345":                    false, // leading space
		"abc12345 ":                    false, // trailing space
		"abc 12345":                    true,
		"abc12345\u00e9":               false, // non-ASCII
		strings.Repeat("a1", 64):       true,
		strings.Repeat("a1", 64) + "x": false, // 129 chars
	}

	for pw, want := range cases {
		assert.Equal(t, want, validation.ValidPassword(pw), "password %q", pw)
	}
}

func TestStruct_CreateUserTrimsAndValidates(t *testing.T) {
	v := validation.New()

	in := &models.CreateUserInput{Name: "  alice  ", Password: "abc12345"}
	require.NoError(t, v.Struct(in))
	assert.Equal(t, "alice", in.Name)

	blank := &models.CreateUserInput{Name: "   ", Password: "abc12345"}
	err := v.Struct(blank)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	fields := apperr.As(err).Context["fields"].(map[string]string)
	assert.Contains(t, fields, "name")
}

func TestStruct_WeakPasswordReportsJSONField(t *testing.T) {
	v := validation.New()

	err := v.Struct(&models.CreateUserInput{Name: "alice", Password: "short"})
	require.Error(t, err)

	fields := apperr.As(err).Context["fields"].(map[string]string)
	assert.Equal(t, "Field 'password' failed on the 'password' tag", fields["password"])
}

func TestStruct_CreateTodoNormalizesDescription(t *testing.T) {
	v := validation.New()

	in := &models.CreateTodoInput{Title: "  buy milk ", Description: strPtr("   ")}
	require.NoError(t, v.Struct(in))
	assert.Equal(t, "buy milk", in.Title)
	assert.Nil(t, in.Description)

	long := &models.CreateTodoInput{Title: strings.Repeat("x", 201)}
	assert.ErrorIs(t, v.Struct(long), apperr.ErrValidation)

	desc := &models.CreateTodoInput{Title: "t", Description: strPtr(strings.Repeat("d", 2001))}
	assert.ErrorIs(t, v.Struct(desc), apperr.ErrValidation)
}

func TestStruct_UpdateTodoPartial(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Struct(&models.UpdateTodoInput{}))

	blankTitle := &models.UpdateTodoInput{Title: strPtr("  ")}
	assert.ErrorIs(t, v.Struct(blankTitle), apperr.ErrValidation)

	clear := &models.UpdateTodoInput{Description: strPtr("  ")}
	require.NoError(t, v.Struct(clear))
	require.NotNil(t, clear.Description)
	assert.Equal(t, "", *clear.Description)
}

func TestStruct_UpdateUserPassword(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Struct(&models.UpdateUserInput{Password: strPtr("newpass99")}))
	assert.ErrorIs(t, v.Struct(&models.UpdateUserInput{Password: strPtr("weak")}), apperr.ErrValidation)
}
