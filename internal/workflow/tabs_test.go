package workflow

import (
	"testing"

	"github.com/qcbd/app-beneficiary/internal/validation"
	"github.com/stretchr/testify/assert"
)

func TestNextAndPreviousTab(t *testing.T) {
	assert.Equal(t, validation.TabAddress, NextTab(validation.TabPrimary))
	assert.Equal(t, validation.TabVerification, NextTab(validation.TabVerification))
	assert.Equal(t, validation.TabPrimary, PreviousTab(validation.TabPrimary))
	assert.Equal(t, validation.TabDocuments, PreviousTab(validation.TabVerification))
	assert.Equal(t, validation.TabPrimary, NextTab(validation.Tab(-3)))
	assert.Equal(t, validation.TabVerification, PreviousTab(validation.Tab(9)))
}
