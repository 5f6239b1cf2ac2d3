package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContractPayable(t *testing.T) {
	assert.True(t, ContractStatusInProgress.Payable())
	assert.False(t, ContractStatusNew.Payable())
	assert.False(t, ContractStatusTerminated.Payable())
}

func TestProfileFullName(t *testing.T) {
	assert.Equal(t, "Harry Potter", (&Profile{FirstName: "Harry", LastName: "Potter"}).FullName())
	assert.Equal(t, "Aragorn", (&Profile{FirstName: "Aragorn"}).FullName())
}
