package partner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	client, err := NewClient("Acme Corp", ClientTypeClient, "billing@acme.example")
	require.NoError(t, err)

	assert.Equal(t, "Acme Corp", client.Name)
	assert.Equal(t, ClientTypeClient, client.Type)
	assert.Empty(t, client.Branches)
}

func TestNewClient_Validation(t *testing.T) {
	tests := []struct {
		name       string
		clientName string
		clientType ClientType
		contact    string
	}{
		{"empty name", "", ClientTypeClient, "x@y.example"},
		{"invalid type", "Acme", ClientType("OTHER"), "x@y.example"},
		{"empty contact", "Acme", ClientTypeVendor, "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.clientName, tt.clientType, tt.contact)
			assert.Error(t, err)
		})
	}
}

func TestNewBranch(t *testing.T) {
	clientID := uuid.New()
	branch, err := NewBranch(clientID, "Downtown", "Toronto", "ON")
	require.NoError(t, err)

	assert.Equal(t, "ON", branch.Province)
	assert.True(t, branch.BelongsTo(clientID))
	assert.False(t, branch.BelongsTo(uuid.New()))
}

func TestNewBranch_Validation(t *testing.T) {
	clientID := uuid.New()

	_, err := NewBranch(uuid.Nil, "Downtown", "Toronto", "ON")
	assert.Error(t, err)

	_, err = NewBranch(clientID, "", "Toronto", "ON")
	assert.Error(t, err)

	_, err = NewBranch(clientID, "Downtown", "Toronto", "")
	assert.Error(t, err)
}

func TestBranch_Update(t *testing.T) {
	branch, err := NewBranch(uuid.New(), "Downtown", "Toronto", "ON")
	require.NoError(t, err)

	require.NoError(t, branch.Update("Uptown", "", "QC"))
	assert.Equal(t, "Uptown", branch.Name)
	assert.Equal(t, "Toronto", branch.City)
	assert.Equal(t, "QC", branch.Province)
}
