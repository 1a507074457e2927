package services

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateClientValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateClientRequest
		wantErr error
	}{
		{"valid", CreateClientRequest{Name: "Acme Textiles", Phone: strPtr("+7 (701) 555-12-34")}, nil},
		{"blank phone stored as null", CreateClientRequest{Name: "Nomad Print", Phone: strPtr("   ")}, nil},
		{"blank name", CreateClientRequest{Name: " "}, ErrClientValidation},
		{"letters in phone", CreateClientRequest{Name: "Acme", Phone: strPtr("call me")}, ErrClientValidation},
		{"phone too short", CreateClientRequest{Name: "Acme", Phone: strPtr("123")}, ErrClientValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewClientService(newFakeClientRepo(), fakeTx{})
			c, err := svc.CreateClient(tt.req)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotZero(t, c.ID)
		})
	}
}

func TestClientPhoneMustBeUnique(t *testing.T) {
	repo := newFakeClientRepo()
	svc := NewClientService(repo, fakeTx{})

	first, err := svc.CreateClient(CreateClientRequest{Name: "Acme", Phone: strPtr("+77015551234")})
	require.NoError(t, err)
	_, err = svc.CreateClient(CreateClientRequest{Name: "Copycat", Phone: strPtr("+77015551234")})
	require.ErrorIs(t, err, ErrPhoneNumberExists)

	second, err := svc.CreateClient(CreateClientRequest{Name: "Nomad", Phone: strPtr("+77015550000")})
	require.NoError(t, err)
	_, err = svc.UpdateClient(second.ID, UpdateClientRequest{Phone: first.Phone})
	require.ErrorIs(t, err, ErrPhoneNumberExists)

	updated, err := svc.UpdateClient(second.ID, UpdateClientRequest{Name: strPtr("Nomad Print"), FactoryName: strPtr("  ")})
	require.NoError(t, err)
	require.Equal(t, "Nomad Print", updated.Name)
	require.Nil(t, updated.FactoryName)

	_, err = svc.UpdateClient(99, UpdateClientRequest{Name: strPtr("x")})
	require.ErrorIs(t, err, ErrClientNotFound)
	_, err = svc.UpdateClient(second.ID, UpdateClientRequest{Name: strPtr("")})
	require.ErrorIs(t, err, ErrClientValidation)
}
