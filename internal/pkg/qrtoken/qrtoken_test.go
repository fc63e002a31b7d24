//go:build unit

package qrtoken_test

import (
	"testing"

	"nightgate/internal/pkg/qrtoken"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	signer := qrtoken.NewSigner("door-secret")

	payload := signer.Sign("tkt_8f2a91")
	token, err := signer.Verify(payload)

	require.NoError(t, err)
	assert.Equal(t, "tkt_8f2a91", token)
}

func TestVerifyRejections(t *testing.T) {
	signer := qrtoken.NewSigner("door-secret")
	other := qrtoken.NewSigner("different-secret")

	tests := []struct {
		name    string
		payload string
		errIs   error
	}{
		{"empty payload", "", qrtoken.ErrInvalidFormat},
		{"bare token without signature", "tkt_8f2a91", qrtoken.ErrUnsigned},
		{"missing token part", "." + "abc", qrtoken.ErrInvalidFormat},
		{"missing signature part", "tkt_8f2a91.", qrtoken.ErrInvalidFormat},
		{"tampered token", "tkt_TAMPERED." + signer.Sign("tkt_8f2a91")[len("tkt_8f2a91")+1:], qrtoken.ErrInvalidSignature},
		{"signed with wrong secret", other.Sign("tkt_8f2a91"), qrtoken.ErrInvalidSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := signer.Verify(tt.payload)
			assert.ErrorIs(t, err, tt.errIs)
		})
	}
}

func TestVerifyTokenContainingDots(t *testing.T) {
	// Only the last separator splits token from signature.
	signer := qrtoken.NewSigner("door-secret")

	payload := signer.Sign("evt.2025.vip_44")
	token, err := signer.Verify(payload)

	require.NoError(t, err)
	assert.Equal(t, "evt.2025.vip_44", token)
}
