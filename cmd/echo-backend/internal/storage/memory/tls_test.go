package memory

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hasirciogluhq/echo-backend/cmd/echo-backend/internal/utils"
)

func TestTLSProvider(t *testing.T) {
	ctx := context.Background()
	p := NewTLSProvider()

	_, err := p.GetCertificate(ctx)
	assert.ErrorIs(t, err, os.ErrNotExist)

	certPEM, keyPEM, err := utils.GenerateSelfSignedCert()
	require.NoError(t, err)
	require.NoError(t, p.Store(ctx, certPEM, keyPEM))

	cert, err := p.GetCertificate(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, cert.Certificate)
}

func TestTLSProviderRejectsGarbage(t *testing.T) {
	p := NewTLSProvider()

	err := p.Store(context.Background(), []byte("not a cert"), []byte("not a key"))
	assert.Error(t, err)

	_, err = p.GetCertificate(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
