package security

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSelfSigned(t *testing.T, commonName string) (certFile, keyFile string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: commonName},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	require.NoError(t, err)

	dir := t.TempDir()
	certFile = filepath.Join(dir, "server.crt")
	keyFile = filepath.Join(dir, "server.key")

	require.NoError(t, os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER}), 0o600))
	return certFile, keyFile
}

func TestServerTLSConfigDisabled(t *testing.T) {
	cfg, err := ServerTLSConfig(TLSConfig{})
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestServerTLSConfigLoadsKeyPair(t *testing.T) {
	certFile, keyFile := writeSelfSigned(t, "threestatement")

	cfg, err := ServerTLSConfig(TLSConfig{CertFile: certFile, KeyFile: keyFile})
	require.NoError(t, err)
	require.Len(t, cfg.Certificates, 1)
	assert.Equal(t, tls.NoClientCert, cfg.ClientAuth)
	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
}

func TestServerTLSConfigMutual(t *testing.T) {
	certFile, keyFile := writeSelfSigned(t, "threestatement")
	caFile, _ := writeSelfSigned(t, "clients")

	cfg, err := ServerTLSConfig(TLSConfig{CertFile: certFile, KeyFile: keyFile, ClientCAFile: caFile})
	require.NoError(t, err)
	assert.Equal(t, tls.RequireAndVerifyClientCert, cfg.ClientAuth)
	assert.NotNil(t, cfg.ClientCAs)
}

func TestServerTLSConfigErrors(t *testing.T) {
	certFile, keyFile := writeSelfSigned(t, "threestatement")

	_, err := ServerTLSConfig(TLSConfig{CertFile: certFile})
	assert.Error(t, err)

	_, err = ServerTLSConfig(TLSConfig{CertFile: "/nonexistent/server.crt", KeyFile: keyFile})
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "ca.crt")
	require.NoError(t, os.WriteFile(bad, []byte("not a certificate"), 0o600))
	_, err = ServerTLSConfig(TLSConfig{CertFile: certFile, KeyFile: keyFile, ClientCAFile: bad})
	assert.Error(t, err)
}
