package utils

import (
	"crypto/tls"
	"crypto/x509"
	"net"
	"testing"
)

func TestGenerateSelfSignedCertificate(t *testing.T) {
	certPEM, keyPEM, err := GenerateSelfSignedCertificate("0.0.0.0", "10.1.2.3", "timeserver.internal")
	if err != nil {
		t.Fatalf("GenerateSelfSignedCertificate() error = %v", err)
	}

	pair, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		t.Fatalf("X509KeyPair() error = %v", err)
	}
	cert, err := x509.ParseCertificate(pair.Certificate[0])
	if err != nil {
		t.Fatalf("ParseCertificate() error = %v", err)
	}

	for _, name := range []string{"localhost", "timeserver.internal"} {
		if err := cert.VerifyHostname(name); err != nil {
			t.Errorf("VerifyHostname(%q) error = %v", name, err)
		}
	}
	if err := cert.VerifyHostname("10.1.2.3"); err != nil {
		t.Errorf("VerifyHostname(10.1.2.3) error = %v", err)
	}
	for _, ip := range cert.IPAddresses {
		if ip.Equal(net.IPv4zero) {
			t.Error("unspecified address must not be in the certificate")
		}
	}
}
