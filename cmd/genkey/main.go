package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"flag"
	"log"
	"os"
)

// Утилита для генерации RSA-пары под RS256 токены сервиса.
// Выход — два PEM файла, пути задаются флагами.
func main() {
	bits := flag.Int("bits", 2048, "RSA key size")
	privPath := flag.String("private", "private.pem", "private key output path")
	pubPath := flag.String("public", "public.pem", "public key output path")
	flag.Parse()

	key, err := rsa.GenerateKey(rand.Reader, *bits)
	if err != nil {
		log.Fatalf("generate key: %v", err)
	}

	privBlock := &pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}
	if err := writePEM(*privPath, privBlock, 0600); err != nil {
		log.Fatalf("write private key: %v", err)
	}

	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		log.Fatalf("marshal public key: %v", err)
	}
	pubBlock := &pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes}
	if err := writePEM(*pubPath, pubBlock, 0644); err != nil {
		log.Fatalf("write public key: %v", err)
	}

	log.Printf("keys written: %s, %s", *privPath, *pubPath)
}

func writePEM(path string, block *pem.Block, mode os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer f.Close()
	return pem.Encode(f, block)
}
