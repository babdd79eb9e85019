// internal/state/archive.go
package state

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/blake2b"
)

// Archive compresses a finished session log to <path>.zst, writes a
// BLAKE2b-256 checksum of the uncompressed content to a sidecar file, and
// removes the original. The returned path is the archive file.
func Archive(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open log: %w", err)
	}
	defer src.Close()

	archivePath := path + ".zst"
	dst, err := os.Create(archivePath)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer dst.Close()

	enc, err := zstd.NewWriter(dst)
	if err != nil {
		return "", fmt.Errorf("create zstd writer: %w", err)
	}

	hasher, err := blake2b.New256(nil)
	if err != nil {
		return "", fmt.Errorf("create hasher: %w", err)
	}

	if _, err := io.Copy(io.MultiWriter(enc, hasher), src); err != nil {
		enc.Close()
		os.Remove(archivePath)
		return "", fmt.Errorf("compress log: %w", err)
	}
	if err := enc.Close(); err != nil {
		os.Remove(archivePath)
		return "", fmt.Errorf("flush archive: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(archivePath)
		return "", fmt.Errorf("close archive: %w", err)
	}

	sum := hex.EncodeToString(hasher.Sum(nil))
	sumLine := fmt.Sprintf("%s  %s\n", sum, filepath.Base(path))
	if err := os.WriteFile(archivePath+".b2sum", []byte(sumLine), 0o644); err != nil {
		os.Remove(archivePath)
		return "", fmt.Errorf("write checksum: %w", err)
	}

	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("remove original log: %w", err)
	}
	return archivePath, nil
}

// Verify decompresses the archive and compares its content digest against
// the checksum sidecar.
func Verify(archivePath string) error {
	sumData, err := os.ReadFile(archivePath + ".b2sum")
	if err != nil {
		return fmt.Errorf("read checksum: %w", err)
	}
	want, _, _ := strings.Cut(strings.TrimSpace(string(sumData)), " ")
	if want == "" {
		return fmt.Errorf("malformed checksum file for %s", archivePath)
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return fmt.Errorf("create zstd reader: %w", err)
	}
	defer dec.Close()

	hasher, err := blake2b.New256(nil)
	if err != nil {
		return fmt.Errorf("create hasher: %w", err)
	}
	if _, err := io.Copy(hasher, dec); err != nil {
		return fmt.Errorf("decompress archive: %w", err)
	}

	got := hex.EncodeToString(hasher.Sum(nil))
	if got != want {
		return fmt.Errorf("checksum mismatch for %s: got %s, want %s", archivePath, got, want)
	}
	return nil
}

// ReadArchived streams the decompressed content of an archived log.
func ReadArchived(archivePath string) ([]byte, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer dec.Close()

	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("decompress archive: %w", err)
	}
	return data, nil
}
