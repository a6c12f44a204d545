package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/marcelsud/message-relay/internal/logger"
	"github.com/marcelsud/message-relay/media"
)

/* media-decrypt - decrypts one encrypted media blob
 * Usage: go run cmd/media-decrypt/main.go -in file.enc|https://... -key <base64> -type image [-sha256 <base64>] [-out file]
 * MAC and hash mismatches are reported as warnings on stderr.
 */

func main() {
	in := flag.String("in", "", "encrypted file path or http(s) URL")
	key := flag.String("key", "", "base64 media key")
	mediaType := flag.String("type", "image", "media type: image, video, audio, document or sticker")
	sha := flag.String("sha256", "", "optional base64 SHA-256 of the plaintext")
	out := flag.String("out", "", "output file (default stdout)")
	timeout := flag.Duration("timeout", 30*time.Second, "download timeout")
	flag.Parse()

	if err := run(*in, *key, *mediaType, *sha, *out, *timeout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(in, key, mediaType, sha, out string, timeout time.Duration) error {
	if in == "" || key == "" {
		flag.Usage()
		return fmt.Errorf("-in and -key are required")
	}
	t := media.NewType(mediaType)
	if err := t.Validate(); err != nil {
		return err
	}

	var (
		encrypted []byte
		err       error
	)
	if strings.HasPrefix(in, "http://") || strings.HasPrefix(in, "https://") {
		encrypted, err = media.NewDownloader(timeout, 0).Download(context.Background(), in)
	} else {
		encrypted, err = os.ReadFile(in)
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	log := logger.NewWithWriter(os.Stderr, "warn", "text")
	plaintext, err := media.NewDecrypter(log).Decrypt(encrypted, key, t, sha)
	if err != nil {
		return err
	}

	if out == "" {
		_, err = os.Stdout.Write(plaintext)
		return err
	}
	if err := os.WriteFile(out, plaintext, 0o600); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	fmt.Fprintf(os.Stderr, "wrote %d bytes to %s\n", len(plaintext), out)
	return nil
}
