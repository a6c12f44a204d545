package action

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/marcelsud/message-relay/media"
	"github.com/marcelsud/message-relay/webhook"
	"github.com/marcelsud/message-relay/webhook/mapping"
	"github.com/marcelsud/message-relay/webhook/payload"
)

// MediaDecryptName is the id used in Config.Actions
const MediaDecryptName = "media.decrypt"

// Attachment keys set by MediaDecrypt
const (
	AttachmentMedia     = "media"
	AttachmentMediaType = "media_type"
)

// Fetcher downloads encrypted media
type Fetcher interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

/* MediaDecrypt downloads and decrypts the media referenced by a messaging
 * payload and attaches the plaintext, base64 encoded, to the invocation.
 * Payloads without a media reference are left untouched.
 */
type MediaDecrypt struct {
	Fetcher   Fetcher
	Decrypter *media.Decrypter
}

func NewMediaDecrypt(fetcher Fetcher, decrypter *media.Decrypter) *MediaDecrypt {
	return &MediaDecrypt{Fetcher: fetcher, Decrypter: decrypter}
}

func (a *MediaDecrypt) Name() string { return MediaDecryptName }

func (a *MediaDecrypt) Run(ctx context.Context, inv *webhook.Invocation) error {
	ref, ok := FindMedia(inv.Payload)
	if !ok {
		return nil
	}

	encrypted, err := a.Fetcher.Download(ctx, ref.URL)
	if err != nil {
		return fmt.Errorf("downloading media: %w", err)
	}

	plain, err := a.Decrypter.Decrypt(encrypted, ref.MediaKey, ref.Type, ref.FileSHA256)
	if err != nil {
		return fmt.Errorf("decrypting media: %w", err)
	}

	if inv.Attachments == nil {
		inv.Attachments = map[string]string{}
	}
	inv.Attachments[AttachmentMedia] = base64.StdEncoding.EncodeToString(plain)
	inv.Attachments[AttachmentMediaType] = ref.Type.String()
	return nil
}

// MediaRef points at an encrypted media blob
type MediaRef struct {
	URL        string
	MediaKey   string
	Type       media.Type
	FileSHA256 string
}

// FindMedia looks for a media object at the top level or under "message"
func FindMedia(doc any) (MediaRef, bool) {
	for _, root := range []string{"media", "message.media"} {
		node, ok := mapping.Resolve(doc, root)
		if !ok {
			continue
		}
		ref := MediaRef{
			URL:        first(node, "url", "direct_path", "directPath"),
			MediaKey:   first(node, "media_key", "mediaKey"),
			Type:       media.NewType(first(node, "type", "media_type")),
			FileSHA256: first(node, "file_sha256", "fileSha256"),
		}
		if ref.URL != "" && ref.MediaKey != "" {
			return ref, true
		}
	}
	return MediaRef{}, false
}

func first(node any, keys ...string) string {
	for _, k := range keys {
		if v, ok := mapping.Resolve(node, k); ok {
			if s := payload.Scalar(v); s != "" {
				return s
			}
		}
	}
	return ""
}
