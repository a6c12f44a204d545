package media

import "fmt"

/* Type identifies the kind of encrypted media a provider sent
 * Each type selects its own HKDF info string; stickers share the image keys
 */
type Type int

const (
	Image Type = iota + 1
	Video
	Audio
	Document
	Sticker
)

// String returns the string representation of the media type
func (t Type) String() string {
	switch t {
	case Image:
		return "image"
	case Video:
		return "video"
	case Audio:
		return "audio"
	case Document:
		return "document"
	case Sticker:
		return "sticker"
	default:
		return "unknown"
	}
}

// NewType creates a Type from a string
func NewType(s string) Type {
	switch s {
	case "image":
		return Image
	case "video":
		return Video
	case "audio", "ptt":
		return Audio
	case "document":
		return Document
	case "sticker":
		return Sticker
	default:
		return Document // unknown media decrypts with the document keys
	}
}

// Validate checks if the media type is valid
func (t Type) Validate() error {
	if t < Image || t > Sticker {
		return fmt.Errorf("invalid media type: %d", t)
	}
	return nil
}

// Info returns the HKDF info string used to expand keys for this type
func (t Type) Info() string {
	switch t {
	case Image, Sticker:
		return "WhatsApp Image Keys"
	case Video:
		return "WhatsApp Video Keys"
	case Audio:
		return "WhatsApp Audio Keys"
	default:
		return "WhatsApp Document Keys"
	}
}
