package mapping

import (
	"sort"
	"strings"

	"github.com/marcelsud/message-relay/webhook/payload"
)

// Canonical field names
const (
	Phone = "phone"
	Name  = "name"
	Email = "email"
)

// Fields is the canonical record extracted from a producer payload
type Fields struct {
	Phone string
	Name  string
	Email string
	Extra map[string]any
}

// Map resolves every entry of fieldMapping (canonical name -> path) against doc.
// Unknown canonical names are kept in Extra with their raw value.
func Map(fieldMapping map[string]string, doc any) Fields {
	var f Fields
	for field, expr := range fieldMapping {
		value, ok := Resolve(doc, expr)
		if !ok {
			continue
		}
		switch strings.ToLower(field) {
		case Phone:
			f.Phone = NormalizePhone(payload.Scalar(value))
		case Name:
			f.Name = payload.Scalar(value)
		case Email:
			f.Email = strings.ToLower(payload.Scalar(value))
		default:
			if f.Extra == nil {
				f.Extra = map[string]any{}
			}
			f.Extra[field] = value
		}
	}
	return f
}

// Candidate keys in priority order, compared after normalizeKey
var (
	phoneKeys = []string{"phone", "phonenumber", "mobile", "mobilephone", "cellphone", "cell", "msisdn",
		"whatsapp", "whatsappnumber", "waid", "telefone", "celular", "number", "from"}
	nameKeys  = []string{"name", "fullname", "contactname", "displayname", "pushname", "profilename", "nome", "firstname"}
	emailKeys = []string{"email", "emailaddress", "mail"}
)

// Guess scans the top level of doc and then one level of nesting for common
// phone, name and email keys. Top-level matches win.
func Guess(doc any) Fields {
	var f Fields
	obj, ok := doc.(map[string]any)
	if !ok {
		return f
	}

	scan(&f, obj)

	for _, key := range sortedKeys(obj) {
		if f.Phone != "" && f.Name != "" && f.Email != "" {
			break
		}
		if nested, ok := obj[key].(map[string]any); ok {
			scan(&f, nested)
		}
	}
	return f
}

// scan fills the still-empty fields of f from the scalar values of obj
func scan(f *Fields, obj map[string]any) {
	index := make(map[string]string, len(obj))
	for _, key := range sortedKeys(obj) {
		k := normalizeKey(key)
		if _, seen := index[k]; seen {
			continue
		}
		if value := payload.Scalar(obj[key]); value != "" {
			index[k] = value
		}
	}

	if f.Phone == "" {
		for _, k := range phoneKeys {
			if phone := NormalizePhone(index[k]); phone != "" {
				f.Phone = phone
				break
			}
		}
	}
	if f.Name == "" {
		for _, k := range nameKeys {
			if name := index[k]; name != "" {
				f.Name = name
				break
			}
		}
	}
	if f.Email == "" {
		for _, k := range emailKeys {
			if email := index[k]; strings.Contains(email, "@") {
				f.Email = strings.ToLower(email)
				break
			}
		}
	}
}

// NormalizePhone keeps a leading + and the digits of s. Messaging JIDs such
// as 5511999999999@s.whatsapp.net lose their domain. Returns "" when s holds
// no digits.
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)
	if at := strings.IndexByte(s, '@'); at >= 0 {
		s = s[:at]
	}

	var b strings.Builder
	for i, r := range s {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	out := b.String()
	if strings.TrimPrefix(out, "+") == "" {
		return ""
	}
	return out
}

// normalizeKey makes phoneNumber, phone_number and Phone-Number compare equal
func normalizeKey(k string) string {
	k = strings.ToLower(k)
	k = strings.ReplaceAll(k, "_", "")
	k = strings.ReplaceAll(k, "-", "")
	return strings.ReplaceAll(k, " ", "")
}

func sortedKeys(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
