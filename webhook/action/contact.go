package action

import (
	"context"
	"fmt"

	"github.com/marcelsud/message-relay/webhook"
)

// ContactUpsertName is the id used in Config.Actions
const ContactUpsertName = "contact.upsert"

// ContactUpsert stores the mapped contact under the owning account
type ContactUpsert struct {
	Contacts webhook.ContactWriter
}

func NewContactUpsert(contacts webhook.ContactWriter) *ContactUpsert {
	return &ContactUpsert{Contacts: contacts}
}

func (a *ContactUpsert) Name() string { return ContactUpsertName }

func (a *ContactUpsert) Run(ctx context.Context, inv *webhook.Invocation) error {
	id, err := a.Contacts.UpsertContact(ctx, inv.Account.ID, inv.Contact)
	if err != nil {
		return fmt.Errorf("upserting contact: %w", err)
	}
	inv.ContactID = id
	return nil
}
