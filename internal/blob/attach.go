package blob

import (
	"fmt"

	"github.com/google/uuid"

	"sporely/pkg/domain"
)

// AttachmentKey builds the object key for a photo attached to a record:
// <entity-type>/<entity-id>/<random>. Keys group naturally by record so List
// with an entity prefix returns all of its attachments.
func AttachmentKey(entityType domain.EntityType, entityID string) string {
	return fmt.Sprintf("%s/%s/%s", entityType, entityID, uuid.NewString())
}

// AttachmentPrefix is the List prefix covering every attachment of a record.
func AttachmentPrefix(entityType domain.EntityType, entityID string) string {
	return fmt.Sprintf("%s/%s/", entityType, entityID)
}
