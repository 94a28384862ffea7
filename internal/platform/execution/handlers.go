package execution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/pendingrequest"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/storage"
	"github.com/Abdullah-Jawahir/my-new-portfolio-be/internal/platform/store"
)

// The profile is a singleton document.
const (
	ProfileCollection = "profile"
	ProfileDocumentID = "main"
)

// applyGeneric runs CREATE, UPDATE or DELETE against the kind's collection.
func (d *Dispatcher) applyGeneric(ctx context.Context, g GenericKind, req *pendingrequest.PendingRequest) (string, error) {
	now := d.now()

	switch req.Action {
	case "CREATE":
		fields, err := CleanFields(req.Data)
		if err != nil {
			return "", err
		}
		fields["createdAt"] = now
		fields["updatedAt"] = now
		id, err := d.docs.Add(ctx, g.Collection, fields)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Created %s %s", req.ResourceType, id), nil

	case "UPDATE":
		if req.ResourceID == "" {
			return "", payloadErrorf("resourceId is required to update %s", req.ResourceType)
		}
		fields, err := CleanFields(req.Data)
		if err != nil {
			return "", err
		}
		fields["updatedAt"] = now
		if err := d.docs.Update(ctx, g.Collection, req.ResourceID, fields); err != nil {
			return "", err
		}
		return fmt.Sprintf("Updated %s %s", req.ResourceType, req.ResourceID), nil

	case "DELETE":
		if ids, ok := asSlice(req.Data["ids"]); ok && g.BatchDelete {
			return d.batchDelete(ctx, g, req, ids)
		}
		if req.ResourceID == "" {
			return "", payloadErrorf("resourceId is required to delete %s", req.ResourceType)
		}
		if err := d.docs.Delete(ctx, g.Collection, req.ResourceID); err != nil {
			return "", err
		}
		return fmt.Sprintf("Deleted %s %s", req.ResourceType, req.ResourceID), nil
	}

	return "", payloadErrorf("unsupported action %q", req.Action)
}

func (d *Dispatcher) batchDelete(ctx context.Context, g GenericKind, req *pendingrequest.PendingRequest, ids []any) (string, error) {
	if len(ids) == 0 {
		return "", payloadErrorf("ids must not be empty")
	}
	batch := d.docs.Batch()
	for _, raw := range ids {
		id := asString(raw)
		if id == "" {
			return "", payloadErrorf("ids must be non-empty strings")
		}
		batch.Delete(g.Collection, id)
	}
	if err := batch.Commit(ctx); err != nil {
		return "", err
	}
	return fmt.Sprintf("Deleted %d %s items", len(ids), req.ResourceType), nil
}

// profileSection sets one section of the profile document. The payload is
// {section, fields} to merge into the section, or {section, value} to replace it.
func (d *Dispatcher) profileSection(ctx context.Context, req *pendingrequest.PendingRequest) (string, error) {
	section := asString(req.Data["section"])
	if !validFieldName(section) {
		return "", payloadErrorf("section is missing or invalid")
	}

	var value any
	if fields, ok := asMap(req.Data["fields"]); ok {
		merged := map[string]any{}
		current, err := d.docs.Get(ctx, ProfileCollection, ProfileDocumentID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return "", err
		}
		if existing, ok := asMap(current[section]); ok {
			for k, v := range existing {
				merged[k] = v
			}
		}
		for k, v := range fields {
			merged[k] = v
		}
		value = merged
	} else if v, ok := req.Data["value"]; ok {
		value = v
	} else {
		return "", payloadErrorf("profile section update needs fields or value")
	}

	err := d.docs.Set(ctx, ProfileCollection, ProfileDocumentID, map[string]any{
		section:     value,
		"updatedAt": d.now(),
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Updated profile section %s", section), nil
}

// cvUpload swaps the CV referenced by the profile and removes the old file.
// Cleanup failure is logged and does not fail the execution.
func (d *Dispatcher) cvUpload(ctx context.Context, req *pendingrequest.PendingRequest) (string, error) {
	url := asString(req.Data["url"])
	storageID := asString(req.Data["storageId"])
	if url == "" || storageID == "" {
		return "", payloadErrorf("cv upload needs url and storageId")
	}

	current, err := d.docs.Get(ctx, ProfileCollection, ProfileDocumentID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", err
	}
	previous := asString(current["cvStorageId"])

	fields := map[string]any{
		"cvUrl":       url,
		"cvStorageId": storageID,
		"updatedAt":   d.now(),
	}
	if name := asString(req.Data["fileName"]); name != "" {
		fields["cvFileName"] = name
	}
	if err := d.docs.Set(ctx, ProfileCollection, ProfileDocumentID, fields); err != nil {
		return "", err
	}

	if previous != "" && previous != storageID && d.files != nil {
		if err := d.files.Delete(ctx, previous, storage.KindDocument); err != nil {
			slog.WarnContext(ctx, "Failed to delete previous CV file",
				"requestId", req.ID,
				"storageId", previous,
				"error", err)
		}
	}
	return "CV updated", nil
}

// reorder sets the order field of several documents in one atomic batch.
func (d *Dispatcher) reorder(ctx context.Context, req *pendingrequest.PendingRequest) (string, error) {
	collection := asString(req.Data["collection"])
	if !d.isGenericCollection(collection) {
		return "", payloadErrorf("cannot reorder collection %q", collection)
	}
	items, ok := asSlice(req.Data["items"])
	if !ok || len(items) == 0 {
		return "", payloadErrorf("items must be a non-empty list")
	}

	now := d.now()
	batch := d.docs.Batch()
	for i, raw := range items {
		item, ok := asMap(raw)
		if !ok {
			return "", payloadErrorf("item %d is not an object", i)
		}
		id := asString(item["id"])
		order, ok := asNumber(item["order"])
		if id == "" || !ok {
			return "", payloadErrorf("item %d needs id and numeric order", i)
		}
		batch.Update(collection, id, map[string]any{"order": int(order), "updatedAt": now})
	}
	if err := batch.Commit(ctx); err != nil {
		return "", err
	}
	return fmt.Sprintf("Reordered %d %s", len(items), collection), nil
}

func (d *Dispatcher) isGenericCollection(collection string) bool {
	for _, g := range d.generic {
		if g.Collection == collection {
			return true
		}
	}
	return false
}
